package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"secure-login/app"
)

func main() {
	runtime, err := app.Build(app.Options{LoadDotEnv: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = runtime.Close()
	}()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	addr := fmt.Sprintf(":%s", port)
	runtime.Logger.Info("server_start", map[string]any{"addr": addr})
	if err := http.ListenAndServe(addr, runtime.Handler); err != nil {
		runtime.Logger.Error("server_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
