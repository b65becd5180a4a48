// Command hashpw prints bcrypt hashes for the users.json credential file.
//
//	go run ./cmd/hashpw -cost 10 wonderland123
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"secure-login/internal/auth"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: hashpw [-cost N] <password> [password...]")
		os.Exit(2)
	}

	for _, raw := range flag.Args() {
		hash, err := auth.HashPassword(raw, *cost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash %q: %v\n", raw, err)
			os.Exit(1)
		}
		fmt.Printf("%s\t%s\n", raw, hash)
	}
}
