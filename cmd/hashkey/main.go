// Command hashkey prints the bcrypt hash of a payment webhook key for PAYMENT_WEBHOOK_KEY_HASH.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: hashkey [-cost n] <key>")
		os.Exit(2)
	}

	hash, err := auth.HashKey(flag.Arg(0), *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashkey: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
