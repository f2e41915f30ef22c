package main

import (
	"fmt"
	"os"

	"aspataal/internal/services/records"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("usage: go run tools/hash_password.go <plaintext>")
		os.Exit(1)
	}
	h, err := records.HashPassword(os.Args[1])
	if err != nil {
		panic(err)
	}
	fmt.Println(h)
}
