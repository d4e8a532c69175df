package main

import (
	"fmt"
	"os"

	"github.com/pgtrunk/pgtrunk/cmd"
)

func main() {
	if err := cmd.LoadEnvFile(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
	}

	cmd.Execute()
}
