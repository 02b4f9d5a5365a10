package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/vsinha/procurement/pkg/domain/errors"
	"github.com/vsinha/procurement/pkg/interfaces/cli/commands"
)

func main() {
	// PROCURE_* overrides may come from a local .env file
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %s\n", errors.UserMessage(err))
		os.Exit(1)
	}
}
