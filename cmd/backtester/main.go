package main

import (
	"os"

	"aibacktest/cmd/backtester/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// Optional; env vars beat config file values.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
