package main

import (
	"log"
	"os"

	"org-registry/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}
	os.Exit(cli.New().Execute())
}
