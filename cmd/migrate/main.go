// Package main provides CLI for database schema management.
// Usage: migrate up
//        migrate down
//        migrate status
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "up", "down", "status", "version", "redo":
		runGoose(os.Args[1])
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Kitchenledger Schema Management CLI

Usage:
  migrate <command>

Commands:
  up       Apply all pending migrations
  down     Roll back the latest migration
  redo     Roll back and re-apply the latest migration
  status   Show migration status
  version  Show current schema version
  help     Show this help

Environment Variables:
  DATABASE_URL     Connection string (required)
  MIGRATIONS_DIR   Migration directory (default: db/migrations)`)
}

func runGoose(command string) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Println("Error: DATABASE_URL environment variable is required")
		os.Exit(1)
	}

	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "db/migrations"
	}

	cmd := exec.Command("goose", "-dir", dir, "postgres", dsn, command)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
