package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads variables from .env files in the current directory.
// Existing process environment variables are not overwritten.
func loadEnvFiles() {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			fmt.Fprintf(os.Stderr, "Note: could not load %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", path)
	}
}
