package main

import (
	"bytes"
	"fmt"
	"os"
	"syscall"

	"github.com/stemsi/kumpul-tugas/internal/config"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// Prints a bcrypt hash for ADMIN_PASSWORD_HASH so the plaintext admin
// password never has to live in the environment.
func main() {
	cfg := config.Load()

	fmt.Println("=== Generate Admin Password Hash ===")

	fmt.Print("Enter Password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		os.Exit(1)
	}
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		os.Exit(1)
	}

	fmt.Print("Confirm Password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		os.Exit(1)
	}
	if !bytes.Equal(password, confirm) {
		fmt.Println("Error: Passwords do not match")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword(password, cfg.BcryptCost)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nADMIN_PASSWORD_HASH=%s\n", hash)
}
