package main

import (
	"banking-backend/internal/auth"
	"banking-backend/internal/config"
	"banking-backend/internal/domain/admin"
	"banking-backend/internal/infrastructure/database/postgres"
	"banking-backend/internal/infrastructure/logging"
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"os"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

// Admin accounts are provisioned from the shell, never through the public
// API. Prompts for username, email, and password, then inserts the record.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on process environment.")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	ctx := context.Background()

	dbPool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	adminRepo := postgres.NewAdminRepository(dbPool, logger)

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin Account ===")

	fmt.Print("Enter Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)
	if username == "" {
		fmt.Println("Error: Username is required")
		os.Exit(1)
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		fmt.Println("Error: A valid email address is required")
		os.Exit(1)
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		os.Exit(1)
	}
	password := string(bytePassword)
	fmt.Println()
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		os.Exit(1)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	created, err := adminRepo.Create(ctx, &admin.Admin{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %d\n", created.Username, created.Email, created.ID)
}
