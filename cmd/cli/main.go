// Command cli is the operator tool: it creates an admin account directly
// against the database, which is how the first elevated account comes to
// exist (the public API only registers plain users).
package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/storerate/storerate/internal/server/config"
	"github.com/storerate/storerate/internal/server/models"
	"github.com/storerate/storerate/internal/server/repositories/repomanager"
	"github.com/storerate/storerate/internal/server/services"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func promptLine(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt + "\n> ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt + ": ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)

	name, err := promptLine(reader, "Admin name (20-60 characters)")
	if err != nil {
		log.Fatalf("input error: %v", err)
	}
	email, err := promptLine(reader, "Admin email")
	if err != nil {
		log.Fatalf("input error: %v", err)
	}
	address, err := promptLine(reader, "Admin address (optional)")
	if err != nil {
		log.Fatalf("input error: %v", err)
	}

	password, err := promptPassword("Password")
	if err != nil {
		log.Fatalf("input error: %v", err)
	}
	confirm, err := promptPassword("Confirm password")
	if err != nil {
		log.Fatalf("input error: %v", err)
	}
	if password != confirm {
		log.Fatal("passwords do not match")
	}

	userService := services.NewUserService(db, rm, cfg)
	user, err := userService.Register(ctx, name, email, address, password, models.RoleAdmin)
	if err != nil {
		log.Fatalf("error creating admin: %v", err)
	}

	fmt.Printf("Admin account created: id=%s email=%s\n", user.ID, user.Email)
}
