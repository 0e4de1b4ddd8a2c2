package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"users-api/internal/config"
	"users-api/internal/database"
)

// seedUser mirrors the JSON shape of a bulk-import file. Explicit IDs are
// preserved so fixtures stay stable across reloads.
type seedUser struct {
	ID             int64   `json:"id"`
	Email          string  `json:"email"`
	Username       string  `json:"username"`
	HashedPassword string  `json:"hashed_password"`
	Avatar         *string `json:"avatar"`
	PhoneNumber    *string `json:"phone_number"`
	IsActive       bool    `json:"is_active"`
	IsSuperuser    bool    `json:"is_superuser"`
	IsVerified     bool    `json:"is_verified"`
}

func main() {
	var path string
	flag.StringVar(&path, "file", "data/users.json", "path to the users JSON file")
	flag.Parse()

	if err := run(path); err != nil {
		log.Fatalf("Seed error: %v", err)
	}
}

func run(path string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var seeds []seedUser
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	db := database.NewBunDB(sqlDB)
	ctx := context.Background()

	rows := make([]database.User, 0, len(seeds))
	for _, s := range seeds {
		rows = append(rows, database.User{
			ID:             s.ID,
			Email:          s.Email,
			Username:       s.Username,
			HashedPassword: s.HashedPassword,
			Avatar:         s.Avatar,
			PhoneNumber:    s.PhoneNumber,
			IsActive:       s.IsActive,
			IsSuperuser:    s.IsSuperuser,
			IsVerified:     s.IsVerified,
		})
	}

	if len(rows) == 0 {
		log.Println("Nothing to import")
		return nil
	}

	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert users: %w", err)
	}

	log.Printf("Imported %d users from %s", len(rows), path)
	return nil
}
