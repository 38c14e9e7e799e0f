// Package main 系统初始化入口：建表并创建首个管理员
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"neuroedge-api/internal/config"
	"neuroedge-api/internal/domain/entity"
	"neuroedge-api/internal/infrastructure/persistence/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS agents (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	phone      TEXT,
	specialty  TEXT,
	bio        TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS properties (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	description   TEXT,
	price         NUMERIC NOT NULL,
	currency      TEXT NOT NULL DEFAULT 'NAD',
	property_type TEXT NOT NULL,
	bedrooms      INTEGER NOT NULL DEFAULT 0,
	bathrooms     INTEGER NOT NULL DEFAULT 0,
	size_sqft     INTEGER NOT NULL DEFAULT 0,
	location      TEXT NOT NULL,
	city          TEXT NOT NULL DEFAULT 'Windhoek',
	features      TEXT,
	status        TEXT DEFAULT 'available',
	agent_id      TEXT REFERENCES agents(id),
	listing_url   TEXT,
	images        TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_properties_status ON properties(status);
CREATE INDEX IF NOT EXISTS idx_properties_agent ON properties(agent_id);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'admin',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	pg, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pg.Close()

	// 1. 建表
	if _, err := pg.DB().ExecContext(ctx, schema); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}
	fmt.Println("Schema applied.")

	// 2. 创建首个管理员
	adminUsername := os.Getenv("BOOTSTRAP_ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}
	adminPassword := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123" // 生产环境请务必通过环境变量设置
	}

	userRepo := postgres.NewUserRepository(pg)

	exists, err := userRepo.ExistsByUsername(ctx, adminUsername)
	if err != nil {
		log.Fatalf("failed to check admin existence: %v", err)
	}

	if !exists {
		fmt.Printf("Creating admin user: %s...\n", adminUsername)
		admin := entity.NewUser(adminUsername)
		if err := admin.SetPassword(adminPassword); err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}

		if err := userRepo.Create(ctx, admin); err != nil {
			log.Fatalf("failed to create admin user: %v", err)
		}
		fmt.Println("Admin user created successfully.")
	} else {
		fmt.Printf("Admin user %s already exists.\n", adminUsername)
	}

	fmt.Println("Bootstrap completed successfully.")
}
