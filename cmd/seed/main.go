package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopdesk/backend/internal/infrastructure/config"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"github.com/shopdesk/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var (
		admin    Admin
		counts   Counts
		seed     uint64
		migrate  bool
		logLevel string
	)

	flag.StringVar(&admin.Username, "admin-user", "admin", "Administrator username")
	flag.StringVar(&admin.Email, "admin-email", "admin@shopdesk.test", "Administrator email")
	flag.StringVar(&admin.Password, "admin-password", os.Getenv("SHOPDESK_SEED_ADMIN_PASSWORD"), "Administrator password (or SHOPDESK_SEED_ADMIN_PASSWORD)")
	flag.IntVar(&counts.Employees, "employees", 6, "Number of employees")
	flag.IntVar(&counts.Suppliers, "suppliers", 4, "Number of suppliers")
	flag.IntVar(&counts.Customers, "customers", 20, "Number of customers")
	flag.IntVar(&counts.ProductsPerCategory, "products", 8, "Products per category")
	flag.Uint64Var(&seed, "seed", 0, "Random seed, 0 for a random one")
	flag.BoolVar(&migrate, "automigrate", false, "Create missing tables with GORM before seeding")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	if err := admin.validate(); err != nil {
		log.Fatal("Invalid administrator account", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, nil)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if migrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Auto-migration failed", zap.Error(err))
		}
	}

	s, err := newSeeder(db.DB, gofakeit.New(seed), cfg.App.Currency, log)
	if err != nil {
		log.Fatal("Failed to build seeder", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := s.Run(ctx, admin, counts)
	if err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
	log.Info("Seeding finished",
		zap.Any("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
}
