// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"kitchenledger/internal/core/id"
	"kitchenledger/internal/core/types"
	"kitchenledger/internal/domain/catalog/menu"
	"kitchenledger/internal/infrastructure/storage/postgres"
	"kitchenledger/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoCatalog(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo catalog", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@kitchenledger.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1 AND deleted_at IS NULL`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, name, role, is_active, version)
		VALUES ($1, $2, $3, 'Administrator', 'admin', true, 1)
	`, userID, adminEmail, string(passwordHash))
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", userID)
	return nil
}

type ingredientSeed struct {
	code     string
	name     string
	category string
	unit     string
	unitCost string
	onHand   float64
}

func seedDemoCatalog(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo catalog...")

	var count int
	if err := pool.Pool.QueryRow(ctx,
		`SELECT count(*) FROM cat_ingredients WHERE deletion_mark = FALSE`,
	).Scan(&count); err != nil {
		return fmt.Errorf("count ingredients: %w", err)
	}
	if count > 0 {
		log.Infow("catalog already seeded, skipping", "ingredients", count)
		return nil
	}

	ingredients := []ingredientSeed{
		{"ING-0001", "Burger Bun", "bakery", "pcs", "0.40", 200},
		{"ING-0002", "Beef Patty", "meat", "pcs", "1.20", 150},
		{"ING-0003", "Cheese Slice", "dairy", "pcs", "0.30", 300},
		{"ING-0004", "Lettuce", "produce", "g", "0.01", 5000},
		{"ING-0005", "Tomato", "produce", "g", "0.01", 4000},
		{"ING-0006", "Bacon Strip", "meat", "pcs", "0.50", 120},
		{"ING-0007", "Fries Portion", "frozen", "g", "0.005", 20000},
		{"ING-0008", "Cola Syrup", "beverage", "ml", "0.002", 10000},
		{"ING-0009", "Coffee Beans", "beverage", "g", "0.03", 3000},
		{"ING-0010", "Milk", "dairy", "ml", "0.001", 15000},
	}

	txManager := postgres.NewTxManager(pool)
	batch := postgres.NewBatchInserter(txManager)

	ingredientIDs := make(map[string]id.ID, len(ingredients))
	costs := make(map[string]types.Money, len(ingredients))

	err := txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		now := time.Now().UTC()
		rows := make([][]any, 0, len(ingredients))
		for _, ing := range ingredients {
			ingID := id.New()
			ingredientIDs[ing.name] = ingID
			costs[ing.name] = types.MustMoney(ing.unitCost)
			rows = append(rows, []any{
				ingID, ing.code, ing.name, ing.category, ing.unit,
				types.MustMoney(ing.unitCost),
				types.NewQuantityFromFloat64(ing.onHand).Int64Scaled(),
				false, 1, now, now,
			})
		}

		inserted, err := batch.CopyFromSlice(txCtx, "cat_ingredients",
			[]string{
				"id", "code", "name", "category", "unit", "unit_cost", "on_hand",
				"deletion_mark", "version", "created_at", "updated_at",
			}, rows)
		if err != nil {
			return fmt.Errorf("copy ingredients: %w", err)
		}
		log.Infow("ingredients loaded", "count", inserted)
		return nil
	})
	if err != nil {
		return err
	}

	// Menu items reference the just-seeded ingredients; their recipes
	// carry cost snapshots the same way the menu service writes them.
	type recipeSeed struct {
		ingredient string
		amount     float64
	}
	menuItems := []struct {
		code     string
		name     string
		category string
		price    string
		recipe   []recipeSeed
	}{
		{"MNU-0001", "Cheeseburger", "burgers", "6.50", []recipeSeed{
			{"Burger Bun", 1}, {"Beef Patty", 1}, {"Cheese Slice", 1},
			{"Lettuce", 20}, {"Tomato", 30},
		}},
		{"MNU-0002", "Bacon Burger", "burgers", "7.90", []recipeSeed{
			{"Burger Bun", 1}, {"Beef Patty", 1}, {"Bacon Strip", 2}, {"Lettuce", 20},
		}},
		{"MNU-0003", "Fries", "sides", "2.50", []recipeSeed{
			{"Fries Portion", 150},
		}},
		{"MNU-0004", "Cola", "drinks", "1.90", []recipeSeed{
			{"Cola Syrup", 50},
		}},
		{"MNU-0005", "Latte", "drinks", "3.20", []recipeSeed{
			{"Coffee Beans", 18}, {"Milk", 200},
		}},
	}

	unitByName := make(map[string]string, len(ingredients))
	for _, ing := range ingredients {
		unitByName[ing.name] = ing.unit
	}

	for _, m := range menuItems {
		recipe := make(menu.Recipe, 0, len(m.recipe))
		for _, line := range m.recipe {
			amount := types.NewQuantityFromFloat64(line.amount)
			recipe = append(recipe, menu.RecipeLine{
				IngredientID:   ingredientIDs[line.ingredient],
				IngredientName: line.ingredient,
				Amount:         amount,
				Unit:           unitByName[line.ingredient],
				TotalCost:      costs[line.ingredient].Mul(amount.Decimal()),
			})
		}

		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_menu_items (id, code, name, category, price, recipe, version)
			VALUES ($1, $2, $3, $4, $5, $6, 1)
		`, id.New(), m.code, m.name, m.category, types.MustMoney(m.price), recipe)
		if err != nil {
			return fmt.Errorf("insert menu item %s: %w", m.name, err)
		}
	}

	log.Infow("menu items loaded", "count", len(menuItems))
	return nil
}
