// Package main implements a standalone seed script that creates the products
// table and populates it with the minimarket catalog. Run it once against a
// fresh database before starting the storefront.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id       BIGINT PRIMARY KEY,
	name     TEXT NOT NULL,
	category TEXT NOT NULL,
	price    DOUBLE PRECISION NOT NULL,
	image    TEXT NOT NULL DEFAULT ''
);`

type product struct {
	id       int64
	name     string
	category string
	price    float64
	image    string
}

var catalog = []product{
	{1, "Basmati Rice 5kg", "food", 20.00, "/static/img/rice.jpg"},
	{2, "Olive Oil 1L", "food", 15.00, "/static/img/olive-oil.jpg"},
	{3, "Red Lentils 1kg", "food", 4.25, "/static/img/lentils.jpg"},
	{4, "Black Tea 500g", "beverages", 7.50, "/static/img/tea.jpg"},
	{5, "Turkish Coffee 250g", "beverages", 9.90, "/static/img/coffee.jpg"},
	{6, "Orange Juice 1L", "beverages", 3.80, "/static/img/juice.jpg"},
	{7, "Dish Soap 750ml", "household", 4.50, "/static/img/dish-soap.jpg"},
	{8, "Laundry Detergent 3L", "household", 12.40, "/static/img/detergent.jpg"},
	{9, "Paper Towels 6pk", "household", 6.75, "/static/img/paper-towels.jpg"},
	{10, "Dates 1kg", "food", 11.00, "/static/img/dates.jpg"},
	{11, "Tahini 500g", "food", 8.60, "/static/img/tahini.jpg"},
	{12, "Sparkling Water 6pk", "beverages", 5.40, "/static/img/water.jpg"},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("POSTGRES_USER", "minimarket"),
		getEnv("POSTGRES_PASSWORD", "minimarket_secret"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_DB", "minimarket"),
		getEnv("POSTGRES_SSLMODE", "disable"),
	)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("create products table: %v", err)
	}

	for _, p := range catalog {
		_, err := pool.Exec(ctx, `
			INSERT INTO products (id, name, category, price, image)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, category = EXCLUDED.category,
			    price = EXCLUDED.price, image = EXCLUDED.image`,
			p.id, p.name, p.category, p.price, p.image,
		)
		if err != nil {
			log.Fatalf("seed product %d: %v", p.id, err)
		}
	}

	log.Printf("seeded %d products", len(catalog))
}
