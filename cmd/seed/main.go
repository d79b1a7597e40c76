package main

import (
	"context"
	"time"

	"github.com/wichananm65/wholesale-shop/internal/config"
	"github.com/wichananm65/wholesale-shop/internal/database"
	"github.com/wichananm65/wholesale-shop/internal/logging"
	"github.com/wichananm65/wholesale-shop/internal/product"
	"github.com/wichananm65/wholesale-shop/internal/supplier"
	"go.uber.org/zap"
)

// main migrates the database and inserts the sample catalog.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.IsDevelopment())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrations", zap.Error(err))
	}

	res, err := product.Seed(ctx,
		supplier.NewService(supplier.NewPostgresRepository(db)),
		product.NewService(product.NewPostgresRepository(db)),
	)
	if err != nil {
		log.Fatal("seed", zap.Error(err))
	}
	log.Info("seed complete", zap.Int("suppliers", res.Suppliers), zap.Int("products", res.Products))
}
