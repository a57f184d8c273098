// Command seed populates the catalog with randomized items for local
// development and demos. Seeding is skipped when the catalog already has
// records.
package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/shelfsense/shelfsense/internal/config"
	dbRedis "github.com/shelfsense/shelfsense/internal/db/redis"
	"github.com/shelfsense/shelfsense/internal/domain"
	logpkg "github.com/shelfsense/shelfsense/internal/logger"
	itemrepo "github.com/shelfsense/shelfsense/internal/repository/item"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	repo := itemrepo.New(store)
	if err := repo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create catalog index", zap.Error(err))
	}

	count, err := repo.Count(ctx)
	if err != nil {
		logger.Fatal("Failed to count items", zap.Error(err))
	}
	if count > 0 {
		logger.Info("Catalog already seeded, skipping", zap.Int("items", count))
		return
	}

	total := cfg.Catalog.SeedCount
	batchSize := cfg.Catalog.SeedBatchSize
	logger.Info("Seeding catalog",
		zap.Int("items", total),
		zap.Int("batch_size", batchSize),
	)

	faker := gofakeit.New(0)
	batch := make([]domain.Item, 0, batchSize)

	for i := 1; i <= total; i++ {
		batch = append(batch, randomItem(faker, i))

		if len(batch) == batchSize {
			if err := repo.SaveAll(ctx, batch); err != nil {
				logger.Fatal("Failed to save batch", zap.Error(err))
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := repo.SaveAll(ctx, batch); err != nil {
			logger.Fatal("Failed to save batch", zap.Error(err))
		}
	}

	logger.Info("Seeded catalog", zap.Int("items", total))
}

// randomItem generates one catalog item with coherent pricing: store price
// below MSRP, e-commerce price at or below store price, and the discount
// derived from the MSRP-to-store gap.
func randomItem(f *gofakeit.Faker, n int) domain.Item {
	msrp := f.Float64Range(30, 500)
	storePrice := msrp - f.Float64Range(1, 50)
	ecomPrice := math.Max(1.0, storePrice-f.Float64Range(0, 15))
	discount := math.Round((msrp-storePrice)/msrp*10000) / 100

	onlineOnly := f.Bool()
	storeOnly := !onlineOnly && f.Bool()
	onlineAvailable := onlineOnly || (!storeOnly && f.Bool())
	storeAvailable := storeOnly || (!onlineOnly && f.Bool())

	now := time.Now()
	promoStart := now.AddDate(0, 0, -f.Number(0, 4))
	promoEnd := promoStart.AddDate(0, 0, f.Number(1, 9))

	return domain.Item{
		ItemID:   fmt.Sprintf("ITEM%05d", n),
		ItemName: f.ProductName(),
		SKU:      "SKU" + f.DigitN(8),
		Barcode:  f.DigitN(13),
		Brand:    f.Company(),
		Category: f.ProductCategory(),

		MSRP:            round2(msrp),
		StorePrice:      round2(storePrice),
		EcomPrice:       round2(ecomPrice),
		CostPrice:       round2(storePrice * (0.6 + 0.2*f.Float64Range(0, 1))),
		DiscountPercent: discount,

		Promotion:  f.BuzzWord(),
		PromoStart: promoStart,
		PromoEnd:   promoEnd,

		QuantityInStock: f.Number(0, 499),
		OnlineAvailable: onlineAvailable,
		StoreAvailable:  storeAvailable,

		CreatedAt:       now.AddDate(0, 0, -f.Number(5, 29)),
		LastUpdated:     now.Add(-time.Duration(f.Number(1, 71)) * time.Hour),
		LastPurchasedAt: now.AddDate(0, 0, -f.Number(1, 9)),

		AverageRating:   math.Round(f.Float64Range(2, 5)*10) / 10,
		NumberOfReviews: f.Number(0, 999),
		UnitsSold:       f.Number(0, 4999),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
