package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mangaswap/mangaswap-backend/internal/config"
	"github.com/mangaswap/mangaswap-backend/internal/db"
	"github.com/mangaswap/mangaswap-backend/internal/model"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.WithContext(ctx).AutoMigrate(&model.User{}, &model.Listing{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	force := strings.EqualFold(os.Getenv("FORCE_SEED"), "true")
	var count int64
	if err := gdb.WithContext(ctx).Model(&model.Listing{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 && !force {
		log.Printf("listings already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := []model.User{
			{UID: "seed-tokyo", Name: "Tokyo Seeder"},
			{UID: "seed-osaka", Name: "Osaka Seeder"},
		}
		for i := range users {
			if err := tx.Where("uid = ?", users[i].UID).FirstOrCreate(&users[i]).Error; err != nil {
				return err
			}
		}

		listings := []model.Listing{
			{Title: "Naruto", Author: "Masashi Kishimoto", Volume: 1, Condition: 5,
				ImageURL: "https://picsum.photos/seed/naruto-1/400/600",
				OwnerUID: "seed-tokyo", Latitude: 35.6895, Longitude: 139.6917},
			{Title: "One Piece", Author: "Eiichiro Oda", Volume: 12, Condition: 4,
				ImageURL: "https://picsum.photos/seed/one-piece-12/400/600",
				OwnerUID: "seed-tokyo", Latitude: 35.7100, Longitude: 139.8107},
			{Title: "Slam Dunk", Author: "Takehiko Inoue", Volume: 3, Condition: 3,
				ImageURL: "https://picsum.photos/seed/slam-dunk-3/400/600",
				OwnerUID: "seed-osaka", Latitude: 34.6937, Longitude: 135.5023},
		}
		for i := range listings {
			if err := tx.Create(&listings[i]).Error; err != nil {
				return err
			}
		}
		log.Printf("seeded %d listings", len(listings))
		return nil
	})
}
