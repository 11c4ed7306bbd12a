package cmd

import (
	"fmt"
	"log"

	productmodel "github.com/diogopimentels/capicash/internal/core/datamodel/product"
	providermodel "github.com/diogopimentels/capicash/internal/core/datamodel/provider"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		gormDB, err := initGormDB(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"ledger_transactions", "balances", "withdrawal_requests", "checkout_sessions", "products", "provider_accounts"} {
				if err := gormDB.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		sellerID := "seed-seller-1"

		var count int64
		gormDB.Model(&providermodel.ProviderAccount{}).Where("seller_id = ?", sellerID).Count(&count)
		if count == 0 {
			account := &providermodel.ProviderAccount{
				SellerID: sellerID,
				Name:     "Dio Creator",
				Email:    "dio@mail.com",
				Document: "52998224725",
			}
			if err := gormDB.Create(account).Error; err != nil {
				log.Fatalf("failed to seed provider account: %v", err)
			}
			fmt.Println("Seeded seller:", sellerID)
		} else {
			fmt.Println("seller already exists:", sellerID)
		}

		gormDB.Model(&productmodel.Product{}).Where("seller_id = ?", sellerID).Count(&count)
		if count == 0 {
			product := &productmodel.Product{
				ID:          uuid.New().String(),
				SellerID:    sellerID,
				Title:       "Go Backend Course",
				Description: "Video course on building payment backends in Go.",
				PriceCents:  14900,
				ContentURL:  "https://cdn.capicash.dev/content/go-backend-course",
				IsActive:    true,
			}
			if err := gormDB.Create(product).Error; err != nil {
				log.Fatalf("failed to seed product: %v", err)
			}
			fmt.Println("Seeded product:", product.ID)
		}

		fmt.Println("Seeding complete")
	},
}
