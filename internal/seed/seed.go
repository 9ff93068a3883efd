package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"asset_tracker/internal/models"
)

// Categories are created on first start. Notebook and Phone drive the
// sensitive field policy, so their names must keep those words.
var Categories = []string{"Notebook", "Phone", "Monitor", "Peripheral"}

const (
	DefaultSector = "IT"
	DefaultBranch = "Headquarters"
)

// FirstSetup creates reference data that lifecycle operations expect to
// exist. It is idempotent.
func FirstSetup(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// -------------------------
		// 1) Categories
		// -------------------------
		for _, name := range Categories {
			c := models.Category{Name: name}
			if err := tx.Where("name = ?", name).FirstOrCreate(&c).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", name, err)
			}
		}

		// -------------------------
		// 2) Default sector and branch
		// -------------------------
		sector := models.Sector{Name: DefaultSector}
		if err := tx.Where("name = ?", sector.Name).FirstOrCreate(&sector).Error; err != nil {
			return fmt.Errorf("seed sector: %w", err)
		}
		branch := models.Branch{Name: DefaultBranch}
		if err := tx.Where("name = ?", branch.Name).FirstOrCreate(&branch).Error; err != nil {
			return fmt.Errorf("seed branch: %w", err)
		}

		log.Info("seed ok",
			zap.Strings("categories", Categories),
			zap.Int64("sector_id", sector.ID),
			zap.Int64("branch_id", branch.ID),
		)
		return nil
	})
}
