package lifecycle

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"asset_tracker/internal/apperr"
	"asset_tracker/internal/audit"
	"asset_tracker/internal/models"
	"asset_tracker/internal/repository"
)

var serialPattern = regexp.MustCompile(`^[A-Za-z0-9._/-]{3,64}$`)

// SerialReport is the outcome of checking a batch of serial numbers.
type SerialReport struct {
	Valid             []string `json:"valid"`
	Blank             int      `json:"blank"`
	Malformed         []string `json:"malformed"`
	Duplicated        []string `json:"duplicated"`
	AlreadyRegistered []string `json:"already_registered"`
}

// Accepted reports whether the whole batch can be registered.
func (r *SerialReport) Accepted() bool {
	return len(r.Valid) > 0 && r.Blank == 0 &&
		len(r.Malformed) == 0 && len(r.Duplicated) == 0 && len(r.AlreadyRegistered) == 0
}

// inspectSerials checks form and in-batch uniqueness. Serials compare
// case-insensitively, like the unique index on assets.serial_number.
func inspectSerials(serials []string) (*SerialReport, []string) {
	report := &SerialReport{}
	seen := make(map[string]bool, len(serials))
	flagged := make(map[string]bool)
	var candidates []string

	for _, raw := range serials {
		serial := strings.TrimSpace(raw)
		if serial == "" {
			report.Blank++
			continue
		}
		if !serialPattern.MatchString(serial) {
			report.Malformed = append(report.Malformed, serial)
			continue
		}
		key := strings.ToUpper(serial)
		if seen[key] {
			if !flagged[key] {
				report.Duplicated = append(report.Duplicated, serial)
				flagged[key] = true
			}
			continue
		}
		seen[key] = true
		candidates = append(candidates, serial)
	}
	return report, candidates
}

func checkSerials(tx repository.Tx, serials []string) (*SerialReport, error) {
	report, candidates := inspectSerials(serials)
	existing, err := tx.ExistingSerials(candidates)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, s := range existing {
		taken[strings.ToUpper(s)] = true
	}
	for _, c := range candidates {
		if taken[strings.ToUpper(c)] {
			report.AlreadyRegistered = append(report.AlreadyRegistered, c)
			continue
		}
		report.Valid = append(report.Valid, c)
	}
	return report, nil
}

// ValidateSerials checks a batch without registering anything.
func (s *Service) ValidateSerials(ctx context.Context, serials []string) (*SerialReport, error) {
	var report *SerialReport
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		report, err = checkSerials(tx, serials)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// RegisterAssets creates one Available asset per serial. The batch is all or nothing.
func (s *Service) RegisterAssets(ctx context.Context, actor models.Actor, productID int64, serials []string) ([]models.Asset, error) {
	const op = "lifecycle.RegisterAssets"
	fields := []zap.Field{zap.Int64("product_id", productID), zap.Int("batch_size", len(serials))}
	if len(serials) == 0 {
		return nil, s.reject(op, fields, apperr.New(apperr.Validation, op, "at least one serial number is required"))
	}

	var created []models.Asset
	err := s.execute(ctx, op, fields, func(tx repository.Tx) error {
		product, err := tx.FindProduct(productID)
		if err != nil {
			return err
		}
		report, err := checkSerials(tx, serials)
		if err != nil {
			return err
		}
		if !report.Accepted() {
			return &apperr.Error{Kind: apperr.Validation, Op: op, Msg: "serial batch rejected", Details: report}
		}

		now := s.now()
		created = make([]models.Asset, 0, len(report.Valid))
		for _, serial := range report.Valid {
			a := models.Asset{
				SerialNumber: serial,
				ProductID:    product.ID,
				State:        models.AssetAvailable,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.CreateAsset(&a); err != nil {
				return err
			}
			if err := s.record(tx, audit.TableAssets, audit.ActionCreation, a.ID, actor, now, audit.CreationPayload{
				AssetID:      a.ID,
				SerialNumber: a.SerialNumber,
				ProductID:    product.ID,
				Product:      product.DisplayName(),
				State:        a.State,
			}); err != nil {
				return err
			}
			a.Product = product
			created = append(created, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
