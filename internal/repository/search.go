package repository

import (
	"context"

	"asset_tracker/internal/models"
)

// The *Matches queries take an already lowered LIKE pattern and never lock.

func (s *GormStore) SerialMatches(ctx context.Context, pattern string, limit int) ([]SerialHit, error) {
	const op = "repository.SerialMatches"
	db := s.db.WithContext(ctx)

	var assets []models.Asset
	err := db.Preload("Product.Category").
		Where("LOWER(serial_number) LIKE ?", pattern).
		Order("serial_number ASC").
		Limit(limit).
		Find(&assets).Error
	if err != nil {
		return nil, classify(op, err)
	}
	if len(assets) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(assets))
	for i := range assets {
		ids[i] = assets[i].ID
	}

	var assignments []models.Assignment
	err = db.Preload("Employee").Preload("Sector").Preload("Branch").
		Where("asset_id IN ? AND active = ?", ids, true).
		Find(&assignments).Error
	if err != nil {
		return nil, classify(op, err)
	}
	var repairs []models.Repair
	if err := db.Where("asset_id IN ? AND state = ?", ids, models.RepairInProgress).Find(&repairs).Error; err != nil {
		return nil, classify(op, err)
	}

	byAssetAssignment := make(map[int64]*models.Assignment, len(assignments))
	for i := range assignments {
		byAssetAssignment[assignments[i].AssetID] = &assignments[i]
	}
	byAssetRepair := make(map[int64]*models.Repair, len(repairs))
	for i := range repairs {
		byAssetRepair[repairs[i].AssetID] = &repairs[i]
	}

	hits := make([]SerialHit, 0, len(assets))
	for _, a := range assets {
		hit := SerialHit{Asset: a}
		if as, ok := byAssetAssignment[a.ID]; ok {
			hit.Assignment = as
		} else if r, ok := byAssetRepair[a.ID]; ok {
			hit.Repair = r
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// AssignmentMatches finds active assignments whose sensitive fields or whose
// destination (employee, sector, branch) name contains the pattern.
func (s *GormStore) AssignmentMatches(ctx context.Context, pattern string, limit int) ([]models.Assignment, error) {
	var list []models.Assignment
	err := s.db.WithContext(ctx).
		Select("assignments.*").
		Joins("LEFT JOIN employees ON employees.id = assignments.employee_id").
		Joins("LEFT JOIN sectors ON sectors.id = assignments.sector_id").
		Joins("LEFT JOIN branches ON branches.id = assignments.branch_id").
		Where("assignments.active = ?", true).
		Where(`(LOWER(assignments.disk_encryption_password) LIKE ?
			OR LOWER(assignments.mail_account) LIKE ?
			OR LOWER(assignments.mail_password) LIKE ?
			OR LOWER(assignments.phone_number) LIKE ?
			OR LOWER(assignments.two_factor_recovery) LIKE ?
			OR LOWER(CONCAT(employees.first_name, ' ', employees.last_name)) LIKE ?
			OR LOWER(sectors.name) LIKE ?
			OR LOWER(branches.name) LIKE ?)`,
			pattern, pattern, pattern, pattern, pattern, pattern, pattern, pattern).
		Preload("Asset.Product.Category").
		Preload("Employee").
		Preload("Sector").
		Preload("Branch").
		Order("assignments.assigned_at DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, classify("repository.AssignmentMatches", err)
	}
	return list, nil
}

func (s *GormStore) EmployeeMatches(ctx context.Context, pattern string, limit int) ([]models.Employee, error) {
	var list []models.Employee
	err := s.db.WithContext(ctx).Preload("Sector").
		Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern).
		Order("last_name ASC, first_name ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, classify("repository.EmployeeMatches", err)
	}
	return list, nil
}

func (s *GormStore) ProductMatches(ctx context.Context, pattern string, limit int) ([]models.Product, error) {
	var list []models.Product
	err := s.db.WithContext(ctx).Preload("Category").
		Where("LOWER(brand) LIKE ? OR LOWER(model) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern, pattern).
		Order("brand ASC, model ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, classify("repository.ProductMatches", err)
	}
	return list, nil
}

func (s *GormStore) SectorMatches(ctx context.Context, pattern string, limit int) ([]models.Sector, error) {
	var list []models.Sector
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern).
		Order("name ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, classify("repository.SectorMatches", err)
	}
	return list, nil
}

func (s *GormStore) BranchMatches(ctx context.Context, pattern string, limit int) ([]models.Branch, error) {
	var list []models.Branch
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, classify("repository.BranchMatches", err)
	}
	return list, nil
}
