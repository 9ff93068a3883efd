package repository

import (
	"context"

	"asset_tracker/internal/apperr"
	"asset_tracker/internal/audit"
	"asset_tracker/internal/models"
)

func (s *GormStore) GetAsset(ctx context.Context, id int64) (*models.Asset, error) {
	var a models.Asset
	if err := s.db.WithContext(ctx).Preload("Product.Category").First(&a, id).Error; err != nil {
		return nil, notFound(err, "repository.GetAsset", "asset", id)
	}
	return &a, nil
}

// ListAssets pages through assets ordered by id. An empty state lists every asset.
func (s *GormStore) ListAssets(ctx context.Context, state models.AssetState, page, size int) ([]models.Asset, int64, error) {
	const op = "repository.ListAssets"
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	q := s.db.WithContext(ctx).Model(&models.Asset{})
	if state != "" {
		q = q.Where("state = ?", state)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, classify(op, err)
	}

	// Pages past the end skip the query so (page-1)*size never overflows.
	if int64(page-1) >= (total+int64(size)-1)/int64(size) {
		return []models.Asset{}, total, nil
	}

	var assets []models.Asset
	err := q.Preload("Product.Category").
		Order("id ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&assets).Error
	if err != nil {
		return nil, 0, classify(op, err)
	}
	return assets, total, nil
}

func (s *GormStore) GetAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	var a models.Assignment
	err := s.db.WithContext(ctx).
		Preload("Asset.Product.Category").
		Preload("Employee").
		Preload("Sector").
		Preload("Branch").
		First(&a, id).Error
	if err != nil {
		return nil, notFound(err, "repository.GetAssignment", "assignment", id)
	}
	return &a, nil
}

func (s *GormStore) GetRepair(ctx context.Context, id int64) (*models.Repair, error) {
	var r models.Repair
	if err := s.db.WithContext(ctx).Preload("Asset.Product.Category").First(&r, id).Error; err != nil {
		return nil, notFound(err, "repository.GetRepair", "repair", id)
	}
	return &r, nil
}

// AuditTrail returns every audit entry that references the asset directly or
// through one of its assignments or repairs, newest first.
func (s *GormStore) AuditTrail(ctx context.Context, assetID int64) ([]models.AuditLog, error) {
	const op = "repository.AuditTrail"
	db := s.db.WithContext(ctx)

	var exists int64
	if err := db.Model(&models.Asset{}).Where("id = ?", assetID).Count(&exists).Error; err != nil {
		return nil, classify(op, err)
	}
	if exists == 0 {
		return nil, apperr.Newf(apperr.NotFound, op, "asset %d not found", assetID)
	}

	var assignmentIDs, repairIDs []int64
	if err := db.Model(&models.Assignment{}).Where("asset_id = ?", assetID).Pluck("id", &assignmentIDs).Error; err != nil {
		return nil, classify(op, err)
	}
	if err := db.Model(&models.Repair{}).Where("asset_id = ?", assetID).Pluck("id", &repairIDs).Error; err != nil {
		return nil, classify(op, err)
	}

	cond := "(resource_type = ? AND resource_id = ?)"
	args := []interface{}{audit.TableAssets, assetID}
	if len(assignmentIDs) > 0 {
		cond += " OR (resource_type = ? AND resource_id IN ?)"
		args = append(args, audit.TableAssignments, assignmentIDs)
	}
	if len(repairIDs) > 0 {
		cond += " OR (resource_type = ? AND resource_id IN ?)"
		args = append(args, audit.TableRepairs, repairIDs)
	}

	var logs []models.AuditLog
	if err := db.Where(cond, args...).Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, classify(op, err)
	}
	return logs, nil
}

// AuditFilter narrows ListAudit. AfterID is an exclusive id cursor; Query
// matches initiator name, action, table or IP.
type AuditFilter struct {
	AfterID int64
	Limit   int
	Query   string
}

// ListAudit pages through the whole audit log by descending id. next is nil on
// the last page.
func (s *GormStore) ListAudit(ctx context.Context, f AuditFilter) (logs []models.AuditLog, next *int64, err error) {
	q := s.db.WithContext(ctx).Model(&models.AuditLog{}).Order("id DESC")
	if f.AfterID > 0 {
		q = q.Where("id < ?", f.AfterID)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("(initiator_name LIKE ? OR action LIKE ? OR resource_type LIKE ? OR ip LIKE ?)",
			like, like, like, like)
	}

	if err := q.Limit(f.Limit + 1).Find(&logs).Error; err != nil {
		return nil, nil, classify("repository.ListAudit", err)
	}
	if len(logs) > f.Limit {
		cursor := logs[f.Limit-1].ID
		logs = logs[:f.Limit]
		next = &cursor
	}
	return logs, next, nil
}
