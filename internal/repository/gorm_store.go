package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"asset_tracker/internal/apperr"
	"asset_tracker/internal/models"
)

// MySQL error numbers that mean the row lock could not be obtained.
const (
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
	errLockNowait      = 3572
	errDuplicateEntry  = 1062
)

// GormStore expects the connection to bound row lock waits itself, see
// db.SessionDSN.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	const op = "repository.WithinTx"
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
	return classify(op, err)
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.NotFound, op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.Busy, op, err)
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errLockWaitTimeout, errDeadlock, errLockNowait:
			return apperr.Wrap(apperr.Busy, op, err)
		case errDuplicateEntry:
			// Serial numbers are unique; a concurrent registration won the race.
			return apperr.Wrap(apperr.Validation, op, err)
		}
	}
	return apperr.Wrap(apperr.Unexpected, op, err)
}

func notFound(err error, op, what string, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &apperr.Error{Kind: apperr.NotFound, Op: op, Msg: fmt.Sprintf("%s %d not found", what, id), Err: err}
	}
	return classify(op, err)
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) forUpdate() *gorm.DB {
	return t.db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *gormTx) LockAsset(id int64) (*models.Asset, error) {
	const op = "repository.LockAsset"
	var a models.Asset
	if err := t.forUpdate().First(&a, id).Error; err != nil {
		return nil, notFound(err, op, "asset", id)
	}
	var p models.Product
	if err := t.db.Preload("Category").First(&p, a.ProductID).Error; err != nil {
		// A dangling product reference is a data problem, not a missing asset.
		return nil, apperr.Wrap(apperr.Unexpected, op, err)
	}
	a.Product = &p
	return &a, nil
}

func (t *gormTx) LockAssignment(id int64) (*models.Assignment, error) {
	var a models.Assignment
	if err := t.forUpdate().First(&a, id).Error; err != nil {
		return nil, notFound(err, "repository.LockAssignment", "assignment", id)
	}
	return &a, nil
}

func (t *gormTx) LockRepair(id int64) (*models.Repair, error) {
	var r models.Repair
	if err := t.forUpdate().First(&r, id).Error; err != nil {
		return nil, notFound(err, "repository.LockRepair", "repair", id)
	}
	return &r, nil
}

func (t *gormTx) FindAssignment(id int64) (*models.Assignment, error) {
	var a models.Assignment
	if err := t.db.First(&a, id).Error; err != nil {
		return nil, notFound(err, "repository.FindAssignment", "assignment", id)
	}
	return &a, nil
}

func (t *gormTx) FindRepair(id int64) (*models.Repair, error) {
	var r models.Repair
	if err := t.db.First(&r, id).Error; err != nil {
		return nil, notFound(err, "repository.FindRepair", "repair", id)
	}
	return &r, nil
}

func (t *gormTx) FindProduct(id int64) (*models.Product, error) {
	var p models.Product
	if err := t.db.Preload("Category").First(&p, id).Error; err != nil {
		return nil, notFound(err, "repository.FindProduct", "product", id)
	}
	return &p, nil
}

func (t *gormTx) ActiveAssignments(assetID int64) ([]models.Assignment, error) {
	var list []models.Assignment
	err := t.forUpdate().Where("asset_id = ? AND active = ?", assetID, true).Find(&list).Error
	return list, err
}

func (t *gormTx) OpenRepairs(assetID int64) ([]models.Repair, error) {
	var list []models.Repair
	err := t.forUpdate().Where("asset_id = ? AND state = ?", assetID, models.RepairInProgress).Find(&list).Error
	return list, err
}

func (t *gormTx) DestinationName(d models.Destination) (string, error) {
	const op = "repository.DestinationName"
	switch d.Kind {
	case models.DestinationEmployee:
		var e models.Employee
		if err := t.db.First(&e, d.ID).Error; err != nil {
			return "", notFound(err, op, "employee", d.ID)
		}
		return e.FullName(), nil
	case models.DestinationSector:
		var s models.Sector
		if err := t.db.First(&s, d.ID).Error; err != nil {
			return "", notFound(err, op, "sector", d.ID)
		}
		return s.Name, nil
	case models.DestinationBranch:
		var b models.Branch
		if err := t.db.First(&b, d.ID).Error; err != nil {
			return "", notFound(err, op, "branch", d.ID)
		}
		return b.Name, nil
	}
	return "", d.Validate()
}

func (t *gormTx) ExistingSerials(serials []string) ([]string, error) {
	var out []string
	if len(serials) == 0 {
		return out, nil
	}
	err := t.db.Model(&models.Asset{}).Where("serial_number IN ?", serials).Pluck("serial_number", &out).Error
	return out, err
}

func (t *gormTx) CreateAsset(a *models.Asset) error {
	return t.db.Omit(clause.Associations).Create(a).Error
}

func (t *gormTx) SetAssetState(assetID int64, state models.AssetState) error {
	return t.db.Model(&models.Asset{}).Where("id = ?", assetID).Update("state", state).Error
}

func (t *gormTx) CreateAssignment(a *models.Assignment) error {
	return t.db.Omit(clause.Associations).Create(a).Error
}

func (t *gormTx) CloseAssignment(a *models.Assignment) error {
	return t.db.Model(&models.Assignment{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
		"active":      false,
		"cancelled":   a.Cancelled,
		"returned_at": a.ReturnedAt,
		"notes":       a.Notes,
	}).Error
}

func (t *gormTx) CreateRepair(r *models.Repair) error {
	return t.db.Omit(clause.Associations).Create(r).Error
}

func (t *gormTx) CloseRepair(r *models.Repair) error {
	return t.db.Model(&models.Repair{}).Where("id = ?", r.ID).Updates(map[string]interface{}{
		"state":       r.State,
		"resolution":  r.Resolution,
		"returned_at": r.ReturnedAt,
	}).Error
}

func (t *gormTx) AppendAudit(e *models.AuditLog) error {
	return t.db.Create(e).Error
}
