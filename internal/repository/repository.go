// Package repository is the relational store behind the asset lifecycle. Every
// lifecycle mutation runs inside Store.WithinTx and touches rows only through Tx.
package repository

import (
	"context"

	"asset_tracker/internal/models"
)

// Store opens transactional units of work.
type Store interface {
	// WithinTx runs fn in one transaction. fn's error rolls everything back;
	// the returned error always carries an apperr.Kind.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of reads and writes available inside a lifecycle transaction.
// Lock* methods take a row lock held until the transaction ends; always lock the
// asset before its assignment or repair rows.
type Tx interface {
	LockAsset(id int64) (*models.Asset, error)
	LockAssignment(id int64) (*models.Assignment, error)
	LockRepair(id int64) (*models.Repair, error)

	FindAssignment(id int64) (*models.Assignment, error)
	FindRepair(id int64) (*models.Repair, error)
	FindProduct(id int64) (*models.Product, error)

	ActiveAssignments(assetID int64) ([]models.Assignment, error)
	OpenRepairs(assetID int64) ([]models.Repair, error)

	// DestinationName resolves the employee, sector or branch behind d.
	DestinationName(d models.Destination) (string, error)
	// ExistingSerials returns the subset of serials already registered.
	ExistingSerials(serials []string) ([]string, error)

	CreateAsset(a *models.Asset) error
	SetAssetState(assetID int64, state models.AssetState) error
	CreateAssignment(a *models.Assignment) error
	CloseAssignment(a *models.Assignment) error
	CreateRepair(r *models.Repair) error
	CloseRepair(r *models.Repair) error
	AppendAudit(e *models.AuditLog) error
}

// SerialHit is one asset matched by serial number together with its richest
// related record. At most one of Assignment and Repair is set.
type SerialHit struct {
	Asset      models.Asset
	Assignment *models.Assignment
	Repair     *models.Repair
}
