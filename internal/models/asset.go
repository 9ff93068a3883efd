package models

import "time"

type AssetState string

const (
	AssetAvailable AssetState = "Available"
	AssetAssigned  AssetState = "Assigned"
	AssetInRepair  AssetState = "InRepair"
	AssetRetired   AssetState = "Retired"
)

func (s AssetState) Valid() bool {
	switch s {
	case AssetAvailable, AssetAssigned, AssetInRepair, AssetRetired:
		return true
	}
	return false
}

// Asset is one serialized piece of equipment. SerialNumber never changes after creation.
type Asset struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	SerialNumber string     `gorm:"size:64;uniqueIndex;not null" json:"serial_number"`
	ProductID    int64      `gorm:"index;not null" json:"product_id"`
	State        AssetState `gorm:"size:16;index;not null;default:Available" json:"state"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relationships
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// CategoryName returns the product category, or "" when the product was not loaded.
func (a *Asset) CategoryName() string {
	if a.Product == nil || a.Product.Category == nil {
		return ""
	}
	return a.Product.Category.Name
}

func (a *Asset) ProductName() string {
	if a.Product == nil {
		return ""
	}
	return a.Product.DisplayName()
}
