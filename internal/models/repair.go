package models

import "time"

type RepairState string

const (
	RepairInProgress RepairState = "InRepair"
	RepairRepaired   RepairState = "Repaired"
	RepairUnrepaired RepairState = "Unrepaired"
)

// IsOutcome reports whether s is a terminal outcome accepted by ReturnFromRepair.
func (s RepairState) IsOutcome() bool {
	return s == RepairRepaired || s == RepairUnrepaired
}

type Repair struct {
	ID         int64       `gorm:"primaryKey" json:"id"`
	AssetID    int64       `gorm:"index;not null" json:"asset_id"`
	Provider   string      `gorm:"size:150;not null" json:"provider"`
	Problem    string      `gorm:"type:text;not null" json:"problem"`
	Resolution *string     `gorm:"type:text" json:"resolution"`
	State      RepairState `gorm:"size:16;index;not null" json:"state"`
	SentAt     time.Time   `gorm:"not null" json:"sent_at"`
	ReturnedAt *time.Time  `json:"returned_at"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`

	Asset *Asset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
}

func (r *Repair) Open() bool { return r.State == RepairInProgress }
