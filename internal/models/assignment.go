package models

import (
	"strconv"
	"time"
)

// Assignment binds an asset to exactly one destination. EmployeeID, SectorID and
// BranchID are mutually exclusive; write them only through SetDestination.
type Assignment struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	AssetID    int64      `gorm:"index;not null" json:"asset_id"`
	EmployeeID *int64     `gorm:"index" json:"employee_id,omitempty"`
	SectorID   *int64     `gorm:"index" json:"sector_id,omitempty"`
	BranchID   *int64     `gorm:"index" json:"branch_id,omitempty"`
	AssignedAt time.Time  `gorm:"not null" json:"assigned_at"`
	ReturnedAt *time.Time `json:"returned_at"`
	Active     bool       `gorm:"index;not null;default:true" json:"active"`
	Cancelled  bool       `gorm:"not null;default:false" json:"cancelled"`
	Notes      string     `gorm:"type:text" json:"notes,omitempty"`

	Sensitive SensitivePayload `gorm:"embedded" json:"sensitive"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Asset    *Asset    `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
	Employee *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Sector   *Sector   `gorm:"foreignKey:SectorID" json:"sector,omitempty"`
	Branch   *Branch   `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}

func (a *Assignment) SetDestination(d Destination) {
	id := d.ID
	a.EmployeeID, a.SectorID, a.BranchID = nil, nil, nil
	switch d.Kind {
	case DestinationEmployee:
		a.EmployeeID = &id
	case DestinationSector:
		a.SectorID = &id
	case DestinationBranch:
		a.BranchID = &id
	}
}

func (a *Assignment) Destination() Destination {
	switch {
	case a.EmployeeID != nil:
		return EmployeeDestination(*a.EmployeeID)
	case a.SectorID != nil:
		return SectorDestination(*a.SectorID)
	case a.BranchID != nil:
		return BranchDestination(*a.BranchID)
	}
	return Destination{}
}

// DestinationLabel renders the destination using whichever relation is loaded.
func (a *Assignment) DestinationLabel() string {
	switch {
	case a.Employee != nil:
		return "Employee: " + a.Employee.FullName()
	case a.Sector != nil:
		return "Sector: " + a.Sector.Name
	case a.Branch != nil:
		return "Branch: " + a.Branch.Name
	}
	d := a.Destination()
	if d.Kind == "" {
		return ""
	}
	return string(d.Kind) + " #" + strconv.FormatInt(d.ID, 10)
}
