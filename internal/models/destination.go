package models

import "asset_tracker/internal/apperr"

type DestinationKind string

const (
	DestinationEmployee DestinationKind = "employee"
	DestinationSector   DestinationKind = "sector"
	DestinationBranch   DestinationKind = "branch"
)

// Destination is exactly one of employee, sector or branch.
type Destination struct {
	Kind DestinationKind `json:"kind"`
	ID   int64           `json:"id"`
}

func EmployeeDestination(id int64) Destination { return Destination{Kind: DestinationEmployee, ID: id} }
func SectorDestination(id int64) Destination   { return Destination{Kind: DestinationSector, ID: id} }
func BranchDestination(id int64) Destination   { return Destination{Kind: DestinationBranch, ID: id} }

// NewDestination builds a Destination from three optional ids, exactly one of which must be set.
func NewDestination(employeeID, sectorID, branchID *int64) (Destination, error) {
	var (
		d   Destination
		set int
	)
	if employeeID != nil {
		d, set = EmployeeDestination(*employeeID), set+1
	}
	if sectorID != nil {
		d, set = SectorDestination(*sectorID), set+1
	}
	if branchID != nil {
		d, set = BranchDestination(*branchID), set+1
	}
	if set != 1 {
		return Destination{}, apperr.New(apperr.Validation, "models.NewDestination",
			"destination must be exactly one of employee, sector or branch")
	}
	return d, d.Validate()
}

func (d Destination) Validate() error {
	switch d.Kind {
	case DestinationEmployee, DestinationSector, DestinationBranch:
	default:
		return apperr.Newf(apperr.Validation, "models.Destination", "unknown destination kind %q", d.Kind)
	}
	if d.ID <= 0 {
		return apperr.New(apperr.Validation, "models.Destination", "destination id must be positive")
	}
	return nil
}
