// Package audit defines the append-only audit vocabulary: which table an entry
// points at, which action it records, and the typed payload for each pair.
package audit

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"asset_tracker/internal/models"
)

// Tables referenced by ResourceType.
const (
	TableAssets      = "assets"
	TableAssignments = "assignments"
	TableRepairs     = "repairs"
)

// Action tags.
const (
	ActionCreation           = "Creation"
	ActionStateChange        = "State Change"
	ActionNewAssignment      = "New Assignment"
	ActionReturn             = "Return"
	ActionCancellation       = "Cancellation"
	ActionSentToRepair       = "Sent to Repair"
	ActionReturnedFromRepair = "Returned from Repair"
)

type CreationPayload struct {
	AssetID      int64             `json:"asset_id"`
	SerialNumber string            `json:"serial_number"`
	ProductID    int64             `json:"product_id"`
	Product      string            `json:"product"`
	State        models.AssetState `json:"state"`
}

// StateChangePayload is only produced by earlier tooling.
type StateChangePayload struct {
	From   models.AssetState `json:"from"`
	To     models.AssetState `json:"to"`
	Reason string            `json:"reason,omitempty"`
}

type NewAssignmentPayload struct {
	AssetID         int64                  `json:"asset_id"`
	SerialNumber    string                 `json:"serial_number"`
	DestinationKind models.DestinationKind `json:"destination_kind"`
	DestinationID   int64                  `json:"destination_id"`
	DestinationName string                 `json:"destination_name"`
}

type ReturnPayload struct {
	AssetID  int64  `json:"asset_id"`
	Notes    string `json:"notes,omitempty"`
	Implicit bool   `json:"implicit,omitempty"` // closed by SendToRepair
}

type CancellationPayload struct {
	AssetID int64  `json:"asset_id"`
	Reason  string `json:"reason"`
}

type SentToRepairPayload struct {
	AssetID            int64  `json:"asset_id"`
	Provider           string `json:"provider"`
	Problem            string `json:"problem"`
	ClosedAssignmentID *int64 `json:"closed_assignment_id,omitempty"`
}

type ReturnedFromRepairPayload struct {
	AssetID    int64              `json:"asset_id"`
	Outcome    models.RepairState `json:"outcome"`
	Resolution string             `json:"resolution"`
	AssetState models.AssetState  `json:"asset_state"`
}

// NewEntry builds an audit row for one mutation performed by actor.
func NewEntry(table, action string, recordID int64, actor models.Actor, at time.Time, payload any) (*models.AuditLog, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &models.AuditLog{
		UserID:        actor.ID,
		Action:        action,
		ResourceType:  table,
		ResourceID:    recordID,
		Metadata:      datatypes.JSON(raw),
		IP:            actor.IP,
		UserAgent:     actor.UserAgent,
		InitiatorName: actor.Name,
		CreatedAt:     at,
	}, nil
}
