// Package history replays the audit log of one asset into a timeline.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"asset_tracker/internal/audit"
	"asset_tracker/internal/models"
)

type EventKind string

const (
	EventCreation           EventKind = "creation"
	EventStateChange        EventKind = "state_change"
	EventNewAssignment      EventKind = "new_assignment"
	EventReturn             EventKind = "return"
	EventCancellation       EventKind = "cancellation"
	EventSentToRepair       EventKind = "sent_to_repair"
	EventReturnedFromRepair EventKind = "returned_from_repair"
	EventUnknown            EventKind = "unknown"
)

type TimelineEvent struct {
	ID          int64     `json:"id"`
	Kind        EventKind `json:"kind"`
	Table       string    `json:"table"`
	Action      string    `json:"action"`
	RecordID    int64     `json:"record_id"`
	Label       string    `json:"label"`
	Observation string    `json:"observation"`
	At          time.Time `json:"at"`
	UserID      int64     `json:"user_id"`
	UserName    string    `json:"user_name"`
}

// TrailSource returns the audit entries that reference an asset directly or
// through its assignments and repairs.
type TrailSource interface {
	AuditTrail(ctx context.Context, assetID int64) ([]models.AuditLog, error)
}

type Reconstructor struct {
	source TrailSource
	logger *zap.Logger
}

func NewReconstructor(source TrailSource, logger *zap.Logger) *Reconstructor {
	return &Reconstructor{source: source, logger: logger}
}

// GetHistory returns the asset's timeline, newest first. A malformed entry
// becomes an EventUnknown instead of failing the whole fetch.
func (r *Reconstructor) GetHistory(ctx context.Context, assetID int64) ([]TimelineEvent, error) {
	logs, err := r.source.AuditTrail(ctx, assetID)
	if err != nil {
		return nil, err
	}

	events := make([]TimelineEvent, 0, len(logs))
	for _, entry := range logs {
		ev, err := Decode(entry)
		if err != nil {
			r.logger.Debug("audit entry fell back to raw rendering",
				zap.Int64("audit_id", entry.ID),
				zap.String("table", entry.ResourceType),
				zap.String("action", entry.Action),
				zap.Error(err))
		}
		events = append(events, ev)
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].At.Equal(events[j].At) {
			return events[i].At.After(events[j].At)
		}
		return events[i].ID > events[j].ID
	})
	return events, nil
}

type key struct{ table, action string }

type rendered struct {
	kind        EventKind
	label       string
	observation string
}

type decoder func(raw []byte) (rendered, error)

var decoders = map[key]decoder{
	{audit.TableAssets, audit.ActionCreation}:            decodeCreation,
	{audit.TableAssets, audit.ActionStateChange}:         decodeStateChange,
	{audit.TableAssignments, audit.ActionNewAssignment}:  decodeNewAssignment,
	{audit.TableAssignments, audit.ActionReturn}:         decodeReturn,
	{audit.TableAssignments, audit.ActionCancellation}:   decodeCancellation,
	{audit.TableRepairs, audit.ActionSentToRepair}:       decodeSentToRepair,
	{audit.TableRepairs, audit.ActionReturnedFromRepair}: decodeReturnedFromRepair,
}

var (
	errEmptyPayload  = errors.New("empty payload")
	errUnknownAction = errors.New("no decoder for table/action")
)

// Decode renders one audit entry. On error the returned event is the generic
// fallback and is still usable.
func Decode(entry models.AuditLog) (TimelineEvent, error) {
	ev := TimelineEvent{
		ID:       entry.ID,
		Table:    entry.ResourceType,
		Action:   entry.Action,
		RecordID: entry.ResourceID,
		At:       entry.CreatedAt,
		UserID:   entry.UserID,
		UserName: entry.InitiatorName,
	}

	dec, ok := decoders[key{entry.ResourceType, entry.Action}]
	if !ok {
		return fallback(ev, entry), errUnknownAction
	}
	out, err := dec(entry.Metadata)
	if err != nil {
		return fallback(ev, entry), err
	}
	ev.Kind, ev.Label, ev.Observation = out.kind, out.label, out.observation
	return ev, nil
}

func fallback(ev TimelineEvent, entry models.AuditLog) TimelineEvent {
	ev.Kind = EventUnknown
	ev.Label = fmt.Sprintf("%s - %s", entry.ResourceType, entry.Action)
	ev.Observation = string(entry.Metadata)
	return ev
}

func parse[T any](raw []byte) (T, error) {
	var v T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return v, errEmptyPayload
	}
	err := json.Unmarshal(trimmed, &v)
	return v, err
}
