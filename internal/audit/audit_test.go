package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset_tracker/internal/models"
)

func TestNewEntry(t *testing.T) {
	at := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	actor := models.Actor{ID: 9, Name: "Dana Ops", IP: "10.0.0.7", UserAgent: "curl/8"}

	entry, err := NewEntry(TableAssignments, ActionCancellation, 41, actor, at,
		CancellationPayload{AssetID: 3, Reason: "wrong employee"})
	require.NoError(t, err)

	assert.Equal(t, int64(9), entry.UserID)
	assert.Equal(t, "Dana Ops", entry.InitiatorName)
	assert.Equal(t, "10.0.0.7", entry.IP)
	assert.Equal(t, TableAssignments, entry.ResourceType)
	assert.Equal(t, int64(41), entry.ResourceID)
	assert.Equal(t, ActionCancellation, entry.Action)
	assert.Equal(t, at, entry.CreatedAt)

	var p CancellationPayload
	require.NoError(t, json.Unmarshal(entry.Metadata, &p))
	assert.Equal(t, "wrong employee", p.Reason)
}

func TestNewEntryRejectsUnencodablePayload(t *testing.T) {
	_, err := NewEntry(TableAssets, ActionCreation, 1, models.Actor{}, time.Now(), map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}
