package lifecycle

import (
	"strings"

	"asset_tracker/internal/apperr"
	"asset_tracker/internal/models"
	"asset_tracker/internal/repository"
)

func invalidState(op string, asset *models.Asset, want ...models.AssetState) error {
	names := make([]string, len(want))
	for i, w := range want {
		names[i] = string(w)
	}
	return apperr.Newf(apperr.InvalidState, op, "asset %d is %s, expected %s",
		asset.ID, asset.State, strings.Join(names, " or "))
}

// Consistent reports whether an asset state agrees with its active child records.
func Consistent(state models.AssetState, activeAssignments, openRepairs int) bool {
	switch state {
	case models.AssetAvailable, models.AssetRetired:
		return activeAssignments == 0 && openRepairs == 0
	case models.AssetAssigned:
		return activeAssignments == 1 && openRepairs == 0
	case models.AssetInRepair:
		return activeAssignments == 0 && openRepairs == 1
	}
	return false
}

func ensureConsistent(tx repository.Tx, op string, asset *models.Asset) error {
	actives, err := tx.ActiveAssignments(asset.ID)
	if err != nil {
		return err
	}
	return ensureConsistentWith(tx, op, asset, len(actives))
}

// ensureConsistentWith refuses to transition an asset whose stored state
// disagrees with its child records.
func ensureConsistentWith(tx repository.Tx, op string, asset *models.Asset, activeAssignments int) error {
	repairs, err := tx.OpenRepairs(asset.ID)
	if err != nil {
		return err
	}
	if !Consistent(asset.State, activeAssignments, len(repairs)) {
		return apperr.Newf(apperr.InvalidState, op,
			"asset %d is %s but has %d active assignments and %d open repairs",
			asset.ID, asset.State, activeAssignments, len(repairs))
	}
	return nil
}
