// Package lifecycle is the asset state machine:
//
//	Available -> Assigned      Assign
//	Assigned  -> Available     Return, CancelAssignment
//	Available -> InRepair      SendToRepair
//	Assigned  -> InRepair      SendToRepair (closes the assignment first)
//	InRepair  -> Available     ReturnFromRepair(Repaired)
//	InRepair  -> Retired       ReturnFromRepair(Unrepaired)
//
// Retired is terminal. Each operation locks the asset row, re-reads its state,
// and commits the state flip, the child record and the audit entry together.
package lifecycle

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"asset_tracker/internal/apperr"
	"asset_tracker/internal/audit"
	"asset_tracker/internal/metrics"
	"asset_tracker/internal/models"
	"asset_tracker/internal/repository"
)

// MinCancelReasonLength is the shortest justification CancelAssignment accepts.
const MinCancelReasonLength = 5

const implicitReturnNote = "Closed automatically: sent to repair"

type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Service)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store repository.Store, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assign binds an Available asset to one destination. Sensitive fields that do
// not belong to the asset's category are withheld.
func (s *Service) Assign(ctx context.Context, actor models.Actor, assetID int64, dest models.Destination, payload *models.SensitivePayload) (*models.Assignment, error) {
	const op = "lifecycle.Assign"
	fields := []zap.Field{
		zap.Int64("asset_id", assetID),
		zap.String("destination_kind", string(dest.Kind)),
		zap.Int64("destination_id", dest.ID),
	}
	if err := dest.Validate(); err != nil {
		return nil, s.reject(op, fields, err)
	}

	var created *models.Assignment
	err := s.execute(ctx, op, fields, func(tx repository.Tx) error {
		asset, err := tx.LockAsset(assetID)
		if err != nil {
			return err
		}
		if asset.State != models.AssetAvailable {
			return invalidState(op, asset, models.AssetAvailable)
		}
		if err := ensureConsistent(tx, op, asset); err != nil {
			return err
		}
		destName, err := tx.DestinationName(dest)
		if err != nil {
			return err
		}

		now := s.now()
		a := &models.Assignment{AssetID: asset.ID, AssignedAt: now, Active: true}
		a.SetDestination(dest)
		if payload != nil {
			a.Sensitive = payload.Restrict(models.SensitiveKindFor(asset.CategoryName()))
		}
		if err := tx.CreateAssignment(a); err != nil {
			return err
		}
		if err := tx.SetAssetState(asset.ID, models.AssetAssigned); err != nil {
			return err
		}
		if err := s.record(tx, audit.TableAssignments, audit.ActionNewAssignment, a.ID, actor, now, audit.NewAssignmentPayload{
			AssetID:         asset.ID,
			SerialNumber:    asset.SerialNumber,
			DestinationKind: dest.Kind,
			DestinationID:   dest.ID,
			DestinationName: destName,
		}); err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Return closes an active assignment as part of normal operation.
func (s *Service) Return(ctx context.Context, actor models.Actor, assignmentID int64, notes string) (*models.Assignment, error) {
	return s.closeAssignment(ctx, "lifecycle.Return", actor, assignmentID, strings.TrimSpace(notes), false)
}

// CancelAssignment closes an assignment that was recorded by mistake. It is
// audited as a Cancellation, never as a Return.
func (s *Service) CancelAssignment(ctx context.Context, actor models.Actor, assignmentID int64, reason string) (*models.Assignment, error) {
	const op = "lifecycle.CancelAssignment"
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < MinCancelReasonLength {
		return nil, s.reject(op, []zap.Field{zap.Int64("assignment_id", assignmentID)},
			apperr.Newf(apperr.Validation, op, "reason must be at least %d characters", MinCancelReasonLength))
	}
	return s.closeAssignment(ctx, op, actor, assignmentID, reason, true)
}

func (s *Service) closeAssignment(ctx context.Context, op string, actor models.Actor, assignmentID int64, text string, cancel bool) (*models.Assignment, error) {
	fields := []zap.Field{zap.Int64("assignment_id", assignmentID), zap.Bool("cancel", cancel)}

	var closed *models.Assignment
	err := s.execute(ctx, op, fields, func(tx repository.Tx) error {
		peek, err := tx.FindAssignment(assignmentID)
		if err != nil {
			return err
		}
		asset, err := tx.LockAsset(peek.AssetID)
		if err != nil {
			return err
		}
		a, err := tx.LockAssignment(assignmentID)
		if err != nil {
			return err
		}
		if !a.Active {
			if asset.State != models.AssetAvailable {
				return apperr.Newf(apperr.InvalidState, op, "assignment %d was closed and asset %d is now %s", assignmentID, asset.ID, asset.State)
			}
			return apperr.Newf(apperr.NotFound, op, "assignment %d is not active", assignmentID)
		}
		if asset.State != models.AssetAssigned {
			return invalidState(op, asset, models.AssetAssigned)
		}

		now := s.now()
		a.Active = false
		a.ReturnedAt = &now
		a.Cancelled = cancel
		if text != "" {
			a.Notes = text
		}
		if err := tx.CloseAssignment(a); err != nil {
			return err
		}
		if err := tx.SetAssetState(asset.ID, models.AssetAvailable); err != nil {
			return err
		}

		if cancel {
			err = s.record(tx, audit.TableAssignments, audit.ActionCancellation, a.ID, actor, now,
				audit.CancellationPayload{AssetID: asset.ID, Reason: text})
		} else {
			err = s.record(tx, audit.TableAssignments, audit.ActionReturn, a.ID, actor, now,
				audit.ReturnPayload{AssetID: asset.ID, Notes: text})
		}
		if err != nil {
			return err
		}
		closed = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// SendToRepair opens a repair for an Available or Assigned asset. An active
// assignment is closed first and audited as an implicit Return.
func (s *Service) SendToRepair(ctx context.Context, actor models.Actor, assetID int64, provider, problem string) (*models.Repair, error) {
	const op = "lifecycle.SendToRepair"
	provider, problem = strings.TrimSpace(provider), strings.TrimSpace(problem)
	fields := []zap.Field{zap.Int64("asset_id", assetID), zap.String("provider", provider)}
	if provider == "" || problem == "" {
		return nil, s.reject(op, fields, apperr.New(apperr.Validation, op, "provider and problem description are required"))
	}

	var created *models.Repair
	err := s.execute(ctx, op, fields, func(tx repository.Tx) error {
		asset, err := tx.LockAsset(assetID)
		if err != nil {
			return err
		}
		if asset.State != models.AssetAvailable && asset.State != models.AssetAssigned {
			return invalidState(op, asset, models.AssetAvailable, models.AssetAssigned)
		}
		actives, err := tx.ActiveAssignments(asset.ID)
		if err != nil {
			return err
		}
		if err := ensureConsistentWith(tx, op, asset, len(actives)); err != nil {
			return err
		}

		now := s.now()
		var closedID *int64
		if asset.State == models.AssetAssigned {
			a := &actives[0]
			a.Active = false
			a.ReturnedAt = &now
			if a.Notes == "" {
				a.Notes = implicitReturnNote
			}
			if err := tx.CloseAssignment(a); err != nil {
				return err
			}
			if err := s.record(tx, audit.TableAssignments, audit.ActionReturn, a.ID, actor, now,
				audit.ReturnPayload{AssetID: asset.ID, Notes: implicitReturnNote, Implicit: true}); err != nil {
				return err
			}
			id := a.ID
			closedID = &id
		}

		r := &models.Repair{
			AssetID:  asset.ID,
			Provider: provider,
			Problem:  problem,
			State:    models.RepairInProgress,
			SentAt:   now,
		}
		if err := tx.CreateRepair(r); err != nil {
			return err
		}
		if err := tx.SetAssetState(asset.ID, models.AssetInRepair); err != nil {
			return err
		}
		if err := s.record(tx, audit.TableRepairs, audit.ActionSentToRepair, r.ID, actor, now, audit.SentToRepairPayload{
			AssetID:            asset.ID,
			Provider:           provider,
			Problem:            problem,
			ClosedAssignmentID: closedID,
		}); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ReturnFromRepair closes an open repair. Repaired puts the asset back in
// stock; Unrepaired retires it for good.
func (s *Service) ReturnFromRepair(ctx context.Context, actor models.Actor, repairID int64, resolution string, outcome models.RepairState) (*models.Repair, error) {
	const op = "lifecycle.ReturnFromRepair"
	resolution = strings.TrimSpace(resolution)
	fields := []zap.Field{zap.Int64("repair_id", repairID), zap.String("outcome", string(outcome))}
	if !outcome.IsOutcome() {
		return nil, s.reject(op, fields, apperr.Newf(apperr.Validation, op, "outcome must be %s or %s", models.RepairRepaired, models.RepairUnrepaired))
	}
	if resolution == "" {
		return nil, s.reject(op, fields, apperr.New(apperr.Validation, op, "resolution description is required"))
	}

	var closed *models.Repair
	err := s.execute(ctx, op, fields, func(tx repository.Tx) error {
		peek, err := tx.FindRepair(repairID)
		if err != nil {
			return err
		}
		asset, err := tx.LockAsset(peek.AssetID)
		if err != nil {
			return err
		}
		r, err := tx.LockRepair(repairID)
		if err != nil {
			return err
		}
		if !r.Open() {
			if asset.State != models.AssetAvailable && asset.State != models.AssetRetired {
				return apperr.Newf(apperr.InvalidState, op, "repair %d was closed and asset %d is now %s", repairID, asset.ID, asset.State)
			}
			return apperr.Newf(apperr.NotFound, op, "repair %d is already closed", repairID)
		}
		if asset.State != models.AssetInRepair {
			return invalidState(op, asset, models.AssetInRepair)
		}

		now := s.now()
		r.State = outcome
		r.Resolution = &resolution
		r.ReturnedAt = &now
		if err := tx.CloseRepair(r); err != nil {
			return err
		}
		next := models.AssetAvailable
		if outcome == models.RepairUnrepaired {
			next = models.AssetRetired
		}
		if err := tx.SetAssetState(asset.ID, next); err != nil {
			return err
		}
		if err := s.record(tx, audit.TableRepairs, audit.ActionReturnedFromRepair, r.ID, actor, now, audit.ReturnedFromRepairPayload{
			AssetID:    asset.ID,
			Outcome:    outcome,
			Resolution: resolution,
			AssetState: next,
		}); err != nil {
			return err
		}
		closed = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

func (s *Service) record(tx repository.Tx, table, action string, recordID int64, actor models.Actor, at time.Time, payload any) error {
	entry, err := audit.NewEntry(table, action, recordID, actor, at, payload)
	if err != nil {
		return apperr.Wrap(apperr.Unexpected, "lifecycle.record", err)
	}
	return tx.AppendAudit(entry)
}

func (s *Service) execute(ctx context.Context, op string, fields []zap.Field, fn func(tx repository.Tx) error) error {
	started := time.Now()
	err := s.store.WithinTx(ctx, fn)
	s.observe(op, started, fields, err)
	return err
}

func (s *Service) reject(op string, fields []zap.Field, err error) error {
	s.observe(op, time.Now(), fields, err)
	return err
}

func (s *Service) observe(op string, started time.Time, fields []zap.Field, err error) {
	name := strings.TrimPrefix(op, "lifecycle.")
	if err == nil {
		metrics.ObserveTransition(name, "success", started)
		s.logger.Info("lifecycle operation committed", append(fields, zap.String("operation", name))...)
		return
	}
	kind := apperr.KindOf(err)
	metrics.ObserveTransition(name, string(kind), started)
	fields = append(fields, zap.String("operation", name), zap.String("kind", string(kind)), zap.Error(err))
	if kind == apperr.Unexpected {
		s.logger.Error("lifecycle operation failed", fields...)
		return
	}
	s.logger.Warn("lifecycle operation rejected", fields...)
}
