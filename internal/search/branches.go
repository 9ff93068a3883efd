package search

import (
	"context"
	"fmt"
	"time"

	"asset_tracker/internal/models"
	"asset_tracker/internal/repository"
)

const dateLayout = "2006-01-02"

func (a *Aggregator) serials(ctx context.Context, pattern string) ([]Result, error) {
	hits, err := a.source.SerialMatches(ctx, pattern, a.branchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(hits))
	for i := range hits {
		out = append(out, serialResult(&hits[i]))
	}
	return out, nil
}

// serialResult reports the richest context of a serial hit: its active
// assignment, else its open repair, else the bare inventory record.
func serialResult(hit *repository.SerialHit) Result {
	asset := &hit.Asset
	category := asset.CategoryName()
	switch {
	case hit.Assignment != nil:
		as := hit.Assignment
		return Result{
			Type:         ResultAssignment,
			ID:           as.ID,
			Title:        asset.ProductName(),
			Description:  category,
			Status:       string(asset.State),
			Date:         timePtr(as.AssignedAt),
			SerialNumber: asset.SerialNumber,
			Sensitive:    models.MaskedSensitive(category, as),
			RelatedInfo:  as.DestinationLabel(),
		}
	case hit.Repair != nil:
		r := hit.Repair
		return Result{
			Type:         ResultRepair,
			ID:           r.ID,
			Title:        asset.ProductName(),
			Description:  r.Problem,
			Status:       string(r.State),
			Date:         timePtr(r.SentAt),
			SerialNumber: asset.SerialNumber,
			RelatedInfo:  fmt.Sprintf("Provider: %s | Sent: %s", r.Provider, r.SentAt.Format(dateLayout)),
		}
	}
	return Result{
		Type:         ResultAsset,
		ID:           asset.ID,
		Title:        asset.ProductName(),
		Description:  category,
		Status:       string(asset.State),
		Date:         timePtr(asset.CreatedAt),
		SerialNumber: asset.SerialNumber,
		RelatedInfo:  "In inventory",
	}
}

func (a *Aggregator) assignments(ctx context.Context, pattern string) ([]Result, error) {
	list, err := a.source.AssignmentMatches(ctx, pattern, a.branchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(list))
	for i := range list {
		out = append(out, assignmentResult(&list[i]))
	}
	return out, nil
}

func assignmentResult(as *models.Assignment) Result {
	var asset models.Asset
	if as.Asset != nil {
		asset = *as.Asset
	}
	category := asset.CategoryName()
	related := "Assigned on " + as.AssignedAt.Format(dateLayout)
	if models.SensitiveKindFor(category) == models.SensitivePhone {
		related = fmt.Sprintf("Mail: %s | Phone: %s | 2FA: %s",
			as.Sensitive.MailAccount, as.Sensitive.PhoneNumber, as.Sensitive.TwoFactorRecovery)
	}
	return Result{
		Type:         ResultAssignment,
		ID:           as.ID,
		Title:        asset.ProductName(),
		Description:  as.DestinationLabel(),
		Status:       string(asset.State),
		Date:         timePtr(as.AssignedAt),
		SerialNumber: asset.SerialNumber,
		Sensitive:    models.MaskedSensitive(category, as),
		RelatedInfo:  related,
	}
}

func (a *Aggregator) employees(ctx context.Context, pattern string) ([]Result, error) {
	list, err := a.source.EmployeeMatches(ctx, pattern, a.branchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(list))
	for _, e := range list {
		r := Result{Type: ResultEmployee, ID: e.ID, Title: e.FullName(), Description: e.Email}
		if e.Sector != nil {
			r.RelatedInfo = "Sector: " + e.Sector.Name
		}
		out = append(out, r)
	}
	return out, nil
}

func (a *Aggregator) products(ctx context.Context, pattern string) ([]Result, error) {
	list, err := a.source.ProductMatches(ctx, pattern, a.branchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(list))
	for _, p := range list {
		r := Result{Type: ResultProduct, ID: p.ID, Title: p.DisplayName(), RelatedInfo: p.Description}
		if p.Category != nil {
			r.Description = p.Category.Name
		}
		out = append(out, r)
	}
	return out, nil
}

func (a *Aggregator) sectors(ctx context.Context, pattern string) ([]Result, error) {
	list, err := a.source.SectorMatches(ctx, pattern, a.branchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(list))
	for _, s := range list {
		out = append(out, Result{Type: ResultSector, ID: s.ID, Title: s.Name})
	}
	return out, nil
}

func (a *Aggregator) branches(ctx context.Context, pattern string) ([]Result, error) {
	list, err := a.source.BranchMatches(ctx, pattern, a.branchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(list))
	for _, b := range list {
		out = append(out, Result{Type: ResultBranch, ID: b.ID, Title: b.Name, Description: b.Address})
	}
	return out, nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
