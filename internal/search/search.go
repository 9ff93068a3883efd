// Package search runs one term against every entity branch, then merges,
// ranks and paginates the combined result set.
package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"asset_tracker/internal/apperr"
	"asset_tracker/internal/metrics"
	"asset_tracker/internal/models"
	"asset_tracker/internal/repository"
)

// Type selects which branches run.
type Type string

const (
	TypeGeneral      Type = "General"
	TypeSerialNumber Type = "SerialNumber"
	TypeAssignment   Type = "Assignment"
)

// ParseType is case-insensitive. Empty and unknown values resolve to General;
// ok is false only for unknown values.
func ParseType(s string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "general":
		return TypeGeneral, true
	case "serialnumber", "serial_number", "serial":
		return TypeSerialNumber, true
	case "assignment", "sensitive":
		return TypeAssignment, true
	}
	return TypeGeneral, false
}

type ResultType string

const (
	ResultAssignment ResultType = "Assignment"
	ResultAsset      ResultType = "Asset"
	ResultRepair     ResultType = "Repair"
	ResultEmployee   ResultType = "Employee"
	ResultProduct    ResultType = "Product"
	ResultSector     ResultType = "Sector"
	ResultBranch     ResultType = "Branch"
)

var priority = map[ResultType]int{
	ResultAssignment: 0,
	ResultAsset:      1,
	ResultRepair:     2,
	ResultEmployee:   3,
	ResultProduct:    4,
	ResultSector:     5,
	ResultBranch:     6,
}

func rank(t ResultType) int {
	if p, ok := priority[t]; ok {
		return p
	}
	return len(priority)
}

type Result struct {
	Type         ResultType `json:"type"`
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Date         *time.Time `json:"date"`
	SerialNumber string     `json:"serial_number,omitempty"`
	Sensitive    *string    `json:"sensitive"`
	RelatedInfo  string     `json:"related_info"`
}

type Page struct {
	Results    []Result `json:"results"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
	Type       Type     `json:"type"`
}

// Source is the read side queried by each branch. Patterns arrive lowered and
// wrapped in wildcards.
type Source interface {
	SerialMatches(ctx context.Context, pattern string, limit int) ([]repository.SerialHit, error)
	AssignmentMatches(ctx context.Context, pattern string, limit int) ([]models.Assignment, error)
	EmployeeMatches(ctx context.Context, pattern string, limit int) ([]models.Employee, error)
	ProductMatches(ctx context.Context, pattern string, limit int) ([]models.Product, error)
	SectorMatches(ctx context.Context, pattern string, limit int) ([]models.Sector, error)
	BranchMatches(ctx context.Context, pattern string, limit int) ([]models.Branch, error)
}

const (
	DefaultPageSize    = 20
	DefaultBranchLimit = 50
	DefaultMaxPageSize = 100
)

type Aggregator struct {
	source      Source
	logger      *zap.Logger
	branchLimit int
	maxPageSize int
}

func NewAggregator(source Source, logger *zap.Logger, branchLimit, maxPageSize int) *Aggregator {
	if branchLimit <= 0 {
		branchLimit = DefaultBranchLimit
	}
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	return &Aggregator{source: source, logger: logger, branchLimit: branchLimit, maxPageSize: maxPageSize}
}

type branch func(ctx context.Context, pattern string) ([]Result, error)

// Search never takes locks; results may trail concurrent lifecycle changes.
func (a *Aggregator) Search(ctx context.Context, term, searchType string, page, pageSize int) (*Page, error) {
	const op = "search.Search"
	started := time.Now()

	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperr.New(apperr.Validation, op, "search term is required")
	}
	typ, ok := ParseType(searchType)
	if !ok {
		a.logger.Debug("unknown search type, using General", zap.String("type", searchType))
	}
	pattern := Pattern(term)

	branches := a.branchesFor(typ)
	slots := make([][]Result, len(branches))
	g, gCtx := errgroup.WithContext(ctx)
	for i, run := range branches {
		i, run := i, run
		g.Go(func() error {
			results, err := run(gCtx, pattern)
			if err != nil {
				return err
			}
			slots[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.logger.Error("search branch failed", zap.String("type", string(typ)), zap.Error(err))
		return nil, apperr.Wrap(apperr.Unexpected, op, err)
	}

	merged := merge(slots)
	out := paginate(merged, page, pageSize, a.maxPageSize)
	out.Type = typ
	metrics.ObserveSearch(string(typ), out.Total, started)
	return out, nil
}

func (a *Aggregator) branchesFor(typ Type) []branch {
	switch typ {
	case TypeSerialNumber:
		return []branch{a.serials}
	case TypeAssignment:
		return []branch{a.assignments}
	}
	return []branch{a.serials, a.assignments, a.employees, a.products, a.sectors, a.branches}
}

// Pattern lowers term, escapes LIKE metacharacters and wraps it in wildcards.
func Pattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

// merge drops repeated (type, id) pairs, keeping the first, and orders by type
// priority, then title, then id.
func merge(slots [][]Result) []Result {
	type key struct {
		t  ResultType
		id int64
	}
	seen := make(map[key]bool)
	var out []Result
	for _, slot := range slots {
		for _, r := range slot {
			k := key{r.Type, r.ID}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if pi, pj := rank(out[i].Type), rank(out[j].Type); pi != pj {
			return pi < pj
		}
		if ti, tj := strings.ToLower(out[i].Title), strings.ToLower(out[j].Title); ti != tj {
			return ti < tj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func paginate(all []Result, page, pageSize, maxPageSize int) *Page {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	total := len(all)
	p := &Page{
		Results:    []Result{},
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	if page > p.TotalPages {
		return p
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	p.Results = append(p.Results, all[start:end]...)
	return p
}
