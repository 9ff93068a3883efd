package lifecycle

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"asset_tracker/internal/apperr"
	"asset_tracker/internal/audit"
	"asset_tracker/internal/models"
	"asset_tracker/internal/repository"
)

// memStore holds one lock per asset row, like SELECT ... FOR UPDATE on the
// assets table. A transaction keeps the locks it took until it ends; a failed
// one replays its undo log in reverse. mu guards the maps themselves.
type memStore struct {
	mu       sync.Mutex
	locks    map[int64]chan struct{}
	lockWait time.Duration

	categories  map[int64]models.Category
	products    map[int64]models.Product
	assets      map[int64]models.Asset
	assignments map[int64]models.Assignment
	repairs     map[int64]models.Repair
	employees   map[int64]models.Employee
	sectors     map[int64]models.Sector
	branches    map[int64]models.Branch
	audits      []models.AuditLog
	nextID      int64

	failAudit error
	onLock    func(assetID int64)
}

func newMemStore() *memStore {
	return &memStore{
		locks:       map[int64]chan struct{}{},
		lockWait:    time.Second,
		categories:  map[int64]models.Category{},
		products:    map[int64]models.Product{},
		assets:      map[int64]models.Asset{},
		assignments: map[int64]models.Assignment{},
		repairs:     map[int64]models.Repair{},
		employees:   map[int64]models.Employee{},
		sectors:     map[int64]models.Sector{},
		branches:    map[int64]models.Branch{},
		nextID:      1000,
	}
}

func (m *memStore) rowLock(assetID int64) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[assetID]
	if !ok {
		l = make(chan struct{}, 1)
		m.locks[assetID] = l
	}
	return l
}

// holdLock takes the asset row lock as another session would and returns
// its release.
func (m *memStore) holdLock(assetID int64) func() {
	l := m.rowLock(assetID)
	l <- struct{}{}
	return func() { <-l }
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx := &memTx{m: m, ctx: ctx}
	defer tx.release()
	if err := fn(tx); err != nil {
		tx.rollback()
		return apperr.Wrap(apperr.Unexpected, "memStore.WithinTx", err)
	}
	return nil
}

// AuditTrail mirrors repository.GormStore.AuditTrail.
func (m *memStore) AuditTrail(_ context.Context, assetID int64) ([]models.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assets[assetID]; !ok {
		return nil, apperr.New(apperr.NotFound, "memStore.AuditTrail", "asset not found")
	}
	var out []models.AuditLog
	for _, e := range m.audits {
		switch e.ResourceType {
		case audit.TableAssets:
			if e.ResourceID == assetID {
				out = append(out, e)
			}
		case audit.TableAssignments:
			if a, ok := m.assignments[e.ResourceID]; ok && a.AssetID == assetID {
				out = append(out, e)
			}
		case audit.TableRepairs:
			if r, ok := m.repairs[e.ResourceID]; ok && r.AssetID == assetID {
				out = append(out, e)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// id expects mu held, or no transaction running.
func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addCategory(name string) int64 {
	id := m.id()
	m.categories[id] = models.Category{ID: id, Name: name}
	return id
}

func (m *memStore) addProduct(brand, model string, categoryID int64) int64 {
	id := m.id()
	m.products[id] = models.Product{ID: id, Brand: brand, Model: model, CategoryID: categoryID}
	return id
}

func (m *memStore) addAsset(serial string, productID int64) int64 {
	id := m.id()
	m.assets[id] = models.Asset{ID: id, SerialNumber: serial, ProductID: productID, State: models.AssetAvailable}
	return id
}

func (m *memStore) addEmployee(first, last string) int64 {
	id := m.id()
	m.employees[id] = models.Employee{ID: id, FirstName: first, LastName: last}
	return id
}

func (m *memStore) addSector(name string) int64 {
	id := m.id()
	m.sectors[id] = models.Sector{ID: id, Name: name}
	return id
}

func (m *memStore) counts(assetID int64) (active, open int) {
	for _, a := range m.assignments {
		if a.AssetID == assetID && a.Active {
			active++
		}
	}
	for _, r := range m.repairs {
		if r.AssetID == assetID && r.Open() {
			open++
		}
	}
	return active, open
}

type memTx struct {
	m    *memStore
	ctx  context.Context
	held []int64
	undo []func()
}

func (t *memTx) release() {
	for _, id := range t.held {
		<-t.m.rowLock(id)
	}
	t.held = nil
}

func (t *memTx) rollback() {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// remember records how to restore m[id] to its current value. Callers hold mu.
func remember[V any](t *memTx, m map[int64]V, id int64) {
	prev, ok := m[id]
	t.undo = append(t.undo, func() {
		if ok {
			m[id] = prev
		} else {
			delete(m, id)
		}
	})
}

func (t *memTx) lock(assetID int64) error {
	for _, id := range t.held {
		if id == assetID {
			return nil
		}
	}
	select {
	case t.m.rowLock(assetID) <- struct{}{}:
	case <-time.After(t.m.lockWait):
		return apperr.Newf(apperr.Busy, "memTx.LockAsset", "lock wait timeout on asset %d", assetID)
	case <-t.ctx.Done():
		return apperr.Wrap(apperr.Busy, "memTx.LockAsset", t.ctx.Err())
	}
	t.held = append(t.held, assetID)
	if t.m.onLock != nil {
		t.m.onLock(assetID)
	}
	return nil
}

func missing(what string) error {
	return apperr.New(apperr.NotFound, "memTx", what+" not found")
}

// product expects mu held.
func (t *memTx) product(id int64) (*models.Product, bool) {
	p, ok := t.m.products[id]
	if !ok {
		return nil, false
	}
	if c, ok := t.m.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	return &p, true
}

func (t *memTx) LockAsset(id int64) (*models.Asset, error) {
	t.m.mu.Lock()
	_, ok := t.m.assets[id]
	t.m.mu.Unlock()
	if !ok {
		return nil, missing("asset")
	}
	if err := t.lock(id); err != nil {
		return nil, err
	}

	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	a := t.m.assets[id]
	if p, ok := t.product(a.ProductID); ok {
		a.Product = p
	}
	return &a, nil
}

func (t *memTx) LockAssignment(id int64) (*models.Assignment, error) { return t.FindAssignment(id) }
func (t *memTx) LockRepair(id int64) (*models.Repair, error)         { return t.FindRepair(id) }

func (t *memTx) FindAssignment(id int64) (*models.Assignment, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	a, ok := t.m.assignments[id]
	if !ok {
		return nil, missing("assignment")
	}
	return &a, nil
}

func (t *memTx) FindRepair(id int64) (*models.Repair, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	r, ok := t.m.repairs[id]
	if !ok {
		return nil, missing("repair")
	}
	return &r, nil
}

func (t *memTx) FindProduct(id int64) (*models.Product, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	p, ok := t.product(id)
	if !ok {
		return nil, missing("product")
	}
	return p, nil
}

func (t *memTx) ActiveAssignments(assetID int64) ([]models.Assignment, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	var out []models.Assignment
	for _, a := range t.m.assignments {
		if a.AssetID == assetID && a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (t *memTx) OpenRepairs(assetID int64) ([]models.Repair, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	var out []models.Repair
	for _, r := range t.m.repairs {
		if r.AssetID == assetID && r.Open() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (t *memTx) DestinationName(d models.Destination) (string, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	switch d.Kind {
	case models.DestinationEmployee:
		if e, ok := t.m.employees[d.ID]; ok {
			return e.FullName(), nil
		}
	case models.DestinationSector:
		if s, ok := t.m.sectors[d.ID]; ok {
			return s.Name, nil
		}
	case models.DestinationBranch:
		if b, ok := t.m.branches[d.ID]; ok {
			return b.Name, nil
		}
	}
	return "", missing(string(d.Kind))
}

func (t *memTx) ExistingSerials(serials []string) ([]string, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	var out []string
	for _, s := range serials {
		for _, a := range t.m.assets {
			if strings.EqualFold(a.SerialNumber, s) {
				out = append(out, a.SerialNumber)
			}
		}
	}
	return out, nil
}

func (t *memTx) CreateAsset(a *models.Asset) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	a.ID = t.m.id()
	remember(t, t.m.assets, a.ID)
	stored := *a
	stored.Product = nil
	t.m.assets[a.ID] = stored
	return nil
}

func (t *memTx) SetAssetState(assetID int64, state models.AssetState) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	a, ok := t.m.assets[assetID]
	if !ok {
		return missing("asset")
	}
	remember(t, t.m.assets, assetID)
	a.State = state
	t.m.assets[assetID] = a
	return nil
}

func (t *memTx) CreateAssignment(a *models.Assignment) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	a.ID = t.m.id()
	remember(t, t.m.assignments, a.ID)
	t.m.assignments[a.ID] = *a
	return nil
}

func (t *memTx) CloseAssignment(a *models.Assignment) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	stored, ok := t.m.assignments[a.ID]
	if !ok {
		return missing("assignment")
	}
	remember(t, t.m.assignments, a.ID)
	stored.Active, stored.Cancelled, stored.ReturnedAt, stored.Notes = false, a.Cancelled, a.ReturnedAt, a.Notes
	t.m.assignments[a.ID] = stored
	return nil
}

func (t *memTx) CreateRepair(r *models.Repair) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	r.ID = t.m.id()
	remember(t, t.m.repairs, r.ID)
	t.m.repairs[r.ID] = *r
	return nil
}

func (t *memTx) CloseRepair(r *models.Repair) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	stored, ok := t.m.repairs[r.ID]
	if !ok {
		return missing("repair")
	}
	remember(t, t.m.repairs, r.ID)
	stored.State, stored.Resolution, stored.ReturnedAt = r.State, r.Resolution, r.ReturnedAt
	t.m.repairs[r.ID] = stored
	return nil
}

func (t *memTx) AppendAudit(e *models.AuditLog) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.m.failAudit != nil {
		return t.m.failAudit
	}
	e.ID = t.m.id()
	t.m.audits = append(t.m.audits, *e)
	id := e.ID
	t.undo = append(t.undo, func() {
		for i := range t.m.audits {
			if t.m.audits[i].ID == id {
				t.m.audits = append(t.m.audits[:i], t.m.audits[i+1:]...)
				return
			}
		}
	})
	return nil
}

var errDiskFull = errors.New("disk full")
