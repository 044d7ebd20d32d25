package tab

import (
	"context"
	"sort"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/bartab/internal/domain/product"
)

// Sentinel errors for store operations.
var (
	ErrTabNotFound         = errors.New("tab not found")
	ErrTableNumberRequired = errors.New("table number required")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrInvalidStatus       = errors.New("unknown tab status")
)

// Snapshotter persists the full tab collection under a fixed key and
// rehydrates it on start. Load returns an empty collection when nothing
// was persisted yet or the stored document cannot be parsed.
// Implementations must not retain the slice passed to Save.
type Snapshotter interface {
	Save(ctx context.Context, tabs []Tab) error
	Load(ctx context.Context) ([]Tab, error)
}

// Store is the authoritative collection of tabs, paired with the menu
// catalog it validates order items against. Every mutation snapshots the
// whole collection through the injected Snapshotter before the new state
// becomes visible, so a failed write surfaces an error and leaves both
// memory and storage on the previous state.
//
// Mutations are serialized by a single mutex; within one running
// instance there is exactly one writer at a time.
type Store struct {
	catalog *product.Catalog
	snap    Snapshotter

	mu   sync.RWMutex
	tabs []Tab
}

// NewStore rehydrates the tab collection from the snapshotter.
func NewStore(ctx context.Context, catalog *product.Catalog, snap Snapshotter) (*Store, error) {
	tabs, err := snap.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load snapshot")
	}
	return &Store{
		catalog: catalog,
		snap:    snap,
		tabs:    tabs,
	}, nil
}

// Catalog exposes the menu catalog backing this store.
func (s *Store) Catalog() *product.Catalog {
	return s.catalog
}

// CreateTab opens a new empty tab for the given table and returns it.
func (s *Store) CreateTab(ctx context.Context, tableNumber, customerName string) (Tab, error) {
	if tableNumber == "" {
		return Tab{}, ErrTableNumberRequired
	}

	t := Tab{
		ID:           uuid.New().String(),
		TableNumber:  tableNumber,
		CustomerName: customerName,
		Status:       StatusOpen,
		Items:        []OrderItem{},
		OpenedAt:     nowMillis(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(s.cloneTabs(), t)
	if err := s.persist(ctx, next); err != nil {
		return Tab{}, err
	}
	return t.clone(), nil
}

// AddItem appends one order line to the tab, snapshotting the product's
// current name and price. Repeated calls for the same product always
// create new lines; collapsing them is left to the grouped view.
// It returns ErrTabNotFound or product.ErrNotFound when either side of
// the reference is missing.
func (s *Store) AddItem(ctx context.Context, tabID, productID string, quantity int) (OrderItem, error) {
	if quantity < 1 {
		return OrderItem{}, ErrInvalidQuantity
	}

	p, err := s.catalog.GetByID(productID)
	if err != nil {
		return OrderItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cloneTabs()
	i, ok := indexOf(next, tabID)
	if !ok {
		return OrderItem{}, ErrTabNotFound
	}

	item := OrderItem{
		ID:          uuid.New().String(),
		ProductID:   p.ID,
		ProductName: p.Name,
		Price:       p.Price,
		Quantity:    quantity,
		Timestamp:   nowMillis(),
	}
	next[i].Items = append(next[i].Items, item)

	if err := s.persist(ctx, next); err != nil {
		return OrderItem{}, err
	}
	return item, nil
}

// SetStatus moves the tab to the given status unconditionally: any of
// the three statuses can be set from any other. Entering Closed stamps
// ClosedAt; entering Open clears it; entering Paid leaves it untouched.
func (s *Store) SetStatus(ctx context.Context, tabID string, status Status) (Tab, error) {
	if !status.Valid() {
		return Tab{}, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cloneTabs()
	i, ok := indexOf(next, tabID)
	if !ok {
		return Tab{}, ErrTabNotFound
	}

	next[i].Status = status
	switch status {
	case StatusClosed:
		next[i].ClosedAt = nowMillis()
	case StatusOpen:
		next[i].ClosedAt = 0
	}

	if err := s.persist(ctx, next); err != nil {
		return Tab{}, err
	}
	return next[i].clone(), nil
}

// CloseTab marks the tab as billed and awaiting payment.
func (s *Store) CloseTab(ctx context.Context, tabID string) (Tab, error) {
	return s.SetStatus(ctx, tabID, StatusClosed)
}

// PayTab marks the tab as settled.
func (s *Store) PayTab(ctx context.Context, tabID string) (Tab, error) {
	return s.SetStatus(ctx, tabID, StatusPaid)
}

// ReopenTab moves the tab back to Open and clears ClosedAt.
func (s *Store) ReopenTab(ctx context.Context, tabID string) (Tab, error) {
	return s.SetStatus(ctx, tabID, StatusOpen)
}

// DeleteTab permanently removes the tab and its items. Deleting an
// unknown id is a no-op.
func (s *Store) DeleteTab(ctx context.Context, tabID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := indexOf(s.tabs, tabID); !ok {
		return nil
	}

	next := make([]Tab, 0, len(s.tabs)-1)
	for _, t := range s.tabs {
		if t.ID != tabID {
			next = append(next, t.clone())
		}
	}
	return s.persist(ctx, next)
}

// GetTab returns a copy of the tab with the given id.
func (s *Store) GetTab(tabID string) (Tab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := indexOf(s.tabs, tabID)
	if !ok {
		return Tab{}, ErrTabNotFound
	}
	return s.tabs[i].clone(), nil
}

// ActiveTabs returns all Open tabs ordered by opening time, oldest
// first, so the dashboard ordering is stable.
func (s *Store) ActiveTabs() []Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Tab, 0, len(s.tabs))
	for _, t := range s.tabs {
		if t.Status == StatusOpen {
			out = append(out, t.clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OpenedAt < out[j].OpenedAt
	})
	return out
}

// History returns all non-Open tabs, most recently closed first. A tab
// that was moved straight to Paid without ever being closed has no
// ClosedAt and sorts after every closed one.
func (s *Store) History() []Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Tab, 0, len(s.tabs))
	for _, t := range s.tabs {
		if t.Status != StatusOpen {
			out = append(out, t.clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ClosedAt > out[j].ClosedAt
	})
	return out
}

// persist writes the candidate collection and commits it on success.
// Callers must hold the write lock.
func (s *Store) persist(ctx context.Context, next []Tab) error {
	if err := s.snap.Save(ctx, next); err != nil {
		return errors.Wrap(err, "save snapshot")
	}
	s.tabs = next
	return nil
}

// cloneTabs deep-copies the collection so in-flight mutations never
// touch the committed state. Callers must hold the write lock.
func (s *Store) cloneTabs() []Tab {
	out := make([]Tab, len(s.tabs))
	for i, t := range s.tabs {
		out[i] = t.clone()
	}
	return out
}

func indexOf(tabs []Tab, tabID string) (int, bool) {
	for i, t := range tabs {
		if t.ID == tabID {
			return i, true
		}
	}
	return 0, false
}
