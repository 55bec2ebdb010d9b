// Package inventory implements item mutations and the change log derived from them.
//
// Every write to an item goes through Service. A write and the change log
// entry describing it commit in the same transaction, and every item access is
// gated by CanAccessItem.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rogerio-castellano/inventory-changelog/internal/models"
	"github.com/rogerio-castellano/inventory-changelog/internal/repo"
)

// DefaultLowStockThreshold is the quantity at or below which an item counts as low stock.
const DefaultLowStockThreshold = 5

var (
	// ErrItemNotFound is also returned for items the actor may not access.
	ErrItemNotFound   = repo.ErrItemNotFound
	ErrChangeNotFound = repo.ErrChangeNotFound
)

// ChangeObserver is notified once per committed change log entry.
type ChangeObserver interface {
	ObserveChange(ct models.ChangeType)
}

type Service struct {
	store    repo.Store
	logger   *slog.Logger
	observer ChangeObserver
	lowStock int
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithObserver(o ChangeObserver) Option {
	return func(s *Service) { s.observer = o }
}

func WithLowStockThreshold(n int) Option {
	return func(s *Service) { s.lowStock = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store repo.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		logger:   slog.Default(),
		lowStock: DefaultLowStockThreshold,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) LowStockThreshold() int {
	return s.lowStock
}

func (s *Service) IsLowStock(it models.Item) bool {
	return it.Quantity <= s.lowStock
}

// timestamp is truncated to what PostgreSQL stores so a round trip compares equal.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Service) newEntry(it models.Item, actor models.Actor, oldQty int, ct models.ChangeType, at time.Time) models.ChangeLog {
	changedBy := actor.ID
	return models.ChangeLog{
		ItemID:            it.ID,
		OwnerID:           it.OwnerID,
		ChangedBy:         &changedBy,
		ChangedByUsername: actor.Username,
		OldQuantity:       oldQty,
		NewQuantity:       it.Quantity,
		ChangeType:        ct,
		ChangeDate:        at,
	}
}

func (s *Service) committed(entry models.ChangeLog) {
	if s.observer != nil {
		s.observer.ObserveChange(entry.ChangeType)
	}
	s.logger.Info("inventory change recorded",
		"item_id", entry.ItemID,
		"change_type", entry.ChangeType,
		"old_quantity", entry.OldQuantity,
		"new_quantity", entry.NewQuantity,
		"changed_by", entry.ChangedByUsername,
	)
}

// CreateItem stores a new item owned by actor and logs a restock from 0 to
// its initial quantity, including when that quantity is 0.
func (s *Service) CreateItem(ctx context.Context, actor models.Actor, in NewItem) (models.Item, error) {
	if err := in.Validate(); err != nil {
		return models.Item{}, err
	}

	now := s.timestamp()
	item := models.Item{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       *in.Price,
		Category:    strings.TrimSpace(in.Category),
		OwnerID:     actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}

	var (
		created models.Item
		entry   models.ChangeLog
	)
	err := s.store.Transact(ctx, func(tx repo.Tx) error {
		var err error
		if created, err = tx.Items().Create(ctx, item); err != nil {
			return err
		}
		entry, err = tx.ChangeLogs().Append(ctx, s.newEntry(created, actor, 0, models.ChangeRestock, now))
		return err
	})
	if err != nil {
		s.logger.Error("create item failed", "owner_id", actor.ID, "err", err)
		return models.Item{}, fmt.Errorf("create item: %w", err)
	}

	created.OwnerUsername = actor.Username
	s.committed(entry)
	return created, nil
}

// UpdateItem applies the fields present in patch.
func (s *Service) UpdateItem(ctx context.Context, actor models.Actor, id int64, patch ItemPatch) (models.Item, error) {
	return s.update(ctx, actor, id, patch, false)
}

// ReplaceItem is UpdateItem for full updates: name and price must be present.
func (s *Service) ReplaceItem(ctx context.Context, actor models.Actor, id int64, patch ItemPatch) (models.Item, error) {
	return s.update(ctx, actor, id, patch, true)
}

func (p ItemPatch) apply(it models.Item) models.Item {
	if p.Name != nil {
		it.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		it.Description = strings.TrimSpace(*p.Description)
	}
	if p.Quantity != nil {
		it.Quantity = *p.Quantity
	}
	if p.Price != nil {
		it.Price = *p.Price
	}
	if p.Category != nil {
		it.Category = strings.TrimSpace(*p.Category)
	}
	return it
}

// update validates before opening the transaction, so a rejected patch
// leaves both the item and the change log untouched.
func (s *Service) update(ctx context.Context, actor models.Actor, id int64, patch ItemPatch, full bool) (models.Item, error) {
	if err := patch.Validate(full); err != nil {
		return models.Item{}, err
	}

	var (
		updated models.Item
		entry   models.ChangeLog
	)
	err := s.store.Transact(ctx, func(tx repo.Tx) error {
		current, err := tx.Items().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !CanAccessItem(actor, current) {
			return ErrItemNotFound
		}

		oldQty := current.Quantity
		now := s.timestamp()
		next := patch.apply(current)
		next.UpdatedAt = now
		if next.UpdatedAt.Before(current.UpdatedAt) {
			next.UpdatedAt = current.UpdatedAt
		}

		if updated, err = tx.Items().Update(ctx, next); err != nil {
			return err
		}
		updated.OwnerUsername = current.OwnerUsername
		entry, err = tx.ChangeLogs().Append(ctx, s.newEntry(updated, actor, oldQty, ClassifyChange(oldQty, updated.Quantity), now))
		return err
	})
	if errors.Is(err, ErrItemNotFound) {
		return models.Item{}, ErrItemNotFound
	}
	if err != nil {
		s.logger.Error("update item failed", "item_id", id, "err", err)
		return models.Item{}, fmt.Errorf("update item: %w", err)
	}

	s.committed(entry)
	return updated, nil
}

// DeleteItem removes an item the actor can access. Its change log stays.
func (s *Service) DeleteItem(ctx context.Context, actor models.Actor, id int64) error {
	err := s.store.Transact(ctx, func(tx repo.Tx) error {
		current, err := tx.Items().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !CanAccessItem(actor, current) {
			return ErrItemNotFound
		}
		return tx.Items().Delete(ctx, id)
	})
	if errors.Is(err, ErrItemNotFound) {
		return ErrItemNotFound
	}
	if err != nil {
		s.logger.Error("delete item failed", "item_id", id, "err", err)
		return fmt.Errorf("delete item: %w", err)
	}
	s.logger.Info("inventory item deleted", "item_id", id, "actor", actor.Username)
	return nil
}

func (s *Service) GetItem(ctx context.Context, actor models.Actor, id int64) (models.Item, error) {
	it, err := s.store.Items().GetByID(ctx, id)
	if err != nil {
		return models.Item{}, err
	}
	if !CanAccessItem(actor, it) {
		return models.Item{}, ErrItemNotFound
	}
	return it, nil
}

// FindItemByName looks up one of the actor's own items by exact name.
func (s *Service) FindItemByName(ctx context.Context, actor models.Actor, name string) (models.Item, error) {
	return s.store.Items().GetByName(ctx, actor.ID, strings.TrimSpace(name))
}

// ListItems always scopes to the actor's own items, staff included.
func (s *Service) ListItems(ctx context.Context, actor models.Actor, f repo.ItemFilter) ([]models.Item, int, error) {
	f.OwnerID = actor.ID
	return s.store.Items().Filter(ctx, f)
}

// ListChanges returns log entries of items owned by the actor.
func (s *Service) ListChanges(ctx context.Context, actor models.Actor, f repo.ChangeLogFilter) ([]models.ChangeLog, int, error) {
	owner := actor.ID
	f.OwnerID = &owner
	return s.store.ChangeLogs().Filter(ctx, f)
}

func (s *Service) GetChange(ctx context.Context, actor models.Actor, id int64) (models.ChangeLog, error) {
	entry, err := s.store.ChangeLogs().GetByID(ctx, id)
	if err != nil {
		return models.ChangeLog{}, err
	}
	if !CanAccessChange(actor, entry) {
		return models.ChangeLog{}, ErrChangeNotFound
	}
	return entry, nil
}

func (s *Service) Dashboard(ctx context.Context, actor models.Actor) (repo.Metrics, error) {
	return s.store.Metrics().DashboardMetrics(ctx, actor.ID, s.lowStock)
}
