package repo

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/rogerio-castellano/inventory-changelog/internal/models"
)

// InMemoryItemRepository is an in-memory implementation of ItemRepository.
type InMemoryItemRepository struct {
	store *InMemoryStore
	inTx  bool
}

// Create adds a new item to the repository.
func (r *InMemoryItemRepository) Create(ctx context.Context, item models.Item) (models.Item, error) {
	defer lock(r.store, r.inTx)()
	st := &r.store.state

	item.ID = st.nextItemID
	st.nextItemID++
	st.items = append(st.items, item)
	item.OwnerUsername = st.username(item.OwnerID)
	return item, nil
}

// GetByID retrieves an item by its ID.
func (r *InMemoryItemRepository) GetByID(ctx context.Context, id int64) (models.Item, error) {
	defer lock(r.store, r.inTx)()
	st := &r.store.state

	for _, it := range st.items {
		if it.ID == id {
			it.OwnerUsername = st.username(it.OwnerID)
			return it, nil
		}
	}
	return models.Item{}, ErrItemNotFound
}

func (r *InMemoryItemRepository) GetByName(ctx context.Context, ownerID int64, name string) (models.Item, error) {
	defer lock(r.store, r.inTx)()
	st := &r.store.state

	for _, it := range st.items {
		if it.OwnerID == ownerID && it.Name == name {
			it.OwnerUsername = st.username(it.OwnerID)
			return it, nil
		}
	}
	return models.Item{}, ErrItemNotFound
}

// Update replaces an existing item. Owner and creation date are kept.
func (r *InMemoryItemRepository) Update(ctx context.Context, item models.Item) (models.Item, error) {
	defer lock(r.store, r.inTx)()
	st := &r.store.state

	for i, it := range st.items {
		if it.ID == item.ID {
			item.OwnerID = it.OwnerID
			item.CreatedAt = it.CreatedAt
			st.items[i] = item
			item.OwnerUsername = st.username(item.OwnerID)
			return item, nil
		}
	}
	return models.Item{}, ErrItemNotFound
}

// Delete removes an item. Its change log entries are left in place.
func (r *InMemoryItemRepository) Delete(ctx context.Context, id int64) error {
	defer lock(r.store, r.inTx)()
	st := &r.store.state

	for i, it := range st.items {
		if it.ID == id {
			st.items = slices.Delete(st.items, i, i+1)
			return nil
		}
	}
	return ErrItemNotFound
}

func matchesItemFilter(it models.Item, f ItemFilter) bool {
	if it.OwnerID != f.OwnerID {
		return false
	}
	if f.Category != "" && !strings.EqualFold(it.Category, f.Category) {
		return false
	}
	if f.MinPrice != nil && it.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && it.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.LowStock != nil && it.Quantity > *f.LowStock {
		return false
	}
	for _, term := range f.SearchTerms() {
		term = strings.ToLower(term)
		if !strings.Contains(strings.ToLower(it.Name), term) &&
			!strings.Contains(strings.ToLower(it.Description), term) &&
			!strings.Contains(strings.ToLower(it.Category), term) {
			return false
		}
	}
	return true
}

func compareItems(a, b models.Item, ordering []OrderField) int {
	for _, o := range ordering {
		var c int
		switch o.Field {
		case OrderByName:
			c = cmp.Or(cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)), cmp.Compare(a.Name, b.Name))
		case OrderByQuantity:
			c = cmp.Compare(a.Quantity, b.Quantity)
		case OrderByPrice:
			c = a.Price.Cmp(b.Price)
		case OrderByLastUpdated:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		}
		if o.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return cmp.Compare(a.ID, b.ID)
}

func (r *InMemoryItemRepository) Filter(ctx context.Context, f ItemFilter) ([]models.Item, int, error) {
	defer lock(r.store, r.inTx)()
	st := &r.store.state

	filtered := []models.Item{}
	for _, it := range st.items {
		if matchesItemFilter(it, f) {
			it.OwnerUsername = st.username(it.OwnerID)
			filtered = append(filtered, it)
		}
	}

	ordering := f.ordering()
	slices.SortStableFunc(filtered, func(a, b models.Item) int {
		return compareItems(a, b, ordering)
	})

	start, end := page(len(filtered), f.Offset, f.Limit)
	return filtered[start:end], len(filtered), nil
}
