package handlers

import (
	"net/http"

	"github.com/rogerio-castellano/inventory-changelog/internal/apperr"
	"github.com/rogerio-castellano/inventory-changelog/internal/inventory"
	"github.com/rogerio-castellano/inventory-changelog/internal/models"
	"github.com/rogerio-castellano/inventory-changelog/internal/repo"
)

func (s *Server) itemResponse(it models.Item) ItemResponse {
	return ItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Quantity:    it.Quantity,
		Price:       it.Price.StringFixed(2),
		Category:    it.Category,
		Owner:       it.OwnerUsername,
		DateAdded:   it.CreatedAt,
		LastUpdated: it.UpdatedAt,
		LowStock:    s.inventory.IsLowStock(it),
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (req ItemRequest) newItem() inventory.NewItem {
	return inventory.NewItem{
		Name:        deref(req.Name),
		Description: deref(req.Description),
		Quantity:    req.Quantity,
		Price:       req.Price,
		Category:    deref(req.Category),
	}
}

func (req ItemRequest) patch() inventory.ItemPatch {
	return inventory.ItemPatch{
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Category:    req.Category,
	}
}

// CreateItemHandler godoc
// @Summary Create a new item
// @Description Adds an item owned by the caller and records its initial stock as a restock
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item body ItemRequest true "Item to add"
// @Success 201 {object} ItemResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /items [post]
func (s *Server) CreateItemHandler(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}

	created, err := s.inventory.CreateItem(r.Context(), actor(r), req.newItem())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, s.itemResponse(created))
}

// ListItemsHandler godoc
// @Summary Filter, search and paginate the caller's items
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param category query string false "Exact category, case-insensitive"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Param low_stock query string false "Quantity threshold; non-numeric values use 5"
// @Param search query string false "Terms matched against name, description and category"
// @Param ordering query string false "Comma separated: name, quantity, price, last_updated; prefix - for descending"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} ItemsSearchResult
// @Failure 400 {object} ValidationErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /items [get]
func (s *Server) ListItemsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ve := apperr.NewValidationError()

	filter := repo.ItemFilter{
		Category: q.Get("category"),
		MinPrice: parseDecimalParam(ve, "min_price", q.Get("min_price")),
		MaxPrice: parseDecimalParam(ve, "max_price", q.Get("max_price")),
		Search:   q.Get("search"),
		Ordering: repo.ParseOrdering(q.Get("ordering")),
	}
	if q.Has("low_stock") {
		t := lowStockThreshold(q.Get("low_stock"), s.inventory.LowStockThreshold())
		filter.LowStock = &t
	}
	filter.Offset, filter.Limit = pagination(ve, q.Get("offset"), q.Get("limit"))
	if err := ve.OrNil(); err != nil {
		writeValidation(w, ve)
		return
	}

	items, total, err := s.inventory.ListItems(r.Context(), actor(r), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := ItemsSearchResult{
		Data: make([]ItemResponse, len(items)),
		Meta: Meta{TotalCount: total},
	}
	for i, it := range items {
		resp.Data[i] = s.itemResponse(it)
	}
	s.respond(w, r, http.StatusOK, resp)
}

// GetItemHandler godoc
// @Summary Get item by ID
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 200 {object} ItemResponse
// @Failure 404 {object} ErrorResponse
// @Router /items/{id} [get]
func (s *Server) GetItemHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	it, err := s.inventory.GetItem(r.Context(), actor(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, s.itemResponse(it))
}

// ReplaceItemHandler godoc
// @Summary Update an item
// @Description Full update: name and price are required. Every update is recorded in the change log.
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param item body ItemRequest true "Updated item"
// @Success 200 {object} ItemResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /items/{id} [put]
func (s *Server) ReplaceItemHandler(w http.ResponseWriter, r *http.Request) {
	s.updateItem(w, r, true)
}

// PatchItemHandler godoc
// @Summary Partially update an item
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param item body ItemRequest true "Fields to change"
// @Success 200 {object} ItemResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /items/{id} [patch]
func (s *Server) PatchItemHandler(w http.ResponseWriter, r *http.Request) {
	s.updateItem(w, r, false)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request, full bool) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	var req ItemRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}

	var (
		updated models.Item
		err     error
	)
	if full {
		updated, err = s.inventory.ReplaceItem(r.Context(), actor(r), id, req.patch())
	} else {
		updated, err = s.inventory.UpdateItem(r.Context(), actor(r), id, req.patch())
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, s.itemResponse(updated))
}

// DeleteItemHandler godoc
// @Summary Delete an item
// @Description The item's change log entries are kept.
// @Tags items
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 204 "Deleted successfully"
// @Failure 404 {object} ErrorResponse
// @Router /items/{id} [delete]
func (s *Server) DeleteItemHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err := s.inventory.DeleteItem(r.Context(), actor(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
