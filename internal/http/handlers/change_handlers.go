package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rogerio-castellano/inventory-changelog/internal/apperr"
	"github.com/rogerio-castellano/inventory-changelog/internal/models"
	"github.com/rogerio-castellano/inventory-changelog/internal/repo"
	"github.com/xuri/excelize/v2"
)

func changeResponse(c models.ChangeLog) ChangeResponse {
	resp := ChangeResponse{
		ID:          c.ID,
		Item:        c.ItemID,
		OldQuantity: c.OldQuantity,
		NewQuantity: c.NewQuantity,
		ChangeType:  string(c.ChangeType),
		ChangeDate:  c.ChangeDate,
	}
	if c.ChangedBy != nil {
		name := c.ChangedByUsername
		resp.ChangedBy = &name
	}
	return resp
}

// changeFilter reads the filters shared by the list and export endpoints.
func changeFilter(r *http.Request, ve *apperr.ValidationError) repo.ChangeLogFilter {
	q := r.URL.Query()
	f := repo.ChangeLogFilter{
		ItemID: parseIDParam(ve, "item", q.Get("item")),
		Since:  parseTimeParam(ve, "since", q.Get("since")),
		Until:  parseTimeParam(ve, "until", q.Get("until")),
	}
	if ct := q.Get("change_type"); ct != "" {
		f.ChangeType = models.ChangeType(ct)
		if !f.ChangeType.Valid() {
			ve.Add("change_type", "Select a valid choice: restock, sale or adjustment.")
		}
	}
	return f
}

// ListChangesHandler godoc
// @Summary List change log entries of the caller's items
// @Description Newest first. At most 100 entries are returned unless a limit is given.
// @Tags changes
// @Produce json
// @Security BearerAuth
// @Param item query int false "Item ID"
// @Param change_type query string false "restock, sale or adjustment"
// @Param since query string false "Entries from this timestamp (RFC3339)"
// @Param until query string false "Entries until this timestamp (RFC3339)"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} ChangesSearchResult
// @Failure 400 {object} ValidationErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /changes [get]
func (s *Server) ListChangesHandler(w http.ResponseWriter, r *http.Request) {
	ve := apperr.NewValidationError()
	f := changeFilter(r, ve)
	f.Offset, f.Limit = pagination(ve, r.URL.Query().Get("offset"), r.URL.Query().Get("limit"))
	if err := ve.OrNil(); err != nil {
		writeValidation(w, ve)
		return
	}

	changes, total, err := s.inventory.ListChanges(r.Context(), actor(r), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := ChangesSearchResult{
		Data: make([]ChangeResponse, len(changes)),
		Meta: Meta{TotalCount: total},
	}
	for i, c := range changes {
		resp.Data[i] = changeResponse(c)
	}
	s.respond(w, r, http.StatusOK, resp)
}

// GetChangeHandler godoc
// @Summary Get a change log entry
// @Tags changes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Change ID"
// @Success 200 {object} ChangeResponse
// @Failure 404 {object} ErrorResponse
// @Router /changes/{id} [get]
func (s *Server) GetChangeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "change not found")
		return
	}
	c, err := s.inventory.GetChange(r.Context(), actor(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, changeResponse(c))
}

var exportHeader = []string{"id", "item", "changed_by", "old_quantity", "new_quantity", "change_type", "change_date"}

func exportRow(c ChangeResponse) []string {
	changedBy := ""
	if c.ChangedBy != nil {
		changedBy = *c.ChangedBy
	}
	return []string{
		strconv.FormatInt(c.ID, 10),
		strconv.FormatInt(c.Item, 10),
		changedBy,
		strconv.Itoa(c.OldQuantity),
		strconv.Itoa(c.NewQuantity),
		c.ChangeType,
		c.ChangeDate.Format(time.RFC3339Nano),
	}
}

// ExportChangesHandler godoc
// @Summary Export change log entries
// @Description Same filters as the list endpoint, without pagination.
// @Tags changes
// @Produce text/csv,application/json,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string true "Export format (csv, json or xlsx)"
// @Param item query int false "Item ID"
// @Param change_type query string false "restock, sale or adjustment"
// @Param since query string false "Entries from this timestamp (RFC3339)"
// @Param until query string false "Entries until this timestamp (RFC3339)"
// @Success 200 {file} file
// @Failure 400 {object} ValidationErrorResponse
// @Router /changes/export [get]
func (s *Server) ExportChangesHandler(w http.ResponseWriter, r *http.Request) {
	ve := apperr.NewValidationError()
	format := r.URL.Query().Get("format")
	if format != "csv" && format != "json" && format != "xlsx" {
		ve.Add("format", "format must be 'csv', 'json' or 'xlsx'")
	}
	f := changeFilter(r, ve)
	if err := ve.OrNil(); err != nil {
		writeValidation(w, ve)
		return
	}
	all := -1
	f.Limit = &all

	changes, _, err := s.inventory.ListChanges(r.Context(), actor(r), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rows := make([]ChangeResponse, len(changes))
	for i, c := range changes {
		rows[i] = changeResponse(c)
	}

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="changes.json"`)
		if err := json.NewEncoder(w).Encode(rows); err != nil {
			s.logger.Error("export json failed", "err", err)
		}

	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="changes.csv"`)

		csvWriter := csv.NewWriter(w)
		_ = csvWriter.Write(exportHeader)
		for _, c := range rows {
			_ = csvWriter.Write(exportRow(c))
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			s.logger.Error("export csv failed", "err", err)
		}

	case "xlsx":
		buf, err := changesWorkbook(rows)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="changes.xlsx"`)
		if _, err := w.Write(buf.Bytes()); err != nil {
			s.logger.Error("export xlsx failed", "err", err)
		}
	}
}

func changesWorkbook(rows []ChangeResponse) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, c := range rows {
		changedBy := ""
		if c.ChangedBy != nil {
			changedBy = *c.ChangedBy
		}
		row := []any{c.ID, c.Item, changedBy, c.OldQuantity, c.NewQuantity, c.ChangeType, c.ChangeDate.Format(time.RFC3339)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
