package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rogerio-castellano/inventory-changelog/internal/apperr"
	"github.com/rogerio-castellano/inventory-changelog/internal/inventory"
	"github.com/rogerio-castellano/inventory-changelog/internal/repo"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const maxImportSize = 10 << 20

// importRow holds one record. Columns missing from the header stay nil.
type importRow struct {
	Line        int
	Name        string
	Description *string
	Quantity    *int
	Price       *decimal.Decimal
	Category    *string
}

// parseRecords maps header names to columns and converts every record.
// Malformed numbers are reported per line and the row is dropped.
func parseRecords(records [][]string) ([]importRow, []apperr.FieldError, error) {
	if len(records) == 0 {
		return nil, nil, errors.New("invalid file: missing header")
	}

	index := map[string]int{}
	for i, h := range records[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["name"]; !ok {
		return nil, nil, errors.New("invalid file: header must contain a name column")
	}

	cell := func(rec []string, col string) (string, bool) {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return "", false
		}
		return strings.TrimSpace(rec[i]), true
	}

	var (
		rows []importRow
		errs []apperr.FieldError
	)
	for n, rec := range records[1:] {
		line := n + 2 // header is row 1
		row := importRow{Line: line}
		row.Name, _ = cell(rec, "name")

		if v, ok := cell(rec, "description"); ok {
			row.Description = &v
		}
		if v, ok := cell(rec, "category"); ok {
			row.Category = &v
		}
		if v, ok := cell(rec, "quantity"); ok && v != "" {
			q, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, rowError(line, "quantity must be a whole number"))
				continue
			}
			row.Quantity = &q
		}
		if v, ok := cell(rec, "price"); ok && v != "" {
			p, err := decimal.NewFromString(v)
			if err != nil {
				errs = append(errs, rowError(line, "price must be a number"))
				continue
			}
			row.Price = &p
		}
		rows = append(rows, row)
	}
	return rows, errs, nil
}

func rowError(line int, msg string) apperr.FieldError {
	return apperr.FieldError{Field: fmt.Sprintf("row %d", line), Description: msg}
}

func (s *Server) rowErrors(line int, err error) []apperr.FieldError {
	ve, ok := apperr.AsValidation(err)
	if !ok {
		s.logger.Error("import row failed", "row", line, "err", err)
		return []apperr.FieldError{rowError(line, "could not import row")}
	}
	out := make([]apperr.FieldError, len(ve.Fields))
	for i, f := range ve.Fields {
		out[i] = rowError(line, f.Field+": "+f.Description)
	}
	return out
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSV read error: %v", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx file: %v", err)
	}
	defer func() { _ = f.Close() }()
	return f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
}

// ImportItemsHandler godoc
// @Summary Import items from a CSV or XLSX file
// @Description Columns: name, description, quantity, price, category. Every imported row is recorded in the change log.
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV or XLSX file"
// @Param mode query string false "What to do with items whose name already exists (skip|update)"
// @Success 200 {object} ImportItemsResult
// @Failure 400 {object} ErrorResponse
// @Router /items/import [post]
func (s *Server) ImportItemsHandler(w http.ResponseWriter, r *http.Request) {
	mode := strings.ToLower(r.URL.Query().Get("mode"))
	if mode != "update" {
		mode = "skip" // default
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	var records [][]string
	if strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		records, err = readXLSX(file)
	} else {
		records, err = readCSV(file)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, errorsList, err := parseRecords(records)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	who := actor(r)
	result := ImportItemsResult{}
	for _, row := range rows {
		existing, err := s.inventory.FindItemByName(ctx, who, row.Name)
		switch {
		case err == nil && mode == "skip":
			errorsList = append(errorsList, rowError(row.Line, fmt.Sprintf("item '%s' already exists", row.Name)))

		case err == nil:
			_, err = s.inventory.UpdateItem(ctx, who, existing.ID, inventory.ItemPatch{
				Description: row.Description,
				Quantity:    row.Quantity,
				Price:       row.Price,
				Category:    row.Category,
			})
			if err != nil {
				errorsList = append(errorsList, s.rowErrors(row.Line, err)...)
				continue
			}
			result.Updated++

		case errors.Is(err, repo.ErrItemNotFound):
			_, err = s.inventory.CreateItem(ctx, who, inventory.NewItem{
				Name:        row.Name,
				Description: deref(row.Description),
				Quantity:    row.Quantity,
				Price:       row.Price,
				Category:    deref(row.Category),
			})
			if err != nil {
				errorsList = append(errorsList, s.rowErrors(row.Line, err)...)
				continue
			}
			result.Created++

		default:
			s.fail(w, r, err)
			return
		}
	}

	result.Errors = errorsList
	if result.Errors == nil {
		result.Errors = []apperr.FieldError{}
	}
	s.respond(w, r, http.StatusOK, result)
}
