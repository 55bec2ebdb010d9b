package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/rogerio-castellano/inventory-changelog/internal/apperr"
	"github.com/shopspring/decimal"
)

// Query parameter parsers. Each records a field error on ve when the raw
// value is present but malformed.

func parseDecimalParam(ve *apperr.ValidationError, name, raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		ve.Add(name, "Enter a number.")
		return nil
	}
	return &d
}

func parseIntParam(ve *apperr.ValidationError, name, raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		ve.Add(name, "Enter a whole number.")
		return nil
	}
	return &v
}

func parseIDParam(ve *apperr.ValidationError, name, raw string) *int64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		ve.Add(name, "Enter a valid id.")
		return nil
	}
	return &v
}

// parseTimeParam accepts RFC 3339. Query decoding turns a "+" offset into a
// space, which is put back before parsing.
func parseTimeParam(ve *apperr.ValidationError, name, raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if len(raw) > 6 && raw[len(raw)-6] == ' ' {
		raw = raw[:len(raw)-6] + "+" + raw[len(raw)-5:]
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		ve.Add(name, "Enter a valid RFC 3339 date/time.")
		return nil
	}
	return &ts
}

// pagination validates offset and limit the same way for every list endpoint.
func pagination(ve *apperr.ValidationError, rawOffset, rawLimit string) (offset, limit *int) {
	offset = parseIntParam(ve, "offset", rawOffset)
	limit = parseIntParam(ve, "limit", rawLimit)
	if offset != nil && *offset < 0 {
		ve.Add("offset", "offset must be zero or positive")
	}
	if limit != nil && *limit <= 0 {
		ve.Add("limit", "limit must be greater than zero")
	}
	return offset, limit
}

// lowStockThreshold reads the low_stock parameter. Any value that is not a
// whole number selects the default threshold.
func lowStockThreshold(raw string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}
