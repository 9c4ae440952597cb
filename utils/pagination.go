package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100

	// MaxPage keeps (page-1)*limit well inside int range.
	MaxPage = 1_000_000
)

type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// NormalizePage clamps page to >= 1 and limit to [1, max]; a non-positive
// limit falls back to def.
func NormalizePage(page, limit, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, limit
}

// Offset is the number of records before page.
func Offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := TotalPages(total, limit)
	return Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseDecimal reads a plain base-10 number. Hex, NaN and Inf spellings are
// rejected.
func ParseDecimal(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if !decimalPattern.MatchString(raw) {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseInt reads a base-10 integer, so "010" is ten. Fractions truncate;
// values outside the int range are rejected.
func ParseInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, strconv.IntSize); err == nil {
		return int(n), true
	}
	f, ok := ParseDecimal(raw)
	if !ok || f >= math.MaxInt || f <= math.MinInt {
		return 0, false
	}
	return int(f), true
}

// QueryInt is ParseInt with 0 for anything unparsable.
func QueryInt(raw string) int {
	n, _ := ParseInt(raw)
	return n
}
