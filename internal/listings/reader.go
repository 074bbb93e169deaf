package listings

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "carpulse/internal/errors"
	"carpulse/internal/pricing"
)

// Column names of a comparables file
const (
	ColPrice      = "price"
	ColOdometerKm = "odometer_km"
	ColModelYear  = "model_year"
	ColBrand      = "brand"
	ColModel      = "model"
	ColLocation   = "location"
	ColSellerType = "seller_type"
)

// Header is the canonical column order written by tools that produce
// comparables files
var Header = []string{ColPrice, ColOdometerKm, ColModelYear, ColBrand, ColModel, ColLocation, ColSellerType}

// headerAliases maps accepted spellings onto canonical column names
var headerAliases = map[string]string{
	"precio":      ColPrice,
	"kilometraje": ColOdometerKm,
	"km":          ColOdometerKm,
	"odometer":    ColOdometerKm,
	"year":        ColModelYear,
	"anio":        ColModelYear,
	"marca":       ColBrand,
	"modelo":      ColModel,
	"ubicacion":   ColLocation,
	"seller":      ColSellerType,
}

// ErrNoPriceColumn is returned when a file has no price column
var ErrNoPriceColumn = errors.New("no price column in header")

// RowError describes a row that could not be read
type RowError struct {
	Row    int    `json:"row"` // 1-based, header is row 1
	Column string `json:"column"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s=%q %s", e.Row, e.Column, e.Value, e.Reason)
}

// Result is the content of one comparables file
type Result struct {
	Source   string
	Listings []pricing.ComparableListing
	Skipped  []RowError
}

// ReadFile reads a .csv or .xlsx comparables file
func ReadFile(path string) (*Result, error) {
	var (
		result *Result
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, apierrors.NewStorageError("open listings file", err).WithContext("path", path)
		}
		defer f.Close()
		result, err = ReadCSV(f)
	case ".xlsx", ".xlsm":
		result, err = ReadXLSX(path)
	default:
		return nil, apierrors.NewParsingError(fmt.Sprintf("unsupported listings file type %q", filepath.Ext(path)), nil).
			WithContext("path", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	result.Source = path
	return result, nil
}

// ReadCSV reads comparables from CSV with a header row
func ReadCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apierrors.NewParsingError("invalid csv", err)
	}
	return parseRows(rows)
}

// ReadXLSX reads comparables from the first sheet that has a price column
func ReadXLSX(path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		if _, ok := mapHeader(rows[0])[ColPrice]; ok {
			return parseRows(rows)
		}
	}
	return nil, apierrors.NewParsingError("no sheet with a price column", ErrNoPriceColumn)
}

// mapHeader returns the index of every recognised column
func mapHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		key = strings.ReplaceAll(key, " ", "_")
		if alias, ok := headerAliases[key]; ok {
			key = alias
		}
		if _, seen := columns[key]; !seen {
			columns[key] = i
		}
	}
	return columns
}

func parseRows(rows [][]string) (*Result, error) {
	if len(rows) == 0 {
		return nil, apierrors.NewParsingError("empty listings file", ErrNoPriceColumn)
	}
	columns := mapHeader(rows[0])
	if _, ok := columns[ColPrice]; !ok {
		return nil, apierrors.NewParsingError("missing price column", ErrNoPriceColumn)
	}

	result := &Result{Listings: make([]pricing.ComparableListing, 0, len(rows)-1)}
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlank(row) {
			continue
		}

		cell := func(col string) string {
			idx, ok := columns[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		price, err := parseNumber(cell(ColPrice))
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Row: rowNum, Column: ColPrice, Value: cell(ColPrice), Reason: err.Error()})
			continue
		}

		listing := pricing.ComparableListing{
			Price:      price,
			Brand:      cell(ColBrand),
			Model:      cell(ColModel),
			Location:   cell(ColLocation),
			SellerType: cell(ColSellerType),
		}

		// A bad odometer or year only loses that field; the engine ignores
		// non-positive odometers for the average.
		if raw := cell(ColOdometerKm); raw != "" {
			if km, err := parseNumber(raw); err == nil {
				listing.OdometerKm = km
			} else {
				result.Skipped = append(result.Skipped, RowError{Row: rowNum, Column: ColOdometerKm, Value: raw, Reason: err.Error()})
			}
		}
		if raw := cell(ColModelYear); raw != "" {
			if year, err := strconv.Atoi(raw); err == nil {
				listing.ModelYear = year
			} else {
				result.Skipped = append(result.Skipped, RowError{Row: rowNum, Column: ColModelYear, Value: raw, Reason: "not an integer"})
			}
		}

		result.Listings = append(result.Listings, listing)
	}
	return result, nil
}

// parseNumber accepts plain numbers as well as "$315,000" and "48 000 km"
func parseNumber(raw string) (float64, error) {
	if raw == "" {
		return 0, errors.New("empty")
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		case r == ',', r == '$', r == ' ', r == '\u00a0', r == '_':
			return -1
		default:
			return r
		}
	}, strings.TrimSuffix(strings.ToLower(raw), "km"))

	v, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	return v, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
