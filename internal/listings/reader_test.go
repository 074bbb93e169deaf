package listings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "carpulse/internal/errors"
)

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"Price,Odometer_KM,Model_Year,Brand,Model,Location,Seller_Type",
		"315000,48000,2020,Toyota,Corolla,CDMX,dealer",
		`"$298,500","61,200",2019,Toyota,Corolla,GDL,private`,
		",,,,,,",
		"n/a,30000,2021,Toyota,Corolla,MTY,dealer",
		"0,15000,2022,Toyota,Corolla,MTY,dealer",
	}, "\n")

	result, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, result.Listings, 3)
	assert.Equal(t, 315000.0, result.Listings[0].Price)
	assert.Equal(t, 48000.0, result.Listings[0].OdometerKm)
	assert.Equal(t, 2020, result.Listings[0].ModelYear)
	assert.Equal(t, "dealer", result.Listings[0].SellerType)
	assert.Equal(t, 298500.0, result.Listings[1].Price)
	assert.Equal(t, 61200.0, result.Listings[1].OdometerKm)
	assert.Equal(t, 0.0, result.Listings[2].Price, "non-positive prices are left to the engine")

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 5, result.Skipped[0].Row)
	assert.Equal(t, ColPrice, result.Skipped[0].Column)
}

func TestReadCSVColumnOrderAndAliases(t *testing.T) {
	input := "modelo,km,precio\nCorolla,52 000 km,305000\n"

	result, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Listings, 1)
	assert.Equal(t, 305000.0, result.Listings[0].Price)
	assert.Equal(t, 52000.0, result.Listings[0].OdometerKm)
	assert.Equal(t, "Corolla", result.Listings[0].Model)
	assert.Zero(t, result.Listings[0].ModelYear)
}

func TestReadCSVBadOptionalFields(t *testing.T) {
	input := "price,odometer_km,model_year\n300000,lots,twenty\n"

	result, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Listings, 1)
	assert.Zero(t, result.Listings[0].OdometerKm)
	assert.Len(t, result.Skipped, 2)
}

func TestReadCSVMissingPrice(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("brand,model\nToyota,Corolla\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPriceColumn))

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeParsing, appErr.Type)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoPriceColumn)
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comparables.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "Notes"))
	require.NoError(t, f.SetCellValue("Notes", "A1", "exported from marketplace"))

	_, err := f.NewSheet("Listings")
	require.NoError(t, err)
	rows := [][]interface{}{
		{"price", "odometer_km", "model_year", "brand"},
		{315000, 48000, 2020, "Toyota"},
		{298500, 61200, 2019, "Toyota"},
	}
	for r, row := range rows {
		for c, value := range row {
			col, err := excelize.ColumnNumberToName(c + 1)
			require.NoError(t, err)
			cell := col + string(rune('1'+r))
			require.NoError(t, f.SetCellValue("Listings", cell, value))
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	result, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, result.Source)
	require.Len(t, result.Listings, 2)
	assert.Equal(t, 298500.0, result.Listings[1].Price)
	assert.Equal(t, 2019, result.Listings[1].ModelYear)
	assert.Equal(t, "Toyota", result.Listings[0].Brand)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "comparables.CSV")
		require.NoError(t, os.WriteFile(path, []byte("price\n250000\n"), 0o644))

		result, err := ReadFile(path)
		require.NoError(t, err)
		assert.Len(t, result.Listings, 1)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(dir, "comparables.json"))
		var appErr *apierrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apierrors.ErrTypeParsing, appErr.Type)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(dir, "absent.csv"))
		var appErr *apierrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apierrors.ErrTypeStorage, appErr.Type)
	})
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"315000", 315000, true},
		{"$315,000.50", 315000.5, true},
		{"48 000 KM", 48000, true},
		{"-1", -1, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseNumber(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
