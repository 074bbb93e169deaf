package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carpulse/internal/infrastructure"
	"carpulse/internal/pricing"
	"carpulse/internal/shared/testutil"
	api "carpulse/pkg/contracts/api/v1"
)

func testEngine(t *testing.T) *pricing.Engine {
	t.Helper()
	params := pricing.DefaultParams()
	params.ReferenceYear = 2024
	engine, err := pricing.NewEngine(params, nil)
	require.NoError(t, err)
	return engine
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func quietLogger() *slog.Logger {
	return infrastructure.NewLoggerWithWriter(io.Discard, slog.LevelError)
}

func TestParseFlags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts, err := parseFlags([]string{"-vehicle-brand", "Toyota", "-vehicle-year", "2020", "a.csv", "b.xlsx"}, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, "Toyota", opts.vehicle.Brand)
		assert.Equal(t, 2020, opts.vehicle.ModelYear)
		assert.Equal(t, []string{"a.csv", "b.xlsx"}, opts.files)
		assert.Equal(t, 4, opts.workers)
		assert.Equal(t, "reports", opts.outDir)
	})

	t.Run("no files", func(t *testing.T) {
		_, err := parseFlags([]string{"-vehicle-brand", "Toyota"}, io.Discard)
		assert.Error(t, err)
	})

	t.Run("directory argument", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "x.csv", "price\n1\n")
		writeFile(t, dir, "readme.md", "")
		opts, err := parseFlags([]string{"-vehicle-brand", "Toyota", dir}, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "x.csv")}, opts.files)
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := parseFlags([]string{t.TempDir()}, io.Discard)
		assert.Error(t, err)
	})

	t.Run("zero workers", func(t *testing.T) {
		_, err := parseFlags([]string{"-workers", "0", "a.csv"}, io.Discard)
		assert.Error(t, err)
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := parseFlags([]string{"-bogus", "a.csv"}, io.Discard)
		assert.Error(t, err)
	})
}

func TestRun(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "reports")

	header := "price,odometer_km,model_year,brand,model,location,seller_type\n"
	cdmx := writeFile(t, in, "cdmx.csv", header+strings.Join([]string{
		"300000,50000,2020,Toyota,Corolla,CDMX,dealer",
		"320000,60000,2020,Toyota,Corolla,CDMX,private",
		"340000,70000,2020,Toyota,Corolla,CDMX,dealer",
	}, "\n")+"\n")
	empty := writeFile(t, in, "empty.csv", header)
	broken := writeFile(t, in, "broken.csv", "brand,model\nToyota,Corolla\n")

	opts := options{
		vehicle: api.Vehicle{Brand: "Toyota", Model: "Corolla", ModelYear: 2020},
		outDir:  out,
		workers: 2,
		summary: true,
		files:   []string{cdmx, empty, broken},
	}

	logger, logs := testutil.NewTestLogger(t)
	reports, err := run(context.Background(), testEngine(t), opts, logger)
	require.Error(t, err, "broken file is reported")
	failed := testutil.AssertLogged(t, logs, slog.LevelError, "file failed")
	assert.Equal(t, broken, failed.Attrs["file"])
	done := testutil.AssertLogged(t, logs, slog.LevelInfo, "reports complete")
	assert.EqualValues(t, 2, done.Attrs["written"])
	assert.Contains(t, err.Error(), "broken.csv")

	require.Len(t, reports, 2)
	assert.Equal(t, "cdmx", reports[0].Name)
	assert.Equal(t, 320000.0, reports[0].Snapshot.AveragePrice)
	assert.Equal(t, "empty", reports[1].Name)
	assert.True(t, reports[1].Fallback)

	for _, name := range []string{
		"cdmx_snapshot.json", "cdmx_distribution.csv",
		"empty_snapshot.json", "empty_distribution.csv",
		SummaryFile,
	} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	assert.NoFileExists(t, filepath.Join(out, "broken_snapshot.json"))
}

func TestRunInvalidVehicle(t *testing.T) {
	opts := options{
		vehicle: api.Vehicle{Model: "Corolla", ModelYear: 2020},
		outDir:  t.TempDir(),
		workers: 1,
		files:   []string{"a.csv"},
	}
	_, err := run(context.Background(), testEngine(t), opts, quietLogger())
	assert.ErrorContains(t, err, "invalid vehicle")
}

func TestRunDuplicateReportNames(t *testing.T) {
	opts := options{
		vehicle: api.Vehicle{Brand: "Toyota", ModelYear: 2020},
		outDir:  t.TempDir(),
		workers: 1,
		files:   []string{"north/listings.csv", "south/listings.xlsx"},
	}
	_, err := run(context.Background(), testEngine(t), opts, quietLogger())
	assert.ErrorContains(t, err, `report "listings"`)
}

func TestRunCancelled(t *testing.T) {
	in := t.TempDir()
	path := writeFile(t, in, "a.csv", "price\n300000\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := options{
		vehicle: api.Vehicle{Brand: "Toyota", ModelYear: 2020},
		outDir:  t.TempDir(),
		workers: 1,
		files:   []string{path},
	}
	_, err := run(ctx, testEngine(t), opts, quietLogger())
	assert.ErrorIs(t, err, context.Canceled)
}
