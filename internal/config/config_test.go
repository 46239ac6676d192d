package config

import (
	"log/slog"
	"testing"

	"parts-catalog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_PORT", "3001")
	t.Setenv("APP_NAME", "parts-catalog")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB_NAME", "catalog")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "products", cfg.MongoCollection)
	assert.Equal(t, int64(20), cfg.SearchDefaultPageSize)
	assert.Equal(t, int64(100), cfg.SearchMaxPageSize)
	assert.Equal(t, model.FacetDisjunctive, cfg.SearchFacetMode)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SEARCH_DEFAULT_PAGE_SIZE", "10")
	t.Setenv("SEARCH_MAX_PAGE_SIZE", "50")
	t.Setenv("SEARCH_FACET_MODE", model.FacetNarrowing)
	t.Setenv("TRACE_STDOUT", "true")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(10), cfg.SearchDefaultPageSize)
	assert.Equal(t, int64(50), cfg.SearchMaxPageSize)
	assert.Equal(t, model.FacetNarrowing, cfg.SearchFacetMode)
	assert.True(t, cfg.TraceStdout)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidIntegerFallsBack(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SEARCH_DEFAULT_PAGE_SIZE", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(20), cfg.SearchDefaultPageSize)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("APP_NAME", "parts-catalog")
	t.Setenv("MONGO_URI", "")
	t.Setenv("MONGO_DB_NAME", "catalog")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_PORT")
	assert.Contains(t, err.Error(), "MONGO_URI")
}

func TestLoad_MemoryDriverSkipsMongo(t *testing.T) {
	t.Setenv("APP_PORT", "3001")
	t.Setenv("APP_NAME", "parts-catalog")
	t.Setenv("MONGO_URI", "")
	t.Setenv("MONGO_DB_NAME", "")
	t.Setenv("STORE_DRIVER", StoreMemory)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
}

func TestLoad_RejectsUnknownValues(t *testing.T) {
	t.Run("facet mode", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("SEARCH_FACET_MODE", "sometimes")
		_, err := Load()
		assert.ErrorContains(t, err, "SEARCH_FACET_MODE")
	})

	t.Run("store driver", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("STORE_DRIVER", "postgres")
		_, err := Load()
		assert.ErrorContains(t, err, "STORE_DRIVER")
	})

	t.Run("default above max", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("SEARCH_DEFAULT_PAGE_SIZE", "200")
		_, err := Load()
		assert.ErrorContains(t, err, "exceeds")
	})
}

func TestStructAttrs(t *testing.T) {
	cfg := &Config{AppPort: "3001", AppName: "parts-catalog", MongoURI: "mongodb://user:secret@db", SearchMaxPageSize: 100}
	attrs := StructAttrs("data", cfg.ToSafeConfig())

	byKey := map[string]slog.Value{}
	for _, a := range attrs {
		byKey[a.Key] = a.Value
	}
	assert.Equal(t, "3001", byKey["data.app_port"].String())
	assert.Equal(t, int64(100), byKey["data.search_max_page_size"].Int64())
	assert.False(t, byKey["data.trace_stdout"].Bool())
	for k, v := range byKey {
		assert.NotContains(t, v.String(), "secret", k)
	}
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "app_port", toSnake("AppPort"))
	assert.Equal(t, "trace_stdout", toSnake("TraceStdout"))
}
