package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "hsdd.yaml")
	content := `
log:
  level: debug
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, 1024, cfg.SDD.UniqueTableSize)
	assert.Equal(t, 10000, cfg.SDD.SumCacheSize)
	assert.Equal(t, 1<<20, cfg.SDD.ArenaSize)
	assert.Equal(t, 1024, cfg.Hom.UniqueTableSize)
	assert.Equal(t, 10000, cfg.Hom.CacheSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_CustomValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "hsdd.yaml")
	content := `
sdd:
  unique_table_size: 4096
  sum_cache_size: 500
  arena_size: 2048
hom:
  unique_table_size: 2048
  cache_size: 250
log:
  level: warn
  format: json
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.SDD.UniqueTableSize)
	assert.Equal(t, 500, cfg.SDD.SumCacheSize)
	assert.Equal(t, 2048, cfg.SDD.ArenaSize)
	assert.Equal(t, 2048, cfg.Hom.UniqueTableSize)
	assert.Equal(t, 250, cfg.Hom.CacheSize)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_InvalidUniqueTableSize(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "hsdd.yaml")
	content := `
sdd:
  unique_table_size: 0
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unique_table_size")
}

func TestValidate_NegativeArena(t *testing.T) {
	cfg := Default()
	cfg.SDD.ArenaSize = -1

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "arena_size")
}

func TestValidate_BadCacheSize(t *testing.T) {
	cfg := Default()
	cfg.SDD.SumCacheSize = 0

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cache sizes")
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/hsdd.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
sdd:
  unique_table_size: 64
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.SDD.UniqueTableSize)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}
