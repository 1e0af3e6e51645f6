package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.LikeCacheCapacity)
	assert.Equal(t, 1024, cfg.BatchRows)
	assert.Empty(t, cfg.DefaultCollation)
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yachtsql.toml")
	require.NoError(t, os.WriteFile(path, []byte(
		"like_cache_capacity = 64\ndefault_collation = \"unicode:ci\"\n",
	), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.LikeCacheCapacity)
	assert.Equal(t, "unicode:ci", cfg.DefaultCollation)
	// Unset keys keep their defaults.
	assert.Equal(t, 1024, cfg.BatchRows)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestBatchesSplitByConfiguredSize(t *testing.T) {
	s := New(WithConfig(Config{BatchRows: 2}))
	tbl := sampleTable(t, 5)
	batches := s.batches(tbl)
	require.Len(t, batches, 3)
	assert.Equal(t, 2, batches[0].NumRows())
	assert.Equal(t, 2, batches[1].NumRows())
	assert.Equal(t, 1, batches[2].NumRows())

	res := ResultFromBatches(batches)
	require.Len(t, res.Rows, 5)
	n, _ := res.Rows[4][0].AsInt64()
	assert.Equal(t, int64(5), n)
}
