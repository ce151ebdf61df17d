package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/memo-cache/expiration"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memo.conf")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.conf"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ReadsCacheSection(t *testing.T) {
	path := writeConfig(t, `[cache]
listen: :9090
shards: 4
staleness: lazy
eager_bootstrap: true
bootstrap_concurrency: 2
sweep_schedule: @every 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, 4, cfg.Shards)
	assert.Equal(t, expiration.Lazy, cfg.Staleness)
	assert.True(t, cfg.EagerBootstrap)
	assert.Equal(t, 2, cfg.BootstrapConcurrency)
	assert.Equal(t, "@every 30s", cfg.SweepSchedule)
}

func TestLoad_PartialSectionKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `[cache]
eager_bootstrap: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.EagerBootstrap = true
	assert.Equal(t, want, cfg)
}

func TestLoad_RejectsUnknownStaleness(t *testing.T) {
	path := writeConfig(t, `[cache]
staleness: sometimes
`)

	_, err := Load(path)
	assert.Error(t, err)
}
