package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
lot:
  total_slots: 25
  data_path: `+dir+`/lot.dat
journal:
  path: `+dir+`/journal.db
backup:
  enabled: true
  path: `+dir+`/backups
  retention_days: 14
monitoring:
  prometheus_enabled: true
  prometheus_port: 9091
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Lot.TotalSlots)
	assert.Equal(t, dir+"/lot.dat", cfg.Lot.DataPath)
	assert.True(t, cfg.Backup.Enabled)
	assert.Equal(t, 14, cfg.Backup.RetentionDays)
	assert.Equal(t, 9091, cfg.Monitoring.PrometheusPort)
	assert.NotEmpty(t, cfg.Report.Path, "report path gets a default")
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(writeConfig(t, "lot: {}\n"))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Lot.TotalSlots)
	assert.Equal(t, "data/parklot.dat", cfg.Lot.DataPath)
	assert.Equal(t, "data/parklot_journal.db", cfg.Journal.Path)

	// Data directories are created eagerly.
	info, err := os.Stat("data")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoad_EnvExpansion(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PARKLOT_DATA_DIR", "envdata")

	cfg, err := Load(writeConfig(t, `
lot:
  data_path: ${PARKLOT_DATA_DIR}/lot.dat
`))
	require.NoError(t, err)
	assert.Equal(t, "envdata/lot.dat", cfg.Lot.DataPath)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
