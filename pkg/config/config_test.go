package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "scandeck.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFlagsOverrideDefaults(t *testing.T) {
	cfg, err := Load([]string{"-listen", ":9090", "-probe-rate", "2.5"})
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 2.5, cfg.ProbeRateLimit)
}

func TestFileThenFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scandeck.yaml")
	data := []byte("listen_addr: \":7000\"\ndb_path: /tmp/file.db\nprobe_timeout: 9s\nlog_level: debug\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load([]string{"-config", path, "-listen", ":7001"})
	require.NoError(t, err)
	// Flag wins over file.
	assert.Equal(t, ":7001", cfg.ListenAddr)
	// File wins over defaults.
	assert.Equal(t, "/tmp/file.db", cfg.DBPath)
	assert.Equal(t, 9*time.Second, cfg.ProbeTimeout.Std())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidateRejectsBadValues(t *testing.T) {
	_, err := Load([]string{"-log-level", "loud"})
	assert.Error(t, err)

	_, err = Load([]string{"-probe-timeout", "0s"})
	assert.Error(t, err)

	_, err = Load([]string{"-db", ""})
	assert.Error(t, err)
}
