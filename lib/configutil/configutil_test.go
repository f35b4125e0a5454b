package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func TestReadConfigMergesLocalOverrides(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(
		filepath.Join(dir, "erp.json5"),
		[]byte(`{base_url: "http://example.com/erp", username: "svc"}`),
		0600,
	)
	require.NoError(t, err)
	err = os.WriteFile(
		filepath.Join(dir, "erp.local.json5"),
		[]byte(`{password: "hunter2", username: "svc-local"}`),
		0600,
	)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "erp.json5"))
	require.NoError(t, err)
	require.Equal(t, "http://example.com/erp", cfg.BaseUrl)
	require.Equal(t, "svc-local", cfg.Username)
	require.Equal(t, "hunter2", cfg.Password)
}

func TestReadConfigMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadConfig[testConfig](filepath.Join(dir, "erp.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
