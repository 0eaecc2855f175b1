package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func Test_Config_yamlRoundTrip(t *testing.T) {
	cfg := Config{
		Device:            DeviceSelector{Bus: 3, Address: 14},
		BlocksPerTransfer: 8,
		Options: Options{
			P2OAudio: true,
			O2PAudio: true,
			P2OMIDI:  false,
			O2PMIDI:  true,
			DLL:      true,
		},
		LogLevel: "debug",
		Priority: 20,
	}

	data, err := cfg.Marshal()
	require.NoError(t, err)

	var got Config
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, cfg, got)
}

func Test_Load_fileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func Test_Load_appliesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "owbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("blocks_per_transfer: 16\nlog_level: warn\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.BlocksPerTransfer)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func Test_DeviceSelector_fromFileDescriptor(t *testing.T) {
	assert.True(t, DeviceSelector{FileDescriptor: 7}.FromFileDescriptor())
	assert.False(t, DeviceSelector{Bus: 3, Address: 14}.FromFileDescriptor())
}
