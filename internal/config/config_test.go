package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbridge-labs/qbridge/pkg/core"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// Load from a directory with no config file.
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "qbridge", cfg.Device.Provider)
	assert.Equal(t, 64, cfg.Device.MaxQubits)
	assert.Equal(t, 100000, cfg.Device.MaxShots)
	assert.Equal(t, "active", cfg.Device.InitialStatus)
	assert.Equal(t, "simulator", cfg.Backend.Name)
	assert.Equal(t, 300, cfg.Backend.TimeoutSeconds)
	assert.Equal(t, ":50080", cfg.Server.Addr)
	assert.Equal(t, 4, cfg.Server.MaxConcurrentJobs)
	assert.False(t, cfg.Verbose)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
device:
  id: riken-64q
  provider: testlab
  max_shots: 5000
  topology_path: /etc/qbridge/topology.json
backend:
  name: controller
  command: "qpu-exec {shots}"
server:
  addr: ":9000"
state:
  path: /var/lib/qbridge/jobs.db
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "riken-64q", cfg.Device.ID)
	assert.Equal(t, "testlab", cfg.Device.Provider)
	assert.Equal(t, 5000, cfg.Device.MaxShots)
	assert.Equal(t, "controller", cfg.Backend.Name)
	assert.Equal(t, "qpu-exec {shots}", cfg.Backend.Command)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "/var/lib/qbridge/jobs.db", cfg.State.Path)

	// Defaults still fill unset keys.
	assert.Equal(t, 64, cfg.Device.MaxQubits)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "device:\n  max_shots: 5000\n")
	t.Setenv("QBRIDGE_DEVICE_MAX_SHOTS", "7000")
	t.Setenv("QBRIDGE_VERBOSE", "true")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Device.MaxShots)
	assert.True(t, cfg.Verbose)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("QBRIDGE_SERVER_ADDR", ":7000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", "", "")
	flags.String("backend", "", "")
	flags.BoolP("verbose", "v", false, "")
	require.NoError(t, flags.Parse([]string{"--addr", ":8000", "--backend", "controller"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "controller", cfg.Backend.Name)
}

func TestLoad_UnchangedFlagsIgnored(t *testing.T) {
	t.Chdir(t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", "", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, ":50080", cfg.Server.Addr, "unset flags must not clobber defaults")
}

func TestLoad_ExpandsPaths(t *testing.T) {
	t.Setenv("QB_DATA", "/srv/qbridge")
	path := writeConfig(t, "device:\n  topology_path: ${QB_DATA}/topology.json\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/srv/qbridge/topology.json", cfg.Device.TopologyPath)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Device: DeviceConfig{
				ID:            "dev",
				TopologyPath:  "/tmp/topology.json",
				MaxShots:      1000,
				InitialStatus: "active",
			},
			Backend: BackendConfig{Name: "simulator"},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Device.ID = ""
	assert.ErrorContains(t, cfg.Validate(), "device.id")

	cfg = valid()
	cfg.Device.TopologyPath = ""
	assert.ErrorContains(t, cfg.Validate(), "device.topology_path")

	cfg = valid()
	cfg.Device.MaxShots = 0
	assert.ErrorContains(t, cfg.Validate(), "device.max_shots")

	cfg = valid()
	cfg.Device.InitialStatus = "offline"
	assert.ErrorContains(t, cfg.Validate(), "offline")

	cfg = valid()
	cfg.Backend.Name = ""
	assert.ErrorContains(t, cfg.Validate(), "backend.name")
}

func TestInitialStatus(t *testing.T) {
	cfg := &Config{Device: DeviceConfig{InitialStatus: "maintenance"}}
	status, err := cfg.InitialStatus()
	require.NoError(t, err)
	assert.Equal(t, core.StatusMaintenance, status)

	cfg.Device.InitialStatus = "bogus"
	_, err = cfg.InitialStatus()
	assert.Error(t, err)
}
