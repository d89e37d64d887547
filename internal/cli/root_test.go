package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "normalize", "render", "validate", "trace", "replay", "test"} {
		assert.Contains(t, names, want)
	}
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, _, err := runCLI(t, "validate", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRoot_UnknownFlag(t *testing.T) {
	_, _, err := runCLI(t, "validate", "--no-such-flag")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	_, _, err := runCLI(t, "validate", "--log-level", "loud")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRoot_MissingConfigFile(t *testing.T) {
	_, _, err := runCLI(t, "validate", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRoot_ConfigFileSuppliesDataset(t *testing.T) {
	table := writeFile(t, "ab.yaml", abTable)
	cfgPath := filepath.Join(t.TempDir(), "regionplot.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("dataset: "+table+"\n"), 0o644))

	out, _, err := runCLI(t, "validate", "--config", cfgPath, "--format", "json")
	require.NoError(t, err)

	var result ValidateResult
	decodeData(t, out, &result)
	assert.Equal(t, table, result.Source)
	assert.Equal(t, 4, result.Records)
}
