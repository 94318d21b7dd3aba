package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "pushdown", cmd.Use)
	assert.Contains(t, cmd.Long, "residual")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"explain", "run", "load", "test"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	db := runCmd.Flags().Lookup("db")
	require.NotNil(t, db)
	assert.Equal(t, "", db.DefValue)

	quota := runCmd.Flags().Lookup("max-traversers")
	require.NotNil(t, quota)
	assert.Equal(t, "0", quota.DefValue)
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	update := testCmd.Flags().Lookup("update")
	require.NotNil(t, update)
	assert.Equal(t, "false", update.DefValue)

	assert.NotNil(t, testCmd.Flags().Lookup("filter"))
	assert.NotNil(t, testCmd.Flags().Lookup("golden"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, _, err := execute(t, "--format", "invalid", "explain", "pipeline.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestVerboseLogging(t *testing.T) {
	path := writeFile(t, t.TempDir(), "p.yaml", topTwoPipeline)

	_, errOut, err := execute(t, "--verbose", "explain", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "pipeline compiled")
	assert.Contains(t, errOut, "compiled anchor")

	_, errOut, err = execute(t, "explain", path)
	require.NoError(t, err)
	assert.NotContains(t, errOut, "pipeline compiled")
}
