package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImportCommand(t *testing.T) {
	cmd := newImportCommand()

	assert.Equal(t, "import", cmd.Use)
	assert.True(t, cmd.HasSubCommands())
}

func TestNewImportWorkbookCommand(t *testing.T) {
	cmd := newImportWorkbookCommand()

	assert.Equal(t, "workbook [file]", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"study.xlsx"}))
}

func TestNewImportErrorLogCommand(t *testing.T) {
	cmd := newImportErrorLogCommand()

	assert.Equal(t, "errorlog [file]", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	flag := cmd.Flags().Lookup("sheet")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}
