package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/rugby-stats/internal/rugby"
	"github.com/ramonehamilton/rugby-stats/internal/scoring"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

const backsHeavy = `
name = "backs-heavy"
description = "Rewards line breaks out wide"
activate = true

[weights.quiebres]
"11" = 9.0
"14" = 9.0

[weights.try]
"11" = 12.5
`

func writeWeightFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "weights.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWeightFile(t *testing.T) {
	wf, err := LoadWeightFile(writeWeightFile(t, t.TempDir(), backsHeavy))
	require.NoError(t, err)

	assert.Equal(t, "backs-heavy", wf.Name)
	assert.True(t, wf.Activate)

	rows, err := wf.Rows()
	require.NoError(t, err)
	assert.Equal(t, []scoring.WeightRow{
		{Action: "quiebres", Position: 11, Weight: 9},
		{Action: "quiebres", Position: 14, Weight: 9},
		{Action: "try", Position: 11, Weight: 12.5},
	}, rows)
}

func TestLoadWeightFile_Rejects(t *testing.T) {
	tests := map[string]string{
		"no name":        "[weights.try]\n\"1\" = 1.0\n",
		"unknown action": "name = \"x\"\n[weights.scrum]\n\"1\" = 1.0\n",
		"bad position":   "name = \"x\"\n[weights.try]\n\"16\" = 1.0\n",
		"nonnumeric pos": "name = \"x\"\n[weights.try]\nwing = 1.0\n",
		"malformed toml": "name = \n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWeightFile(writeWeightFile(t, t.TempDir(), content))
			assert.Error(t, err)
		})
	}

	_, err := LoadWeightFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestSaveWeightFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	wf := &WeightFile{
		Name:    "custom",
		Weights: map[string]map[string]float64{"penales": {"1": -6.5}},
	}
	require.NoError(t, SaveWeightFile(path, wf))

	loaded, err := LoadWeightFile(path)
	require.NoError(t, err)
	assert.Equal(t, wf.Weights, loaded.Weights)
}

func TestWeightFile_AppliedToService(t *testing.T) {
	wf, err := LoadWeightFile(writeWeightFile(t, t.TempDir(), backsHeavy))
	require.NoError(t, err)

	set, err := wf.WeightSet()
	require.NoError(t, err)
	assert.Equal(t, "Rewards line breaks out wide", set.Description)

	svc := storage.NewTestService(t)
	ctx := context.Background()
	applied, err := svc.ApplyWeightSet(ctx, set)
	require.NoError(t, err)
	assert.True(t, applied.IsActive)

	table, err := svc.ActiveWeightTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 12.5, table.Weight(rugby.Tries, 11))
	assert.Equal(t, 0.0, table.Weight(rugby.Tries, 1))
}
