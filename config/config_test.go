package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/poiesic/hownet/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 10, cfg.MaxDepth)
	assert.Equal(t, 1.6, cfg.Alpha)
	assert.Equal(t, [NumRoles]float64{0.5, 0.2, 0.17, 0.13}, cfg.RoleWeights)
	assert.False(t, cfg.StrictReferences)
	assert.Equal(t, "hypernym", cfg.ExpansionRelation)
	assert.Equal(t, MatchFuzzy, cfg.Matching)
	assert.Equal(t, runtime.NumCPU(), cfg.PoolSize)
	require.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		assert.Equal(t, DefaultConfig(), NewConfig())
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithMaxDepth(3),
			WithAlpha(1),
			WithRoleWeights(0.25, 0.25, 0.25, 0.25),
			WithStrictReferences(true),
			WithExpansionRelation("hyponym"),
			WithMatching(MatchStrict),
			WithPoolSize(2),
		)

		assert.Equal(t, 3, cfg.MaxDepth)
		assert.Equal(t, 1.0, cfg.Alpha)
		assert.Equal(t, [NumRoles]float64{0.25, 0.25, 0.25, 0.25}, cfg.RoleWeights)
		assert.True(t, cfg.StrictReferences)
		assert.Equal(t, MatchStrict, cfg.Matching)
		assert.Equal(t, 2, cfg.PoolSize)

		rel, err := cfg.Expansion()
		require.NoError(t, err)
		assert.Equal(t, core.RelationHyponym, rel)
		require.NoError(t, cfg.Validate())
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		msg  string
	}{
		{name: "negative depth", opt: WithMaxDepth(-1), msg: "MaxDepth"},
		{name: "zero alpha", opt: WithAlpha(0), msg: "Alpha"},
		{name: "negative weight", opt: WithRoleWeights(1.2, -0.2, 0, 0), msg: "non-negative"},
		{name: "weights not summing to one", opt: WithRoleWeights(0.5, 0.5, 0.5, 0), msg: "sum to 1"},
		{name: "unknown expansion", opt: WithExpansionRelation("sibling"), msg: "ExpansionRelation"},
		{name: "unknown matching", opt: WithMatching("loose"), msg: "Matching"},
		{name: "empty pool", opt: WithPoolSize(0), msg: "PoolSize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opt).Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	t.Run("zero depth is allowed", func(t *testing.T) {
		assert.NoError(t, NewConfig(WithMaxDepth(0)).Validate())
	})
}

func TestParse(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		cfg, err := Parse([]byte("alpha: 1.0\nstrict_references: true\n"))
		require.NoError(t, err)
		assert.Equal(t, 1.0, cfg.Alpha)
		assert.True(t, cfg.StrictReferences)
		assert.Equal(t, 10, cfg.MaxDepth)
		assert.Equal(t, DefaultConfig().RoleWeights, cfg.RoleWeights)
	})

	t.Run("weights and options", func(t *testing.T) {
		cfg, err := Parse([]byte("role_weights: [0.4, 0.3, 0.2, 0.1]\nmatching: strict\nmax_depth: 0\n"), WithPoolSize(3))
		require.NoError(t, err)
		assert.Equal(t, [NumRoles]float64{0.4, 0.3, 0.2, 0.1}, cfg.RoleWeights)
		assert.Equal(t, MatchStrict, cfg.Matching)
		assert.Equal(t, 0, cfg.MaxDepth)
		assert.Equal(t, 3, cfg.PoolSize)
	})

	t.Run("wrong weight count", func(t *testing.T) {
		_, err := Parse([]byte("role_weights: [0.5, 0.5]\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "role_weights")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("alpha: [\n"))
		require.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hownet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_depth: 4\nexpansion_relation: hyponym\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxDepth)
	assert.Equal(t, "hyponym", cfg.ExpansionRelation)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseMatchMode(t *testing.T) {
	m, err := ParseMatchMode("strict")
	require.NoError(t, err)
	assert.Equal(t, MatchStrict, m)
	_, err = ParseMatchMode("STRICT")
	assert.Error(t, err)
}
