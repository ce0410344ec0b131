// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the tunable knobs shared by the tree builder and the
// similarity engine.
//
// Defaults follow the hybrid similarity method of Liu & Li (2002): alpha 1.6
// and role weights 0.5, 0.2, 0.17 and 0.13 for the first independent,
// second independent, relational and symbolic sememes respectively. They are
// starting points, not universal constants; override them through options or
// a YAML file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/poiesic/hownet/core"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gopkg.in/yaml.v3"
)

// NumRoles is the number of scored sememe roles.
const NumRoles = 4

// weightTolerance bounds the rounding error accepted on the weight sum.
const weightTolerance = 1e-9

// MatchMode selects how expression subtrees are merged when building trees.
type MatchMode string

const (
	// MatchStrict merges sibling subtrees only when they are structurally identical.
	MatchStrict MatchMode = "strict"
	// MatchFuzzy merges sibling subtrees that share role and head sememe.
	MatchFuzzy MatchMode = "fuzzy"
)

// ParseMatchMode parses "strict" or "fuzzy".
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(s) {
	case MatchStrict, MatchFuzzy:
		return MatchMode(s), nil
	}
	return "", fmt.Errorf("unknown matching mode %q", s)
}

// Config holds configuration for graph loading, tree building and similarity.
type Config struct {
	// MaxDepth bounds tree expansion and each side of the distance search.
	// Default: 10
	MaxDepth int

	// Alpha is the distance-to-similarity decay constant in alpha/(alpha+d).
	// Default: 1.6
	Alpha float64

	// RoleWeights weighs the first independent, second independent,
	// relational and symbolic sememe similarities. Must sum to 1.
	RoleWeights [NumRoles]float64

	// StrictReferences makes unresolved references fail the load.
	// Default: false (skip and count)
	StrictReferences bool

	// ExpansionRelation is the relation followed when expanding trees.
	// Default: "hypernym"
	ExpansionRelation string

	// Matching is the default subtree merge mode.
	// Default: fuzzy
	Matching MatchMode

	// PoolSize is the number of workers used by nearest-word search.
	// Default: runtime.NumCPU()
	PoolSize int
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

// WithMaxDepth sets the expansion depth bound.
func WithMaxDepth(depth int) Option {
	return func(c *Config) {
		c.MaxDepth = depth
	}
}

// WithAlpha sets the decay constant.
func WithAlpha(alpha float64) Option {
	return func(c *Config) {
		c.Alpha = alpha
	}
}

// WithRoleWeights sets the four role weights.
func WithRoleWeights(first, second, relational, symbolic float64) Option {
	return func(c *Config) {
		c.RoleWeights = [NumRoles]float64{first, second, relational, symbolic}
	}
}

// WithStrictReferences selects the strict reference policy.
func WithStrictReferences(strict bool) Option {
	return func(c *Config) {
		c.StrictReferences = strict
	}
}

// WithExpansionRelation sets the relation followed by tree expansion.
func WithExpansionRelation(relation string) Option {
	return func(c *Config) {
		c.ExpansionRelation = relation
	}
}

// WithMatching sets the default merge mode.
func WithMatching(mode MatchMode) Option {
	return func(c *Config) {
		c.Matching = mode
	}
}

// WithPoolSize sets the nearest-word worker count.
func WithPoolSize(size int) Option {
	return func(c *Config) {
		c.PoolSize = size
	}
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxDepth:          10,
		Alpha:             1.6,
		RoleWeights:       [NumRoles]float64{0.5, 0.2, 0.17, 0.13},
		StrictReferences:  false,
		ExpansionRelation: core.RelationHypernym.String(),
		Matching:          MatchFuzzy,
		PoolSize:          runtime.NumCPU(),
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithAlpha(1.0),
//	    WithRoleWeights(0.4, 0.3, 0.2, 0.1),
//	)
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// fileConfig mirrors Config in the YAML file layout. Pointer fields tell
// absent keys apart from zero values.
type fileConfig struct {
	MaxDepth          *int      `yaml:"max_depth"`
	Alpha             *float64  `yaml:"alpha"`
	RoleWeights       []float64 `yaml:"role_weights,flow"`
	StrictReferences  *bool     `yaml:"strict_references"`
	ExpansionRelation *string   `yaml:"expansion_relation"`
	Matching          *string   `yaml:"matching"`
	PoolSize          *int      `yaml:"pool_size"`
}

// LoadFile reads a YAML file over the defaults and applies opts afterwards.
// Keys missing from the file keep their default values.
func LoadFile(path string, opts ...Option) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, opts...)
}

// Parse decodes YAML bytes over the defaults and applies opts afterwards.
func Parse(data []byte, opts ...Option) (*Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := DefaultConfig()
	if fc.MaxDepth != nil {
		cfg.MaxDepth = *fc.MaxDepth
	}
	if fc.Alpha != nil {
		cfg.Alpha = *fc.Alpha
	}
	if fc.RoleWeights != nil {
		if len(fc.RoleWeights) != NumRoles {
			return nil, fmt.Errorf("parse config: role_weights needs %d values, got %d", NumRoles, len(fc.RoleWeights))
		}
		copy(cfg.RoleWeights[:], fc.RoleWeights)
	}
	if fc.StrictReferences != nil {
		cfg.StrictReferences = *fc.StrictReferences
	}
	if fc.ExpansionRelation != nil {
		cfg.ExpansionRelation = *fc.ExpansionRelation
	}
	if fc.Matching != nil {
		cfg.Matching = MatchMode(*fc.Matching)
	}
	if fc.PoolSize != nil {
		cfg.PoolSize = *fc.PoolSize
	}

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg, nil
}

// Expansion returns the parsed expansion relation.
func (c *Config) Expansion() (core.RelationType, error) {
	return core.ParseRelationType(c.ExpansionRelation)
}

// Validate checks that the configuration is valid and complete.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return errors.New("config: MaxDepth must be non-negative")
	}
	if !(c.Alpha > 0) || math.IsInf(c.Alpha, 0) {
		return errors.New("config: Alpha must be a positive finite number")
	}
	weights := c.RoleWeights[:]
	if floats.Min(weights) < 0 || floats.HasNaN(weights) {
		return errors.New("config: RoleWeights must be non-negative")
	}
	if !scalar.EqualWithinAbs(floats.Sum(weights), 1, weightTolerance) {
		return fmt.Errorf("config: RoleWeights must sum to 1, got %g", floats.Sum(weights))
	}
	if _, err := c.Expansion(); err != nil {
		return fmt.Errorf("config: ExpansionRelation: %w", err)
	}
	if _, err := ParseMatchMode(string(c.Matching)); err != nil {
		return fmt.Errorf("config: Matching: %w", err)
	}
	if c.PoolSize < 1 {
		return errors.New("config: PoolSize must be at least 1")
	}
	return nil
}
