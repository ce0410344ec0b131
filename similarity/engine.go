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

package similarity

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/hownet/config"
	"github.com/poiesic/hownet/core"
	"github.com/poiesic/hownet/graph"
	"github.com/poiesic/hownet/metrics"
)

// releaseTimeout bounds how long Release waits for workers to exit.
const releaseTimeout = 5 * time.Second

// Engine computes sense and word similarity over one graph.
// It is safe for concurrent use until Release is called.
type Engine struct {
	graph    *graph.Graph
	cfg      *config.Config
	pool     *ants.Pool
	logger   *slog.Logger
	recorder metrics.Recorder
	released atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine) error

// WithConfig sets the scoring configuration. The configuration is
// validated when the engine is created.
// Default is config.DefaultConfig().
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) error {
		if cfg == nil {
			cfg = config.DefaultConfig()
		}
		e.cfg = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithRecorder sets the metrics recorder.
// Default is metrics.Noop.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(e *Engine) error {
		e.recorder = metrics.OrNoop(recorder)
		return nil
	}
}

// NewEngine creates an Engine over g. The worker pool used by Nearest is
// sized by the configuration's PoolSize and must be freed with Release.
func NewEngine(g *graph.Graph, opts ...Option) (*Engine, error) {
	if g == nil {
		return nil, ErrGraphRequired
	}
	e := &Engine{
		graph:    g,
		cfg:      config.DefaultConfig(),
		logger:   slog.Default(),
		recorder: metrics.Noop{},
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(e.cfg.PoolSize)
	if err != nil {
		return nil, err
	}
	e.pool = pool
	return e, nil
}

// Release releases the worker pool. The engine must not be used for
// nearest-word search afterwards.
func (e *Engine) Release() {
	if !e.released.CompareAndSwap(false, true) {
		return
	}
	if err := e.pool.ReleaseTimeout(releaseTimeout); err != nil {
		e.logger.Warn("Worker pool did not stop in time", "error", err)
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// SememeSimilarity returns alpha/(alpha+d) for the hierarchy distance d
// between two sememes, or 0 when either is unknown or no path exists
// within the depth bound.
func (e *Engine) SememeSimilarity(a, b core.SememeID) float64 {
	d, ok := e.Distance(a, b)
	if !ok {
		return 0
	}
	return e.fromDistance(d)
}

// Distance returns the shortest hierarchy distance between two sememes.
// Each side of the search is limited to MaxDepth hops.
func (e *Engine) Distance(a, b core.SememeID) (int, bool) {
	oa, ok := e.graph.SememeOrdinal(a)
	if !ok {
		return 0, false
	}
	ob, ok := e.graph.SememeOrdinal(b)
	if !ok {
		return 0, false
	}
	return distance(e.graph, oa, ob, e.cfg.MaxDepth)
}

func (e *Engine) fromDistance(d int) float64 {
	return e.cfg.Alpha / (e.cfg.Alpha + float64(d))
}

// SenseSimilarity returns the similarity of two senses in [0, 1].
func (e *Engine) SenseSimilarity(a, b *core.Sense) float64 {
	start := time.Now()
	defer func() { e.recorder.RecordSimilarity(time.Since(start)) }()

	ra, rb := extractRoles(e.graph, a), extractRoles(e.graph, b)
	return e.combine(&ra, &rb, func(i int) float64 {
		d, ok := distance(e.graph, ra.ords[i], rb.ords[i], e.cfg.MaxDepth)
		if !ok {
			return 0
		}
		return e.fromDistance(d)
	})
}

// combine forms the weighted role score. roleSim is only called for roles
// bound on both sides. When no weighted role is bound on either side the
// score is 1 for identical expressions and 0 otherwise.
func (e *Engine) combine(a, b *roleSet, roleSim func(i int) float64) float64 {
	var num, den float64
	for i := range config.NumRoles {
		if !a.ok[i] && !b.ok[i] {
			continue
		}
		w := e.cfg.RoleWeights[i]
		den += w
		if a.ok[i] && b.ok[i] {
			num += w * roleSim(i)
		}
	}
	if den == 0 {
		if a.canonical != "" && a.canonical == b.canonical {
			return 1
		}
		return 0
	}
	return clamp(num / den)
}

// Similarity returns the best sense-pair similarity of two words, or 0 when
// either word has no sense under the filters.
func (e *Engine) Similarity(w1, w2 string, pos *core.POS, lang core.Lang) float64 {
	s1 := e.graph.Senses(w1, pos, lang)
	s2 := e.graph.Senses(w2, pos, lang)
	best := 0.0
	for _, a := range s1 {
		for _, b := range s2 {
			if s := e.SenseSimilarity(a, b); s > best {
				best = s
			}
		}
	}
	return best
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
