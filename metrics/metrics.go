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

// Package metrics records load, similarity and import measurements.
//
// A Recorder is threaded through the loader, the similarity engine and the
// importer. Noop is the default; Prometheus exports the same measurements to
// a prometheus.Registerer.
package metrics

import (
	"time"

	"github.com/poiesic/hownet/core"
)

// Recorder receives measurements from the lexicon pipeline.
// Implementations must be safe for concurrent use.
type Recorder interface {
	// RecordLoad is called once per graph load.
	RecordLoad(counts core.Stats, duration time.Duration, err error)
	// RecordSkippedReference is called for each reference skipped by a lenient load.
	RecordSkippedReference(kind core.EntityKind)
	// RecordSimilarity is called for each word or sense similarity computation.
	RecordSimilarity(duration time.Duration)
	// RecordNearest is called once per nearest-word search.
	RecordNearest(candidates int, duration time.Duration, err error)
	// RecordImport is called for each batch written to a lexicon store.
	RecordImport(records int, duration time.Duration, err error)
}

// Noop discards all measurements.
type Noop struct{}

var _ Recorder = Noop{}

func (Noop) RecordLoad(core.Stats, time.Duration, error) {}
func (Noop) RecordSkippedReference(core.EntityKind)      {}
func (Noop) RecordSimilarity(time.Duration)              {}
func (Noop) RecordNearest(int, time.Duration, error)     {}
func (Noop) RecordImport(int, time.Duration, error)      {}

// OrNoop returns r, or Noop when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return Noop{}
	}
	return r
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
