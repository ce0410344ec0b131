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

package metrics

import (
	"time"

	"github.com/poiesic/hownet/core"
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus exports measurements as Prometheus collectors.
type Prometheus struct {
	loads        *prometheus.CounterVec
	loadDuration prometheus.Histogram
	entities     *prometheus.GaugeVec
	skipped      *prometheus.CounterVec
	similarity   prometheus.Histogram
	nearest      *prometheus.HistogramVec
	candidates   prometheus.Histogram
	imported     *prometheus.CounterVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus creates the collectors and registers them with reg.
// A nil reg registers with a fresh registry.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	p := &Prometheus{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hownet_loads_total",
			Help: "Total graph loads",
		}, []string{"status"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hownet_load_duration_seconds",
			Help:    "Duration of graph loads",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hownet_entities",
			Help: "Entities held by the last loaded graph",
		}, []string{"kind"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hownet_skipped_references_total",
			Help: "References skipped by lenient loads",
		}, []string{"kind"}),
		similarity: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hownet_similarity_duration_seconds",
			Help:    "Duration of similarity computations",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}),
		nearest: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hownet_nearest_duration_seconds",
			Help:    "Duration of nearest-word searches",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hownet_nearest_candidates",
			Help:    "Candidate words scored per nearest-word search",
			Buckets: prometheus.ExponentialBuckets(10, 10, 6),
		}),
		imported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hownet_imported_records_total",
			Help: "Records written to the lexicon store",
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{
		p.loads, p.loadDuration, p.entities, p.skipped,
		p.similarity, p.nearest, p.candidates, p.imported,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) RecordLoad(counts core.Stats, duration time.Duration, err error) {
	p.loads.WithLabelValues(status(err)).Inc()
	p.loadDuration.Observe(duration.Seconds())
	if err != nil {
		return
	}
	p.entities.WithLabelValues("sememe").Set(float64(counts.Sememes))
	p.entities.WithLabelValues("sense").Set(float64(counts.Senses))
	p.entities.WithLabelValues("sememe_edge").Set(float64(counts.SememeEdges))
	p.entities.WithLabelValues("sense_edge").Set(float64(counts.SenseEdges))
}

func (p *Prometheus) RecordSkippedReference(kind core.EntityKind) {
	p.skipped.WithLabelValues(kind.String()).Inc()
}

func (p *Prometheus) RecordSimilarity(duration time.Duration) {
	p.similarity.Observe(duration.Seconds())
}

func (p *Prometheus) RecordNearest(candidates int, duration time.Duration, err error) {
	p.nearest.WithLabelValues(status(err)).Observe(duration.Seconds())
	if err == nil {
		p.candidates.Observe(float64(candidates))
	}
}

func (p *Prometheus) RecordImport(records int, _ time.Duration, err error) {
	p.imported.WithLabelValues(status(err)).Add(float64(records))
}
