package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/poiesic/hownet/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	var r Recorder = Noop{}
	r.RecordLoad(core.Stats{}, time.Second, nil)
	r.RecordSkippedReference(core.EntitySense)
	r.RecordSimilarity(time.Millisecond)
	r.RecordNearest(10, time.Millisecond, nil)
	r.RecordImport(5, time.Millisecond, errors.New("boom"))

	assert.Equal(t, Noop{}, OrNoop(nil))
	assert.Equal(t, r, OrNoop(r))
}

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	t.Run("load", func(t *testing.T) {
		p.RecordLoad(core.Stats{Sememes: 3, Senses: 2, SememeEdges: 4}, time.Second, nil)
		p.RecordLoad(core.Stats{Sememes: 99}, time.Second, errors.New("bad"))

		assert.Equal(t, 1.0, testutil.ToFloat64(p.loads.WithLabelValues("ok")))
		assert.Equal(t, 1.0, testutil.ToFloat64(p.loads.WithLabelValues("error")))
		assert.Equal(t, 3.0, testutil.ToFloat64(p.entities.WithLabelValues("sememe")))
		assert.Equal(t, 2.0, testutil.ToFloat64(p.entities.WithLabelValues("sense")))
		assert.Equal(t, 4.0, testutil.ToFloat64(p.entities.WithLabelValues("sememe_edge")))
	})

	t.Run("skipped references", func(t *testing.T) {
		p.RecordSkippedReference(core.EntitySememe)
		p.RecordSkippedReference(core.EntitySememe)
		p.RecordSkippedReference(core.EntitySense)

		assert.Equal(t, 2.0, testutil.ToFloat64(p.skipped.WithLabelValues("sememe")))
		assert.Equal(t, 1.0, testutil.ToFloat64(p.skipped.WithLabelValues("sense")))
	})

	t.Run("import", func(t *testing.T) {
		p.RecordImport(100, time.Millisecond, nil)
		p.RecordImport(20, time.Millisecond, nil)
		p.RecordImport(7, time.Millisecond, errors.New("write failed"))

		assert.Equal(t, 120.0, testutil.ToFloat64(p.imported.WithLabelValues("ok")))
		assert.Equal(t, 7.0, testutil.ToFloat64(p.imported.WithLabelValues("error")))
	})

	t.Run("observations are collected", func(t *testing.T) {
		p.RecordSimilarity(time.Microsecond)
		p.RecordNearest(50, time.Millisecond, nil)

		assert.Equal(t, 1, testutil.CollectAndCount(p.similarity))
		assert.Equal(t, 1, testutil.CollectAndCount(p.nearest))
	})

	t.Run("double registration fails", func(t *testing.T) {
		_, err := NewPrometheus(reg)
		assert.Error(t, err)
	})

	t.Run("nil registerer", func(t *testing.T) {
		_, err := NewPrometheus(nil)
		assert.NoError(t, err)
	})
}
