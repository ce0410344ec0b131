package importer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/hownet/core"
	"github.com/poiesic/hownet/lexicon"
	"github.com/poiesic/hownet/metrics"
	"github.com/poiesic/hownet/storage"
	"github.com/poiesic/hownet/storage/badger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords() *lexicon.Records {
	return &lexicon.Records{
		Sememes: []*core.SememeRecord{
			{SememeID: "entity|万物", Frequency: "10"},
			{SememeID: "food|食物"},
			{SememeID: "fruit|水果"},
			{SememeID: "human|人"},
		},
		Senses: []*core.SenseRecord{
			{SenseID: "1", WordEn: "apple", WordZh: "苹果", POS: "noun", SememeExpression: "{fruit|水果}"},
			{SenseID: "2", WordEn: "pear", WordZh: "梨", POS: "noun", SememeExpression: "{fruit|水果}"},
			{SenseID: "3", WordEn: "person", WordZh: "人", POS: "noun", SememeExpression: "{human|人}"},
		},
		Relations: []*core.RelationRecord{
			{SrcID: "food|食物", RelationType: "hypernym", DstID: "entity|万物", EntityKind: "sememe"},
			{SrcID: "fruit|水果", RelationType: "hypernym", DstID: "food|食物", EntityKind: "sememe"},
			{SrcID: "human|人", RelationType: "hypernym", DstID: "entity|万物", EntityKind: "sememe"},
			{SrcID: "1", RelationType: "synonym", DstID: "2", EntityKind: "sense"},
		},
	}
}

func setupTestDB(t *testing.T) (storage.LexiconRepository, storage.ManifestRepository) {
	t.Helper()
	repo, manifests, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo, manifests
}

func testConfig() *Config {
	return &Config{BatchSize: 2, ReportInterval: 1, MaxRetries: 2, RetryDelay: time.Millisecond}
}

func TestImporter_Import(t *testing.T) {
	repo, manifests := setupTestDB(t)
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewPrometheus(reg)
	require.NoError(t, err)

	var progress bytes.Buffer
	imp, err := NewImporter(repo, manifests, testConfig(), &progress, WithRecorder(recorder))
	require.NoError(t, err)

	manifest, err := imp.Import(ctx, testRecords())
	require.NoError(t, err)
	assert.Equal(t, 4, manifest.Sememes)
	assert.Equal(t, 3, manifest.Senses)
	assert.Equal(t, 4, manifest.Relations)
	assert.False(t, manifest.ImportedAt.IsZero())

	t.Run("store holds the records in order", func(t *testing.T) {
		var ids []string
		for record, err := range repo.Senses(ctx) {
			require.NoError(t, err)
			ids = append(ids, record.SenseID)
		}
		assert.Equal(t, []string{"1", "2", "3"}, ids)

		sememes, senses, relations, err := repo.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{4, 3, 4}, []int{sememes, senses, relations})
	})

	t.Run("manifest fingerprint matches stored lexicon", func(t *testing.T) {
		stored, err := manifests.LoadManifest(ctx)
		require.NoError(t, err)
		assert.Equal(t, manifest.Fingerprint, stored.Fingerprint)

		loader, err := lexicon.NewLoader()
		require.NoError(t, err)
		g, err := loader.LoadRepository(ctx, repo)
		require.NoError(t, err)
		assert.Equal(t, stored.Fingerprint, g.Fingerprint())
	})

	t.Run("progress and metrics", func(t *testing.T) {
		out := progress.String()
		assert.Contains(t, out, "Importing 11 records (batch size: 2)")
		assert.Contains(t, out, "sememes: 4/4")
		assert.Contains(t, out, "senses: 3/3")
		assert.Contains(t, out, "relations: 4/4")
		assert.Contains(t, out, "Import complete")

		expected := `
# HELP hownet_imported_records_total Records written to the lexicon store
# TYPE hownet_imported_records_total counter
hownet_imported_records_total{status="ok"} 11
`
		assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "hownet_imported_records_total"))
	})
}

func TestImporter_ExistingStore(t *testing.T) {
	repo, manifests := setupTestDB(t)
	ctx := context.Background()

	imp, err := NewImporter(repo, manifests, testConfig(), nil)
	require.NoError(t, err)
	_, err = imp.Import(ctx, testRecords())
	require.NoError(t, err)

	t.Run("refused without replace", func(t *testing.T) {
		_, err := imp.Import(ctx, testRecords())
		assert.ErrorIs(t, err, ErrStoreNotEmpty)
	})

	t.Run("replaced on request", func(t *testing.T) {
		cfg := testConfig()
		cfg.Replace = true
		replacer, err := NewImporter(repo, manifests, cfg, nil)
		require.NoError(t, err)

		smaller := testRecords()
		smaller.Senses = smaller.Senses[:1]
		smaller.Relations = smaller.Relations[:3]
		manifest, err := replacer.Import(ctx, smaller)
		require.NoError(t, err)
		assert.Equal(t, 1, manifest.Senses)

		sememes, senses, relations, err := repo.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{4, 1, 3}, []int{sememes, senses, relations})
	})
}

func TestImporter_InvalidRecords(t *testing.T) {
	repo, manifests := setupTestDB(t)
	ctx := context.Background()

	strict, err := lexicon.NewLoader(lexicon.WithStrictReferences(true))
	require.NoError(t, err)
	imp, err := NewImporter(repo, manifests, testConfig(), nil, WithLoader(strict))
	require.NoError(t, err)

	t.Run("dangling reference", func(t *testing.T) {
		records := testRecords()
		records.Relations = append(records.Relations, &core.RelationRecord{
			SrcID: "fruit|水果", RelationType: "hypernym", DstID: "ghost|鬼", EntityKind: "sememe",
		})
		_, err := imp.Import(ctx, records)
		assert.ErrorIs(t, err, core.ErrMissingReference)
	})

	t.Run("malformed expression", func(t *testing.T) {
		records := testRecords()
		records.Senses[0].SememeExpression = "{fruit|水果"
		_, err := imp.Import(ctx, records)
		assert.ErrorIs(t, err, core.ErrParse)
	})

	t.Run("no records", func(t *testing.T) {
		_, err := imp.Import(ctx, &lexicon.Records{})
		assert.ErrorIs(t, err, ErrNoRecords)
	})

	sememes, senses, relations, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, sememes+senses+relations, "nothing written")
	_, err = manifests.LoadManifest(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// failingSenses fails every sense write after the sememes are stored.
type failingSenses struct {
	storage.LexiconRepository
}

func (failingSenses) AddSenses(context.Context, ...*core.SenseRecord) error {
	return storage.ErrStorageClosed
}

func TestImporter_InterruptedReplace(t *testing.T) {
	repo, manifests := setupTestDB(t)
	ctx := context.Background()

	imp, err := NewImporter(repo, manifests, testConfig(), nil)
	require.NoError(t, err)
	original, err := imp.Import(ctx, testRecords())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Replace = true

	t.Run("cancelled before start keeps the stored lexicon", func(t *testing.T) {
		replacer, err := NewImporter(repo, manifests, cfg, nil)
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = replacer.Import(cancelled, testRecords())
		assert.ErrorIs(t, err, context.Canceled)

		sememes, senses, relations, err := repo.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{4, 3, 4}, []int{sememes, senses, relations})
		stored, err := manifests.LoadManifest(ctx)
		require.NoError(t, err)
		assert.Equal(t, original.Fingerprint, stored.Fingerprint)
	})

	t.Run("failed write leaves no manifest", func(t *testing.T) {
		replacer, err := NewImporter(failingSenses{repo}, manifests, cfg, nil)
		require.NoError(t, err)

		_, err = replacer.Import(ctx, testRecords())
		assert.ErrorIs(t, err, storage.ErrStorageClosed)

		sememes, senses, _, err := repo.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, sememes)
		assert.Zero(t, senses)
		_, err = manifests.LoadManifest(ctx)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestImporter_Run(t *testing.T) {
	repo, manifests := setupTestDB(t)
	dir := t.TempDir()
	records := testRecords()

	write := func(name string, fn func(w *os.File) error) string {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, fn(f))
		require.NoError(t, f.Close())
		return path
	}
	files := lexicon.Files{
		Sememes:   write("sememes.jsonl", func(w *os.File) error { return lexicon.WriteRecords(w, records.Sememes) }),
		Senses:    write("senses.jsonl", func(w *os.File) error { return lexicon.WriteRecords(w, records.Senses) }),
		Relations: write("relations.jsonl", func(w *os.File) error { return lexicon.WriteRecords(w, records.Relations) }),
		Taxonomy: write("taxonomy.txt", func(w *os.File) error {
			_, err := w.WriteString("# extra\nhuman|人 hypernym food|食物\n")
			return err
		}),
	}

	imp, err := NewImporter(repo, manifests, nil, nil)
	require.NoError(t, err)
	manifest, err := imp.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 5, manifest.Relations)

	_, err = imp.Run(context.Background(), lexicon.Files{Sememes: filepath.Join(dir, "absent.jsonl")})
	assert.Error(t, err)
}

func TestNewImporter_InvalidConfig(t *testing.T) {
	repo, manifests := setupTestDB(t)
	for name, mutate := range map[string]func(*Config){
		"batch size":      func(c *Config) { c.BatchSize = 0 },
		"report interval": func(c *Config) { c.ReportInterval = -1 },
		"max retries":     func(c *Config) { c.MaxRetries = 0 },
		"retry delay":     func(c *Config) { c.RetryDelay = -time.Second },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			_, err := NewImporter(repo, manifests, cfg, nil)
			assert.Error(t, err)
		})
	}

	_, err := NewImporter(repo, manifests, nil, nil, WithLoader(nil))
	assert.Error(t, err)
}
