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

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/hownet"
	"github.com/poiesic/hownet/config"
	"github.com/poiesic/hownet/core"
	"github.com/poiesic/hownet/importer"
	"github.com/poiesic/hownet/lexicon"
	"github.com/poiesic/hownet/metrics"
	"github.com/poiesic/hownet/similarity"
	"github.com/poiesic/hownet/storage/badger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v2"
)

const (
	registryKey = "metrics.registry"
	recorderKey = "metrics.recorder"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "hownet",
		Usage: "Query a sememe-based lexical knowledge base",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Print Prometheus metrics in text format after the command",
			},
		},
		Before: func(c *cli.Context) error {
			if err := setupLogger(c); err != nil {
				return err
			}
			return setupMetrics(c)
		},
		After: dumpMetrics,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Import lexicon record files into a BadgerDB store",
				Action: importCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "sememes",
						Usage:    "Sememe records file (.jsonl, .zst or .lz4)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "senses",
						Usage:    "Sense records file (.jsonl, .zst or .lz4)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "relations",
						Usage: "Relation records file (.jsonl, .zst or .lz4)",
					},
					&cli.StringFlag{
						Name:  "taxonomy",
						Usage: "Sememe taxonomy file with one \"src relation dst\" triple per line",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to write in each batch",
						Value: 500,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 5000,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed writes",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 100 * time.Millisecond,
					},
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "Clear a store that already holds a lexicon",
					},
				},
			},
			{
				Name:      "lookup",
				Usage:     "List the senses of a word",
				ArgsUsage: "WORD",
				Action:    lookupCommand,
				Flags: []cli.Flag{
					dbFlag(),
					posFlag(),
					langFlag(),
					&cli.BoolFlag{
						Name:  "prefix",
						Usage: "List the words starting with WORD instead",
					},
				},
			},
			{
				Name:      "relations",
				Usage:     "List the relations of a sememe or sense",
				ArgsUsage: "ID",
				Action:    relationsCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "rel",
						Usage: "Restrict to one relation type",
					},
					&cli.StringFlag{
						Name:  "direction",
						Usage: "Edges to follow (out, in or both)",
						Value: "out",
					},
				},
			},
			{
				Name:      "sememes",
				Usage:     "List sememes, optionally those matching QUERY",
				ArgsUsage: "[QUERY]",
				Action:    sememesCommand,
				Flags:     []cli.Flag{dbFlag()},
			},
			{
				Name:   "senses",
				Usage:  "List senses by sememe, synset or shared annotation",
				Action: sensesCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "sememe",
						Usage: "Senses whose expression references this sememe",
					},
					&cli.StringFlag{
						Name:  "match",
						Usage: "Senses referencing any sememe matching this text",
					},
					&cli.StringFlag{
						Name:  "synset",
						Usage: "Senses carrying this external synset identifier",
					},
					&cli.StringFlag{
						Name:  "synonyms",
						Usage: "Senses annotated with the same sememes as this sense",
					},
				},
			},
			{
				Name:      "tree",
				Usage:     "Print the sememe tree of a sense",
				ArgsUsage: "SENSE_ID",
				Action:    treeCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.IntFlag{
						Name:  "depth",
						Usage: "Expansion hops per sememe (default from configuration)",
					},
					&cli.StringFlag{
						Name:  "matching",
						Usage: "Sibling matching mode, strict or fuzzy (default from configuration)",
					},
				},
			},
			{
				Name:      "similarity",
				Usage:     "Compute the similarity of two words",
				ArgsUsage: "WORD1 WORD2",
				Action:    similarityCommand,
				Flags:     []cli.Flag{dbFlag(), posFlag(), langFlag()},
			},
			{
				Name:      "nearest",
				Usage:     "Find the words most similar to a word",
				ArgsUsage: "WORD",
				Action:    nearestCommand,
				Flags: []cli.Flag{
					dbFlag(),
					posFlag(),
					langFlag(),
					&cli.IntFlag{
						Name:  "k",
						Usage: "Number of neighbours to return",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "include-query",
						Usage: "Keep the query word among the candidates",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Summarise a lexicon store",
				Action: statsCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
		},
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func posFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "pos",
		Usage: "Restrict to one part of speech",
	}
}

func langFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "lang",
		Usage: "Word language (en, zh or all)",
		Value: "all",
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openDictionary(c *cli.Context) (*hownet.Dictionary, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	d, err := hownet.Open(c.Context, c.String("db"),
		hownet.WithConfig(cfg),
		hownet.WithRecorder(recorderFrom(c)))
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon: %w", err)
	}
	return d, nil
}

func parsePOS(c *cli.Context) (*core.POS, error) {
	if c.String("pos") == "" {
		return nil, nil
	}
	pos, err := core.ParsePOS(c.String("pos"))
	if err != nil {
		return nil, err
	}
	return &pos, nil
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("%s expects %d argument(s): %s", c.Command.Name, n, c.Command.ArgsUsage)
	}
	return nil
}

func importCommand(c *cli.Context) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	importConfig := &importer.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Replace:        c.Bool("replace"),
	}
	if err := importConfig.Validate(); err != nil {
		return err
	}

	loader, err := lexicon.NewLoader(
		lexicon.WithStrictReferences(cfg.StrictReferences),
		lexicon.WithRecorder(recorderFrom(c)))
	if err != nil {
		return err
	}

	dbPath := c.String("db")
	repo, manifests, backend, err := badger.OpenRepositories(dbPath, badger.WithSyncWrites(true))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()
	defer repo.Close()

	imp, err := importer.NewImporter(repo, manifests, importConfig, c.App.ErrWriter,
		importer.WithLoader(loader),
		importer.WithRecorder(recorderFrom(c)))
	if err != nil {
		return fmt.Errorf("failed to create importer: %w", err)
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", dbPath)
	fmt.Fprintf(c.App.ErrWriter, "Sememes: %s\n", c.String("sememes"))
	fmt.Fprintf(c.App.ErrWriter, "Senses: %s\n", c.String("senses"))
	fmt.Fprintln(c.App.ErrWriter)

	manifest, err := imp.Run(ctx, lexicon.Files{
		Sememes:   c.String("sememes"),
		Senses:    c.String("senses"),
		Relations: c.String("relations"),
		Taxonomy:  c.String("taxonomy"),
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "imported %d sememes, %d senses, %d relations (fingerprint %016x)\n",
		manifest.Sememes, manifest.Senses, manifest.Relations, uint64(manifest.Fingerprint))
	return nil
}

func lookupCommand(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	pos, err := parsePOS(c)
	if err != nil {
		return err
	}
	lang, err := core.ParseLang(c.String("lang"))
	if err != nil {
		return err
	}

	d, err := openDictionary(c)
	if err != nil {
		return err
	}
	defer d.Close()

	if c.Bool("prefix") {
		words, err := d.WordsWithPrefix(c.Args().First(), lang)
		if err != nil {
			return err
		}
		for _, w := range words {
			fmt.Fprintln(c.App.Writer, w)
		}
		return nil
	}

	senses, err := d.LookupSenses(c.Args().First(), pos, lang)
	if err != nil {
		return err
	}
	for _, s := range senses {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.WordEn, s.WordZh, s.POS, s.RawExpression)
	}
	return nil
}

func relationsCommand(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	var rel *core.RelationType
	if name := c.String("rel"); name != "" {
		r, err := core.ParseRelationType(name)
		if err != nil {
			return err
		}
		rel = &r
	}
	dir, err := core.ParseDirection(c.String("direction"))
	if err != nil {
		return err
	}

	d, err := openDictionary(c)
	if err != nil {
		return err
	}
	defer d.Close()

	relations, err := d.RelationsOfDirection(c.Args().First(), rel, dir)
	if err != nil {
		return err
	}
	for _, r := range relations {
		if dir == core.DirectionOut {
			fmt.Fprintf(c.App.Writer, "%s\t%s\n", r.Type, r.Target)
			continue
		}
		arrow := "->"
		if r.Incoming {
			arrow = "<-"
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", arrow, r.Type, r.Target)
	}
	return nil
}

func sememesCommand(c *cli.Context) error {
	if c.NArg() > 1 {
		return fmt.Errorf("%s expects at most one argument: %s", c.Command.Name, c.Command.ArgsUsage)
	}

	d, err := openDictionary(c)
	if err != nil {
		return err
	}
	defer d.Close()

	show := func(s *core.Sememe) {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\t%d\n", s.ID, s.En, s.Zh, s.Frequency)
	}
	if c.NArg() == 1 {
		for _, s := range d.SearchSememes(c.Args().First()) {
			show(s)
		}
		return nil
	}
	for s := range d.Sememes() {
		show(s)
	}
	return nil
}

func sensesCommand(c *cli.Context) error {
	set := 0
	for _, name := range []string{"sememe", "match", "synset", "synonyms"} {
		if c.String(name) != "" {
			set++
		}
	}
	if set != 1 {
		return errors.New("senses expects exactly one of --sememe, --match, --synset or --synonyms")
	}

	d, err := openDictionary(c)
	if err != nil {
		return err
	}
	defer d.Close()

	var senses []*core.Sense
	switch {
	case c.String("sememe") != "":
		senses = d.SensesBySememe(core.SememeID(c.String("sememe")))
	case c.String("match") != "":
		senses = d.SensesBySememeMatch(c.String("match"))
	case c.String("synset") != "":
		senses = d.SensesBySynset(c.String("synset"))
	default:
		senses = d.SenseSynonyms(core.SenseID(c.String("synonyms")))
	}
	for _, s := range senses {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.WordEn, s.WordZh, s.POS, s.RawExpression)
	}
	return nil
}

func treeCommand(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}

	d, err := openDictionary(c)
	if err != nil {
		return err
	}
	defer d.Close()

	depth := d.Config().MaxDepth
	if c.IsSet("depth") {
		depth = c.Int("depth")
	}
	matching := d.Config().Matching
	if c.IsSet("matching") {
		if matching, err = config.ParseMatchMode(c.String("matching")); err != nil {
			return err
		}
	}

	id := c.Args().First()
	t, err := d.BuildSememeTree(core.SenseID(id), depth, matching)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("sense %q not found", id)
	}
	fmt.Fprint(c.App.Writer, t.String())
	return nil
}

func similarityCommand(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	pos, err := parsePOS(c)
	if err != nil {
		return err
	}
	lang, err := core.ParseLang(c.String("lang"))
	if err != nil {
		return err
	}

	d, err := openDictionary(c)
	if err != nil {
		return err
	}
	defer d.Close()

	score, err := d.Similarity(c.Args().Get(0), c.Args().Get(1), pos, lang)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%.4f\n", score)
	return nil
}

func nearestCommand(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	pos, err := parsePOS(c)
	if err != nil {
		return err
	}
	lang, err := core.ParseLang(c.String("lang"))
	if err != nil {
		return err
	}

	d, err := openDictionary(c)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	neighbors, err := d.NearestWords(ctx, c.Args().First(), similarity.NearestOptions{
		K:            c.Int("k"),
		POS:          pos,
		Lang:         lang,
		IncludeQuery: c.Bool("include-query"),
	})
	if err != nil {
		return err
	}
	for _, n := range neighbors {
		fmt.Fprintf(c.App.Writer, "%s\t%.4f\n", n.Word, n.Score)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	d, err := openDictionary(c)
	if err != nil {
		return err
	}
	defer d.Close()

	stats := d.Stats()
	w := c.App.Writer
	fmt.Fprintf(w, "sememes:            %d\n", stats.Sememes)
	fmt.Fprintf(w, "senses:             %d\n", stats.Senses)
	fmt.Fprintf(w, "sememe edges:       %d\n", stats.SememeEdges)
	fmt.Fprintf(w, "sense edges:        %d\n", stats.SenseEdges)
	fmt.Fprintf(w, "english words:      %d\n", stats.EnglishWords)
	fmt.Fprintf(w, "chinese words:      %d\n", stats.ChineseWords)
	fmt.Fprintf(w, "skipped references: %d\n", stats.SkippedReferences)
	fmt.Fprintf(w, "fingerprint:        %016x\n", uint64(stats.Fingerprint))
	if m := d.Manifest(); m != nil {
		fmt.Fprintf(w, "imported at:        %s\n", m.ImportedAt.Format(time.RFC3339))
	}
	return nil
}

// setupMetrics registers Prometheus collectors when --metrics is set.
func setupMetrics(c *cli.Context) error {
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	if !c.Bool("metrics") {
		return nil
	}
	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewPrometheus(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	c.App.Metadata[registryKey] = reg
	c.App.Metadata[recorderKey] = recorder
	return nil
}

func recorderFrom(c *cli.Context) metrics.Recorder {
	if recorder, ok := c.App.Metadata[recorderKey].(metrics.Recorder); ok {
		return recorder
	}
	return metrics.Noop{}
}

// dumpMetrics writes the gathered metric families in text exposition format.
func dumpMetrics(c *cli.Context) error {
	reg, ok := c.App.Metadata[registryKey].(*prometheus.Registry)
	if !ok {
		return nil
	}
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(c.App.Writer, mf); err != nil {
			return err
		}
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
