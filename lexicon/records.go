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

package lexicon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/poiesic/hownet/core"
	"github.com/poiesic/hownet/graph"
)

// maxLineSize bounds a single JSON-lines record.
const maxLineSize = 4 * 1024 * 1024

// OpenRecordFile opens a record file, decompressing it by extension:
// ".zst" is zstd, ".lz4" is lz4, anything else is read as is.
func OpenRecordFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		return &readCloser{Reader: dec, close: func() error {
			dec.Close()
			return f.Close()
		}}, nil
	case ".lz4":
		return &readCloser{Reader: lz4.NewReader(f), close: f.Close}, nil
	}
	return f, nil
}

// CreateRecordFile creates a record file, compressing it by extension the
// same way OpenRecordFile decompresses it.
func CreateRecordFile(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
		return &writeCloser{Writer: enc, close: func() error {
			if err := enc.Close(); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		}}, nil
	case ".lz4":
		zw := lz4.NewWriter(f)
		return &writeCloser{Writer: zw, close: func() error {
			if err := zw.Close(); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		}}, nil
	}
	return f, nil
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r *readCloser) Close() error { return r.close() }

type writeCloser struct {
	io.Writer
	close func() error
}

func (w *writeCloser) Close() error { return w.close() }

// ReadSememes yields sememe records from JSON lines.
func ReadSememes(r io.Reader) iter.Seq2[*core.SememeRecord, error] {
	return readJSONLines[core.SememeRecord](r, "sememe")
}

// ReadSenses yields sense records from JSON lines.
func ReadSenses(r io.Reader) iter.Seq2[*core.SenseRecord, error] {
	return readJSONLines[core.SenseRecord](r, "sense")
}

// ReadRelations yields relation records from JSON lines.
func ReadRelations(r io.Reader) iter.Seq2[*core.RelationRecord, error] {
	return readJSONLines[core.RelationRecord](r, "relation")
}

// ReadTriples yields relation records from a taxonomy file with one
// "src relation dst" triple per line. Blank lines and lines starting with
// '#' are ignored. The relation name may contain spaces.
func ReadTriples(r io.Reader, kind core.EntityKind) iter.Seq2[*core.RelationRecord, error] {
	return func(yield func(*core.RelationRecord, error) bool) {
		scanner := newScanner(r)
		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" || strings.HasPrefix(text, "#") {
				continue
			}
			fields := strings.Fields(text)
			if len(fields) < 3 {
				yield(nil, &core.ParseError{
					Record: "relation",
					Value:  text,
					Offset: -1,
					Reason: fmt.Sprintf("line %d: expected \"src relation dst\"", line),
				})
				return
			}
			record := &core.RelationRecord{
				SrcID:        fields[0],
				RelationType: strings.Join(fields[1:len(fields)-1], " "),
				DstID:        fields[len(fields)-1],
				EntityKind:   kind.String(),
			}
			if !yield(record, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// WriteRecords writes records as JSON lines.
func WriteRecords[T any](w io.Writer, records []T) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func readJSONLines[T any](r io.Reader, kind string) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		scanner := newScanner(r)
		line := 0
		for scanner.Scan() {
			line++
			data := strings.TrimSpace(scanner.Text())
			if data == "" {
				continue
			}
			record := new(T)
			if err := json.Unmarshal([]byte(data), record); err != nil {
				yield(nil, &core.ParseError{
					Record: kind,
					Offset: -1,
					Reason: fmt.Sprintf("line %d: %v", line, err),
				})
				return
			}
			if !yield(record, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}

// Files names the record files of one lexicon. Empty paths are skipped.
type Files struct {
	Sememes   string
	Senses    string
	Relations string
	// Taxonomy is an optional triples file of sememe relations.
	Taxonomy string
}

// Records holds the raw records of one lexicon in file order.
type Records struct {
	Sememes   []*core.SememeRecord
	Senses    []*core.SenseRecord
	Relations []*core.RelationRecord
}

// Total returns the number of records of all kinds.
func (r *Records) Total() int {
	return len(r.Sememes) + len(r.Senses) + len(r.Relations)
}

// LoadFiles opens the record files and loads them. Relations from the
// taxonomy file follow those from the relations file.
func (l *Loader) LoadFiles(files Files) (*graph.Graph, error) {
	fs, err := openFiles(files)
	if err != nil {
		return nil, err
	}
	defer fs.Close()
	return l.LoadSeq(fs.sememes, fs.senses, fs.relations)
}

// LoadRecords loads records already read into memory.
func (l *Loader) LoadRecords(records *Records) (*graph.Graph, error) {
	return l.Load(records.Sememes, records.Senses, records.Relations)
}

// ReadFiles reads every record of the files into memory without
// validating references.
func ReadFiles(files Files) (*Records, error) {
	fs, err := openFiles(files)
	if err != nil {
		return nil, err
	}
	defer fs.Close()

	records := &Records{}
	if records.Sememes, err = collectSeq(fs.sememes); err != nil {
		return nil, err
	}
	if records.Senses, err = collectSeq(fs.senses); err != nil {
		return nil, err
	}
	if records.Relations, err = collectSeq(fs.relations); err != nil {
		return nil, err
	}
	return records, nil
}

type fileSeqs struct {
	sememes   iter.Seq2[*core.SememeRecord, error]
	senses    iter.Seq2[*core.SenseRecord, error]
	relations iter.Seq2[*core.RelationRecord, error]
	closers   []io.Closer
}

func openFiles(files Files) (*fileSeqs, error) {
	fs := &fileSeqs{}
	paths := []string{files.Sememes, files.Senses, files.Relations, files.Taxonomy}
	readers := make([]io.Reader, len(paths))
	for i, path := range paths {
		if path == "" {
			continue
		}
		rc, err := OpenRecordFile(path)
		if err != nil {
			fs.Close()
			return nil, err
		}
		fs.closers = append(fs.closers, rc)
		readers[i] = rc
	}

	var relations []iter.Seq2[*core.RelationRecord, error]
	if readers[0] != nil {
		fs.sememes = ReadSememes(readers[0])
	}
	if readers[1] != nil {
		fs.senses = ReadSenses(readers[1])
	}
	if readers[2] != nil {
		relations = append(relations, ReadRelations(readers[2]))
	}
	if readers[3] != nil {
		relations = append(relations, ReadTriples(readers[3], core.EntitySememe))
	}
	fs.relations = concatSeq(relations...)
	return fs, nil
}

func (fs *fileSeqs) Close() {
	for _, c := range fs.closers {
		c.Close()
	}
}

func collectSeq[T any](seq iter.Seq2[*T, error]) ([]*T, error) {
	if seq == nil {
		return nil, nil
	}
	var out []*T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func concatSeq[T any](seqs ...iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, seq := range seqs {
			for v, err := range seq {
				if !yield(v, err) {
					return
				}
			}
		}
	}
}
