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

package importer

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Progress reports an import as a sequence of stages, one per record kind.
// Each stage prints a single line that is rewritten in place.
type Progress struct {
	mu sync.Mutex

	writer         io.Writer
	stages         int
	reportInterval int

	stage        int
	label        string
	done         int
	total        int
	lastReported int
	written      int
	stageStart   time.Time
	start        time.Time
}

// NewProgress creates a progress reporter for an import of stages stages
// that reports every reportInterval records. A nil writer discards output.
func NewProgress(writer io.Writer, stages, reportInterval int) *Progress {
	if writer == nil {
		writer = io.Discard
	}
	return &Progress{
		writer:         writer,
		stages:         stages,
		reportInterval: max(reportInterval, 1),
	}
}

// BeginStage starts the next stage with total records.
func (p *Progress) BeginStage(label string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if p.start.IsZero() {
		p.start = now
	}
	p.stage++
	p.label = label
	p.done = 0
	p.total = total
	p.lastReported = 0
	p.stageStart = now
}

// Add counts n more records written in the current stage.
func (p *Progress) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.label == "" {
		return
	}
	n = min(n, p.total-p.done)
	p.done += n
	p.written += n
	if p.done-p.lastReported >= p.reportInterval {
		p.print()
		p.lastReported = p.done
	}
}

// EndStage prints the final line of the current stage and returns how
// long it took.
func (p *Progress) EndStage() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.label == "" {
		return 0
	}
	p.print()
	fmt.Fprintln(p.writer)
	p.label = ""
	return time.Since(p.stageStart)
}

// Done returns the records counted in the current stage.
func (p *Progress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Written returns the records counted across all stages.
func (p *Progress) Written() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written
}

// Elapsed returns the time since the first stage began.
func (p *Progress) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.start.IsZero() {
		return 0
	}
	return time.Since(p.start)
}

// print writes the current stage line. Must be called with mu held.
func (p *Progress) print() {
	percent := 100.0
	if p.total > 0 {
		percent = float64(p.done) * 100 / float64(p.total)
	}
	rate := 0.0
	if secs := time.Since(p.stageStart).Seconds(); secs > 0 {
		rate = float64(p.done) / secs
	}
	fmt.Fprintf(p.writer, "\r[%d/%d] %s: %d/%d (%.1f%%) %.0f records/s",
		p.stage, p.stages, p.label, p.done, p.total, percent, rate)
}
