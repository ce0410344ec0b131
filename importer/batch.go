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
	"context"
	"fmt"
	"log/slog"
	"time"
)

// BatchWriter writes records to a store in fixed-size batches, retrying
// each batch with exponential backoff. A batch is written in a single
// transaction, so a failed attempt leaves nothing behind to clean up.
type BatchWriter[T any] struct {
	write          func(ctx context.Context, records ...*T) error
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// NewBatchWriter creates a new batch writer.
// write: stores one batch, e.g. a repository's AddSenses method
// batchSize: number of records per batch
// maxRetries: maximum number of attempts per batch
// retryBaseDelay: base delay for exponential backoff
func NewBatchWriter[T any](write func(ctx context.Context, records ...*T) error, batchSize, maxRetries int, retryBaseDelay time.Duration, logger *slog.Logger) *BatchWriter[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchWriter[T]{
		write:          write,
		batchSize:      max(batchSize, 1),
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		logger:         logger,
	}
}

// Write stores records in batches, calling onBatch with the size of each
// batch once it is stored.
func (w *BatchWriter[T]) Write(ctx context.Context, records []*T, onBatch func(n int)) error {
	for start := 0; start < len(records); start += w.batchSize {
		batch := records[start:min(start+w.batchSize, len(records))]
		err := RetryWithBackoff(ctx, w.logger, func(ctx context.Context) error {
			return w.write(ctx, batch...)
		}, w.maxRetries, w.retryBaseDelay)
		if err != nil {
			return fmt.Errorf("failed to write batch at record %d: %w", start, err)
		}
		if onBatch != nil {
			onBatch(len(batch))
		}
	}
	return nil
}
