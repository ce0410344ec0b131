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
	"context"

	"github.com/poiesic/hownet/graph"
	"github.com/poiesic/hownet/storage"
)

// LoadRepository builds a graph from the records held by a lexicon store,
// in the order they were imported.
func (l *Loader) LoadRepository(ctx context.Context, repo storage.LexiconRepository) (*graph.Graph, error) {
	return l.LoadSeq(repo.Sememes(ctx), repo.Senses(ctx), repo.Relations(ctx))
}
