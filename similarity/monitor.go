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

import "github.com/poiesic/hownet/core"

// Monitor receives callbacks while a nearest-word search runs.
// Scored is called from worker goroutines and must be safe for concurrent use.
type Monitor interface {
	Start(word string, opts NearestOptions)
	QuerySenses(senses []*core.Sense)
	Candidates(count int)
	Scored(word string, score float64)
	Finish(results []Neighbor, err error)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ NearestOptions) {}
func (n *noopMonitor) QuerySenses(_ []*core.Sense)      {}
func (n *noopMonitor) Candidates(_ int)                 {}
func (n *noopMonitor) Scored(_ string, _ float64)       {}
func (n *noopMonitor) Finish(_ []Neighbor, _ error)     {}
