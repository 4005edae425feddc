// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cegar

import (
	"github.com/consensys/go-cegar/pkg/abstraction"
)

// Stats summarises the work done by an algorithm.
type Stats struct {
	// Nodes taken from the waitlist
	Iterations uint
	// Nodes whose successors were computed
	Expanded uint
	// Nodes found to be covered
	Covered uint
	// Paths to error locations analysed
	ErrorPaths  uint
	Refinements uint
	// Nodes ever allocated in the tree
	Nodes uint
	// Nodes not removed by refinement
	LiveNodes uint
	// Predicates tracked, summed over all locations
	Predicates uint
	Analyzer   AnalyzerStats
	Refiner    RefinerStats
	Computer   abstraction.Stats
	// Cartesian, feasibility and Boolean caches
	Caches [3]abstraction.CacheStats
}

// Rows returns these statistics as (name, value) pairs, suitable for printing
// in a table.
func (p *Stats) Rows() [][2]any {
	return [][2]any{
		{"iterations", p.Iterations},
		{"nodes", p.Nodes},
		{"live nodes", p.LiveNodes},
		{"expanded", p.Expanded},
		{"covered", p.Covered},
		{"error paths", p.ErrorPaths},
		{"refinements", p.Refinements},
		{"restarts", p.Refiner.Restarts},
		{"pruned", p.Refiner.Pruned},
		{"spurious", p.Analyzer.Spurious},
		{"interpolants", p.Analyzer.Interpolants},
		{"locations with predicates", p.Predicates},
		{"posts", p.Computer.Posts},
		{"feasibility queries", p.Computer.FeasibilityQueries},
		{"cartesian queries", p.Computer.CartesianQueries},
		{"allsat queries", p.Computer.AllSatQueries},
		{"cartesian cache hits", p.Caches[0].Hits},
		{"feasibility cache hits", p.Caches[1].Hits},
		{"boolean cache hits", p.Caches[2].Hits},
		{"cache evictions", p.Caches[0].Evictions + p.Caches[1].Evictions + p.Caches[2].Evictions},
	}
}
