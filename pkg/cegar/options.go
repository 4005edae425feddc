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

// Options determines how counterexamples are analysed and how the
// reachability tree is refined and explored.
type Options struct {
	// ShortestCexTrace enables the useful blocks reduction and stops the
	// satisfiability check at the first unsatisfiable prefix.
	ShortestCexTrace bool
	// ShortestCexTraceUseSuffix traverses traces from the end.
	ShortestCexTraceUseSuffix bool
	// ShortestCexTraceZigZag traverses traces alternately from both ends.
	ShortestCexTraceZigZag bool
	// AddWellScopedPredicates restricts interpolation to the innermost
	// enclosing function call.
	AddWellScopedPredicates bool
	// SplitItpAtoms splits equalities into a pair of inequalities.
	SplitItpAtoms bool
	// AtomicPredicates extracts atoms from interpolants, rather than keeping
	// whole interpolants.
	AtomicPredicates bool
	// AddPredicatesGlobally attaches predicates to every node on the path.
	AddPredicatesGlobally bool
	// UseBlastWay attaches the union of predicates to every node spanned by
	// non-trivial interpolants.
	UseBlastWay bool
	// MsatCexPath, when non-empty, names a file to which the formula of a real
	// counterexample is written.
	MsatCexPath string
	// BFS selects breadth-first exploration, and always refines from the
	// root of the tree.
	BFS bool
	// MaxRefinements bounds the number of refinements (0 means unbounded).
	MaxRefinements uint
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{AtomicPredicates: true}
}

// order returns the positions of a trace with n steps in the configured
// traversal order.
func (o *Options) order(n int) []int {
	positions := make([]int, 0, n)
	//
	switch {
	case o.ShortestCexTraceZigZag:
		for lo, hi := 0, n-1; lo <= hi; lo, hi = lo+1, hi-1 {
			positions = append(positions, lo)
			//
			if hi != lo {
				positions = append(positions, hi)
			}
		}
	case o.ShortestCexTraceUseSuffix:
		for i := n - 1; i >= 0; i-- {
			positions = append(positions, i)
		}
	default:
		for i := 0; i < n; i++ {
			positions = append(positions, i)
		}
	}
	//
	return positions
}
