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
	"fmt"
	"strings"

	"github.com/consensys/go-cegar/pkg/art"
	"github.com/consensys/go-cegar/pkg/cfa"
	"github.com/consensys/go-cegar/pkg/predicate"
	"github.com/consensys/go-cegar/pkg/util/collection/bit"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ReachabilityTree captures the operations on a reachability tree needed for
// refinement.
type ReachabilityTree interface {
	Root() art.NodeID
	Subtree(node art.NodeID) []art.NodeID
	Parents(node art.NodeID) []art.NodeID
	Children(node art.NodeID) []art.NodeID
	IsCovered(node art.NodeID) bool
	CoveredBy(node art.NodeID) (art.NodeID, bool)
	SetCovered(node art.NodeID, target art.NodeID) error
	Uncover(node art.NodeID)
	Mark(node art.NodeID) uint
	CoveredNodes() []art.NodeID
}

// PredicateMap captures the operations on the predicates tracked at each
// location needed for refinement.
type PredicateMap interface {
	RelevantPredicates(loc *cfa.Location) []*predicate.Predicate
	Update(loc *cfa.Location, preds []*predicate.Predicate) bool
}

var _ ReachabilityTree = (*art.Tree)(nil)
var _ PredicateMap = (*predicate.Map)(nil)

// RefinerStats records the work done by a refiner.
type RefinerStats struct {
	Refinements uint
	// Refinements restarting from the root of the tree
	Restarts uint
	// Refinements which changed no location's predicates
	Fallbacks uint
	Pruned    uint
	Uncovered uint
}

// Refiner updates the predicates tracked at each location following a
// spurious counterexample, and determines which parts of the reachability
// tree must be recomputed as a result.
type Refiner struct {
	options    Options
	tree       ReachabilityTree
	predicates PredicateMap
	// Number of refinements of each path which changed no predicates.
	signatures map[string]uint
	stats      RefinerStats
}

// NewRefiner constructs a refiner for a given tree and predicate map.
func NewRefiner(options Options, tree ReachabilityTree, predicates PredicateMap) *Refiner {
	return &Refiner{options, tree, predicates, make(map[string]uint), RefinerStats{}}
}

// Stats returns statistics about the work done by this refiner.
func (r *Refiner) Stats() RefinerStats {
	return r.stats
}

// Refine updates the predicate map using the result of analysing a given
// path, and prunes the tree accordingly.  A real counterexample leaves the
// tree unchanged.
func (r *Refiner) Refine(path []PathElement, info *TraceInfo) (*RefinementOutcome, error) {
	if !info.Spurious {
		return &RefinementOutcome{ErrorFound: true}, nil
	}
	//
	r.stats.Refinements++
	//
	root, err := r.selectRoot(path, info)
	if err != nil {
		return nil, err
	}
	//
	return r.prune(path, root), nil
}

// selectRoot updates the predicate map, and determines the node from which
// exploration should restart.  This is the first node whose outgoing edge
// leads to a location whose predicates changed.
func (r *Refiner) selectRoot(path []PathElement, info *TraceInfo) (art.NodeID, error) {
	var (
		root, contributor       art.NodeID
		hasRoot, hasContributor bool
	)
	//
	for _, elem := range path {
		preds := info.Predicates[elem.Node]
		//
		if elem.Edge == nil || len(preds) == 0 {
			continue
		} else if !hasContributor {
			contributor, hasContributor = elem.Node, true
		}
		//
		if r.predicates.Update(elem.Edge.Target(), preds) && !hasRoot {
			root, hasRoot = elem.Node, true
		}
	}
	//
	if !hasRoot {
		sig := signature(path)
		count := r.signatures[sig]
		r.signatures[sig] = count + 1
		r.stats.Fallbacks++
		//
		switch {
		case count == 0:
			root = r.tree.Root()
		case count == 1 && hasContributor:
			root = contributor
		case count == 1:
			root = r.tree.Root()
		default:
			return 0, errors.Wrapf(ErrNoProgress, "path %s", sig)
		}
		//
		log.Debugf("no new predicates along path %s (seen %d times)", sig, count)
	}
	//
	if r.options.BFS {
		root = r.tree.Root()
	}
	//
	if root == r.tree.Root() {
		r.stats.Restarts++
	}
	//
	return root, nil
}

// prune determines which nodes must be removed from the tree, and which
// re-expanded, when restarting from a given root.  Covered nodes are
// uncovered as a side effect.
func (r *Refiner) prune(path []PathElement, root art.NodeID) *RefinementOutcome {
	var (
		unreach, waitlist, subtree bit.Set
		terminal                   = r.tree.Mark(path[len(path)-1].Node)
	)
	//
	waitlist.Insert(uint(root))
	//
	for _, n := range r.tree.Subtree(root) {
		subtree.Insert(uint(n))
		//
		if n == root {
			continue
		} else if target, ok := r.tree.CoveredBy(n); ok {
			// Covered by a node discovered before the end of the path
			if r.tree.Mark(target) < terminal {
				continue
			}
			//
			r.tree.Uncover(n)
			waitlist.Insert(uint(n))
			r.stats.Uncovered++
		}
		//
		unreach.Insert(uint(n))
	}
	// Covering may have relied upon parts of the tree now being discarded.
	if root != r.tree.Root() {
		for _, n := range r.tree.CoveredNodes() {
			if !subtree.Contains(uint(n)) && r.tree.Mark(n) > r.tree.Mark(root) {
				r.tree.Uncover(n)
				unreach.Insert(uint(n))
				waitlist.Insert(uint(n))
				//
				for _, p := range r.tree.Parents(n) {
					waitlist.Insert(uint(p))
				}
				//
				r.stats.Uncovered++
			}
		}
	}
	//
	r.stats.Pruned += unreach.Count()
	//
	return &RefinementOutcome{
		Changed:  true,
		Unreach:  toNodes(unreach),
		Waitlist: toNodes(waitlist),
		Root:     root,
	}
}

// signature identifies a path by the sequence of locations it visits.
func signature(path []PathElement) string {
	var builder strings.Builder
	//
	for i, elem := range path {
		if elem.Edge != nil {
			if i != 0 {
				builder.WriteString(",")
			}
			//
			builder.WriteString(fmt.Sprintf("%d", elem.Edge.Target().ID))
		}
	}
	//
	return builder.String()
}

func toNodes(set bit.Set) []art.NodeID {
	var (
		elements = set.Elements()
		nodes    = make([]art.NodeID, len(elements))
	)
	//
	for i, n := range elements {
		nodes[i] = art.NodeID(n)
	}
	//
	return nodes
}
