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
	"context"
	"slices"

	"github.com/consensys/go-cegar/pkg/abstraction"
	"github.com/consensys/go-cegar/pkg/art"
	"github.com/consensys/go-cegar/pkg/cfa"
	"github.com/consensys/go-cegar/pkg/predicate"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrMaxRefinements is returned when the configured bound on refinements is
// reached.
var ErrMaxRefinements = errors.New("maximum number of refinements reached")

// Algorithm explores the abstract state space of a program, refining the
// abstraction whenever a spurious path to an error location is found.
type Algorithm struct {
	options    Options
	program    *cfa.CFA
	computer   *abstraction.Computer
	domain     *abstraction.Domain
	analyzer   *Analyzer
	predicates *predicate.Map
	tree       *art.Tree
	refiner    *Refiner
	waitlist   []art.NodeID
	stats      Stats
}

// NewAlgorithm constructs an algorithm for exploring a given program, starting
// from the entry of its main function.
func NewAlgorithm(options Options, program *cfa.CFA, computer *abstraction.Computer, analyzer *Analyzer) *Algorithm {
	var (
		main       = program.Main()
		predicates = predicate.NewMap()
		domain     = abstraction.NewDomain(computer.Lattice())
		tree       = art.NewTree(computer.Lattice(), main.Entry, domain.Top())
	)
	//
	return &Algorithm{
		options:    options,
		program:    program,
		computer:   computer,
		domain:     domain,
		analyzer:   analyzer,
		predicates: predicates,
		tree:       tree,
		refiner:    NewRefiner(options, tree, predicates),
		waitlist:   []art.NodeID{tree.Root()},
	}
}

// Tree returns the reachability tree being explored.
func (p *Algorithm) Tree() *art.Tree {
	return p.tree
}

// Predicates returns the predicates currently tracked at each location.
func (p *Algorithm) Predicates() *predicate.Map {
	return p.predicates
}

// Stats returns statistics about the work done so far.
func (p *Algorithm) Stats() Stats {
	stats := p.stats
	stats.Analyzer = p.analyzer.Stats()
	stats.Refiner = p.refiner.Stats()
	stats.Computer = p.computer.Stats()
	stats.Caches = p.computer.CacheStats()
	stats.Nodes = p.tree.Size()
	stats.LiveNodes = p.tree.Live()
	stats.Predicates = p.predicates.Size()
	//
	return stats
}

// Run explores the program until either an error location is reached by a
// real counterexample, or no further states remain to be explored.
func (p *Algorithm) Run(ctx context.Context) *Outcome {
	for len(p.waitlist) > 0 {
		if err := ctx.Err(); err != nil {
			return abort(err)
		}
		//
		node := p.next()
		//
		if !p.tree.IsAlive(node) || p.tree.IsCovered(node) || p.tree.HasRemovedAncestor(node) {
			continue
		}
		//
		p.stats.Iterations++
		//
		if p.tree.Node(node).Location().IsError() {
			if outcome := p.refine(node); outcome != nil {
				return outcome
			}
		} else if covered, err := p.cover(node); err != nil {
			return abort(err)
		} else if !covered {
			if err := p.expand(node); err != nil {
				return abort(err)
			}
		}
	}
	//
	return &Outcome{Verdict: Safe, Severity: Success}
}

// next removes the next node from the waitlist.
func (p *Algorithm) next() art.NodeID {
	var node art.NodeID
	//
	if p.options.BFS {
		node, p.waitlist = p.waitlist[0], p.waitlist[1:]
	} else {
		n := len(p.waitlist) - 1
		node, p.waitlist = p.waitlist[n], p.waitlist[:n]
	}
	//
	return node
}

// refine analyses the path to a node at an error location.  The outcome is
// returned if the analysis terminates, otherwise nil.
func (p *Algorithm) refine(node art.NodeID) *Outcome {
	path := p.pathTo(node)
	p.stats.ErrorPaths++
	//
	info, err := p.analyzer.Analyze(path)
	if err != nil {
		return abort(err)
	} else if !info.Spurious {
		return &Outcome{Verdict: Unsafe, Severity: Success, Path: path, Witness: info.Witness}
	} else if p.options.MaxRefinements > 0 && p.stats.Refinements >= p.options.MaxRefinements {
		return abort(ErrMaxRefinements)
	}
	//
	outcome, err := p.refiner.Refine(path, info)
	if err != nil {
		return abort(err)
	}
	//
	p.stats.Refinements++
	log.Debugf("refinement %d restarts from #%d\n%s", p.stats.Refinements, outcome.Root, p.predicates)
	p.apply(outcome)
	//
	return nil
}

// apply updates the tree according to the outcome of a refinement.
func (p *Algorithm) apply(outcome *RefinementOutcome) {
	var waitlist = slices.Clone(outcome.Waitlist)
	//
	for _, n := range outcome.Unreach {
		// Nodes covered by removed nodes are no longer covered.
		for _, m := range p.tree.Covering(n) {
			p.tree.Uncover(m)
			waitlist = append(waitlist, m)
		}
		//
		p.tree.Remove(n)
	}
	//
	for _, n := range waitlist {
		if !p.tree.IsAlive(n) {
			continue
		} else if p.tree.HasRemovedAncestor(n) {
			// Unreachable, hence nothing to recompute
			p.tree.Remove(n)
		} else {
			p.waitlist = append(p.waitlist, n)
		}
	}
}

// cover checks whether a node is covered by some other node at the same
// location and with the same call stack, and marks it as such.  Nodes already
// expanded are never covered.
func (p *Algorithm) cover(node art.NodeID) (bool, error) {
	n := p.tree.Node(node)
	//
	if len(p.tree.Children(node)) > 0 {
		return false, nil
	}
	//
	for id := range p.tree.Size() {
		other := art.NodeID(id)
		m := p.tree.Node(other)
		//
		if other == node || m.Location() != n.Location() || !slices.Equal(m.Stack(), n.Stack()) {
			continue
		} else if !p.tree.IsAlive(other) || p.tree.IsCovered(other) || p.tree.HasRemovedAncestor(other) {
			continue
		} else if p.domain.LessOrEqual(n.State(), m.State()) {
			if err := p.tree.SetCovered(node, other); err != nil {
				return false, err
			}
			//
			p.stats.Covered++
			//
			return true, nil
		}
	}
	//
	return false, nil
}

// expand computes the successors of a node along each edge leaving its
// location.  Edges for which a successor already exists are skipped, as are
// returns to a function other than that on top of the call stack.
func (p *Algorithm) expand(node art.NodeID) error {
	var (
		n     = p.tree.Node(node)
		state = n.State()
		stack = n.Stack()
		edges = n.Location().Leaving()
		done  = make(map[cfa.Edge]bool)
	)
	//
	for _, child := range p.tree.Children(node) {
		done[p.tree.Node(child).Edge()] = true
	}
	//
	p.stats.Expanded++
	//
	for _, edge := range edges {
		if done[edge] {
			continue
		}
		//
		next, ok := successorStack(stack, edge)
		if !ok {
			continue
		}
		//
		post, err := p.computer.Post(state, edge, p.predicates.RelevantPredicates(edge.Target()))
		if err != nil {
			return err
		} else if p.domain.IsBottom(post) {
			continue
		}
		//
		child := p.tree.AddChild(node, edge, post, next)
		p.waitlist = append(p.waitlist, child)
	}
	//
	return nil
}

// pathTo constructs the path from the root of the tree to a given node.
func (p *Algorithm) pathTo(node art.NodeID) []PathElement {
	var (
		nodes = p.tree.Path(node)
		path  = make([]PathElement, len(nodes))
	)
	//
	for i, n := range nodes {
		path[i].Node = n
		//
		if i+1 < len(nodes) {
			path[i].Edge = p.tree.Node(nodes[i+1]).Edge()
		}
	}
	//
	return path
}

// successorStack determines the call stack after traversing an edge.
func successorStack(stack []*cfa.FunctionCallEdge, edge cfa.Edge) ([]*cfa.FunctionCallEdge, bool) {
	switch e := edge.(type) {
	case *cfa.FunctionCallEdge:
		return append(slices.Clone(stack), e), true
	case *cfa.FunctionReturnEdge:
		n := len(stack)
		//
		if n == 0 || stack[n-1] != e.Call {
			return nil, false
		}
		//
		return stack[:n-1], true
	default:
		return stack, true
	}
}
