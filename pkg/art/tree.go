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
package art

import (
	"fmt"
	"slices"

	"github.com/consensys/go-cegar/pkg/abstraction"
	"github.com/consensys/go-cegar/pkg/cfa"
	"github.com/consensys/go-cegar/pkg/util/collection/bit"
	"github.com/pkg/errors"
)

// NodeID identifies a node within a reachability tree.  Identifiers are
// allocated densely and are never reused, even after a node is removed.
type NodeID uint

// ErrNotEntailed is returned when attempting to cover a node by a target whose
// state does not entail the node's state.
var ErrNotEntailed = errors.New("covering target does not entail node")

// Node is an abstract state reached during exploration.
type Node struct {
	id       NodeID
	location *cfa.Location
	state    *abstraction.Formula
	// Call stack of pending function calls (innermost last)
	stack []*cfa.FunctionCallEdge
	// Edge leading from the parent into this node (nil for the root)
	edge     cfa.Edge
	parent   NodeID
	children []NodeID
	mark     uint
	// Covering relation
	covered   bool
	coveredBy NodeID
	alive     bool
}

// ID returns the identifier of this node.
func (p *Node) ID() NodeID {
	return p.id
}

// Location returns the program location of this node.
func (p *Node) Location() *cfa.Location {
	return p.location
}

// State returns the abstract state of this node.
func (p *Node) State() *abstraction.Formula {
	return p.state
}

// Stack returns the call stack of this node.
func (p *Node) Stack() []*cfa.FunctionCallEdge {
	return p.stack
}

// Edge returns the edge by which this node was reached from its parent, or
// nil for the root.
func (p *Node) Edge() cfa.Edge {
	return p.edge
}

func (p *Node) String() string {
	return fmt.Sprintf("#%d@%s", p.id, p.location)
}

// Tree is an abstract reachability tree held in an arena.  Nodes refer to
// each other by identifier, and removed nodes are retained (though no longer
// alive) so that identifiers held elsewhere remain valid.
type Tree struct {
	lattice *abstraction.Lattice
	nodes   []Node
	// Next mark to allocate
	mark uint
	// Set of all currently covered nodes
	covered bit.Set
}

// NewTree constructs a tree containing only a root node.
func NewTree(lattice *abstraction.Lattice, location *cfa.Location, state *abstraction.Formula) *Tree {
	tree := &Tree{lattice: lattice}
	tree.alloc(location, state, nil, nil, 0)
	//
	return tree
}

// Root returns the global root of this tree.
func (p *Tree) Root() NodeID {
	return 0
}

// Node returns the node with a given identifier.
func (p *Tree) Node(id NodeID) *Node {
	return &p.nodes[id]
}

// Size returns the number of nodes ever allocated in this tree.
func (p *Tree) Size() uint {
	return uint(len(p.nodes))
}

// Live returns the number of nodes which have not been removed.
func (p *Tree) Live() uint {
	count := uint(0)
	//
	for i := range p.nodes {
		if p.nodes[i].alive {
			count++
		}
	}
	//
	return count
}

// IsAlive checks whether a given node has not been removed.
func (p *Tree) IsAlive(id NodeID) bool {
	return p.nodes[id].alive
}

// AddChild creates a new child of a given node, reached by a given edge.
func (p *Tree) AddChild(parent NodeID, edge cfa.Edge, state *abstraction.Formula,
	stack []*cfa.FunctionCallEdge) NodeID {
	//
	if !p.nodes[parent].alive {
		panic(fmt.Sprintf("adding child to removed node #%d", parent))
	}
	//
	id := p.alloc(edge.Target(), state, stack, edge, parent)
	p.nodes[parent].children = append(p.nodes[parent].children, id)
	//
	return id
}

// Parents returns the parents of a given node, which is empty for the root.
func (p *Tree) Parents(id NodeID) []NodeID {
	if id == p.Root() {
		return nil
	}
	//
	return []NodeID{p.nodes[id].parent}
}

// Children returns the (live) children of a given node.
func (p *Tree) Children(id NodeID) []NodeID {
	return p.nodes[id].children
}

// Subtree returns all live nodes in the subtree rooted at a given node
// (including that node), in pre-order.
func (p *Tree) Subtree(id NodeID) []NodeID {
	var (
		nodes    []NodeID
		worklist = []NodeID{id}
	)
	//
	for len(worklist) > 0 {
		n := len(worklist) - 1
		next := worklist[n]
		worklist = worklist[:n]
		nodes = append(nodes, next)
		// Reversed so children are visited in order
		children := p.nodes[next].children
		for i := len(children) - 1; i >= 0; i-- {
			worklist = append(worklist, children[i])
		}
	}
	//
	return nodes
}

// Path returns the sequence of nodes from the root to a given node.
func (p *Tree) Path(id NodeID) []NodeID {
	path := []NodeID{id}
	//
	for id != p.Root() {
		id = p.nodes[id].parent
		path = append(path, id)
	}
	//
	slices.Reverse(path)
	//
	return path
}

// Mark returns the discovery mark of a given node.  Marks strictly increase in
// order of creation.
func (p *Tree) Mark(id NodeID) uint {
	return p.nodes[id].mark
}

// IsCovered checks whether a given node is covered.
func (p *Tree) IsCovered(id NodeID) bool {
	return p.nodes[id].covered
}

// CoveredBy returns the target covering a given node, if it is covered.
func (p *Tree) CoveredBy(id NodeID) (NodeID, bool) {
	n := &p.nodes[id]
	//
	return n.coveredBy, n.covered
}

// SetCovered marks a given node as covered by a given target.  This requires
// the node's state entails the target's state.
func (p *Tree) SetCovered(id NodeID, target NodeID) error {
	var (
		node = &p.nodes[id]
		tgt  = &p.nodes[target]
	)
	//
	if !p.lattice.Entails(node.state, tgt.state) {
		return errors.Wrapf(ErrNotEntailed, "covering %s by %s", node, tgt)
	}
	//
	node.covered, node.coveredBy = true, target
	p.covered.Insert(uint(id))
	//
	return nil
}

// Uncover clears the covering relation of a given node.
func (p *Tree) Uncover(id NodeID) {
	p.nodes[id].covered = false
	p.covered.Remove(uint(id))
}

// CoveredNodes returns all covered nodes, in increasing order of identifier.
func (p *Tree) CoveredNodes() []NodeID {
	var nodes []NodeID
	//
	p.covered.ForEach(func(i uint) {
		nodes = append(nodes, NodeID(i))
	})
	//
	return nodes
}

// Covering returns all nodes currently covered by a given target.
func (p *Tree) Covering(target NodeID) []NodeID {
	var nodes []NodeID
	//
	p.covered.ForEach(func(i uint) {
		if p.nodes[i].coveredBy == target {
			nodes = append(nodes, NodeID(i))
		}
	})
	//
	return nodes
}

// HasRemovedAncestor checks whether some ancestor of a node has been removed,
// meaning the node is no longer reachable from the root.
func (p *Tree) HasRemovedAncestor(id NodeID) bool {
	for id != p.Root() {
		id = p.nodes[id].parent
		if !p.nodes[id].alive {
			return true
		}
	}
	//
	return false
}

// Remove removes a single node from this tree, detaching it from its parent.
// Its children are not removed, though they become unreachable from the root.
// The root cannot be removed.
func (p *Tree) Remove(id NodeID) {
	node := &p.nodes[id]
	//
	if id == p.Root() {
		panic("cannot remove root")
	} else if !node.alive {
		return
	}
	//
	parent := &p.nodes[node.parent]
	parent.children = slices.DeleteFunc(parent.children, func(c NodeID) bool { return c == id })
	node.alive = false
	p.Uncover(id)
}

func (p *Tree) alloc(location *cfa.Location, state *abstraction.Formula, stack []*cfa.FunctionCallEdge,
	edge cfa.Edge, parent NodeID) NodeID {
	//
	id := NodeID(len(p.nodes))
	p.mark++
	p.nodes = append(p.nodes, Node{
		id:       id,
		location: location,
		state:    state,
		stack:    stack,
		edge:     edge,
		parent:   parent,
		mark:     p.mark,
		alive:    true,
	})
	//
	return id
}
