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
	"testing"

	"github.com/consensys/go-cegar/pkg/abstraction"
	"github.com/consensys/go-cegar/pkg/cfa"
	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/consensys/go-cegar/pkg/predicate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Tree_01(t *testing.T) {
	tree, e := newTestTree(t)
	// root -> a -> c
	//      -> b
	a := tree.AddChild(tree.Root(), e.edges[0], e.top, nil)
	b := tree.AddChild(tree.Root(), e.edges[1], e.top, nil)
	c := tree.AddChild(a, e.edges[2], e.top, nil)
	//
	assert.Equal(t, []NodeID{tree.Root(), a, c, b}, tree.Subtree(tree.Root()))
	assert.Equal(t, []NodeID{a, c}, tree.Subtree(a))
	assert.Equal(t, []NodeID{tree.Root(), a, c}, tree.Path(c))
	assert.Equal(t, []NodeID{a}, tree.Parents(c))
	assert.Empty(t, tree.Parents(tree.Root()))
	assert.Equal(t, []NodeID{a, b}, tree.Children(tree.Root()))
	// Marks strictly increase
	assert.Less(t, tree.Mark(tree.Root()), tree.Mark(a))
	assert.Less(t, tree.Mark(a), tree.Mark(b))
	assert.Less(t, tree.Mark(b), tree.Mark(c))
	//
	assert.Same(t, e.edges[2], tree.Node(c).Edge())
	assert.Equal(t, e.edges[2].Target(), tree.Node(c).Location())
}

func Test_Tree_Covering_01(t *testing.T) {
	tree, e := newTestTree(t)
	a := tree.AddChild(tree.Root(), e.edges[0], e.p, nil)
	b := tree.AddChild(tree.Root(), e.edges[1], e.top, nil)
	// Cannot cover top by p
	err := tree.SetCovered(b, a)
	assert.ErrorIs(t, err, ErrNotEntailed)
	assert.False(t, tree.IsCovered(b))
	// Can cover p by top
	require.NoError(t, tree.SetCovered(a, b))
	target, ok := tree.CoveredBy(a)
	assert.True(t, ok)
	assert.Equal(t, b, target)
	assert.Equal(t, []NodeID{a}, tree.CoveredNodes())
	assert.Equal(t, []NodeID{a}, tree.Covering(b))
	//
	tree.Uncover(a)
	assert.False(t, tree.IsCovered(a))
	assert.Empty(t, tree.CoveredNodes())
}

func Test_Tree_Remove_01(t *testing.T) {
	tree, e := newTestTree(t)
	a := tree.AddChild(tree.Root(), e.edges[0], e.p, nil)
	b := tree.AddChild(a, e.edges[1], e.p, nil)
	c := tree.AddChild(tree.Root(), e.edges[2], e.top, nil)
	require.NoError(t, tree.SetCovered(b, c))
	//
	tree.Remove(a)
	assert.False(t, tree.IsAlive(a))
	assert.True(t, tree.IsAlive(b))
	assert.True(t, tree.HasRemovedAncestor(b))
	assert.False(t, tree.HasRemovedAncestor(c))
	assert.Equal(t, []NodeID{c}, tree.Children(tree.Root()))
	assert.Equal(t, uint(3), tree.Live())
	assert.Equal(t, uint(4), tree.Size())
	// Removed nodes are uncovered
	tree.Remove(b)
	assert.Empty(t, tree.CoveredNodes())
}

// ===================================================================
// Test Helpers
// ===================================================================

type testEnv struct {
	edges []cfa.Edge
	top   *abstraction.Formula
	p     *abstraction.Formula
}

func newTestTree(t *testing.T) (*Tree, testEnv) {
	lattice, err := abstraction.NewLattice(16, 1000, 1000)
	require.NoError(t, err)
	//
	c := cfa.NewCFA()
	fn, err := c.AddFunction("main", nil, "")
	require.NoError(t, err)
	//
	var (
		l0    = c.Location(fn, 0)
		edges = []cfa.Edge{
			cfa.NewBlankEdge(l0, c.Location(fn, 1), ""),
			cfa.NewBlankEdge(l0, c.Location(fn, 2), ""),
			cfa.NewBlankEdge(c.Location(fn, 1), c.Location(fn, 3), ""),
		}
		pred = predicate.NewManager().MakePredicate(formula.Gt(formula.V("x"), formula.Int(0)))
	)
	//
	p, err := lattice.Var(pred)
	require.NoError(t, err)
	//
	return NewTree(lattice, l0, lattice.Top()), testEnv{edges, lattice.Top(), p}
}
