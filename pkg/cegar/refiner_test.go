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
	"testing"

	"github.com/consensys/go-cegar/pkg/art"
	"github.com/consensys/go-cegar/pkg/cfa"
	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/consensys/go-cegar/pkg/predicate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Refining from an interior node prunes its subtree, except for nodes covered
// by targets discovered before the end of the path, and uncovers all nodes
// covered after the root.
func Test_Refine_Prune_01(t *testing.T) {
	env := newPruneEnv(t)
	refiner := NewRefiner(DefaultOptions(), env.tree, predicate.NewMap())
	//
	outcome, err := refiner.Refine(env.path, env.info)
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.False(t, outcome.ErrorFound)
	assert.Equal(t, env.A, outcome.Root)
	assert.Equal(t, []art.NodeID{env.B, env.T, env.Z, env.W, env.U}, outcome.Unreach)
	assert.Equal(t, []art.NodeID{env.A, env.X, env.W, env.U}, outcome.Waitlist)
	assert.Equal(t, []art.NodeID{env.Y}, env.tree.CoveredNodes())
}

// Breadth-first exploration always refines from the root of the tree.
func Test_Refine_Prune_02(t *testing.T) {
	env := newPruneEnv(t)
	options := DefaultOptions()
	options.BFS = true
	refiner := NewRefiner(options, env.tree, predicate.NewMap())
	//
	outcome, err := refiner.Refine(env.path, env.info)
	require.NoError(t, err)
	assert.Equal(t, env.tree.Root(), outcome.Root)
	assert.Equal(t, []art.NodeID{env.A, env.B, env.X, env.T, env.Z, env.W, env.V}, outcome.Unreach)
	assert.Equal(t, []art.NodeID{env.tree.Root(), env.W}, outcome.Waitlist)
	assert.Equal(t, []art.NodeID{env.Y, env.U}, env.tree.CoveredNodes())
}

// Repeatedly refining the same path without new predicates eventually fails.
func Test_Refine_NoProgress_01(t *testing.T) {
	env := newPruneEnv(t)
	refiner := NewRefiner(DefaultOptions(), env.tree, predicate.NewMap())
	// New predicates
	outcome, err := refiner.Refine(env.path, env.info)
	require.NoError(t, err)
	assert.Equal(t, env.A, outcome.Root)
	// Seen once, so restart from the root
	outcome, err = refiner.Refine(env.path, env.info)
	require.NoError(t, err)
	assert.Equal(t, env.tree.Root(), outcome.Root)
	// Seen twice, so fall back to the first contributing node
	outcome, err = refiner.Refine(env.path, env.info)
	require.NoError(t, err)
	assert.Equal(t, env.A, outcome.Root)
	// No progress
	_, err = refiner.Refine(env.path, env.info)
	assert.ErrorIs(t, err, ErrNoProgress)
	assert.Equal(t, Fatal, SeverityOf(err))
}

func Test_Refine_Real_01(t *testing.T) {
	env := newPruneEnv(t)
	refiner := NewRefiner(DefaultOptions(), env.tree, predicate.NewMap())
	//
	outcome, err := refiner.Refine(env.path, &TraceInfo{Spurious: false})
	require.NoError(t, err)
	assert.True(t, outcome.ErrorFound)
	assert.Empty(t, outcome.Unreach)
	assert.Len(t, env.tree.CoveredNodes(), 3)
}

// ===================================================================
// Test Helpers
// ===================================================================

type pruneEnv struct {
	tree *art.Tree
	// R -> A -> B -> T (path)
	//             -> Y (covered by X)
	//        -> Z -> W (covered by V)
	//   -> X -> U (covered by R)
	//   -> V
	A, B, T, X, Y, Z, W, V, U art.NodeID
	path                      []PathElement
	info                      *TraceInfo
}

func newPruneEnv(t *testing.T) *pruneEnv {
	var (
		lattice = newLattice(t)
		program = cfa.NewCFA()
		env     pruneEnv
		label   uint
	)
	//
	fn, err := program.AddFunction("main", nil, "")
	require.NoError(t, err)
	//
	env.tree = art.NewTree(lattice, program.Location(fn, 0), lattice.Top())
	// Each node has its own location
	grow := func(parent art.NodeID) art.NodeID {
		label++
		source := env.tree.Node(parent).Location()
		edge := cfa.NewBlankEdge(source, program.Location(fn, label), "")
		//
		return env.tree.AddChild(parent, edge, lattice.Top(), nil)
	}
	//
	R := env.tree.Root()
	env.A = grow(R)
	env.B = grow(env.A)
	env.X = grow(R)
	env.T = grow(env.B)
	env.Y = grow(env.B)
	env.Z = grow(env.A)
	env.W = grow(env.Z)
	env.V = grow(R)
	env.U = grow(env.X)
	//
	require.NoError(t, env.tree.SetCovered(env.Y, env.X))
	require.NoError(t, env.tree.SetCovered(env.W, env.V))
	require.NoError(t, env.tree.SetCovered(env.U, R))
	//
	env.path = []PathElement{
		{R, env.tree.Node(env.A).Edge()},
		{env.A, env.tree.Node(env.B).Edge()},
		{env.B, env.tree.Node(env.T).Edge()},
		{env.T, nil},
	}
	//
	pred := predicate.NewManager().MakePredicate(formula.Gt(formula.V("x"), formula.Int(0)))
	env.info = &TraceInfo{Spurious: true, Predicates: map[art.NodeID][]*predicate.Predicate{env.A: {pred}}}
	//
	return &env
}
