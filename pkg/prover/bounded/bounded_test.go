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
package bounded

import (
	"testing"

	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/consensys/go-cegar/pkg/prover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var smallDomain = Domain{-4, 4}

func Test_Prover_01(t *testing.T) {
	checkUnsat(t, "(and (> x 5) (< x 0))", true)
	checkUnsat(t, "(and (> x 5) (< x 7))", false)
	checkUnsat(t, "(and (= x@2 (- x@1 1)) (= x@1 1) (> x@2 0))", true)
	checkUnsat(t, "(and (= x@2 (* x@1 2)) (= x@2 7))", true)
	checkUnsat(t, "(or p (not p))", false)
	checkUnsat(t, "(iff p (not p))", true)
	checkUnsat(t, "(and (= (/ x 0) 0) (= (% x 0) x))", false)
}

func Test_Prover_Domain_01(t *testing.T) {
	// Values beyond the domain are not excluded
	checkUnsat(t, "(> x 16)", false)
	checkUnsat(t, "(= x 16)", false)
	checkUnsat(t, "(and (< x 16) (> x 15))", true)
}

func Test_Prover_Domain_02(t *testing.T) {
	p := NewProver(DefaultDomain)
	// Constants beyond the domain cannot be decided
	for _, input := range []string{"(= x 20)", "(> (+ x 17) 0)", "(< x -17)"} {
		_, err := p.IsUnsat(parse(t, input))
		assert.ErrorIs(t, err, prover.ErrUnknown, input)
	}
}

func Test_Interpolant_Bounds_01(t *testing.T) {
	p := NewInterpolatingProver(DefaultDomain)
	// Satisfiable over the integers with x@2 = 17
	addFormula(t, p, "(= x@1 16)")
	addFormula(t, p, "(= x@2 (+ x@1 1))")
	//
	_, err := p.IsUnsat()
	assert.ErrorIs(t, err, prover.ErrUnknown)
}

func Test_Interpolant_Bounds_02(t *testing.T) {
	// Unsatisfiable regardless of the bounds
	checkItpUnsat(t, "(= x@1 3)", "(= x@2 (+ x@1 1))", "(< x@2 0)")
	checkItpUnsat(t, "(> x@1 10)", "(< x@1 5)")
	checkItpUnsat(t, "(> x@1 5)", "(< x@2 0)", "(= x@2 x@1)")
}

func Test_Interpolant_Bounds_03(t *testing.T) {
	p := NewInterpolatingProver(DefaultDomain)
	// Satisfiable over the integers with x@1 = 17
	addFormula(t, p, "(> x@1 16)")
	//
	_, err := p.IsUnsat()
	assert.ErrorIs(t, err, prover.ErrUnknown)
}

func Test_Interval_01(t *testing.T) {
	var (
		d    = Domain{-4, 4}
		top  = d.saturate(4)
		bot  = d.saturate(-4)
		mid  = d.saturate(1)
		plus = applyInterval(formula.ADD, top, point(1))
	)
	//
	checkCompare(t, formula.GT, top, point(3), true, true)
	checkCompare(t, formula.LT, top, point(3), false, true)
	checkCompare(t, formula.EQ, top, point(4), false, false)
	checkCompare(t, formula.GT, top, point(4), false, false)
	checkCompare(t, formula.NEQ, bot, mid, true, true)
	checkCompare(t, formula.EQ, mid, point(1), true, true)
	checkCompare(t, formula.GTEQ, plus, point(5), true, true)
	checkCompare(t, formula.LTEQ, applyInterval(formula.MUL, top, point(2)), point(0), false, true)
	checkCompare(t, formula.GT, applyInterval(formula.MUL, top, point(-1)), point(0), false, true)
	checkCompare(t, formula.LTEQ, applyInterval(formula.MUL, top, mid), point(0), false, true)
	checkCompare(t, formula.EQ, applyInterval(formula.MUL, top, bot), point(0), false, false)
	checkCompare(t, formula.EQ, applyInterval(formula.SUB, mid, bot), point(0), false, true)
}

func Test_Prover_Functions_01(t *testing.T) {
	checkUnsat(t, "(and (= i j) (= (a i) 1) (= (a j) 2))", true)
	checkUnsat(t, "(and (!= i j) (= (a i) 1) (= (a j) 2))", false)
	checkUnsat(t, "(and (= i j) (= (a@1 i) 1) (= (a@2 j) 2))", false)
}

func Test_Prover_PushPop_01(t *testing.T) {
	p := NewProver(DefaultDomain)
	require.NoError(t, p.Init(prover.ModeSat))
	//
	require.NoError(t, p.Push(parse(t, "(> x 0)")))
	checkIsUnsat(t, p, "(< x 0)", true)
	//
	err := prover.Scoped(p, parse(t, "(< y x)"), func() error {
		checkIsUnsat(t, p, "(and (> y 5) (< x 3))", true)
		return nil
	})
	require.NoError(t, err)
	checkIsUnsat(t, p, "(and (> y 5) (< x 3))", false)
	//
	require.NoError(t, p.Pop())
	checkIsUnsat(t, p, "(< x 0)", false)
	assert.ErrorIs(t, p.Pop(), ErrEmptyStack)
}

func Test_Prover_Model_01(t *testing.T) {
	p := NewProver(DefaultDomain)
	unsat, err := p.IsUnsat(parse(t, "(and (= x 3) (= y (+ x 2)))"))
	require.NoError(t, err)
	require.False(t, unsat)
	//
	m, err := p.Model()
	require.NoError(t, err)
	assert.Equal(t, int64(3), m["x"])
	assert.Equal(t, int64(5), m["y"])
}

func Test_Prover_AllSat_01(t *testing.T) {
	p := NewProver(DefaultDomain)
	f := parse(t, "(and (iff P0 (> x 0)) (iff P1 (> x 5)))")
	cubes := checkAllSat(t, p, f, []string{"P0", "P1"}, 3)
	// The assignment P1 & !P0 is impossible
	assert.NotContains(t, cubes, "(and (not P0) P1)")
	assert.Contains(t, cubes, "(and P0 P1)")
}

func Test_Prover_AllSat_02(t *testing.T) {
	p := NewProver(DefaultDomain)
	f := parse(t, "(and (iff P0 (> x 0)) (iff P1 (< y 0)))")
	checkAllSat(t, p, f, []string{"P0", "P1"}, prover.AllSatisfying)
	// Blocking clauses are retired afterwards
	checkAllSat(t, p, f, []string{"P0"}, prover.AllSatisfying)
	checkAllSat(t, p, parse(t, "(and (> x 0) (< x 0))"), []string{"P0"}, 0)
}

func Test_Prover_AllSat_03(t *testing.T) {
	// Cross-check enumerated models against brute force evaluation.
	var (
		p     = NewProver(smallDomain)
		preds = []formula.Formula{parse(t, "(> x@2 0)"), parse(t, "(= x@2 y@1)"), parse(t, "(< y@1 -2)")}
		trans = parse(t, "(and (= x@2 (- x@1 1)) (> x@1 -2))")
		defs  = []formula.Formula{trans}
		props []formula.Formula
	)
	//
	for i, pred := range preds {
		prop := formula.P(string(rune('A' + i)))
		props = append(props, prop)
		defs = append(defs, formula.MkIff(prop, pred))
	}
	// Compute expected models by brute force
	expected := make(map[string]bool)
	env := formula.NewAssignment()
	//
	for x1 := smallDomain.Min; x1 <= smallDomain.Max; x1++ {
		for y1 := smallDomain.Min; y1 <= smallDomain.Max; y1++ {
			x2 := x1 - 1
			if !smallDomain.Contains(x2) || x1 <= -2 {
				continue
			}
			//
			env.Set(formula.VarAt("x", 1), x1)
			env.Set(formula.VarAt("x", 2), x2)
			env.Set(formula.VarAt("y", 1), y1)
			//
			cube := make([]formula.Formula, len(preds))
			for i, pred := range preds {
				if formula.Evaluate(pred, env) {
					cube[i] = props[i]
				} else {
					cube[i] = formula.MkNot(props[i])
				}
			}
			//
			expected[formula.MkAnd(cube...).String()] = true
		}
	}
	//
	actual := make(map[string]bool)
	n, err := p.AllSat(formula.MkAnd(defs...), props, func(cube []formula.Formula) error {
		actual[formula.MkAnd(cube...).String()] = true
		return nil
	})
	//
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
	//
	if n != prover.AllSatisfying {
		assert.Equal(t, len(expected), n)
	}
}

func Test_Interpolant_01(t *testing.T) {
	p := NewInterpolatingProver(DefaultDomain)
	require.NoError(t, p.Init())
	//
	g0 := addFormula(t, p, "(> x@1 5)")
	addFormula(t, p, "(< x@1 0)")
	//
	unsat, err := p.IsUnsat()
	require.NoError(t, err)
	require.True(t, unsat)
	//
	itp, err := p.Interpolant([]prover.Group{g0})
	require.NoError(t, err)
	assert.Equal(t, "(> x@1 5)", itp.String())
}

func Test_Interpolant_02(t *testing.T) {
	p := NewInterpolatingProver(DefaultDomain)
	//
	g0 := addFormula(t, p, "(= x@1 0)")
	g1 := addFormula(t, p, "(= x@2 (+ x@1 1))")
	addFormula(t, p, "(= y@1 3)")
	addFormula(t, p, "(< x@2 0)")
	//
	unsat, err := p.IsUnsat()
	require.NoError(t, err)
	require.True(t, unsat)
	//
	for _, groups := range [][]prover.Group{{g0}, {g0, g1}} {
		itp, err := p.Interpolant(groups)
		require.NoError(t, err)
		checkInterpolant(t, p, groups, itp)
	}
}

func Test_Interpolant_03(t *testing.T) {
	p := NewInterpolatingProver(DefaultDomain)
	// A is inconsistent by itself
	g0 := addFormula(t, p, "(and (> x 1) (< x 0))")
	addFormula(t, p, "(= y 1)")
	//
	itp, err := p.Interpolant([]prover.Group{g0})
	require.NoError(t, err)
	assert.True(t, formula.IsFalse(itp))
	// B is inconsistent by itself
	itp, err = p.Interpolant([]prover.Group{1})
	require.NoError(t, err)
	assert.True(t, formula.IsTrue(itp))
}

func Test_Interpolant_04(t *testing.T) {
	p := NewInterpolatingProver(smallDomain)
	// Requires a disjunctive interpolant over x
	ga := addFormula(t, p, "(or (= x 1) (= x 3))")
	addFormula(t, p, "(= (% x 2) 0)")
	//
	itp, err := p.Interpolant([]prover.Group{ga})
	require.NoError(t, err)
	checkInterpolant(t, p, []prover.Group{ga}, itp)
}

// ===================================================================
// Test Helpers
// ===================================================================

func parse(t *testing.T, input string) formula.Formula {
	f, err := formula.ParseFormula(input)
	require.NoError(t, err)
	//
	return f
}

func checkUnsat(t *testing.T, input string, expected bool) {
	p := NewProver(DefaultDomain)
	checkIsUnsat(t, p, input, expected)
}

func checkIsUnsat(t *testing.T, p *Prover, input string, expected bool) {
	unsat, err := p.IsUnsat(parse(t, input))
	require.NoError(t, err)
	assert.Equal(t, expected, unsat, "unexpected result for %s", input)
}

func checkAllSat(t *testing.T, p *Prover, f formula.Formula, names []string, expected int) []string {
	var (
		important []formula.Formula
		cubes     []string
	)
	//
	for _, name := range names {
		important = append(important, formula.P(name))
	}
	//
	n, err := p.AllSat(f, important, func(cube []formula.Formula) error {
		cubes = append(cubes, formula.MkAnd(cube...).String())
		return nil
	})
	//
	require.NoError(t, err)
	assert.Equal(t, expected, n)
	//
	return cubes
}

func checkItpUnsat(t *testing.T, inputs ...string) {
	p := NewInterpolatingProver(DefaultDomain)
	//
	for _, input := range inputs {
		addFormula(t, p, input)
	}
	//
	unsat, err := p.IsUnsat()
	require.NoError(t, err)
	assert.True(t, unsat, "unexpected result for %v", inputs)
}

func checkCompare(t *testing.T, op formula.CmpOp, a interval, b interval, expected bool, decided bool) {
	actual, ok := compareIntervals(op, a, b)
	assert.Equal(t, decided, ok, "%v %v %v", a, op, b)
	//
	if decided {
		assert.Equal(t, expected, actual, "%v %v %v", a, op, b)
	}
}

func addFormula(t *testing.T, p *InterpolatingProver, input string) prover.Group {
	g, err := p.AddFormula(parse(t, input))
	require.NoError(t, err)
	//
	return g
}

// checkInterpolant checks that an interpolant is implied by group A, and is
// inconsistent with group B.
func checkInterpolant(t *testing.T, p *InterpolatingProver, groupA []prover.Group, itp formula.Formula) {
	var fa, fb []formula.Formula
	//
	for i, f := range p.groups {
		if containsGroup(groupA, prover.Group(i)) {
			fa = append(fa, f)
		} else {
			fb = append(fb, f)
		}
	}
	//
	checkUnsat(t, formula.MkAnd(append(fa, formula.MkNot(itp))...).String(), true)
	checkUnsat(t, formula.MkAnd(append(fb, itp)...).String(), true)
}

func containsGroup(groups []prover.Group, g prover.Group) bool {
	for _, h := range groups {
		if h == g {
			return true
		}
	}
	//
	return false
}
