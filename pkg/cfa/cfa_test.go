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
package cfa

import (
	"testing"

	"github.com/consensys/go-cegar/pkg/sexp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleProgram = `
; decrement until zero
(function main
  (entry 0) (exit 9) (error 5)
  (edge 0 1 (declare x))
  (edge 1 2 (assign x 10))
  (edge 2 3 (assume (> x 0)))
  (edge 3 2 (assign x (- x 1)))
  (edge 2 4 (assume-not (> x 0)))
  (edge 4 5 (assume (!= x 0)))
  (edge 4 6 (call inc (x) y))
  (edge 6 7 (assign (a y) 1))
  (edge 7 8 (havoc x))
  (edge 8 9 (skip)))

(function inc (entry 0) (exit 1) (params n) (return-var r)
  (edge 0 1 (assign r (+ n 1))))
`

func Test_Read_01(t *testing.T) {
	c := checkRead(t, exampleProgram)
	main := c.Main()
	//
	require.NotNil(t, main)
	assert.Equal(t, "main", main.Name)
	assert.Len(t, main.Locations(), 10)
	assert.Equal(t, uint(12), c.NumLocations())
	//
	errs := c.ErrorLocations()
	require.Len(t, errs, 1)
	assert.Equal(t, "main:5", errs[0].String())
	assert.True(t, main.Location(0).IsEntry())
	assert.True(t, main.Location(9).IsExit())
}

func Test_Read_02(t *testing.T) {
	c := checkRead(t, exampleProgram)
	main := c.Main()
	//
	leaving := main.Location(2).Leaving()
	require.Len(t, leaving, 2)
	assert.Equal(t, "[(> x 0)]", leaving[0].String())
	assert.Equal(t, "[!(> x 0)]", leaving[1].String())
	//
	assign := main.Location(3).Leaving()[0].(*StatementEdge)
	assert.Equal(t, "x := (- x 1)", assign.String())
	assert.Equal(t, main.Location(2), assign.Target())
	//
	assert.Equal(t, "declare x", main.Location(0).Leaving()[0].String())
	assert.Equal(t, "havoc x", main.Location(7).Leaving()[0].String())
	assert.Equal(t, "(a y) := 1", main.Location(6).Leaving()[0].String())
	assert.True(t, IsNoop(main.Location(8).Leaving()[0]))
}

func Test_Read_Call_01(t *testing.T) {
	c := checkRead(t, exampleProgram)
	main, inc := c.Main(), c.Function("inc")
	//
	call, ok := main.Location(4).Leaving()[1].(*FunctionCallEdge)
	require.True(t, ok)
	assert.Equal(t, inc.Entry, call.Target())
	assert.Equal(t, "call inc(x)", call.String())
	//
	ret := call.Return
	assert.Equal(t, inc.Exit, ret.Source())
	assert.Equal(t, main.Location(6), ret.Target())
	assert.Equal(t, call, ret.Call)
	assert.Equal(t, "y := return from inc", ret.String())
	assert.False(t, IsNoop(ret))
	assert.Equal(t, []string{"inc::n"}, inc.Params)
	assert.Equal(t, "inc::r", inc.ReturnVar)
	assert.Equal(t, "inc::r := (+ inc::n 1)", inc.Entry.Leaving()[0].String())
}

const scopedProgram = `
(global g)

(function main (entry 0) (exit 4) (error 5)
  (edge 0 1 (assign x 0))
  (edge 1 2 (call f (x)))
  (edge 2 3 (assume (= x g)))
  (edge 3 5 (skip))
  (edge 2 4 (skip)))

(function f (entry 0) (exit 4) (params n)
  (edge 0 1 (declare x))
  (edge 1 2 (assign x n))
  (edge 2 3 (assign g (+ x y)))
  (edge 3 4 (assume (> (a x) g))))
`

func Test_Read_Scope_01(t *testing.T) {
	c := checkRead(t, scopedProgram)
	main, f := c.Main(), c.Function("f")
	// Variables of the main function are not renamed
	assert.Equal(t, "x := 0", main.Location(0).Leaving()[0].String())
	assert.Equal(t, "call f(x)", main.Location(1).Leaving()[0].String())
	assert.Equal(t, "[(= x g)]", main.Location(2).Leaving()[0].String())
	//
	assert.Equal(t, []string{"f::n"}, f.Params)
	assert.Equal(t, "declare f::x", f.Location(0).Leaving()[0].String())
	assert.Equal(t, "f::x := f::n", f.Location(1).Leaving()[0].String())
}

func Test_Read_Scope_02(t *testing.T) {
	c := checkRead(t, scopedProgram)
	f := c.Function("f")
	// Globals are shared, undeclared variables are local and function
	// symbols are global.
	assert.Equal(t, "g := (+ f::x f::y)", f.Location(2).Leaving()[0].String())
	assert.Equal(t, "[(> (a f::x) g)]", f.Location(3).Leaving()[0].String())
}

func Test_Read_Scope_03(t *testing.T) {
	// The main function is the first declared when none is named main
	c := checkRead(t, "(function start (entry 0) (exit 1) (params n)\n (edge 0 1 (assign n 1)))")
	assert.Equal(t, []string{"n"}, c.Main().Params)
	assert.Equal(t, "n := 1", c.Main().Entry.Leaving()[0].String())
}

func Test_Read_Err_02(t *testing.T) {
	// Recursion
	checkReadErr(t, "(function main (entry 0) (exit 1)\n (edge 0 1 (call main ())))", 2)
	checkReadErr(t, "(function main (entry 0) (exit 1)\n (edge 0 1 (call f ())))\n"+
		"(function f (entry 0) (exit 1)\n (edge 0 1 (call g ())))\n"+
		"(function g (entry 0) (exit 1)\n (edge 0 1 (call f ())))", 4)
	// Globals
	checkReadErr(t, "(global g g)\n(function main (entry 0) (exit 1))", 1)
	checkReadErr(t, "(global 1)\n(function main (entry 0) (exit 1))", 1)
	checkReadErr(t, "(global g)\n(function main (entry 0) (exit 1)\n (edge 0 1 (declare g)))", 3)
}

func Test_Read_Err_01(t *testing.T) {
	checkReadErr(t, "(foo main)", 1)
	checkReadErr(t, "(function main (exit 1))", 1)
	checkReadErr(t, "(function main (entry 0) (exit 1)\n (edge 0 1 (jump)))", 2)
	checkReadErr(t, "(function main (entry 0) (exit 1)\n (edge 0 1 (call g () r)))", 2)
	checkReadErr(t, "(function main (entry 0) (exit 1)\n\n (edge 0 1 (assume (> x))))", 3)
	checkReadErr(t, "(function main (entry 0) (exit 1)\n (edge 0 1 (assign x@1 0)))", 2)
	checkReadErr(t, "(function main (entry 0) (exit 1)\n (edge 0 -1 (skip)))", 2)
	checkReadErr(t, "(function main (entry 0) (exit 1))\n(function main (entry 0) (exit 1))", 2)
}

// ===================================================================
// Test Helpers
// ===================================================================

func checkRead(t *testing.T, text string) *CFA {
	c, err := Read(sexp.NewSourceFile("test.cfa", []byte(text)))
	require.NoError(t, err)
	//
	return c
}

func checkReadErr(t *testing.T, text string, line int) {
	_, err := Read(sexp.NewSourceFile("test.cfa", []byte(text)))
	require.Error(t, err, "input should not have been accepted: %s", text)
	//
	serr, ok := err.(*sexp.SyntaxError)
	require.True(t, ok, "expected syntax error, got %v", err)
	//
	l := serr.FirstEnclosingLine()
	assert.Equal(t, line, l.Number(), "unexpected line for error %s", serr.Message())
}
