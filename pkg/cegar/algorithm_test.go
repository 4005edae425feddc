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
	"fmt"
	"testing"

	"github.com/consensys/go-cegar/pkg/predicate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loopProgram = `
(function main (entry 0) (exit 4) (error 5)
  (edge 0 1 (assign x 0))
  (edge 1 2 (assume (< x 10)))
  (edge 2 1 (assign x (+ x 1)))
  (edge 1 3 (skip))
  (edge 3 5 (assume (< x 0)))
  (edge 3 4 (skip)))
`

const callProgram = `
(function main (entry 0) (exit 4) (error 5)
  (edge 0 1 (assign x 3))
  (edge 1 2 (call inc (x) y))
  (edge 2 5 (assume (%s y 4)))
  (edge 2 4 (skip)))

(function inc (entry 0) (exit 1) (params n) (return-var r)
  (edge 0 1 (assign r (+ n 1))))
`

func Test_Algorithm_Safe_01(t *testing.T) {
	for _, cartesian := range []bool{true, false} {
		outcome, alg := checkRun(t, DefaultOptions(), cartesian, equalityProgram)
		assert.Equal(t, Safe, outcome.Verdict)
		assert.Equal(t, Success, outcome.Severity)
		assert.Equal(t, uint(1), alg.Stats().Refinements)
		assert.Equal(t, "safe", outcome.String())
	}
}

func Test_Algorithm_Safe_02(t *testing.T) {
	for _, options := range allTraversals() {
		options.ShortestCexTrace = true
		outcome, _ := checkRun(t, options, true, infeasibleProgram)
		assert.Equal(t, Safe, outcome.Verdict)
	}
}

func Test_Algorithm_Safe_03(t *testing.T) {
	outcome, alg := checkRun(t, DefaultOptions(), true, loopProgram)
	assert.Equal(t, Safe, outcome.Verdict, "%s", outcome)
	assert.Greater(t, alg.Stats().Refinements, uint(1))
	assert.LessOrEqual(t, alg.Stats().LiveNodes, alg.Stats().Nodes)
	assert.NotZero(t, alg.Stats().LiveNodes)
}

func Test_Algorithm_Safe_04(t *testing.T) {
	for _, cartesian := range []bool{true, false} {
		outcome, _ := checkRun(t, DefaultOptions(), cartesian, fmt.Sprintf(callProgram, "!="))
		assert.Equal(t, Safe, outcome.Verdict, "%s", outcome)
	}
}

func Test_Algorithm_Unsafe_01(t *testing.T) {
	for _, cartesian := range []bool{true, false} {
		outcome, alg := checkRun(t, DefaultOptions(), cartesian, feasibleProgram)
		assert.Equal(t, Unsafe, outcome.Verdict)
		assert.Equal(t, "reached error location", outcome.String())
		require.NotNil(t, outcome.Witness)
		assert.Equal(t, int64(2), outcome.Witness.Model["y@2"])
		assert.Len(t, outcome.Path, 4)
		assert.Equal(t, alg.Tree().Root(), outcome.Path[0].Node)
		assert.Zero(t, alg.Stats().Refinements)
	}
}

func Test_Algorithm_Unsafe_02(t *testing.T) {
	for _, cartesian := range []bool{true, false} {
		outcome, _ := checkRun(t, DefaultOptions(), cartesian, fmt.Sprintf(callProgram, "="))
		assert.Equal(t, Unsafe, outcome.Verdict, "%s", outcome)
		assert.Equal(t, int64(3), outcome.Witness.Model["n@2"])
	}
}

func Test_Algorithm_Bfs_01(t *testing.T) {
	options := DefaultOptions()
	options.BFS = true
	//
	outcome, alg := checkRun(t, options, true, equalityProgram)
	assert.Equal(t, Safe, outcome.Verdict)
	assert.Equal(t, uint(1), alg.Stats().Refiner.Restarts)
}

func Test_Algorithm_MaxRefinements_01(t *testing.T) {
	options := DefaultOptions()
	options.MaxRefinements = 1
	//
	outcome, alg := checkRun(t, options, true, loopProgram)
	assert.Equal(t, Unknown, outcome.Verdict)
	assert.ErrorIs(t, outcome.Err, ErrMaxRefinements)
	assert.Equal(t, uint(1), alg.Stats().Refinements)
}

func Test_Algorithm_Cancel_01(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	//
	alg := newAlgorithm(t, DefaultOptions(), true, loopProgram)
	outcome := alg.Run(ctx)
	assert.Equal(t, Unknown, outcome.Verdict)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
	assert.Equal(t, Fatal, outcome.Severity)
}

func Test_Outcome_01(t *testing.T) {
	outcome := abort(ErrInsufficientPredicates)
	assert.Equal(t, "insufficient predicates, aborting", outcome.String())
	assert.Equal(t, Unknown, outcome.Verdict)
	assert.Equal(t, Fatal, outcome.Severity)
	//
	assert.Equal(t, Success, SeverityOf(nil))
	assert.Equal(t, "recoverable", Recoverable.String())
}

// ===================================================================
// Test Helpers
// ===================================================================

func newAlgorithm(t *testing.T, options Options, cartesian bool, src string) *Algorithm {
	var (
		program  = readProgram(t, src)
		lattice  = newLattice(t)
		computer = newComputer(t, lattice, cartesian)
		analyzer = newAnalyzer(options, predicate.NewManager())
	)
	//
	return NewAlgorithm(options, program, computer, analyzer)
}

func checkRun(t *testing.T, options Options, cartesian bool, src string) (*Outcome, *Algorithm) {
	alg := newAlgorithm(t, options, cartesian, src)
	outcome := alg.Run(context.Background())
	//
	if outcome.Severity == Fatal {
		t.Logf("analysis aborted: %s", outcome.Err)
	}
	//
	return outcome, alg
}
