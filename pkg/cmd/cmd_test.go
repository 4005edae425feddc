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
package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/consensys/go-cegar/pkg/cegar"
	"github.com/consensys/go-cegar/pkg/cfa"
	"github.com/consensys/go-cegar/pkg/config"
	"github.com/consensys/go-cegar/pkg/sexp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unsafeProgram = `
(function main (entry 0) (exit 4) (error 3)
  (edge 0 1 (assign x 1))
  (edge 1 2 (assume (> x 0)))
  (edge 2 3 (assign y (+ x 1))))
`

const globalProgram = `
(global h g)
(function main (entry 0) (exit 3) (error 2)
  (edge 0 1 (call set (3)))
  (edge 1 2 (assume (!= g 3))))
(function set (entry 0) (exit 1) (params v)
  (edge 0 1 (assign g v)))
`

const safeProgram = `
(function main (entry 0) (exit 3) (error 2)
  (edge 0 1 (assign x 0))
  (edge 1 2 (assume (< x 0))))
`

func Test_PrintOutcome_01(t *testing.T) {
	var buf bytes.Buffer
	//
	alg, outcome := checkProgram(t, safeProgram)
	printOutcome(&buf, false, alg, outcome)
	assert.Equal(t, "safe\n", buf.String())
	//
	buf.Reset()
	printOutcome(&buf, true, alg, outcome)
	assert.Equal(t, "\033[1;32msafe\033[0m\n", buf.String())
}

func Test_PrintOutcome_02(t *testing.T) {
	var buf bytes.Buffer
	//
	alg, outcome := checkProgram(t, unsafeProgram)
	printOutcome(&buf, false, alg, outcome)
	//
	text := buf.String()
	assert.Contains(t, text, "reached error location\n")
	assert.Contains(t, text, "  #0@main:0: x := 1\n")
	assert.Contains(t, text, "with:\n")
	assert.Contains(t, text, "  x@2 = 1\n")
	assert.Contains(t, text, "  y@2 = 2\n")
}

func Test_PrintStats_01(t *testing.T) {
	var buf bytes.Buffer
	//
	alg, _ := checkProgram(t, safeProgram)
	stats := alg.Stats()
	printStats(&buf, false, &stats)
	//
	assert.Contains(t, buf.String(), " refinements |")
	assert.Contains(t, buf.String(), " live nodes |")
	assert.NotContains(t, buf.String(), "\033")
}

func Test_PrintProgram_01(t *testing.T) {
	var buf bytes.Buffer
	//
	printProgram(&buf, readTestProgram(t, unsafeProgram))
	//
	text := buf.String()
	assert.Contains(t, text, "function main()\n")
	assert.Contains(t, text, "  0 (entry)\n    -> main:1: x := 1\n")
	assert.Contains(t, text, "    -> main:2: [(> x 0)]\n")
	assert.Contains(t, text, "  3 (error)\n")
}

func Test_PrintProgram_02(t *testing.T) {
	var buf bytes.Buffer
	//
	printProgram(&buf, readTestProgram(t, globalProgram))
	//
	text := buf.String()
	assert.True(t, strings.HasPrefix(text, "global g\nglobal h\nfunction main()\n"), text)
	assert.Contains(t, text, "function set(set::v)\n")
	assert.Contains(t, text, "    -> set:1: g := set::v\n")
}

// ===================================================================
// Test Helpers
// ===================================================================

func readTestProgram(t *testing.T, src string) *cfa.CFA {
	program, err := cfa.Read(sexp.NewSourceFile("test.cfa", []byte(src)))
	require.NoError(t, err)
	//
	return program
}

func checkProgram(t *testing.T, src string) (*cegar.Algorithm, *cegar.Outcome) {
	alg, err := config.Default().NewAlgorithm(readTestProgram(t, src))
	require.NoError(t, err)
	//
	return alg, alg.Run(context.Background())
}
