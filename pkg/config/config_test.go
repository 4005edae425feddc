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
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Default_01(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	//
	assert.True(t, c.AbstractionOptions().Cartesian)
	assert.True(t, c.AbstractionOptions().UseCache)
	assert.Equal(t, uint(100000), c.AbstractionOptions().BooleanCacheSize)
	assert.True(t, c.CegarOptions().AtomicPredicates)
	assert.False(t, c.CegarOptions().BFS)
	assert.Equal(t, int64(-16), c.Domain().Min)
	assert.Equal(t, int64(16), c.Domain().Max)
}

func Test_Set_01(t *testing.T) {
	c := Default()
	//
	require.NoError(t, c.Set("abstraction.cartesian", "false"))
	require.NoError(t, c.Set("refinement.msatCexPath", "cex.smt"))
	require.NoError(t, c.Set("analysis.maxRefinements", "7"))
	require.NoError(t, c.Set("shortestCexTrace", "true"))
	require.NoError(t, c.Set("prover.min", "-8"))
	//
	assert.False(t, c.AbstractionOptions().Cartesian)
	assert.Equal(t, "cex.smt", c.CegarOptions().MsatCexPath)
	assert.Equal(t, uint(7), c.CegarOptions().MaxRefinements)
	assert.True(t, c.CegarOptions().ShortestCexTrace)
	assert.Equal(t, int64(-8), c.Domain().Min)
	// Others unchanged
	assert.True(t, c.UseCache)
	assert.Equal(t, int64(16), c.Domain().Max)
	assert.True(t, c.Refinement.AtomicPredicates)
}

func Test_Set_02(t *testing.T) {
	c := Default()
	//
	assert.Error(t, c.Set("refinement.unknown", "true"))
	assert.Error(t, c.Set("analysis.maxRefinements", "many"))
	assert.Error(t, c.Set("analysis..bfs", "true"))
	assert.Error(t, c.SetAll([]string{"useCache"}))
	require.NoError(t, c.SetAll([]string{"useCache = false", "analysis.bfs=true"}))
	assert.False(t, c.UseCache)
	assert.True(t, c.Analysis.BFS)
}

func Test_Load_01(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "cegar.yaml")
	contents := `
abstraction:
  cartesian: false
refinement:
  splitItpAtoms: true
bdd:
  varnum: 64
`
	require.NoError(t, os.WriteFile(filename, []byte(contents), 0644))
	//
	c, err := Load(filename)
	require.NoError(t, err)
	assert.False(t, c.Abstraction.Cartesian)
	assert.True(t, c.Refinement.SplitItpAtoms)
	assert.True(t, c.Refinement.AtomicPredicates)
	assert.Equal(t, 64, c.BDD.Varnum)
	assert.Equal(t, 10000, c.BDD.Nodesize)
	//
	lattice, err := c.NewLattice()
	require.NoError(t, err)
	assert.True(t, lattice.IsTrue(lattice.Top()))
}

func Test_Load_02(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "cegar.yaml")
	require.NoError(t, os.WriteFile(filename, []byte("bogus: 1\n"), 0644))
	//
	_, err := Load(filename)
	assert.Error(t, err)
	//
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// Configurations survive a round trip through their textual form.
func Test_String_01(t *testing.T) {
	c := Default()
	require.NoError(t, c.Set("refinement.useBlastWay", "true"))
	//
	filename := filepath.Join(t.TempDir(), "cegar.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(c.String()), 0644))
	//
	d, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, c, d)
}

func Test_Validate_01(t *testing.T) {
	c := Default()
	c.Prover.Min, c.Prover.Max = 5, 4
	assert.Error(t, c.Validate())
	//
	c = Default()
	c.ShortestCexTraceUseSuffix, c.ShortestCexTraceZigZag = true, true
	assert.Error(t, c.Validate())
	//
	c = Default()
	c.BDD.Varnum = 0
	assert.Error(t, c.Validate())
}
