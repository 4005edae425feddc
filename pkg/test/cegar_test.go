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
package test

import (
	"fmt"
	"testing"

	"github.com/consensys/go-cegar/pkg/cegar"
	"github.com/consensys/go-cegar/pkg/cfa"
	"github.com/consensys/go-cegar/pkg/config"
	"github.com/consensys/go-cegar/pkg/prover"
	"github.com/consensys/go-cegar/pkg/sexp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===================================================================
// Safe Programs
// ===================================================================

func Test_Safe_Equality(t *testing.T) {
	Check(t, "safe/equality", cegar.Safe)
}

func Test_Safe_Contradiction(t *testing.T) {
	Check(t, "safe/contradiction", cegar.Safe)
}

func Test_Safe_Havoc(t *testing.T) {
	Check(t, "safe/havoc", cegar.Safe)
}

func Test_Safe_Branch(t *testing.T) {
	Check(t, "safe/branch", cegar.Safe)
}

func Test_Safe_Call(t *testing.T) {
	Check(t, "safe/call", cegar.Safe)
}

func Test_Safe_Loop(t *testing.T) {
	Check(t, "safe/loop", cegar.Safe)
}

func Test_Safe_Shadow(t *testing.T) {
	Check(t, "safe/shadow", cegar.Safe)
}

func Test_Safe_Global(t *testing.T) {
	Check(t, "safe/global", cegar.Safe)
}

// ===================================================================
// Unsafe Programs
// ===================================================================

func Test_Unsafe_Straight(t *testing.T) {
	for _, outcome := range Check(t, "unsafe/straight", cegar.Unsafe) {
		require.NotNil(t, outcome.Witness)
		assert.Equal(t, int64(1), outcome.Witness.Model["x@2"])
		assert.Equal(t, int64(2), outcome.Witness.Model["y@2"])
	}
}

func Test_Unsafe_Havoc(t *testing.T) {
	for _, outcome := range Check(t, "unsafe/havoc", cegar.Unsafe) {
		require.NotNil(t, outcome.Witness)
		assert.Greater(t, outcome.Witness.Model["x@2"], int64(10))
	}
}

func Test_Unsafe_Branch(t *testing.T) {
	Check(t, "unsafe/branch", cegar.Unsafe)
}

func Test_Unsafe_Call(t *testing.T) {
	Check(t, "unsafe/call", cegar.Unsafe)
}

func Test_Unsafe_Shadow(t *testing.T) {
	for _, outcome := range Check(t, "unsafe/shadow", cegar.Unsafe) {
		require.NotNil(t, outcome.Witness)
		assert.Equal(t, int64(0), outcome.Witness.Model["x@2"])
		assert.Equal(t, int64(1), outcome.Witness.Model["f::x@3"])
	}
}

// ===================================================================
// Configuration Files
// ===================================================================

// ===================================================================
// Unknown
// ===================================================================

func Test_Unknown_Constant(t *testing.T) {
	for _, outcome := range Check(t, "unknown/constant", cegar.Unknown) {
		assert.ErrorIs(t, outcome.Err, prover.ErrUnknown)
	}
}

func Test_Unknown_Overflow(t *testing.T) {
	for _, outcome := range Check(t, "unknown/overflow", cegar.Unknown) {
		assert.ErrorIs(t, outcome.Err, prover.ErrUnknown)
	}
}

func Test_Config_ZigZag(t *testing.T) {
	cfg, err := config.Load(fmt.Sprintf("%s/config/zigzag.yaml", TestDir))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	//
	CheckWith(t, cfg, fmt.Sprintf("%s/safe/branch.cfa", TestDir), cegar.Safe, "zigzag.yaml")
	CheckWith(t, cfg, fmt.Sprintf("%s/unsafe/branch.cfa", TestDir), cegar.Unsafe, "zigzag.yaml")
}

// ===================================================================
// Invalid Programs
// ===================================================================

func Test_Invalid_Statement(t *testing.T) {
	err := checkInvalid(t, "invalid/statement")
	assert.Equal(t, "unknown statement", err.Message())
}

func Test_Invalid_Unbalanced(t *testing.T) {
	checkInvalid(t, "invalid/unbalanced")
}

func Test_Invalid_Recursion(t *testing.T) {
	err := checkInvalid(t, "invalid/recursion")
	assert.Equal(t, "recursive call", err.Message())
}

// ===================================================================
// Test Helpers
// ===================================================================

func checkInvalid(t *testing.T, test string) *sexp.SyntaxError {
	var serr *sexp.SyntaxError
	//
	_, err := cfa.ReadFile(fmt.Sprintf("%s/%s.cfa", TestDir, test))
	require.Error(t, err)
	require.True(t, errors.As(err, &serr), "expected syntax error, got %s", err)
	//
	return serr
}
