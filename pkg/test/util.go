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
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/consensys/go-cegar/pkg/cegar"
	"github.com/consensys/go-cegar/pkg/cfa"
	"github.com/consensys/go-cegar/pkg/config"
)

// TestDir determines the (relative) location of the test directory.  That is
// where the programs (cfa) and configuration files (yaml) are found.
const TestDir = "../../testdata"

// TIMEOUT bounds the time any single analysis is permitted to run.
const TIMEOUT = 30 * time.Second

// Configuration identifies a set of options overriding the defaults.
type Configuration struct {
	name      string
	overrides []string
}

// DEFAULT_CONFIG runs the analysis with default options.
var DEFAULT_CONFIG = Configuration{"default", nil}

// ALL_CONFIGS determines the configurations used by default when checking a
// program.
var ALL_CONFIGS = []Configuration{
	DEFAULT_CONFIG,
	{"boolean", []string{"abstraction.cartesian=false"}},
	{"nocache", []string{"useCache=false"}},
	{"shortest", []string{"shortestCexTrace=true"}},
	{"suffix", []string{"shortestCexTrace=true", "shortestCexTraceUseSuffix=true"}},
	{"zigzag", []string{"shortestCexTrace=true", "shortestCexTraceZigZag=true"}},
	{"split", []string{"refinement.splitItpAtoms=true"}},
	{"bfs", []string{"analysis.bfs=true"}},
	{"wellscoped", []string{"refinement.addWellScopedPredicates=true"}},
	{"global", []string{"refinement.addPredicatesGlobally=true"}},
	{"blast", []string{"refinement.useBlastWay=true"}},
	{"nonatomic", []string{"refinement.atomicPredicates=false"}},
}

// Check that a given program (identified relative to the test directory) has
// the expected verdict under each of the given configurations, or ALL_CONFIGS
// if none are given.  The outcome of each analysis is returned.
func Check(t *testing.T, test string, expected cegar.Verdict, configs ...Configuration) []*cegar.Outcome {
	var (
		filename = fmt.Sprintf("%s/%s.cfa", TestDir, test)
		outcomes []*cegar.Outcome
	)
	//
	if len(configs) == 0 {
		configs = ALL_CONFIGS
	}
	//
	for _, c := range configs {
		cfg := config.Default()
		//
		if err := cfg.SetAll(c.overrides); err != nil {
			t.Fatalf("%s: %s", c.name, err)
		}
		//
		outcomes = append(outcomes, CheckWith(t, cfg, filename, expected, c.name))
	}
	//
	return outcomes
}

// CheckWith checks a given program file has the expected verdict under a
// given configuration.
func CheckWith(t *testing.T, cfg *config.Config, filename string, expected cegar.Verdict,
	name string) *cegar.Outcome {
	//
	program := ReadProgram(t, filename)
	//
	alg, err := cfg.NewAlgorithm(program)
	if err != nil {
		t.Fatalf("%s (%s): %s", filename, name, err)
	}
	//
	ctx, cancel := context.WithTimeout(context.Background(), TIMEOUT)
	defer cancel()
	//
	outcome := alg.Run(ctx)
	//
	if outcome.Verdict != expected {
		t.Errorf("%s (%s): expected %s, got %s", filename, name, expected, outcome)
	} else if expected == cegar.Unsafe && outcome.Witness == nil {
		t.Errorf("%s (%s): missing witness", filename, name)
	}
	//
	return outcome
}

// ReadProgram reads a given program file, failing the test if this is not
// possible.
func ReadProgram(t *testing.T, filename string) *cfa.CFA {
	program, err := cfa.ReadFile(filename)
	//
	if err != nil {
		t.Fatalf("%s: %s", filename, err)
	}
	//
	return program
}
