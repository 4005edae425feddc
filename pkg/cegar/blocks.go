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
	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/consensys/go-cegar/pkg/prover"
	log "github.com/sirupsen/logrus"
)

// usefulBlocks reduces a trace to a (not necessarily minimal) unsatisfiable
// subset of its steps, replacing all other steps with true.  Each round
// asserts the steps found so far and then pushes the remaining steps, in the
// configured order, until the conjunction becomes unsatisfiable.  The step
// whose push caused this is retained, and rounds continue until the retained
// steps alone are unsatisfiable.  If all steps together are satisfiable, the
// trace is returned unchanged.
func (a *Analyzer) usefulBlocks(steps []formula.Formula) ([]formula.Formula, error) {
	var (
		needed = make([]bool, len(steps))
		order  = a.options.order(len(steps))
	)
	//
	if err := a.prover.Init(prover.ModeSat); err != nil {
		return nil, err
	}
	//
	for {
		done, sat, err := a.usefulBlocksRound(steps, order, needed)
		//
		if err != nil {
			return nil, err
		} else if sat {
			// Trace is feasible
			return steps, nil
		} else if done {
			break
		}
	}
	//
	reduced := make([]formula.Formula, len(steps))
	//
	for i, step := range steps {
		if needed[i] {
			reduced[i] = step
		} else {
			reduced[i] = formula.True
			a.stats.DroppedSteps++
		}
	}
	//
	log.Debugf("useful blocks: %v", reduced)
	//
	return reduced, nil
}

// usefulBlocksRound performs a single round of the useful blocks reduction.
// This reports whether the needed steps alone are unsatisfiable, or whether
// all steps together are satisfiable.
func (a *Analyzer) usefulBlocksRound(steps []formula.Formula, order []int, needed []bool) (done bool, sat bool,
	err error) {
	var depth = 0
	// Pop everything pushed on all exit paths.
	defer func() {
		for ; depth > 0; depth-- {
			if perr := a.prover.Pop(); err == nil {
				err = perr
			}
		}
	}()
	//
	for _, i := range order {
		if needed[i] {
			if err = a.prover.Push(steps[i]); err != nil {
				return false, false, err
			}
			//
			depth++
		}
	}
	//
	if unsat, err := a.prover.IsUnsat(nil); err != nil || unsat {
		return true, false, err
	}
	//
	for _, i := range order {
		if needed[i] {
			continue
		} else if err = a.prover.Push(steps[i]); err != nil {
			return false, false, err
		}
		//
		depth++
		//
		if unsat, err := a.prover.IsUnsat(nil); err != nil {
			return false, false, err
		} else if unsat {
			needed[i] = true
			return false, false, nil
		}
	}
	//
	return false, true, nil
}
