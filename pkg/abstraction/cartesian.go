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
package abstraction

import (
	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/consensys/go-cegar/pkg/predicate"
	"github.com/consensys/go-cegar/pkg/prover"
	"github.com/consensys/go-cegar/pkg/util/collection/hash"
)

// postCartesian computes the Cartesian abstraction of a given (instantiated)
// transition formula.  Each predicate is tested independently against the
// transition, giving a conjunction of those predicates which definitely hold
// or definitely fail.
func (c *Computer) postCartesian(f formula.Formula, preds []*predicate.Predicate,
	defs []formula.Formula) (*Formula, error) {
	feasible, err := c.isFeasible(f)
	//
	if err != nil {
		return nil, err
	} else if !feasible {
		return c.lattice.Bottom(), nil
	}
	//
	var (
		truths = make([]Truth, len(preds))
		keys   = make([]key, len(preds))
		misses []int
	)
	//
	for i := range preds {
		keys[i] = hash.NewArray([]formula.Formula{f, defs[i]})
		//
		if t, ok := c.getCartesian(keys[i]); ok {
			truths[i] = t
		} else {
			misses = append(misses, i)
		}
	}
	// Push the transition once for all remaining predicates
	if len(misses) > 0 {
		err = prover.Scoped(c.prover, f, func() error {
			for _, i := range misses {
				t, err := c.truthOf(defs[i])
				if err != nil {
					return err
				}
				//
				truths[i] = t
				c.putCartesian(keys[i], t)
			}
			//
			return nil
		})
		//
		if err != nil {
			return nil, err
		}
	}
	//
	var lits []*Formula
	//
	for i, pred := range preds {
		if truths[i] == DontCare {
			continue
		}
		//
		lit, err := c.literal(pred, truths[i] == Holds)
		if err != nil {
			return nil, err
		}
		//
		lits = append(lits, lit)
	}
	//
	return c.lattice.And(lits...), nil
}

// truthOf determines the truth of a single (instantiated) predicate with
// respect to the formula currently pushed onto the prover.
func (c *Computer) truthOf(def formula.Formula) (Truth, error) {
	c.stats.CartesianQueries++
	//
	if unsat, err := c.prover.IsUnsat(formula.MkNot(def)); err != nil {
		return DontCare, err
	} else if unsat {
		return Holds, nil
	}
	//
	c.stats.CartesianQueries++
	//
	if unsat, err := c.prover.IsUnsat(def); err != nil {
		return DontCare, err
	} else if unsat {
		return Fails, nil
	}
	//
	return DontCare, nil
}

func (c *Computer) isFeasible(f formula.Formula) (bool, error) {
	if c.options.UseCache {
		if feasible, ok := c.feasibility.Get(f); ok {
			return feasible, nil
		}
	}
	//
	c.stats.FeasibilityQueries++
	//
	unsat, err := c.prover.IsUnsat(f)
	if err != nil {
		return false, err
	}
	//
	if c.options.UseCache {
		c.feasibility.Put(f, !unsat)
	}
	//
	return !unsat, nil
}

func (c *Computer) getCartesian(k key) (Truth, bool) {
	if !c.options.UseCache {
		return DontCare, false
	}
	//
	return c.cartesian.Get(k)
}

func (c *Computer) putCartesian(k key, t Truth) {
	if c.options.UseCache {
		c.cartesian.Put(k, t)
	}
}
