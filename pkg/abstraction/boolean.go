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

// postBoolean computes the Boolean abstraction of a given (instantiated)
// transition formula.  Each predicate's indicator is bound to its definition,
// and every assignment to the indicators consistent with the transition is
// enumerated.  The result is the disjunction of these assignments.
func (c *Computer) postBoolean(f formula.Formula, preds []*predicate.Predicate,
	defs []formula.Formula) (*Formula, error) {
	// Key covers the transition and each instantiated predicate.
	k := hash.NewArray(append([]formula.Formula{f}, defs...))
	//
	if c.options.UseCache {
		if result, ok := c.boolean.Get(k); ok {
			return result, nil
		}
	}
	//
	var (
		conjuncts = make([]formula.Formula, 0, len(preds)+1)
		important = make([]formula.Formula, len(preds))
		cubes     []*Formula
	)
	//
	conjuncts = append(conjuncts, f)
	//
	for i, pred := range preds {
		important[i] = pred.Indicator()
		conjuncts = append(conjuncts, formula.MkIff(pred.Indicator(), defs[i]))
	}
	//
	c.stats.AllSatQueries++
	//
	n, err := c.prover.AllSat(formula.MkAnd(conjuncts...), important, func(cube []formula.Formula) error {
		lits := make([]*Formula, len(cube))
		//
		for i, lit := range cube {
			l, err := c.literal(preds[i], formula.IsAtom(lit))
			if err != nil {
				return err
			}
			//
			lits[i] = l
		}
		//
		cubes = append(cubes, c.lattice.And(lits...))
		//
		return nil
	})
	//
	if err != nil {
		return nil, err
	}
	//
	var result *Formula
	//
	switch n {
	case prover.AllSatisfying:
		result = c.lattice.Top()
	case 0:
		result = c.lattice.Bottom()
	default:
		result = c.lattice.Or(cubes...)
	}
	//
	if c.options.UseCache {
		c.boolean.Put(k, result)
	}
	//
	return result, nil
}
