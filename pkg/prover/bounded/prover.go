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
	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/consensys/go-cegar/pkg/prover"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrEmptyStack is returned when popping a prover with nothing pushed.
var ErrEmptyStack = errors.New("pop on empty prover stack")

// Prover is a theorem prover which decides formulas by restricting every
// variable to a bounded integer domain, and then encoding the result into
// propositional logic.  As such, a formula reported satisfiable is genuinely
// satisfiable over the integers, whilst a formula reported unsatisfiable is
// only guaranteed unsatisfiable within the domain.
//
// Pushed formulas are guarded by activation literals, such that popping a
// formula simply disables its guard.
type Prover struct {
	domain   Domain
	enc      *encoder
	scopes   []z.Lit
	hasModel bool
}

var _ prover.TheoremProver = (*Prover)(nil)
var _ prover.ModelProvider = (*Prover)(nil)

// NewProver constructs a new prover over a given domain.
func NewProver(domain Domain) *Prover {
	return &Prover{domain: domain, enc: newEncoder(domain)}
}

// Init implementation for TheoremProver interface.
func (p *Prover) Init(mode prover.Mode) error {
	return p.Reset()
}

// Push implementation for TheoremProver interface.
func (p *Prover) Push(f formula.Formula) error {
	l, err := p.enc.lit(f)
	if err != nil {
		return err
	}
	//
	act := p.enc.fresh()
	p.enc.clause(act.Not(), l)
	p.scopes = append(p.scopes, act)
	//
	return nil
}

// Pop implementation for TheoremProver interface.
func (p *Prover) Pop() error {
	n := len(p.scopes)
	//
	if n == 0 {
		return ErrEmptyStack
	}
	// Permanently disable the scope's guard
	p.enc.clause(p.scopes[n-1].Not())
	p.scopes = p.scopes[:n-1]
	//
	return nil
}

// IsUnsat implementation for TheoremProver interface.
func (p *Prover) IsUnsat(f formula.Formula) (bool, error) {
	assumptions, err := p.assumptions(f)
	if err != nil {
		return false, err
	}
	//
	sat, err := p.enc.solve(assumptions...)
	p.hasModel = sat
	//
	if err != nil || sat || !p.enc.bounded {
		return !sat, err
	}
	// Only report unsatisfiable when no value beyond the domain satisfies it
	sat, err = p.enc.solveRelaxed(assumptions...)
	//
	return !sat, err
}

// AllSat implementation for TheoremProver interface.  Models are enumerated by
// adding blocking clauses, which are themselves guarded by a literal which is
// disabled once enumeration is complete.  Enumeration is relaxed at the domain
// ends, so every assignment realisable over the integers is reported.
func (p *Prover) AllSat(f formula.Formula, important []formula.Formula,
	callback func([]formula.Formula) error) (int, error) {
	//
	assumptions, err := p.assumptions(f)
	if err != nil {
		return 0, err
	}
	//
	lits, err := p.enc.litsOf(important)
	if err != nil {
		return 0, err
	}
	//
	var (
		block = p.enc.fresh()
		count = 0
	)
	// Retire blocking clauses on all exit paths
	defer p.enc.clause(block.Not())
	//
	assumptions = append(assumptions, block)
	//
	for {
		sat, err := p.enc.solveRelaxed(assumptions...)
		//
		if err != nil {
			return count, err
		} else if !sat {
			break
		}
		//
		cube := make([]formula.Formula, len(important))
		blocking := make([]z.Lit, 0, len(important)+1)
		blocking = append(blocking, block.Not())
		//
		for i, l := range lits {
			if p.enc.solver.Value(l) {
				cube[i] = important[i]
				blocking = append(blocking, l.Not())
			} else {
				cube[i] = formula.MkNot(important[i])
				blocking = append(blocking, l)
			}
		}
		//
		count++
		p.enc.stats.Models++
		//
		if err := callback(cube); err != nil {
			return count, err
		}
		//
		p.enc.clause(blocking...)
		// Every assignment is blocked, hence the solver will find no more.
		if len(important) < 63 && count == 1<<len(important) {
			log.Debugf("all %d assignments satisfying", count)
			return prover.AllSatisfying, nil
		}
	}
	//
	return count, nil
}

// Reset implementation for TheoremProver interface.
func (p *Prover) Reset() error {
	stats := p.enc.stats
	p.enc = newEncoder(p.domain)
	p.enc.stats = stats
	p.scopes = nil
	p.hasModel = false
	//
	return nil
}

// Model implementation for ModelProvider interface.
func (p *Prover) Model() (map[string]int64, error) {
	if !p.hasModel {
		return nil, errors.New("no model available")
	}
	//
	return p.enc.model(), nil
}

// Stats implementation for StatsProvider interface.
func (p *Prover) Stats() prover.Stats {
	return p.enc.stats
}

func (p *Prover) assumptions(f formula.Formula) ([]z.Lit, error) {
	assumptions := make([]z.Lit, len(p.scopes), len(p.scopes)+2)
	copy(assumptions, p.scopes)
	//
	if f != nil {
		l, err := p.enc.lit(f)
		if err != nil {
			return nil, err
		}
		//
		assumptions = append(assumptions, l)
	}
	//
	return assumptions, nil
}
