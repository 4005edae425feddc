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
	"github.com/consensys/go-cegar/pkg/cfa"
	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/consensys/go-cegar/pkg/pathformula"
	"github.com/consensys/go-cegar/pkg/predicate"
	"github.com/consensys/go-cegar/pkg/prover"
	"github.com/consensys/go-cegar/pkg/ssa"
	"github.com/consensys/go-cegar/pkg/util/collection/hash"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Options determines how abstract post-images are computed.
type Options struct {
	// Cartesian selects the (approximate) Cartesian abstraction, rather than
	// the exact Boolean abstraction.
	Cartesian bool
	// UseCache enables memoisation of prover queries.
	UseCache bool
	// Capacities of the three caches.
	CartesianCacheSize   uint
	FeasibilityCacheSize uint
	BooleanCacheSize     uint
}

// DefaultOptions returns the default abstraction options.
func DefaultOptions() Options {
	return Options{
		Cartesian:            true,
		UseCache:             true,
		CartesianCacheSize:   DefaultCacheSize,
		FeasibilityCacheSize: DefaultCacheSize,
		BooleanCacheSize:     DefaultCacheSize,
	}
}

// Truth is the value determined for a predicate by the Cartesian abstraction.
type Truth int8

const (
	// DontCare indicates a predicate may be either true or false.
	DontCare Truth = iota
	// Holds indicates a predicate is definitely true.
	Holds
	// Fails indicates a predicate is definitely false.
	Fails
)

// Stats records the work done by a computer.
type Stats struct {
	// Post-images requested
	Posts uint
	// Post-images passed through without a prover query
	Noops uint
	// Queries issued to the prover
	FeasibilityQueries uint
	CartesianQueries   uint
	AllSatQueries      uint
}

type key = hash.Array[formula.Formula]

// Computer computes abstract post-images of transitions with respect to a set
// of predicates.  The Cartesian abstraction treats each predicate
// independently, requiring at most two queries per predicate, whilst the
// Boolean abstraction enumerates all consistent predicate assignments and is
// exact.
type Computer struct {
	options     Options
	lattice     *Lattice
	prover      prover.TheoremProver
	cartesian   *Cache[key, Truth]
	feasibility *Cache[formula.Formula, bool]
	boolean     *Cache[key, *Formula]
	stats       Stats
}

// NewComputer constructs a new computer using a given lattice and prover.
func NewComputer(options Options, lattice *Lattice, p prover.TheoremProver) (*Computer, error) {
	mode := prover.ModeSat
	//
	if !options.Cartesian {
		mode = prover.ModeAllSat
	}
	//
	if err := p.Init(mode); err != nil {
		return nil, err
	}
	//
	return &Computer{
		options:     options,
		lattice:     lattice,
		prover:      p,
		cartesian:   NewCache[key, Truth]("cartesian", options.CartesianCacheSize),
		feasibility: NewCache[formula.Formula, bool]("feasibility", options.FeasibilityCacheSize),
		boolean:     NewCache[key, *Formula]("boolean", options.BooleanCacheSize),
	}, nil
}

// Lattice returns the lattice of abstract formulas used by this computer.
func (c *Computer) Lattice() *Lattice {
	return c.lattice
}

// Stats returns statistics about the work done by this computer.
func (c *Computer) Stats() Stats {
	return c.stats
}

// CacheStats returns statistics for the Cartesian, feasibility and Boolean
// caches (in that order).
func (c *Computer) CacheStats() [3]CacheStats {
	return [3]CacheStats{c.cartesian.Stats(), c.feasibility.Stats(), c.boolean.Stats()}
}

// Post computes the abstract post-image of a given abstract formula under a
// given edge, expressed over a given set of predicates.
func (c *Computer) Post(pre *Formula, edge cfa.Edge, preds []*predicate.Predicate) (*Formula, error) {
	c.stats.Posts++
	//
	if cfa.IsNoop(edge) {
		c.stats.Noops++
		return pre, nil
	} else if c.lattice.IsFalse(pre) {
		return c.lattice.Bottom(), nil
	}
	//
	var (
		builder = ssa.NewBuilder()
		before  = builder.Instantiate(c.lattice.ToConcrete(pre))
	)
	//
	transition, _, err := pathformula.Transition(edge, builder)
	if err != nil {
		return nil, errors.Wrapf(err, "computing post-image of %s", edge)
	}
	//
	f := formula.MkAnd(before, transition)
	// Instantiate predicates in the post-state
	defs := make([]formula.Formula, len(preds))
	//
	for i, pred := range preds {
		defs[i] = builder.Instantiate(pred.Definition())
	}
	//
	var result *Formula
	//
	if c.options.Cartesian {
		result, err = c.postCartesian(f, preds, defs)
	} else {
		result, err = c.postBoolean(f, preds, defs)
	}
	//
	if err != nil {
		return nil, errors.Wrapf(err, "computing post-image of %s", edge)
	} else if err = c.lattice.Err(); err != nil {
		return nil, err
	}
	//
	log.Debugf("post(%s, %s) = %s", pre, edge, result)
	//
	return result, nil
}

// literal returns the abstract formula for a predicate or its negation.
func (c *Computer) literal(pred *predicate.Predicate, holds bool) (*Formula, error) {
	v, err := c.lattice.Var(pred)
	//
	if err != nil || holds {
		return v, err
	}
	//
	return c.lattice.Not(v), nil
}
