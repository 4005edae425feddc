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
	"fmt"
	"os"
	"strings"

	"github.com/consensys/go-cegar/pkg/art"
	"github.com/consensys/go-cegar/pkg/cfa"
	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/consensys/go-cegar/pkg/pathformula"
	"github.com/consensys/go-cegar/pkg/predicate"
	"github.com/consensys/go-cegar/pkg/prover"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// PathElement is a step along an abstract counterexample.  The edge leads from
// the element's node to the node of the next element, and is nil for the
// final element.
type PathElement struct {
	Node art.NodeID
	Edge cfa.Edge
}

// TraceInfo is the result of analysing an abstract counterexample.  A spurious
// counterexample carries the predicates discovered for each node along the
// path, whilst a real counterexample carries a witness.
type TraceInfo struct {
	Spurious   bool
	Predicates map[art.NodeID][]*predicate.Predicate
	Witness    *Witness
}

// AnalyzerStats records the work done by an analyzer.
type AnalyzerStats struct {
	Analyses     uint
	Spurious     uint
	Real         uint
	Interpolants uint
	// Steps dropped by the useful blocks reduction
	DroppedSteps uint
}

// Analyzer decides whether abstract counterexamples are real or spurious,
// and extracts predicates from spurious ones by interpolation.
type Analyzer struct {
	options Options
	manager *predicate.Manager
	// Used for the useful blocks reduction
	prover prover.TheoremProver
	itp    prover.InterpolatingProver
	stats  AnalyzerStats
}

// NewAnalyzer constructs an analyzer which allocates predicates using a given
// manager.
func NewAnalyzer(options Options, manager *predicate.Manager, p prover.TheoremProver,
	itp prover.InterpolatingProver) *Analyzer {
	return &Analyzer{options: options, manager: manager, prover: p, itp: itp}
}

// Stats returns statistics about the work done by this analyzer.
func (a *Analyzer) Stats() AnalyzerStats {
	return a.stats
}

// Analyze classifies a given abstract counterexample as real or spurious.
func (a *Analyzer) Analyze(path []PathElement) (*TraceInfo, error) {
	a.stats.Analyses++
	//
	dag, err := buildDAG(path)
	if err != nil {
		return nil, err
	}
	//
	steps := dag.steps
	//
	if a.options.ShortestCexTrace {
		if steps, err = a.usefulBlocks(dag.steps); err != nil {
			return nil, err
		}
	}
	//
	groups, unsat, err := a.check(steps)
	if err != nil {
		return nil, err
	}
	//
	if !unsat {
		a.stats.Real++
		return &TraceInfo{Spurious: false, Witness: a.witness(dag)}, nil
	}
	//
	a.stats.Spurious++
	//
	preds, err := a.extract(path, groups)
	if err != nil {
		return nil, err
	}
	//
	return &TraceInfo{Spurious: true, Predicates: preds}, nil
}

// check adds each step to the interpolating prover, in the configured order,
// and determines whether their conjunction is unsatisfiable.  The group of
// each step added is returned, where steps not added have no group.
func (a *Analyzer) check(steps []formula.Formula) ([]*prover.Group, bool, error) {
	if err := a.itp.Reset(); err != nil {
		return nil, false, err
	} else if err := a.itp.Init(); err != nil {
		return nil, false, err
	}
	//
	groups := make([]*prover.Group, len(steps))
	//
	for _, i := range a.options.order(len(steps)) {
		g, err := a.itp.AddFormula(steps[i])
		if err != nil {
			return nil, false, err
		}
		//
		groups[i] = &g
		// Stop at the shortest unsatisfiable prefix
		if a.options.ShortestCexTrace {
			if unsat, err := a.itp.IsUnsat(); err != nil || unsat {
				return groups, unsat, err
			}
		}
	}
	//
	unsat, err := a.itp.IsUnsat()
	//
	return groups, unsat, err
}

// witness constructs the witness of a real counterexample, optionally writing
// it to a file.
func (a *Analyzer) witness(dag *dagFormula) *Witness {
	witness := &Witness{Path: dag.pathFormula()}
	//
	if mp, ok := a.itp.(prover.ModelProvider); ok {
		if model, err := mp.Model(); err == nil {
			witness.Model = model
		}
	}
	//
	if a.options.MsatCexPath != "" {
		if err := writeWitness(a.options.MsatCexPath, dag); SeverityOf(err) == Recoverable {
			log.Warnf("%s", err)
		}
	}
	//
	return witness
}

// writeWitness writes the formula of each step of a counterexample, one per
// line.
func writeWitness(filename string, dag *dagFormula) error {
	var builder strings.Builder
	//
	for i, step := range dag.steps {
		builder.WriteString(fmt.Sprintf("; step %d\n%s\n", i, step))
	}
	//
	if err := os.WriteFile(filename, []byte(builder.String()), 0644); err != nil {
		return errors.Wrapf(ErrWitnessDump, "%s", err)
	}
	//
	return nil
}

// dagFormula holds one formula for each edge along a path, instantiated using
// a single SSA map threaded through the path.
type dagFormula struct {
	steps []formula.Formula
	path  *pathformula.PathFormula
}

func buildDAG(path []PathElement) (*dagFormula, error) {
	var dag = dagFormula{path: pathformula.Empty()}
	//
	for _, elem := range path {
		if elem.Edge == nil {
			continue
		}
		//
		next, step, err := dag.path.Extend(elem.Edge)
		if err != nil {
			return nil, errors.Wrapf(err, "analysing path at node #%d", elem.Node)
		}
		//
		dag.steps = append(dag.steps, step)
		dag.path = next
	}
	//
	return &dag, nil
}

func (p *dagFormula) pathFormula() *pathformula.PathFormula {
	return p.path
}
