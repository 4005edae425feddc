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
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/consensys/go-cegar/pkg/abstraction"
	"github.com/consensys/go-cegar/pkg/cegar"
	"github.com/consensys/go-cegar/pkg/cfa"
	"github.com/consensys/go-cegar/pkg/predicate"
	"github.com/consensys/go-cegar/pkg/prover/bounded"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds every option of the analysis.  Options are read from YAML
// files, and can be overridden individually using their dotted names (e.g.
// "refinement.splitItpAtoms").
type Config struct {
	Abstraction struct {
		Cartesian bool `yaml:"cartesian"`
	} `yaml:"abstraction"`
	UseCache bool `yaml:"useCache"`
	Cache    struct {
		CartesianSize   uint `yaml:"cartesianSize"`
		FeasibilitySize uint `yaml:"feasibilitySize"`
		BooleanSize     uint `yaml:"booleanSize"`
	} `yaml:"cache"`
	ShortestCexTrace          bool `yaml:"shortestCexTrace"`
	ShortestCexTraceUseSuffix bool `yaml:"shortestCexTraceUseSuffix"`
	ShortestCexTraceZigZag    bool `yaml:"shortestCexTraceZigZag"`
	Refinement                struct {
		AddWellScopedPredicates bool   `yaml:"addWellScopedPredicates"`
		SplitItpAtoms           bool   `yaml:"splitItpAtoms"`
		AtomicPredicates        bool   `yaml:"atomicPredicates"`
		AddPredicatesGlobally   bool   `yaml:"addPredicatesGlobally"`
		UseBlastWay             bool   `yaml:"useBlastWay"`
		MsatCexPath             string `yaml:"msatCexPath"`
	} `yaml:"refinement"`
	Analysis struct {
		BFS            bool `yaml:"bfs"`
		MaxRefinements uint `yaml:"maxRefinements"`
	} `yaml:"analysis"`
	Prover struct {
		Min int64 `yaml:"min"`
		Max int64 `yaml:"max"`
	} `yaml:"prover"`
	BDD struct {
		Varnum    int `yaml:"varnum"`
		Nodesize  int `yaml:"nodesize"`
		Cachesize int `yaml:"cachesize"`
	} `yaml:"bdd"`
}

// Default returns the default configuration.
func Default() *Config {
	var c Config
	//
	c.Abstraction.Cartesian = true
	c.UseCache = true
	c.Cache.CartesianSize = abstraction.DefaultCacheSize
	c.Cache.FeasibilitySize = abstraction.DefaultCacheSize
	c.Cache.BooleanSize = abstraction.DefaultCacheSize
	c.Refinement.AtomicPredicates = true
	c.Prover.Min = bounded.DefaultDomain.Min
	c.Prover.Max = bounded.DefaultDomain.Max
	c.BDD.Varnum = 1024
	c.BDD.Nodesize = 10000
	c.BDD.Cachesize = 5000
	//
	return &c
}

// Load reads a configuration file, where options not given in the file take
// their default values.
func Load(filename string) (*Config, error) {
	c := Default()
	//
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	//
	defer f.Close()
	//
	if err := c.decode(f); err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	//
	return c, nil
}

// Set overrides a single option, given by its dotted name.  The value is
// interpreted as a YAML scalar.
func (c *Config) Set(key string, value string) error {
	var (
		root = &yaml.Node{Kind: yaml.MappingNode}
		node = root
		path = strings.Split(key, ".")
	)
	//
	for i, name := range path {
		if name == "" {
			return errors.Errorf("invalid option %q", key)
		}
		//
		child := &yaml.Node{Kind: yaml.MappingNode}
		//
		if i == len(path)-1 {
			child = &yaml.Node{Kind: yaml.ScalarNode, Value: value}
		}
		//
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: name}, child)
		node = child
	}
	//
	text, err := yaml.Marshal(root)
	if err != nil {
		return err
	}
	//
	if err := c.decode(bytes.NewReader(text)); err != nil {
		return errors.Wrapf(err, "setting %s=%s", key, value)
	}
	//
	return nil
}

// SetAll applies zero or more overrides of the form "key=value".
func (c *Config) SetAll(overrides []string) error {
	for _, o := range overrides {
		key, value, ok := strings.Cut(o, "=")
		//
		if !ok {
			return errors.Errorf("invalid override %q (expected key=value)", o)
		} else if err := c.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return err
		}
	}
	//
	return nil
}

// Validate checks this configuration is consistent.
func (c *Config) Validate() error {
	switch {
	case c.Prover.Min > c.Prover.Max:
		return errors.Errorf("empty prover domain [%d,%d]", c.Prover.Min, c.Prover.Max)
	case c.BDD.Varnum <= 0 || c.BDD.Nodesize <= 0 || c.BDD.Cachesize <= 0:
		return errors.New("BDD sizes must be positive")
	case c.ShortestCexTraceUseSuffix && c.ShortestCexTraceZigZag:
		return errors.New("shortestCexTraceUseSuffix and shortestCexTraceZigZag are mutually exclusive")
	case c.Refinement.AddPredicatesGlobally && c.Refinement.UseBlastWay:
		return errors.New("refinement.addPredicatesGlobally and refinement.useBlastWay are mutually exclusive")
	}
	//
	return nil
}

// AbstractionOptions returns the options for computing abstractions.
func (c *Config) AbstractionOptions() abstraction.Options {
	return abstraction.Options{
		Cartesian:            c.Abstraction.Cartesian,
		UseCache:             c.UseCache,
		CartesianCacheSize:   c.Cache.CartesianSize,
		FeasibilityCacheSize: c.Cache.FeasibilitySize,
		BooleanCacheSize:     c.Cache.BooleanSize,
	}
}

// CegarOptions returns the options for analysis and refinement.
func (c *Config) CegarOptions() cegar.Options {
	return cegar.Options{
		ShortestCexTrace:          c.ShortestCexTrace,
		ShortestCexTraceUseSuffix: c.ShortestCexTraceUseSuffix,
		ShortestCexTraceZigZag:    c.ShortestCexTraceZigZag,
		AddWellScopedPredicates:   c.Refinement.AddWellScopedPredicates,
		SplitItpAtoms:             c.Refinement.SplitItpAtoms,
		AtomicPredicates:          c.Refinement.AtomicPredicates,
		AddPredicatesGlobally:     c.Refinement.AddPredicatesGlobally,
		UseBlastWay:               c.Refinement.UseBlastWay,
		MsatCexPath:               c.Refinement.MsatCexPath,
		BFS:                       c.Analysis.BFS,
		MaxRefinements:            c.Analysis.MaxRefinements,
	}
}

// Domain returns the integer domain of the bounded prover.
func (c *Config) Domain() bounded.Domain {
	return bounded.Domain{Min: c.Prover.Min, Max: c.Prover.Max}
}

// NewLattice constructs a lattice sized according to this configuration.
func (c *Config) NewLattice() (*abstraction.Lattice, error) {
	return abstraction.NewLattice(c.BDD.Varnum, c.BDD.Nodesize, c.BDD.Cachesize)
}

// NewAlgorithm wires together the components of the analysis for a given
// program.  The abstraction computer and the counterexample analyzer each
// receive their own prover.
func (c *Config) NewAlgorithm(program *cfa.CFA) (*cegar.Algorithm, error) {
	lattice, err := c.NewLattice()
	if err != nil {
		return nil, err
	}
	//
	computer, err := abstraction.NewComputer(c.AbstractionOptions(), lattice, bounded.NewProver(c.Domain()))
	if err != nil {
		return nil, err
	}
	//
	options := c.CegarOptions()
	analyzer := cegar.NewAnalyzer(options, predicate.NewManager(), bounded.NewProver(c.Domain()),
		bounded.NewInterpolatingProver(c.Domain()))
	//
	return cegar.NewAlgorithm(options, program, computer, analyzer), nil
}

func (c *Config) String() string {
	var buf bytes.Buffer
	//
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	//
	if err := encoder.Encode(c); err != nil {
		return err.Error()
	}
	//
	return buf.String()
}

// decode reads options from a YAML document, rejecting unknown options.  An
// empty document leaves every option unchanged.
func (c *Config) decode(r io.Reader) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	//
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	//
	return nil
}
