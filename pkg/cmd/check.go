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
package cmd

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"

	"github.com/consensys/go-cegar/pkg/cegar"
	"github.com/consensys/go-cegar/pkg/util"
	"github.com/consensys/go-cegar/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [flags] program.cfa",
	Short: "check whether the error locations of a program are reachable.",
	Long: `Check whether any error location of a given control-flow automaton is
reachable, by repeatedly exploring an abstraction of the program and refining
it along spurious counterexamples.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		stats := util.NewPerfStats()
		cfg := readConfig(cmd)
		program := readProgram(args[0])
		//
		log.Debugf("configuration:\n%s", cfg)
		//
		alg, err := cfg.NewAlgorithm(program)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		// Interrupts abort the analysis, but still report statistics.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		//
		if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			//
			defer cancel()
		}
		//
		outcome := alg.Run(ctx)
		ansi := termio.IsTerminal(os.Stdout)
		//
		stats.Log("Analysis")
		printOutcome(os.Stdout, ansi, alg, outcome)
		//
		if getFlag(cmd, "stats") {
			s := alg.Stats()
			printStats(os.Stdout, ansi, &s)
		}
		//
		switch outcome.Verdict {
		case cegar.Unsafe:
			os.Exit(1)
		case cegar.Unknown:
			os.Exit(3)
		}
	},
}

// Print the outcome of an analysis.  For an unsafe program, this includes the
// path to the error location along with a satisfying assignment (when one is
// available).
func printOutcome(w io.Writer, ansi bool, alg *cegar.Algorithm, outcome *cegar.Outcome) {
	var escape = termio.BoldAnsiEscape()
	//
	switch outcome.Verdict {
	case cegar.Safe:
		escape = escape.FgColour(termio.TERM_GREEN)
	case cegar.Unsafe:
		escape = escape.FgColour(termio.TERM_RED)
	default:
		escape = escape.FgColour(termio.TERM_YELLOW)
	}
	//
	fmt.Fprintln(w, termio.Colour(outcome.String(), escape, ansi))
	//
	if outcome.Verdict != cegar.Unsafe {
		return
	}
	//
	for _, elem := range outcome.Path {
		node := alg.Tree().Node(elem.Node)
		//
		if elem.Edge != nil {
			fmt.Fprintf(w, "  %s: %s\n", node, elem.Edge)
		} else {
			fmt.Fprintf(w, "  %s\n", node)
		}
	}
	//
	if outcome.Witness == nil || len(outcome.Witness.Model) == 0 {
		return
	}
	//
	fmt.Fprintln(w, "with:")
	//
	for _, name := range slices.Sorted(maps.Keys(outcome.Witness.Model)) {
		fmt.Fprintf(w, "  %s = %d\n", name, outcome.Witness.Model[name])
	}
}

// Print the statistics of an analysis as a table.
func printStats(w io.Writer, ansi bool, stats *cegar.Stats) {
	var (
		rows = stats.Rows()
		tp   = termio.NewTablePrinter(2, uint(len(rows)))
	)
	//
	for i, row := range rows {
		tp.SetRow(uint(i), fmt.Sprint(row[0]), fmt.Sprint(row[1]))
		tp.SetEscape(0, uint(i), termio.NewAnsiEscape().FgColour(termio.TERM_WHITE))
	}
	//
	tp.AnsiEscapes(ansi)
	tp.Print(w)
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringP("config", "c", "", "read options from a given YAML file")
	checkCmd.Flags().StringArrayP("option", "o", []string{}, "override a given option (e.g. -o refinement.splitItpAtoms=true)")
	checkCmd.Flags().Bool("stats", false, "report statistics of the analysis")
	checkCmd.Flags().Duration("timeout", 0, "abort the analysis after a given duration")
}
