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
	"fmt"
	"io"
	"os"

	"github.com/consensys/go-cegar/pkg/cfa"
	"github.com/spf13/cobra"
)

// cfaCmd represents the cfa command
var cfaCmd = &cobra.Command{
	Use:   "cfa [flags] program.cfa",
	Short: "print the control-flow automaton of a program.",
	Long:  `Print the functions, locations and edges of a given control-flow automaton.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		printProgram(os.Stdout, readProgram(args[0]))
	},
}

// Print every function of a program, one edge per line.  Entry, exit and error
// locations are marked.
func printProgram(w io.Writer, program *cfa.CFA) {
	for _, name := range program.Globals() {
		fmt.Fprintf(w, "global %s\n", name)
	}
	//
	for _, fn := range program.Functions() {
		fmt.Fprintf(w, "function %s(", fn.Name)
		//
		for i, param := range fn.Params {
			if i != 0 {
				fmt.Fprint(w, ", ")
			}
			//
			fmt.Fprint(w, param)
		}
		//
		fmt.Fprint(w, ")")
		//
		if fn.ReturnVar != "" {
			fmt.Fprintf(w, " returns %s", fn.ReturnVar)
		}
		//
		fmt.Fprintln(w)
		//
		for _, loc := range fn.Locations() {
			fmt.Fprintf(w, "  %d%s\n", loc.Label, locationKind(loc))
			//
			for _, edge := range loc.Leaving() {
				fmt.Fprintf(w, "    -> %s: %s\n", edge.Target(), edge)
			}
		}
	}
}

func locationKind(loc *cfa.Location) string {
	switch {
	case loc.IsError():
		return " (error)"
	case loc.IsEntry():
		return " (entry)"
	case loc.IsExit():
		return " (exit)"
	default:
		return ""
	}
}

func init() {
	rootCmd.AddCommand(cfaCmd)
}
