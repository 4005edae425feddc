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

	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [flags]",
	Short: "print the effective configuration.",
	Long: `Print the configuration resulting from the defaults, an optional
configuration file and any individual overrides.  The output can itself be
used as a configuration file.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(readConfig(cmd))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringP("config", "c", "", "read options from a given YAML file")
	configCmd.Flags().StringArrayP("option", "o", []string{}, "override a given option")
}
