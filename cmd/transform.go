/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yugabyte/dump-anonymizer/src/config"
	"github.com/yugabyte/dump-anonymizer/src/generator"
	"github.com/yugabyte/dump-anonymizer/src/transformer"
	"github.com/yugabyte/dump-anonymizer/src/utils"
)

var (
	transformValue  string
	transformSeed   int64
	transformRepeat int
	transformSets   []string
)

var transformCmd = &cobra.Command{
	Use:   "transform <directive>...",
	Short: "Evaluate replacement directives and print the results.",
	Long: `Evaluate replacement directives and print the results, one per line.

All directives of one invocation share a session: variables defined with --set (after the
variables of the config file) and named objects persist across them. With --seed the
results repeat from run to run, except for @iso8601Recent, which picks a time in the three
months before the run started.

Examples:
  dump-anonymizer transform @firstName '@paragraphs|2' '@User(bob).email' '@User(bob).fullName'
  dump-anonymizer transform --value 'Hello' @uppercase '@original|3'
  dump-anonymizer transform --seed 42 --set 'pwd=@password' '$pwd' '$pwd'`,
	Args: cobra.MinimumNArgs(1),

	Run: transformCommandFn,
}

func init() {
	rootCmd.AddCommand(transformCmd)

	transformCmd.Flags().StringVar(&transformValue, "value", "",
		"original value handed to the directives (used by @original, @uppercase, @lowercase)")
	transformCmd.Flags().Int64Var(&transformSeed, "seed", 0,
		"seed for deterministic output")
	transformCmd.Flags().IntVar(&transformRepeat, "repeat", 1,
		"evaluate the directive list this many times")
	transformCmd.Flags().StringArrayVar(&transformSets, "set", nil,
		"define a variable as name=directive before evaluating; may be repeated")
}

func transformCommandFn(cmd *cobra.Command, args []string) {
	if transformRepeat < 1 {
		utils.ErrExit("--repeat must be at least 1, got %d", transformRepeat)
	}
	startedAt := time.Now()
	engine := transformer.NewEngine(transformer.WithClock(func() time.Time { return startedAt }))
	if cmd.Flags().Changed("seed") {
		engine.Seed(transformSeed)
	}

	dumpConfig, err := config.LoadDumpConfig(configViper)
	if err != nil {
		utils.ErrExit("load dump config: %v", err)
	}
	exitOnError(defineVariables(engine, dumpConfig.Variables))
	for _, set := range transformSets {
		name, directive, ok := utils.ParseKeyValue(set)
		if !ok {
			utils.ErrExit("invalid --set %q: expected name=directive", set)
		}
		exitOnError(engine.Set(name, directive))
	}

	var value any
	if cmd.Flags().Changed("value") {
		value = transformValue
	}
	out := cmd.OutOrStdout()
	for i := 0; i < transformRepeat; i++ {
		for _, directive := range args {
			result, err := engine.Transform(value, directive)
			exitOnError(err)
			fmt.Fprintln(out, generator.Stringify(result))
		}
	}
}
