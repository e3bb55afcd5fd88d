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
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/yugabyte/dump-anonymizer/src/fakedata"
	"github.com/yugabyte/dump-anonymizer/src/generator"
	"github.com/yugabyte/dump-anonymizer/src/namedobj"
)

var generatorsCmd = &cobra.Command{
	Use:   "generators",
	Short: "List the generators, aliases and object types usable in directives.",
	Long: `List the generators, aliases and object types usable in directives.

Generator names are matched ignoring case; aliases are matched exactly. A built-in
routine wins over a fake-data generator of the same name.`,

	Run: func(cmd *cobra.Command, args []string) {
		printGenerators(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(generatorsCmd)
}

func printGenerators(w io.Writer) {
	headerfmt := color.New(color.FgGreen, color.Underline).SprintFunc()
	table := uitable.New()
	table.AddRow(headerfmt("DIRECTIVE"), headerfmt("KIND"), headerfmt("RESOLVES TO"))

	for _, name := range generator.BuiltinNames() {
		table.AddRow("@"+name, "built-in", "")
	}
	aliases := generator.Aliases()
	aliasNames := lo.Keys(aliases)
	sort.Strings(aliasNames)
	for _, alias := range aliasNames {
		table.AddRow("@"+alias, "alias", "@"+aliases[alias])
	}
	for _, name := range fakedata.Names() {
		table.AddRow("@"+name, "fake data", "")
	}
	for _, objectType := range namedobj.FactoryTypes() {
		table.AddRow(fmt.Sprintf("@%s(<name>).<field>", objectType), "object", "")
	}
	fmt.Fprintln(w, table)
}
