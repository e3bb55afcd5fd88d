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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"github.com/vbauerster/mpb/v8"
	"golang.org/x/term"

	"github.com/yugabyte/dump-anonymizer/src/config"
	"github.com/yugabyte/dump-anonymizer/src/dumpfile"
	"github.com/yugabyte/dump-anonymizer/src/errorpolicy"
	"github.com/yugabyte/dump-anonymizer/src/transformer"
	"github.com/yugabyte/dump-anonymizer/src/utils"
)

var (
	inputDir     string
	outputDir    string
	seed         int64
	disablePb    bool
	startClean   bool
	tableListStr string
	errorPolicy  string
)

var anonymizeCmd = &cobra.Command{
	Use:   "anonymize",
	Short: "Rewrite the CSV dump files listed in the config file with fake data.",
	Long: `Rewrite the CSV dump files listed in the config file with fake data.

Variables from the config are resolved once, in order, before the first table. Named objects
such as @User(u) live for one row unless the table sets forget-per-row: false. A directive
that cannot be resolved stops the run with exit status 9, and generator names are checked
before the first row is written.

With --seed the output is reproducible, except for @iso8601Recent: its timestamps are
drawn from the three months before the run started.`,

	PreRun: func(cmd *cobra.Command, args []string) {
		validateAnonymizeFlags()
		lockOutputDir(outputDir)
	},

	Run: anonymizeCommandFn,
}

func init() {
	rootCmd.AddCommand(anonymizeCmd)

	anonymizeCmd.Flags().StringVarP(&inputDir, "input-dir", "i", "",
		"directory holding the CSV dump files named in the config")
	anonymizeCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "",
		"directory where the anonymized CSV files and the run report are written")
	anonymizeCmd.Flags().Int64Var(&seed, "seed", 0,
		"seed for deterministic output; the same dump, config and seed give the same result")
	anonymizeCmd.Flags().BoolVar(&disablePb, "disable-pb", false,
		"disable progress bars (always off when stdout is not a terminal)")
	anonymizeCmd.Flags().BoolVar(&startClean, "start-clean", false,
		"overwrite the results of a previous run in the output-dir")
	anonymizeCmd.Flags().StringVar(&tableListStr, "table-list", "",
		"comma separated list of the configured tables to anonymize (default all)")
	anonymizeCmd.Flags().StringVar(&errorPolicy, "error-policy", errorpolicy.AbortErrorPolicyName,
		fmt.Sprintf("what to do with dump rows that cannot be parsed. Possible values: %s. "+
			"Unresolvable directives always stop the run.", strings.Join(errorpolicy.Names(), ", ")))
}

func validateAnonymizeFlags() {
	if !errorpolicy.IsValidName(errorPolicy) {
		utils.ErrExit("invalid --error-policy %q. Possible values: %s", errorPolicy, strings.Join(errorpolicy.Names(), ", "))
	}
	if inputDir == "" {
		utils.ErrExit(`ERROR: required flag "input-dir" not set`)
	}
	if !utils.FileOrFolderExists(inputDir) {
		utils.ErrExit("input-dir %q doesn't exist.\n", inputDir)
	}
	if utils.IsDirectoryEmpty(inputDir) {
		utils.ErrExit("input-dir %q is empty.\n", inputDir)
	}
	if outputDir == "" {
		utils.ErrExit(`ERROR: required flag "output-dir" not set`)
	}
	err := os.MkdirAll(outputDir, 0755)
	if err != nil {
		utils.ErrExit("create output-dir %q: %v", outputDir, err)
	}
	reportFile := dumpfile.ReportFile(outputDir)
	if utils.FileOrFolderExists(reportFile.FilePath) {
		if !startClean {
			utils.ErrExit("output-dir %q already holds the results of a previous run. Use --start-clean to overwrite it.", outputDir)
		}
		err = reportFile.Delete()
		if err != nil {
			utils.ErrExit("remove previous report %q: %v", reportFile.FilePath, err)
		}
		// stashed rows of the previous run would otherwise be mixed with this run's
		utils.CleanDir(filepath.Join(outputDir, dumpfile.ERRORS_DIR_NAME))
	}
}

func anonymizeCommandFn(cmd *cobra.Command, args []string) {
	dumpConfig, err := config.LoadDumpConfig(configViper)
	if err != nil {
		utils.ErrExit("load dump config: %v", err)
	}
	if config.IsLogLevelDebugOrBelow() {
		log.Debugf("dump config:\n%s", spew.Sdump(dumpConfig))
	}
	tables, err := selectTables(dumpConfig.Tables, tableListStr)
	if err != nil {
		utils.ErrExit("%v", err)
	}

	startedAt := time.Now()
	engine := transformer.NewEngine(transformer.WithClock(func() time.Time { return startedAt }))
	report := &dumpfile.Report{StartedAt: startedAt}
	if cmd.Flags().Changed("seed") {
		engine.Seed(seed)
		report.Seed = lo.ToPtr(seed)
	}
	exitOnError(checkDirectives(engine, dumpConfig.Variables, tables))
	exitOnError(defineVariables(engine, dumpConfig.Variables))

	err = dumpfile.StartReport(outputDir, report)
	if err != nil {
		utils.ErrExit("write anonymization report: %v", err)
	}
	progress := newProgressContainer(cmd.OutOrStdout())
	anonymizer := dumpfile.NewAnonymizer(engine, inputDir, outputDir, progress, progress == nil)
	policy, _ := errorpolicy.NewErrorPolicy(errorPolicy)
	anonymizer.SetErrorPolicy(policy)
	_, err = anonymizer.AnonymizeTables(tables)
	if progress != nil {
		progress.Wait()
	}
	exitOnError(err)

	report, err = dumpfile.CompleteReport(outputDir, time.Now())
	if err != nil {
		utils.ErrExit("write anonymization report: %v", err)
	}
	printAnonymizationSummary(cmd.OutOrStdout(), report)
}

// checkDirectives rejects unknown generator names before any output is written.
func checkDirectives(engine *transformer.Engine, variables []config.Variable, tables []config.Table) error {
	for _, variable := range variables {
		err := engine.Check(variable.Value)
		if err != nil {
			return fmt.Errorf("variable %q: %w", variable.Name, err)
		}
	}
	for _, table := range tables {
		for _, column := range table.Columns {
			err := engine.Check(column.Directive)
			if err != nil {
				return fmt.Errorf("table %s, column %s: %w", table.Name, column.Name, err)
			}
		}
	}
	return nil
}

// exitOnError terminates with status 9 for unresolvable directives and 1 for anything else.
func exitOnError(err error) {
	if err == nil {
		return
	}
	transformer.ExitOnFatal(err)
	utils.ErrExit("%v", err)
}

func defineVariables(engine *transformer.Engine, variables []config.Variable) error {
	for _, variable := range variables {
		err := engine.Set(variable.Name, variable.Value)
		if err != nil {
			return err
		}
	}
	log.Infof("defined %d variables", len(variables))
	return nil
}

func selectTables(tables []config.Table, tableList string) ([]config.Table, error) {
	if tableList == "" {
		return tables, nil
	}
	var selected []config.Table
	var unknown []string
	for _, name := range utils.CsvStringToSlice(tableList) {
		table, found := lo.Find(tables, func(t config.Table) bool { return t.Name == name })
		if !found {
			unknown = append(unknown, name)
			continue
		}
		selected = append(selected, table)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("tables %v in --table-list are not in the config", unknown)
	}
	return selected, nil
}

func newProgressContainer(w io.Writer) *mpb.Progress {
	if disablePb || !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil
	}
	container := mpb.New(mpb.WithOutput(w))
	atexit.Register(func() {
		container.Shutdown()
	})
	return container
}

func printAnonymizationSummary(w io.Writer, report *dumpfile.Report) {
	headerfmt := color.New(color.FgGreen, color.Underline).SprintFunc()
	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow(headerfmt("TABLE"), headerfmt("ROWS"), headerfmt("MALFORMED"), headerfmt("SIZE"), headerfmt("COLUMNS"), headerfmt("OUTPUT FILE"))
	for _, t := range report.Tables {
		table.AddRow(t.Table, humanize.Comma(t.Rows), humanize.Comma(t.MalformedRows), humanize.Bytes(uint64(t.Bytes)),
			len(t.Columns), displayPath(t.OutputFile))
	}

	seedLine := warnLine("no seed set, output is not reproducible")
	if report.Seed != nil {
		seedLine = formatKeyValue("Seed:", fmt.Sprint(*report.Seed), 10)
	}
	lines := []string{
		successLine(fmt.Sprintf("%d tables, %s rows in %s", len(report.Tables), humanize.Comma(report.TotalRows()),
			report.CompletedAt.Sub(report.StartedAt).Round(time.Millisecond))),
		seedLine,
		formatKeyValue("Report:", displayPath(dumpfile.ReportFile(outputDir).FilePath), 10),
	}
	if malformed := report.TotalMalformedRows(); malformed > 0 {
		lines = append(lines, warnLine(fmt.Sprintf("%s malformed rows stashed under %s", humanize.Comma(malformed),
			displayPath(filepath.Join(outputDir, dumpfile.ERRORS_DIR_NAME)))))
	}
	printSection(w, "Anonymization complete", lines...)
	fmt.Fprintln(w)
	fmt.Fprintln(w, table)
}
