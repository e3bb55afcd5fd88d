//go:build unit

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
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugabyte/dump-anonymizer/src/dumpfile"
	"github.com/yugabyte/dump-anonymizer/src/transformer"
	"github.com/yugabyte/dump-anonymizer/src/utils"
)

type exitCode int

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// execute runs the CLI in-process with a private HOME so no user config is picked up.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(CONFIG_FILE_ENV_VAR, "")
	t.Cleanup(unlockOutputDir)

	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append(args, "--log-dir", t.TempDir()))
	err := rootCmd.Execute()
	return buf.String(), err
}

// executeExpectingExit runs the CLI and returns the status passed to the exit hook.
func executeExpectingExit(t *testing.T, args ...string) (code int) {
	t.Helper()
	utils.SetExitHook(func(c int) { panic(exitCode(c)) })
	defer utils.SetExitHook(nil)
	defer func() {
		r := recover()
		c, ok := r.(exitCode)
		require.True(t, ok, "expected the command to exit, recovered %v", r)
		code = int(c)
	}()
	_, _ = execute(t, args...)
	return -1
}

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestTransformCommandIsDeterministic(t *testing.T) {
	args := []string{"transform", "--seed", "42", "@firstName", "@User(bob).email", "@User(bob).email"}
	first, err := execute(t, args...)
	require.NoError(t, err)
	second, err := execute(t, args...)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	out := lines(first)
	require.Len(t, out, 3)
	assert.True(t, strings.HasSuffix(out[1], "-42@example.com"), out[1])
	assert.Equal(t, out[1], out[2])
}

func TestRecentTimestampsShareTheRunClock(t *testing.T) {
	out, err := execute(t, "transform", "--seed", "5", "--repeat", "20", "@iso8601Recent")
	require.NoError(t, err)
	var latest time.Time
	for _, line := range lines(out) {
		ts, err := time.Parse(time.RFC3339, line)
		require.NoError(t, err)
		if ts.After(latest) {
			latest = ts
		}
	}
	assert.False(t, latest.After(time.Now()))

	for _, c := range []*cobra.Command{transformCmd, anonymizeCmd} {
		assert.Contains(t, c.Long, "@iso8601Recent", c.Name())
	}
}

func TestTransformCommandValueAndVariables(t *testing.T) {
	out, err := execute(t, "transform", "--value", "Hello", "--set", "tenant=ACME", "--set", "copy=$tenant",
		"@uppercase", "@original|3", "$tenant", "$copy", "$unset", "literal")
	require.NoError(t, err)
	assert.Equal(t, []string{"HELLO", "Hel", "ACME", "ACME", "$unset", "literal"}, lines(out))
}

func TestTransformCommandRepeat(t *testing.T) {
	out, err := execute(t, "transform", "--repeat", "3", "--set", "pwd=@password", "$pwd")
	require.NoError(t, err)
	out3 := lines(out)
	require.Len(t, out3, 3)
	assert.Equal(t, out3[0], out3[1])
	assert.Equal(t, out3[0], out3[2])
}

func TestTransformCommandExitCodes(t *testing.T) {
	assert.Equal(t, transformer.FATAL_EXIT_CODE, executeExpectingExit(t, "transform", "@noSuchGenerator"))
	assert.EqualError(t, utils.ErrExitErr, "[error] Transformer not found, please fix and retry: [noSuchGenerator]")

	assert.Equal(t, transformer.FATAL_EXIT_CODE, executeExpectingExit(t, "transform", "@Spaceship(x).captain"))
	assert.Equal(t, transformer.FATAL_EXIT_CODE, executeExpectingExit(t, "transform", "--set", "x=@nope", "$x"))
	assert.Equal(t, 1, executeExpectingExit(t, "transform", "--set", "missing-equals", "@word"))
	assert.Equal(t, 1, executeExpectingExit(t, "transform", "--repeat", "0", "@word"))
}

func TestConfigSectionOverridesGlobalKey(t *testing.T) {
	configFile := writeFile(t, t.TempDir(), "config.yaml", `
seed: 1
transform:
  seed: 2
  value: from-config
`)
	out, err := execute(t, "transform", "--config-file", configFile, "@original")
	require.NoError(t, err)
	assert.Equal(t, int64(2), transformSeed)
	assert.Equal(t, "from-config\n", out)

	_, err = execute(t, "transform", "--config-file", configFile, "--seed", "7", "@word")
	require.NoError(t, err)
	assert.Equal(t, int64(7), transformSeed)
}

func TestConfigFileRejectsUnknownKeys(t *testing.T) {
	configFile := writeFile(t, t.TempDir(), "config.yaml", `
bogus: 1
anonymize:
  parallel-jobs: 4
export-data:
  table-list: a
`)
	_, err := execute(t, "transform", "--config-file", configFile, "@word")
	assert.ErrorContains(t, err, "found invalid configurations in config file")

	_, err = execute(t, "transform", "--config-file", filepath.Join(t.TempDir(), "missing.yaml"), "@word")
	assert.ErrorContains(t, err, "read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "transform", "--log-level", "loud", "@word")
	assert.ErrorContains(t, err, "invalid log level")
}

func setupAnonymizeRun(t *testing.T, bioDirective string) (string, string, string) {
	t.Helper()
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")
	writeFile(t, inputDir, "users.csv", "id,email,bio,tenant\n1,a@corp.com,hi,x\n2,b@corp.com,there,y\n")
	writeFile(t, inputDir, "orders.csv", "id,total\n1,10\n")
	configFile := writeFile(t, t.TempDir(), "config.yaml", fmt.Sprintf(`
seed: 3
variables:
  - name: tenant
    value: "@company"
tables:
  - name: users
    file: users.csv
    columns:
      - name: email
        directive: "@User(u).email"
      - name: bio
        directive: %q
      - name: tenant
        directive: "$tenant"
  - name: orders
    file: orders.csv
    columns:
      - name: total
        directive: "@numberBetween|1,9"
`, bioDirective))
	return configFile, inputDir, outputDir
}

func TestAnonymizeCommand(t *testing.T) {
	configFile, inputDir, outputDir := setupAnonymizeRun(t, "@uppercase")
	args := []string{"anonymize", "--config-file", configFile, "--input-dir", inputDir, "--output-dir", outputDir}

	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Anonymization complete")
	assert.Contains(t, out, "users")

	report, err := dumpfile.ReportFile(outputDir).Read()
	require.NoError(t, err)
	require.NotNil(t, report.Seed)
	assert.Equal(t, int64(3), *report.Seed)
	assert.Equal(t, int64(3), report.TotalRows())

	users, err := os.ReadFile(filepath.Join(outputDir, "users.csv"))
	require.NoError(t, err)
	rows := lines(string(users))
	require.Len(t, rows, 3)
	assert.Equal(t, "id,email,bio,tenant", rows[0])
	assert.Contains(t, rows[1], "-3@example.com,HI,")
	assert.Equal(t, rows[1][strings.LastIndex(rows[1], ","):], rows[2][strings.LastIndex(rows[2], ","):])

	// a second run refuses to overwrite unless asked to
	assert.Equal(t, 1, executeExpectingExit(t, args...))
	_, err = execute(t, append(args, "--start-clean")...)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(outputDir, LOCK_FILE_NAME))
	again, err := os.ReadFile(filepath.Join(outputDir, "users.csv"))
	require.NoError(t, err)
	assert.Equal(t, string(users), string(again))
}

func TestAnonymizeCommandTableList(t *testing.T) {
	configFile, inputDir, outputDir := setupAnonymizeRun(t, "@uppercase")
	_, err := execute(t, "anonymize", "--config-file", configFile, "--input-dir", inputDir,
		"--output-dir", outputDir, "--table-list", "orders")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outputDir, "orders.csv"))
	assert.NoFileExists(t, filepath.Join(outputDir, "users.csv"))

	assert.Equal(t, 1, executeExpectingExit(t, "anonymize", "--config-file", configFile, "--input-dir", inputDir,
		"--output-dir", filepath.Join(t.TempDir(), "out"), "--table-list", "orders,refunds"))
}

func TestAnonymizeCommandFatalDirective(t *testing.T) {
	configFile, inputDir, outputDir := setupAnonymizeRun(t, "@noSuchGenerator")
	code := executeExpectingExit(t, "anonymize", "--config-file", configFile, "--input-dir", inputDir, "--output-dir", outputDir)
	assert.Equal(t, transformer.FATAL_EXIT_CODE, code)
	assert.Contains(t, utils.ErrExitErr.Error(), "Transformer not found, please fix and retry: [noSuchGenerator]")
	assert.Contains(t, utils.ErrExitErr.Error(), "table users, column bio")
	// unknown generators are caught before anything is written
	assert.NoFileExists(t, filepath.Join(outputDir, "users.csv"))
	assert.NoFileExists(t, filepath.Join(outputDir, "orders.csv"))
	assert.NoFileExists(t, dumpfile.ReportFile(outputDir).FilePath)
}

func TestAnonymizeCommandRequiresDirs(t *testing.T) {
	assert.Equal(t, 1, executeExpectingExit(t, "anonymize", "--output-dir", t.TempDir()))
	assert.Equal(t, 1, executeExpectingExit(t, "anonymize", "--input-dir", t.TempDir()))
	assert.Equal(t, 1, executeExpectingExit(t, "anonymize", "--input-dir", filepath.Join(t.TempDir(), "nope"), "--output-dir", t.TempDir()))
	assert.Equal(t, 1, executeExpectingExit(t, "anonymize", "--input-dir", t.TempDir(), "--output-dir", t.TempDir()))
	assert.Contains(t, utils.ErrExitErr.Error(), "is empty")
}

func TestGeneratorsCommand(t *testing.T) {
	out, err := execute(t, "generators")
	require.NoError(t, err)
	for _, expected := range []string{"@avatarurl", "@lorem", "@sentence", "@safeemail", "@vehiclebrand", "@ean13", "@user(<name>).<field>"} {
		assert.Contains(t, out, expected)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "VERSION="+utils.DUMP_ANONYMIZER_VERSION)
}

func TestAnonymizeCommandErrorPolicy(t *testing.T) {
	configFile, inputDir, outputDir := setupAnonymizeRun(t, "@uppercase")
	writeFile(t, inputDir, "users.csv", "id,email,bio,tenant\n1,a@corp.com,hi,x\n2,broken\n")
	args := []string{"anonymize", "--config-file", configFile, "--input-dir", inputDir, "--output-dir", outputDir}

	assert.Equal(t, 1, executeExpectingExit(t, append(args, "--error-policy", "retry")...))
	assert.Equal(t, 1, executeExpectingExit(t, args...))
	// the aborted run leaves a report without a completion time
	partial, err := dumpfile.ReportFile(outputDir).Read()
	require.NoError(t, err)
	assert.True(t, partial.CompletedAt.IsZero())
	assert.Empty(t, partial.Tables)

	out, err := execute(t, append(args, "--start-clean", "--error-policy", "StashAndContinue")...)
	require.NoError(t, err)
	assert.Contains(t, out, "1 malformed rows stashed")
	report, err := dumpfile.ReportFile(outputDir).Read()
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.TotalMalformedRows())
	assert.False(t, report.CompletedAt.IsZero())
	stashFile := filepath.Join(outputDir, dumpfile.ERRORS_DIR_NAME, "users.csv")
	assert.FileExists(t, stashFile)

	// start-clean drops the rows stashed by the previous run
	writeFile(t, inputDir, "users.csv", "id,email,bio,tenant\n1,a@corp.com,hi,x\n")
	_, err = execute(t, append(args, "--start-clean", "--error-policy", "StashAndContinue")...)
	require.NoError(t, err)
	assert.NoFileExists(t, stashFile)
	assert.True(t, utils.IsDirectoryEmpty(filepath.Join(outputDir, dumpfile.ERRORS_DIR_NAME)))
}
