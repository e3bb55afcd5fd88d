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
package dumpfile

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/vbauerster/mpb/v8"

	"github.com/yugabyte/dump-anonymizer/src/config"
	"github.com/yugabyte/dump-anonymizer/src/errorpolicy"
	"github.com/yugabyte/dump-anonymizer/src/generator"
)

// RowTransformer is the part of the directive engine the dump pipeline needs.
type RowTransformer interface {
	Transform(value any, raw string) (any, error)
	ForgetObjects()
}

type Anonymizer struct {
	engine      RowTransformer
	inputDir    string
	outputDir   string
	progress    *mpb.Progress
	disablePb   bool
	errorPolicy errorpolicy.ErrorPolicy
}

func NewAnonymizer(engine RowTransformer, inputDir string, outputDir string, progress *mpb.Progress, disablePb bool) *Anonymizer {
	return &Anonymizer{
		engine:    engine,
		inputDir:  inputDir,
		outputDir: outputDir,
		progress:  progress,
		disablePb: disablePb,
	}
}

// SetErrorPolicy chooses what happens to rows that cannot be parsed. The default is to abort.
func (a *Anonymizer) SetErrorPolicy(policy errorpolicy.ErrorPolicy) {
	a.errorPolicy = policy
}

// AnonymizeTables processes the tables in order and stops at the first failure.
// The reports of the tables completed before the failure are still returned.
func (a *Anonymizer) AnonymizeTables(tables []config.Table) ([]TableReport, error) {
	var reports []TableReport
	for i := range tables {
		report, err := a.AnonymizeFile(&tables[i])
		if err != nil {
			return reports, err
		}
		reports = append(reports, *report)
		err = RecordTable(a.outputDir, *report)
		if err != nil {
			return reports, fmt.Errorf("record table %s in report: %w", tables[i].Name, err)
		}
	}
	return reports, nil
}

/*
AnonymizeFile rewrites the CSV dump of one table. The first record is the header; it is
copied unchanged and used to locate the configured columns. Columns without a directive
are copied verbatim. Rows that cannot be parsed abort the table, or are copied raw to
<output-dir>/errors/ under the StashAndContinue policy. On failure the partially written
output file is removed.
*/
func (a *Anonymizer) AnonymizeFile(table *config.Table) (*TableReport, error) {
	inputPath, outputPath := a.paths(table.File)
	if inputPath == outputPath {
		return nil, fmt.Errorf("table %s: output file %q would overwrite the input", table.Name, outputPath)
	}
	log.Infof("anonymizing table %q: %q -> %q", table.Name, inputPath, outputPath)

	report, err := a.anonymizeFile(table, inputPath, outputPath)
	if err != nil {
		if removeErr := os.Remove(outputPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			log.Warnf("remove partial output %q: %v", outputPath, removeErr)
		}
		return nil, err
	}
	log.Infof("anonymized table %q: %d rows", table.Name, report.Rows)
	return report, nil
}

func (a *Anonymizer) anonymizeFile(table *config.Table, inputPath string, outputPath string) (*TableReport, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open dump file for table %s: %w", table.Name, err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", inputPath, err)
	}

	err = os.MkdirAll(filepath.Dir(outputPath), 0755)
	if err != nil {
		return nil, fmt.Errorf("create output dir for %q: %w", outputPath, err)
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file for table %s: %w", table.Name, err)
	}
	defer out.Close()

	bufWriter := bufio.NewWriter(out)
	writer := csv.NewWriter(bufWriter)
	reader := csv.NewReader(bufio.NewReader(in))

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("table %s: dump file %q has no header", table.Name, inputPath)
	} else if err != nil {
		return nil, fmt.Errorf("table %s: read header: %w", table.Name, err)
	}
	targets, err := resolveColumns(table, header)
	if err != nil {
		return nil, err
	}
	if err = writer.Write(header); err != nil {
		return nil, fmt.Errorf("table %s: write header: %w", table.Name, err)
	}

	pr := NewProgressReporter(a.progress, table.Name, a.disablePb)
	pr.SetTotalBytes(info.Size(), false)
	completed := false
	defer func() {
		if !completed {
			pr.Abort()
		}
	}()

	stash := newRowStash(a.outputDir, outputPath)
	defer stash.Close()

	var rows int64
	for {
		startOffset := reader.InputOffset()
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			rowNum := rows + stash.count + 1
			var parseErr *csv.ParseError
			if a.errorPolicy != errorpolicy.StashAndContinueErrorPolicy || !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("table %s: read row %d: %w", table.Name, rowNum, err)
			}
			raw, readErr := readRawRow(in, startOffset, reader.InputOffset())
			if readErr != nil {
				return nil, fmt.Errorf("table %s: row %d: %w", table.Name, rowNum, readErr)
			}
			if err = stash.stash(raw, err); err != nil {
				return nil, fmt.Errorf("table %s: %w", table.Name, err)
			}
			pr.SetProcessedBytes(reader.InputOffset())
			continue
		}
		if table.ForgetObjectsPerRow() {
			a.engine.ForgetObjects()
		}
		for _, target := range targets {
			value, err := a.engine.Transform(record[target.index], target.directive)
			if err != nil {
				return nil, fmt.Errorf("table %s, row %d, column %s: %w", table.Name, rows+1, target.name, err)
			}
			record[target.index] = generator.Stringify(value)
		}
		if err = writer.Write(record); err != nil {
			return nil, fmt.Errorf("table %s: write row %d: %w", table.Name, rows+1, err)
		}
		rows++
		pr.SetProcessedBytes(reader.InputOffset())
	}

	writer.Flush()
	if err = writer.Error(); err != nil {
		return nil, fmt.Errorf("table %s: flush output: %w", table.Name, err)
	}
	if err = bufWriter.Flush(); err != nil {
		return nil, fmt.Errorf("table %s: flush output: %w", table.Name, err)
	}
	pr.SetTotalBytes(info.Size(), true)
	completed = true

	return &TableReport{
		Table:         table.Name,
		File:          inputPath,
		OutputFile:    outputPath,
		Rows:          rows,
		MalformedRows: stash.count,
		ErrorFile:     stash.File(),
		Bytes:         info.Size(),
		Columns: lo.Map(targets, func(target columnTarget, _ int) string {
			return target.name
		}),
	}, nil
}

// readRawRow returns the bytes of the input between two csv reader offsets.
func readRawRow(in *os.File, startOffset int64, endOffset int64) ([]byte, error) {
	buf := make([]byte, endOffset-startOffset)
	_, err := in.ReadAt(buf, startOffset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read %q [%d:%d]: %w", in.Name(), startOffset, endOffset, err)
	}
	return buf, nil
}

type columnTarget struct {
	name      string
	index     int
	directive string
}

// resolveColumns maps configured columns to header positions, preserving config order.
func resolveColumns(table *config.Table, header []string) ([]columnTarget, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := positions[name]; !ok {
			positions[name] = i
		}
	}
	var missing []string
	targets := make([]columnTarget, 0, len(table.Columns))
	for _, column := range table.Columns {
		idx, ok := positions[column.Name]
		if !ok {
			missing = append(missing, column.Name)
			continue
		}
		targets = append(targets, columnTarget{name: column.Name, index: idx, directive: column.Directive})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("table %s: configured columns %v not found in header %v", table.Name, missing, header)
	}
	return targets, nil
}

func (a *Anonymizer) paths(file string) (string, string) {
	if filepath.IsAbs(file) {
		return filepath.Clean(file), filepath.Join(a.outputDir, filepath.Base(file))
	}
	return filepath.Join(a.inputDir, file), filepath.Join(a.outputDir, file)
}
