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
	"path/filepath"
	"time"

	"github.com/yugabyte/dump-anonymizer/src/utils/jsonfile"
)

const REPORT_FILE_NAME = "anonymization_report.json"

type Report struct {
	Seed        *int64        `json:"seed,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Tables      []TableReport `json:"tables"`
}

type TableReport struct {
	Table         string   `json:"table"`
	File          string   `json:"file"`
	OutputFile    string   `json:"output_file"`
	Rows          int64    `json:"rows"`
	MalformedRows int64    `json:"malformed_rows"`
	ErrorFile     string   `json:"error_file,omitempty"`
	Bytes         int64    `json:"bytes"`
	Columns       []string `json:"columns"`
}

func (r *Report) TotalRows() int64 {
	var total int64
	for _, t := range r.Tables {
		total += t.Rows
	}
	return total
}

func (r *Report) TotalMalformedRows() int64 {
	var total int64
	for _, t := range r.Tables {
		total += t.MalformedRows
	}
	return total
}

func ReportFile(outputDir string) *jsonfile.JsonFile[Report] {
	return jsonfile.NewJsonFile[Report](filepath.Join(outputDir, REPORT_FILE_NAME))
}

// StartReport replaces any report in outputDir with one holding only the run header.
func StartReport(outputDir string, report *Report) error {
	header := *report
	header.Tables = nil
	return ReportFile(outputDir).Create(&header)
}

// RecordTable appends one finished table to the report in outputDir, so the tables that
// completed before a failure stay on record.
func RecordTable(outputDir string, table TableReport) error {
	return ReportFile(outputDir).Update(func(r *Report) {
		r.Tables = append(r.Tables, table)
	})
}

// CompleteReport stamps the completion time and returns the report as stored.
func CompleteReport(outputDir string, completedAt time.Time) (*Report, error) {
	var report Report
	err := ReportFile(outputDir).Update(func(r *Report) {
		r.CompletedAt = completedAt
		report = *r
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}
