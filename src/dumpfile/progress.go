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
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// ProgressReporter tracks how many bytes of a dump file have been anonymized.
type ProgressReporter interface {
	SetTotalBytes(total int64, triggerComplete bool)
	SetProcessedBytes(processed int64)
	IsComplete() bool
	// Abort stops reporting for a file that will not complete.
	Abort()
}

func NewProgressReporter(progressContainer *mpb.Progress, tableName string, disablePb bool) ProgressReporter {
	if disablePb || progressContainer == nil {
		return &silentProgressReporter{}
	}
	return newBarProgressReporter(progressContainer, tableName)
}

type barProgressReporter struct {
	bar *mpb.Bar
}

func newBarProgressReporter(progressContainer *mpb.Progress, tableName string) *barProgressReporter {
	bar := progressContainer.AddBar(int64(0), // total is set once the file size is known
		mpb.BarFillerClearOnComplete(),
		mpb.BarRemoveOnComplete(),
		mpb.PrependDecorators(
			decor.Name(tableName),
		),
		mpb.AppendDecorators(
			decor.OnComplete(
				decor.NewPercentage("%.2f", decor.WCSyncSpaceR), "completed",
			),
		),
	)
	return &barProgressReporter{bar: bar}
}

func (pr *barProgressReporter) SetTotalBytes(total int64, triggerComplete bool) {
	pr.bar.SetTotal(total, triggerComplete)
}

func (pr *barProgressReporter) SetProcessedBytes(processed int64) {
	pr.bar.SetCurrent(processed)
}

func (pr *barProgressReporter) IsComplete() bool {
	return pr.bar.Completed()
}

func (pr *barProgressReporter) Abort() {
	pr.bar.Abort(true)
}

// silentProgressReporter keeps the counters without drawing anything, for --disable-pb.
type silentProgressReporter struct {
	total           int64
	processed       int64
	completed       bool
	triggerComplete bool
}

func (pr *silentProgressReporter) SetTotalBytes(total int64, triggerComplete bool) {
	pr.triggerComplete = triggerComplete
	if total < 0 {
		pr.total = pr.processed
	} else {
		pr.total = total
	}
	if triggerComplete && !pr.completed {
		pr.completed = true
		pr.processed = pr.total
	}
}

func (pr *silentProgressReporter) SetProcessedBytes(processed int64) {
	if processed < 0 {
		processed = 0
	}
	pr.processed = processed
	if pr.triggerComplete && pr.processed >= pr.total {
		pr.processed = pr.total
		pr.completed = true
	}
}

func (pr *silentProgressReporter) IsComplete() bool {
	return pr.completed
}

func (pr *silentProgressReporter) Abort() {}
