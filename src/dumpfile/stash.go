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
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

const ERRORS_DIR_NAME = "errors"

// rowStash collects the raw bytes of dump rows that could not be parsed.
// The file is only created once the first row is stashed.
type rowStash struct {
	path  string
	file  *os.File
	count int64
}

func newRowStash(outputDir string, dumpFile string) *rowStash {
	return &rowStash{path: filepath.Join(outputDir, ERRORS_DIR_NAME, filepath.Base(dumpFile))}
}

func (s *rowStash) stash(raw []byte, cause error) error {
	if s.file == nil {
		err := os.MkdirAll(filepath.Dir(s.path), 0755)
		if err != nil {
			return fmt.Errorf("create errors dir: %w", err)
		}
		s.file, err = os.Create(s.path)
		if err != nil {
			return fmt.Errorf("create error file %q: %w", s.path, err)
		}
	}
	log.Warnf("stashing malformed row to %q: %v", s.path, cause)
	if len(raw) > 0 && raw[len(raw)-1] != '\n' {
		raw = append(raw, '\n')
	}
	_, err := s.file.Write(raw)
	if err != nil {
		return fmt.Errorf("write error file %q: %w", s.path, err)
	}
	s.count++
	return nil
}

// File returns the stash path, or "" when nothing was stashed.
func (s *rowStash) File() string {
	if s.count == 0 {
		return ""
	}
	return s.path
}

func (s *rowStash) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
