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
package jsonfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/yugabyte/dump-anonymizer/src/utils"
)

// JsonFile persists a single value of type T as indented JSON.
type JsonFile[T any] struct {
	sync.Mutex
	FilePath string
}

func NewJsonFile[T any](filePath string) *JsonFile[T] {
	return &JsonFile[T]{FilePath: filePath}
}

// Create writes obj, creating the parent directory when needed and replacing any previous content.
func (j *JsonFile[T]) Create(obj *T) error {
	j.Lock()
	defer j.Unlock()
	err := os.MkdirAll(filepath.Dir(j.FilePath), 0755)
	if err != nil {
		return fmt.Errorf("create dir for %s: %w", j.FilePath, err)
	}
	return j.write(obj)
}

func (j *JsonFile[T]) Read() (*T, error) {
	j.Lock()
	defer j.Unlock()
	return j.read()
}

func (j *JsonFile[T]) read() (*T, error) {
	bs, err := os.ReadFile(j.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", j.FilePath, err)
	}
	if len(bs) == 0 {
		return nil, fmt.Errorf("file %s is empty", j.FilePath)
	}
	obj := new(T)
	err = json.Unmarshal(bs, obj)
	if err != nil {
		return nil, fmt.Errorf("unmarshal json %s: %w", j.FilePath, err)
	}
	return obj, nil
}

// Update applies fn to the stored value (a zero T when the file is absent) and writes it back.
func (j *JsonFile[T]) Update(fn func(*T)) error {
	j.Lock()
	defer j.Unlock()
	obj := new(T)
	if utils.FileOrFolderExists(j.FilePath) {
		var err error
		obj, err = j.read()
		if err != nil {
			return err
		}
	}
	fn(obj)
	return j.write(obj)
}

func (j *JsonFile[T]) write(obj *T) error {
	bs, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	err = os.WriteFile(j.FilePath, bs, 0644)
	if err != nil {
		return fmt.Errorf("write file %s: %w", j.FilePath, err)
	}
	return nil
}

func (j *JsonFile[T]) Delete() error {
	j.Lock()
	defer j.Unlock()
	return os.Remove(j.FilePath)
}
