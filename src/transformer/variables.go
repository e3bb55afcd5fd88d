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
package transformer

import "github.com/yugabyte/dump-anonymizer/src/directive"

// VariableStore holds resolved variable values keyed by name with the sigil, e.g. "$password".
type VariableStore struct {
	values map[string]any
}

func NewVariableStore() *VariableStore {
	return &VariableStore{values: make(map[string]any)}
}

func variableKey(name string) string {
	return directive.VARIABLE_SIGIL + name
}

func (s *VariableStore) Put(name string, value any) {
	s.values[variableKey(name)] = value
}

// Get looks up a key as written in a directive, sigil included.
func (s *VariableStore) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *VariableStore) Len() int {
	return len(s.values)
}

func (s *VariableStore) Forget() {
	s.values = make(map[string]any)
}
