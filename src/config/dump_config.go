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
package config

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	goerrors "github.com/go-errors/errors"
	"github.com/spf13/viper"
)

/*
DumpConfig describes how a dump is anonymized. Example:

	seed: 42
	variables:
	  - name: password
	    value: "@password"
	tables:
	  - name: users
	    file: users.csv
	    columns:
	      - name: email
	        directive: "@User(u).email"

Variables and columns are lists, not maps, so that definition order is kept and
viper does not lower-case the names.
*/
type DumpConfig struct {
	Seed      *int64     `mapstructure:"seed"`
	Variables []Variable `mapstructure:"variables"`
	Tables    []Table    `mapstructure:"tables"`
}

type Variable struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

type Table struct {
	Name string `mapstructure:"name"`
	File string `mapstructure:"file"`
	// named objects live for one row unless this is explicitly false
	ForgetPerRow *bool    `mapstructure:"forget-per-row"`
	Columns      []Column `mapstructure:"columns"`
}

// Column maps a CSV column to its directive. An empty directive blanks the column.
type Column struct {
	Name      string `mapstructure:"name"`
	Directive string `mapstructure:"directive"`
}

func (t *Table) ForgetObjectsPerRow() bool {
	return t.ForgetPerRow == nil || *t.ForgetPerRow
}

// DirectiveFor returns the directive configured for column, if any.
func (t *Table) DirectiveFor(column string) (string, bool) {
	for _, c := range t.Columns {
		if c.Name == column {
			return c.Directive, true
		}
	}
	return "", false
}

// LoadDumpConfig decodes and validates the dump config held by v.
func LoadDumpConfig(v *viper.Viper) (*DumpConfig, error) {
	var cfg DumpConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode dump config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *DumpConfig) Validate() error {
	var problems []string

	variableNames := mapset.NewThreadUnsafeSet[string]()
	for i, variable := range c.Variables {
		switch {
		case variable.Name == "":
			problems = append(problems, fmt.Sprintf("variables[%d]: name is required", i))
		case strings.HasPrefix(variable.Name, "$"):
			problems = append(problems, fmt.Sprintf("variables[%d]: name %q must not include the $ sigil", i, variable.Name))
		case !variableNames.Add(variable.Name):
			problems = append(problems, fmt.Sprintf("variables[%d]: duplicate variable %q", i, variable.Name))
		}
	}

	tableNames := mapset.NewThreadUnsafeSet[string]()
	for i, table := range c.Tables {
		if table.Name == "" {
			problems = append(problems, fmt.Sprintf("tables[%d]: name is required", i))
		} else if !tableNames.Add(table.Name) {
			problems = append(problems, fmt.Sprintf("tables[%d]: duplicate table %q", i, table.Name))
		}
		if table.File == "" {
			problems = append(problems, fmt.Sprintf("tables[%d] (%s): file is required", i, table.Name))
		}
		columnNames := mapset.NewThreadUnsafeSet[string]()
		for j, column := range table.Columns {
			if column.Name == "" {
				problems = append(problems, fmt.Sprintf("tables[%d].columns[%d]: name is required", i, j))
			} else if !columnNames.Add(column.Name) {
				problems = append(problems, fmt.Sprintf("tables[%d].columns[%d]: duplicate column %q", i, j, column.Name))
			}
		}
	}

	if len(problems) > 0 {
		return goerrors.Errorf("invalid dump config:\n\t%s", strings.Join(problems, "\n\t"))
	}
	return nil
}
