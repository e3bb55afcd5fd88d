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
package directive

import (
	"regexp"
	"strings"
)

type Kind int

const (
	LITERAL Kind = iota
	VARIABLE
	OBJECT_ACCESSOR
	GENERATOR
)

const (
	GENERATOR_SIGIL = "@"
	VARIABLE_SIGIL  = "$"

	MODIFIER_SEPARATOR      = "|"
	MODIFIER_LIST_SEPARATOR = ","
)

func (k Kind) String() string {
	switch k {
	case LITERAL:
		return "literal"
	case VARIABLE:
		return "variable"
	case OBJECT_ACCESSOR:
		return "object-accessor"
	case GENERATOR:
		return "generator"
	default:
		return "unknown"
	}
}

// Example: `@User(bob).email`
var reObjectAccessor = regexp.MustCompile(`^@(\w+)\((\w+)\)\.(.*)$`)

/*
Directive is the parsed form of a replacement directive.

	Literal:          plain text, returned as is
	Variable:         $name
	Object accessor:  @Type(name).accessor[|mod,...]
	Generator:        @generator[|mod1,mod2,...]

For object accessors, GeneratorName holds the accessor with its modifiers stripped,
which is the field name read off the named object.
*/
type Directive struct {
	Kind Kind
	Raw  string

	ObjectType string
	ObjectName string
	Accessor   string

	GeneratorName string
	Modifiers     []string
}

func Parse(raw string) *Directive {
	d := &Directive{Raw: raw}
	switch {
	case raw == "" || (!strings.HasPrefix(raw, GENERATOR_SIGIL) && !strings.HasPrefix(raw, VARIABLE_SIGIL)):
		d.Kind = LITERAL
		return d
	case strings.HasPrefix(raw, VARIABLE_SIGIL):
		d.Kind = VARIABLE
		return d
	}

	generatorExpr := raw
	if matches := reObjectAccessor.FindStringSubmatch(raw); matches != nil {
		d.Kind = OBJECT_ACCESSOR
		d.ObjectType = matches[1]
		d.ObjectName = matches[2]
		d.Accessor = matches[3]
		generatorExpr = GENERATOR_SIGIL + d.Accessor
	} else {
		d.Kind = GENERATOR
	}

	d.GeneratorName, d.Modifiers = splitModifiers(generatorExpr)
	return d
}

// VariableKey is the lookup key of a variable directive, sigil included.
func (d *Directive) VariableKey() string {
	if d.Kind != VARIABLE {
		return ""
	}
	return d.Raw
}

func (d *Directive) HasModifiers() bool {
	return len(d.Modifiers) > 0
}

func splitModifiers(expr string) (string, []string) {
	var modifiers []string
	name, tail, found := strings.Cut(expr, MODIFIER_SEPARATOR)
	if found {
		modifiers = strings.Split(tail, MODIFIER_LIST_SEPARATOR)
	}
	return strings.TrimPrefix(name, GENERATOR_SIGIL), modifiers
}
