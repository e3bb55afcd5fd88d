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

import (
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/dump-anonymizer/src/directive"
	"github.com/yugabyte/dump-anonymizer/src/fakedata"
	"github.com/yugabyte/dump-anonymizer/src/generator"
	"github.com/yugabyte/dump-anonymizer/src/namedobj"
)

type State int

const (
	IDLE State = iota
	SEEDED
	POPULATED
)

func (s State) String() string {
	switch s {
	case IDLE:
		return "idle"
	case SEEDED:
		return "seeded"
	case POPULATED:
		return "populated"
	default:
		return "unknown"
	}
}

type Option func(*Engine)

// WithCapability replaces the default jaswdr/faker backed fake-data library.
func WithCapability(fake generator.Capability) Option {
	return func(e *Engine) {
		e.fake = fake
	}
}

// WithClock sets the clock used by time based routines such as iso8601Recent.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

/*
Engine resolves replacement directives for one dump session.

It owns the variable and named-object caches and the seed. An Engine is not safe for
concurrent use: parallel dump workers each need their own, or must serialise access.
*/
type Engine struct {
	fake       generator.Capability
	now        func() time.Time
	dispatcher *generator.Dispatcher
	variables  *VariableStore
	objects    *namedobj.Store

	seeded bool
	seed   int64
}

func NewEngine(opts ...Option) *Engine {
	generator.Initialize()
	namedobj.Initialize()

	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.fake == nil {
		e.fake = fakedata.New()
	}
	e.dispatcher = generator.NewDispatcher(e.fake, e.now)
	e.variables = NewVariableStore()
	e.objects = namedobj.NewStore(e.fake)
	return e
}

// Seed makes generation deterministic: the same directive sequence after the same seed
// yields the same values.
func (e *Engine) Seed(seed int64) {
	log.Infof("transformer seed set to %d", seed)
	e.seed = seed
	e.seeded = true
	e.fake.Seed(seed)
	e.objects.SetSeed(seed)
	e.dispatcher.SetTokenSalt(strconv.FormatInt(seed, 10))
}

// CurrentSeed returns the seed and whether one was set.
func (e *Engine) CurrentSeed() (int64, bool) {
	return e.seed, e.seeded
}

// Forget clears variables and named objects. The seed is kept.
func (e *Engine) Forget() {
	log.Debugf("forgetting %d variables and %d named objects", e.variables.Len(), e.objects.Len())
	e.variables.Forget()
	e.objects.Forget()
}

// ForgetObjects clears only the named objects, so that variables outlive a row.
func (e *Engine) ForgetObjects() {
	e.objects.Forget()
}

// Set resolves rawValue as a directive and stores the result as variable $name.
func (e *Engine) Set(name string, rawValue string) error {
	value, err := e.Transform(nil, rawValue)
	if err != nil {
		return fmt.Errorf("set variable %q: %w", name, err)
	}
	log.Debugf("variable $%s defined by %q", name, rawValue)
	e.variables.Put(name, value)
	return nil
}

// Variable returns the stored value of $name.
func (e *Engine) Variable(name string) (any, bool) {
	return e.variables.Get(variableKey(name))
}

func (e *Engine) State() State {
	switch {
	case e.variables.Len() > 0 || e.objects.Len() > 0:
		return POPULATED
	case e.seeded:
		return SEEDED
	default:
		return IDLE
	}
}

/*
Transform computes the substitute for value according to raw.

	literal          -> raw itself
	$name            -> the stored variable, or raw unchanged if it was never set
	@Type(name).acc  -> field acc of the named object
	@gen|m1,m2       -> alias resolution, then built-in routine or fake-data generator

Errors are one of UnknownGeneratorError, NullObjectAccessError or UnknownFieldError;
see IsFatal.
*/
func (e *Engine) Transform(value any, raw string) (any, error) {
	d := directive.Parse(raw)
	switch d.Kind {
	case directive.LITERAL:
		return raw, nil

	case directive.VARIABLE:
		if v, ok := e.variables.Get(d.VariableKey()); ok {
			return v, nil
		}
		log.Debugf("variable %q is not set, keeping the directive as is", raw)
		return raw, nil

	case directive.OBJECT_ACCESSOR:
		return e.readObjectField(d)

	default:
		name := d.GeneratorName
		if generator.IsAlias(name) {
			name = generator.ResolveAlias(name)
			log.Tracef("generator %q is an alias of %q", d.GeneratorName, name)
		}
		result, err := e.dispatcher.Invoke(name, value, d.Modifiers)
		if err != nil {
			return nil, &UnknownGeneratorError{Directive: raw, Generator: d.GeneratorName, Err: err}
		}
		return result, nil
	}
}

// Check reports an UnknownGeneratorError for a generator directive that no built-in
// routine or fake-data generator can serve, without generating anything. Other kinds
// always pass: object types are only known once a name is first used.
func (e *Engine) Check(raw string) error {
	d := directive.Parse(raw)
	if d.Kind != directive.GENERATOR {
		return nil
	}
	if !e.dispatcher.Exists(generator.ResolveAlias(d.GeneratorName)) {
		return &UnknownGeneratorError{
			Directive: raw,
			Generator: d.GeneratorName,
			Err:       fmt.Errorf("%w: %q", generator.ErrUnknownGenerator, d.GeneratorName),
		}
	}
	return nil
}

// accessors bypass the alias table: the accessor is a field name, not a generator
func (e *Engine) readObjectField(d *directive.Directive) (any, error) {
	if d.HasModifiers() {
		log.Debugf("modifiers %v of %q are ignored on object fields", d.Modifiers, d.Raw)
	}
	obj, err := e.objects.GetOrCreate(d.ObjectType, d.ObjectName)
	if err != nil {
		return nil, &UnknownGeneratorError{Directive: d.Raw, Generator: d.ObjectType, Err: err}
	}
	if obj == nil {
		return nil, &NullObjectAccessError{
			Directive:  d.Raw,
			ObjectType: d.ObjectType,
			ObjectName: d.ObjectName,
			Accessor:   d.GeneratorName,
		}
	}
	v, err := obj.Field(d.GeneratorName)
	if err != nil {
		return nil, &UnknownFieldError{Directive: d.Raw, ObjectName: d.ObjectName, Field: d.GeneratorName, Err: err}
	}
	return v, nil
}
