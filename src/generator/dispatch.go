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
package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime/debug"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	ErrUnknownGenerator = errors.New("unknown generator")
	ErrGeneratorFailed  = errors.New("generator failed")
)

// Capability is the fake-data source consumed by the dispatcher and the object factories.
// It exposes named, modifier-parameterised generators and a seed control.
type Capability interface {
	Seed(seed int64)
	// Rand is the random source backing the generators. It is replaced on Seed.
	Rand() *rand.Rand
	Lookup(name string) (func(args []string) (any, error), bool)
}

// Env is what built-in routines get to work with.
type Env struct {
	Fake   Capability
	Now    func() time.Time
	Tokens *TokenHasher
}

type Dispatcher struct {
	env *Env
}

func NewDispatcher(fake Capability, now func() time.Time) *Dispatcher {
	Initialize()
	if now == nil {
		now = time.Now
	}
	salt, err := GenerateSalt(SALT_SIZE)
	if err != nil {
		log.Warnf("falling back to a pseudo-random token salt: %v", err)
		salt = fmt.Sprintf("%016x", fake.Rand().Uint64())
	}
	return &Dispatcher{env: &Env{Fake: fake, Now: now, Tokens: NewTokenHasher(salt)}}
}

// SetTokenSalt fixes the salt used by the hash routine, making its tokens reproducible.
func (d *Dispatcher) SetTokenSalt(salt string) {
	d.env.Tokens.SetSalt(salt)
}

/*
Invoke resolves name (already alias-resolved) and runs it.

	1. A built-in routine gets the original value and the modifiers.
	2. Otherwise the fake-data capability's generator of that name gets the modifiers.
	3. Otherwise ErrUnknownGenerator.

Any failure inside a routine or generator, panics included, is reported wrapped in
ErrGeneratorFailed.
*/
func (d *Dispatcher) Invoke(name string, value any, modifiers []string) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("generator %q panicked with modifiers %v: %v\n%s", name, modifiers, r, string(debug.Stack()))
			result, err = nil, fmt.Errorf("%w: %q: %v", ErrGeneratorFailed, name, r)
		}
	}()

	if routine, ok := LookupBuiltin(name); ok {
		result, err = routine(d.env, value, modifiers)
		if err != nil {
			return nil, fmt.Errorf("%w: built-in %q: %v", ErrGeneratorFailed, name, err)
		}
		return result, nil
	}

	fn, ok := d.env.Fake.Lookup(name)
	if !ok {
		log.Errorf("no built-in routine or fake-data generator named %q", name)
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, name)
	}
	result, err = fn(modifiers)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrGeneratorFailed, name, err)
	}
	return result, nil
}

// Exists reports whether Invoke would find a routine or generator for name.
func (d *Dispatcher) Exists(name string) bool {
	if _, ok := LookupBuiltin(name); ok {
		return true
	}
	_, ok := d.env.Fake.Lookup(name)
	return ok
}
