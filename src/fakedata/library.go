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
package fakedata

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jaswdr/faker/v2"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// generatorFunc produces one fake value from the library's current random state.
type generatorFunc func(l *Library, args []string) (any, error)

var (
	registryOnce sync.Once
	registry     map[string]generatorFunc
)

func initRegistry() {
	registryOnce.Do(func() {
		registry = make(map[string]generatorFunc)
		registerPersonGenerators()
		registerTextGenerators()
		registerAddressGenerators()
		registerNumberGenerators()
		registerPatternGenerators()
		registerBarcodeGenerators()
		registerVehicleGenerators()
	})
}

func register(name string, fn generatorFunc) {
	key := strings.ToLower(name)
	if _, exists := registry[key]; exists {
		panic(fmt.Sprintf("fake-data generator %q registered twice", name))
	}
	registry[key] = fn
}

// Library is the fake-data capability backed by jaswdr/faker. Generators are looked up by
// name, ignoring case. All randomness comes from a single source so that a seeded library
// replays the same sequence of values.
type Library struct {
	rng   *rand.Rand
	faker faker.Faker
}

func New() *Library {
	initRegistry()
	l := &Library{}
	l.reset(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	return l
}

func NewWithSeed(seed int64) *Library {
	initRegistry()
	l := &Library{}
	l.reset(seededSource(seed))
	return l
}

func seededSource(seed int64) rand.Source {
	return rand.NewPCG(uint64(seed), uint64(seed))
}

// reset points the library and the faker at the same source; both draw from one stream.
func (l *Library) reset(src rand.Source) {
	l.rng = rand.New(src)
	l.faker = faker.NewWithSeed(src)
}

func (l *Library) Seed(seed int64) {
	log.Debugf("seeding fake-data library with %d", seed)
	l.reset(seededSource(seed))
}

func (l *Library) Rand() *rand.Rand {
	return l.rng
}

func (l *Library) Lookup(name string) (func(args []string) (any, error), bool) {
	fn, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return func(args []string) (any, error) {
		return fn(l, args)
	}, true
}

// randReader feeds uuid from the seeded stream; math/rand/v2 has no Read.
type randReader struct {
	rng *rand.Rand
}

func (r randReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.rng.Uint32())
	}
	return len(p), nil
}

// Names lists every registered generator name (lower-cased), sorted.
func Names() []string {
	initRegistry()
	names := lo.Keys(registry)
	sort.Strings(names)
	return names
}

// intArg returns args[i] as an int, or def when the modifier is absent or blank.
func intArg(args []string, i int, def int) (int, error) {
	if i >= len(args) || strings.TrimSpace(args[i]) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(args[i]))
	if err != nil {
		return 0, fmt.Errorf("modifier %d: %q is not an integer", i+1, args[i])
	}
	return n, nil
}

// countArg is intArg for word, sentence and paragraph counts.
func countArg(args []string, i int, def int) (int, error) {
	n, err := intArg(args, i, def)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > MAX_COUNT_MODIFIER {
		return 0, fmt.Errorf("modifier %d: %d is out of range 0..%d", i+1, n, MAX_COUNT_MODIFIER)
	}
	return n, nil
}

func stringArg(args []string, i int, def string) string {
	if i >= len(args) || args[i] == "" {
		return def
	}
	return args[i]
}
