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
package namedobj

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/dump-anonymizer/src/generator"
)

var (
	factoriesOnce sync.Once
	factories     map[string]Factory
)

// Initialize registers the built-in object factories, once per process.
func Initialize() {
	factoriesOnce.Do(func() {
		factories = map[string]Factory{
			USER_OBJECT_TYPE: newUser,
		}
	})
}

// FactoryTypes lists the object types that can be created.
func FactoryTypes() []string {
	Initialize()
	types := lo.Keys(factories)
	sort.Strings(types)
	return types
}

/*
Store caches named objects for one session.

Objects are keyed by name only: once "bob" exists, every directive naming bob gets the
same object, whatever type the directive declares. Not safe for concurrent use.
*/
type Store struct {
	fake    generator.Capability
	objects map[string]Object

	seeded bool
	seed   int64
}

func NewStore(fake generator.Capability) *Store {
	Initialize()
	return &Store{
		fake:    fake,
		objects: make(map[string]Object),
	}
}

func (s *Store) SetSeed(seed int64) {
	s.seed = seed
	s.seeded = true
}

/*
GetOrCreate returns the object cached under objectName, creating it with the factory
registered for objectType (case-insensitive) on a miss.
A nil object with a nil error means no factory exists for objectType; nothing is cached then.
*/
func (s *Store) GetOrCreate(objectType string, objectName string) (Object, error) {
	if obj, ok := s.objects[objectName]; ok {
		return obj, nil
	}

	factory, ok := factories[strings.ToLower(objectType)]
	if !ok {
		log.Warnf("no object factory registered for type %q (object %q)", objectType, objectName)
		return nil, nil
	}
	obj, err := factory(&FactoryContext{Fake: s.fake, Seeded: s.seeded, Seed: s.seed})
	if err != nil {
		return nil, fmt.Errorf("create %s object %q: %w", objectType, objectName, err)
	}
	log.Debugf("created %s object %q", obj.Type(), objectName)
	s.objects[objectName] = obj
	return obj, nil
}

func (s *Store) Len() int {
	return len(s.objects)
}

func (s *Store) Forget() {
	s.objects = make(map[string]Object)
}
