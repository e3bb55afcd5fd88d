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
	"errors"
	"fmt"
	"strings"

	"github.com/yugabyte/dump-anonymizer/src/generator"
)

const (
	USER_OBJECT_TYPE      = "user"
	USER_EMAIL_DOMAIN     = "example.com"
	RANDOM_UNIQUIFIER_MIN = 100000
	RANDOM_UNIQUIFIER_MAX = 999999
)

var ErrUnknownField = errors.New("unknown field")

// Object is a synthetic record whose fields are mutually consistent.
type Object interface {
	Type() string
	Field(name string) (any, error)
}

// FactoryContext is handed to object factories on creation.
type FactoryContext struct {
	Fake generator.Capability
	// Seeded reports whether Seed is meaningful.
	Seeded bool
	Seed   int64
}

type Factory func(ctx *FactoryContext) (Object, error)

type User struct {
	FirstName string
	LastName  string
	Email     string
	UserName  string
	FullName  string
}

func (u *User) Type() string {
	return USER_OBJECT_TYPE
}

// Field reads a field by its accessor name, ignoring case.
func (u *User) Field(name string) (any, error) {
	switch strings.ToLower(name) {
	case "firstname":
		return u.FirstName, nil
	case "lastname":
		return u.LastName, nil
	case "email":
		return u.Email, nil
	case "username":
		return u.UserName, nil
	case "fullname":
		return u.FullName, nil
	default:
		return nil, fmt.Errorf("%w %q on %s object", ErrUnknownField, name, USER_OBJECT_TYPE)
	}
}

/*
newUser builds a user whose email is derived from the generated names:

	firstname.lastname-<uniquifier>@example.com

The uniquifier is the session seed when one is set, else a random 6-digit number.
*/
func newUser(ctx *FactoryContext) (Object, error) {
	firstName, err := generate(ctx.Fake, "firstName")
	if err != nil {
		return nil, err
	}
	lastName, err := generate(ctx.Fake, "lastName")
	if err != nil {
		return nil, err
	}

	var uniquifier uint64
	if ctx.Seeded {
		uniquifier = uint64(ctx.Seed)
	} else {
		uniquifier = uint64(RANDOM_UNIQUIFIER_MIN + ctx.Fake.Rand().IntN(RANDOM_UNIQUIFIER_MAX-RANDOM_UNIQUIFIER_MIN+1))
	}

	email := fmt.Sprintf("%s.%s-%d@%s",
		strings.ToLower(firstName), strings.ToLower(lastName), uniquifier, USER_EMAIL_DOMAIN)
	return &User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		UserName:  email,
		FullName:  firstName + " " + lastName,
	}, nil
}

func generate(fake generator.Capability, name string) (string, error) {
	fn, ok := fake.Lookup(name)
	if !ok {
		return "", fmt.Errorf("fake-data capability has no %q generator", name)
	}
	v, err := fn(nil)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", name, err)
	}
	return generator.Stringify(v), nil
}
