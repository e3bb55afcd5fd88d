//go:build unit

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
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugabyte/dump-anonymizer/src/fakedata"
	"github.com/yugabyte/dump-anonymizer/src/generator"
	"github.com/yugabyte/dump-anonymizer/src/namedobj"
	"github.com/yugabyte/dump-anonymizer/src/utils"
)

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func mustTransform(t *testing.T, e *Engine, value any, raw string) any {
	t.Helper()
	v, err := e.Transform(value, raw)
	require.NoError(t, err, raw)
	return v
}

// recordingCapability remembers every generator invocation made through it.
type recordingCapability struct {
	*fakedata.Library
	calls []string
	args  [][]string
}

func (r *recordingCapability) Lookup(name string) (func(args []string) (any, error), bool) {
	fn, ok := r.Library.Lookup(name)
	if !ok {
		return nil, false
	}
	return func(args []string) (any, error) {
		r.calls = append(r.calls, name)
		r.args = append(r.args, args)
		return fn(args)
	}, true
}

func TestLiteralPassThrough(t *testing.T) {
	e := newTestEngine()
	assert.Equal(t, "plain", mustTransform(t, e, "x", "plain"))
	assert.Equal(t, "", mustTransform(t, e, "x", ""))
	assert.Equal(t, "john@doe.com", mustTransform(t, e, "x", "john@doe.com"))
}

func TestVariableRoundTrip(t *testing.T) {
	e := newTestEngine()
	e.Seed(1)
	require.NoError(t, e.Set("name", "@firstName"))

	first := mustTransform(t, e, nil, "$name")
	assert.NotEmpty(t, first)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, mustTransform(t, e, "anything", "$name"))
	}
	stored, ok := e.Variable("name")
	assert.True(t, ok)
	assert.Equal(t, first, stored)

	e.Forget()
	assert.Equal(t, "$name", mustTransform(t, e, nil, "$name"))

	// draw until the generator gives a different name; the sequence keeps moving after Forget
	var second any
	for i := 0; i < 20; i++ {
		require.NoError(t, e.Set("name", "@firstName"))
		second = mustTransform(t, e, nil, "$name")
		if second != first {
			break
		}
	}
	assert.NotEqual(t, first, second)
}

func TestVariableDefinedByAnotherVariable(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.Set("company", "ACME"))
	require.NoError(t, e.Set("employer", "$company"))
	assert.Equal(t, "ACME", mustTransform(t, e, nil, "$employer"))
}

func TestMissingVariableIsSoftMiss(t *testing.T) {
	e := newTestEngine()
	v, err := e.Transform("original", "$neverSet")
	assert.NoError(t, err)
	assert.Equal(t, "$neverSet", v)
}

func TestSetPropagatesFatalErrors(t *testing.T) {
	e := newTestEngine()
	err := e.Set("broken", "@totallyUnknownThing")
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	_, ok := e.Variable("broken")
	assert.False(t, ok)
}

func TestObjectFieldConsistency(t *testing.T) {
	e := newTestEngine()
	e.Seed(42)

	firstName := mustTransform(t, e, nil, "@User(bob).firstName").(string)
	lastName := mustTransform(t, e, nil, "@User(bob).lastName").(string)
	email := mustTransform(t, e, nil, "@User(bob).email").(string)
	fullName := mustTransform(t, e, nil, "@user(bob).fullName").(string)

	assert.Equal(t, fmt.Sprintf("%s.%s-42@example.com", strings.ToLower(firstName), strings.ToLower(lastName)), email)
	assert.Equal(t, firstName+" "+lastName, fullName)
	assert.Equal(t, email, mustTransform(t, e, nil, "@User(bob).userName"))

	// the accessor is a field name: "email" is not rewritten to safeEmail
	assert.Equal(t, email, mustTransform(t, e, nil, "@User(bob).email|ignored"))
}

func TestObjectsAreSharedAcrossTypesByName(t *testing.T) {
	e := newTestEngine()
	a := mustTransform(t, e, nil, "@User(bob).email")
	b := mustTransform(t, e, nil, "@Whatever(bob).email")
	assert.Equal(t, a, b)
}

func TestForgetObjectsKeepsVariables(t *testing.T) {
	e := newTestEngine()
	e.Seed(5)
	require.NoError(t, e.Set("tenant", "@company"))
	tenant := mustTransform(t, e, nil, "$tenant")
	before := mustTransform(t, e, nil, "@User(u).email")

	e.ForgetObjects()
	assert.Equal(t, tenant, mustTransform(t, e, nil, "$tenant"))
	after := mustTransform(t, e, nil, "@User(u).email")
	assert.NotEqual(t, before, after)
}

func TestNullObjectAccessIsFatal(t *testing.T) {
	e := newTestEngine()
	_, err := e.Transform(nil, "@Spaceship(enterprise).captain")
	var nullErr *NullObjectAccessError
	require.ErrorAs(t, err, &nullErr)
	assert.Equal(t, "Spaceship", nullErr.ObjectType)
	assert.Equal(t, "enterprise", nullErr.ObjectName)
	assert.Equal(t, "captain", nullErr.Accessor)
	assert.True(t, IsFatal(err))
	assert.Equal(t, IDLE, e.State())
}

func TestUnknownFieldIsFatal(t *testing.T) {
	e := newTestEngine()
	_, err := e.Transform(nil, "@User(bob).shoeSize")
	var fieldErr *UnknownFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.ErrorIs(t, err, namedobj.ErrUnknownField)
	assert.True(t, IsFatal(err))
}

func TestDeterminismUnderSeed(t *testing.T) {
	directives := []string{
		"@firstName", "@email", "@lorem", "@paragraphs|2", "@randomString", "@iso8601Recent",
		"@avatarUrl", "@User(bob).email", "@User(alice).fullName", "@uuid", "@barcodeEan13",
		"@vehicleRegistration", "@numberBetween|1,1000", "@hash", "@hash|col_", "$missing", "literal",
	}
	run := func() []any {
		e := newTestEngine()
		e.Seed(42)
		require.NoError(t, e.Set("pwd", "@password"))
		out := []any{mustTransform(t, e, nil, "$pwd")}
		for _, d := range directives {
			out = append(out, mustTransform(t, e, "Original Value", d))
		}
		return out
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("seeded runs differ (-first +second):\n%s", diff)
	}
}

func TestAliasEquivalence(t *testing.T) {
	rec := &recordingCapability{Library: fakedata.NewWithSeed(1)}
	e := newTestEngine(WithCapability(rec))

	mustTransform(t, e, nil, "@lorem")
	mustTransform(t, e, nil, "@sentence")
	mustTransform(t, e, nil, "@email")
	assert.Equal(t, []string{"sentence", "sentence", "safeEmail"}, rec.calls)

	e1 := newTestEngine()
	e1.Seed(10)
	e2 := newTestEngine()
	e2.Seed(10)
	assert.Equal(t, mustTransform(t, e1, nil, "@lorem"), mustTransform(t, e2, nil, "@sentence"))
	assert.Equal(t, mustTransform(t, e1, nil, "@fullName"), mustTransform(t, e2, nil, "@name"))
}

func TestModifierParsing(t *testing.T) {
	rec := &recordingCapability{Library: fakedata.NewWithSeed(1)}
	e := newTestEngine(WithCapability(rec))

	v := mustTransform(t, e, nil, "@paragraphs|3")
	assert.Equal(t, []string{"paragraphs"}, rec.calls)
	assert.Equal(t, [][]string{{"3"}}, rec.args)
	assert.Len(t, strings.Split(v.(string), "\n\n"), 3)
}

func TestUnknownGeneratorIsFatal(t *testing.T) {
	e := newTestEngine()
	v, err := e.Transform("x", "@totallyUnknownThing")
	assert.Nil(t, v)
	var genErr *UnknownGeneratorError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "totallyUnknownThing", genErr.Generator)
	assert.ErrorIs(t, err, generator.ErrUnknownGenerator)
	assert.Equal(t, "[error] Transformer not found, please fix and retry: [totallyUnknownThing]", err.Error())
	assert.True(t, IsFatal(err))
}

func TestCheckFindsUnknownGeneratorsUpFront(t *testing.T) {
	rec := &recordingCapability{Library: fakedata.NewWithSeed(1)}
	e := newTestEngine(WithCapability(rec))
	for _, raw := range []string{"", "plain", "$unset", "@lorem", "@UpperCase", "@paragraphs|3", "@hash|col_", "@Nobody(x).email"} {
		assert.NoError(t, e.Check(raw), raw)
	}

	err := e.Check("@totallyUnknownThing|1")
	var genErr *UnknownGeneratorError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "totallyUnknownThing", genErr.Generator)
	assert.ErrorIs(t, err, generator.ErrUnknownGenerator)
	assert.True(t, IsFatal(err))

	assert.Empty(t, rec.calls)
	assert.Equal(t, IDLE, e.State())
}

func TestGeneratorFailureIsFatal(t *testing.T) {
	e := newTestEngine()
	_, err := e.Transform(nil, "@paragraphs|many")
	assert.ErrorIs(t, err, generator.ErrGeneratorFailed)
	assert.True(t, IsFatal(err))
}

func TestOutOfRangeModifiersAreFatal(t *testing.T) {
	e := newTestEngine()
	for _, d := range []string{
		"@words|-1",
		"@sentence|-2",
		"@paragraphs|-1",
		"@numberBetween|-9223372036854775808,9223372036854775807",
	} {
		var err error
		require.NotPanics(t, func() { _, err = e.Transform("héllo", d) }, d)
		assert.ErrorIs(t, err, generator.ErrGeneratorFailed, d)
		assert.True(t, IsFatal(err), d)
	}
}

func TestExitOnFatalUsesReservedStatus(t *testing.T) {
	var code int
	utils.SetExitHook(func(c int) { code = c })
	defer utils.SetExitHook(nil)

	e := newTestEngine()
	_, err := e.Transform(nil, "@totallyUnknownThing")
	ExitOnFatal(err)
	assert.Equal(t, FATAL_EXIT_CODE, code)

	code = -1
	ExitOnFatal(nil)
	ExitOnFatal(errors.New("io failure"))
	assert.Equal(t, -1, code)
}

func TestBuiltinsReceiveOriginalValue(t *testing.T) {
	e := newTestEngine()
	assert.Equal(t, "HELLO", mustTransform(t, e, "Hello", "@uppercase"))
	assert.Equal(t, "hello", mustTransform(t, e, "Hello", "@LOWERCASE"))
	assert.Equal(t, "Hel", mustTransform(t, e, "Hello", "@original|3"))
	assert.Equal(t, 12, mustTransform(t, e, 12, "@original"))

	ts := mustTransform(t, e, nil, "@iso8601Recent").(string)
	parsed, err := time.Parse(time.RFC3339, ts)
	require.NoError(t, err)
	assert.False(t, parsed.After(fixedNow))
	assert.False(t, parsed.Before(fixedNow.AddDate(0, -3, 0)))
}

func TestStateMachine(t *testing.T) {
	e := newTestEngine()
	assert.Equal(t, IDLE, e.State())

	e.Seed(3)
	assert.Equal(t, SEEDED, e.State())
	seed, ok := e.CurrentSeed()
	assert.True(t, ok)
	assert.Equal(t, int64(3), seed)

	mustTransform(t, e, nil, "@User(bob).email")
	assert.Equal(t, POPULATED, e.State())

	e.Forget()
	assert.Equal(t, SEEDED, e.State())
	seed, ok = e.CurrentSeed()
	assert.True(t, ok)
	assert.Equal(t, int64(3), seed)

	require.NoError(t, e.Set("v", "fixed"))
	assert.Equal(t, POPULATED, e.State())
}

func TestIndependentEnginesShareRegistries(t *testing.T) {
	engines := make([]*Engine, 0, 4)
	for i := 0; i < 4; i++ {
		engines = append(engines, newTestEngine(WithCapability(fakedata.NewWithSeed(rand.Int64()))))
	}
	for _, e := range engines {
		_, err := e.Transform(nil, "@randomString")
		assert.NoError(t, err)
	}
}

func TestHashIsStableAcrossRowsAndRuns(t *testing.T) {
	e1 := newTestEngine()
	e1.Seed(11)
	first := mustTransform(t, e1, "customer-17", "@hash|cust_")
	e1.ForgetObjects()
	assert.Equal(t, first, mustTransform(t, e1, "customer-17", "@hash|cust_"))
	assert.NotEqual(t, first, mustTransform(t, e1, "customer-18", "@hash|cust_"))

	e2 := newTestEngine()
	e2.Seed(11)
	mustTransform(t, e2, nil, "@paragraphs")
	assert.Equal(t, first, mustTransform(t, e2, "customer-17", "@hash|cust_"))

	unseeded := newTestEngine()
	assert.NotEqual(t, first, mustTransform(t, unseeded, "customer-17", "@hash|cust_"))
}
