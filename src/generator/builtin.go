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
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
)

const (
	OPAQUE_STRING_MIN_LENGTH = 10
	OPAQUE_STRING_MAX_LENGTH = 255
	RECENT_WINDOW_MONTHS     = 3
	GRAVATAR_URL_FORMAT      = "https://www.gravatar.com/avatar/%s?d=%s"
)

var avatarStyles = []string{
	"identicon",
	"monsterid",
	"mp",
	"robohash",
}

// Routine is a built-in transform. It receives the original field value and the directive modifiers.
type Routine func(env *Env, value any, args []string) (any, error)

var (
	builtinsOnce sync.Once
	builtins     map[string]Routine
)

// Initialize registers the built-in routines. It is safe to call any number of times,
// from any number of engines; registration happens once per process.
func Initialize() {
	builtinsOnce.Do(func() {
		builtins = map[string]Routine{
			"string":        opaqueString,
			"uppercase":     uppercase,
			"lowercase":     lowercase,
			"iso8601recent": iso8601Recent,
			"original":      original,
			"avatarurl":     avatarURL,
			"hash":          hashToken,
		}
	})
}

// LookupBuiltin finds a built-in routine, ignoring case.
func LookupBuiltin(name string) (Routine, bool) {
	Initialize()
	routine, ok := builtins[strings.ToLower(name)]
	return routine, ok
}

// BuiltinNames lists the registered built-in routine names, sorted.
func BuiltinNames() []string {
	Initialize()
	names := lo.Keys(builtins)
	sort.Strings(names)
	return names
}

func opaqueString(env *Env, _ any, _ []string) (any, error) {
	const alphabet = "0123456789abcdef"
	rng := env.Fake.Rand()
	length := OPAQUE_STRING_MIN_LENGTH + rng.IntN(OPAQUE_STRING_MAX_LENGTH-OPAQUE_STRING_MIN_LENGTH+1)
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		sb.WriteByte(alphabet[rng.IntN(len(alphabet))])
	}
	return sb.String(), nil
}

func uppercase(_ *Env, value any, _ []string) (any, error) {
	return strings.ToUpper(Stringify(value)), nil
}

func lowercase(_ *Env, value any, _ []string) (any, error) {
	return strings.ToLower(Stringify(value)), nil
}

func iso8601Recent(env *Env, _ any, _ []string) (any, error) {
	now := env.Now().Truncate(time.Second)
	from := now.AddDate(0, -RECENT_WINDOW_MONTHS, 0)
	windowSecs := int64(now.Sub(from) / time.Second)
	offset := env.Fake.Rand().Int64N(windowSecs + 1)
	return from.Add(time.Duration(offset) * time.Second).Format(time.RFC3339), nil
}

// original passes the value through, truncated to at most the first modifier's number of
// bytes when given. A multi-byte character is never split.
func original(_ *Env, value any, args []string) (any, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return value, nil
	}
	maxLen, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid max length %q: %w", args[0], err)
	}
	if maxLen <= 0 {
		return value, nil
	}
	s := Stringify(value)
	if len(s) > maxLen {
		for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
			maxLen--
		}
		s = s[:maxLen]
	}
	return s, nil
}

func avatarURL(env *Env, _ any, _ []string) (any, error) {
	emailFn, ok := env.Fake.Lookup("email")
	if !ok {
		return nil, fmt.Errorf("fake-data capability has no email generator")
	}
	email, err := emailFn(nil)
	if err != nil {
		return nil, fmt.Errorf("generate email: %w", err)
	}
	sum := md5.Sum([]byte(strings.ToLower(Stringify(email))))
	style := avatarStyles[env.Fake.Rand().IntN(len(avatarStyles))]
	return fmt.Sprintf(GRAVATAR_URL_FORMAT, hex.EncodeToString(sum[:]), style), nil
}

// Stringify renders a resolved value the way it is written back into a dump.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, "\n\n")
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
