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
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/lucasjones/reggen"
)

const (
	DEFAULT_SENTENCE_WORDS      = 6
	DEFAULT_PARAGRAPH_SENTENCES = 3
	DEFAULT_PARAGRAPHS          = 3
	DEFAULT_TEXT_CHARS          = 200
	PARAGRAPH_SEPARATOR         = "\n\n"
	REGEX_REPEAT_LIMIT          = 10
	MAX_COUNT_MODIFIER          = 10000
)

func noArgs(fn func(l *Library) any) generatorFunc {
	return func(l *Library, _ []string) (any, error) {
		return fn(l), nil
	}
}

func registerPersonGenerators() {
	register("firstName", noArgs(func(l *Library) any { return l.faker.Person().FirstName() }))
	register("lastName", noArgs(func(l *Library) any { return l.faker.Person().LastName() }))
	register("name", noArgs(func(l *Library) any { return l.faker.Person().Name() }))
	register("userName", noArgs(func(l *Library) any { return l.faker.Internet().User() }))
	register("email", noArgs(func(l *Library) any { return l.faker.Internet().Email() }))
	register("safeEmail", noArgs(func(l *Library) any { return l.faker.Internet().SafeEmail() }))
	register("freeEmail", noArgs(func(l *Library) any { return l.faker.Internet().FreeEmail() }))
	register("companyEmail", noArgs(func(l *Library) any { return l.faker.Internet().CompanyEmail() }))
	register("password", noArgs(func(l *Library) any { return l.faker.Internet().Password() }))
	register("domainName", noArgs(func(l *Library) any { return l.faker.Internet().Domain() }))
	register("url", noArgs(func(l *Library) any { return l.faker.Internet().URL() }))
	register("slug", noArgs(func(l *Library) any { return l.faker.Internet().Slug() }))
	register("ipv4", noArgs(func(l *Library) any { return l.faker.Internet().Ipv4() }))
	register("ipv6", noArgs(func(l *Library) any { return l.faker.Internet().Ipv6() }))
	register("macAddress", noArgs(func(l *Library) any { return l.faker.Internet().MacAddress() }))
	register("phoneNumber", noArgs(func(l *Library) any { return l.faker.Phone().Number() }))
	register("company", noArgs(func(l *Library) any { return l.faker.Company().Name() }))
	register("jobTitle", noArgs(func(l *Library) any { return l.faker.Company().JobTitle() }))
}

func registerTextGenerators() {
	register("word", noArgs(func(l *Library) any { return l.faker.Lorem().Word() }))
	register("words", func(l *Library, args []string) (any, error) {
		n, err := countArg(args, 0, 3)
		if err != nil {
			return nil, err
		}
		return strings.Join(l.faker.Lorem().Words(n), " "), nil
	})
	register("sentence", func(l *Library, args []string) (any, error) {
		n, err := countArg(args, 0, DEFAULT_SENTENCE_WORDS)
		if err != nil {
			return nil, err
		}
		return l.faker.Lorem().Sentence(n), nil
	})
	register("sentences", func(l *Library, args []string) (any, error) {
		n, err := countArg(args, 0, DEFAULT_PARAGRAPH_SENTENCES)
		if err != nil {
			return nil, err
		}
		return strings.Join(l.faker.Lorem().Sentences(n), " "), nil
	})
	register("paragraph", func(l *Library, args []string) (any, error) {
		n, err := countArg(args, 0, DEFAULT_PARAGRAPH_SENTENCES)
		if err != nil {
			return nil, err
		}
		return l.faker.Lorem().Paragraph(n), nil
	})
	register("paragraphs", func(l *Library, args []string) (any, error) {
		n, err := countArg(args, 0, DEFAULT_PARAGRAPHS)
		if err != nil {
			return nil, err
		}
		return strings.Join(l.faker.Lorem().Paragraphs(n), PARAGRAPH_SEPARATOR), nil
	})
	register("text", func(l *Library, args []string) (any, error) {
		n, err := countArg(args, 0, DEFAULT_TEXT_CHARS)
		if err != nil {
			return nil, err
		}
		return l.faker.Lorem().Text(n), nil
	})
}

func registerAddressGenerators() {
	register("address", noArgs(func(l *Library) any { return l.faker.Address().Address() }))
	register("streetAddress", noArgs(func(l *Library) any { return l.faker.Address().StreetAddress() }))
	register("streetName", noArgs(func(l *Library) any { return l.faker.Address().StreetName() }))
	register("city", noArgs(func(l *Library) any { return l.faker.Address().City() }))
	register("state", noArgs(func(l *Library) any { return l.faker.Address().State() }))
	register("stateAbbr", noArgs(func(l *Library) any { return l.faker.Address().StateAbbr() }))
	register("postcode", noArgs(func(l *Library) any { return l.faker.Address().PostCode() }))
	register("country", noArgs(func(l *Library) any { return l.faker.Address().Country() }))
	register("latitude", noArgs(func(l *Library) any { return l.faker.Address().Latitude() }))
	register("longitude", noArgs(func(l *Library) any { return l.faker.Address().Longitude() }))
}

func registerNumberGenerators() {
	register("randomDigit", noArgs(func(l *Library) any { return l.rng.IntN(10) }))
	register("randomNumber", func(l *Library, args []string) (any, error) {
		digits, err := intArg(args, 0, 6)
		if err != nil {
			return nil, err
		}
		if digits < 1 || digits > 18 {
			return nil, fmt.Errorf("randomNumber: digits must be between 1 and 18, got %d", digits)
		}
		limit := int64(1)
		for i := 0; i < digits; i++ {
			limit *= 10
		}
		return l.rng.Int64N(limit), nil
	})
	register("numberBetween", func(l *Library, args []string) (any, error) {
		low, err := intArg(args, 0, 0)
		if err != nil {
			return nil, err
		}
		high, err := intArg(args, 1, 2147483647)
		if err != nil {
			return nil, err
		}
		if high < low {
			return nil, fmt.Errorf("numberBetween: max %d is lower than min %d", high, low)
		}
		span := uint64(high) - uint64(low)
		if span >= math.MaxInt64 {
			return nil, fmt.Errorf("numberBetween: range %d..%d is too wide", low, high)
		}
		return low + int(l.rng.Int64N(int64(span)+1)), nil
	})
	register("boolean", func(l *Library, args []string) (any, error) {
		chanceOfTrue, err := intArg(args, 0, 50)
		if err != nil {
			return nil, err
		}
		return l.rng.IntN(100) < chanceOfTrue, nil
	})
	register("randomElement", func(l *Library, args []string) (any, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("randomElement: at least one modifier is required")
		}
		return args[l.rng.IntN(len(args))], nil
	})
	register("uuid", func(l *Library, _ []string) (any, error) {
		id, err := uuid.NewRandomFromReader(randReader{l.rng})
		if err != nil {
			return nil, fmt.Errorf("uuid: %w", err)
		}
		return id.String(), nil
	})
}

func registerPatternGenerators() {
	register("numerify", func(l *Library, args []string) (any, error) {
		return l.replacePlaceholders(stringArg(args, 0, "###"), true, false), nil
	})
	register("lexify", func(l *Library, args []string) (any, error) {
		return l.replacePlaceholders(stringArg(args, 0, "????"), false, true), nil
	})
	register("bothify", func(l *Library, args []string) (any, error) {
		return l.replacePlaceholders(stringArg(args, 0, "## ??"), true, true), nil
	})
	register("regexify", func(l *Library, args []string) (any, error) {
		if len(args) == 0 || args[0] == "" {
			return nil, fmt.Errorf("regexify: a regular expression modifier is required")
		}
		// modifiers were split on commas; a regex may legitimately contain them
		return l.regexify(strings.Join(args, ","))
	})
	// phone|(###) ###-#### style masks, '*' and '#' become digits
	register("phone", func(l *Library, args []string) (any, error) {
		pattern := stringArg(args, 0, "")
		if pattern == "" {
			return l.faker.Phone().Number(), nil
		}
		return l.regexify(maskToRegex(pattern))
	})
}

// replacePlaceholders swaps '#' for a digit and '?' for a lower-case letter.
func (l *Library) replacePlaceholders(pattern string, digits bool, letters bool) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	var sb strings.Builder
	for _, r := range pattern {
		switch {
		case r == '#' && digits:
			sb.WriteByte(byte('0' + l.rng.IntN(10)))
		case r == '?' && letters:
			sb.WriteByte(alphabet[l.rng.IntN(len(alphabet))])
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func (l *Library) regexify(pattern string) (any, error) {
	g, err := reggen.NewGenerator(pattern)
	if err != nil {
		return nil, fmt.Errorf("regexify %q: %w", pattern, err)
	}
	g.SetSeed(l.rng.Int64())
	return g.Generate(REGEX_REPEAT_LIMIT), nil
}

func maskToRegex(mask string) string {
	var (
		sb     strings.Builder
		digits int
	)
	flush := func() {
		if digits > 0 {
			sb.WriteString(fmt.Sprintf(`\d{%d}`, digits))
			digits = 0
		}
	}
	for _, r := range mask {
		if r == '*' || r == '#' {
			digits++
			continue
		}
		flush()
		if strings.ContainsRune(`\.+?()[]{}^$|`, r) {
			sb.WriteRune('\\')
		}
		sb.WriteRune(r)
	}
	flush()
	return sb.String()
}
