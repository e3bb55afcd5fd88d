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

import "strconv"

var isbnPrefixes = []string{"978", "979"}

func registerBarcodeGenerators() {
	register("ean13", noArgs(func(l *Library) any { return ean(l.randomDigits(12)) }))
	register("ean8", noArgs(func(l *Library) any { return ean(l.randomDigits(7)) }))
	register("isbn13", noArgs(func(l *Library) any {
		prefix := isbnPrefixes[l.rng.IntN(len(isbnPrefixes))]
		return ean(prefix + l.randomDigits(9))
	}))
	register("isbn10", noArgs(func(l *Library) any { return isbn10(l.randomDigits(9)) }))
}

func (l *Library) randomDigits(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + l.rng.IntN(10))
	}
	return string(b)
}

// ean appends the EAN check digit. Weights alternate 3/1 starting from the rightmost digit,
// which covers both EAN-8 (7 digits) and EAN-13 (12 digits) bodies.
func ean(body string) string {
	sum := 0
	for i := len(body) - 1; i >= 0; i-- {
		d := int(body[i] - '0')
		if (len(body)-1-i)%2 == 0 {
			d *= 3
		}
		sum += d
	}
	return body + strconv.Itoa((10-sum%10)%10)
}

func isbn10(body string) string {
	sum := 0
	for i := 0; i < len(body); i++ {
		sum += int(body[i]-'0') * (10 - i)
	}
	check := (11 - sum%11) % 11
	if check == 10 {
		return body + "X"
	}
	return body + strconv.Itoa(check)
}
