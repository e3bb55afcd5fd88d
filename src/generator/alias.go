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

import "github.com/samber/lo"

// Friendly names accepted in directives, mapped to the canonical generator name.
// Lookup is case sensitive.
var aliases = map[string]string{
	"lorem":           "sentence",
	"fullName":        "name",
	"fullAddress":     "address",
	"loremSentence":   "sentence",
	"loremParagraph":  "paragraph",
	"loremParagraphs": "paragraphs",
	"randomString":    "string",
	"county":          "state",
	"username":        "userName",
	"barcodeEan13":    "ean13",
	"barcodeEan8":     "ean8",
	"barcodeIsbn13":   "isbn13",
	"barcodeIsbn10":   "isbn10",
	"email":           "safeEmail",
}

// ResolveAlias returns the canonical generator name for name, or name itself if it is not an alias.
func ResolveAlias(name string) string {
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

func IsAlias(name string) bool {
	_, ok := aliases[name]
	return ok
}

// Aliases returns a copy of the alias table.
func Aliases() map[string]string {
	return lo.Assign(aliases)
}
