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

package errorpolicy

import (
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/samber/lo"
)

/*
ErrorPolicy decides what happens to a dump row that cannot be parsed, for example a row
with the wrong number of fields or a stray quote. It never applies to a directive that
cannot be resolved: that always stops the run.
*/
type ErrorPolicy int

const (
	AbortErrorPolicy            ErrorPolicy = iota // Stop and report the row
	StashAndContinueErrorPolicy                    // Copy the raw row to the errors dir and carry on
)

const (
	AbortErrorPolicyName            = "Abort"
	StashAndContinueErrorPolicyName = "StashAndContinue"
)

var errorPolicyNames = map[ErrorPolicy]string{
	AbortErrorPolicy:            AbortErrorPolicyName,
	StashAndContinueErrorPolicy: StashAndContinueErrorPolicyName,
}

func (e ErrorPolicy) String() string {
	return errorPolicyNames[e]
}

// NewErrorPolicy parses a policy name, ignoring case.
func NewErrorPolicy(s string) (ErrorPolicy, error) {
	for policy, name := range errorPolicyNames {
		if strings.EqualFold(s, name) {
			return policy, nil
		}
	}
	return 0, goerrors.Errorf("invalid error policy: %s. Valid policies = %v", s, Names())
}

func Names() []string {
	return []string{AbortErrorPolicyName, StashAndContinueErrorPolicyName}
}

func IsValidName(s string) bool {
	return lo.ContainsBy(Names(), func(name string) bool { return strings.EqualFold(s, name) })
}
