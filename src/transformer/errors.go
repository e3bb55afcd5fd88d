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

	"github.com/yugabyte/dump-anonymizer/src/utils"
)

// FATAL_EXIT_CODE is the process status used when a directive cannot be resolved.
const FATAL_EXIT_CODE = 9

// UnknownGeneratorError: neither a built-in routine nor the fake-data capability could
// produce a value for the directive. Failures inside a generator land here too.
type UnknownGeneratorError struct {
	Directive string
	Generator string
	Err       error
}

func (e *UnknownGeneratorError) Error() string {
	return fmt.Sprintf("[error] Transformer not found, please fix and retry: [%s]", e.Generator)
}

func (e *UnknownGeneratorError) Unwrap() error {
	return e.Err
}

// NullObjectAccessError: a field was read off an object whose type has no factory.
type NullObjectAccessError struct {
	Directive  string
	ObjectType string
	ObjectName string
	Accessor   string
}

func (e *NullObjectAccessError) Error() string {
	return fmt.Sprintf("[error] Object type %q not found for object %q, cannot read %q: [%s]",
		e.ObjectType, e.ObjectName, e.Accessor, e.Directive)
}

// UnknownFieldError: the object exists but has no field named by the accessor.
type UnknownFieldError struct {
	Directive  string
	ObjectName string
	Field      string
	Err        error
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("[error] Unknown field %q on object %q: [%s]", e.Field, e.ObjectName, e.Directive)
}

func (e *UnknownFieldError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err comes from a directive that can never resolve, which must
// stop the dump rather than write wrong data.
func IsFatal(err error) bool {
	var unknownGenerator *UnknownGeneratorError
	var nullObject *NullObjectAccessError
	var unknownField *UnknownFieldError
	return errors.As(err, &unknownGenerator) || errors.As(err, &nullObject) || errors.As(err, &unknownField)
}

// ExitOnFatal terminates the process with FATAL_EXIT_CODE if err is fatal and is a no-op otherwise.
func ExitOnFatal(err error) {
	if err == nil || !IsFatal(err) {
		return
	}
	utils.ErrExitWithCode(FATAL_EXIT_CODE, "%s", err.Error())
}
