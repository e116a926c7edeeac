/*
Copyright 2024 Tonlage Authors.

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

package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUIDWithSuffix generates a UUID with a given module name as a prefix.
// This is useful for creating unique identifiers with context-specific prefixes,
// e.g. "wfl_7c9e6679-7425-40de-944b-e07fc1f90ae7" for workflow records.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	uuidStr := id.String()
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr)
	return idWithSuffix
}

var unsafePathChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
var repeatedSpaces = regexp.MustCompile(`\s+`)

// SanitizePathComponent strips characters that are unsafe in file names and
// collapses repeated whitespace. Whitespace is normalized before the unsafe
// class is stripped so interior tabs survive as separators instead of being
// eaten by the control-character range. Used when building library paths from
// artist and track names.
func SanitizePathComponent(value string) string {
	value = repeatedSpaces.ReplaceAllString(value, " ")
	value = unsafePathChars.ReplaceAllString(value, "")
	value = repeatedSpaces.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}
