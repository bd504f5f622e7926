/**
 * Copyright 2025 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package chunk

import (
	"fmt"
	"strconv"
	"strings"
)

// Tab is one indentation level of generated Python.
const Tab = "    "

// PyString renders s as a Python string literal, preferring single quotes.
func PyString(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var sb strings.Builder
	sb.WriteByte(quote)
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r == rune(quote) {
				sb.WriteByte('\\')
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}

// PyPath renders a file path as a raw string literal when it can be one.
func PyPath(path string) string {
	if strings.ContainsAny(path, "'\n\r") || strings.HasSuffix(path, `\`) {
		return PyString(path)
	}
	return "r'" + path + "'"
}

// PyValue renders a cell or header value as a Python literal.
func PyValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case string:
		return PyString(x)
	default:
		return PyString(fmt.Sprint(x))
	}
}

// PyList renders strings as a Python list of string literals.
func PyList(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = PyString(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// PyDict renders ordered key/value pairs of string literals as a Python dict.
func PyDict(keys, values []string) string {
	parts := make([]string, len(keys))
	for i := range keys {
		parts[i] = PyString(keys[i]) + ": " + PyString(values[i])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// IsStringLiteral reports whether s is a Python string literal, optionally
// raw-prefixed.
func IsStringLiteral(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "r") || strings.HasPrefix(s, "R") {
		s = s[1:]
	}
	if len(s) < 2 {
		return false
	}
	q := s[0]
	return (q == '\'' || q == '"') && s[len(s)-1] == q
}

// UnquoteLiteral strips quotes and an optional raw prefix from a literal.
// Escapes are kept as written.
func UnquoteLiteral(s string) string {
	s = strings.TrimSpace(s)
	if !IsStringLiteral(s) {
		return s
	}
	if s[0] == 'r' || s[0] == 'R' {
		return s[2 : len(s)-1]
	}
	return s[1 : len(s)-1]
}
