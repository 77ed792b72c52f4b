// Copyright 2014 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nquads

import (
	"fmt"
	"strings"

	"github.com/cayleygraph/shapeql/quad"
)

// Parse returns a valid quad.Quad or a non-nil error. Parse handles
// comments except where the comment placement does not prevent a complete
// valid quad.Quad from being defined.
func Parse(line string) (quad.Quad, error) {
	toks, err := tokenize(line)
	var q quad.Quad
	if len(toks) > 0 {
		q.Subject = parseTerm(toks[0])
	}
	if len(toks) > 1 {
		q.Predicate = parseTerm(toks[1])
	}
	if len(toks) > 2 {
		q.Object = parseTerm(toks[2])
	}
	if len(toks) > 3 {
		q.Label = parseTerm(toks[3])
	}
	if err != nil {
		return q, err
	}
	if len(toks) < 3 {
		return q, quad.ErrIncomplete
	}
	return q, nil
}

// term is one N-Quads token as scanned from a line, split into its
// quoted-or-bare body and an optional @lang / ^^<type> suffix.
type term struct {
	body []rune
	spec int // index within body where the suffix starts, 0 if none
}

func parseTerm(t term) quad.Value {
	isQuoted := len(t.body) > 0 && t.body[0] == '"'
	isEscaped := strings.ContainsRune(string(t.body), '\\')
	return unEscape(t.body, t.spec, isQuoted, isEscaped)
}

func isSpace(c rune) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }

// tokenize splits a statement into its whitespace-separated terms, honoring
// quoted literals (which may contain escaped quotes) and stopping at the
// terminating "." token. A term starting with "#" before that token is
// rejected with ErrInvalid; anything after the "." (such as a trailing
// comment) is ignored.
func tokenize(line string) ([]term, error) {
	r := []rune(line)
	var toks []term
	i := 0
	for {
		for i < len(r) && isSpace(r[i]) {
			i++
		}
		if i >= len(r) {
			break
		}
		if r[i] == '#' {
			return toks, fmt.Errorf("%v: unexpected rune '#' at %d", quad.ErrInvalid, i)
		}
		if r[i] == '.' && (i+1 >= len(r) || isSpace(r[i+1])) {
			return toks, nil
		}
		tok, next, err := scanTerm(r, i)
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		i = next
	}
	return toks, nil
}

// scanTerm scans one term starting at i, returning it and the index just
// past it.
func scanTerm(r []rune, i int) (term, int, error) {
	start := i
	if r[i] != '"' {
		for i < len(r) && !isSpace(r[i]) {
			i++
		}
		return term{body: r[start:i]}, i, nil
	}
	i++
	for i < len(r) {
		if r[i] == '\\' {
			i += 2
			continue
		}
		if r[i] == '"' {
			i++
			break
		}
		i++
	}
	if i > len(r) || r[i-1] != '"' {
		return term{}, i, fmt.Errorf("%v: unterminated literal at %d", quad.ErrInvalid, start)
	}
	spec := i - start
	if i < len(r) && r[i] == '@' {
		for i < len(r) && !isSpace(r[i]) {
			i++
		}
	} else if i+1 < len(r) && r[i] == '^' && r[i+1] == '^' {
		for i < len(r) && !isSpace(r[i]) {
			i++
		}
	}
	return term{body: r[start:i], spec: spec}, i, nil
}
