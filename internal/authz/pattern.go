// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package authz

import (
	"fmt"
	"strings"
)

type segmentKind uint8

const (
	segLiteral segmentKind = iota
	segParam               // {name} or *
	segRest                // **
)

type segment struct {
	kind  segmentKind
	value string // literal text or parameter name
}

// Pattern is a compiled path pattern.
type Pattern struct {
	raw      string
	segments []segment
}

// CompilePattern parses a path pattern. ** is only allowed as the last segment.
func CompilePattern(raw string) (*Pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return nil, fmt.Errorf("pattern %q must start with /", raw)
	}

	parts := splitPath(raw)
	segs := make([]segment, 0, len(parts))
	for i, part := range parts {
		switch {
		case part == "**":
			if i != len(parts)-1 {
				return nil, fmt.Errorf("pattern %q: ** must be the last segment", raw)
			}
			segs = append(segs, segment{kind: segRest})
		case part == "*":
			segs = append(segs, segment{kind: segParam})
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			name := part[1 : len(part)-1]
			if name == "" || strings.ContainsAny(name, "{}") {
				return nil, fmt.Errorf("pattern %q: bad parameter %q", raw, part)
			}
			segs = append(segs, segment{kind: segParam, value: name})
		case strings.ContainsAny(part, "{}*"):
			return nil, fmt.Errorf("pattern %q: wildcards must span a whole segment, got %q", raw, part)
		default:
			segs = append(segs, segment{kind: segLiteral, value: part})
		}
	}

	return &Pattern{raw: raw, segments: segs}, nil
}

// MustCompilePattern is CompilePattern for patterns fixed at compile time.
func MustCompilePattern(raw string) *Pattern {
	p, err := CompilePattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern source.
func (p *Pattern) String() string {
	return p.raw
}

// Match reports whether path matches the pattern.
func (p *Pattern) Match(path string) bool {
	_, ok := p.match(path, false)
	return ok
}

// Params matches path and returns the named {param} captures.
func (p *Pattern) Params(path string) (map[string]string, bool) {
	return p.match(path, true)
}

func (p *Pattern) match(path string, capture bool) (map[string]string, bool) {
	parts := splitPath(path)

	var params map[string]string
	if capture {
		params = make(map[string]string)
	}

	for i, seg := range p.segments {
		if seg.kind == segRest {
			return params, true
		}
		if i >= len(parts) {
			return nil, false
		}
		switch seg.kind {
		case segLiteral:
			if parts[i] != seg.value {
				return nil, false
			}
		case segParam:
			if capture && seg.value != "" {
				params[seg.value] = parts[i]
			}
		}
	}

	if len(parts) != len(p.segments) {
		return nil, false
	}
	return params, true
}

// splitPath splits a URL path into its non-empty segments, so "/a//b/" and
// "/a/b" are equivalent.
func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	parts := raw[:0]
	for _, s := range raw {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}
