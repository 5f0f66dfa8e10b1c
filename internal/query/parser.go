package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
)

const (
	orSeparator   = ","
	fieldSep      = ":"
	exactPrefix   = "="
	regexPrefix   = ":"
	rangeSep      = ".."
	globMetaChars = "*?[{"
)

var (
	fieldNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	rangeRe     = regexp.MustCompile(`^([-+]?[0-9]*\.?[0-9]+)?\.\.([-+]?[0-9]*\.?[0-9]+)?$`)
)

// Parse parses query terms. An empty list yields a query matching everything.
func Parse(terms []string) (*Query, error) {
	q := &Query{source: append([]string(nil), terms...)}
	var group []*Term

	for _, raw := range terms {
		if raw == orSeparator {
			if len(group) > 0 {
				q.groups = append(q.groups, group)
			}
			group = nil
			continue
		}

		term, err := ParseTerm(raw)
		if err != nil {
			return nil, err
		}
		group = append(group, term)
	}
	if len(group) > 0 {
		q.groups = append(q.groups, group)
	}
	return q, nil
}

// ParseTerm parses a single query term.
func ParseTerm(raw string) (*Term, error) {
	t := &Term{Raw: raw}
	s := raw

	if len(s) > 1 && (s[0] == '^' || s[0] == '-') {
		t.Negate = true
		s = s[1:]
	}

	pattern := s
	if idx := strings.Index(s, fieldSep); idx >= 0 {
		key := s[:idx]
		if key == "" || fieldNameRe.MatchString(key) {
			t.Field = strings.ToLower(key)
			pattern = s[idx+len(fieldSep):]
		}
	}

	pred, err := parsePattern(t.Field, pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid query term %q: %w", raw, err)
	}
	t.pred = pred
	return t, nil
}

func parsePattern(field, pattern string) (predicate, error) {
	switch {
	case strings.HasPrefix(pattern, regexPrefix):
		re, err := regexp.Compile(pattern[len(regexPrefix):])
		if err != nil {
			return nil, fmt.Errorf("bad regular expression: %w", err)
		}
		return regexPredicate{re: re}, nil

	case strings.HasPrefix(pattern, exactPrefix):
		return exactPredicate{want: pattern[len(exactPrefix):]}, nil

	case field == "path" && strings.ContainsAny(pattern, globMetaChars):
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("bad glob pattern: %w", err)
		}
		return globPredicate{g: g}, nil
	}

	if m := rangeRe.FindStringSubmatch(pattern); m != nil && (m[1] != "" || m[2] != "") {
		return parseRange(m[1], m[2])
	}

	return substringPredicate{needle: strings.ToLower(pattern)}, nil
}

func parseRange(lo, hi string) (predicate, error) {
	var r rangePredicate
	if lo != "" {
		v, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return nil, fmt.Errorf("bad range start %q", lo)
		}
		r.lo, r.hasLo = v, true
	}
	if hi != "" {
		v, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return nil, fmt.Errorf("bad range end %q", hi)
		}
		r.hi, r.hasHi = v, true
	}
	if r.hasLo && r.hasHi && r.lo > r.hi {
		return nil, fmt.Errorf("range start %v is greater than end %v", r.lo, r.hi)
	}
	return r, nil
}
