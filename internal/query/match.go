package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gobwas/glob"

	"github.com/aidanlsb/mvtag/internal/model"
)

type substringPredicate struct{ needle string }

func (p substringPredicate) matchString(s string) bool {
	return strings.Contains(strings.ToLower(s), p.needle)
}

type exactPredicate struct{ want string }

func (p exactPredicate) matchString(s string) bool { return s == p.want }

type regexPredicate struct{ re *regexp.Regexp }

func (p regexPredicate) matchString(s string) bool { return p.re.MatchString(s) }

type globPredicate struct{ g glob.Glob }

func (p globPredicate) matchString(s string) bool { return p.g.Match(s) }

type rangePredicate struct {
	lo, hi       float64
	hasLo, hasHi bool
}

func (p rangePredicate) matchString(s string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return false
	}
	if p.hasLo && v < p.lo {
		return false
	}
	if p.hasHi && v > p.hi {
		return false
	}
	return true
}

// Match reports whether rec satisfies the query.
func (q *Query) Match(rec model.Record) bool {
	if q == nil || q.IsEmpty() {
		return true
	}
	for _, group := range q.groups {
		if matchAll(group, rec) {
			return true
		}
	}
	return false
}

func matchAll(terms []*Term, rec model.Record) bool {
	for _, t := range terms {
		if !t.Match(rec) {
			return false
		}
	}
	return true
}

// Match reports whether rec satisfies the term.
func (t *Term) Match(rec model.Record) bool {
	fields := DefaultFields
	if t.Field != "" {
		fields = []string{t.Field}
	}

	matched := false
	for _, f := range fields {
		if t.matchField(rec, f) {
			matched = true
			break
		}
	}
	return matched != t.Negate
}

func (t *Term) matchField(rec model.Record, field string) bool {
	v, ok := rec.Get(field)
	values := v.Strings()
	if !ok || len(values) == 0 {
		// Bare terms only look at fields that exist.
		if t.Field == "" {
			return false
		}
		values = []string{""}
	}
	for _, s := range values {
		if t.pred.matchString(s) {
			return true
		}
	}
	return false
}
