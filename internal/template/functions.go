package template

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type function struct {
	minArgs int
	maxArgs int
	apply   func(g Getter, args []string) string
}

func (f function) arity() string {
	if f.minArgs == f.maxArgs {
		if f.minArgs == 1 {
			return "1 argument"
		}
		return fmt.Sprintf("%d arguments", f.minArgs)
	}
	return fmt.Sprintf("%d to %d arguments", f.minArgs, f.maxArgs)
}

var functions = map[string]function{
	"upper": {1, 1, func(_ Getter, a []string) string { return strings.ToUpper(a[0]) }},
	"lower": {1, 1, func(_ Getter, a []string) string { return strings.ToLower(a[0]) }},
	"title": {1, 1, func(_ Getter, a []string) string { return cases.Title(language.Und).String(a[0]) }},
	"left":  {2, 2, func(_ Getter, a []string) string { return left(a[0], a[1]) }},
	"right": {2, 2, func(_ Getter, a []string) string { return right(a[0], a[1]) }},
	"if": {2, 3, func(_ Getter, a []string) string {
		if truthy(a[0]) {
			return a[1]
		}
		return optional(a, 2)
	}},
	"ifdef": {2, 3, func(g Getter, a []string) string {
		if g != nil {
			if v, ok := g.Get(strings.TrimSpace(a[0])); ok && !v.IsEmpty() {
				return a[1]
			}
		}
		return optional(a, 2)
	}},
}

func truthy(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n != 0
	}
	return !strings.EqualFold(s, "false")
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func left(s, n string) string {
	count, err := strconv.Atoi(strings.TrimSpace(n))
	if err != nil || count < 0 {
		return s
	}
	runes := []rune(s)
	if count >= len(runes) {
		return s
	}
	return string(runes[:count])
}

func right(s, n string) string {
	count, err := strconv.Atoi(strings.TrimSpace(n))
	if err != nil || count < 0 {
		return s
	}
	runes := []rune(s)
	if count >= len(runes) {
		return s
	}
	return string(runes[len(runes)-count:])
}
