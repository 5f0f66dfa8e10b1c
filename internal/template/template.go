// Package template compiles field templates such as "$artist - %upper{$title}"
// and evaluates them against library records.
//
// Syntax:
//   - $field or ${field} substitutes a field value ("" when missing)
//   - $$ is a literal dollar sign
//   - %name{arg,arg} calls a function; arguments are templates themselves
//   - inside function arguments, \ escapes the next character
//
// List values are rendered joined with model.ListSeparator.
package template

import (
	"fmt"
	"strings"

	"github.com/aidanlsb/mvtag/internal/model"
)

// Getter is the record surface a template reads from.
type Getter interface {
	Get(field string) (model.Value, bool)
}

// Template is a compiled template.
type Template struct {
	source string
	root   expr
}

type node interface {
	eval(g Getter, b *strings.Builder)
}

type expr []node

type literal string

type fieldRef string

type call struct {
	name string
	fn   function
	args []expr
}

func (e expr) eval(g Getter, b *strings.Builder) {
	for _, n := range e {
		n.eval(g, b)
	}
}

func (e expr) String(g Getter) string {
	var b strings.Builder
	e.eval(g, &b)
	return b.String()
}

func (l literal) eval(_ Getter, b *strings.Builder) {
	b.WriteString(string(l))
}

func (f fieldRef) eval(g Getter, b *strings.Builder) {
	if g == nil {
		return
	}
	if v, ok := g.Get(string(f)); ok {
		b.WriteString(v.Text(model.ListSeparator))
	}
}

func (c *call) eval(g Getter, b *strings.Builder) {
	args := make([]string, len(c.args))
	for i, a := range c.args {
		args[i] = a.String(g)
	}
	b.WriteString(c.fn.apply(g, args))
}

// Compile parses a template source string.
func Compile(src string) (*Template, error) {
	p := &parser{src: src}
	root, err := p.parseExpr(false)
	if err != nil {
		return nil, err
	}
	return &Template{source: src, root: root}, nil
}

// MustCompile is like Compile but panics on error. Intended for built-in
// formats known to be valid.
func MustCompile(src string) *Template {
	t, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return t
}

// Source returns the original template text.
func (t *Template) Source() string {
	return t.source
}

// IsLiteral reports whether the template contains no substitutions.
func (t *Template) IsLiteral() bool {
	for _, n := range t.root {
		if _, ok := n.(literal); !ok {
			return false
		}
	}
	return true
}

// Evaluate renders the template against a record.
func (t *Template) Evaluate(g Getter) string {
	return t.root.String(g)
}

// SyntaxError reports a malformed template.
type SyntaxError struct {
	Source string
	Pos    int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template %q: %s at position %d", e.Source, e.Msg, e.Pos)
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(pos int, format string, args ...interface{}) error {
	return &SyntaxError{Source: p.src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// parseExpr reads nodes until the end of input or, inside a function call,
// until an unescaped ',' or '}'.
func (p *parser) parseExpr(inCall bool) (expr, error) {
	var out expr
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			out = append(out, literal(lit.String()))
			lit.Reset()
		}
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '$':
			if p.peek(1) == '$' {
				lit.WriteByte('$')
				p.pos += 2
				continue
			}
			name, err := p.readFieldRef()
			if err != nil {
				return nil, err
			}
			if name == "" {
				lit.WriteByte('$')
				p.pos++
				continue
			}
			flush()
			out = append(out, fieldRef(name))
		case c == '%':
			start := p.pos
			name := identAt(p.src, p.pos+1)
			if name == "" || p.peekAt(p.pos+1+len(name)) != '{' {
				lit.WriteByte('%')
				p.pos++
				continue
			}
			fn, ok := functions[name]
			if !ok {
				return nil, p.errorf(start, "unknown function %%%s", name)
			}
			p.pos += 1 + len(name) + 1
			args, err := p.parseArgs(start)
			if err != nil {
				return nil, err
			}
			if len(args) < fn.minArgs || len(args) > fn.maxArgs {
				return nil, p.errorf(start, "%%%s takes %s, got %d", name, fn.arity(), len(args))
			}
			flush()
			out = append(out, &call{name: name, fn: fn, args: args})
		case inCall && (c == ',' || c == '}'):
			flush()
			return out, nil
		case inCall && c == '\\' && p.pos+1 < len(p.src):
			lit.WriteByte(p.src[p.pos+1])
			p.pos += 2
		default:
			lit.WriteByte(c)
			p.pos++
		}
	}

	if inCall {
		return nil, p.errorf(p.pos, "unexpected end of template")
	}
	flush()
	return out, nil
}

func (p *parser) parseArgs(callStart int) ([]expr, error) {
	var args []expr
	for {
		arg, err := p.parseExpr(true)
		if err != nil {
			return nil, p.errorf(callStart, "unclosed function call")
		}
		args = append(args, arg)
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return args, nil
		}
	}
}

// readFieldRef consumes "$name" or "${name}" at the current position.
// It returns "" without consuming anything when no reference follows.
func (p *parser) readFieldRef() (string, error) {
	if p.peek(1) == '{' {
		end := strings.IndexByte(p.src[p.pos+2:], '}')
		if end < 0 {
			return "", p.errorf(p.pos, "unclosed ${")
		}
		name := p.src[p.pos+2 : p.pos+2+end]
		if name == "" {
			return "", p.errorf(p.pos, "empty field name")
		}
		p.pos += 2 + end + 1
		return name, nil
	}
	name := identAt(p.src, p.pos+1)
	p.pos += 1 + len(name)
	if name == "" {
		p.pos--
	}
	return name, nil
}

func (p *parser) peek(offset int) byte {
	return p.peekAt(p.pos + offset)
}

func (p *parser) peekAt(i int) byte {
	if i < 0 || i >= len(p.src) {
		return 0
	}
	return p.src[i]
}

func identAt(s string, start int) string {
	end := start
	for end < len(s) && isIdentByte(s[end]) {
		end++
	}
	if start >= len(s) {
		return ""
	}
	return s[start:end]
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
