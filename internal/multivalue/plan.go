package multivalue

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aidanlsb/mvtag/internal/model"
	"github.com/aidanlsb/mvtag/internal/template"
)

// Change is a proposed modification of one field of one record.
type Change struct {
	Field   string
	Old     model.Value
	HadOld  bool
	New     model.Value
	Deleted bool
}

// Plan holds the compiled operations of one invocation, grouped by field.
type Plan struct {
	fields []*fieldPlan
}

type fieldPlan struct {
	name     string
	decl     Field
	declared bool
	adds     []*template.Template
	removes  []*template.Template
	set      *template.Template
	del      bool
}

// NewPlan groups operations by field and compiles their values as templates.
func NewPlan(ops []Operation, decls Declarations) (*Plan, error) {
	byField := make(map[string]*fieldPlan)
	var order []string

	for _, op := range ops {
		if model.IsFixedAttr(op.Field) {
			return nil, fmt.Errorf("%w: '%s'", model.ErrReadOnlyField, op.Field)
		}

		fp, ok := byField[op.Field]
		if !ok {
			decl, declared := decls.Lookup(op.Field)
			fp = &fieldPlan{name: op.Field, decl: decl, declared: declared}
			byField[op.Field] = fp
			order = append(order, op.Field)
		}

		if op.Kind == OpDelete {
			fp.del = true
			continue
		}

		tmpl, err := template.Compile(op.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for field '%s': %w", op.Field, err)
		}
		switch op.Kind {
		case OpAdd:
			fp.adds = append(fp.adds, tmpl)
		case OpRemove:
			fp.removes = append(fp.removes, tmpl)
		case OpSet:
			fp.set = tmpl
		}
	}

	sort.Strings(order)
	plan := &Plan{fields: make([]*fieldPlan, 0, len(order))}
	for _, name := range order {
		plan.fields = append(plan.fields, byField[name])
	}
	return plan, nil
}

// Fields returns the names of the fields the plan touches, sorted.
func (p *Plan) Fields() []string {
	names := make([]string, len(p.fields))
	for i, fp := range p.fields {
		names[i] = fp.name
	}
	return names
}

// Empty reports whether the plan has no operations.
func (p *Plan) Empty() bool {
	return len(p.fields) == 0
}

// Propose computes the changes the plan would make to rec, without
// modifying it. Fields whose value would not change are omitted.
func (p *Plan) Propose(rec model.Record) []Change {
	var changes []Change
	for _, fp := range p.fields {
		old, had := rec.Get(fp.name)

		if fp.del {
			if had {
				changes = append(changes, Change{Field: fp.name, Old: old, HadOld: true, Deleted: true})
			}
			continue
		}

		next := fp.propose(rec, old)
		if had && old.Equal(next) {
			continue
		}
		if !had && next.IsEmpty() {
			continue
		}
		changes = append(changes, Change{Field: fp.name, Old: old, HadOld: had, New: next})
	}
	return changes
}

func (fp *fieldPlan) propose(rec model.Record, old model.Value) model.Value {
	if fp.set != nil {
		value := fp.set.Evaluate(rec)
		if fp.declared && fp.decl.Kind == KindList {
			return model.List(Split(value, model.ListSeparator))
		}
		return model.String(value)
	}

	adds := evaluateAll(fp.adds, rec)
	removes := evaluateAll(fp.removes, rec)

	if fp.decl.Kind == KindDelimited {
		current := old.Text(fp.decl.Delimiter)
		return model.String(MergeString(current, adds, removes, fp.decl.Delimiter))
	}
	return model.List(MergeList(old.Strings(), adds, removes))
}

func evaluateAll(templates []*template.Template, rec model.Record) []string {
	out := make([]string, len(templates))
	for i, t := range templates {
		out[i] = t.Evaluate(rec)
	}
	return out
}

// Apply writes changes into rec.
func Apply(rec model.Record, changes []Change) {
	for _, c := range changes {
		if c.Deleted {
			rec.Delete(c.Field)
			continue
		}
		rec.Set(c.Field, c.New)
	}
}

// ChangedFields returns the field names touched by changes.
func ChangedFields(changes []Change) []string {
	names := make([]string, len(changes))
	for i, c := range changes {
		names[i] = c.Field
	}
	return names
}

// Describe renders a change as "old -> new" for previews.
func (c Change) Describe() string {
	if c.Deleted {
		return fmt.Sprintf("%s (deleted)", c.Old.Display())
	}
	if !c.HadOld {
		return c.New.Display()
	}
	var b strings.Builder
	b.WriteString(c.Old.Display())
	b.WriteString(" -> ")
	b.WriteString(c.New.Display())
	return b.String()
}
