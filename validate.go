package shaped

import (
	"context"
	"unicode/utf8"

	"github.com/reoring/shaped/i18n"
)

// Validate checks one input value against the schema and returns the
// normalized output: declared keys in input order, unknown keys passed
// through untouched, defaulted fields appended in declaration order. The
// input tree is never mutated. On failure the returned error is Issues with
// every violation, ordered by declaration order and array index.
func (s *Schema) Validate(ctx context.Context, in Value) (Value, error) {
	if err := ctx.Err(); err != nil {
		return Value{}, err
	}
	obj, ok := in.AsObject()
	if !ok {
		return Value{}, Issues{RootPath().Issue(CodeInvalidType, i18n.T(CodeInvalidType, nil),
			"expected", "object", "found", in.Kind().String())}
	}
	out, iss := s.validateObject(s.root, obj, RootPath())
	if len(iss) > 0 {
		return Value{}, iss
	}
	return out.Value(), nil
}

// validateObject resolves presence per field, validates present values, and
// assembles the output object. Validation is exhaustive: one bad field never
// hides another.
func (s *Schema) validateObject(ot *ObjectType, obj *Object, p Path) (*Object, Issues) {
	var iss Issues
	normalized := make(map[string]Value, len(ot.Fields))
	for i := range ot.Fields {
		f := &ot.Fields[i]
		fp := p.Field(f.Name)
		v, present := obj.Get(f.Name)
		if !present {
			if f.Default != nil {
				normalized[f.Name] = f.Default.Clone()
				continue
			}
			if f.Optional {
				continue
			}
			iss = append(iss, fp.Issue(CodeRequired, i18n.T(CodeRequired, nil), "field", f.Name))
			continue
		}
		nv, fiss := s.validateType(f.Type, f.Constraints, v, fp)
		if len(fiss) > 0 {
			iss = append(iss, fiss...)
			continue
		}
		normalized[f.Name] = nv
	}
	if len(iss) > 0 {
		return nil, iss
	}
	out := NewObject()
	obj.Range(func(k string, v Value) bool {
		if nv, ok := normalized[k]; ok {
			out.Set(k, nv)
		} else {
			// unknown key, passed through as-is
			out.Set(k, v.Clone())
		}
		return true
	})
	for i := range ot.Fields {
		f := &ot.Fields[i]
		if obj.Has(f.Name) {
			continue
		}
		if nv, ok := normalized[f.Name]; ok {
			out.Set(f.Name, nv)
		}
	}
	return out, nil
}

// validateType dispatches on the type node. Shape is checked before
// constraints; a union resolves left to right and the first alternative that
// matches both shape and constraints wins.
func (s *Schema) validateType(t TypeExpr, cons []Constraint, v Value, p Path) (Value, Issues) {
	switch n := t.(type) {
	case *Primitive:
		want := primitiveNames[n.Name]
		if v.Kind() != want {
			return Value{}, Issues{p.Issue(CodeInvalidType, i18n.T(CodeInvalidType, nil),
				"expected", n.Name, "found", v.Kind().String())}
		}
		if iss := s.applyConstraints(cons, v, p); len(iss) > 0 {
			return Value{}, iss
		}
		return v.Clone(), nil
	case *Format:
		str, ok := v.AsString()
		if !ok {
			return Value{}, Issues{p.Issue(CodeInvalidType, i18n.T(CodeInvalidType, nil),
				"expected", n.Name, "found", v.Kind().String())}
		}
		var iss Issues
		if fn, ok := s.reg.lookup(n.Name); ok && !fn(str) {
			iss = append(iss, p.Issue(CodeInvalidFormat, i18n.T(CodeInvalidFormat, nil),
				"format", n.Name))
		}
		iss = append(iss, s.applyConstraints(cons, v, p)...)
		if len(iss) > 0 {
			return Value{}, iss
		}
		return v, nil
	case *ObjectType:
		obj, ok := v.AsObject()
		if !ok {
			return Value{}, Issues{p.Issue(CodeInvalidType, i18n.T(CodeInvalidType, nil),
				"expected", "object", "found", v.Kind().String())}
		}
		out, iss := s.validateObject(n, obj, p)
		if len(iss) > 0 {
			return Value{}, iss
		}
		return out.Value(), nil
	case *ArrayType:
		arr, ok := v.AsArray()
		if !ok {
			return Value{}, Issues{p.Issue(CodeInvalidType, i18n.T(CodeInvalidType, nil),
				"expected", "array", "found", v.Kind().String())}
		}
		iss := s.applyConstraints(cons, v, p)
		elems := make([]Value, 0, len(arr))
		for i, el := range arr {
			nv, eiss := s.validateType(n.Elem, n.ElemConstraints, el, p.Index(i))
			if len(eiss) > 0 {
				iss = append(iss, eiss...)
				continue
			}
			elems = append(elems, nv)
		}
		if len(iss) > 0 {
			return Value{}, iss
		}
		return Array(elems...), nil
	case *UnionType:
		tried := make([]string, 0, len(n.Alts))
		for i := range n.Alts {
			alt := &n.Alts[i]
			out, aiss := s.validateType(alt.Term, alt.Constraints, v, p)
			if len(aiss) == 0 {
				return out, nil
			}
			tried = append(tried, typeName(alt.Term))
		}
		return Value{}, Issues{p.Issue(CodeUnionMismatch, i18n.T(CodeUnionMismatch, nil),
			"tried", tried, "found", v.Kind().String())}
	default:
		return Value{}, Issues{p.Issue(CodeInvalidType, i18n.T(CodeInvalidType, nil),
			"expected", "invalid", "found", v.Kind().String())}
	}
}

// applyConstraints evaluates every constraint bound to a term whose shape
// already matched. All failures are collected.
func (s *Schema) applyConstraints(cons []Constraint, v Value, p Path) Issues {
	var iss Issues
	for _, c := range cons {
		switch cc := c.(type) {
		case *LengthRange:
			n := measureLength(v)
			if n < cc.Min {
				iss = append(iss, p.Issue(CodeTooShort, i18n.T(CodeTooShort, nil),
					"min", cc.Min, "got", n))
			}
			if n > cc.Max {
				iss = append(iss, p.Issue(CodeTooLong, i18n.T(CodeTooLong, nil),
					"max", cc.Max, "got", n))
			}
		case *NumericRange:
			n := numericOf(v)
			min := numericOf(cc.Min)
			max := numericOf(cc.Max)
			if (cc.IncMin && n < min) || (!cc.IncMin && n <= min) {
				iss = append(iss, p.Issue(CodeTooSmall, i18n.T(CodeTooSmall, nil),
					"min", cc.Min.String(), "inclusive", cc.IncMin, "got", v.String()))
			}
			if (cc.IncMax && n > max) || (!cc.IncMax && n >= max) {
				iss = append(iss, p.Issue(CodeTooBig, i18n.T(CodeTooBig, nil),
					"max", cc.Max.String(), "inclusive", cc.IncMax, "got", v.String()))
			}
		case *Regex:
			str, _ := v.AsString()
			if cc.re != nil && !cc.re.MatchString(str) {
				iss = append(iss, p.Issue(CodePattern, i18n.T(CodePattern, nil),
					"pattern", cc.Pattern))
			}
		case *EnumSet:
			match := false
			for _, allowed := range cc.Values {
				if v.Equal(allowed) {
					match = true
					break
				}
			}
			if !match {
				allowed := make([]string, len(cc.Values))
				for i, a := range cc.Values {
					allowed[i] = a.String()
				}
				iss = append(iss, p.Issue(CodeInvalidEnum, i18n.T(CodeInvalidEnum, nil),
					"allowed", allowed, "got", v.String()))
			}
		}
	}
	return iss
}

// measureLength counts runes, not bytes; multi-byte text validates by
// characters.
func measureLength(v Value) int64 {
	str, _ := v.AsString()
	return int64(utf8.RuneCountInString(str))
}

// numericOf widens int and float payloads to float64 for range comparison.
// Constraint legality guarantees the value is one of the two.
func numericOf(v Value) float64 {
	if i, ok := v.AsInt(); ok {
		return float64(i)
	}
	f, _ := v.AsFloat()
	return f
}
