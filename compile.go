package shaped

import (
	"fmt"
	"regexp"
)

// Schema is the immutable, invariant-checked tree produced by Compile. It is
// the only artifact Validate accepts. A Schema is safe for concurrent use:
// many Validate calls may run against it on independent goroutines.
type Schema struct {
	root *ObjectType
	reg  *registry
}

// Compile turns DSL source text into a Schema. Any SchemaError, whether from
// the lexer, the parser or the semantic pass, is fatal: there is no
// best-effort schema. The first Compile freezes the format registry.
func Compile(src string) (*Schema, error) {
	return compileWith(src, defaultRegistry.freeze())
}

func compileWith(src string, reg *registry) (*Schema, error) {
	toks, lerr := tokenize(src)
	if lerr != nil {
		return nil, lerr
	}
	root, perr := parseSchema(toks)
	if perr != nil {
		return nil, perr
	}
	s := &Schema{root: root, reg: reg}
	if serr := s.checkObject(root, RootPath()); serr != nil {
		return nil, serr
	}
	return s, nil
}

// MustCompile is Compile, panicking on error. Intended for schemas fixed at
// program start.
func MustCompile(src string) *Schema {
	s, err := Compile(src)
	if err != nil {
		panic("shaped: " + err.Error())
	}
	return s
}

func semErr(p Path, off int, kind, msg string) *SchemaError {
	return &SchemaError{Stage: StageSemantic, Offset: off, Path: p.String(), Kind: kind, Message: msg}
}

// checkObject performs the semantic pass over one field list: name
// uniqueness, type resolution, constraint legality and rewriting, and
// default conformance. The first violated invariant aborts compilation.
func (s *Schema) checkObject(o *ObjectType, p Path) *SchemaError {
	seen := make(map[string]struct{}, len(o.Fields))
	for i := range o.Fields {
		f := &o.Fields[i]
		fp := p.Field(f.Name)
		if _, dup := seen[f.Name]; dup {
			return semErr(fp, f.off, KindDuplicateField, fmt.Sprintf("field %q declared twice", f.Name))
		}
		seen[f.Name] = struct{}{}
		if err := s.checkType(f.Type, fp); err != nil {
			return err
		}
		if _, ok := f.Type.(*UnionType); !ok {
			if err := s.checkConstraints(f.Type, &f.Constraints, fp, f.off); err != nil {
				return err
			}
		}
		if f.Default != nil {
			// Default conformance runs through the validation engine with the
			// field treated as present and required; optionality plays no role.
			if _, iss := s.validateType(f.Type, f.Constraints, *f.Default, fp); len(iss) > 0 {
				return &SchemaError{
					Stage:   StageSemantic,
					Offset:  f.off,
					Path:    fp.String(),
					Kind:    KindBadDefault,
					Message: fmt.Sprintf("default %s does not conform to the field type: %s", f.Default.String(), iss.Error()),
					Issues:  iss,
				}
			}
		}
	}
	return nil
}

func (s *Schema) checkType(t TypeExpr, p Path) *SchemaError {
	switch n := t.(type) {
	case *Primitive:
		return nil // the parser only produces known primitive names
	case *Format:
		if _, ok := s.reg.lookup(n.Name); !ok {
			return semErr(p, n.off, KindUnknownType, fmt.Sprintf("unknown type %q", n.Name))
		}
		return nil
	case *ObjectType:
		return s.checkObject(n, p)
	case *ArrayType:
		if err := s.checkType(n.Elem, p); err != nil {
			return err
		}
		if _, ok := n.Elem.(*UnionType); !ok {
			return s.checkConstraints(n.Elem, &n.ElemConstraints, p, -1)
		}
		return nil
	case *UnionType:
		for i := range n.Alts {
			alt := &n.Alts[i]
			if err := s.checkType(alt.Term, p); err != nil {
				return err
			}
			if err := s.checkConstraints(alt.Term, &alt.Constraints, p, -1); err != nil {
				return err
			}
		}
		return nil
	default:
		return semErr(p, -1, KindUnknownType, "unsupported type expression")
	}
}

// checkConstraints verifies base-type legality for the constraints bound to
// one term and rewrites numeric ranges into LengthRange for string-shaped
// terms (exclusive bounds normalize to inclusive by one).
func (s *Schema) checkConstraints(term TypeExpr, cons *[]Constraint, p Path, off int) *SchemaError {
	base := baseKind(term)
	for i, c := range *cons {
		switch cc := c.(type) {
		case *NumericRange:
			switch base {
			case KindInt:
				if cc.Min.Kind() != KindInt || cc.Max.Kind() != KindInt {
					return semErr(p, off, KindBadRange, "int range bounds must be integers")
				}
			case KindFloat:
				// bounds were materialized as floats by the parser
			case KindString:
				mi, ok1 := cc.Min.AsInt()
				ma, ok2 := cc.Max.AsInt()
				if !ok1 || !ok2 {
					return semErr(p, off, KindBadLengthBound, "length bounds must be integers")
				}
				if mi < 0 || ma < 0 {
					return semErr(p, off, KindBadLengthBound, "length bounds must be non-negative")
				}
				if !cc.IncMin {
					mi++
				}
				if !cc.IncMax {
					ma--
				}
				(*cons)[i] = &LengthRange{Min: mi, Max: ma}
			default:
				return semErr(p, off, KindConstraintNotAllowed, fmt.Sprintf("range constraint not allowed on %s", typeName(term)))
			}
		case *Regex:
			if !legalConstraint(base, ConstraintRegex) {
				return semErr(p, off, KindConstraintNotAllowed, fmt.Sprintf("regex constraint not allowed on %s", typeName(term)))
			}
			re, err := regexp.Compile(cc.Pattern)
			if err != nil {
				return semErr(p, off, KindBadPattern, fmt.Sprintf("invalid pattern %q: %v", cc.Pattern, err))
			}
			cc.re = re
		case *EnumSet:
			if !legalConstraint(base, ConstraintEnum) {
				return semErr(p, off, KindConstraintNotAllowed, fmt.Sprintf("enum constraint not allowed on %s", typeName(term)))
			}
			for _, v := range cc.Values {
				if v.Kind() != base {
					return semErr(p, off, KindBadEnum, fmt.Sprintf("enum value %s does not match base type %s", v.String(), base))
				}
			}
		case *LengthRange:
			if !legalConstraint(base, ConstraintLength) {
				return semErr(p, off, KindConstraintNotAllowed, fmt.Sprintf("length constraint not allowed on %s", typeName(term)))
			}
		}
	}
	return nil
}

// typeName renders the DSL-facing name of a term for diagnostics.
func typeName(t TypeExpr) string {
	switch n := t.(type) {
	case *Primitive:
		return n.Name
	case *Format:
		return n.Name
	case *ObjectType:
		return "object"
	case *ArrayType:
		return "array"
	case *UnionType:
		return "union"
	default:
		return "invalid"
	}
}
