package shaped

import (
	"fmt"
	"strconv"
)

// parser is a single-pass, fail-fast recursive-descent consumer of the token
// stream. The first grammar violation aborts the whole parse: a malformed
// schema has no well-defined continuation, unlike malformed input data which
// the engine reports exhaustively.
type parser struct {
	toks []token
	pos  int
}

func parseSchema(toks []token) (*ObjectType, *SchemaError) {
	p := &parser{toks: toks}
	if err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	fields, err := p.fieldList(tokRParen)
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokEOF); err != nil {
		return nil, err
	}
	return &ObjectType{Fields: fields}, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokenKind) *SchemaError {
	t := p.next()
	if t.kind != k {
		return p.errAt(t, k.String())
	}
	return nil
}

func (p *parser) errAt(found token, expected string) *SchemaError {
	kind := KindUnexpectedToken
	if found.kind == tokEOF {
		kind = KindUnexpectedEOF
	}
	return &SchemaError{
		Stage:   StageParse,
		Offset:  found.off,
		Kind:    kind,
		Message: fmt.Sprintf("expected %s, found %s", expected, found.describe()),
	}
}

// fieldList parses Field (',' Field)* up to and including the closing token.
// A trailing comma before the closer is tolerated.
func (p *parser) fieldList(closer tokenKind) ([]FieldSpec, *SchemaError) {
	fields := []FieldSpec{}
	for {
		if p.peek().kind == closer {
			p.next()
			return fields, nil
		}
		f, err := p.field()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		switch p.peek().kind {
		case tokComma:
			p.next()
		case closer:
			// closed on next iteration
		default:
			return nil, p.errAt(p.peek(), "',' or "+closer.String())
		}
	}
}

// field parses Name '?'? ':' Alt ('|' Alt)* ('=' Literal)?.
func (p *parser) field() (FieldSpec, *SchemaError) {
	name := p.next()
	if name.kind != tokIdent {
		return FieldSpec{}, p.errAt(name, "field name")
	}
	f := FieldSpec{Name: name.text, off: name.off}
	if p.peek().kind == tokQuestion {
		p.next()
		f.Optional = true
	}
	if err := p.expect(tokColon); err != nil {
		return FieldSpec{}, err
	}
	alts, err := p.alts()
	if err != nil {
		return FieldSpec{}, err
	}
	if len(alts) == 1 {
		f.Type = alts[0].Term
		f.Constraints = alts[0].Constraints
	} else {
		f.Type = &UnionType{Alts: alts}
	}
	if p.peek().kind == tokEqual {
		p.next()
		lit, err := p.literal(baseKind(alts[0].Term))
		if err != nil {
			return FieldSpec{}, err
		}
		f.Default = &lit
	}
	return f, nil
}

// alts parses UnionTerm Constraint* ('|' UnionTerm Constraint*)*. Constraints
// bind to the immediately preceding term.
func (p *parser) alts() ([]Alt, *SchemaError) {
	var alts []Alt
	for {
		term, err := p.unionTerm()
		if err != nil {
			return nil, err
		}
		cons, err := p.constraints(term)
		if err != nil {
			return nil, err
		}
		alts = append(alts, Alt{Term: term, Constraints: cons})
		if p.peek().kind != tokPipe {
			return alts, nil
		}
		p.next()
	}
}

func (p *parser) unionTerm() (TypeExpr, *SchemaError) {
	t := p.next()
	if t.kind != tokIdent {
		return nil, p.errAt(t, "type name")
	}
	switch t.text {
	case "object":
		if p.peek().kind == tokLParen {
			p.next()
			fields, err := p.fieldList(tokRParen)
			if err != nil {
				return nil, err
			}
			return &ObjectType{Fields: fields}, nil
		}
		return &Primitive{Name: "object", off: t.off}, nil
	case "array":
		if p.peek().kind == tokLAngle {
			p.next()
			elemAlts, err := p.alts()
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokRAngle); err != nil {
				return nil, err
			}
			at := &ArrayType{}
			if len(elemAlts) == 1 {
				at.Elem = elemAlts[0].Term
				at.ElemConstraints = elemAlts[0].Constraints
			} else {
				at.Elem = &UnionType{Alts: elemAlts}
			}
			return at, nil
		}
		return &Primitive{Name: "array", off: t.off}, nil
	default:
		if _, ok := primitiveNames[t.text]; ok {
			return &Primitive{Name: t.text, off: t.off}, nil
		}
		// Anything else is a named format; the compiler resolves it against
		// the registry.
		return &Format{Name: t.text, off: t.off}, nil
	}
}

// constraints parses the Constraint* suffix of one union term. Ranges are
// kept as NumericRange here; the compiler rewrites them into LengthRange for
// string-shaped terms.
func (p *parser) constraints(term TypeExpr) ([]Constraint, *SchemaError) {
	var cons []Constraint
	for {
		switch t := p.peek(); {
		case t.kind == tokLBracket:
			c, err := p.rangeConstraint(term, true)
			if err != nil {
				return nil, err
			}
			cons = append(cons, c)
		case t.kind == tokLParen:
			c, err := p.rangeConstraint(term, false)
			if err != nil {
				return nil, err
			}
			cons = append(cons, c)
		case t.kind == tokIdent && t.text == "regex":
			p.next()
			if err := p.expect(tokLParen); err != nil {
				return nil, err
			}
			pat := p.next()
			if pat.kind != tokString {
				return nil, p.errAt(pat, "pattern string")
			}
			if err := p.expect(tokRParen); err != nil {
				return nil, err
			}
			cons = append(cons, &Regex{Pattern: pat.text})
		case t.kind == tokIdent && t.text == "enum":
			p.next()
			c, err := p.enumConstraint(term)
			if err != nil {
				return nil, err
			}
			cons = append(cons, c)
		default:
			return cons, nil
		}
	}
}

// rangeConstraint parses '[' Num ',' Num ']' or '(' Num ',' Num ')'. The
// opening and closing brackets decide inclusivity independently, so mixed
// forms like [0,100) work.
func (p *parser) rangeConstraint(term TypeExpr, incMin bool) (Constraint, *SchemaError) {
	p.next() // opening bracket
	min, err := p.bound(term)
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokComma); err != nil {
		return nil, err
	}
	max, err := p.bound(term)
	if err != nil {
		return nil, err
	}
	var incMax bool
	switch t := p.next(); t.kind {
	case tokRBracket:
		incMax = true
	case tokRParen:
		incMax = false
	default:
		return nil, p.errAt(t, "']' or ')'")
	}
	return &NumericRange{Min: min, Max: max, IncMin: incMin, IncMax: incMax}, nil
}

// bound parses one range endpoint, materialized against the term it binds to
// the way the original grammar reads: float terms take any numeric literal,
// everything else keeps the literal's own syntax.
func (p *parser) bound(term TypeExpr) (Value, *SchemaError) {
	t := p.next()
	switch t.kind {
	case tokInt:
		if baseKind(term) == KindFloat {
			f, _ := strconv.ParseFloat(t.text, 64)
			return Float(f), nil
		}
		i, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return Value{}, &SchemaError{Stage: StageParse, Offset: t.off, Kind: KindInvalidNumber, Message: fmt.Sprintf("invalid integer %q", t.text)}
		}
		return Int(i), nil
	case tokFloat:
		f, _ := strconv.ParseFloat(t.text, 64)
		return Float(f), nil
	default:
		return Value{}, p.errAt(t, "number")
	}
}

// enumConstraint parses 'enum' '(' Literal (',' Literal)* ')'. Members are
// materialized against the term the enum binds to.
func (p *parser) enumConstraint(term TypeExpr) (Constraint, *SchemaError) {
	if err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	var vals []Value
	for {
		v, err := p.literal(baseKind(term))
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
		switch t := p.next(); t.kind {
		case tokComma:
			// next member
		case tokRParen:
			return &EnumSet{Values: vals}, nil
		default:
			return nil, p.errAt(t, "',' or ')'")
		}
	}
}

// literal parses one literal Value in the context of a base kind. Numbers are
// materialized per the context: int context parses i64, float context f64,
// string-shaped contexts keep the raw lexeme as a string (so that
// `_field:string[1,10]=5` yields the string "5"); other contexts keep the
// literal's own syntax and leave the mismatch to the compiler's default and
// enum conformance checks.
func (p *parser) literal(context Kind) (Value, *SchemaError) {
	t := p.next()
	switch t.kind {
	case tokString:
		return String(t.text), nil
	case tokInt:
		switch context {
		case KindFloat:
			f, _ := strconv.ParseFloat(t.text, 64)
			return Float(f), nil
		case KindString:
			return String(t.text), nil
		default:
			i, err := strconv.ParseInt(t.text, 10, 64)
			if err != nil {
				return Value{}, &SchemaError{Stage: StageParse, Offset: t.off, Kind: KindInvalidNumber, Message: fmt.Sprintf("invalid integer %q", t.text)}
			}
			return Int(i), nil
		}
	case tokFloat:
		if context == KindString {
			return String(t.text), nil
		}
		f, _ := strconv.ParseFloat(t.text, 64)
		return Float(f), nil
	case tokIdent:
		if context == KindBool {
			switch t.text {
			case "true":
				return Bool(true), nil
			case "false":
				return Bool(false), nil
			default:
				return Value{}, p.errAt(t, "'true' or 'false'")
			}
		}
		// Bare words are string literals: role:string enum(...)=user.
		return String(t.text), nil
	default:
		return Value{}, p.errAt(t, "literal")
	}
}
