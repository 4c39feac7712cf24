package shaped

import "regexp"

// TypeKind identifies a type-expression node.
type TypeKind int

const (
	TypePrimitive TypeKind = iota
	TypeFormat
	TypeObject
	TypeArray
	TypeUnion
)

// TypeExpr is the root interface over schema type nodes. Trees are strictly
// finite and acyclic by grammar construction; nodes own their children.
type TypeExpr interface {
	TypeKind() TypeKind
}

// Primitive is one of the built-in kinds: string, int, float, bool, and the
// shape-only bare forms of object and array.
type Primitive struct {
	Name string
	off  int
}

func (p *Primitive) TypeKind() TypeKind { return TypePrimitive }

// Format is a named string-format type (email, uri, uuid, ...) resolved
// through the format registry at compile time.
type Format struct {
	Name string
	off  int
}

func (f *Format) TypeKind() TypeKind { return TypeFormat }

// ObjectType is an ordered field list: object(a:string, b:int).
type ObjectType struct {
	Fields []FieldSpec
}

func (o *ObjectType) TypeKind() TypeKind { return TypeObject }

// ArrayType is array<Elem>. ElemConstraints are the constraints written
// inside the angle brackets when Elem is not a union (a union carries
// constraints per alternative).
type ArrayType struct {
	Elem            TypeExpr
	ElemConstraints []Constraint
}

func (a *ArrayType) TypeKind() TypeKind { return TypeArray }

// Alt is one union alternative together with the constraints bound to it.
// Constraints bind to the immediately preceding union term, not to the whole
// union.
type Alt struct {
	Term        TypeExpr
	Constraints []Constraint
}

// UnionType is an ordered list of at least two alternatives. Order is
// significant: validation resolves left to right, first full match wins. A
// union never directly contains another union; the grammar flattens by
// construction.
type UnionType struct {
	Alts []Alt
}

func (u *UnionType) TypeKind() TypeKind { return TypeUnion }

// FieldSpec is one named entry in an object type. Constraints apply when Type
// is not a union; union alternatives carry their own. Default, when present,
// is a literal that conforms to (Type, Constraints) with optionality ignored
// — the compiler enforces this.
type FieldSpec struct {
	Name        string
	Optional    bool
	Type        TypeExpr
	Constraints []Constraint
	Default     *Value
	off         int
}

// ConstraintKind identifies a constraint node.
type ConstraintKind int

const (
	ConstraintLength ConstraintKind = iota
	ConstraintRange
	ConstraintRegex
	ConstraintEnum
)

// String returns the DSL-facing constraint name.
func (k ConstraintKind) String() string {
	switch k {
	case ConstraintLength:
		return "length"
	case ConstraintRange:
		return "range"
	case ConstraintRegex:
		return "regex"
	case ConstraintEnum:
		return "enum"
	default:
		return "invalid"
	}
}

// Constraint is the interface over constraint nodes.
type Constraint interface {
	ConstraintKind() ConstraintKind
}

// LengthRange bounds the length of a string, inclusive on both ends.
// Exclusive source syntax ((a,b)) is normalized to inclusive bounds at
// compile time.
type LengthRange struct {
	Min, Max int64
}

func (c *LengthRange) ConstraintKind() ConstraintKind { return ConstraintLength }

// NumericRange bounds an int or float value. Min and Max keep the literal
// kinds they were written with; comparison is numeric.
type NumericRange struct {
	Min, Max       Value
	IncMin, IncMax bool
}

func (c *NumericRange) ConstraintKind() ConstraintKind { return ConstraintRange }

// Regex requires a string value to match the pattern. The pattern is
// compiled once, at schema compile time.
type Regex struct {
	Pattern string
	re      *regexp.Regexp
}

func (c *Regex) ConstraintKind() ConstraintKind { return ConstraintRegex }

// EnumSet requires the value to equal one of the listed literals.
type EnumSet struct {
	Values []Value
}

func (c *EnumSet) ConstraintKind() ConstraintKind { return ConstraintEnum }

// primitiveNames is the closed set of built-in type names; everything else
// resolves through the format registry.
var primitiveNames = map[string]Kind{
	"string": KindString,
	"int":    KindInt,
	"float":  KindFloat,
	"bool":   KindBool,
	"object": KindObject,
	"array":  KindArray,
}

// baseKind reports the value kind a non-union term matches against. Formats
// are string-shaped.
func baseKind(t TypeExpr) Kind {
	switch n := t.(type) {
	case *Primitive:
		return primitiveNames[n.Name]
	case *Format:
		return KindString
	case *ObjectType:
		return KindObject
	case *ArrayType:
		return KindArray
	default:
		return KindNull
	}
}
