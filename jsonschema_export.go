package shaped

import (
	"github.com/reoring/shaped/jsonschema"
)

// JSONSchema projects the compiled schema onto a minimal JSON Schema tree.
// The projection is best effort: ordered unions become oneOf (order is not
// representable), exclusive numeric bounds map to exclusiveMinimum/Maximum,
// and unknown-key tolerance maps to additionalProperties true.
func (s *Schema) JSONSchema() *jsonschema.Schema {
	return exportObject(s.root)
}

func exportObject(o *ObjectType) *jsonschema.Schema {
	js := &jsonschema.Schema{
		Type:                 "object",
		Properties:           map[string]*jsonschema.Schema{},
		AdditionalProperties: true,
	}
	for i := range o.Fields {
		f := &o.Fields[i]
		fs := exportType(f.Type, f.Constraints)
		if f.Default != nil {
			fs.Default = valueToAny(*f.Default)
		}
		js.Properties[f.Name] = fs
		if !f.Optional && f.Default == nil {
			js.Required = append(js.Required, f.Name)
		}
	}
	return js
}

func exportType(t TypeExpr, cons []Constraint) *jsonschema.Schema {
	var js *jsonschema.Schema
	switch n := t.(type) {
	case *Primitive:
		js = &jsonschema.Schema{Type: jsonType(n.Name)}
	case *Format:
		js = &jsonschema.Schema{Type: "string", Format: n.Name}
	case *ObjectType:
		js = exportObject(n)
	case *ArrayType:
		js = &jsonschema.Schema{Type: "array", Items: exportType(n.Elem, n.ElemConstraints)}
	case *UnionType:
		js = &jsonschema.Schema{}
		for i := range n.Alts {
			js.OneOf = append(js.OneOf, exportType(n.Alts[i].Term, n.Alts[i].Constraints))
		}
		return js // constraints live on the alternatives
	default:
		js = &jsonschema.Schema{}
	}
	applyExportConstraints(js, cons)
	return js
}

func jsonType(primitive string) string {
	switch primitive {
	case "int":
		return "integer"
	case "float":
		return "number"
	case "bool":
		return "boolean"
	default: // string, object, array share their names
		return primitive
	}
}

func applyExportConstraints(js *jsonschema.Schema, cons []Constraint) {
	for _, c := range cons {
		switch cc := c.(type) {
		case *LengthRange:
			mi, ma := cc.Min, cc.Max
			js.MinLength, js.MaxLength = &mi, &ma
		case *NumericRange:
			mi := numericOf(cc.Min)
			ma := numericOf(cc.Max)
			if cc.IncMin {
				js.Minimum = &mi
			} else {
				js.ExclusiveMinimum = &mi
			}
			if cc.IncMax {
				js.Maximum = &ma
			} else {
				js.ExclusiveMaximum = &ma
			}
		case *Regex:
			js.Pattern = cc.Pattern
		case *EnumSet:
			for _, v := range cc.Values {
				js.Enum = append(js.Enum, valueToAny(v))
			}
		}
	}
}

// valueToAny converts a Value into the plain Go shape encoding/json expects.
// Object key order is lost; JSON Schema metadata does not preserve it.
func valueToAny(v Value) any {
	switch v.Kind() {
	case KindBool:
		b, _ := v.AsBool()
		return b
	case KindInt:
		i, _ := v.AsInt()
		return i
	case KindFloat:
		f, _ := v.AsFloat()
		return f
	case KindString:
		s, _ := v.AsString()
		return s
	case KindArray:
		arr, _ := v.AsArray()
		out := make([]any, len(arr))
		for i := range arr {
			out[i] = valueToAny(arr[i])
		}
		return out
	case KindObject:
		obj, _ := v.AsObject()
		out := make(map[string]any, obj.Len())
		obj.Range(func(k string, ev Value) bool {
			out[k] = valueToAny(ev)
			return true
		})
		return out
	default:
		return nil
	}
}
