// Package yaml decodes and encodes shaped Values from and to YAML. Decoding
// walks yaml.Node trees directly so mapping key order survives, which the
// map[string]any route loses.
package yaml

import (
	"fmt"

	yamlv3 "gopkg.in/yaml.v3"

	shaped "github.com/reoring/shaped"
)

// Decode parses one YAML document into a Value. Scalars map by resolved tag:
// !!int to int, !!float to float, !!bool to bool, !!null to null, everything
// else string. Mapping key order is preserved.
func Decode(data []byte) (shaped.Value, error) {
	var root yamlv3.Node
	if err := yamlv3.Unmarshal(data, &root); err != nil {
		return shaped.Value{}, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return shaped.Null(), nil
	}
	return decodeNode(root.Content[0])
}

func decodeNode(n *yamlv3.Node) (shaped.Value, error) {
	switch n.Kind {
	case yamlv3.AliasNode:
		return decodeNode(n.Alias)
	case yamlv3.ScalarNode:
		return decodeScalar(n)
	case yamlv3.SequenceNode:
		elems := make([]shaped.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeNode(c)
			if err != nil {
				return shaped.Value{}, err
			}
			elems = append(elems, v)
		}
		return shaped.Array(elems...), nil
	case yamlv3.MappingNode:
		obj := shaped.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yamlv3.ScalarNode {
				return shaped.Value{}, fmt.Errorf("yaml: mapping key at line %d is not a scalar", k.Line)
			}
			v, err := decodeNode(n.Content[i+1])
			if err != nil {
				return shaped.Value{}, err
			}
			obj.Set(k.Value, v)
		}
		return obj.Value(), nil
	default:
		return shaped.Value{}, fmt.Errorf("yaml: unsupported node kind %d at line %d", n.Kind, n.Line)
	}
}

func decodeScalar(n *yamlv3.Node) (shaped.Value, error) {
	switch n.Tag {
	case "!!null":
		return shaped.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return shaped.Value{}, err
		}
		return shaped.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return shaped.Value{}, err
		}
		return shaped.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return shaped.Value{}, err
		}
		return shaped.Float(f), nil
	default: // !!str, !!timestamp and custom tags stay strings
		return shaped.String(n.Value), nil
	}
}

// Encode renders a Value as YAML, emitting mapping keys in their stored
// order.
func Encode(v shaped.Value) ([]byte, error) {
	node, err := encodeNode(v)
	if err != nil {
		return nil, err
	}
	return yamlv3.Marshal(node)
}

func encodeNode(v shaped.Value) (*yamlv3.Node, error) {
	switch v.Kind() {
	case shaped.KindNull:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case shaped.KindBool:
		b, _ := v.AsBool()
		n := &yamlv3.Node{}
		if err := n.Encode(b); err != nil {
			return nil, err
		}
		return n, nil
	case shaped.KindInt:
		i, _ := v.AsInt()
		n := &yamlv3.Node{}
		if err := n.Encode(i); err != nil {
			return nil, err
		}
		return n, nil
	case shaped.KindFloat:
		f, _ := v.AsFloat()
		n := &yamlv3.Node{}
		if err := n.Encode(f); err != nil {
			return nil, err
		}
		return n, nil
	case shaped.KindString:
		s, _ := v.AsString()
		n := &yamlv3.Node{}
		if err := n.Encode(s); err != nil {
			return nil, err
		}
		return n, nil
	case shaped.KindArray:
		arr, _ := v.AsArray()
		n := &yamlv3.Node{Kind: yamlv3.SequenceNode, Tag: "!!seq"}
		for i := range arr {
			c, err := encodeNode(arr[i])
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case shaped.KindObject:
		obj, _ := v.AsObject()
		n := &yamlv3.Node{Kind: yamlv3.MappingNode, Tag: "!!map"}
		var encErr error
		obj.Range(func(k string, ev shaped.Value) bool {
			kn := &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!str", Value: k}
			vn, err := encodeNode(ev)
			if err != nil {
				encErr = err
				return false
			}
			n.Content = append(n.Content, kn, vn)
			return true
		})
		if encErr != nil {
			return nil, encErr
		}
		return n, nil
	default:
		return nil, fmt.Errorf("yaml: cannot encode invalid value")
	}
}
