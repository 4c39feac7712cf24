// Package json decodes and encodes shaped Values from and to JSON while
// preserving object key order, which encoding/json map round-trips lose.
package json

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"

	shaped "github.com/reoring/shaped"
)

// Decode parses one JSON document into a Value. Numbers keep their syntactic
// kind: a literal with a fraction or exponent becomes a float, everything
// else an int (falling back to float on int64 overflow). Object key order is
// preserved.
func Decode(data []byte) (shaped.Value, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return shaped.Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return shaped.Value{}, fmt.Errorf("json: trailing data after document")
	}
	return v, nil
}

// DecodeReader is Decode over a stream.
func DecodeReader(r io.Reader) (shaped.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return shaped.Value{}, err
	}
	return Decode(data)
}

func decodeValue(dec *gojson.Decoder) (shaped.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return shaped.Value{}, err
	}
	switch t := tok.(type) {
	case gojson.Delim:
		switch t {
		case '{':
			obj := shaped.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return shaped.Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return shaped.Value{}, fmt.Errorf("json: object key is not a string: %v", keyTok)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return shaped.Value{}, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil { // closing '}'
				return shaped.Value{}, err
			}
			return obj.Value(), nil
		case '[':
			elems := []shaped.Value{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return shaped.Value{}, err
				}
				elems = append(elems, v)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return shaped.Value{}, err
			}
			return shaped.Array(elems...), nil
		default:
			return shaped.Value{}, fmt.Errorf("json: unexpected delimiter %q", t)
		}
	case bool:
		return shaped.Bool(t), nil
	case string:
		return shaped.String(t), nil
	case gojson.Number:
		return decodeNumber(string(t))
	case nil:
		return shaped.Null(), nil
	default:
		return shaped.Value{}, fmt.Errorf("json: unexpected token %v", tok)
	}
}

func decodeNumber(lit string) (shaped.Value, error) {
	if strings.ContainsAny(lit, ".eE") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return shaped.Value{}, fmt.Errorf("json: invalid number %q", lit)
		}
		return shaped.Float(f), nil
	}
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return shaped.Int(i), nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return shaped.Value{}, fmt.Errorf("json: invalid number %q", lit)
	}
	return shaped.Float(f), nil
}

// Encode renders a Value as compact JSON, emitting object keys in their
// stored order.
func Encode(v shaped.Value) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := encodeValue(buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v shaped.Value) error {
	switch v.Kind() {
	case shaped.KindNull:
		buf.WriteString("null")
	case shaped.KindBool:
		b, _ := v.AsBool()
		buf.WriteString(strconv.FormatBool(b))
	case shaped.KindInt:
		i, _ := v.AsInt()
		buf.WriteString(strconv.FormatInt(i, 10))
	case shaped.KindFloat:
		f, _ := v.AsFloat()
		out, err := gojson.Marshal(f)
		if err != nil {
			return err
		}
		buf.Write(out)
	case shaped.KindString:
		s, _ := v.AsString()
		out, err := gojson.Marshal(s)
		if err != nil {
			return err
		}
		buf.Write(out)
	case shaped.KindArray:
		arr, _ := v.AsArray()
		buf.WriteByte('[')
		for i := range arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, arr[i]); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case shaped.KindObject:
		obj, _ := v.AsObject()
		buf.WriteByte('{')
		first := true
		var encErr error
		obj.Range(func(k string, ev shaped.Value) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			kb, err := gojson.Marshal(k)
			if err != nil {
				encErr = err
				return false
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := encodeValue(buf, ev); err != nil {
				encErr = err
				return false
			}
			return true
		})
		if encErr != nil {
			return encErr
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("json: cannot encode invalid value")
	}
	return nil
}
