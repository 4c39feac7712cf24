package shaped

import (
	"fmt"
	"strconv"
)

// Path builds dotted/indexed field paths in a chain-safe way and creates
// Issues. The zero Path is the schema root and renders as "".
type Path struct {
	s string
}

// RootPath returns the schema root path.
func RootPath() Path { return Path{} }

// Field appends an object key: "" + "profile" -> "profile",
// "profile" + "contact" -> "profile.contact".
func (p Path) Field(name string) Path {
	if p.s == "" {
		return Path{s: name}
	}
	return Path{s: p.s + "." + name}
}

// Index appends an array index: "tags" + 2 -> "tags[2]".
func (p Path) Index(i int) Path {
	return Path{s: p.s + "[" + strconv.Itoa(i) + "]"}
}

// String returns the rendered path ("" for the root).
func (p Path) String() string { return p.s }

// Issue creates an Issue at this path with alternating key/value params.
func (p Path) Issue(code, msg string, kv ...any) Issue {
	var m map[string]any
	if len(kv) > 0 {
		m = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			m[fmt.Sprint(kv[i])] = kv[i+1]
		}
	}
	return Issue{Path: p.s, Code: code, Message: msg, Params: m}
}
