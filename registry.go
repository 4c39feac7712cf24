package shaped

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FormatFunc reports whether a string satisfies a named format. Formats are
// the matching predicates behind extended types: the engine stays closed over
// a small set of dispatch kinds while the type set remains open.
type FormatFunc func(s string) bool

// registry holds the named format table. It is populated during the
// initialization phase and frozen by the first Compile; registration after
// the freeze fails so that concurrent validations never observe a mutating
// table.
type registry struct {
	mu      sync.RWMutex
	frozen  bool
	formats map[string]FormatFunc
}

var defaultRegistry = newRegistry()

func newRegistry() *registry {
	r := &registry{formats: map[string]FormatFunc{}}
	for name, fn := range builtinFormats() {
		r.formats[name] = fn
	}
	return r
}

// RegisterFormat adds a custom extended type before any schema using it is
// compiled. It fails once the registry is frozen, when the name collides
// with a primitive type, or when the matcher is nil.
func RegisterFormat(name string, fn FormatFunc) error {
	return defaultRegistry.register(name, fn)
}

func (r *registry) register(name string, fn FormatFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("shaped: format registration requires a name and a matcher")
	}
	if _, ok := primitiveNames[name]; ok {
		return fmt.Errorf("shaped: %q is a primitive type name", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("shaped: format registry is frozen; register %q before the first Compile", name)
	}
	r.formats[name] = fn
	return nil
}

// freeze marks the end of the initialization phase and returns the registry
// for read-only use.
func (r *registry) freeze() *registry {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
	return r
}

func (r *registry) lookup(name string) (FormatFunc, bool) {
	r.mu.RLock()
	fn, ok := r.formats[name]
	r.mu.RUnlock()
	return fn, ok
}

var (
	reHostname = regexp.MustCompile(`^(?:[a-zA-Z0-9_](?:[a-zA-Z0-9_-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,63}$`)
	reSlug     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	reHex      = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	reBase64   = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)
	reColor    = regexp.MustCompile(`^#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})$`)
	reEmail    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// builtinFormats is the extended-type table shipped by default. password and
// token carry no structural rule; they exist so schemas can name the intent.
func builtinFormats() map[string]FormatFunc {
	return map[string]FormatFunc{
		"email": reEmail.MatchString,
		"uri": func(s string) bool {
			u, err := url.Parse(s)
			return err == nil && u.Scheme != ""
		},
		"uuid": func(s string) bool {
			_, err := uuid.Parse(s)
			return err == nil
		},
		"ip": func(s string) bool {
			return net.ParseIP(s) != nil
		},
		"mac": func(s string) bool {
			_, err := net.ParseMAC(s)
			return err == nil
		},
		"date": func(s string) bool {
			_, err := time.Parse("2006-01-02", s)
			return err == nil
		},
		"datetime": func(s string) bool {
			if _, err := time.Parse(time.RFC3339, s); err == nil {
				return true
			}
			_, err := time.Parse("2006-01-02T15:04:05", s)
			return err == nil
		},
		"time": func(s string) bool {
			_, err := time.Parse("15:04:05", s)
			return err == nil
		},
		"hostname": func(s string) bool {
			return len(s) <= 253 && reHostname.MatchString(s)
		},
		"slug":   reSlug.MatchString,
		"hex":    reHex.MatchString,
		"base64": reBase64.MatchString,
		"color":  reColor.MatchString,
		"password": func(string) bool { return true },
		"token":    func(string) bool { return true },
	}
}

// legalConstraint is the fixed constraint-legality table: which constraint
// kinds may be attached to a term with the given base kind. Formats are
// string-shaped and accept the string constraints.
func legalConstraint(base Kind, c ConstraintKind) bool {
	switch c {
	case ConstraintLength:
		return base == KindString
	case ConstraintRange:
		return base == KindInt || base == KindFloat
	case ConstraintRegex:
		return base == KindString
	case ConstraintEnum:
		// Any scalar base type.
		return base == KindString || base == KindInt || base == KindFloat || base == KindBool
	default:
		return false
	}
}
