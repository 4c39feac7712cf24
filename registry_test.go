package shaped

import (
	"context"
	"strings"
	"testing"
)

func TestRegisterFormatValidation(t *testing.T) {
	if err := RegisterFormat("", func(string) bool { return true }); err == nil {
		t.Fatalf("empty name must fail")
	}
	if err := RegisterFormat("custom", nil); err == nil {
		t.Fatalf("nil matcher must fail")
	}
	if err := RegisterFormat("string", func(string) bool { return true }); err == nil {
		t.Fatalf("primitive collision must fail")
	}
}

func TestRegisterFormatAfterFreeze(t *testing.T) {
	MustCompile(`()`) // freezes the default registry
	err := RegisterFormat("late", func(string) bool { return true })
	if err == nil {
		t.Fatalf("registration after the first Compile must fail")
	}
	if !strings.Contains(err.Error(), "frozen") {
		t.Fatalf("error: %v", err)
	}
}

func TestCustomFormatEndToEnd(t *testing.T) {
	r := newRegistry()
	if err := r.register("even", func(s string) bool { return len(s)%2 == 0 }); err != nil {
		t.Fatalf("register: %v", err)
	}
	s, err := compileWith(`(code:even)`, r.freeze())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := s.Validate(context.Background(), NewObject().Set("code", String("ab")).Value()); err != nil {
		t.Fatalf("even string: %v", err)
	}
	_, err = s.Validate(context.Background(), NewObject().Set("code", String("abc")).Value())
	iss, ok := AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != CodeInvalidFormat {
		t.Fatalf("odd string: %v", err)
	}
}

func TestBuiltinFormatTable(t *testing.T) {
	cases := []struct {
		format string
		ok     string
		bad    string
	}{
		{"email", "a@b.co", "a@b"},
		{"uri", "https://x.dev", "not a uri"},
		{"uuid", "a8098c1a-f86e-11da-bd1a-00112444be1e", "zzz"},
		{"ip", "::1", "1.2.3"},
		{"mac", "00:1B:44:11:3A:B7", "hello"},
		{"date", "2026-08-23", "2026-13-01"},
		{"datetime", "2026-08-23T10:00:00Z", "2026-08-23 10:00"},
		{"time", "10:00:00", "25:99"},
		{"hostname", "example.com", "-bad-.com"},
		{"slug", "hello-world", "Hello World"},
		{"hex", "deadBEEF", "0xgg"},
		{"color", "#a1b2c3", "red"},
	}
	formats := builtinFormats()
	for _, c := range cases {
		fn, ok := formats[c.format]
		if !ok {
			t.Fatalf("%s: missing", c.format)
		}
		if !fn(c.ok) {
			t.Fatalf("%s: %q should match", c.format, c.ok)
		}
		if fn(c.bad) {
			t.Fatalf("%s: %q should not match", c.format, c.bad)
		}
	}
}

func TestFreezeIsStable(t *testing.T) {
	r := newRegistry()
	r.freeze()
	if err := r.register("x", func(string) bool { return true }); err == nil {
		t.Fatalf("frozen registry accepted a registration")
	}
	if _, ok := r.lookup("email"); !ok {
		t.Fatalf("builtin lookup must keep working after freeze")
	}
}
