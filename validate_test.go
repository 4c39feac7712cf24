package shaped

import (
	"context"
	"testing"
)

func mustValidate(t *testing.T, s *Schema, in Value) Value {
	t.Helper()
	out, err := s.Validate(context.Background(), in)
	if err != nil {
		t.Fatalf("validate %s: %v", in, err)
	}
	return out
}

func validateIssues(t *testing.T, s *Schema, in Value) Issues {
	t.Helper()
	_, err := s.Validate(context.Background(), in)
	if err == nil {
		t.Fatalf("validate %s: expected issues", in)
	}
	iss, ok := AsIssues(err)
	if !ok {
		t.Fatalf("validate %s: error is not Issues: %v", in, err)
	}
	return iss
}

func TestValidateBasicPass(t *testing.T) {
	s := mustCompile(t, `(name:string[3,20], age?:int(0,150)=30)`)
	in := NewObject().Set("name", String("Bob")).Value()
	out := mustValidate(t, s, in)
	obj, _ := out.AsObject()
	if v, ok := obj.Get("name"); !ok || !v.Equal(String("Bob")) {
		t.Fatalf("name: %v", v)
	}
	if v, ok := obj.Get("age"); !ok || !v.Equal(Int(30)) {
		t.Fatalf("age default: %v", v)
	}
}

func TestValidateRequiredMissing(t *testing.T) {
	s := mustCompile(t, `(name:string[3,20])`)
	iss := validateIssues(t, s, NewObject().Value())
	if len(iss) != 1 || iss[0].Code != CodeRequired || iss[0].Path != "name" {
		t.Fatalf("issues: %+v", iss)
	}
}

func TestValidateOptionalAbsent(t *testing.T) {
	s := mustCompile(t, `(nick?:string)`)
	out := mustValidate(t, s, NewObject().Value())
	obj, _ := out.AsObject()
	if obj.Has("nick") {
		t.Fatalf("optional absent field must not appear in output")
	}
}

func TestValidateLengthAndRange(t *testing.T) {
	s := mustCompile(t, `(name:string[3,20], age:int(0,150))`)

	iss := validateIssues(t, s, NewObject().Set("name", String("Al")).Set("age", Int(10)).Value())
	if len(iss) != 1 || iss[0].Code != CodeTooShort || iss[0].Path != "name" {
		t.Fatalf("too_short: %+v", iss)
	}

	// exclusive upper bound: 150 is out, 149 is in
	iss = validateIssues(t, s, NewObject().Set("name", String("Alice")).Set("age", Int(150)).Value())
	if len(iss) != 1 || iss[0].Code != CodeTooBig || iss[0].Path != "age" {
		t.Fatalf("too_big: %+v", iss)
	}
	mustValidate(t, s, NewObject().Set("name", String("Alice")).Set("age", Int(149)).Value())

	// exclusive lower bound: 0 is out
	iss = validateIssues(t, s, NewObject().Set("name", String("Alice")).Set("age", Int(0)).Value())
	if len(iss) != 1 || iss[0].Code != CodeTooSmall {
		t.Fatalf("too_small: %+v", iss)
	}
}

func TestValidateTypeMismatchStrictTags(t *testing.T) {
	s := mustCompile(t, `(age:int)`)
	iss := validateIssues(t, s, NewObject().Set("age", Float(30)).Value())
	if len(iss) != 1 || iss[0].Code != CodeInvalidType {
		t.Fatalf("issues: %+v", iss)
	}
	if iss[0].Params["expected"] != "int" || iss[0].Params["found"] != "float" {
		t.Fatalf("params: %+v", iss[0].Params)
	}
}

func TestValidateExhaustiveCollection(t *testing.T) {
	s := mustCompile(t, `(a:string[3,5], b:int[0,10], c:bool)`)
	in := NewObject().
		Set("a", String("x")).
		Set("b", Int(99)).
		Set("c", String("nope")).
		Value()
	iss := validateIssues(t, s, in)
	if len(iss) != 3 {
		t.Fatalf("want all three issues, got %d: %+v", len(iss), iss)
	}
	// declaration order
	if iss[0].Path != "a" || iss[1].Path != "b" || iss[2].Path != "c" {
		t.Fatalf("order: %+v", iss)
	}
}

func TestValidateUnionFirstMatchWins(t *testing.T) {
	s := mustCompile(t, `(v:int[0,10]|float|string)`)
	for _, in := range []Value{Int(5), Float(20), String("x")} {
		out := mustValidate(t, s, NewObject().Set("v", in).Value())
		obj, _ := out.AsObject()
		if v, _ := obj.Get("v"); !v.Equal(in) {
			t.Fatalf("value changed: got %s want %s", v, in)
		}
	}

	// int out of range does not fall through to float: tags are strict
	iss := validateIssues(t, s, NewObject().Set("v", Int(20)).Value())
	if len(iss) != 1 || iss[0].Code != CodeUnionMismatch || iss[0].Path != "v" {
		t.Fatalf("issues: %+v", iss)
	}
	tried, _ := iss[0].Params["tried"].([]string)
	if len(tried) != 3 || tried[0] != "int" || tried[1] != "float" || tried[2] != "string" {
		t.Fatalf("tried: %+v", iss[0].Params)
	}
}

func TestValidateUnionConstraintRetry(t *testing.T) {
	// same shape in two alternatives: the first whose constraints pass wins
	s := mustCompile(t, `(v:string[1,3]|string[5,8])`)
	mustValidate(t, s, NewObject().Set("v", String("ab")).Value())
	mustValidate(t, s, NewObject().Set("v", String("abcdef")).Value())
	iss := validateIssues(t, s, NewObject().Set("v", String("abcd")).Value())
	if len(iss) != 1 || iss[0].Code != CodeUnionMismatch {
		t.Fatalf("issues: %+v", iss)
	}
}

func TestValidateArray(t *testing.T) {
	s := mustCompile(t, `(tags:array<string[2,5]>)`)

	mustValidate(t, s, NewObject().Set("tags", Array(String("go"), String("json"))).Value())
	mustValidate(t, s, NewObject().Set("tags", Array()).Value())

	iss := validateIssues(t, s, NewObject().Set("tags", Array(String("ok"), String("x"), Int(3))).Value())
	if len(iss) != 2 {
		t.Fatalf("want two issues: %+v", iss)
	}
	if iss[0].Path != "tags[1]" || iss[0].Code != CodeTooShort {
		t.Fatalf("issue 0: %+v", iss[0])
	}
	if iss[1].Path != "tags[2]" || iss[1].Code != CodeInvalidType {
		t.Fatalf("issue 1: %+v", iss[1])
	}
}

func TestValidateNestedObjectPaths(t *testing.T) {
	s := mustCompile(t, `(profile:object(contact:object(mail:email)))`)
	in := NewObject().Set("profile",
		NewObject().Set("contact",
			NewObject().Set("mail", String("not-an-email")).Value()).Value()).Value()
	iss := validateIssues(t, s, in)
	if len(iss) != 1 || iss[0].Code != CodeInvalidFormat || iss[0].Path != "profile.contact.mail" {
		t.Fatalf("issues: %+v", iss)
	}
}

func TestValidateFormats(t *testing.T) {
	s := mustCompile(t, `(mail:email, id:uuid, home:uri, host:ip)`)
	ok := NewObject().
		Set("mail", String("dev@example.com")).
		Set("id", String("a8098c1a-f86e-11da-bd1a-00112444be1e")).
		Set("home", String("https://example.com/x")).
		Set("host", String("192.168.0.1")).
		Value()
	mustValidate(t, s, ok)

	bad := NewObject().
		Set("mail", String("dev@@example")).
		Set("id", String("not-a-uuid")).
		Set("home", String("no scheme here")).
		Set("host", String("999.1.1.1")).
		Value()
	iss := validateIssues(t, s, bad)
	if len(iss) != 4 {
		t.Fatalf("want 4 format issues: %+v", iss)
	}
	for _, it := range iss {
		if it.Code != CodeInvalidFormat {
			t.Fatalf("code: %+v", it)
		}
	}
}

func TestValidateEnum(t *testing.T) {
	s := mustCompile(t, `(level:string enum("low","high"), retries:int enum(0,1,3), flag:bool enum(true))`)
	mustValidate(t, s, NewObject().
		Set("level", String("low")).
		Set("retries", Int(3)).
		Set("flag", Bool(true)).
		Value())
	iss := validateIssues(t, s, NewObject().
		Set("level", String("mid")).
		Set("retries", Int(2)).
		Set("flag", Bool(false)).
		Value())
	if len(iss) != 3 {
		t.Fatalf("issues: %+v", iss)
	}
	for _, it := range iss {
		if it.Code != CodeInvalidEnum {
			t.Fatalf("code: %+v", it)
		}
	}
}

func TestValidateRegex(t *testing.T) {
	s := mustCompile(t, `(code:string regex("^[A-Z]{3}$"))`)
	mustValidate(t, s, NewObject().Set("code", String("ABC")).Value())
	iss := validateIssues(t, s, NewObject().Set("code", String("abc")).Value())
	if len(iss) != 1 || iss[0].Code != CodePattern {
		t.Fatalf("issues: %+v", iss)
	}
}

func TestValidateUnknownKeysPassThrough(t *testing.T) {
	s := mustCompile(t, `(name:string, age?:int=30)`)
	in := NewObject().
		Set("extra", Bool(true)).
		Set("name", String("Bob")).
		Set("more", Array(Int(1))).
		Value()
	out := mustValidate(t, s, in)
	obj, _ := out.AsObject()
	keys := obj.Keys()
	// input order preserved, defaults appended last
	want := []string{"extra", "name", "more", "age"}
	if len(keys) != len(want) {
		t.Fatalf("keys: %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("key order: got %v want %v", keys, want)
		}
	}
	if v, _ := obj.Get("extra"); !v.Equal(Bool(true)) {
		t.Fatalf("extra changed: %v", v)
	}
}

func TestValidateDefaultingIsIdempotent(t *testing.T) {
	s := mustCompile(t, `(name:string, age?:int=30)`)
	in := NewObject().Set("name", String("Bob")).Value()
	once := mustValidate(t, s, in)
	twice := mustValidate(t, s, once)
	if !once.Equal(twice) {
		t.Fatalf("not idempotent: %s vs %s", once, twice)
	}
}

func TestValidateInputNotMutated(t *testing.T) {
	s := mustCompile(t, `(name:string, age?:int=30)`)
	in := NewObject().Set("name", String("Bob")).Value()
	snapshot := in.Clone()
	out := mustValidate(t, s, in)
	if !in.Equal(snapshot) {
		t.Fatalf("input mutated: %s", in)
	}
	if in.Equal(out) {
		t.Fatalf("output should carry the default, input should not")
	}
}

func TestValidateNonObjectRoot(t *testing.T) {
	s := mustCompile(t, `(a:int)`)
	iss := validateIssues(t, s, Int(5))
	if len(iss) != 1 || iss[0].Code != CodeInvalidType || iss[0].Path != "" {
		t.Fatalf("issues: %+v", iss)
	}
}

func TestValidateBareObjectAndArrayShapes(t *testing.T) {
	s := mustCompile(t, `(meta:object, items:array)`)
	mustValidate(t, s, NewObject().
		Set("meta", NewObject().Set("anything", Null()).Value()).
		Set("items", Array(Int(1), String("two"))).
		Value())
	iss := validateIssues(t, s, NewObject().
		Set("meta", Int(1)).
		Set("items", String("no")).
		Value())
	if len(iss) != 2 {
		t.Fatalf("issues: %+v", iss)
	}
}

func TestValidateContextCancelled(t *testing.T) {
	s := mustCompile(t, `(a:int)`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Validate(ctx, NewObject().Set("a", Int(1)).Value())
	if err != context.Canceled {
		t.Fatalf("err: %v", err)
	}
}

func TestValidateGrammarExamples(t *testing.T) {
	// the worked examples from the grammar documentation, end to end
	s := mustCompile(t, `(username:string[3,20] regex("^[a-zA-Z0-9_]+$"))`)
	iss := validateIssues(t, s, NewObject().Set("username", String("ab")).Value())
	if len(iss) != 1 || iss[0].Code != CodeTooShort || iss[0].Path != "username" {
		t.Fatalf("username: %+v", iss)
	}

	s = mustCompile(t, `(age:int[0,150]=30)`)
	out := mustValidate(t, s, NewObject().Value())
	want := NewObject().Set("age", Int(30)).Value()
	if !out.Equal(want) {
		t.Fatalf("age default: %s", out)
	}

	s = mustCompile(t, `(id:int|float)`)
	out = mustValidate(t, s, NewObject().Set("id", Float(3.5)).Value())
	obj, _ := out.AsObject()
	if v, _ := obj.Get("id"); !v.Equal(Float(3.5)) {
		t.Fatalf("id: %s", v)
	}

	s = mustCompile(t, `(role:string enum("admin","user","guest"))`)
	iss = validateIssues(t, s, NewObject().Set("role", String("root")).Value())
	if len(iss) != 1 || iss[0].Code != CodeInvalidEnum || iss[0].Path != "role" {
		t.Fatalf("role: %+v", iss)
	}

	s = mustCompile(t, `(tags:array<string[1,10]>)`)
	iss = validateIssues(t, s, NewObject().Set("tags", Array(String("ok"), String("toolongvalueover10"))).Value())
	if len(iss) != 1 || iss[0].Code != CodeTooLong || iss[0].Path != "tags[1]" {
		t.Fatalf("tags: %+v", iss)
	}

	s = mustCompile(t, `(profile:object(first_name:string[1,50]))`)
	iss = validateIssues(t, s, NewObject().Set("profile", NewObject().Value()).Value())
	if len(iss) != 1 || iss[0].Code != CodeRequired || iss[0].Path != "profile.first_name" {
		t.Fatalf("profile: %+v", iss)
	}
}

func TestValidateRuneLength(t *testing.T) {
	s := mustCompile(t, `(name:string[3,5])`)
	// three runes, more than five bytes
	mustValidate(t, s, NewObject().Set("name", String("日本語")).Value())
}
