package shaped

// Package shaped provides:
//
// - A small schema definition language for describing the shape of JSON-like
//   values: types, ranges, regex, enums, unions, optionality and literal defaults
// - Compile, turning schema text into an immutable, invariant-checked Schema
// - Validate, matching a runtime Value against a compiled Schema, filling in
//   defaults and collecting path-qualified Issues
// - A stable error model split into SchemaError (lex/parse/semantic, fatal to
//   compilation) and Issues (data-level, always returned as a value)
//
// Design policy:
// - Keep the core (lexer, parser, compiler, engine, value model) in the root
//   package; put the export model under jsonschema/, value sources under
//   source/, and the CLI under cmd/shaped.
// - Compiled Schemas are immutable and safe for concurrent Validate calls.
// - The format registry is populated during initialization and frozen by the
//   first Compile.
//
// Typical usage:
//
//	s := shaped.MustCompile(`(age:int[0,150]=30, name:string[1,50])`)
//	out, err := s.Validate(ctx, input)
//	if iss, ok := shaped.AsIssues(err); ok { ... }
