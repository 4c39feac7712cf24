package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	gojson "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	shaped "github.com/reoring/shaped"
	"github.com/reoring/shaped/i18n"
	jsonsrc "github.com/reoring/shaped/source/json"
	yamlsrc "github.com/reoring/shaped/source/yaml"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "check":
		checkCmd(os.Args[2:])
	case "validate":
		validateCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "shaped CLI\n\nUsage:\n  shaped check -schema schema.shaped [-jsonschema]\n  shaped validate -schema schema.shaped -in data.json [-lang en|ja] [-v]\n\nNotes:\n  - validate reads JSON by default; .yaml/.yml inputs are decoded as YAML.\n  - check with -jsonschema prints the JSON Schema projection to stdout.")
}

// checkCmd compiles a schema file and reports the result. With -jsonschema it
// additionally prints the JSON Schema projection.
func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var schemaPath string
	var emitJSONSchema bool
	var verbose bool
	fs.StringVar(&schemaPath, "schema", "", "path to the schema source file")
	fs.BoolVar(&emitJSONSchema, "jsonschema", false, "print the JSON Schema projection on success")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	setVerbosity(verbose)

	sch := mustCompileFile(schemaPath)
	log.Debug().Str("schema", schemaPath).Msg("schema compiled")
	if emitJSONSchema {
		out, err := gojson.MarshalIndent(sch.JSONSchema(), "", "  ")
		if err != nil {
			fatalf("jsonschema: %v", err)
		}
		fmt.Println(string(out))
		return
	}
	color.Green("ok: %s", schemaPath)
}

// validateCmd compiles a schema, decodes one input document and validates it.
// On success the normalized document is printed to stdout; on failure every
// issue is rendered and the process exits 1.
func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var schemaPath string
	var inPath string
	var lang string
	var verbose bool
	fs.StringVar(&schemaPath, "schema", "", "path to the schema source file")
	fs.StringVar(&inPath, "in", "", "path to the input document (json, yaml)")
	fs.StringVar(&lang, "lang", "en", "issue message language (en, ja)")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	_ = fs.Parse(args)
	if schemaPath == "" || inPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	setVerbosity(verbose)
	i18n.SetLanguage(lang)

	sch := mustCompileFile(schemaPath)
	in := mustDecodeFile(inPath)
	log.Debug().Str("schema", schemaPath).Str("in", inPath).Msg("validating")

	out, err := sch.Validate(context.Background(), in)
	if err != nil {
		if iss, ok := shaped.AsIssues(err); ok {
			renderIssues(iss)
			os.Exit(1)
		}
		fatalf("validate: %v", err)
	}
	encoded, err := jsonsrc.Encode(out)
	if err != nil {
		fatalf("encode: %v", err)
	}
	fmt.Println(string(encoded))
}

func setVerbosity(verbose bool) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

func mustCompileFile(path string) *shaped.Schema {
	src, err := os.ReadFile(path)
	if err != nil {
		fatalf("reading schema: %v", err)
	}
	sch, err := shaped.Compile(string(src))
	if err != nil {
		if se, ok := shaped.AsSchemaError(err); ok {
			color.Red("schema error (%s): %s", se.Stage, se.Error())
			os.Exit(1)
		}
		fatalf("compile: %v", err)
	}
	return sch
}

func mustDecodeFile(path string) shaped.Value {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("reading input: %v", err)
	}
	var v shaped.Value
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		v, err = yamlsrc.Decode(data)
	default:
		v, err = jsonsrc.Decode(data)
	}
	if err != nil {
		fatalf("decoding input: %v", err)
	}
	return v
}

func renderIssues(iss shaped.Issues) {
	bad := color.New(color.FgRed, color.Bold)
	at := color.New(color.FgCyan)
	for _, it := range iss {
		p := it.Path
		if p == "" {
			p = "(root)"
		}
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", bad.Sprint(it.Code), at.Sprint(p), it.Message)
	}
	fmt.Fprintf(os.Stderr, "%d issue(s)\n", len(iss))
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
