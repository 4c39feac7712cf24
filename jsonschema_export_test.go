package shaped

import "testing"

func TestJSONSchemaExport(t *testing.T) {
	s := mustCompile(t, `(name:string[3,20] regex("^[a-z]+$"), age?:int(0,150)=30, level:string enum("low","high"), tags:array<string[1,5]>, v:int|string)`)
	js := s.JSONSchema()

	if js.Type != "object" {
		t.Fatalf("root type: %s", js.Type)
	}
	if js.AdditionalProperties != true {
		t.Fatalf("additionalProperties: %v", js.AdditionalProperties)
	}
	if len(js.Required) != 3 {
		t.Fatalf("required: %v", js.Required)
	}
	for _, r := range js.Required {
		if r == "age" {
			t.Fatalf("defaulted optional field must not be required")
		}
	}

	name := js.Properties["name"]
	if name.Type != "string" || name.Pattern != "^[a-z]+$" {
		t.Fatalf("name: %+v", name)
	}
	if name.MinLength == nil || *name.MinLength != 3 || name.MaxLength == nil || *name.MaxLength != 20 {
		t.Fatalf("name length: %+v", name)
	}

	age := js.Properties["age"]
	if age.Type != "integer" {
		t.Fatalf("age type: %s", age.Type)
	}
	if age.ExclusiveMinimum == nil || *age.ExclusiveMinimum != 0 {
		t.Fatalf("age min: %+v", age)
	}
	if age.ExclusiveMaximum == nil || *age.ExclusiveMaximum != 150 {
		t.Fatalf("age max: %+v", age)
	}
	if age.Default != int64(30) {
		t.Fatalf("age default: %#v", age.Default)
	}

	level := js.Properties["level"]
	if len(level.Enum) != 2 || level.Enum[0] != "low" {
		t.Fatalf("level enum: %+v", level.Enum)
	}

	tags := js.Properties["tags"]
	if tags.Type != "array" || tags.Items == nil || tags.Items.Type != "string" {
		t.Fatalf("tags: %+v", tags)
	}
	if tags.Items.MinLength == nil || *tags.Items.MinLength != 1 {
		t.Fatalf("tags item bounds: %+v", tags.Items)
	}

	v := js.Properties["v"]
	if len(v.OneOf) != 2 || v.OneOf[0].Type != "integer" || v.OneOf[1].Type != "string" {
		t.Fatalf("v oneOf: %+v", v)
	}
}

func TestJSONSchemaExportFormatsAndNesting(t *testing.T) {
	s := mustCompile(t, `(contact:object(mail:email))`)
	js := s.JSONSchema()
	contact := js.Properties["contact"]
	if contact.Type != "object" {
		t.Fatalf("contact: %+v", contact)
	}
	mail := contact.Properties["mail"]
	if mail.Type != "string" || mail.Format != "email" {
		t.Fatalf("mail: %+v", mail)
	}
	if len(contact.Required) != 1 || contact.Required[0] != "mail" {
		t.Fatalf("contact required: %v", contact.Required)
	}
}
