package builtin

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/ingest/document"
	apperrors "github.com/kbukum/ingest/errors"
	"github.com/kbukum/ingest/processor"
)

func build(t *testing.T, typ string, config map[string]any) processor.Processor {
	t.Helper()
	factory, ok := Factories()[typ]
	if !ok {
		t.Fatalf("unknown type %s", typ)
	}
	p, err := factory("tag", config)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	return p
}

func newDoc() *document.Document {
	return document.New("index", "type", "id", "", "", map[string]any{
		"name":  "Alice",
		"count": 3,
		"user":  map[string]any{"email": "A@EXAMPLE.COM"},
	})
}

func TestSet(t *testing.T) {
	doc := newDoc()
	if err := build(t, TypeSet, map[string]any{"field": "user.role", "value": "admin"}).Execute(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	if v, _ := doc.GetField("user.role"); v != "admin" {
		t.Errorf("expected admin, got %v", v)
	}

	if err := build(t, TypeSet, map[string]any{"field": "name", "value": "Bob", "override": false}).Execute(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	if v, _ := doc.GetField("name"); v != "Alice" {
		t.Errorf("override=false must keep existing value, got %v", v)
	}
}

func TestRemove(t *testing.T) {
	doc := newDoc()
	if err := build(t, TypeRemove, map[string]any{"field": "name"}).Execute(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	if doc.HasField("name") {
		t.Error("expected name removed")
	}

	err := build(t, TypeRemove, map[string]any{"field": "name"}).Execute(context.Background(), doc)
	if !errors.Is(err, document.ErrFieldNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := build(t, TypeRemove, map[string]any{"field": "name", "ignore_missing": true}).Execute(context.Background(), doc); err != nil {
		t.Errorf("ignore_missing should swallow the error, got %v", err)
	}
}

func TestRename(t *testing.T) {
	doc := newDoc()
	if err := build(t, TypeRename, map[string]any{"field": "name", "target_field": "full_name"}).Execute(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	if doc.HasField("name") || !doc.HasField("full_name") {
		t.Error("expected name moved to full_name")
	}

	err := build(t, TypeRename, map[string]any{"field": "count", "target_field": "full_name"}).Execute(context.Background(), doc)
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrCodeProcessorFailed {
		t.Errorf("expected processor failure for existing target, got %v", err)
	}
}

func TestCase(t *testing.T) {
	doc := newDoc()
	if err := build(t, TypeLowercase, map[string]any{"field": "user.email"}).Execute(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	if v, _ := doc.GetField("user.email"); v != "a@example.com" {
		t.Errorf("expected lowercase, got %v", v)
	}
	if err := build(t, TypeUppercase, map[string]any{"field": "name"}).Execute(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	if v, _ := doc.GetField("name"); v != "ALICE" {
		t.Errorf("expected uppercase, got %v", v)
	}
	if err := build(t, TypeUppercase, map[string]any{"field": "count"}).Execute(context.Background(), doc); err == nil {
		t.Error("expected error for non-string field")
	}
}

func TestFail(t *testing.T) {
	p := build(t, TypeFail, map[string]any{"message": "boom"})
	err := p.Execute(context.Background(), newDoc())
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
	if p.Type() != TypeFail || p.Tag() != "tag" {
		t.Errorf("unexpected type/tag %s/%s", p.Type(), p.Tag())
	}
}

func TestScript(t *testing.T) {
	doc := newDoc()
	p := build(t, TypeScript, map[string]any{"field": "greeting", "expression": `"hello " + name`})
	if err := p.Execute(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	if v, _ := doc.GetField("greeting"); v != "hello Alice" {
		t.Errorf("unexpected greeting %v", v)
	}
}

func TestScript_ReadsIngestMetadata(t *testing.T) {
	doc := newDoc()
	doc.SetFailure("boom", "fail", "p1")
	p := build(t, TypeScript, map[string]any{"field": "error", "expression": `_ingest.on_failure_message`})
	if err := p.Execute(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	if v, _ := doc.GetField("error"); v != "boom" {
		t.Errorf("expected boom, got %v", v)
	}
}

func TestCondition(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		want      any
	}{
		{"true", `count > 2`, "yes"},
		{"false", `count > 5`, nil},
		{"missing field", `missing == "x"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newDoc()
			p := build(t, TypeSet, map[string]any{"field": "flag", "value": "yes", "if": tt.condition})
			if err := p.Execute(context.Background(), doc); err != nil {
				t.Fatal(err)
			}
			got, _ := doc.GetField("flag")
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCondition_NonBoolean(t *testing.T) {
	p := build(t, TypeSet, map[string]any{"field": "flag", "value": 1, "if": `name`})
	if err := p.Execute(context.Background(), newDoc()); err == nil {
		t.Error("expected error for non-boolean condition")
	}
}

func TestFactory_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		typ    string
		config map[string]any
	}{
		{"set without field", TypeSet, map[string]any{"value": 1}},
		{"set without value", TypeSet, map[string]any{"field": "a"}},
		{"rename without target", TypeRename, map[string]any{"field": "a"}},
		{"field not a string", TypeRemove, map[string]any{"field": 1}},
		{"bad bool", TypeRemove, map[string]any{"field": "a", "ignore_missing": "yes"}},
		{"bad script", TypeScript, map[string]any{"field": "a", "expression": "1 +"}},
		{"bad condition", TypeFail, map[string]any{"message": "x", "if": "(("}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Factories()[tt.typ]("", tt.config); err == nil {
				t.Error("expected build error")
			}
		})
	}
}

func TestFactory_ConsumesKnownKeys(t *testing.T) {
	config := map[string]any{"field": "a", "value": 1, "override": true, "if": "true", "extra": 1}
	if _, err := Factories()[TypeSet]("", config); err != nil {
		t.Fatal(err)
	}
	if len(config) != 1 || config["extra"] != 1 {
		t.Errorf("expected only unknown keys left, got %v", config)
	}
}
