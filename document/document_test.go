package document

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func newTestDocument() *Document {
	return New("index", "type", "id", "", "", map[string]any{
		"foo": "bar",
		"nested": map[string]any{
			"a": 1,
			"list": []any{
				map[string]any{"x": "first"},
				"second",
			},
		},
	})
}

func TestNew_DoesNotTouchCallerSource(t *testing.T) {
	source := map[string]any{"foo": "bar"}
	d := New("i", "t", "1", "r", "p", source)

	if _, ok := source["_index"]; ok {
		t.Fatal("metadata leaked into the caller's source map")
	}
	if d.Metadata(Routing) != "r" || d.Metadata(Parent) != "p" {
		t.Errorf("expected routing and parent, got %q %q", d.Metadata(Routing), d.Metadata(Parent))
	}
}

func TestNew_EmptyRoutingParentUnset(t *testing.T) {
	d := New("i", "t", "1", "", "", nil)
	if d.HasField("_routing") || d.HasField("_parent") {
		t.Error("empty routing/parent should not be stored")
	}
}

func TestGetField(t *testing.T) {
	d := newTestDocument()
	tests := []struct {
		path string
		want any
	}{
		{"foo", "bar"},
		{"nested.a", 1},
		{"nested.list.0.x", "first"},
		{"nested.list.1", "second"},
		{"_source.foo", "bar"},
		{"_index", "index"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := d.GetField(tt.path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGetField_Errors(t *testing.T) {
	d := newTestDocument()
	tests := []struct {
		path string
		want error
	}{
		{"", ErrEmptyPath},
		{"missing", ErrFieldNotFound},
		{"foo.bar", ErrInvalidPath},
		{"nested.list.x", ErrInvalidPath},
		{"nested.list.5", ErrIndexOutOfRange},
		{"_ingest.on_failure_message", ErrFieldNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := d.GetField(tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSetField_CreatesIntermediateObjects(t *testing.T) {
	d := newTestDocument()
	if err := d.SetField("a.b.c", "v"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := d.GetField("a.b.c")
	if err != nil || got != "v" {
		t.Errorf("expected v, got %v (%v)", got, err)
	}
}

func TestSetField_ListElement(t *testing.T) {
	d := newTestDocument()
	if err := d.SetField("nested.list.1", "replaced"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := d.GetField("nested.list.1")
	if got != "replaced" {
		t.Errorf("expected replaced, got %v", got)
	}
	if err := d.SetField("nested.list.9", "x"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected out of range, got %v", err)
	}
}

func TestSetField_IngestIsReadOnly(t *testing.T) {
	d := newTestDocument()
	if err := d.SetField("_ingest.on_failure_message", "x"); !errors.Is(err, ErrIngestReadOnly) {
		t.Errorf("expected read-only error, got %v", err)
	}
	if err := d.RemoveField("_ingest.on_failure_message"); !errors.Is(err, ErrIngestReadOnly) {
		t.Errorf("expected read-only error, got %v", err)
	}
	if err := d.SetField("_ingest", map[string]any{"x": 1}); !errors.Is(err, ErrIngestReadOnly) {
		t.Errorf("expected read-only error for the bare key, got %v", err)
	}
	if err := d.RemoveField("_ingest"); !errors.Is(err, ErrIngestReadOnly) {
		t.Errorf("expected read-only error for the bare key, got %v", err)
	}
	if _, ok := d.SourceAndMetadata()["_ingest"]; ok {
		t.Error("_ingest must not be written into the source")
	}
	if len(d.IngestMetadata()) != 0 {
		t.Error("ingest metadata should stay empty")
	}
}

func TestGetField_BareIngestKey(t *testing.T) {
	d := newTestDocument()
	d.SetFailure("boom", "fail", "p1")
	v, err := d.GetField("_ingest")
	if err != nil {
		t.Fatal(err)
	}
	meta, ok := v.(map[string]string)
	if !ok || meta[OnFailureMessageField] != "boom" || len(meta) != 3 {
		t.Errorf("expected the failure triple, got %#v", v)
	}
}

func TestRemoveField(t *testing.T) {
	d := newTestDocument()
	if err := d.RemoveField("foo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.HasField("foo") {
		t.Error("expected foo to be removed")
	}
	if err := d.RemoveField("foo"); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	if err := d.RemoveField("nested.list.0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := d.GetField("nested.list")
	if !reflect.DeepEqual(got, []any{"second"}) {
		t.Errorf("expected [second], got %v", got)
	}
}

func TestSetFailure_OverwritesWholeTriple(t *testing.T) {
	d := newTestDocument()
	d.SetFailure("first", "t1", "tag1")
	d.SetFailure("second", "t2", "")

	meta := d.IngestMetadata()
	want := map[string]string{
		OnFailureMessageField:       "second",
		OnFailureProcessorTypeField: "t2",
		OnFailureProcessorTagField:  "",
	}
	if !reflect.DeepEqual(meta, want) {
		t.Errorf("expected %v, got %v", want, meta)
	}

	msg, err := d.GetField("_ingest.on_failure_message")
	if err != nil || msg != "second" {
		t.Errorf("expected second via _ingest path, got %v (%v)", msg, err)
	}

	meta[OnFailureMessageField] = "tampered"
	if f, _ := d.Failure(); f.Message != "second" {
		t.Error("IngestMetadata must return a copy")
	}
}

func TestClone_IsIndependent(t *testing.T) {
	d := newTestDocument()
	d.SetFailure("boom", "fail", "t")
	c := d.Clone()

	if err := d.SetField("nested.a", 2); err != nil {
		t.Fatal(err)
	}
	if err := d.SetField("nested.list.0.x", "changed"); err != nil {
		t.Fatal(err)
	}
	d.SetFailure("other", "x", "y")

	if v, _ := c.GetField("nested.a"); v != 1 {
		t.Errorf("clone changed with original: nested.a = %v", v)
	}
	if v, _ := c.GetField("nested.list.0.x"); v != "first" {
		t.Errorf("clone changed with original: nested.list.0.x = %v", v)
	}
	if f, _ := c.Failure(); f.Message != "boom" {
		t.Errorf("clone failure changed: %v", f)
	}
}

func TestExtractMetadata(t *testing.T) {
	d := New("i", "t", "1", "r", "", map[string]any{"foo": "bar"})
	if err := d.SetField("_id", 42); err != nil {
		t.Fatal(err)
	}

	meta := d.ExtractMetadata()
	if meta[Index] != "i" || meta[Type] != "t" || meta[ID] != "42" || meta[Routing] != "r" || meta[Parent] != "" {
		t.Errorf("unexpected metadata %v", meta)
	}
	if !reflect.DeepEqual(d.SourceAndMetadata(), map[string]any{"foo": "bar"}) {
		t.Errorf("expected only payload left, got %v", d.SourceAndMetadata())
	}
}

func TestMarshalJSON(t *testing.T) {
	d := New("i", "t", "1", "", "", map[string]any{"foo": "bar"})
	d.SetFailure("boom", "fail", "tag")

	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatal(err)
	}
	if out["_index"] != "i" || out["_id"] != "1" {
		t.Errorf("expected metadata at top level, got %v", out)
	}
	if _, ok := out["_routing"]; ok {
		t.Error("unset routing should be omitted")
	}
	source := out["_source"].(map[string]any)
	if source["foo"] != "bar" || len(source) != 1 {
		t.Errorf("unexpected _source %v", source)
	}
	ingest := out["_ingest"].(map[string]any)
	if ingest[OnFailureMessageField] != "boom" {
		t.Errorf("unexpected _ingest %v", ingest)
	}
}
