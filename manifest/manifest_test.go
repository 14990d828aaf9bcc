package manifest

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func sample() Manifest {
	b := NewBuilder()
	b.Add("text/html", "a.html")
	b.Add("text/css", "b/b.css")
	b.Add("application/json", "c.json")
	return b.Finish()
}

func TestBuilder_PreservesOrder(t *testing.T) {
	b := NewBuilder()
	b.Add("text/css", "z.css")
	b.Add("text/html", "a.html")
	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}
	m := b.Finish()
	want := []string{"z.css", "a.html"}
	got := m.Paths()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Paths()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuilder_EmptyFinish(t *testing.T) {
	m := NewBuilder().Finish()
	if m == nil {
		t.Fatal("empty manifest should be non-nil")
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("empty manifest JSON = %s, want []", data)
	}
}

func TestBuilder_ReuseAfterFinishPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*Builder)
	}{
		{"add", func(b *Builder) { b.Add("text/plain", "x") }},
		{"finish", func(b *Builder) { b.Finish() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			b.Finish()
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn(b)
		})
	}
}

func TestEntry_JSONShape(t *testing.T) {
	data, err := json.Marshal(Entry{MIME: "text/html", Path: "a.html"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `["text/html","a.html"]` {
		t.Errorf("got %s", data)
	}

	var e Entry
	if err := json.Unmarshal([]byte(`["text/css","b/b.css"]`), &e); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if e.MIME != "text/css" || e.Path != "b/b.css" {
		t.Errorf("got %+v", e)
	}
	if err := json.Unmarshal([]byte(`["only-one"]`), &e); err == nil {
		t.Error("expected error for single-element entry")
	}
}

func TestEncode_JSONGolden(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sample(), FormatJSON); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "manifest_json", buf.Bytes())
}

func TestEncode_DecodeEachFormat(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatCBOR, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, sample(), f); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := Decode(&buf, f)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			want := sample()
			if len(got) != len(want) {
				t.Fatalf("len = %d, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestEncode_EmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, NewBuilder().Finish(), FormatJSON); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.String() != "[]\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"CBOR", FormatCBOR, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
