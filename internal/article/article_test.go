package article

import (
	"encoding/json"
	"testing"
)

func TestKeyNormalizesCaseAndPunctuation(t *testing.T) {
	variants := []string{
		"Enamel Remineralization!",
		"enamel remineralization",
		"ENAMEL  REMINERALIZATION",
		"Enamel, Remineralization...",
		"enamel-remineralization",
	}
	want := Key(variants[0])
	for _, v := range variants[1:] {
		if got := Key(v); got != want {
			t.Errorf("Key(%q) = %s, want %s", v, got, want)
		}
	}
}

func TestKeyDistinctTitles(t *testing.T) {
	if Key("fluoride varnish") == Key("fluoride vanish") {
		t.Error("expected distinct keys for distinct titles")
	}
}

func TestKeyLength(t *testing.T) {
	if got := len(Key("any title")); got != 32 {
		t.Errorf("expected 32 hex chars, got %d", got)
	}
}

func TestKeyEmptyTitlesCollide(t *testing.T) {
	a := Key("")
	b := Key("!!! --- ???")
	if a != b {
		t.Errorf("expected punctuation-only title to collide with empty, got %s and %s", a, b)
	}
}

func TestYearUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Year
	}{
		{"string", `{"year": "2023"}`, "2023"},
		{"number", `{"year": 2023}`, "2023"},
		{"null", `{"year": null}`, ""},
		{"absent", `{}`, ""},
		{"partial date", `{"year": "2023/05/01"}`, "2023/05/01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Article
			if err := json.Unmarshal([]byte(tt.in), &a); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if a.Year != tt.want {
				t.Errorf("expected year %q, got %q", tt.want, a.Year)
			}
		})
	}
}

func TestYearUnmarshalRejectsObject(t *testing.T) {
	var a Article
	if err := json.Unmarshal([]byte(`{"year": {"v": 1}}`), &a); err == nil {
		t.Error("expected error for object year")
	}
}

func TestLink(t *testing.T) {
	tests := []struct {
		name string
		a    Article
		want string
	}{
		{"url wins", Article{URL: "https://example.org/p", DOI: "10.1/x"}, "https://example.org/p"},
		{"doi fallback", Article{DOI: "10.1000/jdr.2024"}, "https://doi.org/10.1000/jdr.2024"},
		{"doi prefix stripped", Article{DOI: "doi:10.1000/jdr.2024"}, "https://doi.org/10.1000/jdr.2024"},
		{"neither", Article{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Link(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
