package icongen

import (
	"errors"
	"testing"

	"icon_backend/core"
)

type lazyURL struct{ url string }

func (l lazyURL) URL() string { return l.url }

type namedURL struct{ url string }

func (n namedURL) String() string { return n.url }

// TestExtractImageURL_SliceOfStrings tests the highest-precedence
// decoder: first element of a string slice.
func TestExtractImageURL_SliceOfStrings(t *testing.T) {
	got, err := ExtractImageURL([]string{"https://img.example/one.png", "https://img.example/two.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://img.example/one.png" {
		t.Errorf("expected first element, got %q", got)
	}
}

// TestExtractImageURL_SliceOfMaps tests extraction from a slice of
// objects with a url field.
func TestExtractImageURL_SliceOfMaps(t *testing.T) {
	raw := []map[string]any{{"url": "https://img.example/a.png"}, {"url": "https://img.example/b.png"}}
	got, err := ExtractImageURL(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://img.example/a.png" {
		t.Errorf("expected first element url, got %q", got)
	}
}

// TestExtractImageURL_SliceOfStructs tests extraction from typed
// response structs, which is how the OpenAI client returns data.
func TestExtractImageURL_SliceOfStructs(t *testing.T) {
	type dataItem struct {
		URL           string
		RevisedPrompt string
	}
	raw := []dataItem{{URL: "https://img.example/s.png"}}

	got, err := ExtractImageURL(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://img.example/s.png" {
		t.Errorf("expected struct field url, got %q", got)
	}
}

// TestExtractImageURL_WholeString tests a bare string response.
func TestExtractImageURL_WholeString(t *testing.T) {
	got, err := ExtractImageURL("https://img.example/raw.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://img.example/raw.png" {
		t.Errorf("expected raw string, got %q", got)
	}
}

// TestExtractImageURL_TopLevelMap tests a url field at the top level.
func TestExtractImageURL_TopLevelMap(t *testing.T) {
	got, err := ExtractImageURL(map[string]any{"Url": "https://img.example/m.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://img.example/m.png" {
		t.Errorf("expected case-insensitive url field, got %q", got)
	}
}

// TestExtractImageURL_InvokableURL tests that a url field holding a
// function is invoked rather than stringified.
func TestExtractImageURL_InvokableURL(t *testing.T) {
	raw := []map[string]any{{"url": func() string { return "https://img.example/lazy.png" }}}
	got, err := ExtractImageURL(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://img.example/lazy.png" {
		t.Errorf("expected invoked url, got %q", got)
	}
}

// TestExtractImageURL_URLMethod tests extraction via a URL method.
func TestExtractImageURL_URLMethod(t *testing.T) {
	got, err := ExtractImageURL([]lazyURL{{url: "https://img.example/method.png"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://img.example/method.png" {
		t.Errorf("expected URL method result, got %q", got)
	}
}

// TestExtractImageURL_StringerURL tests a Stringer-valued url field.
func TestExtractImageURL_StringerURL(t *testing.T) {
	raw := map[string]any{"url": namedURL{url: "https://img.example/str.png"}}
	got, err := ExtractImageURL(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://img.example/str.png" {
		t.Errorf("expected Stringer result, got %q", got)
	}
}

// TestExtractImageURL_Precedence tests that a string first element wins
// over treating the whole slice as a url-bearing value.
func TestExtractImageURL_Precedence(t *testing.T) {
	got, err := ExtractImageURL([]any{"https://img.example/first.png", map[string]any{"url": "https://img.example/second.png"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://img.example/first.png" {
		t.Errorf("expected first-element string to win, got %q", got)
	}
}

// TestExtractImageURL_Unrecognized tests the extraction failure error
// for shapes carrying no url.
func TestExtractImageURL_Unrecognized(t *testing.T) {
	for _, raw := range []any{nil, 42, []int{1, 2}, map[string]any{"data": "x"}, []any{}} {
		_, err := ExtractImageURL(raw)
		if err == nil {
			t.Errorf("%#v: expected error, got nil", raw)
			continue
		}

		var apiErr *core.APIError
		if !errors.As(err, &apiErr) {
			t.Errorf("%#v: expected APIError, got %T", raw, err)
			continue
		}
		if apiErr.Code != core.ErrCodeExtractionFailed {
			t.Errorf("%#v: expected code %s, got %s", raw, core.ErrCodeExtractionFailed, apiErr.Code)
		}
		if apiErr.Status != 502 {
			t.Errorf("%#v: expected status 502, got %d", raw, apiErr.Status)
		}
	}
}
