package jsonscan_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/triptychhq/triptych/utils/jsonscan"
)

func feedAll(e *jsonscan.Extractor, chunks []string) []string {
	var out []string
	for _, chunk := range chunks {
		for _, raw := range e.Feed(chunk) {
			out = append(out, string(raw))
		}
	}
	return out
}

func TestExtractor(t *testing.T) {
	t.Run("yields object split across chunks", func(t *testing.T) {
		e := jsonscan.New()

		if got := e.Feed(`{"a"`); len(got) != 0 {
			t.Fatalf("expected no objects from partial chunk, got %v", got)
		}
		got := e.Feed(`:1}`)
		want := []json.RawMessage{json.RawMessage(`{"a":1}`)}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("objects mismatch (-want +got):\n%s", diff)
		}
		if e.Buffered() != "" {
			t.Errorf("expected empty buffer, got %q", e.Buffered())
		}
	})

	t.Run("yields multiple objects from one chunk", func(t *testing.T) {
		e := jsonscan.New()

		got := feedAll(e, []string{`{"a":1}{"b":2} trailing`})
		want := []string{`{"a":1}`, `{"b":2}`}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("objects mismatch (-want +got):\n%s", diff)
		}
		if e.Buffered() != " trailing" {
			t.Errorf("expected trailing noise retained, got %q", e.Buffered())
		}
	})

	t.Run("skips surrounding noise", func(t *testing.T) {
		e := jsonscan.New()

		got := feedAll(e, []string{"Here is one:\n", `{"label":"x","content":"y"}`, "\nDone."})
		want := []string{`{"label":"x","content":"y"}`}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("objects mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("recovers past a stray opening brace", func(t *testing.T) {
		e := jsonscan.New()

		got := feedAll(e, []string{`noise { more noise {"x":"y"}`})
		want := []string{`{"x":"y"}`}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("objects mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("skips balanced but invalid candidates", func(t *testing.T) {
		e := jsonscan.New()

		got := feedAll(e, []string{`{not json} {"ok":true}`})
		want := []string{`{"ok":true}`}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("objects mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("handles nested objects", func(t *testing.T) {
		e := jsonscan.New()

		got := feedAll(e, []string{`{"outer":{"inner":[1,2]}}`})
		want := []string{`{"outer":{"inner":[1,2]}}`}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("objects mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("chunk boundaries do not change the result", func(t *testing.T) {
		full := `intro {"a":1} mid {"b":{"c":2}} outro {"d":3}`
		want := feedAll(jsonscan.New(), []string{full})

		for size := 1; size <= 7; size++ {
			e := jsonscan.New()
			var chunks []string
			for i := 0; i < len(full); i += size {
				end := min(i+size, len(full))
				chunks = append(chunks, full[i:end])
			}
			got := feedAll(e, chunks)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("chunk size %d mismatch (-want +got):\n%s", size, diff)
			}
		}
	})

	t.Run("buffer persists across feeds", func(t *testing.T) {
		e := jsonscan.New()

		e.Feed(`leading {"open":`)
		if got := e.Feed(`"still going`); len(got) != 0 {
			t.Fatalf("expected no objects, got %v", got)
		}
		got := e.Feed(`"}`)
		want := []json.RawMessage{json.RawMessage(`{"open":"still going"}`)}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("objects mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no opening brace is a no-op", func(t *testing.T) {
		e := jsonscan.New()

		if got := e.Feed("plain prose, no objects here"); len(got) != 0 {
			t.Fatalf("expected no objects, got %v", got)
		}
	})
}
