package extract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/joseph-ayodele/formfill/constants"
	"github.com/joseph-ayodele/formfill/internal/ocr"
)

type stubRecognizer struct {
	mu   sync.Mutex
	text string
	err  error
	reqs []ocr.Request
}

func (s *stubRecognizer) Recognize(_ context.Context, req ocr.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	return s.text, s.err
}

type stubPersons struct {
	spans []string
	err   error
	seen  []string
}

func (s *stubPersons) Persons(_ context.Context, text string) ([]string, error) {
	s.seen = append(s.seen, text)
	return s.spans, s.err
}

func cardPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			v := uint8(230)
			if y > 15 && x%3 == 0 {
				v = 20
			}
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func assertField(t *testing.T, r *Result, key, want string) {
	t.Helper()
	got, ok := r.Get(key)
	if want == "" {
		if ok {
			t.Errorf("%s = %q, want absent", key, got)
		}
		return
	}
	if !ok || got != want {
		t.Errorf("%s = %q (found=%v), want %q", key, got, ok, want)
	}
}

func assertKeySet(t *testing.T, r *Result, docType constants.DocumentType) {
	t.Helper()
	want := constants.FieldsFor(docType)
	m := r.Map()
	if len(m) != len(want) {
		t.Fatalf("Map() has %d keys, want %d", len(m), len(want))
	}
	for _, k := range want {
		if _, ok := m[k]; !ok {
			t.Errorf("key %q missing", k)
		}
	}
}
