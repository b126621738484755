package extract

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/joseph-ayodele/formfill/constants"
	"github.com/joseph-ayodele/formfill/internal/common"
)

func TestResultMarshalJSON(t *testing.T) {
	r := NewResult(constants.PAN)
	r.Set(constants.FieldName, "RAHUL KUMAR")
	r.Set(constants.FieldPAN, "ABCDE1234F")
	r.Set("Unknown Key", "ignored")
	r.Set(constants.FieldDOB, "")

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"Name":"RAHUL KUMAR","Father Name":null,"DOB":null,"Gender":null,"PAN":"ABCDE1234F","Aadhaar":null}`
	if string(b) != want {
		t.Errorf("Marshal() = %s\nwant %s", b, want)
	}
}

func TestResultAccessors(t *testing.T) {
	r := NewResult(constants.VoterID)
	r.Set(constants.FieldEPIC, "ABC1234567")

	keys := r.Keys()
	keys[0] = "mutated"
	if r.Keys()[0] != constants.FieldName {
		t.Error("Keys() exposes internal slice")
	}

	m := r.Map()
	if m[constants.FieldEPIC] == nil || *m[constants.FieldEPIC] != "ABC1234567" {
		t.Errorf("Map()[EPIC] = %v", m[constants.FieldEPIC])
	}
	if m[constants.FieldName] != nil {
		t.Error("absent field should map to nil")
	}
	if s := r.Strings(); s[constants.FieldName] != "" || len(s) != 7 {
		t.Errorf("Strings() = %v", s)
	}
}

func TestExtractRoutes(t *testing.T) {
	e := New(Options{})
	for _, dt := range []constants.DocumentType{constants.Aadhaar, constants.PAN, constants.VoterID} {
		r, err := e.Extract(context.Background(), dt, "", nil)
		if err != nil {
			t.Fatalf("Extract(%s) error = %v", dt, err)
		}
		if r.Type != dt {
			t.Errorf("Extract(%s).Type = %s", dt, r.Type)
		}
		assertKeySet(t, r, dt)
	}

	if _, err := e.Extract(context.Background(), constants.Unknown, "text", nil); !errors.Is(err, common.ErrUnsupportedDocument) {
		t.Errorf("Extract(UNKNOWN) err = %v, want ErrUnsupportedDocument", err)
	}
}

func TestFirstMatchSkipsUnavailable(t *testing.T) {
	e := New(Options{})
	got, ok := firstMatch(context.Background(), e.logger, "Name",
		Tier{Name: "a", Run: func(context.Context) Outcome { return unavailable(errors.New("down")) }},
		Tier{Name: "b", Run: func(context.Context) Outcome { return notFound() }},
		Tier{Name: "c", Run: func(context.Context) Outcome { return found("x") }},
		Tier{Name: "d", Run: func(context.Context) Outcome { t.Error("tier after match ran"); return notFound() }},
	)
	if !ok || got != "x" {
		t.Errorf("firstMatch() = %q, %v", got, ok)
	}
}
