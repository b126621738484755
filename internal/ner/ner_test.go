package ner

import (
	"context"
	"testing"
)

func TestPersonsEmpty(t *testing.T) {
	got, err := New(nil).Persons(context.Background(), "  \n ")
	if err != nil {
		t.Fatalf("Persons() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Persons() = %v, want none", got)
	}
}

func TestPersonsReturnsTrimmedSpans(t *testing.T) {
	got, err := New(nil).Persons(context.Background(), "Rahul Kumar met Priya Sharma in Delhi yesterday.")
	if err != nil {
		t.Fatalf("Persons() error = %v", err)
	}
	for _, s := range got {
		if s == "" {
			t.Error("empty span returned")
		}
	}
}

func TestPersonsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(nil).Persons(ctx, "Rahul Kumar"); err == nil {
		t.Error("expected context error")
	}
}
