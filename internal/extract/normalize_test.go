package extract

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"symbols become spaces", "Name: RAHUL@KUMAR!!", "Name: RAHUL KUMAR"},
		{"tabs and space runs", "DOB\t\t01/01/1990   Male", "DOB 01/01/1990 Male"},
		{"newline runs", "a\n\n\n\nb", "a\nb"},
		{"devanagari stripped", "नाम / Name\nRahul", "/ Name\nRahul"},
		{"keeps colon slash dash", "S/O: A-B", "S/O: A-B"},
		{"trims", "  \n x \n ", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"GOVERNMENT OF INDIA\r\nराहुल कुमार\nRahul Kumar\n\tDOB : 01/01/1990\n\n\nMale",
		" \n \n a ",
		"***INCOME TAX***\n\n  DEPT  \t\n",
		"नाम / Name\n\n\n  ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestLines(t *testing.T) {
	norm := Normalize("Rahul Kumar\n  \nFather")
	if got, want := Lines(norm, true), []string{"Rahul Kumar", "", "Father"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Lines(keepBlank) = %q, want %q", got, want)
	}
	if got, want := Lines(norm, false), []string{"Rahul Kumar", "Father"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Lines(dropBlank) = %q, want %q", got, want)
	}
	if got := Lines("", true); len(got) != 0 {
		t.Errorf("Lines(\"\") = %q, want none", got)
	}
}
