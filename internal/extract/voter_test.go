package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/joseph-ayodele/formfill/constants"
)

const voterCard = "ELECTION COMMISSION OF INDIA\n" +
	"IDENTITY CARD\n" +
	"ABC1234567\n" +
	"Name\n" +
	"RAMESH KUMAR\n" +
	"Father's Name: SURESH\n" +
	"KUMAR\n" +
	"Sex: Male\n" +
	"Date of Birth: 12/03/1985\n" +
	"Address: 12 MG Road\n" +
	"Sector 5\n" +
	"Bengaluru\n" +
	"Karnataka\n"

func TestVoterCard(t *testing.T) {
	r := New(Options{}).Voter(context.Background(), voterCard, nil)
	assertKeySet(t, r, constants.VoterID)
	assertField(t, r, constants.FieldEPIC, "ABC1234567")
	assertField(t, r, constants.FieldName, "Ramesh Kumar")
	assertField(t, r, constants.FieldRelationName, "Suresh Kumar")
	assertField(t, r, constants.FieldRelationType, "Father")
	assertField(t, r, constants.FieldDOB, "12/03/1985")
	assertField(t, r, constants.FieldGender, "Male")
	assertField(t, r, constants.FieldAddress, "12 MG Road, Sector 5, Bengaluru")
}

func TestVoterEPIC(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"three letters seven digits", "EPIC\nXYZ7654321", "XYZ7654321"},
		{"two letters eight digits", "EPIC\nXY12345678", "XY12345678"},
		{"spaces removed", "EPIC\nXYZ 765 4321", "XYZ7654321"},
		{"nine characters rejected", "ELECTION COMMISSION OF INDIA\nAB1234567", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(Options{}).Voter(context.Background(), tt.text, nil)
			assertField(t, r, constants.FieldEPIC, tt.want)
		})
	}
}

func TestVoterInlineName(t *testing.T) {
	raw := "Election Commission of India\nElector's Name: ANITA DEVI\nMother's Name: KAMLA DEVI\nGender: Female\nAge: 35"
	r := New(Options{}).Voter(context.Background(), raw, nil)
	assertField(t, r, constants.FieldName, "Anita Devi")
	assertField(t, r, constants.FieldRelationName, "Kamla Devi")
	assertField(t, r, constants.FieldRelationType, "Mother")
	assertField(t, r, constants.FieldGender, "Female")
}

func TestVoterAddressStops(t *testing.T) {
	raw := "S/O Ram Prasad\nHouse 4 Gandhi Nagar\nAge: 40\nJaipur"
	r := New(Options{}).Voter(context.Background(), raw, nil)
	assertField(t, r, constants.FieldAddress, "House 4 Gandhi Nagar")
}

func TestVoterAccurateEngine(t *testing.T) {
	img := cardPNG(t)
	accurate := &stubRecognizer{text: "ELECTION COMMISSION OF INDIA\nName\nSITA DEVI\nGender: Female\nXYZ7654321"}
	e := New(Options{Accurate: accurate, AccurateLanguages: []string{"eng", "hin"}})

	r := e.Voter(context.Background(), "", img)
	assertField(t, r, constants.FieldName, "Sita Devi")
	assertField(t, r, constants.FieldEPIC, "XYZ7654321")
	assertField(t, r, constants.FieldGender, "Female")
	if len(accurate.reqs) != 1 || len(accurate.reqs[0].Languages) != 2 {
		t.Fatalf("accurate engine requests = %+v", accurate.reqs)
	}

	short := &stubRecognizer{text: "too short"}
	r = New(Options{Accurate: short}).Voter(context.Background(), voterCard, img)
	assertField(t, r, constants.FieldName, "Ramesh Kumar")

	failing := &stubRecognizer{err: errors.New("no hin.traineddata")}
	r = New(Options{Accurate: failing}).Voter(context.Background(), voterCard, img)
	assertField(t, r, constants.FieldEPIC, "ABC1234567")
}

func TestVoterEmpty(t *testing.T) {
	r := New(Options{}).Voter(context.Background(), "   ", nil)
	assertKeySet(t, r, constants.VoterID)
	if r.Found() != 0 {
		t.Errorf("Found() = %d, want 0", r.Found())
	}
}
