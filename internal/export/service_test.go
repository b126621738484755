package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/formfill/constants"
	"github.com/joseph-ayodele/formfill/internal/extract"
	"github.com/joseph-ayodele/formfill/internal/pipeline"
)

func readSheet(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	return rows
}

func TestWriteXLSX(t *testing.T) {
	pan := extract.NewResult(constants.PAN)
	pan.Set(constants.FieldName, "RAHUL KUMAR")
	pan.Set(constants.FieldPAN, "ABCDE1234F")

	voter := extract.NewResult(constants.VoterID)
	voter.Set(constants.FieldEPIC, "ABC1234567")

	rows := []Row{
		{Source: "a.jpg", CardType: "PAN", Method: "gray", Fields: pan},
		{Source: "b.jpg", CardType: "VOTER_ID", Method: "adaptive", Fields: voter},
		{Source: "c.jpg", CardType: "UNKNOWN", Method: "gray"},
	}

	data, err := NewService(nil).WriteXLSX(rows)
	if err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}
	got := readSheet(t, data)
	if len(got) != 4 {
		t.Fatalf("got %d rows, want 4", len(got))
	}

	header := got[0]
	wantHeader := append([]string{"Source", "Card Type", "OCR Method"}, constants.FieldsFor(constants.PAN)...)
	wantHeader = append(wantHeader, constants.FieldEPIC, constants.FieldRelationName, constants.FieldRelationType, constants.FieldAddress)
	if len(header) != len(wantHeader) {
		t.Fatalf("header = %v, want %v", header, wantHeader)
	}
	for i := range wantHeader {
		if header[i] != wantHeader[i] {
			t.Errorf("header[%d] = %q, want %q", i, header[i], wantHeader[i])
		}
	}

	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("column %q missing", name)
		return -1
	}
	if v := got[1][col(constants.FieldPAN)]; v != "ABCDE1234F" {
		t.Errorf("PAN cell = %q", v)
	}
	if v := got[2][col(constants.FieldEPIC)]; v != "ABC1234567" {
		t.Errorf("EPIC cell = %q", v)
	}
	if got[3][0] != "c.jpg" || got[3][1] != "UNKNOWN" {
		t.Errorf("unknown row = %v", got[3])
	}
}

func TestWriteXLSXErrorColumn(t *testing.T) {
	row := RowFromResult(pipeline.Result{Source: "x.png"}, errors.New("ocr failed"))
	data, err := NewService(nil).WriteXLSX([]Row{row})
	if err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}
	got := readSheet(t, data)
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if last := got[0][len(got[0])-1]; last != "Error" {
		t.Errorf("last header = %q, want Error", last)
	}
	if last := got[1][len(got[1])-1]; last != "ocr failed" {
		t.Errorf("error cell = %q", last)
	}
}

func TestWriteXLSXEmpty(t *testing.T) {
	data, err := NewService(nil).WriteXLSX(nil)
	if err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}
	got := readSheet(t, data)
	if len(got) != 1 || len(got[0]) != 3 {
		t.Fatalf("rows = %v, want header only", got)
	}
}
