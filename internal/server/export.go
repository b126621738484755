package server

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/formfill/constants"
	"github.com/joseph-ayodele/formfill/internal/common"
	"github.com/joseph-ayodele/formfill/internal/export"
	"github.com/joseph-ayodele/formfill/internal/extract"
)

type Exporter interface {
	WriteXLSX(rows []export.Row) ([]byte, error)
}

// ExportXLSX accepts {documents: [{source, card_type, method_used, fields}]},
// the shape Extract returns, and responds with {xlsx_base64}.
func (s *FormFillService) ExportXLSX(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	docs := req.GetFields()["documents"].GetListValue().GetValues()
	if len(docs) == 0 {
		return nil, common.InvalidArgumentError("documents is required")
	}

	rows := make([]export.Row, 0, len(docs))
	for i, d := range docs {
		doc := d.GetStructValue()
		if doc == nil {
			return nil, common.InvalidArgumentErrorf("documents[%d] must be an object", i)
		}
		row, err := rowFromStruct(doc)
		if err != nil {
			return nil, common.InvalidArgumentErrorf("documents[%d]: %v", i, err)
		}
		rows = append(rows, row)
	}

	xlsx, err := s.exporter.WriteXLSX(rows)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "rows", len(rows), "err", err)
		return nil, common.InternalErrorf("export: %v", err)
	}
	return toStruct(map[string]any{"xlsx_base64": base64.StdEncoding.EncodeToString(xlsx)})
}

func rowFromStruct(doc *structpb.Struct) (export.Row, error) {
	row := export.Row{
		Source: stringField(doc, "source"),
		Method: stringField(doc, "method_used"),
	}
	docType, ok := constants.ParseDocumentType(stringField(doc, "card_type"))
	if !ok {
		return row, fmt.Errorf("card_type %q is not recognized", stringField(doc, "card_type"))
	}
	row.CardType = docType.String()
	if !docType.Supported() {
		return row, nil
	}

	fields := extract.NewResult(docType)
	for k, v := range doc.GetFields()["fields"].GetStructValue().GetFields() {
		fields.Set(k, scalarString(v))
	}
	row.Fields = fields
	return row, nil
}
