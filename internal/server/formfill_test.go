package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net"
	"testing"

	"github.com/xuri/excelize/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/formfill/constants"
	"github.com/joseph-ayodele/formfill/internal/classify"
	"github.com/joseph-ayodele/formfill/internal/common"
	"github.com/joseph-ayodele/formfill/internal/export"
	"github.com/joseph-ayodele/formfill/internal/extract"
	"github.com/joseph-ayodele/formfill/internal/pipeline"
	"github.com/joseph-ayodele/formfill/internal/templates"
)

type stubProcessor struct {
	res      pipeline.Result
	err      error
	gotText  string
	gotImage []byte
}

func (p *stubProcessor) ProcessImage(_ context.Context, img []byte) (pipeline.Result, error) {
	p.gotImage = img
	return p.res, p.err
}

func (p *stubProcessor) ProcessText(_ context.Context, text string, img []byte) (pipeline.Result, error) {
	p.gotText, p.gotImage = text, img
	return p.res, p.err
}

func newTestService(t *testing.T, proc Processor) *FormFillService {
	t.Helper()
	reg, err := templates.NewRegistry("", nil)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return NewFormFillService(proc, classify.New(nil), reg, export.NewService(nil), Options{MaxImageBytes: 1 << 20}, nil)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("NewStruct() error = %v", err)
	}
	return s
}

func wantCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	if got := status.Code(err); got != code {
		t.Fatalf("status code = %s (err=%v), want %s", got, err, code)
	}
}

func panResult() pipeline.Result {
	fields := extract.NewResult(constants.PAN)
	fields.Set(constants.FieldName, "RAHUL KUMAR")
	fields.Set(constants.FieldPAN, "ABCDE1234F")
	return pipeline.Result{RequestID: "req-1", MethodUsed: "gray", CardType: constants.PAN, RawText: "raw", Fields: fields}
}

func TestExtract(t *testing.T) {
	proc := &stubProcessor{res: panResult()}
	svc := newTestService(t, proc)

	img := []byte{0x89, 'P', 'N', 'G'}
	resp, err := svc.Extract(context.Background(), mustStruct(t, map[string]any{
		"image_base64": base64.StdEncoding.EncodeToString(img),
	}))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !bytes.Equal(proc.gotImage, img) {
		t.Errorf("processor got image %v, want %v", proc.gotImage, img)
	}

	m := resp.AsMap()
	if m["card_type"] != "PAN" || m["method_used"] != "gray" || m["request_id"] != "req-1" {
		t.Errorf("response = %v", m)
	}
	fields, ok := m["fields"].(map[string]any)
	if !ok {
		t.Fatalf("fields = %T", m["fields"])
	}
	if fields[constants.FieldPAN] != "ABCDE1234F" {
		t.Errorf("PAN = %v", fields[constants.FieldPAN])
	}
	if v, ok := fields[constants.FieldGender]; !ok || v != nil {
		t.Errorf("Gender = %v (present=%v), want null", v, ok)
	}
}

func TestExtractText(t *testing.T) {
	proc := &stubProcessor{res: panResult()}
	svc := newTestService(t, proc)
	if _, err := svc.Extract(context.Background(), mustStruct(t, map[string]any{"text": "INCOME TAX DEPARTMENT"})); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if proc.gotText != "INCOME TAX DEPARTMENT" {
		t.Errorf("processor got text %q", proc.gotText)
	}
}

func TestExtractUnsupported(t *testing.T) {
	proc := &stubProcessor{res: pipeline.Result{RequestID: "r", MethodUsed: "gray", CardType: constants.Unknown, RawText: "hello"}}
	resp, err := newTestService(t, proc).Extract(context.Background(), mustStruct(t, map[string]any{"text": "hello"}))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	m := resp.AsMap()
	if m["card_type"] != "UNKNOWN" {
		t.Errorf("card_type = %v", m["card_type"])
	}
	fields, _ := m["fields"].(map[string]any)
	if fields["error"] != ErrMsgUnsupported {
		t.Errorf("fields = %v, want unsupported error", m["fields"])
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		req  map[string]any
		err  error
		code codes.Code
	}{
		{name: "empty request", req: map[string]any{}, code: codes.InvalidArgument},
		{name: "bad base64", req: map[string]any{"image_base64": "@@not base64@@"}, code: codes.InvalidArgument},
		{name: "invalid image", req: map[string]any{"image_base64": "AAAA"}, err: common.ErrInvalidImage, code: codes.InvalidArgument},
		{name: "ocr failed", req: map[string]any{"image_base64": "AAAA"}, err: common.ErrOCRFailed, code: codes.FailedPrecondition},
		{name: "internal", req: map[string]any{"text": "x"}, err: errors.New("boom"), code: codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &stubProcessor{err: tt.err})
			_, err := svc.Extract(context.Background(), mustStruct(t, tt.req))
			wantCode(t, err, tt.code)
		})
	}
}

func TestClassify(t *testing.T) {
	svc := newTestService(t, nil)
	resp, err := svc.Classify(context.Background(), mustStruct(t, map[string]any{"text": "ELECTION COMMISSION OF INDIA"}))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got := resp.AsMap()["card_type"]; got != "VOTER_ID" {
		t.Errorf("card_type = %v, want VOTER_ID", got)
	}

	_, err = svc.Classify(context.Background(), mustStruct(t, map[string]any{}))
	wantCode(t, err, codes.InvalidArgument)
}

func TestMapTemplate(t *testing.T) {
	svc := newTestService(t, nil)
	resp, err := svc.MapTemplate(context.Background(), mustStruct(t, map[string]any{
		"template": "bank_kyc",
		"fields": map[string]any{
			"Naame":  "RAHUL",
			"Gender": nil,
			"PAN":    "ABCDE1234F",
		},
	}))
	if err != nil {
		t.Fatalf("MapTemplate() error = %v", err)
	}
	m := resp.AsMap()
	if m["template"] != "bank_kyc" {
		t.Errorf("template = %v", m["template"])
	}
	mapped, _ := m["mapped_fields"].(map[string]any)
	if mapped["applicant_name"] != "RAHUL" || mapped["pan"] != "ABCDE1234F" || mapped["gender"] != "" {
		t.Errorf("mapped_fields = %v", mapped)
	}
}

func TestMapTemplateErrors(t *testing.T) {
	svc := newTestService(t, nil)
	tests := []struct {
		name string
		req  map[string]any
		code codes.Code
	}{
		{name: "missing template", req: map[string]any{"fields": map[string]any{}}, code: codes.InvalidArgument},
		{name: "bad template name", req: map[string]any{"template": "../x"}, code: codes.InvalidArgument},
		{name: "fields not object", req: map[string]any{"template": "bank_kyc", "fields": "x"}, code: codes.InvalidArgument},
		{name: "unknown template", req: map[string]any{"template": "nope"}, code: codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.MapTemplate(context.Background(), mustStruct(t, tt.req))
			wantCode(t, err, tt.code)
		})
	}
}

func TestListTemplates(t *testing.T) {
	resp, err := newTestService(t, nil).ListTemplates(context.Background(), &structpb.Struct{})
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	list, _ := resp.AsMap()["templates"].([]any)
	if len(list) != 3 {
		t.Errorf("templates = %v", list)
	}
}

func TestExportXLSX(t *testing.T) {
	svc := newTestService(t, nil)
	resp, err := svc.ExportXLSX(context.Background(), mustStruct(t, map[string]any{
		"documents": []any{
			map[string]any{
				"source": "a.jpg", "card_type": "PAN", "method_used": "gray",
				"fields": map[string]any{"PAN": "ABCDE1234F", "Gender": nil},
			},
			map[string]any{"source": "b.jpg", "card_type": "UNKNOWN", "method_used": "gray"},
		},
	}))
	if err != nil {
		t.Fatalf("ExportXLSX() error = %v", err)
	}
	data, err := base64.StdEncoding.DecodeString(resp.AsMap()["xlsx_base64"].(string))
	if err != nil {
		t.Fatalf("decode xlsx: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Documents")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	_, err = svc.ExportXLSX(context.Background(), mustStruct(t, map[string]any{}))
	wantCode(t, err, codes.InvalidArgument)
	_, err = svc.ExportXLSX(context.Background(), mustStruct(t, map[string]any{
		"documents": []any{map[string]any{"card_type": "PASSPORT"}},
	}))
	wantCode(t, err, codes.InvalidArgument)
}

func TestGRPCRoundTrip(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv, _ := NewGRPCServer(newTestService(t, &stubProcessor{res: panResult()}), nil, 0, 0)
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer conn.Close()

	out := new(structpb.Struct)
	in := mustStruct(t, map[string]any{"text": "Permanent Account Number ABCDE1234F"})
	if err := conn.Invoke(context.Background(), "/formfill.v1.FormFill/Classify", in, out); err != nil {
		t.Fatalf("Invoke(Classify) error = %v", err)
	}
	if got := out.AsMap()["card_type"]; got != "PAN" {
		t.Errorf("card_type = %v, want PAN", got)
	}

	err = conn.Invoke(context.Background(), "/formfill.v1.FormFill/MapTemplate", mustStruct(t, map[string]any{"template": "nope"}), new(structpb.Struct))
	wantCode(t, err, codes.NotFound)

	hc, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: serviceName})
	if err != nil {
		t.Fatalf("health Check() error = %v", err)
	}
	if hc.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("health = %s", hc.GetStatus())
	}
}
