package server

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/formfill/constants"
	"github.com/joseph-ayodele/formfill/internal/common"
	"github.com/joseph-ayodele/formfill/internal/pipeline"
	"github.com/joseph-ayodele/formfill/internal/templates"
)

// ErrMsgUnsupported is returned in the fields of an Extract response when the
// document could not be classified.
const ErrMsgUnsupported = "Unknown or unsupported document type"

type Processor interface {
	ProcessImage(ctx context.Context, img []byte) (pipeline.Result, error)
	ProcessText(ctx context.Context, text string, img []byte) (pipeline.Result, error)
}

type Classifier interface {
	Classify(raw string) constants.DocumentType
}

type TemplateMapper interface {
	Map(name string, fields map[string]string) (templates.Mapped, error)
	Names() []string
}

type Options struct {
	MaxImageBytes int
}

// FormFillService implements FormFillServer.
type FormFillService struct {
	proc       Processor
	classifier Classifier
	mapper     TemplateMapper
	exporter   Exporter
	opts       Options
	logger     *slog.Logger
}

func NewFormFillService(proc Processor, classifier Classifier, mapper TemplateMapper, exporter Exporter, opts Options, logger *slog.Logger) *FormFillService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FormFillService{
		proc:       proc,
		classifier: classifier,
		mapper:     mapper,
		exporter:   exporter,
		opts:       opts,
		logger:     logger,
	}
}

// Extract accepts {image_base64?, text?}. When text is given it is used as the
// OCR output and the image, if any, only feeds the targeted re-reads.
func (s *FormFillService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := common.LoggerFromContext(ctx, s.logger)
	imgB64 := stringField(req, "image_base64")
	text := stringField(req, "text")

	v := common.NewValidator().Field("image_base64", imgB64, common.Base64)
	if s.opts.MaxImageBytes > 0 {
		v.Field("image_base64", imgB64, common.MaxLength(base64.StdEncoding.EncodedLen(s.opts.MaxImageBytes)))
	}
	if strings.TrimSpace(imgB64) == "" && strings.TrimSpace(text) == "" {
		return nil, common.InvalidArgumentError("image_base64 or text is required")
	}
	if err := common.ValidateAndReturnError(v); err != nil {
		log.Error("extract request invalid", "error", err)
		return nil, err
	}

	var img []byte
	if imgB64 != "" {
		var err error
		if img, err = base64.StdEncoding.DecodeString(imgB64); err != nil {
			return nil, common.InvalidArgumentErrorf("image_base64: %v", err)
		}
	}

	var (
		res pipeline.Result
		err error
	)
	if strings.TrimSpace(text) != "" {
		res, err = s.proc.ProcessText(ctx, text, img)
	} else {
		res, err = s.proc.ProcessImage(ctx, img)
	}
	if err != nil {
		log.Error("extract failed", "error", err)
		return nil, common.ToStatus(err)
	}

	out := map[string]any{
		"request_id":  res.RequestID,
		"method_used": res.MethodUsed,
		"card_type":   res.CardType.String(),
		"raw_text":    res.RawText,
	}
	if res.Supported() {
		fields := make(map[string]any, len(res.Fields.Keys()))
		for k, v := range res.Fields.Map() {
			if v == nil {
				fields[k] = nil
				continue
			}
			fields[k] = *v
		}
		out["fields"] = fields
	} else {
		out["fields"] = map[string]any{"error": ErrMsgUnsupported}
	}

	log.Info("extract ok", "card_type", res.CardType.String(), "method", res.MethodUsed)
	return toStruct(out)
}

// Classify accepts {text} and returns {card_type}.
func (s *FormFillService) Classify(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text := stringField(req, "text")
	if err := common.ValidateAndReturnError(common.NewValidator().Field("text", text, common.Required)); err != nil {
		return nil, err
	}
	return toStruct(map[string]any{"card_type": s.classifier.Classify(text).String()})
}

// MapTemplate accepts {template, fields} and returns {template, mapped_fields}.
// Null field values are treated as "" and numbers as their decimal text.
func (s *FormFillService) MapTemplate(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := stringField(req, "template")
	v := common.NewValidator().Field("template", name, common.Required, common.TemplateName)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if fv, ok := req.GetFields()["fields"]; ok {
		switch kind := fv.GetKind().(type) {
		case *structpb.Value_StructValue:
			for k, val := range kind.StructValue.GetFields() {
				fields[k] = scalarString(val)
			}
		case *structpb.Value_NullValue:
		default:
			return nil, common.InvalidArgumentError("fields must be an object")
		}
	}

	mapped, err := s.mapper.Map(name, fields)
	if err != nil {
		s.logger.Warn("map template failed", "template", name, "error", err)
		return nil, common.ToStatus(err)
	}

	mf := make(map[string]any, len(mapped.Fields))
	for k, v := range mapped.Fields {
		mf[k] = v
	}
	return toStruct(map[string]any{"template": mapped.Template, "mapped_fields": mf})
}

// ListTemplates returns {templates: [...]}.
func (s *FormFillService) ListTemplates(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	names := s.mapper.Names()
	list := make([]any, len(names))
	for i, n := range names {
		list[i] = n
	}
	return toStruct(map[string]any{"templates": list})
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func scalarString(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	default:
		return ""
	}
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return st, nil
}
