package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/formfill/internal/pipeline"
	"github.com/joseph-ayodele/formfill/internal/server"
)

// output writes data to stdout in the format chosen by --output.
func output(data any) error {
	return outputTo(os.Stdout, outputFormat, data)
}

func outputTo(w io.Writer, format string, data any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// documentView is the printable shape of a pipeline result. Absent fields
// are null.
type documentView struct {
	RequestID  string             `json:"request_id" yaml:"request_id"`
	Source     string             `json:"source,omitempty" yaml:"source,omitempty"`
	MethodUsed string             `json:"method_used" yaml:"method_used"`
	CardType   string             `json:"card_type" yaml:"card_type"`
	RawText    string             `json:"raw_text,omitempty" yaml:"raw_text,omitempty"`
	Fields     map[string]*string `json:"fields,omitempty" yaml:"fields,omitempty"`
	Error      string             `json:"error,omitempty" yaml:"error,omitempty"`
}

func viewOf(res pipeline.Result, withRaw bool) documentView {
	v := documentView{
		RequestID:  res.RequestID,
		Source:     res.Source,
		MethodUsed: res.MethodUsed,
		CardType:   res.CardType.String(),
	}
	if withRaw {
		v.RawText = res.RawText
	}
	if res.Supported() {
		v.Fields = res.Fields.Map()
	} else {
		v.Error = server.ErrMsgUnsupported
	}
	return v
}
