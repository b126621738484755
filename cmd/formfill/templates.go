package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var mapTemplate string

var mapCmd = &cobra.Command{
	Use:   "map --template <name> <fields.json|->",
	Short: "Map extracted fields onto a form template",
	Long: `Map reads a JSON object of extracted fields (for example the "fields"
object printed by extract -o json) and fills the official fields of the
named template. Keys are matched exactly first, then by similarity.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return err
		}
		mapped, err := stack.Templates.Map(mapTemplate, fields)
		if err != nil {
			return err
		}
		return output(mapped)
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates [name]",
	Short: "List form templates or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			t, err := stack.Templates.Get(args[0])
			if err != nil {
				return err
			}
			return output(t)
		}
		return output(map[string][]string{"templates": stack.Templates.Names()})
	},
}

func init() {
	mapCmd.Flags().StringVarP(&mapTemplate, "template", "t", "", "template name")
	_ = mapCmd.MarkFlagRequired("template")
}

// decodeFields accepts a flat object, or an extract result with a "fields"
// member. Null values become "".
func decodeFields(raw []byte) (map[string]string, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	if inner, ok := doc["fields"].(map[string]any); ok {
		doc = inner
	}
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			return nil, fmt.Errorf("field %q: unsupported value type %T", k, v)
		}
	}
	return out, nil
}
