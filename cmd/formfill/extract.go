package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/formfill/internal/pipeline"
)

var (
	extractText    bool
	extractShowRaw bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file|->",
	Short: "Extract fields from a card image or its OCR text",
	Long: `Extract runs OCR over an image (jpg, png, webp, bmp, tiff, heic), detects
the card type and prints the extracted fields. With --text the input is
treated as OCR output and no OCR is run; .txt files are always read as text.

Examples:
  formfill extract card.jpg
  formfill extract --text ocr.txt -o json
  tesseract card.png stdout | formfill extract --text -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			res pipeline.Result
			err error
		)
		if extractText || args[0] == "-" {
			text, rerr := readInput(cmd.InOrStdin(), args[0])
			if rerr != nil {
				return rerr
			}
			res, err = stack.Processor.ProcessText(ctx, string(text), nil)
			res.Source = args[0]
		} else {
			res, err = stack.Processor.ProcessFile(ctx, args[0])
		}
		if err != nil {
			return err
		}
		return output(viewOf(res, extractShowRaw))
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractText, "text", false, "treat the input as OCR text")
	extractCmd.Flags().BoolVar(&extractShowRaw, "raw", false, "include the OCR text in the output")
}
