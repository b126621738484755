package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <file|->",
	Short: "Detect the card type of OCR text",
	Long: `Classify reads OCR text from a file (or stdin when the argument is "-")
and prints the detected card type: AADHAAR, PAN, VOTER_ID or UNKNOWN.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		docType := stack.Classifier.Classify(string(text))
		return output(map[string]string{"card_type": docType.String()})
	},
}

func readInput(stdin io.Reader, arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(stdin)
	}
	b, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", arg, err)
	}
	return b, nil
}
