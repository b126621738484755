package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/formfill/internal/app"
	"github.com/joseph-ayodele/formfill/internal/common"
)

var (
	cfgFile      string
	outputFormat string
	logLevel     string

	stack *app.App
)

var rootCmd = &cobra.Command{
	Use:   "formfill",
	Short: "Extract identity fields from Aadhaar, PAN and Voter ID scans",
	Long: `formfill reads photographs or OCR text of Indian identity documents,
detects the card type and extracts its fields (name, date of birth, gender,
ID numbers, relations, address).

Extracted fields can be mapped onto the field names of a form template,
exported to XLSX in batch, or written next to each image as it arrives in
a watched directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := common.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		// stdout carries command output
		logger := common.NewLogger(cfg.Log, os.Stderr)

		stack, err = app.New(cfg, logger)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if stack == nil {
			return nil
		}
		return stack.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./formfill.yaml or ~/.formfill/formfill.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level override: debug, info, warn or error",
	)

	rootCmd.AddCommand(classifyCmd, extractCmd, mapCmd, batchCmd, watchCmd, templatesCmd)
}
