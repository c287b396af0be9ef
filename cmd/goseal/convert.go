package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/reoring/goseal"
)

var convertTo string

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Re-render a document in another syntax",
	Long: `Convert reads a JSON or XML document and writes it in the requested
format. Entities are not decoded, so the document's types need not be
registered.

Examples:
  goseal convert book.json --to xml-pretty
  cat book.xml | goseal convert --to json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertTo, "to", "t", "", "output format: json, json-pretty, xml, xml-pretty (default from config)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	to := current.cfg.OutputFormat()
	if convertTo != "" {
		f, err := goseal.ParseFormat(convertTo)
		if err != nil {
			return err
		}
		to = f
	}

	in, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	out, err := goseal.Transcode(string(data), to, current.options(nil))
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	current.log.Debug().Str("to", to.String()).Int("bytes", len(out)).Msg("converted")
	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}
