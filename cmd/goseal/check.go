package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/goseal"
	"github.com/reoring/goseal/i18n"
)

var checkStrict bool

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Decode a document and report issues",
	Long: `Check decodes a document and lists every tolerated issue: unknown
fields, unregistered type hints and malformed scalars. Fatal problems are
returned as errors.

Only types linked into this binary are known. The stock build carries the
goseal.test.* sample entities; other types are reported as
discriminator_unknown. Builds that embed their own entities register them
through typeRegistrations.

Examples:
  goseal check book.json
  goseal check --strict book.xml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "fail when any issue is reported")
}

func runCheck(cmd *cobra.Command, args []string) error {
	in, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	var issues goseal.Issues
	v, err := goseal.Read(in, nil, current.options(func(is goseal.Issue) {
		issues = append(issues, is)
	}))
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}

	out := cmd.OutOrStdout()
	switch root := v.(type) {
	case nil:
		fmt.Fprintln(out, "root: <default>")
	case goseal.Entity:
		fmt.Fprintf(out, "root: %s (complete=%t)\n", root.TypeName().Value(), root.IsComplete())
	default:
		fmt.Fprintf(out, "root: %T\n", root)
	}
	for _, is := range issues {
		fmt.Fprintf(out, "  %s %s: %s\n", is.Code, is.Path, i18n.T(is.Code, map[string]string{"field": is.Path}))
	}
	fmt.Fprintf(out, "%d issue(s)\n", len(issues))

	if checkStrict && len(issues) > 0 {
		return issues
	}
	return nil
}
