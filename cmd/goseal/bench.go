package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reoring/goseal"
	"github.com/reoring/goseal/internal/testentity"
)

var benchN int

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Round-trip a sample entity through every format",
	Long: `Bench builds a sample Book, then serializes and deserializes it in
each format, checking that every copy equals the original.

Examples:
  goseal bench -n 5000 --metrics`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntVarP(&benchN, "n", "n", 1000, "round trips per format")
}

func sampleBook() (*testentity.Book, error) {
	pub, err := testentity.NewPublisher("Acme Press", "Kyoto", "Sei Shonagon", "Murasaki")
	if err != nil {
		return nil, err
	}
	return testentity.NewBookBuilder().
		Title("The Pillow Book\x01").
		Pages(352).
		ISBN(9780140448061).
		Edition(2).
		Flags(0x0f).
		Grade('A').
		Rating(4.5).
		Price(12.99).
		InPrint(true).
		Published(time.Date(1002, 1, 1, 0, 0, 0, 0, time.UTC)).
		Tags("classic", "essay").
		Genres("diary", "poetry").
		Rate("critics", 5).
		Publisher(pub).
		Note(int32(7)).
		Extras("x", nil, goseal.Char('z')).
		Create()
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchN <= 0 {
		return fmt.Errorf("n must be positive")
	}
	book, err := sampleBook()
	if err != nil {
		return fmt.Errorf("build sample: %w", err)
	}
	opts := current.options(nil)
	out := cmd.OutOrStdout()

	for _, f := range []goseal.Format{goseal.FormatJSON, goseal.FormatJSONPretty, goseal.FormatXML, goseal.FormatXMLPretty} {
		start := time.Now()
		size := 0
		for range benchN {
			text, err := goseal.Serialize(f, book, opts)
			if err != nil {
				return fmt.Errorf("%s serialize: %w", f, err)
			}
			size = len(text)
			back, err := goseal.DeserializeAs[*testentity.Book](text, nil, opts)
			if err != nil {
				return fmt.Errorf("%s deserialize: %w", f, err)
			}
			if !goseal.Equal(book, back) {
				return fmt.Errorf("%s round trip changed the entity", f)
			}
		}
		elapsed := time.Since(start)
		fmt.Fprintf(out, "%-12s %6d bytes  %10s/op\n", f, size, elapsed/time.Duration(benchN))
		current.log.Info().Str("format", f.String()).Dur("elapsed", elapsed).Int("n", benchN).Msg("bench")
	}
	return nil
}
