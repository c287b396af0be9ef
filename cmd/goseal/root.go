package main

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/goseal"
	"github.com/reoring/goseal/config"
	"github.com/reoring/goseal/internal/testentity"
	"github.com/reoring/goseal/metrics"
)

var (
	// Global flags
	cfgFile     string
	dumpMetrics bool
)

// app carries what every subcommand needs once the configuration is loaded.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	reg      *goseal.Registry
	promReg  *prometheus.Registry
	observer *metrics.Collector
}

var current *app

// typeRegistrations populate the registry of every command. A build that
// embeds its own entities appends to it from an init function in this
// package.
var typeRegistrations = []func(*goseal.Registry){testentity.RegisterInto}

// options returns engine options wired to the loaded configuration.
func (a *app) options(sink func(goseal.Issue)) goseal.Options {
	o := a.cfg.Options(a.reg, &a.log)
	o.Observer = a.observer
	o.IssueSink = sink
	return o
}

var rootCmd = &cobra.Command{
	Use:   "goseal",
	Short: "Serialize, convert and inspect immutable entity documents",
	Long: `goseal works with documents written by the goseal serialization engine.

Every node of a document carries a type_hint; primitives carry
primitive_value or primitive_value_base64. Documents can be JSON or XML
and either syntax is accepted on input.

Commands:
  goseal convert   # re-render a document in another syntax
  goseal check     # decode a document and report issues
  goseal bench     # round-trip sample entities through every format`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithFallback(cfgFile)
		if err != nil {
			return err
		}
		cfg.Apply(os.Stderr)

		reg := goseal.NewRegistry()
		for _, register := range typeRegistrations {
			register(reg)
		}
		promReg := prometheus.NewRegistry()
		current = &app{
			cfg:      cfg,
			log:      goseal.Logger(),
			reg:      reg,
			promReg:  promReg,
			observer: metrics.NewWithRegistry(promReg),
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if !dumpMetrics || current == nil {
			return nil
		}
		return writeMetrics(cmd.ErrOrStderr(), current.promReg)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "goseal.yaml", "config file path (optional)")
	rootCmd.PersistentFlags().BoolVar(&dumpMetrics, "metrics", false, "print collected metrics to stderr on exit")
}

// writeMetrics prints counters and histogram totals, one series per line.
func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			labels := ""
			for i, lp := range m.GetLabel() {
				if i > 0 {
					labels += ","
				}
				labels += lp.GetName() + "=" + lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s{%s} %g\n", f.GetName(), labels, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s{%s} count=%d sum=%gs\n", f.GetName(), labels, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

// openInput returns the named file, or stdin for "" and "-".
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}
