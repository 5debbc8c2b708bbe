package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spsworld03/sps-bill-brew/internal/app"
	"github.com/spsworld03/sps-bill-brew/internal/config"
)

type options struct {
	configFile string
	output     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "billctl",
		Short: "Inspect and maintain the SPS bill ledger",
		Long: `billctl works directly against the durable slot the billing server uses.

Example Usage:
  billctl next                          # Preview the next bill number
  billctl list --page 2                 # Second page of issued bills
  billctl export --format csv --out -   # Ledger as CSV on stdout
  billctl show SPS07 --invoice > b.html # Printable invoice`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case outputTable, outputJSON, outputYAML:
				return nil
			default:
				return fmt.Errorf("unsupported output %q (table, json, yaml)", opts.output)
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to a billing.yaml configuration file")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "Output format: table, json or yaml")

	root.AddCommand(
		newNextCmd(opts),
		newListCmd(opts),
		newExportCmd(opts),
		newShowCmd(opts),
		newResetCmd(opts),
	)
	return root
}

// open loads configuration and the ledger. Logging stays at warn level so
// swallowed storage failures still reach stderr without drowning the output.
func (o *options) open(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	cfg.LogFormat = "console"
	if cfg.LogLevel == "" || cfg.LogLevel == "info" || cfg.LogLevel == "debug" {
		cfg.LogLevel = "warn"
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, cfg, logger)
}
