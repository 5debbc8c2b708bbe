package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/spsworld03/sps-bill-brew/internal/export"
	"github.com/spsworld03/sps-bill-brew/internal/invoice"
)

func newNextCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Print the bill number the next issued bill will get",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer core.Close()

			return printValue(cmd.OutOrStdout(), opts.output, map[string]string{"bill_number": core.Service.NextBillNumber()}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, core.Service.NextBillNumber())
				return err
			})
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List issued bills in issuance order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer core.Close()

			result := core.Service.ListBills(page, perPage)
			return printValue(cmd.OutOrStdout(), opts.output, pageView(result), func(w io.Writer) error {
				return writeBillTable(w, result)
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 8, "Bills per page")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole ledger as xlsx or csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			core, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer core.Close()

			records := core.Service.Bills()
			if out == "-" {
				return export.Write(cmd.OutOrStdout(), f, records)
			}
			if out == "" {
				out = f.Filename()
			}

			file, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.Write(file, f, records); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d bills to %s\n", len(records), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "xlsx", "Export format: xlsx or csv")
	cmd.Flags().StringVar(&out, "out", "", "Output file, - for stdout (default bills.<format>)")
	return cmd
}

func newShowCmd(opts *options) *cobra.Command {
	var asInvoice bool

	cmd := &cobra.Command{
		Use:   "show BILLNO",
		Short: "Show one bill, or render its printable invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer core.Close()

			bill, err := core.Service.FindBill(args[0])
			if err != nil {
				return err
			}
			if asInvoice {
				return invoice.Render(cmd.OutOrStdout(), invoice.DefaultShop, bill)
			}
			return printValue(cmd.OutOrStdout(), opts.output, billView(bill), func(w io.Writer) error {
				return writeBillDetail(w, bill)
			})
		},
	}

	cmd.Flags().BoolVar(&asInvoice, "invoice", false, "Render the HTML invoice instead")
	return cmd
}

func newResetCmd(opts *options) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every bill from the ledger and its durable slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("refusing to reset the ledger without --yes")
			}

			core, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer core.Close()

			removed := core.Ledger.Len()
			core.Service.Reset(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d bills; next bill number %s\n", removed, core.Service.NextBillNumber())
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the reset")
	return cmd
}
