package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/spsworld03/sps-bill-brew/internal/domain"
	"github.com/spsworld03/sps-bill-brew/internal/export"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

type lineView struct {
	Name      string `json:"name" yaml:"name"`
	Quantity  int    `json:"qty" yaml:"qty"`
	UnitPrice string `json:"price" yaml:"price"`
}

type recordView struct {
	BillNo      string     `json:"billNo" yaml:"billNo"`
	Date        string     `json:"date" yaml:"date"`
	Customer    string     `json:"customer" yaml:"customer"`
	Phone       string     `json:"phone,omitempty" yaml:"phone,omitempty"`
	PaymentMode string     `json:"paymentMode" yaml:"paymentMode"`
	Items       []lineView `json:"items" yaml:"items"`
	Subtotal    string     `json:"subtotal" yaml:"subtotal"`
	Discount    string     `json:"discount" yaml:"discount"`
	Total       string     `json:"total" yaml:"total"`
}

type pageResult struct {
	Bills      []recordView `json:"bills" yaml:"bills"`
	Page       int          `json:"page" yaml:"page"`
	PerPage    int          `json:"per_page" yaml:"per_page"`
	TotalPages int          `json:"total_pages" yaml:"total_pages"`
	Total      int          `json:"total" yaml:"total"`
}

func billView(r domain.BillRecord) recordView {
	items := make([]lineView, 0, len(r.LineItems))
	for _, item := range r.LineItems {
		items = append(items, lineView{Name: item.Name, Quantity: item.Quantity, UnitPrice: item.UnitPrice.StringFixed(2)})
	}
	return recordView{
		BillNo:      r.BillNumber,
		Date:        r.Date,
		Customer:    r.CustomerName,
		Phone:       r.CustomerPhone,
		PaymentMode: string(r.PaymentMode),
		Items:       items,
		Subtotal:    r.Subtotal.StringFixed(2),
		Discount:    r.Discount.StringFixed(2),
		Total:       r.Total.StringFixed(2),
	}
}

func pageView(p domain.BillPage) pageResult {
	bills := make([]recordView, 0, len(p.Bills))
	for _, r := range p.Bills {
		bills = append(bills, billView(r))
	}
	return pageResult{Bills: bills, Page: p.Page, PerPage: p.PerPage, TotalPages: p.TotalPages, Total: p.Total}
}

// printValue writes v as json or yaml, or calls table for the default output.
func printValue(w io.Writer, output string, v any, table func(io.Writer) error) error {
	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return table(w)
	}
}

func writeBillTable(w io.Writer, p domain.BillPage) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BILL NO\tDATE\tCUSTOMER\tPAYMENT\tITEMS\tTOTAL")
	for _, r := range p.Bills {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", r.BillNumber, r.Date, r.CustomerName, r.PaymentMode, len(r.LineItems), r.Total.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if p.Total == 0 {
		_, err := fmt.Fprintln(w, "no bills issued yet")
		return err
	}
	_, err := fmt.Fprintf(w, "page %d of %d (%d bills)\n", p.Page, p.TotalPages, p.Total)
	return err
}

func writeBillDetail(w io.Writer, r domain.BillRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Bill No:\t%s\n", r.BillNumber)
	fmt.Fprintf(tw, "Date:\t%s\n", r.Date)
	fmt.Fprintf(tw, "Customer:\t%s\n", r.CustomerName)
	if r.CustomerPhone != "" {
		fmt.Fprintf(tw, "Phone:\t%s\n", r.CustomerPhone)
	}
	fmt.Fprintf(tw, "Payment:\t%s\n", r.PaymentMode)
	fmt.Fprintf(tw, "Items:\t%s\n", export.ItemsSummary(r.LineItems))
	fmt.Fprintf(tw, "Subtotal:\t%s\n", r.Subtotal.StringFixed(2))
	fmt.Fprintf(tw, "Discount:\t%s\n", r.Discount.StringFixed(2))
	fmt.Fprintf(tw, "Total:\t%s\n", r.Total.StringFixed(2))
	return tw.Flush()
}
