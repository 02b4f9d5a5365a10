// Package output renders dashboard data as text, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/procurement/pkg/application/dto"
	"github.com/vsinha/procurement/pkg/infrastructure/events"
)

// Format selects how results are written
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an output format name
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Printer writes results in one format
type Printer struct {
	w        io.Writer
	format   Format
	currency string
}

// New creates a Printer. Currency labels money columns in text output.
func New(w io.Writer, format Format, currency string) *Printer {
	return &Printer{w: w, format: format, currency: currency}
}

// Format returns the printer's output format
func (p *Printer) Format() Format {
	return p.format
}

// Value writes v as JSON or YAML, or text as-is in text mode
func (p *Printer) Value(v any, text string) error {
	return p.emit(v, func() error {
		_, err := fmt.Fprintln(p.w, text)
		return err
	})
}

// Orders writes the orders table
func (p *Printer) Orders(rows []dto.OrderRow) error {
	return p.emit(rows, func() error {
		fmt.Fprintln(p.w, Title.Render("📋 Orders"))
		if len(rows) == 0 {
			fmt.Fprintln(p.w, Muted.Render("No orders."))
			return nil
		}
		fmt.Fprintf(p.w, "%s %s %s %s %s %s %s\n",
			cell("ID", 14, Header), cell("Product", 24, Header), cell("Qty", 8, Header),
			cell("Status", 18, Header), cell("Net "+p.currency, 12, Header),
			cell("Gross "+p.currency, 12, Header), Header.Render("Actions"))
		for _, row := range rows {
			fmt.Fprintf(p.w, "%s %s %s %s %s %s %s\n",
				cell(row.ID, 14, idStyle(row.Automatic)),
				cell(truncate(row.Product, 24), 24, Plain),
				cell(formatQty(row.Quantity), 8, Plain),
				cell(row.StatusLabel, 18, StatusStyle(row.Status)),
				cell(row.Net.StringFixed(2), 12, Plain),
				cell(row.Gross.StringFixed(2), 12, Plain),
				strings.Join(row.Actions, ","))
		}
		return nil
	})
}

// Forecast writes a classified forecast table under title
func (p *Printer) Forecast(title string, rows []dto.ForecastRow) error {
	return p.emit(rows, func() error {
		fmt.Fprintln(p.w, Title.Render("📈 "+title))
		if len(rows) == 0 {
			fmt.Fprintln(p.w, Muted.Render("No forecast available."))
			return nil
		}
		fmt.Fprintf(p.w, "%s %s %s %s %s %s %s\n",
			cell("Product", 24, Header), cell("Stock", 8, Header), cell("Burn/day", 9, Header),
			cell("Days left", 10, Header), cell("Lead", 5, Header), cell("Buffer", 8, Header),
			Header.Render("Tier"))
		for _, row := range rows {
			tier := row.Tier.String()
			if row.Restock {
				tier += " (restock)"
			}
			fmt.Fprintf(p.w, "%s %s %s %s %s %s %s\n",
				cell(truncate(row.Product, 24), 24, Plain),
				cell(formatQty(row.CurrentStock), 8, Plain),
				cell(fmt.Sprintf("%.2f", row.BurnRate), 9, Plain),
				cell(fmt.Sprintf("%.1f", row.DaysLeft), 10, Plain),
				cell(fmt.Sprintf("%d", row.LeadTimeDays), 5, Plain),
				cell(fmt.Sprintf("%.1f", row.BufferDays), 8, Plain),
				TierStyle(row.Tier).Render(tier))
		}
		return nil
	})
}

// Inventory writes the product table
func (p *Printer) Inventory(rows []dto.InventoryRow) error {
	return p.emit(rows, func() error {
		fmt.Fprintln(p.w, Title.Render("📦 Products"))
		if len(rows) == 0 {
			fmt.Fprintln(p.w, Muted.Render("No products."))
			return nil
		}
		fmt.Fprintf(p.w, "%s %s %s %s %s %s %s\n",
			cell("ID", 5, Header), cell("Name", 24, Header), cell("Category", 10, Header),
			cell("Stock", 10, Header), cell("Min", 8, Header), cell("Lead", 5, Header),
			Header.Render("Contract"))
		for _, row := range rows {
			stockStyle := Plain
			if row.LowStock {
				stockStyle = Critical
			}
			contract := "-"
			if row.Supplier != "" {
				contract = fmt.Sprintf("%s @ %s %s", row.Supplier, row.ContractPrice, p.currency)
			}
			fmt.Fprintf(p.w, "%s %s %s %s %s %s %s\n",
				cell(fmt.Sprintf("%d", row.ID), 5, Plain),
				cell(truncate(row.Name, 24), 24, Plain),
				cell(truncate(row.Category, 10), 10, Plain),
				cell(formatQty(row.CurrentStock)+" "+row.Unit, 10, stockStyle),
				cell(formatQty(row.MinStock), 8, Plain),
				cell(fmt.Sprintf("%d", row.LeadTimeDays), 5, Plain),
				contract)
		}
		return nil
	})
}

// Alternatives writes the substitute suggestions for one product
func (p *Printer) Alternatives(product string, rows []dto.AlternativeRow) error {
	return p.emit(rows, func() error {
		fmt.Fprintln(p.w, Title.Render("🔁 Alternatives for "+product))
		if len(rows) == 0 {
			fmt.Fprintln(p.w, Muted.Render("No alternatives found."))
			return nil
		}
		for _, row := range rows {
			fmt.Fprintf(p.w, "  #%-4d %s %s\n", row.ProductID, cell(truncate(row.Name, 24), 24, Plain), Muted.Render(row.Reason))
		}
		return nil
	})
}

// Status writes the dashboard header
func (p *Printer) Status(summary dto.StatusSummary) error {
	return p.emit(summary, func() error {
		fmt.Fprintln(p.w, Title.Render("📊 Procurement dashboard"))
		date := "unknown"
		if summary.Date != nil {
			date = summary.Date.Format("2006-01-02")
		}
		state := Muted.Render("paused")
		if summary.Running {
			state = Safe.Render("running")
		}
		fmt.Fprintf(p.w, "Date: %s (%s)  Role: %s\n", date, state, summary.Role)
		fmt.Fprintf(p.w, "Items: %s  Low stock: %d  Pending orders: %s  Inventory value: %.2f %s\n",
			formatQty(summary.TotalItems), summary.LowStockCount,
			Pending.Render(fmt.Sprintf("%d", summary.PendingOrders)), summary.InventoryValue, p.currency)
		for _, message := range summary.RecentEvents {
			fmt.Fprintf(p.w, "  %s %s\n", Muted.Render("•"), message)
		}
		return nil
	})
}

// Event writes one application event. JSON and YAML emit one document
// per event.
func (p *Printer) Event(event events.Event) error {
	record := eventRecord{
		ID:        event.ID(),
		Type:      event.Type(),
		Stream:    event.StreamID(),
		Version:   event.Version(),
		Timestamp: event.Timestamp().Format("15:04:05.000"),
		Data:      event.Data(),
	}
	switch p.format {
	case FormatJSON:
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(p.w, string(data))
		return err
	case FormatYAML:
		return p.emit(record, nil)
	default:
		_, err := fmt.Fprintf(p.w, "%s %s %+v\n", Muted.Render(record.Timestamp), record.Type, record.Data)
		return err
	}
}

type eventRecord struct {
	ID        string `json:"id" yaml:"id"`
	Type      string `json:"type" yaml:"type"`
	Stream    string `json:"stream" yaml:"stream"`
	Version   int    `json:"version" yaml:"version"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Data      any    `json:"data" yaml:"data"`
}

func (p *Printer) emit(v any, text func() error) error {
	switch p.format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(p.w, string(data))
		return err
	case FormatYAML:
		encoder := yaml.NewEncoder(p.w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return encoder.Close()
	case FormatText:
		return text()
	default:
		return fmt.Errorf("unsupported output format: %s", p.format)
	}
}

func idStyle(automatic bool) lipgloss.Style {
	if automatic {
		return Muted
	}
	return Plain
}

func formatQty(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return fmt.Sprintf("%.2f", q)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
