package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsinha/procurement/pkg/domain/entities"
)

var (
	confirmContract bool
	reportOrder     string
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Work with supplier contracts",
}

var contractAnalyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Extract contract terms from a document",
	Long: `Send a contract document to the service for extraction and print the
supplier, product, price and validity it found. With --confirm the
extracted contract is stored and attached to the product.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runContractAnalyze),
}

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask the procurement assistant",
	Args:  cobra.MinimumNArgs(1),
	RunE:  withApp(runChat),
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the link to the current report or an order document",
	RunE:  withApp(runReport),
}

func init() {
	rootCmd.AddCommand(contractCmd)
	contractCmd.AddCommand(contractAnalyzeCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(reportCmd)

	contractAnalyzeCmd.Flags().BoolVar(&confirmContract, "confirm", false, "store the extracted contract")
	reportCmd.Flags().StringVar(&reportOrder, "order", "", "link the document of this order instead")
}

type contractResult struct {
	Supplier   string `json:"supplier" yaml:"supplier"`
	Product    string `json:"product" yaml:"product"`
	Price      string `json:"price" yaml:"price"`
	ValidUntil string `json:"valid_until,omitempty" yaml:"valid_until,omitempty"`
	ContractID int64  `json:"contract_id,omitempty" yaml:"contract_id,omitempty"`
	Message    string `json:"message,omitempty" yaml:"message,omitempty"`
}

func runContractAnalyze(ctx context.Context, a *app, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open contract %s: %w", args[0], err)
	}
	defer file.Close()

	draft, err := a.workspace.AnalyzeContract(ctx, filepath.Base(args[0]), file)
	if err != nil {
		return err
	}

	result := contractResult{
		Supplier: draft.SupplierName,
		Product:  draft.ProductName,
		Price:    draft.Price.StringFixed(2),
	}
	if draft.ValidUntil != nil {
		result.ValidUntil = draft.ValidUntil.Format("2006-01-02")
	}

	if confirmContract {
		confirmation, err := a.workspace.ConfirmContract(ctx, *draft)
		if err != nil {
			return err
		}
		result.ContractID = confirmation.ContractID
		result.Message = confirmation.Message
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Supplier:    %s\n", result.Supplier)
	fmt.Fprintf(&text, "Product:     %s\n", result.Product)
	fmt.Fprintf(&text, "Price:       %s %s\n", result.Price, a.cfg.Display.Currency)
	if result.ValidUntil != "" {
		fmt.Fprintf(&text, "Valid until: %s\n", result.ValidUntil)
	}
	if result.ContractID != 0 {
		fmt.Fprintf(&text, "Stored as contract %d: %s\n", result.ContractID, result.Message)
	}
	return a.printer.Value(result, strings.TrimRight(text.String(), "\n"))
}

func runChat(ctx context.Context, a *app, args []string) error {
	result, err := a.workspace.Chat(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	text := result.Reply
	if result.ReportURL != "" {
		text += "\nReport: " + result.ReportURL
	} else if result.Action != nil && result.Action.Kind == entities.AssistantOpenView {
		text += "\nSuggested view: " + result.Action.Target
	}
	return a.printer.Value(result, text)
}

func runReport(_ context.Context, a *app, _ []string) error {
	var id *entities.OrderID
	if reportOrder != "" {
		orderID := entities.OrderID(reportOrder)
		id = &orderID
	}
	url := a.workspace.ReportURL(id)
	return a.printer.Value(map[string]string{"url": url}, url)
}
