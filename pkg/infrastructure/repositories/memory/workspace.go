package memory

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/domain/errors"
)

const (
	contractCategory = "Contract"
	contractUnit     = "pcs"
	contractMinStock = 10
)

// UploadContract extracts a contract from a plain text document made of
// "Key: value" lines. Recognised keys are supplier, product, price and
// valid until.
func (s *Service) UploadContract(ctx context.Context, filename string, content io.Reader) (*entities.ContractDraft, error) {
	const op = "upload contract"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	draft := &entities.ContractDraft{}
	scanner := bufio.NewScanner(content)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "supplier":
			draft.SupplierName = value
		case "product":
			draft.ProductName = value
		case "price":
			price, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
			if err != nil {
				return nil, errors.NewRemoteStatusError(op, 400, fmt.Sprintf("cannot read price %q in %s", value, filename))
			}
			draft.Price = price
		case "valid until":
			date, err := time.Parse("2006-01-02", value)
			if err != nil {
				return nil, errors.NewRemoteStatusError(op, 400, fmt.Sprintf("cannot read date %q in %s", value, filename))
			}
			draft.ValidUntil = &date
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewRemoteStatusError(op, 400, fmt.Sprintf("cannot read %s: %v", filename, err))
	}
	if draft.SupplierName == "" || draft.ProductName == "" {
		return nil, errors.NewRemoteStatusError(op, 400, fmt.Sprintf("no supplier or product found in %s", filename))
	}
	return draft, nil
}

// ConfirmContract makes the draft the product's only active contract. An
// unknown product is added to the catalog.
func (s *Service) ConfirmContract(ctx context.Context, draft entities.ContractDraft) (*entities.ContractConfirmation, error) {
	const op = "confirm contract"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}
	if draft.SupplierName == "" || draft.ProductName == "" {
		return nil, errors.NewRemoteStatusError(op, 422, "supplier and product are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var item *stockItem
	for _, candidate := range s.items {
		if candidate.product.Name == draft.ProductName {
			item = candidate
			break
		}
	}
	if item == nil {
		item = &stockItem{
			product: entities.Product{
				ID:            s.nextID,
				Name:          draft.ProductName,
				Category:      contractCategory,
				Unit:          contractUnit,
				MinStockLevel: contractMinStock,
				LeadTimeDays:  entities.DefaultLeadTimeDays,
			},
			burnRate: 1,
			unitCost: draft.Price,
		}
		s.items = append(s.items, item)
		s.byID[item.product.ID] = item
		s.nextID++
	}

	validUntil := s.clock.CurrentDate.AddDate(1, 0, 0)
	if draft.ValidUntil != nil {
		validUntil = *draft.ValidUntil
	}
	item.product.ActiveContract = &entities.ContractInfo{
		SupplierName: draft.SupplierName,
		Price:        draft.Price,
		ValidUntil:   validUntil,
	}

	s.contract++
	s.record("contract", fmt.Sprintf("Contract %d with %s for %s is active", s.contract, draft.SupplierName, draft.ProductName))
	return &entities.ContractConfirmation{
		ContractID: s.contract,
		Message:    "Contract saved",
	}, nil
}

// SendMessage answers from the service's own data with canned replies.
func (s *Service) SendMessage(ctx context.Context, message string) (*entities.ChatReply, error) {
	if err := checkContext(ctx, "send message"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	text := strings.ToLower(message)
	switch {
	case strings.Contains(text, "report"):
		return &entities.ChatReply{
			Reply:  "The current report is ready to download.",
			Action: &entities.SuggestedAction{Kind: entities.AssistantOpenReport},
		}, nil
	case strings.Contains(text, "stock"):
		var low []string
		for _, item := range s.items {
			if item.product.IsLowStock() {
				low = append(low, item.product.Name)
			}
		}
		if len(low) == 0 {
			return &entities.ChatReply{Reply: "Every product is above its minimum level."}, nil
		}
		return &entities.ChatReply{
			Reply:  fmt.Sprintf("Low on stock: %s.", strings.Join(low, ", ")),
			Action: &entities.SuggestedAction{Kind: entities.AssistantOpenView, Target: "forecast"},
		}, nil
	case strings.Contains(text, "order"):
		pending := s.countStatus(entities.StatusPendingApproval)
		return &entities.ChatReply{
			Reply:  fmt.Sprintf("%d orders await approval.", pending),
			Action: &entities.SuggestedAction{Kind: entities.AssistantOpenView, Target: "orders"},
		}, nil
	default:
		return &entities.ChatReply{Reply: "I can report on stock levels, pending orders, or prepare the current report."}, nil
	}
}

func (s *Service) ReportURL() string {
	return strings.TrimSuffix(s.options.DocumentBaseURL, "/") + "/analytics/report/pdf"
}

func (s *Service) OrderDocumentURL(id entities.OrderID) string {
	return fmt.Sprintf("%s/orders/%s/pdf", strings.TrimSuffix(s.options.DocumentBaseURL, "/"), id)
}
