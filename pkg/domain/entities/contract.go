package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractDraft is the data the service extracted from an uploaded document.
// It only becomes a contract once confirmed.
type ContractDraft struct {
	SupplierName string
	ProductName  string
	Price        decimal.Decimal
	ValidUntil   *time.Time
}

// ContractConfirmation acknowledges a stored contract
type ContractConfirmation struct {
	ContractID int64
	Message    string
}

// AssistantAction is a client action the assistant may suggest
type AssistantAction string

const (
	AssistantOpenReport AssistantAction = "open_report"
	AssistantOpenView   AssistantAction = "open_view"
)

// SuggestedAction accompanies an assistant reply
type SuggestedAction struct {
	Kind   AssistantAction `json:"kind" yaml:"kind"`
	Target string          `json:"target,omitempty" yaml:"target,omitempty"`
}

// ChatReply is the assistant's answer to a message
type ChatReply struct {
	Reply  string
	Action *SuggestedAction
}
