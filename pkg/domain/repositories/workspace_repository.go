package repositories

import (
	"context"
	"io"

	"github.com/vsinha/procurement/pkg/domain/entities"
)

// ContractRepository sends documents for extraction and stores confirmed drafts
type ContractRepository interface {
	UploadContract(ctx context.Context, filename string, content io.Reader) (*entities.ContractDraft, error)
	ConfirmContract(ctx context.Context, draft entities.ContractDraft) (*entities.ContractConfirmation, error)
}

// AssistantRepository relays chat messages to the service's assistant
type AssistantRepository interface {
	SendMessage(ctx context.Context, message string) (*entities.ChatReply, error)
}

// DocumentLocator builds links to downloadable artifacts
type DocumentLocator interface {
	ReportURL() string
	OrderDocumentURL(id entities.OrderID) string
}

// ProcurementService is the full remote boundary consumed by the client
type ProcurementService interface {
	ProductRepository
	OrderRepository
	AnalyticsRepository
	SimulationRepository
	ContractRepository
	AssistantRepository
	DocumentLocator
}
