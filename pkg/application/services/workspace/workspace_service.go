package workspace

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/procurement/pkg/application/state"
	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/domain/errors"
	"github.com/vsinha/procurement/pkg/domain/repositories"
)

// Refresher forces a refetch of one resource and waits for it to land
type Refresher interface {
	Refresh(ctx context.Context, resource state.Resource) error
}

// Service groups the dashboard actions outside the order lifecycle.
type Service struct {
	remote    repositories.ProcurementService
	store     *state.Store
	refresher Refresher
	logger    *zap.Logger
}

func NewService(remote repositories.ProcurementService, store *state.Store, refresher Refresher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		remote:    remote,
		store:     store,
		refresher: refresher,
		logger:    logger.Named("workspace"),
	}
}

// ToggleSimulation starts the clock when it is stopped and stops it when it
// runs, then refetches the clock. It returns the new running state.
func (s *Service) ToggleSimulation(ctx context.Context) (bool, error) {
	clock, ok := s.store.Clock()
	if !ok {
		if err := s.refresher.Refresh(ctx, state.ResourceClock); err != nil {
			return false, err
		}
		clock, _ = s.store.Clock()
	}

	var err error
	if clock.IsRunning {
		err = s.remote.StopClock(ctx)
	} else {
		err = s.remote.StartClock(ctx)
	}
	if err != nil {
		s.logger.Warn("simulation toggle failed", zap.Bool("was_running", clock.IsRunning), zap.Error(err))
		return clock.IsRunning, err
	}

	s.logger.Info("simulation toggled", zap.Bool("running", !clock.IsRunning))
	s.refresh(ctx, state.ResourceClock)

	if updated, ok := s.store.Clock(); ok {
		return updated.IsRunning, nil
	}
	return !clock.IsRunning, nil
}

// AnalyzeContract sends a document for extraction. Nothing is sent when no
// document is given.
func (s *Service) AnalyzeContract(ctx context.Context, filename string, content io.Reader) (*entities.ContractDraft, error) {
	if strings.TrimSpace(filename) == "" || content == nil {
		return nil, errors.NewValidationError("file", "", errors.ErrMissingFile)
	}

	draft, err := s.remote.UploadContract(ctx, filename, content)
	if err != nil {
		s.logger.Warn("contract analysis failed", zap.String("file", filename), zap.Error(err))
		return nil, err
	}
	s.logger.Info("contract analyzed",
		zap.String("file", filename),
		zap.String("supplier", draft.SupplierName),
		zap.String("product", draft.ProductName),
	)
	return draft, nil
}

// ConfirmContract stores an extracted contract and refetches products so
// contract badges reflect it.
func (s *Service) ConfirmContract(ctx context.Context, draft entities.ContractDraft) (*entities.ContractConfirmation, error) {
	confirmation, err := s.remote.ConfirmContract(ctx, draft)
	if err != nil {
		s.logger.Warn("contract confirmation failed", zap.Error(err))
		return nil, err
	}
	s.logger.Info("contract confirmed", zap.Int64("contract_id", confirmation.ContractID))
	s.refresh(ctx, state.ResourceProducts)
	return confirmation, nil
}

// ChatResult is an assistant reply with any suggested action resolved
type ChatResult struct {
	Reply     string                    `json:"reply" yaml:"reply"`
	Action    *entities.SuggestedAction `json:"action,omitempty" yaml:"action,omitempty"`
	ReportURL string                    `json:"report_url,omitempty" yaml:"report_url,omitempty"`
}

func (s *Service) Chat(ctx context.Context, message string) (*ChatResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.NewValidationError("message", "message cannot be empty", nil)
	}

	reply, err := s.remote.SendMessage(ctx, message)
	if err != nil {
		s.logger.Warn("assistant call failed", zap.Error(err))
		return nil, err
	}

	result := &ChatResult{Reply: reply.Reply, Action: reply.Action}
	if reply.Action != nil && reply.Action.Kind == entities.AssistantOpenReport {
		result.ReportURL = s.remote.ReportURL()
	}
	return result, nil
}

// ReportURL returns the current report, or the document of one order.
func (s *Service) ReportURL(orderID *entities.OrderID) string {
	if orderID != nil {
		return s.remote.OrderDocumentURL(*orderID)
	}
	return s.remote.ReportURL()
}

// Alternatives fetches suggestions for a product into the state store.
func (s *Service) Alternatives(ctx context.Context, id entities.ProductID) (state.Alternatives, error) {
	s.store.SetAlternativesTarget(id)
	if err := s.refresher.Refresh(ctx, state.ResourceAlternatives); err != nil {
		return state.Alternatives{}, err
	}
	alternatives, _ := s.store.Alternatives()
	return alternatives, nil
}

// Search sets the market search query and refetches products with it.
func (s *Service) Search(ctx context.Context, query string) ([]entities.Product, error) {
	s.store.SetSearch(query)
	if err := s.refresher.Refresh(ctx, state.ResourceProducts); err != nil {
		return nil, err
	}
	return s.store.Products(), nil
}

func (s *Service) refresh(ctx context.Context, resource state.Resource) {
	if err := s.refresher.Refresh(ctx, resource); err != nil {
		s.logger.Warn("refetch after write failed", zap.String("resource", string(resource)), zap.Error(err))
	}
}
