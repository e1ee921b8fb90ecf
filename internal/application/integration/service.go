package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/pdfengine/internal/domain/integration"
	"github.com/erp/pdfengine/internal/domain/shared"
	"go.uber.org/zap"
)

// HookDispatcher runs after-save hooks
type HookDispatcher interface {
	AfterSave(ctx context.Context, entityType string, entity any) error
}

// IntegrationService handles integration records
type IntegrationService struct {
	repo   integration.Repository
	hooks  HookDispatcher
	logger *zap.Logger
}

// NewIntegrationService creates a new IntegrationService
func NewIntegrationService(repo integration.Repository, hooks HookDispatcher, logger *zap.Logger) *IntegrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntegrationService{
		repo:   repo,
		hooks:  hooks,
		logger: logger,
	}
}

// Get returns an integration record
func (s *IntegrationService) Get(ctx context.Context, id string) (*IntegrationResponse, error) {
	i, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Integration not found")
		}
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}
	return toIntegrationResponse(i), nil
}

// Save persists the record and runs its after-save hooks. Hooks run after the
// record is committed, so a hook failure leaves the saved record in place.
func (s *IntegrationService) Save(ctx context.Context, input SaveIntegrationInput) (*IntegrationResponse, error) {
	i, err := integration.NewIntegration(input.ID, input.Enabled, input.Data)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, i); err != nil {
		return nil, fmt.Errorf("failed to save integration: %w", err)
	}

	if s.hooks != nil {
		if err := s.hooks.AfterSave(ctx, integration.EntityType, i); err != nil {
			s.logger.Error("integration saved but after-save hooks failed",
				zap.String("id", i.ID),
				zap.Bool("enabled", i.Enabled),
				zap.Bool("record_persisted", true),
				zap.Error(err))
			return nil, fmt.Errorf("after-save hooks of integration %s: %w", i.ID, err)
		}
	}

	s.logger.Info("integration saved",
		zap.String("id", i.ID),
		zap.Bool("enabled", i.Enabled))

	return toIntegrationResponse(i), nil
}
