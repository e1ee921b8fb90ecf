package integration

import (
	"context"
	"fmt"

	"github.com/erp/pdfengine/internal/domain/integration"
	"github.com/erp/pdfengine/internal/domain/printing"
	"github.com/erp/pdfengine/internal/domain/setting"
	"go.uber.org/zap"
)

// DefaultFallbackEngine is restored when no prior engine is known
const DefaultFallbackEngine = printing.EngineDompdf

// GotenbergHook switches the active PDF engine when the Gotenberg integration is saved
type GotenbergHook struct {
	settings       setting.Store
	fallbackEngine string
	logger         *zap.Logger
}

// NewGotenbergHook creates the hook. An empty fallbackEngine uses DefaultFallbackEngine.
func NewGotenbergHook(settings setting.Store, fallbackEngine string, logger *zap.Logger) *GotenbergHook {
	if fallbackEngine == "" {
		fallbackEngine = DefaultFallbackEngine
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GotenbergHook{
		settings:       settings,
		fallbackEngine: fallbackEngine,
		logger:         logger,
	}
}

// AfterSave writes pdfEngine, gotenbergPdfEngineRevert and gotenbergApiUrl in one save.
// Records other than the Gotenberg integration are ignored.
func (h *GotenbergHook) AfterSave(ctx context.Context, i *integration.Integration) error {
	if i == nil || i.ID != integration.IntegrationGotenberg {
		return nil
	}

	revert, err := h.priorEngine(ctx)
	if err != nil {
		return err
	}

	w := h.settings.Writer(ctx)
	if !i.Enabled {
		w.Set(setting.KeyPDFEngine, revert)
		w.Set(setting.KeyGotenbergPDFEngineRevert, nil)
		w.Set(setting.KeyGotenbergAPIURL, nil)
	} else {
		w.Set(setting.KeyPDFEngine, printing.EngineGotenberg)
		w.Set(setting.KeyGotenbergPDFEngineRevert, revert)
		w.Set(setting.KeyGotenbergAPIURL, i.Get(integration.KeyGotenbergAPIURL))
	}
	if err := w.Save(ctx); err != nil {
		return fmt.Errorf("save pdf engine settings: %w", err)
	}

	h.logger.Info("PDF engine switched",
		zap.Bool("gotenberg_enabled", i.Enabled),
		zap.String("revert_engine", revert),
	)
	return nil
}

// priorEngine is the engine to restore when Gotenberg is disabled
func (h *GotenbergHook) priorEngine(ctx context.Context) (string, error) {
	for _, key := range []string{setting.KeyPDFEngine, setting.KeyGotenbergPDFEngineRevert} {
		engine, ok, err := setting.GetString(ctx, h.settings, key)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", key, err)
		}
		if ok && engine != "" && engine != printing.EngineGotenberg {
			return engine, nil
		}
	}
	return h.fallbackEngine, nil
}
