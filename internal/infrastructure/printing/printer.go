package printing

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/erp/pdfengine/internal/domain/printing"
	"github.com/erp/pdfengine/internal/domain/setting"
	"go.uber.org/zap"
)

// =============================================================================
// Engine registry
// =============================================================================

// EngineRegistry maps engine names to engines
type EngineRegistry struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

// NewEngineRegistry creates an empty registry
func NewEngineRegistry() *EngineRegistry {
	return &EngineRegistry{engines: make(map[string]Engine)}
}

// Register adds or replaces an engine
func (r *EngineRegistry) Register(name string, engine Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[name] = engine
}

// Get returns the engine registered under name
func (r *EngineRegistry) Get(name string) (Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	engine, ok := r.engines[name]
	return engine, ok
}

// Names returns the registered engine names in sorted order
func (r *EngineRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Entity printer
// =============================================================================

// EntityPrinter is the entity printing entry point the host registers for
// the Gotenberg engine. It delegates to the Gotenberg renderer.
type EntityPrinter struct {
	renderer *GotenbergRenderer
}

var _ Engine = (*EntityPrinter)(nil)

// NewEntityPrinter creates an entity printer
func NewEntityPrinter(renderer *GotenbergRenderer) *EntityPrinter {
	return &EntityPrinter{renderer: renderer}
}

// Print renders the entity with the template
func (p *EntityPrinter) Print(ctx context.Context, tpl *printing.Template, entity *printing.Entity, params printing.Params, data printing.Data) (printing.Contents, error) {
	return p.renderer.RenderPDF(ctx, tpl, entity, params, data)
}

// RenderPDF implements Engine
func (p *EntityPrinter) RenderPDF(ctx context.Context, tpl *printing.Template, entity *printing.Entity, params printing.Params, data printing.Data) (printing.Contents, error) {
	return p.Print(ctx, tpl, entity, params, data)
}

// =============================================================================
// Engine printer
// =============================================================================

// EnginePrinterConfig contains the collaborators of the engine printer
type EnginePrinterConfig struct {
	Registry *EngineRegistry
	Settings setting.Reader
	// DefaultEngine is used when the pdfEngine setting is absent
	DefaultEngine string
	Logger        *zap.Logger
}

// EnginePrinter prints with the engine selected by the pdfEngine setting
type EnginePrinter struct {
	registry      *EngineRegistry
	settings      setting.Reader
	defaultEngine string
	logger        *zap.Logger
}

// NewEnginePrinter creates an engine printer
func NewEnginePrinter(cfg EnginePrinterConfig) *EnginePrinter {
	p := &EnginePrinter{
		registry:      cfg.Registry,
		settings:      cfg.Settings,
		defaultEngine: cfg.DefaultEngine,
		logger:        cfg.Logger,
	}
	if p.registry == nil {
		p.registry = NewEngineRegistry()
	}
	if p.defaultEngine == "" {
		p.defaultEngine = printing.EngineGotenberg
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// ActiveEngine returns the name of the engine prints are routed to
func (p *EnginePrinter) ActiveEngine(ctx context.Context) (string, error) {
	if p.settings == nil {
		return p.defaultEngine, nil
	}
	name, ok, err := setting.GetString(ctx, p.settings, setting.KeyPDFEngine)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", setting.KeyPDFEngine, err)
	}
	if !ok || name == "" {
		return p.defaultEngine, nil
	}
	return name, nil
}

// Engines returns the names of the registered engines
func (p *EnginePrinter) Engines() []string {
	return p.registry.Names()
}

// Print renders with the active engine and returns the engine name used
func (p *EnginePrinter) Print(ctx context.Context, tpl *printing.Template, entity *printing.Entity, params printing.Params, data printing.Data) (printing.Contents, string, error) {
	name, err := p.ActiveEngine(ctx)
	if err != nil {
		return nil, "", err
	}

	engine, ok := p.registry.Get(name)
	if !ok {
		return nil, name, NewRenderError(ErrCodeEngineNotAvailable,
			fmt.Sprintf("PDF engine '%s' is not available.", name), nil)
	}

	p.logger.Debug("printing entity",
		zap.String("engine", name),
		zap.String("template", tpl.Name),
		zap.String("entity_type", entity.Type),
		zap.String("entity_id", entity.ID))

	contents, err := engine.RenderPDF(ctx, tpl, entity, params, data)
	if err != nil {
		return nil, name, err
	}
	return contents, name, nil
}
