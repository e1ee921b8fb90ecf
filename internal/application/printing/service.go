package printing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	domain "github.com/erp/pdfengine/internal/domain/printing"
	"github.com/erp/pdfengine/internal/domain/setting"
	"github.com/erp/pdfengine/internal/domain/shared"
	infra "github.com/erp/pdfengine/internal/infrastructure/printing"
	"github.com/erp/pdfengine/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Printer renders through the engine selected in the application settings
type Printer interface {
	Print(ctx context.Context, tpl *domain.Template, entity *domain.Entity, params domain.Params, data domain.Data) (domain.Contents, string, error)
	ActiveEngine(ctx context.Context) (string, error)
	Engines() []string
}

// Composer builds the HTML documents of a template without rendering them
type Composer interface {
	Compose(ctx context.Context, tpl *domain.Template, entity *domain.Entity, params domain.Params, data domain.Data) (*domain.ComposedDocument, error)
}

// PrintService handles printing-related business operations
type PrintService struct {
	templateRepo domain.TemplateRepository
	entityRepo   domain.EntityRepository
	printer      Printer
	composer     Composer
	settings     setting.Reader
	metrics      *telemetry.RenderMetrics
	logger       *zap.Logger
}

// NewPrintService creates a new PrintService
func NewPrintService(
	templateRepo domain.TemplateRepository,
	entityRepo domain.EntityRepository,
	printer Printer,
	composer Composer,
	settings setting.Reader,
	logger *zap.Logger,
) *PrintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrintService{
		templateRepo: templateRepo,
		entityRepo:   entityRepo,
		printer:      printer,
		composer:     composer,
		settings:     settings,
		logger:       logger,
	}
}

// SetRenderMetrics enables render metrics; nil disables them
func (s *PrintService) SetRenderMetrics(metrics *telemetry.RenderMetrics) {
	s.metrics = metrics
}

// Print renders the entity with the template through the active engine
func (s *PrintService) Print(ctx context.Context, req PrintRequest) (_ *PrintResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "print.print", trace.WithAttributes(requestAttributes(req)...))
	defer func() { telemetry.Finish(span, err) }()

	tpl, entity, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	var (
		contents domain.Contents
		engine   string
	)
	start := time.Now()
	telemetry.WithProfilingLabels(ctx, telemetry.RenderLabels("", entity.Type), func(ctx context.Context) {
		contents, engine, err = s.printer.Print(ctx, tpl, entity,
			domain.Params{ApplyACL: req.ApplyACL}, domain.NewData(req.AdditionalData))
	})
	span.SetAttributes(telemetry.AttrEngine.String(engine))
	if err != nil {
		s.metrics.Record(ctx, telemetry.RenderObservation{
			Engine:     engine,
			EntityType: entity.Type,
			Duration:   time.Since(start),
			ErrorCode:  renderErrorCode(err),
		})
		return nil, err
	}
	if closer, ok := contents.(io.Closer); ok {
		defer closer.Close()
	}

	body, err := contents.String()
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered document: %w", err)
	}
	length, err := contents.Length()
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered document: %w", err)
	}
	s.metrics.Record(ctx, telemetry.RenderObservation{
		Engine:     engine,
		EntityType: entity.Type,
		Duration:   time.Since(start),
		Size:       length,
	})
	span.SetAttributes(telemetry.AttrPDFSize.Int(length))

	s.logger.Info("document printed",
		zap.String("template", tpl.Name),
		zap.String("entity_type", entity.Type),
		zap.String("entity_id", entity.ID),
		zap.String("engine", engine),
		zap.Int("bytes", length))

	return &PrintResult{
		Content:  []byte(body),
		Length:   length,
		Filename: Filename(tpl.Name),
		Engine:   engine,
	}, nil
}

// Preview returns the composed header, main and footer documents
func (s *PrintService) Preview(ctx context.Context, req PrintRequest) (_ *PreviewResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "print.preview", trace.WithAttributes(requestAttributes(req)...))
	defer func() { telemetry.Finish(span, err) }()

	tpl, entity, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	doc, err := s.composer.Compose(ctx, tpl, entity,
		domain.Params{ApplyACL: req.ApplyACL}, domain.NewData(req.AdditionalData))
	if err != nil {
		return nil, err
	}
	return &PreviewResponse{Template: tpl.Name, Document: doc}, nil
}

// ActiveEngine reports the engine prints are routed to
func (s *PrintService) ActiveEngine(ctx context.Context) (*EngineStatus, error) {
	engine, err := s.printer.ActiveEngine(ctx)
	if err != nil {
		return nil, err
	}
	engines := s.printer.Engines()
	status := &EngineStatus{
		Engine:    engine,
		Available: slices.Contains(engines, engine),
		Engines:   engines,
	}
	if s.settings != nil {
		url, _, err := setting.GetString(ctx, s.settings, setting.KeyGotenbergAPIURL)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", setting.KeyGotenbergAPIURL, err)
		}
		status.GotenbergAPIURL = url
	}
	return status, nil
}

func (s *PrintService) load(ctx context.Context, req PrintRequest) (*domain.Template, *domain.Entity, error) {
	templateID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		return nil, nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid template ID")
	}

	tpl, err := s.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, shared.NewDomainError(shared.CodeNotFound, "Template not found")
		}
		return nil, nil, fmt.Errorf("failed to get template: %w", err)
	}
	if err := tpl.Validate(); err != nil {
		return nil, nil, err
	}
	if tpl.EntityType != req.EntityType {
		return nil, nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Template '%s' prints %s records, not %s", tpl.Name, tpl.EntityType, req.EntityType))
	}

	entity, err := s.entityRepo.FindByID(ctx, req.EntityType, req.EntityID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, shared.NewDomainError(shared.CodeNotFound, "Entity not found")
		}
		return nil, nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return tpl, entity, nil
}

func renderErrorCode(err error) string {
	var renderErr *infra.RenderError
	if errors.As(err, &renderErr) {
		return renderErr.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return infra.ErrCodeRenderTimeout
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return infra.ErrCodeRenderFailed
}

var filenameReplacer = strings.NewReplacer(`"`, "_", "/", "_", `\`, "_", "\n", " ", "\r", " ")

// Filename returns the download name of a document printed with the named template
func Filename(templateName string) string {
	name := strings.TrimSpace(filenameReplacer.Replace(templateName))
	if name == "" {
		name = "document"
	}
	return name + ".pdf"
}

func requestAttributes(req PrintRequest) []attribute.KeyValue {
	return []attribute.KeyValue{
		telemetry.AttrTemplateID.String(req.TemplateID),
		telemetry.AttrEntityType.String(req.EntityType),
		telemetry.AttrEntityID.String(req.EntityID),
	}
}
