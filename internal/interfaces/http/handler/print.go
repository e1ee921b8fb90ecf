package handler

import (
	"context"
	"mime"
	"net/http"
	"strconv"
	"unicode"

	printingapp "github.com/erp/pdfengine/internal/application/printing"
	"github.com/erp/pdfengine/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// PrintService is the printing use case behind the print endpoints
type PrintService interface {
	Print(ctx context.Context, req printingapp.PrintRequest) (*printingapp.PrintResult, error)
	Preview(ctx context.Context, req printingapp.PrintRequest) (*printingapp.PreviewResponse, error)
	ActiveEngine(ctx context.Context) (*printingapp.EngineStatus, error)
}

var _ PrintService = (*printingapp.PrintService)(nil)

// PrintHandler handles print-related API endpoints
type PrintHandler struct {
	BaseHandler
	printService PrintService
}

// NewPrintHandler creates a new PrintHandler
func NewPrintHandler(printService PrintService) *PrintHandler {
	return &PrintHandler{
		printService: printService,
	}
}

// Print godoc
//
//	@ID				printDocument
//	@Summary		Print an entity with a template
//	@Description	Renders the entity through the active PDF engine and returns the document inline
//	@Tags			print
//	@Accept			json
//	@Produce		application/pdf
//	@Param			request	body		printingapp.PrintRequest	true	"Print request"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/print [post]
func (h *PrintHandler) Print(c *gin.Context) {
	var req printingapp.PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BindError(c, err)
		return
	}

	result, err := h.printService.Print(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", contentDisposition(result.Filename))
	c.Header("Content-Length", strconv.Itoa(result.Length))
	c.Header(middleware.PDFEngineHeader, result.Engine)
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

// Preview godoc
//
//	@ID				previewDocument
//	@Summary		Compose a template without rendering
//	@Description	Returns the composed header, main and footer markup
//	@Tags			print
//	@Accept			json
//	@Produce		json
//	@Param			request	body		printingapp.PrintRequest	true	"Print request"
//	@Success		200		{object}	APIResponse[printingapp.PreviewResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/print/preview [post]
func (h *PrintHandler) Preview(c *gin.Context) {
	var req printingapp.PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BindError(c, err)
		return
	}

	preview, err := h.printService.Preview(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// GetEngine godoc
//
//	@ID				getPDFEngine
//	@Summary		Get the active PDF engine
//	@Tags			print
//	@Produce		json
//	@Success		200	{object}	APIResponse[printingapp.EngineStatus]
//	@Router			/pdf-engine [get]
func (h *PrintHandler) GetEngine(c *gin.Context) {
	status, err := h.printService.ActiveEngine(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// contentDisposition returns an inline disposition. Non-ASCII names are
// encoded as RFC 2231 filename*.
func contentDisposition(filename string) string {
	for _, r := range filename {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return mime.FormatMediaType("inline", map[string]string{"filename": filename})
		}
	}
	return `inline; filename="` + filename + `"`
}

// RegisterRoutes registers the print endpoints
func (h *PrintHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/print", h.Print)
	rg.POST("/print/preview", h.Preview)
	rg.GET("/pdf-engine", h.GetEngine)
}
