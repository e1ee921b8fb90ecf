package handler

import (
	"context"

	integrationapp "github.com/erp/pdfengine/internal/application/integration"
	"github.com/erp/pdfengine/internal/interfaces/http/dto"
	"github.com/erp/pdfengine/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// IntegrationService reads and saves integration records
type IntegrationService interface {
	Get(ctx context.Context, id string) (*integrationapp.IntegrationResponse, error)
	Save(ctx context.Context, input integrationapp.SaveIntegrationInput) (*integrationapp.IntegrationResponse, error)
}

var _ IntegrationService = (*integrationapp.IntegrationService)(nil)

// IntegrationHandler handles the integration admin endpoints
type IntegrationHandler struct {
	BaseHandler
	integrationService IntegrationService
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(integrationService IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{
		integrationService: integrationService,
	}
}

// SaveIntegrationRequest is the body of PUT /integrations/:id
type SaveIntegrationRequest struct {
	Enabled bool           `json:"enabled"`
	Data    map[string]any `json:"data"`
}

// Get godoc
//
//	@ID				getIntegration
//	@Summary		Get an integration record
//	@Tags			integrations
//	@Produce		json
//	@Param			id	path		string	true	"Integration ID"
//	@Success		200	{object}	APIResponse[integrationapp.IntegrationResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/integrations/{id} [get]
func (h *IntegrationHandler) Get(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.BindError(c, err)
		return
	}

	resp, err := h.integrationService.Get(c.Request.Context(), uri.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Save godoc
//
//	@ID				saveIntegration
//	@Summary		Create or update an integration record
//	@Description	Saves the record and runs its after-save hooks. Saving the Gotenberg record switches the PDF engine.
//	@Tags			integrations
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Integration ID"
//	@Param			request	body		SaveIntegrationRequest	true	"Integration record"
//	@Success		200		{object}	APIResponse[integrationapp.IntegrationResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/integrations/{id} [put]
func (h *IntegrationHandler) Save(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.BindError(c, err)
		return
	}
	var req SaveIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BindError(c, err)
		return
	}

	resp, err := h.integrationService.Save(c.Request.Context(), integrationapp.SaveIntegrationInput{
		ID:      uri.ID,
		Enabled: req.Enabled,
		Data:    req.Data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers the integration endpoints
func (h *IntegrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/integrations/:id", h.Get)
	rg.PUT("/integrations/:id", h.Save)
}
