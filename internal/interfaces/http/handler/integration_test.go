package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	integrationapp "github.com/erp/pdfengine/internal/application/integration"
	"github.com/erp/pdfengine/internal/domain/shared"
	"github.com/erp/pdfengine/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIntegrationService is a mock implementation of IntegrationService
type MockIntegrationService struct {
	mock.Mock
}

func (m *MockIntegrationService) Get(ctx context.Context, id string) (*integrationapp.IntegrationResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.IntegrationResponse), args.Error(1)
}

func (m *MockIntegrationService) Save(ctx context.Context, input integrationapp.SaveIntegrationInput) (*integrationapp.IntegrationResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.IntegrationResponse), args.Error(1)
}

func newIntegrationRouter(svc IntegrationService) *gin.Engine {
	h := NewIntegrationHandler(svc)
	router := gin.New()
	h.RegisterRoutes(&router.RouterGroup)
	return router
}

func TestIntegrationHandler_Save(t *testing.T) {
	t.Run("takes the id from the path", func(t *testing.T) {
		svc := new(MockIntegrationService)
		svc.On("Save", mock.Anything, integrationapp.SaveIntegrationInput{
			ID:      "Gotenberg",
			Enabled: true,
			Data:    map[string]any{"apiUrl": "http://gotenberg:3000"},
		}).Return(&integrationapp.IntegrationResponse{
			ID:        "Gotenberg",
			Enabled:   true,
			Data:      map[string]any{"apiUrl": "http://gotenberg:3000"},
			UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}, nil)

		req := httptest.NewRequest(http.MethodPut, "/integrations/Gotenberg",
			strings.NewReader(`{"id":"ignored","enabled":true,"data":{"apiUrl":"http://gotenberg:3000"}}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		newIntegrationRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "Gotenberg", data["id"])
		assert.Equal(t, true, data["enabled"])
		svc.AssertExpectations(t)
	})

	t.Run("invalid json", func(t *testing.T) {
		svc := new(MockIntegrationService)

		req := httptest.NewRequest(http.MethodPut, "/integrations/Gotenberg", strings.NewReader(`{"enabled":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		newIntegrationRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
		svc.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("invalid record", func(t *testing.T) {
		svc := new(MockIntegrationService)
		svc.On("Save", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("INVALID_INTEGRATION", "Integration ID is required"))

		req := httptest.NewRequest(http.MethodPut, "/integrations/Gotenberg", strings.NewReader(`{"enabled":false}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		newIntegrationRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
	})
}

func TestIntegrationHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := new(MockIntegrationService)
		svc.On("Get", mock.Anything, "Gotenberg").Return(&integrationapp.IntegrationResponse{
			ID:      "Gotenberg",
			Enabled: false,
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/integrations/Gotenberg", nil)
		w := httptest.NewRecorder()
		newIntegrationRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Gotenberg", decodeResponse(t, w).Data.(map[string]any)["id"])
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockIntegrationService)
		svc.On("Get", mock.Anything, "Missing").
			Return(nil, shared.NewDomainError("NOT_FOUND", "Integration not found"))

		req := httptest.NewRequest(http.MethodGet, "/integrations/Missing", nil)
		w := httptest.NewRecorder()
		newIntegrationRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
