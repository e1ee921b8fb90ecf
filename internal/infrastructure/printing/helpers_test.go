package printing

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/pdfengine/internal/domain/printing"
	"github.com/erp/pdfengine/internal/domain/setting"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// mapSettings is an in-memory setting.Reader
type mapSettings map[string]any

func (m mapSettings) Get(_ context.Context, key string) (any, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

var _ setting.Reader = mapSettings(nil)

// failingSettings fails every read
type failingSettings struct{}

func (failingSettings) Get(context.Context, string) (any, bool, error) {
	return nil, false, errors.New("settings unavailable")
}

// mapImages is an in-memory ImageSourceProvider
type mapImages map[string]string

func (m mapImages) Get(_ context.Context, id string) (string, bool) {
	src, ok := m[id]
	return src, ok
}

// mapMetadata is an in-memory Metadata keyed by the last path segment
type mapMetadata struct {
	paperSizes map[string]any
	headItems  any
}

func (m mapMetadata) Get(path ...string) any {
	if len(path) == 4 && path[2] == "paper_size_list" {
		return m.paperSizes[path[3]]
	}
	if len(path) == 3 && path[2] == "html_head_item_list" {
		return m.headItems
	}
	return nil
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func newTestTemplate(t *testing.T) *printing.Template {
	t.Helper()
	tpl, err := printing.NewTemplate("Invoice", "Account")
	require.NoError(t, err)
	tpl.Margins = printing.Margins{Top: 10, Right: 15, Bottom: 20, Left: 5}
	tpl.PageWidth = 210
	tpl.PageHeight = 297
	tpl.Body = "<p>{{.name}}</p>"
	return tpl
}

func newTestEntity() *printing.Entity {
	return printing.NewEntity("Account", "acc-1", map[string]any{"name": "Acme & Co"})
}

func strPtr(s string) *string {
	return &s
}
