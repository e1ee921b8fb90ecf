package printing

import (
	"testing"

	"github.com/erp/pdfengine/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNewTemplate(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		tpl, err := NewTemplate("  Quote  ", "Quote")
		require.NoError(t, err)
		assert.Equal(t, "Quote", tpl.Name)
		assert.Equal(t, "A4", tpl.PageFormat)
		assert.Equal(t, OrientationPortrait, tpl.PageOrientation)
		assert.Equal(t, DefaultMargins(), tpl.Margins)
		assert.False(t, tpl.HasHeader())
		assert.False(t, tpl.HasFooter())
		assert.NotEmpty(t, tpl.ID)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewTemplate("", "Quote")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TEMPLATE", domainErr.Code)
	})
}

func TestTemplate_Validate(t *testing.T) {
	base := func() *Template {
		tpl, err := NewTemplate("Invoice", "Invoice")
		require.NoError(t, err)
		return tpl
	}

	t.Run("custom format needs dimensions", func(t *testing.T) {
		tpl := base()
		tpl.PageFormat = PageFormatCustom
		assert.Error(t, tpl.Validate())

		tpl.PageWidth = 100
		tpl.PageHeight = 200
		assert.NoError(t, tpl.Validate())
	})

	t.Run("unknown orientation", func(t *testing.T) {
		tpl := base()
		tpl.PageOrientation = "Sideways"
		assert.Error(t, tpl.Validate())
	})

	t.Run("negative margin", func(t *testing.T) {
		tpl := base()
		tpl.Margins.Left = -1
		assert.Error(t, tpl.Validate())
	})
}

func TestTemplate_Accessors(t *testing.T) {
	tpl := &Template{PageFormat: PageFormatSinglePage, PageOrientation: OrientationLandscape}
	assert.True(t, tpl.IsSinglePage())
	assert.False(t, tpl.IsCustomFormat())
	assert.True(t, tpl.IsLandscape())
	assert.False(t, tpl.HasTitle())
	assert.Equal(t, "", tpl.GetTitle())

	_, ok := tpl.GetFontFace()
	assert.False(t, ok)

	tpl.Title = strPtr("Quote {$name}")
	tpl.FontFace = strPtr("Roboto")
	assert.True(t, tpl.HasTitle())
	assert.Equal(t, "Quote {$name}", tpl.GetTitle())
	face, ok := tpl.GetFontFace()
	assert.True(t, ok)
	assert.Equal(t, "Roboto", face)
}

func TestEntity(t *testing.T) {
	attrs := map[string]any{"name": "Acme", "amount": 12.5}
	e := NewEntity("Account", "a1", attrs)
	attrs["name"] = "changed"

	assert.Equal(t, "Acme", e.GetString("name"))
	assert.Equal(t, "12.5", e.GetString("amount"))
	assert.Equal(t, "", e.GetString("missing"))
	assert.True(t, e.Has("amount"))
	assert.False(t, e.Has("missing"))

	var nilEntity *Entity
	assert.Nil(t, nilEntity.Get("name"))
	assert.False(t, nilEntity.Has("name"))
}

func TestNewMargins(t *testing.T) {
	m, err := NewMargins(10, 5, 10, 5)
	require.NoError(t, err)
	assert.False(t, m.IsZero())

	_, err = NewMargins(-1, 0, 0, 0)
	assert.Error(t, err)

	assert.True(t, Margins{}.IsZero())
}

func TestNewData(t *testing.T) {
	assert.Nil(t, NewData(nil).AdditionalTemplateData)

	src := map[string]any{"k": "v"}
	d := NewData(src)
	src["k"] = "changed"
	assert.Equal(t, "v", d.AdditionalTemplateData["k"])
}
