package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/pdfengine/internal/domain/setting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsStore(t *testing.T) {
	db := newTestDatabase(t)
	store := NewSettingsStore(db.DB, nil)
	ctx := context.Background()

	t.Run("unset key", func(t *testing.T) {
		v, ok, err := store.Get(ctx, setting.KeyPDFEngine)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("nothing is written before save", func(t *testing.T) {
		w := store.Writer(ctx)
		w.Set(setting.KeyPDFEngine, "Gotenberg")

		_, ok, err := store.Get(ctx, setting.KeyPDFEngine)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("save writes all values", func(t *testing.T) {
		w := store.Writer(ctx)
		w.Set(setting.KeyPDFEngine, "Gotenberg")
		w.Set(setting.KeyGotenbergPDFEngineRevert, "Dompdf")
		w.Set(setting.KeyGotenbergAPIURL, "http://gotenberg:3000")
		w.Set(setting.KeyPDFFontSize, 12)
		require.NoError(t, w.Save(ctx))

		engine, ok, err := setting.GetString(ctx, store, setting.KeyPDFEngine)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Gotenberg", engine)

		size, ok, err := setting.GetNumber(ctx, store, setting.KeyPDFFontSize)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, float64(12), size)
	})

	t.Run("nil removes the key and later sets win", func(t *testing.T) {
		w := store.Writer(ctx)
		w.Set(setting.KeyPDFEngine, "Chromium")
		w.Set(setting.KeyPDFEngine, "Dompdf")
		w.Set(setting.KeyGotenbergPDFEngineRevert, nil)
		w.Set(setting.KeyGotenbergAPIURL, nil)
		require.NoError(t, w.Save(ctx))

		engine, _, err := setting.GetString(ctx, store, setting.KeyPDFEngine)
		require.NoError(t, err)
		assert.Equal(t, "Dompdf", engine)

		_, ok, err := store.Get(ctx, setting.KeyGotenbergPDFEngineRevert)
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = store.Get(ctx, setting.KeyGotenbergAPIURL)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty batch", func(t *testing.T) {
		assert.NoError(t, store.Writer(ctx).Save(ctx))
	})

	t.Run("batch is cleared after save", func(t *testing.T) {
		w := store.Writer(ctx)
		w.Set(setting.KeyPDFFontFace, "Roboto")
		require.NoError(t, w.Save(ctx))

		other := store.Writer(ctx)
		other.Set(setting.KeyPDFFontFace, "Arial")
		require.NoError(t, other.Save(ctx))

		require.NoError(t, w.Save(ctx))
		face, _, err := setting.GetString(ctx, store, setting.KeyPDFFontFace)
		require.NoError(t, err)
		assert.Equal(t, "Arial", face)
	})
}

func TestSettingsStore_SaveIsAtomic(t *testing.T) {
	t.Run("rolls back every change when one fails", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		store := NewSettingsStore(db.DB, nil)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "settings"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "settings"`).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		w := store.Writer(context.Background())
		w.Set(setting.KeyPDFEngine, "Dompdf")
		w.Set(setting.KeyGotenbergPDFEngineRevert, nil)
		err := w.Save(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "remove setting gotenbergPdfEngineRevert")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commits once for the whole batch", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		store := NewSettingsStore(db.DB, nil)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "settings"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "settings"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		w := store.Writer(context.Background())
		w.Set(setting.KeyPDFEngine, "Gotenberg")
		w.Set(setting.KeyGotenbergAPIURL, "http://gotenberg:3000")
		require.NoError(t, w.Save(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("read errors are returned", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		store := NewSettingsStore(db.DB, nil)

		mock.ExpectQuery(`SELECT \* FROM "settings" WHERE name = \$1`).
			WillReturnError(errors.New("connection refused"))

		_, _, err := store.Get(context.Background(), setting.KeyPDFEngine)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read setting pdfEngine")
	})
}
