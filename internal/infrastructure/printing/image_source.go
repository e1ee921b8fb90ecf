package printing

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/erp/pdfengine/internal/domain/printing"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// ObjectReader reads stored attachment bytes
type ObjectReader interface {
	Get(ctx context.Context, storageKey string) ([]byte, error)
}

// AttachmentImageSource resolves attachment ids to inline image data URIs
type AttachmentImageSource struct {
	attachments printing.AttachmentRepository
	objects     ObjectReader
	logger      *zap.Logger
}

var _ ImageSourceProvider = (*AttachmentImageSource)(nil)

// NewAttachmentImageSource creates an image source over attachment records and their stored bytes
func NewAttachmentImageSource(attachments printing.AttachmentRepository, objects ObjectReader, logger *zap.Logger) *AttachmentImageSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentImageSource{
		attachments: attachments,
		objects:     objects,
		logger:      logger,
	}
}

// Get returns a data URI for an image attachment
func (s *AttachmentImageSource) Get(ctx context.Context, id string) (string, bool) {
	attachment, err := s.attachments.FindByID(ctx, id)
	if err != nil {
		s.logger.Debug("attachment not found", zap.String("attachment_id", id), zap.Error(err))
		return "", false
	}

	data, err := s.objects.Get(ctx, attachment.StorageKey)
	if err != nil {
		s.logger.Debug("attachment content unavailable",
			zap.String("attachment_id", id),
			zap.String("storage_key", attachment.StorageKey),
			zap.Error(err))
		return "", false
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		s.logger.Debug("attachment is not an image",
			zap.String("attachment_id", id),
			zap.String("mime_type", mime.String()))
		return "", false
	}

	// Drop parameters such as charset from the media type
	mediaType, _, _ := strings.Cut(mime.String(), ";")
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), true
}
