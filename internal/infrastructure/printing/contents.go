package printing

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/erp/pdfengine/internal/domain/printing"
)

var _ printing.Contents = (*Contents)(nil)

// Contents is a PDF body read on first access.
// The source is read and closed once; the bytes or the read error are kept.
type Contents struct {
	once   sync.Once
	source io.ReadCloser
	data   []byte
	err    error
}

// NewContents wraps a response body
func NewContents(source io.ReadCloser) *Contents {
	return &Contents{source: source}
}

// NewContentsFromBytes wraps already materialized bytes
func NewContentsFromBytes(data []byte) *Contents {
	return NewContents(io.NopCloser(bytes.NewReader(data)))
}

func (c *Contents) load() {
	c.once.Do(func() {
		if c.source == nil {
			c.err = fmt.Errorf("contents have no source")
			return
		}
		defer c.source.Close()
		c.data, c.err = io.ReadAll(c.source)
		if c.err != nil {
			c.err = fmt.Errorf("failed to read PDF contents: %w", c.err)
		}
	})
}

// Bytes returns the full document
func (c *Contents) Bytes() ([]byte, error) {
	c.load()
	return c.data, c.err
}

// String returns the full document
func (c *Contents) String() (string, error) {
	data, err := c.Bytes()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Stream returns a new reader over the document
func (c *Contents) Stream() (io.ReadSeeker, error) {
	data, err := c.Bytes()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// Length returns the document size in bytes
func (c *Contents) Length() (int, error) {
	data, err := c.Bytes()
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// Close releases the source when the contents were never read
func (c *Contents) Close() error {
	var err error
	c.once.Do(func() {
		c.err = fmt.Errorf("contents closed before read")
		if c.source != nil {
			err = c.source.Close()
		}
	})
	return err
}
