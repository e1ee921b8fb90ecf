package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	chromiumHTMLRoute       = "/forms/chromium/convert/html"
	defaultGotenbergTimeout = 60 * time.Second
	maxErrorBodyBytes       = 1024

	// Gotenberg asset file names
	IndexFileName  = "index.html"
	HeaderFileName = "header.html"
	FooterFileName = "footer.html"
)

// GotenbergClientConfig contains configuration for the Gotenberg client
type GotenbergClientConfig struct {
	// HTTPClient overrides the default instrumented client
	HTTPClient *http.Client
	// Timeout for a conversion request (default: 60s)
	Timeout time.Duration
	// Username and Password enable HTTP basic auth when both are set
	Username string
	Password string
	Logger   *zap.Logger
}

// GotenbergClient sends conversion requests to a Gotenberg instance
type GotenbergClient struct {
	http     *http.Client
	username string
	password string
	logger   *zap.Logger
}

// NewGotenbergClient creates a Gotenberg client
func NewGotenbergClient(cfg GotenbergClientConfig) *GotenbergClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultGotenbergTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GotenbergClient{
		http:     client,
		username: cfg.Username,
		password: cfg.Password,
		logger:   logger,
	}
}

type formFile struct {
	name    string
	content string
}

// ChromiumHTMLRequest accumulates the form of a Chromium HTML conversion
type ChromiumHTMLRequest struct {
	fields map[string]string
	header *formFile
	footer *formFile
	index  *formFile
}

// NewChromiumHTMLRequest creates an empty conversion request
func NewChromiumHTMLRequest() *ChromiumHTMLRequest {
	return &ChromiumHTMLRequest{fields: make(map[string]string)}
}

// Landscape sets landscape orientation
func (r *ChromiumHTMLRequest) Landscape() *ChromiumHTMLRequest {
	r.fields["landscape"] = "true"
	return r
}

// PaperSize sets the paper width and height, each with a unit suffix
func (r *ChromiumHTMLRequest) PaperSize(width, height string) *ChromiumHTMLRequest {
	r.fields["paperWidth"] = width
	r.fields["paperHeight"] = height
	return r
}

// SinglePage prints the whole document on one page
func (r *ChromiumHTMLRequest) SinglePage() *ChromiumHTMLRequest {
	r.fields["singlePage"] = "true"
	return r
}

// Margins sets the page margins, each with a unit suffix
func (r *ChromiumHTMLRequest) Margins(top, bottom, left, right string) *ChromiumHTMLRequest {
	r.fields["marginTop"] = top
	r.fields["marginBottom"] = bottom
	r.fields["marginLeft"] = left
	r.fields["marginRight"] = right
	return r
}

// Header attaches the header document
func (r *ChromiumHTMLRequest) Header(name, html string) *ChromiumHTMLRequest {
	r.header = &formFile{name: name, content: html}
	return r
}

// Footer attaches the footer document
func (r *ChromiumHTMLRequest) Footer(name, html string) *ChromiumHTMLRequest {
	r.footer = &formFile{name: name, content: html}
	return r
}

// Index attaches the main document
func (r *ChromiumHTMLRequest) Index(html string) *ChromiumHTMLRequest {
	r.index = &formFile{name: IndexFileName, content: html}
	return r
}

// Field returns a form field value
func (r *ChromiumHTMLRequest) Field(name string) (string, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// encode writes the multipart body
func (r *ChromiumHTMLRequest) encode() (*bytes.Buffer, string, error) {
	if r.index == nil {
		return nil, "", NewRenderError(ErrCodeInvalidHTML, "index document is not set", nil)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, k := range slices.Sorted(maps.Keys(r.fields)) {
		if err := writer.WriteField(k, r.fields[k]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	for _, f := range []*formFile{r.index, r.header, r.footer} {
		if f == nil {
			continue
		}
		if err := addHTMLPart(writer, f.name, f.content); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// Send posts the request to the Chromium HTML route of baseURL.
// The caller owns the returned response body.
func (c *GotenbergClient) Send(ctx context.Context, baseURL string, req *ChromiumHTMLRequest) (*http.Response, error) {
	body, contentType, err := req.encode()
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(baseURL, "/") + chromiumHTMLRoute
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, NewRenderError(ErrCodeRequestFailed, "create request", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	if c.username != "" && c.password != "" {
		httpReq.SetBasicAuth(c.username, c.password)
	}

	startTime := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, NewRenderError(ErrCodeRenderTimeout, "Gotenberg request timed out", err)
		}
		return nil, NewRenderError(ErrCodeRequestFailed, "Gotenberg request failed", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.Error("Gotenberg returned an error",
			zap.Int("status", resp.StatusCode),
			zap.String("trace", resp.Header.Get("Gotenberg-Trace")),
			zap.String("body", string(errBody)))
		return nil, NewRenderError(ErrCodeRequestFailed,
			fmt.Sprintf("Gotenberg returned %d: %s", resp.StatusCode, strings.TrimSpace(string(errBody))), nil)
	}

	c.logger.Debug("Gotenberg conversion completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(startTime)))

	return resp, nil
}

// addHTMLPart adds an HTML file to the multipart form
func addHTMLPart(w *multipart.Writer, filename, content string) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, filename))
	h.Set("Content-Type", "text/html")

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", filename, err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		return fmt.Errorf("write part %s: %w", filename, err)
	}
	return nil
}

// isTimeout reports whether a request failed because the caller's deadline
// or the client timeout expired
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
