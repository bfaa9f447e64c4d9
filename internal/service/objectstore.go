package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/set-night/medivault/internal/domain"
)

// ObjectStore holds uploaded file bytes and serves them by URL.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, filename, mimeType string) (*UploadResult, error)
}

// UploadResult is what the object store reports about a stored asset.
type UploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Bytes     int64  `json:"bytes"`
}

// CloudinaryClient uploads through an unsigned upload preset.
type CloudinaryClient struct {
	baseURL      string
	uploadPreset string
	folder       string
	httpClient   *http.Client
}

// NewCloudinaryClient builds a client for baseURL, e.g.
// "https://api.cloudinary.com/v1_1/<cloud>/auto"; uploads go to baseURL + "/upload".
func NewCloudinaryClient(baseURL, uploadPreset, folder string) *CloudinaryClient {
	return &CloudinaryClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		uploadPreset: uploadPreset,
		folder:       folder,
		httpClient:   &http.Client{},
	}
}

func (c *CloudinaryClient) Upload(ctx context.Context, data []byte, filename, mimeType string) (*UploadResult, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := writeFilePart(w, "file", filename, mimeType, data); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if err := w.WriteField("upload_preset", c.uploadPreset); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if err := w.WriteField("folder", c.folder); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, domain.ErrUploadTimeout
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, domain.ErrUploadTimeout
		}
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UploadFailedError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var result UploadResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parse upload response: %w", err)
	}
	if result.PublicID == "" {
		return nil, fmt.Errorf("parse upload response: missing public_id")
	}
	return &result, nil
}

func writeFilePart(w *multipart.Writer, field, filename, mimeType string, data []byte) error {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(field), escapeQuotes(filename)))
	h.Set("Content-Type", mimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
