package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrStorageRead        = errors.New("storage read failed")
	ErrStorageWrite       = errors.New("storage write failed")
	ErrSizeLimitExceeded  = errors.New("file too large")
	ErrUploadTimeout      = errors.New("upload timed out")
	ErrNetworkUnreachable = errors.New("network unreachable")
	ErrSessionNotFound    = errors.New("session not found")
	ErrEmptyMessage       = errors.New("message is empty")
)

// UploadFailedError is a non-success response from the object store.
type UploadFailedError struct {
	Status int
	Body   string
}

func (e *UploadFailedError) Error() string {
	return fmt.Sprintf("upload failed: %d - %s", e.Status, BodyText(e.Body))
}

// BackendError is a non-success response from the chat backend.
type BackendError struct {
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	text := BodyText(e.Body)
	if text == "" {
		return fmt.Sprintf("backend error (%d)", e.Status)
	}
	return fmt.Sprintf("backend error (%d): %s", e.Status, text)
}

const maxBodyText = 300

// BodyText reduces an HTTP error body to one line of readable text.
// HTML pages (proxy and gateway errors) are stripped to their text content.
func BodyText(body string) string {
	body = strings.TrimSpace(body)
	if strings.HasPrefix(body, "<") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(body)); err == nil {
			text := doc.Find("title").First().Text()
			if strings.TrimSpace(text) == "" {
				text = doc.Find("body").Text()
			}
			body = text
		}
	}
	body = strings.Join(strings.Fields(body), " ")
	if r := []rune(body); len(r) > maxBodyText {
		body = string(r[:maxBodyText]) + "..."
	}
	return body
}
