package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the document kind derived from filename and MIME type at upload time.
type Category string

const (
	CategoryMedicalScan   Category = "Medical Scan"
	CategoryMedicalReport Category = "Medical Report"
	CategoryMedicalBill   Category = "Medical Bill"
	CategoryOther         Category = "Other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMedicalScan, CategoryMedicalReport, CategoryMedicalBill, CategoryOther:
		return true
	}
	return false
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("category: %w", err)
	}
	if !Category(s).Valid() {
		return fmt.Errorf("unknown category %q", s)
	}
	*c = Category(s)
	return nil
}

// MedicalDocument is one uploaded file in the catalog. The ID is the object store's asset id.
type MedicalDocument struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	UploadDate time.Time `json:"uploadDate"`
	Size       int64     `json:"size"`
	Category   Category  `json:"category"`
}

func (d *MedicalDocument) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("document id is required")
	}
	if !d.Category.Valid() {
		return fmt.Errorf("document %s: unknown category %q", d.ID, d.Category)
	}
	return nil
}

var bytesPerMB = decimal.NewFromInt(1024 * 1024)

// FormatMB renders a byte count as megabytes with two decimals, e.g. "10.50".
func FormatMB(size int64) string {
	return decimal.NewFromInt(size).Div(bytesPerMB).StringFixed(2)
}

// FormatSize renders a byte count for display.
func FormatSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case size < 1024*1024:
		return decimal.NewFromInt(size).Div(decimal.NewFromInt(1024)).StringFixed(1) + " KB"
	default:
		return FormatMB(size) + " MB"
	}
}
