package service

import (
	"strings"

	"github.com/set-night/medivault/internal/domain"
)

var (
	billKeywords   = []string{"bill", "invoice", "receipt", "payment", "charge", "cost", "fee"}
	reportKeywords = []string{"report", "result", "test", "lab", "blood", "analysis", "diagnosis", "prescription"}
	scanKeywords   = []string{"scan", "xray", "x-ray", "mri", "ct", "ultrasound", "mammogram", "ecg", "ekg"}
)

// Categorize derives a document category from its filename and MIME type.
// Bills win over reports and reports over scans, so "blood_test_invoice.pdf" is a bill.
func Categorize(filename, mimeType string) domain.Category {
	name := strings.ToLower(filename)
	mime := strings.ToLower(mimeType)

	switch {
	case containsAny(name, billKeywords):
		return domain.CategoryMedicalBill
	case containsAny(name, reportKeywords) || strings.Contains(mime, "pdf"):
		return domain.CategoryMedicalReport
	case strings.Contains(mime, "image") || containsAny(name, scanKeywords):
		return domain.CategoryMedicalScan
	default:
		return domain.CategoryOther
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
