package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/set-night/medivault/internal/domain"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		mimeType string
		want     domain.Category
	}{
		{name: "bill keyword", filename: "hospital_bill.pdf", mimeType: "application/pdf", want: domain.CategoryMedicalBill},
		{name: "bill uppercase with image", filename: "BILL_2024.png", mimeType: "image/png", want: domain.CategoryMedicalBill},
		{name: "invoice", filename: "Invoice-March.jpg", mimeType: "image/jpeg", want: domain.CategoryMedicalBill},
		{name: "bill wins over report", filename: "blood_test_invoice.pdf", mimeType: "application/pdf", want: domain.CategoryMedicalBill},
		{name: "report keyword", filename: "lab_results.docx", mimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", want: domain.CategoryMedicalReport},
		{name: "pdf mime", filename: "scan_notes.pdf", mimeType: "application/pdf", want: domain.CategoryMedicalReport},
		{name: "report wins over image", filename: "blood_panel.jpg", mimeType: "image/jpeg", want: domain.CategoryMedicalReport},
		{name: "image mime", filename: "IMG_0042.heic", mimeType: "image/heic", want: domain.CategoryMedicalScan},
		{name: "scan keyword", filename: "knee-MRI.dcm", mimeType: "application/dicom", want: domain.CategoryMedicalScan},
		{name: "x-ray keyword", filename: "chest_x-ray.dat", mimeType: "application/octet-stream", want: domain.CategoryMedicalScan},
		{name: "ct substring", filename: "doctor_notes.txt", mimeType: "text/plain", want: domain.CategoryMedicalScan},
		{name: "other", filename: "notes.txt", mimeType: "text/plain", want: domain.CategoryOther},
		{name: "empty", filename: "", mimeType: "", want: domain.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.filename, tt.mimeType))
		})
	}
}

func TestCategorizeBillIgnoresMime(t *testing.T) {
	for _, mime := range []string{"", "image/png", "application/pdf", "text/plain"} {
		for _, name := range []string{"bill", "BiLl.txt", "my-BILL-scan.jpg", "report_bill"} {
			assert.Equal(t, domain.CategoryMedicalBill, Categorize(name, mime), "%s / %s", name, mime)
		}
	}
}

func TestCategorizeImagesAreScans(t *testing.T) {
	for _, name := range []string{"photo.png", "IMG_1.jpg", "knee.webp", "front.gif"} {
		assert.Equal(t, domain.CategoryMedicalScan, Categorize(name, "image/png"), name)
	}
}
