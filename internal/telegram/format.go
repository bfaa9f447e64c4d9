package telegram

import (
	"fmt"

	"github.com/set-night/medivault/internal/domain"
)

func CategoryIcon(c domain.Category) string {
	switch c {
	case domain.CategoryMedicalScan:
		return "🩻"
	case domain.CategoryMedicalReport:
		return "📋"
	case domain.CategoryMedicalBill:
		return "🧾"
	default:
		return "📄"
	}
}

// DocumentLine renders a catalog entry for Markdown messages.
func DocumentLine(doc domain.MedicalDocument, selected bool) string {
	mark := "▫️"
	if selected {
		mark = "✅"
	}
	return fmt.Sprintf("%s %s *%s*\n      %s · %s · %s",
		mark, CategoryIcon(doc.Category), EscapeMarkdown(doc.Name),
		doc.Category, domain.FormatSize(doc.Size), doc.UploadDate.Format("Jan 2, 2006"))
}

// Truncate shortens s to at most n runes, marking the cut with "…".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
