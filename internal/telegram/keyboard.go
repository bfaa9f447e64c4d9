package telegram

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

// NoopCallback is answered without doing anything, e.g. for a page counter.
const NoopCallback = "noop"

func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	if rows == nil {
		rows = [][]models.InlineKeyboardButton{}
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func ButtonRow(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}

// Page clamps page into range and returns the slice bounds of that page over
// total items, along with the page count (at least 1).
func Page(total, page, perPage int) (start, end, current, pages int) {
	pages = (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	current = min(max(page, 0), pages-1)
	start = current * perPage
	end = min(start+perPage, total)
	return start, end, current, pages
}

// PaginationRow builds prev/counter/next buttons. Callback data is prefix followed
// by the target page number. It returns nil for a single page.
func PaginationRow(currentPage, totalPages int, callbackPrefix string) []models.InlineKeyboardButton {
	if totalPages <= 1 {
		return nil
	}

	var row []models.InlineKeyboardButton
	if currentPage > 0 {
		row = append(row, InlineButton("⬅️", fmt.Sprintf("%s%d", callbackPrefix, currentPage-1)))
	}
	row = append(row, InlineButton(fmt.Sprintf("%d/%d", currentPage+1, totalPages), NoopCallback))
	if currentPage < totalPages-1 {
		row = append(row, InlineButton("➡️", fmt.Sprintf("%s%d", callbackPrefix, currentPage+1)))
	}
	return row
}
