package config

import "time"

const (
	// Upload limits
	MaxUploadSize = 10 * 1024 * 1024
	UploadTimeout = 30 * time.Second

	// Persisted keys, one JSON value each
	DocumentsKey      = "medivault_documents"
	ChatHistoryKey    = "medivault_chat_history"
	CurrentSessionKey = "medivault_current_session"

	// Session defaults
	DefaultSessionTitle = "New Chat"
	TitleWords          = 5
	WelcomeMessage      = "Hello! I'm your medical assistant. Upload your medical reports and ask me questions about them."

	// Chat replies
	NoResponseText  = "No response from AI"
	FallbackSuffix  = "\n\n(Note: Your selected documents couldn't be processed, but I can still help with general medical questions.)"
	ErrorReplyHint  = "Make sure your backend is running at the correct URL."
	DefaultFileName = "medical_document"

	// Document selection is UI state and expires when idle
	SelectionTTL = 24 * time.Hour

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Pagination
	SessionsPerPage  = 5
	DocumentsPerPage = 8
)
