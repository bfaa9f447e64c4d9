package handler

import (
	"github.com/go-telegram/bot"

	"github.com/set-night/medivault/internal/config"
	"github.com/set-night/medivault/internal/middleware"
	"github.com/set-night/medivault/internal/service"
	"github.com/set-night/medivault/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot        *bot.Bot
	cfg        *config.Config
	workspaces *service.Workspaces
	selection  *service.SelectionCache
	backend    *service.BackendClient
	ops        *telegram.OpsLogger
	inflight   *middleware.InFlight
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot        *bot.Bot
	Cfg        *config.Config
	Workspaces *service.Workspaces
	Selection  *service.SelectionCache
	Backend    *service.BackendClient
	Ops        *telegram.OpsLogger
	InFlight   *middleware.InFlight
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	inflight := deps.InFlight
	if inflight == nil {
		inflight = middleware.NewInFlight()
	}
	return &Handler{
		bot:        deps.Bot,
		cfg:        deps.Cfg,
		workspaces: deps.Workspaces,
		selection:  deps.Selection,
		backend:    deps.Backend,
		ops:        deps.Ops,
		inflight:   inflight,
	}
}
