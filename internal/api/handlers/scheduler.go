// Package handlers contains the HTTP handler implementations for the
// TaskStudy notification engine API.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"

	"taskstudy/internal/core"
	"taskstudy/internal/types"
)

// SchedulerService runs one full scheduler pass. Mirrors scheduler.Service.
type SchedulerService interface {
	Run(ctx context.Context, opts types.RunOptions) *types.RunSummary
}

// SchedulerHandler exposes the HTTP trigger that external cron services
// call to execute a scheduler pass.
type SchedulerHandler struct {
	service SchedulerService
	logger  *slog.Logger
}

// NewSchedulerHandler creates the scheduler trigger handler.
func NewSchedulerHandler(service SchedulerService, logger *slog.Logger) *SchedulerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchedulerHandler{service: service, logger: logger}
}

// RegisterRoutes mounts the trigger endpoint behind the cron secret check.
func (h *SchedulerHandler) RegisterRoutes(r chi.Router, cronSecret types.SecretString) {
	r.With(core.CronSecretMiddleware(cronSecret)).
		Post("/scheduler/run", h.HandleRun)
}

// HandleRun executes one scheduler pass inline and returns its summary.
//
// Query parameters:
//
//	skip_daily     - skip the daily digest batch
//	force_daily    - bypass the daily dedup check
//	force_weekly   - override the Monday calendar gate (true forces a run,
//	                 false suppresses one)
//	force_monthly  - override the first-of-month gate likewise
//	recipient      - limit the daily batch to the matching user and redirect
//	                 their digest email to this address
func (h *SchedulerHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	opts := types.RunOptions{
		SkipDaily:         parseBoolean(query.Get("skip_daily")),
		ForceDaily:        parseBoolean(query.Get("force_daily")),
		RecipientOverride: strings.TrimSpace(query.Get("recipient")),
	}
	if query.Has("force_weekly") {
		v := parseBoolean(query.Get("force_weekly"))
		opts.ForceWeekly = &v
	}
	if query.Has("force_monthly") {
		v := parseBoolean(query.Get("force_monthly"))
		opts.ForceMonthly = &v
	}

	if opts.RecipientOverride != "" {
		if _, err := mail.ParseAddress(opts.RecipientOverride); err != nil {
			core.Error(w, r, types.NewAppError(
				types.ErrCodeValidationInvalidEmail,
				fmt.Sprintf("invalid recipient address %q", opts.RecipientOverride),
				err,
			))
			return
		}
	}

	summary := h.service.Run(r.Context(), opts)
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: summary})
}

// parseBoolean interprets the flag forms cron services commonly send:
// "true", "1", "yes", and "on" (case-insensitive) are true, everything
// else is false.
func parseBoolean(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
