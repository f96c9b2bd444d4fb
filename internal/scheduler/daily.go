package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskstudy/internal/notifications/digest"
	"taskstudy/internal/notifications/email"
	"taskstudy/internal/types"
)

// Digest window constants. The lookback catches recently-overdue pending
// tasks; the lookahead catches upcoming ones.
const (
	digestLookbackDays  = 30
	digestLookaheadDays = 7
)

// maxDigestHighlights caps how many items are called out at the top of the
// digest email and in the channel text summaries.
const maxDigestHighlights = 3

// DailyDigestJob sends each user one pending-tasks digest per calendar day,
// fanning out across email, Telegram, and WhatsApp according to the user's
// consent and channel opt-ins, and recording a log entry that makes the job
// idempotent per day.
type DailyDigestJob struct {
	tasks    TaskStore
	users    UserStore
	dedup    *DedupChecker
	log      NotificationLog
	email    EmailChannel
	telegram TelegramChannel
	whatsapp WhatsAppChannel
	renderer *email.Renderer
	logger   *slog.Logger
}

// NewDailyDigestJob creates a daily digest job runner.
func NewDailyDigestJob(
	tasks TaskStore,
	users UserStore,
	log NotificationLog,
	emailCh EmailChannel,
	telegramCh TelegramChannel,
	whatsappCh WhatsAppChannel,
	renderer *email.Renderer,
	logger *slog.Logger,
) *DailyDigestJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyDigestJob{
		tasks:    tasks,
		users:    users,
		dedup:    NewDedupChecker(log),
		log:      log,
		email:    emailCh,
		telegram: telegramCh,
		whatsapp: whatsappCh,
		renderer: renderer,
		logger:   logger,
	}
}

// dailyOptions controls a single user's digest run.
type dailyOptions struct {
	// recipientOverride redirects the email to this address and suppresses
	// the non-email channels. Used for operational testing.
	recipientOverride string

	// force bypasses the dedup check.
	force bool
}

// RunForUser executes the digest flow for one user at the given instant.
// Returns the job outcome; an error means the user's digest failed partway
// and is counted against the batch.
func (j *DailyDigestJob) RunForUser(ctx context.Context, user *types.User, now time.Time, opts dailyOptions) (types.JobOutcome, error) {
	from := now.AddDate(0, 0, -digestLookbackDays)
	to := now.AddDate(0, 0, digestLookaheadDays)

	tasks, err := j.tasks.FindPendingInRange(ctx, user.ID, from, to)
	if err != nil {
		return "", fmt.Errorf("fetching pending tasks for user %s: %w", user.ID, err)
	}
	if len(tasks) == 0 {
		return types.OutcomeSkippedNoTasks, nil
	}

	if !opts.force {
		sent, err := j.dedup.HasNotification(ctx, user.ID, types.DailyKinds, StartOfDay(now))
		if err != nil {
			return "", err
		}
		if sent {
			return types.OutcomeSkippedDuplicate, nil
		}
	}

	items := digest.BuildItems(tasks, now)
	highlights := digest.SelectHighlights(items, maxDigestHighlights)

	override := strings.TrimSpace(opts.recipientOverride) != ""

	if override || user.NotifyByEmail {
		rendered, err := j.renderer.DailyDigest(email.DailyDigestData{
			UserName:   user.FirstName(),
			Date:       now,
			Items:      items,
			Highlights: highlights,
		})
		if err != nil {
			return "", fmt.Errorf("rendering daily digest for user %s: %w", user.ID, err)
		}

		to := user.RecipientEmail()
		if override {
			to = strings.TrimSpace(opts.recipientOverride)
		}
		if err := j.email.Send(ctx, to, rendered.Subject, rendered.BodyHTML); err != nil {
			return "", fmt.Errorf("sending daily digest email to %s: %w", to, err)
		}
	}

	if !override && user.TelegramEnabled() {
		text := dailyTelegramText(user.FirstName(), len(items), highlights)
		if err := j.telegram.Send(ctx, user.TelegramChatID, text); err != nil {
			return "", fmt.Errorf("sending daily digest telegram to user %s: %w", user.ID, err)
		}
	}

	// WhatsApp is the least reliable channel in practice, so its failure is
	// swallowed here: it must not abort the log write below, and it does not
	// count against the batch.
	if !override && user.WhatsAppEnabled() && j.whatsapp.Available() {
		text := dailyWhatsAppText(user.FirstName(), len(items), highlights)
		if err := j.whatsapp.Send(ctx, user.Phone, text); err != nil {
			j.logger.Warn("whatsapp digest send failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	entry := &types.NotificationLogEntry{
		ID:      uuid.New().String(),
		UserID:  user.ID,
		Type:    types.NotificationDailyPending,
		Title:   "Daily task digest",
		Message: fmt.Sprintf("You have %d pending tasks.", len(items)),
		Payload: types.NotificationPayload{
			Daily: &types.DailyPayload{
				Count:      len(items),
				Highlights: highlightTitles(highlights),
			},
		},
		CreatedAt: now,
	}
	if err := j.log.Create(ctx, entry); err != nil {
		return "", fmt.Errorf("recording daily digest for user %s: %w", user.ID, err)
	}

	return types.OutcomeSent, nil
}

// BatchOptions controls a daily digest batch run.
type BatchOptions struct {
	// Force bypasses the per-user dedup check.
	Force bool

	// RecipientOverride limits the batch to the user(s) matching this email
	// (case-insensitive, account or notification address) and redirects
	// their digest email to it.
	RecipientOverride string
}

// RunBatch runs the digest for every user (or for the override recipient)
// and aggregates outcomes. Per-user failures are logged and counted; they
// never abort the batch. The summary is always non-nil.
func (j *DailyDigestJob) RunBatch(ctx context.Context, now time.Time, opts BatchOptions) *types.DigestBatchSummary {
	summary := &types.DigestBatchSummary{}

	users, err := j.listRecipients(ctx, opts.RecipientOverride)
	if err != nil {
		j.logger.Error("daily digest batch aborted: listing users failed", "error", err)
		summary.Errors++
		return summary
	}

	for i := range users {
		user := &users[i]
		outcome, err := j.RunForUser(ctx, user, now, dailyOptions{
			recipientOverride: opts.RecipientOverride,
			force:             opts.Force,
		})
		if err != nil {
			j.logger.Error("daily digest failed for user",
				"user_email", user.Email,
				"error", err,
			)
			summary.RecordError()
			continue
		}
		summary.Record(outcome)
	}

	j.logger.Info("daily digest batch complete",
		"attempted", summary.Attempted,
		"sent", summary.Sent,
		"skipped_no_tasks", summary.SkippedNoTasks,
		"skipped_duplicate", summary.SkippedDuplicate,
		"errors", summary.Errors,
	)

	return summary
}

// listRecipients resolves the batch's user set: everyone, or the single
// override recipient matched by email.
func (j *DailyDigestJob) listRecipients(ctx context.Context, override string) ([]types.User, error) {
	override = strings.TrimSpace(override)
	if override == "" {
		return j.users.FindAll(ctx)
	}
	return j.users.FindByEmailOrNotificationEmail(ctx, override)
}

// dailyTelegramText builds the short Telegram summary: pending count plus
// the highlighted titles.
func dailyTelegramText(firstName string, count int, highlights []digest.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s! You have %d pending tasks today.", firstName, count)
	for _, item := range highlights {
		fmt.Fprintf(&b, "\n- %s (%s)", item.Title, item.StatusLabel)
	}
	return b.String()
}

// dailyWhatsAppText mirrors the Telegram summary for the WhatsApp relay.
func dailyWhatsAppText(firstName string, count int, highlights []digest.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TaskStudy: hi %s, %d tasks are waiting for you.", firstName, count)
	for _, item := range highlights {
		fmt.Fprintf(&b, "\n- %s: %s", item.Title, item.StatusLabel)
	}
	return b.String()
}

// highlightTitles extracts the titles for the log entry payload snapshot.
func highlightTitles(highlights []digest.Item) []string {
	titles := make([]string, 0, len(highlights))
	for _, item := range highlights {
		titles = append(titles, item.Title)
	}
	return titles
}
