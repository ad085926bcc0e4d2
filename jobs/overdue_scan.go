package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/hibiken/asynq"

	"github.com/rentfold/rentfold/internal/billing"
	jobmetrics "github.com/rentfold/rentfold/internal/jobs"
	"github.com/rentfold/rentfold/internal/templates"
	"github.com/rentfold/rentfold/internal/tenants"
)

// reminderTemplateKey is the message template used for overdue reminders.
// When no template with this key exists the scanner falls back to a
// built-in plain-text body.
const reminderTemplateKey = "rent-reminder"

// OverdueSource lists issued invoices past their due date.
type OverdueSource interface {
	Overdue(ctx context.Context) ([]billing.Invoice, error)
}

// TenantDirectory resolves tenant profiles for reminder addressing.
type TenantDirectory interface {
	Get(ctx context.Context, id int64) (*tenants.TenantProfile, error)
}

// MessageRenderer applies variables to a stored message template.
type MessageRenderer interface {
	Render(ctx context.Context, key string, channel templates.Channel, vars map[string]string) (*templates.RenderedMessage, error)
}

// Enqueuer queues outbound email tasks.
type Enqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error)
}

// Scanner walks overdue invoices and queues one reminder email per invoice.
type Scanner struct {
	invoices OverdueSource
	tenants  TenantDirectory
	renderer MessageRenderer
	enqueuer Enqueuer
	metrics  *jobmetrics.Metrics
	logger   *slog.Logger
}

// NewScanner wires the overdue scanner.
func NewScanner(invoices OverdueSource, dir TenantDirectory, renderer MessageRenderer, enqueuer Enqueuer, metrics *jobmetrics.Metrics, logger *slog.Logger) *Scanner {
	return &Scanner{
		invoices: invoices,
		tenants:  dir,
		renderer: renderer,
		enqueuer: enqueuer,
		metrics:  metrics,
		logger:   logger,
	}
}

// Handler returns the Asynq handler for TaskTypeOverdueScan.
func (s *Scanner) Handler() asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		tracker := s.metrics.Track(TaskTypeOverdueScan)
		return tracker.End(s.run(ctx))
	}
}

func (s *Scanner) run(ctx context.Context) error {
	invoices, err := s.invoices.Overdue(ctx)
	if err != nil {
		return fmt.Errorf("jobs: list overdue invoices: %w", err)
	}
	sent := 0
	for _, inv := range invoices {
		if err := ctx.Err(); err != nil {
			return err
		}
		profile, err := s.tenants.Get(ctx, inv.TenantID)
		if err != nil {
			s.logger.Warn("overdue scan: tenant lookup failed",
				slog.String("invoice", inv.Number),
				slog.Int64("tenant_id", inv.TenantID),
				slog.Any("error", err))
			continue
		}
		if profile.Email == "" {
			continue
		}
		subject, body := s.compose(ctx, &inv, profile)
		payload := SendEmailPayload{To: profile.Email, Subject: subject, Body: body}
		if _, err := s.enqueuer.EnqueueSendEmail(ctx, payload); err != nil {
			s.logger.Error("overdue scan: enqueue reminder",
				slog.String("invoice", inv.Number),
				slog.Any("error", err))
			continue
		}
		sent++
	}
	s.metrics.AddReminders("email", sent)
	s.logger.Info("overdue scan complete",
		slog.Int("overdue", len(invoices)),
		slog.Int("reminders", sent))
	return nil
}

func (s *Scanner) compose(ctx context.Context, inv *billing.Invoice, profile *tenants.TenantProfile) (string, string) {
	vars := map[string]string{
		"Name":        profile.FullName,
		"Invoice":     inv.Number,
		"Currency":    inv.Currency,
		"Outstanding": strconv.FormatFloat(inv.Outstanding(), 'f', 2, 64),
		"DueDate":     inv.DueAt.Format("2006-01-02"),
	}
	rendered, err := s.renderer.Render(ctx, reminderTemplateKey, templates.ChannelEmail, vars)
	if err == nil {
		return rendered.Subject, rendered.Body
	}
	subject := fmt.Sprintf("Payment reminder for invoice %s", inv.Number)
	body := fmt.Sprintf(
		"Hello %s,\n\nInvoice %s was due on %s and has an outstanding balance of %s %s.\nPlease arrange payment at your earliest convenience.\n",
		profile.FullName, inv.Number, vars["DueDate"], inv.Currency, vars["Outstanding"])
	return subject, body
}
