package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/text/language"

	"github.com/so-keyldzn/simple-cms-sub001/internal/i18n"
	jobmetrics "github.com/so-keyldzn/simple-cms-sub001/internal/jobs"
	"github.com/so-keyldzn/simple-cms-sub001/internal/users"
)

// MailJob sends notification mails.
type MailJob struct {
	Mailer   Mailer
	Messages *i18n.Messages
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewMailJob initialises the mail handlers.
func NewMailJob(mailer Mailer, messages *i18n.Messages, logger *slog.Logger, metrics *jobmetrics.Metrics) *MailJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &MailJob{Mailer: mailer, Messages: messages, Logger: logger, Metrics: metrics}
}

// HandleRoleChanged tells the affected user about their new role assignment.
func (j *MailJob) HandleRoleChanged(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Mailer == nil {
		return errors.New("role changed: handler not configured")
	}
	var change users.RoleChange
	if err := json.Unmarshal(t.Payload(), &change); err != nil {
		return asynq.SkipRetry
	}
	if change.Email == "" {
		j.Logger.Warn("role change without email", slog.Int64("user_id", change.UserID))
		return nil
	}

	tracker := j.Metrics.Track(TaskTypeRoleChanged)
	defer func() { err = tracker.End(err) }()

	greeting := "Hello"
	if change.Name != "" {
		greeting += " " + change.Name
	}
	body := fmt.Sprintf("%s,\n\n%s\n", greeting, j.Messages.Text(language.English, i18n.KeyRoleChanged, change.Current))
	if err := j.Mailer.Send(ctx, Message{To: change.Email, Subject: "Your role has changed", Body: body}); err != nil {
		return err
	}
	j.Metrics.MailSent("role_changed")
	j.Logger.Info("role change mail sent", slog.Int64("user_id", change.UserID), slog.String("role", change.Current))
	return nil
}
