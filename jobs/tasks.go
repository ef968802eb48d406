package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/so-keyldzn/simple-cms-sub001/internal/users"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeRoleChanged notifies a user that their role assignment changed.
	TaskTypeRoleChanged = "users:role_changed"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

func welcomeMail(user users.User) SendEmailPayload {
	greeting := "Hello"
	if user.Name != "" {
		greeting += " " + user.Name
	}
	return SendEmailPayload{
		To:      user.Email,
		Subject: "Your account is ready",
		Body:    fmt.Sprintf("%s,\n\nAn account has been created for %s with the %s role.\n", greeting, user.Email, user.Role),
	}
}

// NewRoleChangedTask wraps a committed role change.
func NewRoleChangedTask(change users.RoleChange) (*asynq.Task, error) {
	if change.UserID <= 0 {
		return nil, fmt.Errorf("jobs: role change without user id")
	}
	data, err := json.Marshal(change)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRoleChanged, data, asynq.MaxRetry(5)), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func (j *MailJob) HandleSendEmailTask(ctx context.Context, t *asynq.Task) (err error) {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" {
		return fmt.Errorf("jobs: mail without recipient: %w", asynq.SkipRetry)
	}
	tracker := j.Metrics.Track(TaskTypeSendEmail)
	defer func() { err = tracker.End(err) }()

	if err := j.Mailer.Send(ctx, Message{To: payload.To, Subject: payload.Subject, Body: payload.Body}); err != nil {
		return err
	}
	j.Metrics.MailSent("generic")
	return nil
}
