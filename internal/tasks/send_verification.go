package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/freakishcode/Blog-App/internal/mailer"
)

// SendVerificationTask delivers one verification mail. Queueing the delivery
// keeps registration fast and retries transient SMTP failures, which the
// registration workflow itself never rolls back on.
type SendVerificationTask struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Config returns the queue configuration for verification mail tasks.
func (t SendVerificationTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "send_verification",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     1 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SendVerificationProcessor creates a processor function for SendVerificationTask.
func SendVerificationProcessor(m mailer.Mailer) backlite.QueueProcessor[SendVerificationTask] {
	return func(ctx context.Context, task SendVerificationTask) error {
		if m == nil {
			return fmt.Errorf("mailer not configured")
		}

		if err := m.SendVerification(task.Email, task.Token); err != nil {
			return fmt.Errorf("send verification to %s: %w", task.Email, err)
		}

		log.Printf("[TASK] Sent verification mail to %s", task.Email)
		return nil
	}
}

// NewSendVerificationQueue creates a backlite queue for verification mail tasks.
func NewSendVerificationQueue(m mailer.Mailer) backlite.Queue {
	return backlite.NewQueue(SendVerificationProcessor(m))
}

// QueueNotifier satisfies the auth service's notifier by enqueueing mail
// delivery instead of sending inline.
type QueueNotifier struct {
	client *Client
}

// NewQueueNotifier creates a notifier backed by the task queue.
func NewQueueNotifier(client *Client) *QueueNotifier {
	return &QueueNotifier{client: client}
}

func (n *QueueNotifier) SendVerification(email, token string) error {
	_, err := n.client.Add(SendVerificationTask{Email: email, Token: token}).Save()
	if err != nil {
		return fmt.Errorf("enqueue verification mail: %w", err)
	}
	return nil
}
