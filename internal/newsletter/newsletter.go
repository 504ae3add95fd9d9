// Package newsletter turns domain events into emails: an announcement to every
// registered user when a post is published and a welcome note on sign-up.
package newsletter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mentally-gamez-soft/ws-blog/internal/events"
	"github.com/mentally-gamez-soft/ws-blog/internal/mail"
	"github.com/mentally-gamez-soft/ws-blog/internal/users"
)

// batchSize bounds the recipients of a single SMTP transaction.
const batchSize = 50

type UserLister interface {
	ListUsers(ctx context.Context) ([]*users.User, error)
}

type Notifier struct {
	users   UserLister
	sender  mail.Sender
	baseURL string
	logger  *slog.Logger
}

func NewNotifier(lister UserLister, sender mail.Sender, baseURL string, logger *slog.Logger) *Notifier {
	return &Notifier{
		users:   lister,
		sender:  sender,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Handle sends the announcement for e. Events of other types are ignored.
func (n *Notifier) Handle(ctx context.Context, e events.PostPublished) error {
	if e.Type != events.TypePostPublished {
		n.logger.Debug("ignoring event type", "type", e.Type)
		return nil
	}

	list, err := n.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	recipients := make([]string, 0, len(list))
	for _, u := range list {
		if u.ID == e.Payload.AuthorID {
			continue
		}
		recipients = append(recipients, u.Email)
	}

	msg := Compose(e, n.baseURL)
	for start := 0; start < len(recipients); start += batchSize {
		end := min(start+batchSize, len(recipients))
		msg.To = recipients[start:end]
		if err := n.sender.Send(ctx, msg); err != nil {
			if start == 0 {
				return fmt.Errorf("send batch 0: %w", err)
			}
			// Earlier batches went out; redelivering would mail them twice.
			n.logger.Error("newsletter partially sent",
				"post_id", e.Payload.PostID,
				"sent", start,
				"unsent", len(recipients)-start,
				"error", err,
			)
			return nil
		}
	}

	n.logger.Info("newsletter sent",
		"post_id", e.Payload.PostID,
		"slug", e.Payload.Slug,
		"recipients", len(recipients),
	)
	return nil
}

// Welcome greets a newly registered user.
func (n *Notifier) Welcome(ctx context.Context, e events.UserSignedUp) error {
	if e.Payload.Email == "" {
		n.logger.Warn("welcome skipped, no email", "user_id", e.Payload.UserID)
		return nil
	}
	msg := ComposeWelcome(e, n.baseURL)
	msg.To = []string{e.Payload.Email}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}
	n.logger.Info("welcome sent", "user_id", e.Payload.UserID)
	return nil
}

// ComposeWelcome builds the welcome message without recipients.
func ComposeWelcome(e events.UserSignedUp, baseURL string) mail.Message {
	return mail.Message{
		Subject: "Welcome to the blog",
		Body: fmt.Sprintf("Hi %s, welcome to the blog.\n\nNew posts will be announced at %s\n",
			e.Payload.Name, strings.TrimRight(baseURL, "/")+"/posts"),
	}
}

// Compose builds the announcement body without recipients.
func Compose(e events.PostPublished, baseURL string) mail.Message {
	link := strings.TrimRight(baseURL, "/") + "/posts/" + e.Payload.Slug
	return mail.Message{
		Subject: "New post: " + e.Payload.Title,
		Body: fmt.Sprintf("%s\n\nRead it at %s\n\nYou receive this because you have an account on the blog.\n",
			e.Payload.Title, link),
	}
}
