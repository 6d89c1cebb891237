package mail

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Mailer delivers account emails.
type Mailer interface {
	SendVerification(ctx context.Context, to, username, link string) error
}

// LogMailer writes messages to the log instead of sending them. Handy in
// development where the verification link can be copied from the output.
type LogMailer struct {
	logger *logrus.Logger
}

func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendVerification(_ context.Context, to, username, link string) error {
	m.logger.WithFields(logrus.Fields{
		"to":       to,
		"username": username,
		"link":     link,
	}).Info("verification email")
	return nil
}

// Message is a delivered email captured by Recorder.
type Message struct {
	To       string
	Username string
	Link     string
}

// Recorder keeps every message in memory; tests use it to pull links back out.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) SendVerification(_ context.Context, to, username, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{To: to, Username: username, Link: link})
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}
