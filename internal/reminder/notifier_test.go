package reminder

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	tele "gopkg.in/telebot.v3"

	"jobtracker/internal/models"
)

type fakeSender struct {
	to   tele.Recipient
	text string
	opts []interface{}
	err  error
}

func (s *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.to = to
	s.text, _ = what.(string)
	s.opts = opts
	return &tele.Message{}, nil
}

func sampleMessage() Message {
	day := models.Date{Year: 2024, Month: time.May, Day: 1}
	apps := []models.ApplicationDetail{{
		Application: models.Application{Status: models.StatusApplied},
		Job:         models.JobLead{Company: "Acme-Co.", Title: "Engineer (Go)"},
	}}
	items := []models.FollowUpItem{{
		FollowUp: models.FollowUp{Note: "Send #2 sample!"},
		Company:  "Acme-Co.",
		Title:    "Engineer (Go)",
	}}
	return Compose("alice_w", day, apps, items)
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `a\_b\*c\[d\]\(e\)\.f\!`, EscapeMarkdown("a_b*c[d](e).f!"))
	assert.Equal(t, `back\\slash`, EscapeMarkdown(`back\slash`))
}

func TestTelegramNotifier(t *testing.T) {
	sender := &fakeSender{}
	n := NewTelegramNotifier(sender, zaptest.NewLogger(t))

	chatID := int64(4242)
	assert.False(t, n.Reachable(Recipient{UserID: 1}))
	zero := int64(0)
	assert.False(t, n.Reachable(Recipient{UserID: 1, TelegramChatID: &zero}))

	r := Recipient{UserID: 1, Username: "alice_w", TelegramChatID: &chatID}
	require.True(t, n.Reachable(r))
	require.NoError(t, n.Send(context.Background(), r, sampleMessage()))

	assert.Equal(t, tele.ChatID(4242), sender.to)
	assert.Contains(t, sender.opts, tele.ModeMarkdownV2)
	assert.Contains(t, sender.text, `Hello alice\_w\!`)
	assert.Contains(t, sender.text, `\- Acme\-Co\. — Engineer \(Go\) \(Applied\): No next action set`)
	assert.Contains(t, sender.text, `Send \#2 sample\!`)

	sender.err = errors.New("chat not found")
	assert.Error(t, n.Send(context.Background(), r, sampleMessage()))
}

func TestMailNotifierMessage(t *testing.T) {
	n := NewMailNotifier(MailConfig{Host: "smtp.example.com", Port: 587, From: "noreply@jobtracker.local"}, zaptest.NewLogger(t))

	assert.False(t, n.Reachable(Recipient{UserID: 1}))
	r := Recipient{UserID: 1, Username: "alice", Email: "alice@example.com"}
	require.True(t, n.Reachable(r))

	msg, err := n.message(r, sampleMessage())
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Subject: JobTracker follow-ups for May 01, 2024")
	assert.Contains(t, buf.String(), "alice@example.com")
	assert.Contains(t, buf.String(), "noreply@jobtracker.local")

	_, err = NewMailNotifier(MailConfig{From: "not an address"}, zaptest.NewLogger(t)).message(r, sampleMessage())
	assert.Error(t, err)
}
