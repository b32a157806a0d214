package reminder

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// MailNotifier sends the digest as a plain text email over SMTP.
type MailNotifier struct {
	cfg    MailConfig
	logger *zap.Logger
}

func NewMailNotifier(cfg MailConfig, logger *zap.Logger) *MailNotifier {
	return &MailNotifier{cfg: cfg, logger: logger}
}

func (n *MailNotifier) Reachable(r Recipient) bool {
	return r.Email != ""
}

func (n *MailNotifier) Send(ctx context.Context, r Recipient, m Message) error {
	msg, err := n.message(r, m)
	if err != nil {
		return err
	}

	client, err := n.client()
	if err != nil {
		return err
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", r.Email, err)
	}

	n.logger.Debug("digest mail sent",
		zap.Int64("user_id", r.UserID),
		zap.String("subject", m.Subject),
	)
	return nil
}

func (n *MailNotifier) message(r Recipient, m Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("set mail sender: %w", err)
	}
	if err := msg.To(r.Email); err != nil {
		return nil, fmt.Errorf("set mail recipient: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)
	return msg, nil
}

func (n *MailNotifier) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}

	client, err := mail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	return client, nil
}
