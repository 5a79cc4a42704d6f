package email

import (
	"context"
	"log/slog"
)

// DevSender implements Sender for environments without a mail transport:
// messages are logged instead of delivered, matching the behavior of
// running trial notifications before Postmark is configured.
type DevSender struct {
	log *slog.Logger
}

// NewDevSender returns a Sender that logs messages through the given
// logger (slog.Default when nil).
func NewDevSender(log *slog.Logger) Sender {
	if log == nil {
		log = slog.Default()
	}
	return &DevSender{log: log}
}

func (d *DevSender) SendEmail(ctx context.Context, params SendParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	d.log.InfoContext(ctx, "email (dev sender, not delivered)",
		slog.String("send_to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag))
	return nil
}
