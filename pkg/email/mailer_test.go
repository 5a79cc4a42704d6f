package email_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envioexpress/platform/pkg/email"
)

func validParams() email.SendParams {
	return email.SendParams{
		SendTo:   "owner@example.com",
		Subject:  "Your trial ends soon",
		BodyHTML: "<p>Hi</p>",
		Tag:      "trial-reminder",
	}
}

func TestSendParamsValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid params pass", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validParams().Validate())
	})

	t.Run("rejects bad recipient", func(t *testing.T) {
		t.Parallel()
		p := validParams()
		p.SendTo = "not-an-email"
		assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})

	t.Run("rejects empty subject", func(t *testing.T) {
		t.Parallel()
		p := validParams()
		p.Subject = ""
		assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})

	t.Run("rejects empty body", func(t *testing.T) {
		t.Parallel()
		p := validParams()
		p.BodyHTML = ""
		assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})
}

func TestDevSender(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sender := email.NewDevSender(nil)
	require.NoError(t, sender.SendEmail(ctx, validParams()))

	bad := validParams()
	bad.SendTo = ""
	assert.ErrorIs(t, sender.SendEmail(ctx, bad), email.ErrInvalidParams)
}

func TestNewPostmarkClient(t *testing.T) {
	t.Parallel()

	t.Run("requires tokens and addresses", func(t *testing.T) {
		t.Parallel()
		_, err := email.NewPostmarkClient(email.Config{})
		assert.ErrorIs(t, err, email.ErrInvalidConfig)

		_, err = email.NewPostmarkClient(email.Config{
			PostmarkServerToken:  "server",
			PostmarkAccountToken: "account",
			SenderEmail:          "noreply@example.com",
			SupportEmail:         "not-an-email",
		})
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("valid config builds a sender", func(t *testing.T) {
		t.Parallel()
		sender, err := email.NewPostmarkClient(email.Config{
			PostmarkServerToken:  "server",
			PostmarkAccountToken: "account",
			SenderEmail:          "noreply@example.com",
			SupportEmail:         "support@example.com",
		})
		require.NoError(t, err)
		assert.NotNil(t, sender)
	})
}
