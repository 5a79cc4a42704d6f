package email

// Config holds email transport configuration. The Postmark tokens are
// optional so development environments can run on the logging sender;
// sender and support addresses establish the from/reply-to identity for
// all outbound mail.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
}
