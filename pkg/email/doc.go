// Package email provides the transactional email transport used for trial
// reminder notifications: a Sender interface with a Postmark-backed
// implementation for production and a logging DevSender for environments
// where no transport is wired.
package email
