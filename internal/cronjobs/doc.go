// Package cronjobs runs the in-process daily scheduler for trial
// maintenance: expiring finished trials and sending expiry reminders.
package cronjobs
