package notification

import (
	"fmt"
	"html"
	"time"
)

// reminderTemplate holds the copy for one reminder threshold.
type reminderTemplate struct {
	subject string
	intro   string
}

var reminderTemplates = map[int]reminderTemplate{
	3: {
		subject: "Your EnvioExpress trial ends in 3 days",
		intro:   "Your free trial ends in 3 days, on %s.",
	},
	1: {
		subject: "Your EnvioExpress trial ends tomorrow",
		intro:   "Your free trial ends tomorrow, on %s.",
	},
	0: {
		subject: "Your EnvioExpress trial ends today",
		intro:   "Your free trial ends today.",
	},
}

// renderReminder builds the subject and HTML body for a threshold. The
// recipient name falls back to the company name, then to a generic
// greeting, mirroring how owner records are filled in during signup.
func renderReminder(threshold int, rcpt Recipient, trialEndsAt time.Time) (subject, bodyHTML string, ok bool) {
	tpl, ok := reminderTemplates[threshold]
	if !ok {
		return "", "", false
	}

	name := rcpt.Name
	if name == "" {
		name = rcpt.CompanyName
	}
	greeting := "Hello"
	if name != "" {
		greeting = fmt.Sprintf("Hello %s", html.EscapeString(name))
	}

	intro := tpl.intro
	if threshold > 0 {
		intro = fmt.Sprintf(tpl.intro, trialEndsAt.Format("02/01/2006"))
	}

	bodyHTML = fmt.Sprintf(
		"<p>%s,</p>"+
			"<p>Thanks for trying EnvioExpress. %s</p>"+
			"<p>To keep sending campaigns without interruption, pick a plan before your trial ends. "+
			"If you do nothing, your account will move to the Free plan and its limits.</p>"+
			"<p>The EnvioExpress team</p>",
		greeting, intro)

	return tpl.subject, bodyHTML, true
}
