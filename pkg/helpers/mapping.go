package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/go-social-feed/pkg/mailer"
)

// EnsureRecipient fills RecipientEmail from job.To when the producer left it out.
func EnsureRecipient(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

// EnsureAppName stamps the application name used in subjects and footers.
func EnsureAppName(job *mailer.EmailJob, appName string) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["AppName"]; !ok || strings.TrimSpace(fmt.Sprintf("%v", v)) == "" {
		job.Data["AppName"] = appName
	}
}
