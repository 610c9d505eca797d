package templates

import (
	"time"
	"unicode/utf8"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) { d.Time = t.UTC().Format("02 January 2006, 15:04") }
}

func WithAppName(name string) Option {
	return func(d *EmailData) { d.AppName = name }
}

func newBase(name, recipient string, opts ...Option) EmailData {
	d := EmailData{Name: name, RecipientEmail: recipient}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(name, email string, opts ...Option) map[string]any {
	return ToMap(newBase(name, email, opts...))
}

func NewCommentData(ownerName, ownerEmail, commenterName, commentText, postText string, opts ...Option) map[string]any {
	d := newBase(ownerName, ownerEmail, opts...)
	d.CommenterName = commenterName
	d.CommentText = commentText
	d.PostExcerpt = excerpt(postText, 80)
	return ToMap(d)
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
