package templates

import (
	"strings"
	"testing"
	"time"
)

func TestRender_Welcome(t *testing.T) {
	data := NewWelcomeData("amy", "a@x.com", WithAppName("Feed"))
	subject, text, html, err := Render(Welcome, data)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if subject != "Welcome to Feed, amy" {
		t.Fatalf("unexpected subject %q", subject)
	}
	if !strings.Contains(text, "a@x.com") {
		t.Fatalf("text missing recipient: %q", text)
	}
	if !strings.Contains(html, "<strong>a@x.com</strong>") {
		t.Fatalf("html missing recipient: %q", html)
	}
}

func TestRender_NewCommentEscapesHTML(t *testing.T) {
	data := NewCommentData("amy", "a@x.com", "bob", "<b>nice</b>", "hello", WithTime(time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)))
	subject, text, html, err := Render(NewComment, data)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if subject != "bob commented on your post" {
		t.Fatalf("unexpected subject %q", subject)
	}
	if !strings.Contains(text, "<b>nice</b>") {
		t.Fatalf("text body should carry the raw comment: %q", text)
	}
	if strings.Contains(html, "<b>nice</b>") {
		t.Fatalf("html body must escape the comment: %q", html)
	}
	if !strings.Contains(text, "02 January 2026, 03:04") {
		t.Fatalf("text missing time: %q", text)
	}
}

func TestExcerpt(t *testing.T) {
	if got := excerpt("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := excerpt("abcdefghij", 3); got != "abc…" {
		t.Fatalf("got %q", got)
	}
}
