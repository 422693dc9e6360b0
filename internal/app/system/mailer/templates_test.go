package mailer

import (
	"strings"
	"testing"
)

func TestBuildInviteEmail(t *testing.T) {
	email := BuildInviteEmail(InviteEmailData{
		SiteName:    "CourseLoop",
		CourseTitle: "Intro to Go",
		Subject:     "Join my course",
		Text:        "We start next week.",
		JoinURL:     "http://localhost:3000/courses/abc123",
	})

	if email.Subject != "Join my course" {
		t.Errorf("subject: got %q, want instructor-provided subject", email.Subject)
	}
	for _, want := range []string{"Intro to Go", "We start next week.", "http://localhost:3000/courses/abc123"} {
		if !strings.Contains(email.TextBody, want) {
			t.Errorf("text body missing %q:\n%s", want, email.TextBody)
		}
		if !strings.Contains(email.HTMLBody, want) {
			t.Errorf("html body missing %q", want)
		}
	}
}

func TestBuildInviteEmail_DefaultSubject(t *testing.T) {
	email := BuildInviteEmail(InviteEmailData{
		SiteName:    "CourseLoop",
		CourseTitle: "Intro to Go",
		JoinURL:     "http://localhost:3000/courses/abc123",
	})

	if !strings.Contains(email.Subject, "Intro to Go") || !strings.Contains(email.Subject, "CourseLoop") {
		t.Errorf("default subject: got %q", email.Subject)
	}
	// No instructor text block when none was provided.
	if strings.Contains(email.TextBody, "\n\n\n") {
		t.Errorf("text body has empty paragraph:\n%q", email.TextBody)
	}
}

func TestBuildInviteEmail_HTMLEscaped(t *testing.T) {
	email := BuildInviteEmail(InviteEmailData{
		SiteName:    "CourseLoop",
		CourseTitle: `<script>alert("x")</script>`,
		JoinURL:     "http://localhost:3000/courses/abc123",
	})

	if strings.Contains(email.HTMLBody, "<script>") {
		t.Error("course title not escaped in HTML body")
	}
}
