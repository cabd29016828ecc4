// Package formatter converts mail messages into Cosense page content.
// It is pure: no I/O, deterministic output for a given message.
package formatter

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"mailwiki-backend/internal/sync/domain"
)

const (
	// TitlePrefix marks imported pages and doubles as their namespace.
	TitlePrefix = "(📮Email) | "

	footerTag       = "#Eメールからの自動インポート"
	gmailLinkFormat = "https://mail.google.com/mail/u/0/#inbox/%s"
	dateLayout      = "2006/01/02 15:04"
)

var (
	// Bracketed spans would render as Cosense links; wrap the brackets
	// in code ticks so they display literally.
	bracketPattern = regexp.MustCompile(`\[([^\]]*)\]`)

	// Domain part of a Return-Path like "<bounce@mail.example.com>".
	returnDomainPattern = regexp.MustCompile(`@([^>]+)`)
)

// PageTitle derives the destination page title for a message. Messages
// with identical subjects collide on the same title; the orchestrator's
// already-exists check keeps the second import from overwriting the first.
func PageTitle(msg *domain.Message) string {
	return TitlePrefix + msg.Subject
}

// FormatPage builds the complete import payload for one message:
// title line, metadata block, escaped body lines and the footer tag.
func FormatPage(msg *domain.Message) *domain.Page {
	title := PageTitle(msg)

	lines := make([]string, 0, len(msg.Body)/40+16)
	lines = append(lines, title, "")
	lines = append(lines, metadataLines(msg)...)
	lines = append(lines, bodyLines(msg.Body)...)
	lines = append(lines, "", footerTag)

	return &domain.Page{Title: title, Lines: lines}
}

func metadataLines(msg *domain.Message) []string {
	lines := []string{
		fmt.Sprintf("[📧 Gmailで開く "+gmailLinkFormat+"]", msg.ID),
		"",
		"code:metadata.md",
		" From:    " + msg.From,
		" To:      " + msg.To,
		" 日付:    " + formatDate(msg.Date),
		" 件名:    " + msg.Subject,
	}

	if msg.ReturnPath != "" {
		lines = append(lines, " 送信元:  "+senderDomain(msg.ReturnPath))
	}
	if msg.ReplyTo != "" && msg.ReplyTo != msg.From {
		lines = append(lines, " 返信先:  "+msg.ReplyTo)
	}
	if msg.RFCMessageID != "" {
		lines = append(lines, " Message-ID: "+msg.RFCMessageID)
	}

	return append(lines, "")
}

func bodyLines(body string) []string {
	escaped := escapeBrackets(body)
	return strings.Split(strings.ReplaceAll(escaped, "\r\n", "\n"), "\n")
}

func escapeBrackets(text string) string {
	return bracketPattern.ReplaceAllString(text, "`[`$1`]`")
}

func senderDomain(returnPath string) string {
	if m := returnDomainPattern.FindStringSubmatch(returnPath); m != nil {
		return m[1]
	}
	return returnPath
}

// naiveDateLayouts cover date strings without zone information; those
// are formatted as-is rather than shifted to local time.
var naiveDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// formatDate reformats a parseable date header to "YYYY/MM/DD HH:MM" in
// local time. Unparseable values pass through verbatim.
func formatDate(raw string) string {
	if t, err := mail.ParseDate(raw); err == nil {
		return t.Local().Format(dateLayout)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Local().Format(dateLayout)
	}
	for _, layout := range naiveDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(dateLayout)
		}
	}
	return raw
}
