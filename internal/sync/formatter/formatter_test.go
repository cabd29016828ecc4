package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailwiki-backend/internal/sync/domain"
)

func testMessage() *domain.Message {
	return &domain.Message{
		ID:      "msg-123",
		Subject: "Weekly report",
		Body:    "Hello\r\nWorld",
		From:    "Alice <alice@example.com>",
		To:      "bob@example.com",
		Date:    "2024-03-05T09:30:00",
	}
}

func TestFormatPage_TitleAndStructure(t *testing.T) {
	page := FormatPage(testMessage())

	assert.Equal(t, "(📮Email) | Weekly report", page.Title)
	require.NotEmpty(t, page.Lines)

	// title line, blank, then metadata block
	assert.Equal(t, page.Title, page.Lines[0])
	assert.Equal(t, "", page.Lines[1])
	assert.Equal(t, "[📧 Gmailで開く https://mail.google.com/mail/u/0/#inbox/msg-123]", page.Lines[2])
	assert.Equal(t, "", page.Lines[3])
	assert.Equal(t, "code:metadata.md", page.Lines[4])

	// footer tag preceded by a blank line
	assert.Equal(t, "#Eメールからの自動インポート", page.Lines[len(page.Lines)-1])
	assert.Equal(t, "", page.Lines[len(page.Lines)-2])

	// CRLF body split into separate lines, none containing a newline
	assert.Contains(t, page.Lines, "Hello")
	assert.Contains(t, page.Lines, "World")
	for _, line := range page.Lines {
		assert.NotContains(t, line, "\n")
		assert.NotContains(t, line, "\r")
	}
}

func TestFormatPage_MetadataLabels(t *testing.T) {
	page := FormatPage(testMessage())
	joined := strings.Join(page.Lines, "\n")

	assert.Contains(t, joined, " From:    Alice <alice@example.com>")
	assert.Contains(t, joined, " To:      bob@example.com")
	assert.Contains(t, joined, " 日付:    2024/03/05 09:30")
	assert.Contains(t, joined, " 件名:    Weekly report")
	assert.NotContains(t, joined, "送信元")
	assert.NotContains(t, joined, "返信先")
	assert.NotContains(t, joined, "Message-ID")
}

func TestFormatPage_OptionalMetadata(t *testing.T) {
	msg := testMessage()
	msg.ReturnPath = "<bounce@mail.example.com>"
	msg.ReplyTo = "support@example.com"
	msg.RFCMessageID = "<abc@mail.example.com>"

	page := FormatPage(msg)
	joined := strings.Join(page.Lines, "\n")

	assert.Contains(t, joined, " 送信元:  mail.example.com")
	assert.Contains(t, joined, " 返信先:  support@example.com")
	assert.Contains(t, joined, " Message-ID: <abc@mail.example.com>")
}

func TestFormatPage_ReplyToMatchingFromOmitted(t *testing.T) {
	msg := testMessage()
	msg.ReplyTo = msg.From

	page := FormatPage(msg)
	assert.NotContains(t, strings.Join(page.Lines, "\n"), "返信先")
}

func TestSenderDomain(t *testing.T) {
	assert.Equal(t, "mail.example.com", senderDomain("<bounce@mail.example.com>"))
	assert.Equal(t, "example.com", senderDomain("bounce@example.com"))
	// no @ falls back to raw value
	assert.Equal(t, "not-an-address", senderDomain("not-an-address"))
}

func TestEscapeBrackets(t *testing.T) {
	assert.Equal(t, "see `[`this link`]` now", escapeBrackets("see [this link] now"))
	assert.Equal(t, "`[`a`]` and `[`b`]`", escapeBrackets("[a] and [b]"))
	assert.Equal(t, "`[``]`", escapeBrackets("[]"))
	assert.Equal(t, "no brackets", escapeBrackets("no brackets"))
}

func TestFormatPage_EscapesBodyOnly(t *testing.T) {
	msg := testMessage()
	msg.Body = "see [this link] now"

	page := FormatPage(msg)

	assert.Contains(t, page.Lines, "see `[`this link`]` now")
	// the Gmail deep link line keeps its real brackets
	assert.Equal(t, "[📧 Gmailで開く https://mail.google.com/mail/u/0/#inbox/msg-123]", page.Lines[2])
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2024/03/05 09:30", formatDate("2024-03-05T09:30:00"))

	// RFC 5322 header dates parse and keep their offset's wall time in
	// local terms; just assert the shape here.
	got := formatDate("Tue, 5 Mar 2024 09:30:00 +0000")
	assert.Regexp(t, `^\d{4}/\d{2}/\d{2} \d{2}:\d{2}$`, got)

	// unparseable values pass through unchanged
	assert.Equal(t, "not a date", formatDate("not a date"))
	assert.Equal(t, "", formatDate(""))
}
