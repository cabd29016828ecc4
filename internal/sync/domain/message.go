package domain

import "context"

// Message is a mail message fetched from the provider, headers extracted
// and body already MIME-decoded to plain text.
type Message struct {
	ID           string `json:"id"`
	ThreadID     string `json:"thread_id"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	From         string `json:"from"`
	To           string `json:"to"`
	Date         string `json:"date"`
	ReturnPath   string `json:"return_path,omitempty"`
	RFCMessageID string `json:"message_id,omitempty"`
	ReplyTo      string `json:"reply_to,omitempty"`
}

// Page is a destination document ready for import.
type Page struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// MailSource lists and fetches candidate messages from the mailbox provider.
type MailSource interface {
	// ListCandidateIDs returns message IDs matching the import label,
	// truncated to limit when limit > 0.
	ListCandidateIDs(ctx context.Context, accessToken string, limit int) ([]string, error)

	// GetMessage fetches a full message. Returns (nil, nil) when the
	// provider reports no such message.
	GetMessage(ctx context.Context, accessToken, messageID string) (*Message, error)
}

// Destination wraps the content store that receives imported pages.
type Destination interface {
	// PageExists probes for a page. Unexpected HTTP statuses count as
	// "does not exist"; only transport failures surface as errors.
	PageExists(ctx context.Context, sessionID, project, title string) (bool, error)

	// PageHasContent reports whether an existing page has a non-empty
	// description listing. A missing page has no content.
	PageHasContent(ctx context.Context, sessionID, project, title string) (bool, error)

	// ImportPage uploads and commits a single page. Failures carry an
	// *ImportError tagged with the phase that failed.
	ImportPage(ctx context.Context, sessionID, project string, page *Page) error
}
