// Package gmail adapts the Gmail API as the sync pipeline's mail source.
package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jaytaylor/html2text"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	syncdomain "mailwiki-backend/internal/sync/domain"
)

const (
	// labelQuery selects the messages a user has tagged for import.
	labelQuery = "label:cosense"

	// Gmail API maximum per list request.
	maxResultsPerPage = 500

	defaultPageDelay = 200 * time.Millisecond
)

// Service implements domain.MailSource on top of the Gmail REST API.
type Service struct {
	// pageDelay spaces out list pagination to respect rate limits.
	pageDelay time.Duration

	// endpoint overrides the API base URL in tests.
	endpoint string
}

func NewService() *Service {
	return &Service{pageDelay: defaultPageDelay}
}

// newClient builds a Gmail client bound to one user's access token.
// Token refresh happens upstream; the token here is used as-is.
func (s *Service) newClient(ctx context.Context, accessToken string) (*gmail.Service, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})

	opts := []option.ClientOption{option.WithTokenSource(src)}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}

	srv, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return srv, nil
}

// ListCandidateIDs pages through all messages matching the import label
// and returns their IDs. When limit > 0 the list is truncated to limit
// and any remaining pages are discarded.
func (s *Service) ListCandidateIDs(ctx context.Context, accessToken string, limit int) ([]string, error) {
	srv, err := s.newClient(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	var ids []string
	pageToken := ""

	for {
		call := srv.Users.Messages.List("me").
			Q(labelQuery).
			MaxResults(maxResultsPerPage).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("unable to list messages: %w", err)
		}

		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}

		if limit > 0 && len(ids) >= limit {
			log.Printf("[Gmail] reached limit of %d messages, discarding pending pages", limit)
			return ids[:limit], nil
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return ids, nil
		}

		time.Sleep(s.pageDelay)
	}
}

// GetMessage fetches one message in full and extracts the headers and
// body the formatter needs. Returns (nil, nil) when Gmail reports the
// message no longer exists.
func (s *Service) GetMessage(ctx context.Context, accessToken, messageID string) (*syncdomain.Message, error) {
	srv, err := s.newClient(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	msg, err := srv.Users.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to retrieve message %s: %w", messageID, err)
	}

	var headers []*gmail.MessagePartHeader
	if msg.Payload != nil {
		headers = msg.Payload.Headers
	}

	return &syncdomain.Message{
		ID:           messageID,
		ThreadID:     msg.ThreadId,
		Subject:      getHeader(headers, "Subject"),
		From:         getHeader(headers, "From"),
		To:           getHeader(headers, "To"),
		Date:         getHeader(headers, "Date"),
		ReturnPath:   getHeader(headers, "Return-Path"),
		RFCMessageID: getHeader(headers, "Message-ID"),
		ReplyTo:      getHeader(headers, "Reply-To"),
		Body:         extractBody(msg.Payload),
	}, nil
}

func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, header := range headers {
		if header.Name == name {
			return header.Value
		}
	}
	return ""
}

// extractBody picks the message body to import: the first text/plain
// part found depth-first, else the first text/html part converted to
// text, else the inline body (converted when it is HTML itself).
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if len(payload.Parts) > 0 {
		if plain := findPart(payload.Parts, "text/plain"); plain != "" {
			return plain
		}
		if html := findPart(payload.Parts, "text/html"); html != "" {
			return htmlToText(html)
		}
	}

	if payload.Body != nil && payload.Body.Data != "" {
		data, err := decodeBody(payload.Body.Data)
		if err != nil {
			log.Printf("[Gmail] failed to decode inline body: %v", err)
			return ""
		}
		if payload.MimeType == "text/html" {
			return htmlToText(data)
		}
		return data
	}

	return ""
}

// findPart returns the decoded body of the first part with the given
// MIME type, scanning depth-first.
func findPart(parts []*gmail.MessagePart, mimeType string) string {
	for _, part := range parts {
		if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
			data, err := decodeBody(part.Body.Data)
			if err != nil {
				log.Printf("[Gmail] failed to decode %s part: %v", mimeType, err)
				continue
			}
			return data
		}
		if len(part.Parts) > 0 {
			if found := findPart(part.Parts, mimeType); found != "" {
				return found
			}
		}
	}
	return ""
}

// decodeBody handles Gmail's base64url bodies with or without padding.
func decodeBody(data string) (string, error) {
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded), nil
	}
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func htmlToText(content string) string {
	text, err := html2text.FromString(content, html2text.Options{TextOnly: true})
	if err != nil {
		log.Printf("[Gmail] failed to convert HTML body, keeping raw content: %v", err)
		return content
	}
	return text
}
