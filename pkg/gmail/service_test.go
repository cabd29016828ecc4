package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
)

func b64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestGetHeader(t *testing.T) {
	headers := []*gmail.MessagePartHeader{
		{Name: "Subject", Value: "first"},
		{Name: "Subject", Value: "second"},
		{Name: "From", Value: "alice@example.com"},
	}

	assert.Equal(t, "first", getHeader(headers, "Subject"))
	assert.Equal(t, "alice@example.com", getHeader(headers, "From"))
	assert.Equal(t, "", getHeader(headers, "Date"))
	assert.Equal(t, "", getHeader(nil, "Subject"))
}

func TestExtractBody_PrefersPlainText(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<p>html</p>")}},
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("plain text")}},
		},
	}

	assert.Equal(t, "plain text", extractBody(payload))
}

func TestExtractBody_NestedPlainText(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("nested plain")}},
				},
			},
		},
	}

	assert.Equal(t, "nested plain", extractBody(payload))
}

func TestExtractBody_HTMLFallback(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<p>hello <b>world</b></p>")}},
		},
	}

	body := extractBody(payload)
	assert.Contains(t, body, "hello")
	assert.Contains(t, body, "world")
	assert.NotContains(t, body, "<p>")
}

func TestExtractBody_InlineBody(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: b64("inline body")},
	}
	assert.Equal(t, "inline body", extractBody(payload))

	htmlPayload := &gmail.MessagePart{
		MimeType: "text/html",
		Body:     &gmail.MessagePartBody{Data: b64("<p>inline html</p>")},
	}
	body := extractBody(htmlPayload)
	assert.Contains(t, body, "inline html")
	assert.NotContains(t, body, "<p>")
}

func TestExtractBody_Empty(t *testing.T) {
	assert.Equal(t, "", extractBody(nil))
	assert.Equal(t, "", extractBody(&gmail.MessagePart{MimeType: "text/plain"}))
}

func TestDecodeBody_PaddingVariants(t *testing.T) {
	raw := "padding test!"
	unpadded := base64.RawURLEncoding.EncodeToString([]byte(raw))
	padded := base64.URLEncoding.EncodeToString([]byte(raw))

	for _, input := range []string{unpadded, padded} {
		got, err := decodeBody(input)
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	}

	_, err := decodeBody("!!not base64!!")
	assert.Error(t, err)
}

// listServer serves paginated message list responses keyed by pageToken.
func listServer(t *testing.T, pages map[string]*gmail.ListMessagesResponse, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/messages") {
			http.NotFound(w, r)
			return
		}
		*calls++
		resp, ok := pages[r.URL.Query().Get("pageToken")]
		require.True(t, ok, "unexpected pageToken %q", r.URL.Query().Get("pageToken"))
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func messageRefs(prefix string, n int) []*gmail.Message {
	refs := make([]*gmail.Message, n)
	for i := range refs {
		refs[i] = &gmail.Message{Id: fmt.Sprintf("%s-%d", prefix, i)}
	}
	return refs
}

func TestListCandidateIDs_PaginatesToExhaustion(t *testing.T) {
	calls := 0
	ts := listServer(t, map[string]*gmail.ListMessagesResponse{
		"":   {Messages: messageRefs("a", 3), NextPageToken: "p2"},
		"p2": {Messages: messageRefs("b", 2)},
	}, &calls)
	defer ts.Close()

	svc := &Service{endpoint: ts.URL}
	ids, err := svc.ListCandidateIDs(context.Background(), "test-token", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"a-0", "a-1", "a-2", "b-0", "b-1"}, ids)
	assert.Equal(t, 2, calls)
}

func TestListCandidateIDs_LimitTruncates(t *testing.T) {
	calls := 0
	ts := listServer(t, map[string]*gmail.ListMessagesResponse{
		"": {Messages: messageRefs("a", 10), NextPageToken: "p2"},
	}, &calls)
	defer ts.Close()

	svc := &Service{endpoint: ts.URL}
	ids, err := svc.ListCandidateIDs(context.Background(), "test-token", 4)
	require.NoError(t, err)

	// truncated to the limit, pending pages never requested
	assert.Len(t, ids, 4)
	assert.Equal(t, 1, calls)
}

func TestListCandidateIDs_QueryUsesImportLabel(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&gmail.ListMessagesResponse{})
	}))
	defer ts.Close()

	svc := &Service{endpoint: ts.URL}
	_, err := svc.ListCandidateIDs(context.Background(), "test-token", 0)
	require.NoError(t, err)
	assert.Equal(t, "label:cosense", gotQuery)
}
