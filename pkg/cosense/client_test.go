package cosense

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncdomain "mailwiki-backend/internal/sync/domain"
)

const testSession = "s%3Atest-session"

func testClient(ts *httptest.Server) *Client {
	return NewClientWithBaseURL(ts.URL)
}

func TestPageExists(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{"existing page", http.StatusOK, true},
		{"missing page", http.StatusNotFound, false},
		{"server error treated as missing", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotCookie string
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.EscapedPath()
				if c, err := r.Cookie("connect.sid"); err == nil {
					gotCookie = c.Value
				}
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			exists, err := testClient(ts).PageExists(context.Background(), testSession, "my-project", "(📮Email) | Hello")
			require.NoError(t, err)
			assert.Equal(t, tt.want, exists)
			assert.Equal(t, "/api/pages/my-project/%28%F0%9F%93%AEEmail%29%20%7C%20Hello/text", gotPath)
			assert.Equal(t, testSession, gotCookie)
		})
	}
}

func TestPageExists_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	_, err := testClient(ts).PageExists(context.Background(), testSession, "proj", "title")
	assert.Error(t, err)
}

func TestPageHasContent(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		descriptions []string
		want         bool
		wantErr      bool
	}{
		{"page with content", http.StatusOK, []string{"line one"}, true, false},
		{"empty page", http.StatusOK, nil, false, false},
		{"missing page", http.StatusNotFound, nil, false, false},
		{"server error", http.StatusInternalServerError, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.status == http.StatusOK {
					_ = json.NewEncoder(w).Encode(map[string]any{"descriptions": tt.descriptions})
				}
			}))
			defer ts.Close()

			hasContent, err := testClient(ts).PageHasContent(context.Background(), testSession, "proj", "title")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, hasContent)
		})
	}
}

// importServer fakes the users/me, stage and commit endpoints.
type importServer struct {
	*httptest.Server

	stageCalls  int
	commitCalls int

	stageStatus   int
	commitStatus  int
	commitMessage string

	gotCSRF      string
	gotField     string
	gotFilename  string
	stagedImport struct {
		Pages []syncdomain.Page `json:"pages"`
	}
}

func newImportServer(t *testing.T) *importServer {
	t.Helper()
	s := &importServer{
		stageStatus:   http.StatusOK,
		commitStatus:  http.StatusOK,
		commitMessage: "success",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/me", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("connect.sid"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"csrfToken": "csrf-123"})
	})
	mux.HandleFunc("/api/page-data/import/proj.json", func(w http.ResponseWriter, r *http.Request) {
		s.stageCalls++
		s.gotCSRF = r.Header.Get("X-CSRF-TOKEN")

		file, header, err := r.FormFile("import-file")
		if err == nil {
			s.gotField = "import-file"
			s.gotFilename = header.Filename
			require.NoError(t, json.NewDecoder(file).Decode(&s.stagedImport))
			file.Close()
		}
		w.WriteHeader(s.stageStatus)
	})
	mux.HandleFunc("/api/page-data/import-finish/proj.json", func(w http.ResponseWriter, r *http.Request) {
		s.commitCalls++
		w.WriteHeader(s.commitStatus)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": s.commitMessage})
	})

	s.Server = httptest.NewServer(mux)
	return s
}

func TestImportPage_Success(t *testing.T) {
	srv := newImportServer(t)
	defer srv.Close()

	page := &syncdomain.Page{Title: "Hello", Lines: []string{"Hello", "", "world"}}
	err := testClient(srv.Server).ImportPage(context.Background(), testSession, "proj", page)
	require.NoError(t, err)

	assert.Equal(t, 1, srv.stageCalls)
	assert.Equal(t, 1, srv.commitCalls)
	assert.Equal(t, "csrf-123", srv.gotCSRF)
	assert.Equal(t, "import-file", srv.gotField)
	assert.Equal(t, "import.json", srv.gotFilename)
	require.Len(t, srv.stagedImport.Pages, 1)
	assert.Equal(t, *page, srv.stagedImport.Pages[0])
}

func TestImportPage_StageFailureSkipsCommit(t *testing.T) {
	srv := newImportServer(t)
	defer srv.Close()
	srv.stageStatus = http.StatusBadRequest

	err := testClient(srv.Server).ImportPage(context.Background(), testSession, "proj", &syncdomain.Page{Title: "x"})
	require.Error(t, err)

	var importErr *syncdomain.ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, syncdomain.PhaseStage, importErr.Phase)
	assert.Equal(t, http.StatusBadRequest, importErr.Status)
	assert.Equal(t, 0, srv.commitCalls)
}

func TestImportPage_CommitRejection(t *testing.T) {
	srv := newImportServer(t)
	defer srv.Close()
	srv.commitMessage = "import in progress"

	err := testClient(srv.Server).ImportPage(context.Background(), testSession, "proj", &syncdomain.Page{Title: "x"})
	require.Error(t, err)

	var importErr *syncdomain.ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, syncdomain.PhaseCommit, importErr.Phase)
	assert.Equal(t, 1, srv.stageCalls)
	assert.Equal(t, 1, srv.commitCalls)
}

func TestImportPage_StaleSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	err := testClient(ts).ImportPage(context.Background(), testSession, "proj", &syncdomain.Page{Title: "x"})
	assert.True(t, errors.Is(err, syncdomain.ErrAuth))
}
