package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth indicates no valid access credential could be obtained.
	// It aborts the affected user's sync only.
	ErrAuth = errors.New("no valid access credential")

	// ErrAlreadyExists indicates the destination page is already
	// populated. The message is skipped and left unrecorded, so it is
	// re-checked on every run until the page disappears or empties.
	ErrAlreadyExists = errors.New("page already exists with content")
)

// ImportPhase identifies which half of the two-phase import failed.
type ImportPhase string

const (
	PhaseStage  ImportPhase = "stage"
	PhaseCommit ImportPhase = "commit"
)

// ImportError reports a failed stage or commit call against the
// destination store. A commit failure means the staged page may be
// partially visible; a stage failure means nothing was uploaded.
type ImportError struct {
	Phase  ImportPhase
	Status int
	Body   string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s failed with status %d: %s", e.Phase, e.Status, e.Body)
}
