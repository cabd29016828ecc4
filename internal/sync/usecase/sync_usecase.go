package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	authdomain "mailwiki-backend/internal/auth/domain"
	"mailwiki-backend/internal/sync/domain"
	"mailwiki-backend/internal/sync/formatter"
	"mailwiki-backend/internal/sync/repository"
)

const (
	defaultReconcileDelay = 200 * time.Millisecond
	defaultMessageDelay   = 1 * time.Second
)

// AccountService is the slice of the auth layer the sync run needs.
type AccountService interface {
	ListUsers() ([]authdomain.User, error)
	GetValidAccessToken(ctx context.Context, userID string) (string, error)
	GetUserConfig(userID string) (*authdomain.UserConfig, error)
}

// Notifier delivers the batch summary. Implementations must not fail
// the sync; delivery is fire and forget.
type Notifier interface {
	Notify(ctx context.Context, webhookURL, message string)
}

type syncUsecase struct {
	accounts AccountService
	records  repository.ImportRecordRepository
	mail     domain.MailSource
	dest     domain.Destination
	notifier Notifier

	batchLimit int

	// reconcileDelay spaces out page existence probes, messageDelay
	// spaces out imports. Both respect destination rate limits.
	reconcileDelay time.Duration
	messageDelay   time.Duration
}

func NewSyncUsecase(accounts AccountService, records repository.ImportRecordRepository, mail domain.MailSource, dest domain.Destination, notifier Notifier, batchLimit int) SyncUsecase {
	return &syncUsecase{
		accounts:       accounts,
		records:        records,
		mail:           mail,
		dest:           dest,
		notifier:       notifier,
		batchLimit:     batchLimit,
		reconcileDelay: defaultReconcileDelay,
		messageDelay:   defaultMessageDelay,
	}
}

func (s *syncUsecase) RunSync(ctx context.Context) *domain.BatchResult {
	users, err := s.accounts.ListUsers()
	if err != nil {
		log.Printf("[Sync] failed to list users: %v", err)
		return &domain.BatchResult{
			Success: false,
			Error:   "failed to process batch sync",
			Details: err.Error(),
		}
	}

	results := make([]domain.SyncResult, 0, len(users))
	var importedPages []string

	for _, user := range users {
		result, pages := s.syncUser(ctx, user.ID)
		results = append(results, result)
		importedPages = append(importedPages, pages...)
	}

	batch := &domain.BatchResult{
		Success:    true,
		Message:    "Batch processing completed",
		Results:    results,
		TotalUsers: len(results),
	}

	s.notifySummary(ctx, batch, importedPages)
	return batch
}

// syncUser runs reconciliation and import for one user. It never
// returns an error; failures land in the result so one broken account
// cannot abort the batch.
func (s *syncUsecase) syncUser(ctx context.Context, userID string) (domain.SyncResult, []string) {
	result := domain.SyncResult{UserID: userID}

	cfg, err := s.accounts.GetUserConfig(userID)
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}
	if cfg == nil || cfg.CosenseProjectName == "" || cfg.CosenseSessionID == "" {
		result.Message = "Destination not configured"
		return result, nil
	}

	accessToken, err := s.accounts.GetValidAccessToken(ctx, userID)
	if err != nil || accessToken == "" {
		log.Printf("[Sync] no valid access token for user %s: %v", userID, err)
		result.Error = domain.ErrAuth.Error()
		return result, nil
	}

	log.Printf("[Sync] processing user %s", userID)

	records, err := s.records.List(ctx, userID)
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}

	result.DeletedPages = s.reconcile(ctx, userID, cfg, records)

	backlog, err := s.backlog(ctx, accessToken, records)
	if err != nil {
		log.Printf("[Sync] failed to list messages for user %s: %v", userID, err)
		result.Error = err.Error()
		return result, nil
	}

	if len(backlog) == 0 && result.DeletedPages == 0 {
		log.Printf("[Sync] no new messages for user %s", userID)
		result.Message = "No new emails found"
		return result, nil
	}

	log.Printf("[Sync] found %d new or re-processable messages for user %s", len(backlog), userID)

	var importedPages []string
	for _, messageID := range backlog {
		title, err := s.processMessage(ctx, userID, accessToken, cfg, messageID)
		if err == errMessageGone {
			// Never counted as processed; the record stays absent.
			continue
		}
		result.Processed++
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				log.Printf("[Sync] message %s already has a page with content, skipping", messageID)
			} else {
				log.Printf("[Sync] failed to import message %s: %v", messageID, err)
			}
		} else {
			result.Successful++
			importedPages = append(importedPages, pageURL(cfg.CosenseProjectName, title))
		}
		time.Sleep(s.messageDelay)
	}

	result.Failed = result.Processed - result.Successful
	result.Message = fmt.Sprintf("Processed %d emails, %d successful, %d deleted pages cleaned up",
		result.Processed, result.Successful, result.DeletedPages)
	return result, importedPages
}

// reconcile drops records whose destination page has disappeared, so
// the messages become importable again in the same run. Probe failures
// keep the record; a flaky probe must not trigger a re-import.
func (s *syncUsecase) reconcile(ctx context.Context, userID string, cfg *authdomain.UserConfig, records map[string]domain.ImportRecord) int {
	deleted := 0
	for messageID, record := range records {
		exists, err := s.dest.PageExists(ctx, cfg.CosenseSessionID, cfg.CosenseProjectName, record.PageTitle)
		if err != nil {
			log.Printf("[Sync] failed to probe page %q, keeping record: %v", record.PageTitle, err)
			continue
		}
		if !exists {
			log.Printf("[Sync] page %q no longer exists, removing record", record.PageTitle)
			if err := s.records.Remove(ctx, userID, messageID); err != nil {
				log.Printf("[Sync] failed to remove record for message %s: %v", messageID, err)
				continue
			}
			delete(records, messageID)
			deleted++
		}
		time.Sleep(s.reconcileDelay)
	}
	return deleted
}

// backlog lists candidate messages and filters out those that already
// have a live record, preserving the provider's ordering.
func (s *syncUsecase) backlog(ctx context.Context, accessToken string, records map[string]domain.ImportRecord) ([]string, error) {
	ids, err := s.mail.ListCandidateIDs(ctx, accessToken, s.batchLimit)
	if err != nil {
		return nil, err
	}

	backlog := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, imported := records[id]; !imported {
			backlog = append(backlog, id)
		}
	}
	return backlog, nil
}

// errMessageGone marks a candidate whose message vanished between
// listing and fetching. Internal to processMessage and its caller.
var errMessageGone = errors.New("message no longer retrievable")

func (s *syncUsecase) processMessage(ctx context.Context, userID, accessToken string, cfg *authdomain.UserConfig, messageID string) (string, error) {
	msg, err := s.mail.GetMessage(ctx, accessToken, messageID)
	if err != nil {
		return "", err
	}
	if msg == nil {
		log.Printf("[Sync] could not retrieve content for message %s", messageID)
		return "", errMessageGone
	}

	page := formatter.FormatPage(msg)

	if err := s.importPage(ctx, cfg, page); err != nil {
		return "", err
	}

	if err := s.records.Put(ctx, userID, messageID, page.Title); err != nil {
		// The page is live; the precheck prevents a duplicate next run.
		log.Printf("[Sync] imported message %s but failed to save record: %v", messageID, err)
	}

	log.Printf("[Sync] successfully imported message %s: %s", messageID, msg.Subject)
	return page.Title, nil
}

// importPage checks the destination before uploading so a page the
// user already wrote is never overwritten.
func (s *syncUsecase) importPage(ctx context.Context, cfg *authdomain.UserConfig, page *domain.Page) error {
	exists, err := s.dest.PageExists(ctx, cfg.CosenseSessionID, cfg.CosenseProjectName, page.Title)
	if err != nil {
		return err
	}
	if exists {
		hasContent, err := s.dest.PageHasContent(ctx, cfg.CosenseSessionID, cfg.CosenseProjectName, page.Title)
		if err != nil {
			// A failed probe falls through to the import; staging
			// overwrites empty pages only when the probe said so, and
			// a populated page import is rejected by the precheck on
			// the next run at the latest.
			log.Printf("[Sync] failed to check content of page %q: %v", page.Title, err)
		} else if hasContent {
			return domain.ErrAlreadyExists
		}
	}

	return s.dest.ImportPage(ctx, cfg.CosenseSessionID, cfg.CosenseProjectName, page)
}

func (s *syncUsecase) notifySummary(ctx context.Context, batch *domain.BatchResult, importedPages []string) {
	webhookURL := s.findWebhook()
	if webhookURL == "" {
		return
	}

	var b strings.Builder
	b.WriteString("Gmail sync completed successfully!\n\nResults:\n")
	for _, r := range batch.Results {
		line := r.Message
		if line == "" {
			line = r.Error
		}
		if line == "" {
			line = "Processing completed"
		}
		fmt.Fprintf(&b, "User %s: %s\n", r.UserID, line)
	}
	fmt.Fprintf(&b, "\nTotal users processed: %d\n", batch.TotalUsers)
	if len(importedPages) > 0 {
		b.WriteString("\nImported Pages:\n")
		b.WriteString(strings.Join(importedPages, "\n"))
	}

	s.notifier.Notify(ctx, webhookURL, b.String())
}

// findWebhook returns the first configured Discord webhook. The
// summary is a single shared channel, not per-user fan-out.
func (s *syncUsecase) findWebhook() string {
	users, err := s.accounts.ListUsers()
	if err != nil {
		return ""
	}
	for _, user := range users {
		cfg, err := s.accounts.GetUserConfig(user.ID)
		if err != nil || cfg == nil {
			continue
		}
		if cfg.DiscordWebhookURL != "" {
			return cfg.DiscordWebhookURL
		}
	}
	return ""
}

func pageURL(project, title string) string {
	return fmt.Sprintf("https://scrapbox.io/%s/%s", project, url.PathEscape(title))
}
