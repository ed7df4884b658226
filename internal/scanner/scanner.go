// Package scanner drives the per-account mailbox scan:
// connect, search, fetch, extract, reconcile, mark read.
package scanner

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"

	"parcel-code-relay-go/internal/config"
	"parcel-code-relay-go/internal/extract"
	"parcel-code-relay-go/internal/metrics"
	"parcel-code-relay-go/internal/reconcile"
	"parcel-code-relay-go/internal/registry"
)

// CycleStats aggregates the per-account outcomes of one scan cycle.
// Accounts fail independently; a failed account only increments
// FailedAccounts and never aborts its siblings.
type CycleStats struct {
	Accounts       int
	FailedAccounts int
	Messages       int
	Settled        int
}

// Scanner scans all configured mailbox accounts for carrier emails
type Scanner struct {
	accounts []config.MailboxConfig
	cfg      *config.ScannerConfig
	engine   *reconcile.Engine
	registry *registry.Registry
	metrics  *metrics.Metrics
}

// NewScanner creates a new mailbox scanner
func NewScanner(accounts []config.MailboxConfig, cfg *config.ScannerConfig, engine *reconcile.Engine, reg *registry.Registry, m *metrics.Metrics) *Scanner {
	m.ConfiguredAccounts.Set(float64(len(accounts)))

	return &Scanner{
		accounts: accounts,
		cfg:      cfg,
		engine:   engine,
		registry: reg,
		metrics:  m,
	}
}

// ScanAll scans every configured account with bounded concurrency and
// returns the aggregate cycle outcome.
func (s *Scanner) ScanAll(ctx context.Context) CycleStats {
	stats := CycleStats{Accounts: len(s.accounts)}

	sem := make(chan struct{}, s.cfg.MaxConcurrentAccounts)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, account := range s.accounts {
		account := account
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			messages, settled, err := s.scanAccount(ctx, account)

			mu.Lock()
			stats.Messages += messages
			stats.Settled += settled
			if err != nil {
				stats.FailedAccounts++
			}
			mu.Unlock()

			if err != nil {
				s.metrics.AccountFailures.Inc()
				logrus.Errorf("Scan of account %s failed: %v", account.Address, err)
			}
		}()
	}

	wg.Wait()
	return stats
}

// scanAccount runs one account's scan to completion. Any connection or
// authentication error ends this account's cycle; nothing half-applied
// is left behind because the registry stamps are the per-message commit
// points and marking-as-read happens only after the whole batch.
func (s *Scanner) scanAccount(ctx context.Context, account config.MailboxConfig) (messages, settled int, err error) {
	dialer := &net.Dialer{Timeout: s.cfg.AccountTimeout}
	c, err := client.DialWithDialerTLS(dialer, account.Addr(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to connect to %s: %w", account.Addr(), err)
	}
	c.Timeout = s.cfg.AccountTimeout
	defer c.Logout()

	if err := c.Login(account.Address, account.Password); err != nil {
		return 0, 0, fmt.Errorf("failed to login as %s: %w", account.Address, err)
	}

	if _, err := c.Select("INBOX", false); err != nil {
		return 0, 0, fmt.Errorf("failed to select INBOX: %w", err)
	}

	// Search by date window rather than the unread flag: providers are
	// slow to settle flag state and an unread-only search silently
	// misses messages.
	criteria := imap.NewSearchCriteria()
	criteria.Since = time.Now().AddDate(0, 0, -s.cfg.LookbackDays)

	seqNums, err := c.Search(criteria)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to search messages: %w", err)
	}
	if len(seqNums) == 0 {
		return 0, 0, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNums...)

	// Peek keeps the fetch from setting \Seen; read state is decided
	// per message after reconciliation.
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	msgs := make(chan *imap.Message, len(seqNums))
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, msgs)
	}()

	settledSet := new(imap.SeqSet)

	for msg := range msgs {
		if !s.fromKnownSender(msg.Envelope) {
			continue
		}

		messages++
		s.metrics.MessagesScanned.Inc()

		outcome := s.processMessage(ctx, account, msg, section)
		if outcome.Settled() {
			settledSet.AddNum(msg.SeqNum)
			settled++
		}
	}

	if err := <-done; err != nil {
		return messages, settled, fmt.Errorf("failed to fetch messages: %w", err)
	}

	// Mark read in one batch once every per-message decision is known.
	if !settledSet.Empty() {
		item := imap.FormatFlagsOp(imap.AddFlags, true)
		flags := []interface{}{imap.SeenFlag}
		if err := c.Store(settledSet, item, flags, nil); err != nil {
			return messages, settled, fmt.Errorf("failed to mark messages read: %w", err)
		}
	}

	logrus.Infof("Account %s: %d candidate messages, %d settled", account.Address, messages, settled)
	return messages, settled, nil
}

// processMessage parses one message into text, extracts facts, and runs
// reconciliation. A malformed body is a logged skip, never a failure.
func (s *Scanner) processMessage(ctx context.Context, account config.MailboxConfig, msg *imap.Message, section *imap.BodySectionName) reconcile.Outcome {
	messageID := messageIdentity(msg)

	text, err := messageText(msg, section)
	if err != nil {
		logrus.Warnf("Failed to parse message %s from account %s: %v", messageID, account.Address, err)
		return reconcile.SkippedNoTracking
	}

	facts := extract.Extract(text)

	outcome, err := s.engine.Reconcile(ctx, facts, account.Address)
	if err != nil {
		logrus.Errorf("Failed to reconcile message %s from account %s: %v", messageID, account.Address, err)
		s.registry.LogProcessing(messageID, account.Address, facts.TrackingNumber, outcome.String(), err.Error())
		return outcome
	}

	errMsg := ""
	if outcome == reconcile.DeliveryFailed {
		errMsg = "notification delivery failed"
	}
	s.registry.LogProcessing(messageID, account.Address, facts.TrackingNumber, outcome.String(), errMsg)

	logrus.Debugf("Message %s from account %s: %s", messageID, account.Address, outcome)
	return outcome
}

// fromKnownSender checks the envelope sender against the configured
// carrier domains, accepting subdomains.
func (s *Scanner) fromKnownSender(envelope *imap.Envelope) bool {
	if envelope == nil || len(envelope.From) == 0 {
		return false
	}

	host := strings.ToLower(envelope.From[0].HostName)
	for _, domain := range s.cfg.SenderDomains {
		domain = strings.ToLower(domain)
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// messageIdentity returns a stable identifier for process logs: the
// envelope Message-Id when present, else a UID composite, since some
// senders omit Message-Id.
func messageIdentity(msg *imap.Message) string {
	if msg.Envelope != nil && msg.Envelope.MessageId != "" {
		return msg.Envelope.MessageId
	}
	return fmt.Sprintf("uid-%d", msg.Uid)
}
