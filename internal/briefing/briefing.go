// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package briefing renders the daily HTML briefing and mails it to active
// subscribers.
package briefing

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/neurotrack/internal/metrics"
	"github.com/pdiddy/neurotrack/pkg/types"
)

// Now returns the current time. Overridden in tests.
var Now = time.Now

// sendMail delivers the message over SMTP. Overridden in tests.
var sendMail = smtp.SendMail

// sectionLimit caps the number of records shown per briefing section.
const sectionLimit = 5

// trendingLimit caps the trending keywords shown in the briefing.
const trendingLimit = 10

// Store is the subset of the record store the briefing needs.
type Store interface {
	RecordsSince(ctx context.Context, hoursAgo int) ([]types.Record, error)
	ActiveSubscribers(ctx context.Context) ([]types.Subscriber, error)
	TrendingKeywords(ctx context.Context, dateFrom, dateTo string, topN int) ([]types.KeywordCount, error)
}

// Credentials are the SMTP login loaded from the secrets directory.
type Credentials struct {
	User     string
	Password string
}

// Result reports what a briefing run did. Skipped is empty when the
// briefing was sent.
type Result struct {
	Sent    int    `json:"sent"`
	Records int    `json:"records"`
	Skipped string `json:"skipped,omitempty"`
}

// Send assembles the briefing for the configured window and mails it to
// every active subscriber. Runs with nothing to send are not errors; the
// Result says why the briefing was skipped.
func Send(ctx context.Context, st Store, cfg types.BriefingConfig, creds Credentials, log zerolog.Logger) (Result, error) {
	subscribers, err := st.ActiveSubscribers(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("loading subscribers: %w", err)
	}
	if len(subscribers) == 0 {
		log.Info().Msg("no subscribers, skipping briefing")
		return skip("no subscribers"), nil
	}

	if creds.User == "" || creds.Password == "" {
		log.Warn().Msg("SMTP credentials not configured, skipping briefing")
		return skip("email not configured"), nil
	}

	windowHours := cfg.WindowHours
	if windowHours <= 0 {
		windowHours = 24
	}
	records, err := st.RecordsSince(ctx, windowHours)
	if err != nil {
		return Result{}, fmt.Errorf("loading recent records: %w", err)
	}
	if len(records) == 0 {
		log.Info().Int("window_hours", windowHours).Msg("no new records, skipping briefing")
		return skip("no new records"), nil
	}

	trending, err := st.TrendingKeywords(ctx, "", "", trendingLimit)
	if err != nil {
		return Result{}, fmt.Errorf("loading trending keywords: %w", err)
	}

	html, err := GenerateHTML(records, trending, cfg.DashboardURL, Now())
	if err != nil {
		return Result{}, fmt.Errorf("rendering briefing: %w", err)
	}

	recipients := make([]string, len(subscribers))
	for i, s := range subscribers {
		recipients[i] = s.Email
	}

	subject := fmt.Sprintf("🧠 BCI 每日简报 · %s · %d 条新动态", Now().Format("Jan 2"), len(records))
	msg := buildMessage(cfg.From, subject, html)

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	auth := smtp.PlainAuth("", creds.User, creds.Password, cfg.SMTPHost)
	// Recipients go on the envelope only, so each subscriber sees just
	// the From address.
	if err := sendMail(addr, auth, cfg.From, recipients, msg); err != nil {
		return Result{}, fmt.Errorf("sending briefing: %w", err)
	}

	metrics.BriefingsSent.Inc()
	log.Info().Int("subscribers", len(recipients)).Int("records", len(records)).Msg("briefing sent")
	return Result{Sent: len(recipients), Records: len(records)}, nil
}

// skip counts the skipped run and reports its reason.
func skip(reason string) Result {
	metrics.BriefingsSkipped.WithLabelValues(reason).Inc()
	return Result{Skipped: reason}
}

// buildMessage assembles the raw SMTP message with an encoded subject and
// an HTML body.
func buildMessage(from, subject, html string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: BCI Tracker <%s>\r\n", from)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(html)
	return []byte(b.String())
}
