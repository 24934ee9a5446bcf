package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fieldscope/fieldscope/internal/model"
	"github.com/fieldscope/fieldscope/internal/prompt"
)

// GenerateReport assembles a human-readable incident report from the
// session log. With fewer than two entries it is a no-op: there is nothing
// to report and no network call is made. Summarization is attempted only
// when a provider is configured and the session is not degraded; local
// formatting is the guaranteed zero-network fallback on every failure.
func (o *Orchestrator) GenerateReport(ctx context.Context) (string, error) {
	entries := o.log.Entries()
	if len(entries) < 2 {
		return "", nil
	}

	max := o.cfg.Report.MaxEntries
	if max <= 0 {
		max = 25
	}
	if len(entries) > max {
		entries = entries[:max]
	}

	// Entries() is newest-first; reports read chronologically.
	chron := make([]model.LogEntry, len(entries))
	for i, e := range entries {
		chron[len(entries)-1-i] = e
	}

	if o.provider != nil && !o.degradedMode() {
		summary, err := o.provider.Summarize(ctx, prompt.ReportSystem(), prompt.ReportUser(chron))
		if err == nil {
			return formatSummarized(o.now(), summary, chron), nil
		}
		o.logger.Info("report summarization unavailable, using local format", "error", err)
	}

	return FormatLocal(o.now(), chron), nil
}

const reportTitle = "FIELDSCOPE INCIDENT REPORT"

// FormatLocal renders the deterministic local report: a fixed-structure
// document with a generated title and timestamp header over the entries in
// chronological order. It must work with zero network dependency.
func FormatLocal(generatedAt time.Time, chron []model.LogEntry) string {
	var b strings.Builder
	writeHeader(&b, generatedAt, len(chron))
	writeEntries(&b, chron)
	return b.String()
}

func formatSummarized(generatedAt time.Time, summary string, chron []model.LogEntry) string {
	var b strings.Builder
	writeHeader(&b, generatedAt, len(chron))
	b.WriteString("Summary:\n")
	b.WriteString(strings.TrimSpace(summary))
	b.WriteString("\n\n")
	writeEntries(&b, chron)
	return b.String()
}

func writeHeader(b *strings.Builder, generatedAt time.Time, count int) {
	b.WriteString(reportTitle + "\n")
	fmt.Fprintf(b, "Generated: %s\n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(b, "Events: %d\n\n", count)
}

func writeEntries(b *strings.Builder, chron []model.LogEntry) {
	b.WriteString("Event log:\n")
	for _, e := range chron {
		fmt.Fprintf(b, "%s  [%s] %s\n", e.Timestamp.UTC().Format("15:04:05"), e.Source, e.Message)
	}
}
