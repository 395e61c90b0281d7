package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/corey/anagramatron/internal/adapters/bbolt"
	"github.com/corey/anagramatron/internal/adapters/postgres"
	"github.com/corey/anagramatron/internal/app"
	"github.com/corey/anagramatron/internal/domain/matcher"
	"github.com/corey/anagramatron/internal/domain/status"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// formatRunSummary renders the end-of-run block.
//
//	⚡ find │ 8 seen, 7 passed, 0 skipped │ 2 hits │ 1.2ms
//	  stored 4  replaced 1  matched 2
func formatRunSummary(command string, res app.Result) string {
	var sb strings.Builder
	elapsed := res.Finished.Sub(res.Started).Round(time.Millisecond)
	hits := fmt.Sprintf("%d hits", res.Hits)
	if res.Hits > 0 {
		hits = green(hits)
	}
	fmt.Fprintf(&sb, "%s %s │ %d seen, %d passed, %d skipped │ %s │ %s\n",
		bold("⚡"), bold(command), res.Seen, res.Passed, res.Skipped, hits, elapsed)

	if len(res.Outcomes) > 0 {
		sb.WriteString(" ")
		for _, o := range []matcher.Outcome{matcher.Stored, matcher.Replaced, matcher.Matched, matcher.Unmatched} {
			if n := res.Outcomes[o]; n > 0 {
				fmt.Fprintf(&sb, " %s %d", gray(o.String()), n)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatChunks renders the chunk table for `anagramatron chunks`.
func formatChunks(dir string, chunks []bbolt.ChunkInfo, cached int) string {
	var sb strings.Builder
	total := 0
	for _, c := range chunks {
		total += c.Entries
	}
	fmt.Fprintf(&sb, "%s %d chunks │ %d entries │ %s\n", bold("⚡"), len(chunks), total, cyan(dir))
	for i, c := range chunks {
		fmt.Fprintf(&sb, "  %3d  %s  %s  %d\n", i, c.Created.Local().Format(time.DateTime), gray(c.Path), c.Entries)
	}
	if cached > 0 {
		fmt.Fprintf(&sb, "  %s\n", gray(fmt.Sprintf("%d cached", cached)))
	}
	return sb.String()
}

// formatLastRun renders a status snapshot.
func formatLastRun(s *status.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s at %s (%s)\n", yellow("Last run:"), s.Command,
		s.Finished.Local().Format(time.DateTime), s.Duration().Round(time.Second))
	fmt.Fprintf(&sb, "  seen %d, passed %d (%.2f%%), %d hits, %.0f/s\n",
		s.Seen, s.Passed, s.PassedPct, s.Hits, s.PerSecond)
	if s.Error != "" {
		fmt.Fprintf(&sb, "  %s %s\n", red("error:"), s.Error)
	}
	return sb.String()
}

// formatHits renders hits for review.
func formatHits(hits []postgres.Hit) string {
	if len(hits) == 0 {
		return gray("no hits") + "\n"
	}
	var sb strings.Builder
	for _, h := range hits {
		fmt.Fprintf(&sb, "%s %s  %s  %s\n", bold(fmt.Sprintf("#%d", h.ID)), statusColor(h.Status),
			gray(h.HitDate.Local().Format(time.DateTime)), gray(fmt.Sprintf("%d letters", h.HitLen)))
		fmt.Fprintf(&sb, "  %s\n  %s\n", h.One, h.Two)
	}
	return sb.String()
}

func formatHitDetail(h *postgres.Hit) string {
	return formatHits([]postgres.Hit{*h}) + fmt.Sprintf("  %s %x\n", gray("hash"), h.HitHash)
}

func statusColor(s postgres.HitStatus) string {
	switch s {
	case postgres.StatusApproved, postgres.StatusPosted:
		return green(s.String())
	case postgres.StatusRejected, postgres.StatusFetchFailed, postgres.StatusPostFailed:
		return red(s.String())
	default:
		return yellow(s.String())
	}
}
