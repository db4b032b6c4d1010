package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"energia/internal/types"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved meditations for a user",
	Long: `Lists meditations newest first, merging the remote store with the
local offline cache. Offline-only entries are marked until they sync.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.gateway.ListForUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println(mutedStyle.Render("No meditations yet."))
		return nil
	}
	if historyLimit > 0 && len(records) > historyLimit {
		records = records[:historyLimit]
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Meditations (%d)", len(records))))
	for _, rec := range records {
		fmt.Println(formatHistoryLine(rec))
	}
	return nil
}

func formatHistoryLine(rec types.MeditationRecord) string {
	title := meditationTitle(rec.GeminiGuidance)
	when := ""
	if rec.ClientTimestamp > 0 {
		when = time.UnixMilli(rec.ClientTimestamp).Format("2006-01-02 15:04")
	}

	parts := []string{titleStyle.Render(title), mutedStyle.Render(when), mutedStyle.Render(rec.ID)}
	if rec.Offline {
		parts = append(parts, offlineStyle.Render("[offline]"))
	}
	return "  " + strings.Join(parts, "  ")
}

// meditationTitle extracts the "# Title" heading from the markdown.
func meditationTitle(md string) string {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimPrefix(line, "# ")
		}
	}
	return "Untitled meditation"
}
