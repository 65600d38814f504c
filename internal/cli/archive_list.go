package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rcliao/libime-history-merge/internal/store"
)

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List archived snapshots, newest first",
		Run:   runArchiveList,
	}
	listCmd.Flags().String("name", "", "Only snapshots with this name")
	listCmd.Flags().IntP("limit", "l", 20, "Max results")

	searchCmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find archived sentences containing text",
		Args:  cobra.MinimumNArgs(1),
		Run:   runArchiveSearch,
	}
	searchCmd.Flags().IntP("limit", "l", 20, "Max results")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show archive statistics",
		Run:   runArchiveStats,
	}

	archiveCmd.AddCommand(listCmd, searchCmd, statsCmd)
}

func runArchiveList(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open archive", err)
	}
	defer s.Close()

	snaps, err := s.List(cmd.Context(), store.ListParams{Name: name, Limit: limit})
	if err != nil {
		exitErr("list", err)
	}

	if jsonOutput() {
		printJSON(snaps)
		return
	}
	for _, snap := range snaps {
		fmt.Printf("%s  %-16s v%d  %8s sentences  %s\n",
			snap.ID, snap.Name, snap.Version,
			humanize.Comma(int64(snap.Sentences)), humanize.Time(snap.CreatedAt))
	}
}

func runArchiveSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open archive", err)
	}
	defer s.Close()

	matches, err := s.Search(cmd.Context(), store.SearchParams{Query: query, Limit: limit})
	if err != nil {
		exitErr("search", err)
	}

	if jsonOutput() {
		printJSON(matches)
		return
	}
	for _, m := range matches {
		fmt.Printf("%s %s pool %d #%d: %s\n", m.SnapshotID, m.Name, m.Pool, m.Position, m.Text)
	}
}

func runArchiveStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open archive", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getArchivePath())
	if err != nil {
		exitErr("stats", err)
	}

	if jsonOutput() {
		printJSON(stats)
		return
	}
	fmt.Printf("archive:   %s (%s)\n", stats.DBPath, humanize.Bytes(uint64(stats.DBSizeBytes)))
	fmt.Printf("snapshots: %s\n", humanize.Comma(int64(stats.Snapshots)))
	fmt.Printf("sentences: %s (%s distinct)\n",
		humanize.Comma(int64(stats.Sentences)), humanize.Comma(int64(stats.DistinctTexts)))
	for _, n := range stats.Names {
		fmt.Printf("  %-16s %d\n", n.Name, n.Snapshots)
	}
}
