package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rcliao/libime-history-merge/internal/codec"
	"github.com/rcliao/libime-history-merge/internal/historyfile"
	"github.com/rcliao/libime-history-merge/internal/store"
)

var archivePath string

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Keep named snapshots of histories in a local archive",
}

func init() {
	archiveCmd.PersistentFlags().StringVar(&archivePath, "archive", "",
		"Archive path (default: $LIBIME_HISTORY_ARCHIVE or ~/.libime-history-merge/archive.db)")

	putCmd := &cobra.Command{
		Use:   "put PATH",
		Short: "Archive a history file",
		Args:  cobra.ExactArgs(1),
		Run:   runArchivePut,
	}
	putCmd.Flags().String("name", "", "Snapshot name (default: file name)")

	getCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Restore an archived history",
		Long:  "Print an archived history as text, or write it back to a history file with -o.",
		Args:  cobra.ExactArgs(1),
		Run:   runArchiveGet,
	}
	getCmd.Flags().StringP("output", "o", "", "Write the history to this path")
	getCmd.Flags().BoolP("no-pager", "n", false, "Do not pipe printed output through $PAGER")

	rmCmd := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete an archived snapshot",
		Args:  cobra.ExactArgs(1),
		Run:   runArchiveRm,
	}

	archiveCmd.AddCommand(putCmd, getCmd, rmCmd)
	RootCmd.AddCommand(archiveCmd)
}

func getArchivePath() string {
	if archivePath != "" {
		return archivePath
	}
	if env := os.Getenv("LIBIME_HISTORY_ARCHIVE"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".libime-history-merge", "archive.db")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getArchivePath())
}

func runArchivePut(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")

	path, err := filepath.Abs(args[0])
	if err != nil {
		exitErr("resolve path", err)
	}
	h, err := historyfile.Load(path)
	if err != nil {
		exitErr("load", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open archive", err)
	}
	defer s.Close()

	snap, err := s.Put(cmd.Context(), store.PutParams{
		Name:    name,
		Source:  path,
		History: h,
	})
	if err != nil {
		exitErr("archive", err)
	}

	if jsonOutput() {
		printJSON(snap)
		return
	}
	fmt.Println(snap.ID)
}

func runArchiveGet(cmd *cobra.Command, args []string) {
	output, _ := cmd.Flags().GetString("output")
	noPager, _ := cmd.Flags().GetBool("no-pager")

	s, err := openStore()
	if err != nil {
		exitErr("open archive", err)
	}
	defer s.Close()

	snap, err := s.Get(cmd.Context(), args[0])
	if err != nil {
		exitErr("get", err)
	}

	if output == "" {
		if err := writePaged(os.Stdout, codec.EncodeText(snap.History), noPager); err != nil {
			exitErr("print", err)
		}
		return
	}

	if err := historyfile.Save(output, snap.History); err != nil {
		exitErr("save", err)
	}
	logrus.WithFields(logrus.Fields{
		"snapshot":  snap.ID,
		"path":      output,
		"sentences": snap.Sentences,
	}).Info("restored history")
}

func runArchiveRm(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open archive", err)
	}
	defer s.Close()

	if err := s.Rm(cmd.Context(), args[0]); err != nil {
		exitErr("rm", err)
	}
	logrus.WithField("snapshot", args[0]).Info("removed snapshot")
}
