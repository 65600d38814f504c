package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/libime-history-merge/internal/store"
)

func init() {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export archived snapshots as JSON",
		Long:  "Export archived snapshots, histories included, as JSON. Filter by name with --name.",
		Run:   runArchiveExport,
	}
	exportCmd.Flags().String("name", "", "Only snapshots with this name")

	importCmd := &cobra.Command{
		Use:   "import [FILE]",
		Short: "Import snapshots from JSON",
		Long:  "Import snapshots from JSON (file or stdin). Expects the format produced by export.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runArchiveImport,
	}

	archiveCmd.AddCommand(exportCmd, importCmd)
}

func runArchiveExport(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")

	s, err := openStore()
	if err != nil {
		exitErr("open archive", err)
	}
	defer s.Close()

	exports, err := s.ExportAll(cmd.Context(), name)
	if err != nil {
		exitErr("export", err)
	}
	printJSON(exports)
}

func runArchiveImport(cmd *cobra.Command, args []string) {
	var in io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open", err)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		exitErr("read", err)
	}

	var exports []store.Export
	if err := json.Unmarshal(data, &exports); err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open archive", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), exports)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"imported":%d}`+"\n", imported)
}
