package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rcliao/libime-history-merge/internal/historyfile"
	"github.com/rcliao/libime-history-merge/internal/model"
)

type inspectReport struct {
	Path      string               `json:"path"`
	Format    historyfile.Format   `json:"format"`
	Magic     string               `json:"magic"`
	Version   uint32               `json:"version"`
	FileSize  int64                `json:"file_size"`
	Pools     [model.PoolCount]int `json:"pools"`
	Sentences int                  `json:"sentences"`
	Words     int                  `json:"words"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "inspect PATH [PATH...]",
		Short: "Show the header and pool sizes of history files",
		Args:  cobra.MinimumNArgs(1),
		Run:   runInspect,
	}

	RootCmd.AddCommand(cmd)
}

func runInspect(cmd *cobra.Command, args []string) {
	reports := make([]inspectReport, 0, len(args))
	for _, path := range args {
		r, err := inspectFile(path)
		if err != nil {
			exitErr("inspect", err)
		}
		reports = append(reports, r)
	}

	if jsonOutput() {
		printJSON(reports)
		return
	}
	for _, r := range reports {
		fmt.Print(r.text())
	}
}

func inspectFile(path string) (inspectReport, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return inspectReport{}, fmt.Errorf("read %s: %w", path, err)
	}
	h, format, err := historyfile.Detect(b)
	if err != nil {
		return inspectReport{}, fmt.Errorf("%s: %w", path, err)
	}

	r := inspectReport{
		Path:      path,
		Format:    format,
		Magic:     fmt.Sprintf("0x%08x", h.Magic),
		Version:   h.Version,
		FileSize:  int64(len(b)),
		Sentences: h.Len(),
	}
	for i, p := range h.Pools {
		r.Pools[i] = len(p)
		for _, s := range p {
			r.Words += len(s)
		}
	}
	return r, nil
}

func (r inspectReport) text() string {
	out := fmt.Sprintf("%s: %s, version %d, %s\n", r.Path, r.Format, r.Version, humanize.Bytes(uint64(r.FileSize)))
	for i, n := range r.Pools {
		out += fmt.Sprintf("  pool %d: %s / %s sentences\n", i,
			humanize.Comma(int64(n)), humanize.Comma(int64(model.PoolCapacities[i])))
	}
	out += fmt.Sprintf("  total: %s sentences, %s words\n",
		humanize.Comma(int64(r.Sentences)), humanize.Comma(int64(r.Words)))
	return out
}
