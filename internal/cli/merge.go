package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rcliao/libime-history-merge/internal/codec"
	"github.com/rcliao/libime-history-merge/internal/historyfile"
	"github.com/rcliao/libime-history-merge/internal/merge"
	"github.com/rcliao/libime-history-merge/internal/model"
)

var errEditWithoutOutput = errors.New("-o|--output is not specified, the edited history would be lost")

func runMerge(cmd *cobra.Command, args []string) {
	weights, _ := cmd.Flags().GetIntSlice("weights")
	output, _ := cmd.Flags().GetString("output")
	edit, _ := cmd.Flags().GetBool("edit")
	noPager, _ := cmd.Flags().GetBool("no-pager")
	compress, _ := cmd.Flags().GetBool("compress")

	if edit && output == "" {
		exitErr("edit", errEditWithoutOutput)
	}
	if output != "" && historyfile.Exists(output) {
		exitErr("output", fmt.Errorf("%w: %s", historyfile.ErrExists, output))
	}

	histories, err := loadAll(args)
	if err != nil {
		exitErr("load", err)
	}

	merged, err := merge.Merge(histories, weights)
	if err != nil {
		exitErr("merge", err)
	}

	if output == "" {
		if err := writePaged(os.Stdout, codec.EncodeText(merged), noPager); err != nil {
			exitErr("print", err)
		}
		return
	}

	if edit {
		merged, err = editHistory(merged)
		if err != nil {
			exitErr("edit", err)
		}
	}
	if compress {
		merged = merged.WithVersion(model.VersionCompressed)
	}

	if err := historyfile.Save(output, merged); err != nil {
		exitErr("save", err)
	}
	logrus.WithFields(logrus.Fields{
		"path":      output,
		"sentences": merged.Len(),
		"version":   merged.Version,
	}).Info("wrote merged history")
}

func loadAll(paths []string) ([]*model.History, error) {
	histories := make([]*model.History, 0, len(paths))
	for _, path := range paths {
		h, err := historyfile.Load(path)
		if err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"path":      path,
			"version":   h.Version,
			"sentences": h.Len(),
		}).Debug("loaded history")
		histories = append(histories, h)
	}
	return histories, nil
}

// editHistory lets the user edit h as text. The edited sentences are
// redistributed over the pools in the order they were left in.
func editHistory(h *model.History) (*model.History, error) {
	edited, err := editText(codec.EncodeText(h))
	if err != nil {
		return nil, err
	}
	parsed, err := codec.DecodeText(edited)
	if err != nil {
		return nil, fmt.Errorf("parse edited history: %w", err)
	}
	return merge.Merge([]*model.History{parsed}, []int{1})
}
