// Package historyfile loads and saves history files on disk.
package historyfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/rcliao/libime-history-merge/internal/codec"
	"github.com/rcliao/libime-history-merge/internal/model"
)

// ErrExists is returned by Save when the target path is already taken.
var ErrExists = errors.New("output path already exists")

// Load reads a history file, binary or plain text.
func Load(path string) (*model.History, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	h, err := LoadBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// Format names the encoding a history was read from.
type Format string

const (
	FormatBinary Format = "binary"
	FormatText   Format = "text"
)

// LoadBytes decodes b as a binary history, falling back to plain text.
// When both fail the returned error carries both causes.
func LoadBytes(b []byte) (*model.History, error) {
	h, _, err := Detect(b)
	return h, err
}

// Detect is LoadBytes that also reports which encoding matched.
func Detect(b []byte) (*model.History, Format, error) {
	h, binErr := codec.DecodeHistory(b)
	if binErr == nil {
		return h, FormatBinary, nil
	}
	logrus.WithError(binErr).Debug("not a binary history, trying plain text")

	h, textErr := codec.DecodeText(b)
	if textErr == nil {
		return h, FormatText, nil
	}

	merr := multierror.Append(nil,
		fmt.Errorf("as binary: %w", binErr),
		fmt.Errorf("as text: %w", textErr))
	merr.ErrorFormat = joinErrors
	return nil, "", fmt.Errorf("could not load as binary or text: %w", merr)
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Save writes h to a new file at path, readable by the owner only.
// An existing file is never overwritten.
func Save(path string, h *model.History) error {
	b, err := codec.EncodeHistory(h)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Exists reports whether something is already at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
