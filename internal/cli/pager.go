package cli

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"
)

const defaultPager = "less"

// pagerCommand returns the pager argv taken from $PAGER.
func pagerCommand(getenv func(string) string) []string {
	if fields := strings.Fields(getenv("PAGER")); len(fields) > 0 {
		return fields
	}
	return []string{defaultPager}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// writePaged writes text to out, through the pager when out is a terminal.
func writePaged(out *os.File, text []byte, noPager bool) error {
	if noPager || !isTerminal(out) {
		_, err := out.Write(text)
		return err
	}

	argv := pagerCommand(os.Getenv)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewReader(text)
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run pager %q: %w", strings.Join(argv, " "), err)
	}
	return nil
}
