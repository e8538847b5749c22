package extract

import (
	"fmt"
	"os"
	"os/exec"
	"path"
	"strings"

	"github.com/Zuo-Peng/mda/internal/dump"
)

// Open writes a to a temporary file and runs viewer on it. The file is left
// behind for the viewer, which may still be reading it after we return.
func Open(a *dump.Attachment, viewer string) (string, error) {
	dir, err := os.MkdirTemp("", "mda-")
	if err != nil {
		return "", fmt.Errorf("temp dir: %w", err)
	}
	dst := dir + string(os.PathSeparator) + path.Base(a.URI)
	if _, err := writeAttachment(a, dst); err != nil {
		return "", err
	}
	return dst, viewerCommand(viewer, dst).Run()
}

// viewerFields splits viewer into a command line. A blank viewer falls back
// to $VIEWER, then xdg-open.
func viewerFields(viewer string) []string {
	for _, v := range []string{viewer, os.Getenv("VIEWER")} {
		if fields := strings.Fields(v); len(fields) > 0 {
			return fields
		}
	}
	return []string{"xdg-open"}
}

// viewerCommand builds the command line for viewer. Terminal pagers get the
// caller's stdio.
func viewerCommand(viewer, file string) *exec.Cmd {
	fields := viewerFields(viewer)
	args := append(fields[1:], file)
	cmd := exec.Command(fields[0], args...)

	switch {
	case strings.Contains(fields[0], "less"), strings.Contains(fields[0], "vim"):
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr
	return cmd
}
