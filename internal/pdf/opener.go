// Package pdf reads reference lists out of paper PDFs and opens PDFs in a
// viewer.
package pdf

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Opener resolves library attachment paths and opens them.
type Opener struct {
	pdfRoot   string
	pdfReader string
}

// NewOpener creates an opener. Relative attachment paths are resolved
// against pdfRoot.
func NewOpener(pdfRoot, pdfReader string) *Opener {
	if pdfReader == "" {
		pdfReader = "system"
	}
	return &Opener{
		pdfRoot:   pdfRoot,
		pdfReader: pdfReader,
	}
}

// ResolvePath returns the absolute path of an attachment and checks that
// the file exists.
func (o *Opener) ResolvePath(attachment string) (string, error) {
	if attachment == "" {
		return "", fmt.Errorf("no PDF path specified")
	}

	fullPath := attachment
	if !filepath.IsAbs(fullPath) {
		if o.pdfRoot == "" {
			return "", fmt.Errorf("relative PDF path %q and pdf_root not configured", attachment)
		}
		fullPath = filepath.Join(o.pdfRoot, attachment)
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("PDF not found: %s", fullPath)
		}
		return "", fmt.Errorf("checking PDF: %w", err)
	}
	return fullPath, nil
}

// Command returns the viewer command for fullPath on this platform.
func (o *Opener) Command(fullPath string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		switch o.pdfReader {
		case "skim":
			return exec.Command("open", "-a", "Skim", fullPath), nil
		case "preview":
			return exec.Command("open", "-a", "Preview", fullPath), nil
		default:
			return exec.Command("open", fullPath), nil
		}
	case "linux":
		switch o.pdfReader {
		case "zathura", "evince", "okular":
			return exec.Command(o.pdfReader, fullPath), nil
		default:
			return exec.Command("xdg-open", fullPath), nil
		}
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// Open starts the viewer on fullPath without waiting for it.
func (o *Opener) Open(fullPath string) error {
	cmd, err := o.Command(fullPath)
	if err != nil {
		return err
	}
	return cmd.Start()
}
