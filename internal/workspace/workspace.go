// Package workspace finds, selects and archives planning documents.
package workspace

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/daydemir/phaser/internal/display"
	"github.com/daydemir/phaser/internal/osauto"
	"github.com/spf13/afero"
)

const (
	// PhaserDir holds per-project prompt overrides
	PhaserDir = ".phaser"

	// ConfigFile is the per-project config file
	ConfigFile = ".phaser.yaml"
)

var (
	ErrNoProposedDir    = errors.New("directory not found")
	ErrNoPlanningDocs   = errors.New("no .md files found")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrDocNotFound      = errors.New("planning document not found")
	ErrWorkspaceExists  = errors.New("phaser workspace already exists (use --force to overwrite)")
)

// Workspace is a project with a proposed and a completed planning-doc directory
type Workspace struct {
	fs           afero.Fs
	ProposedDir  string
	CompletedDir string

	// Root, when set, is the directory commit messages are relative to
	Root string
}

// New creates a workspace over fs
func New(fs afero.Fs, proposedDir, completedDir string) *Workspace {
	return &Workspace{
		fs:           fs,
		ProposedDir:  proposedDir,
		CompletedDir: completedDir,
	}
}

// Find walks up from dir looking for .phaser.yaml, .phaser/ or .git.
// It returns dir itself when none is found.
func Find(fs afero.Fs, dir string) string {
	start := dir
	for {
		for _, marker := range []string{ConfigFile, PhaserDir, ".git"} {
			if exists, _ := afero.Exists(fs, filepath.Join(dir, marker)); exists {
				return dir
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// RecentDocs returns up to limit *.md files in the proposed dir, newest first
func (w *Workspace) RecentDocs(limit int) ([]string, error) {
	if isDir, _ := afero.IsDir(w.fs, w.ProposedDir); !isDir {
		return nil, fmt.Errorf("%w: %s", ErrNoProposedDir, w.ProposedDir)
	}

	entries, err := afero.ReadDir(w.fs, w.ProposedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", w.ProposedDir, err)
	}

	var docs []os.FileInfo
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".md" {
			docs = append(docs, e)
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPlanningDocs, w.ProposedDir)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].ModTime().After(docs[j].ModTime())
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}

	paths := make([]string, len(docs))
	for i, d := range docs {
		paths[i] = filepath.Join(w.ProposedDir, d.Name())
	}
	return paths, nil
}

// Select lists docs and reads a 1-based choice from in; empty input picks the first
func (w *Workspace) Select(in io.Reader, d *display.Display, docs []string) (string, error) {
	names := make([]string, len(docs))
	for i, doc := range docs {
		names[i] = filepath.Base(doc)
	}

	d.Progress("No planning document specified.")
	d.Menu(fmt.Sprintf("Last %d modified files in %s:", len(docs), w.ProposedDir), names)
	d.Prompt(fmt.Sprintf("Select a file to implement [1-%d] (default: 1): ", len(docs)))

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read selection: %w", err)
	}

	selection := strings.TrimSpace(line)
	if selection == "" {
		selection = "1"
	}

	n, err := strconv.Atoi(selection)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a number", ErrInvalidSelection, selection)
	}
	if n < 1 || n > len(docs) {
		return "", fmt.Errorf("%w: must be between 1 and %d", ErrInvalidSelection, len(docs))
	}
	return w.Resolve(docs[n-1])
}

// Resolve checks that doc is an existing file and returns its absolute path
func (w *Workspace) Resolve(doc string) (string, error) {
	info, err := w.fs.Stat(doc)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrDocNotFound, doc)
	}
	abs, err := filepath.Abs(doc)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", doc, err)
	}
	return abs, nil
}

// Archive moves doc into the completed dir, creating it if needed
func (w *Workspace) Archive(doc string) (string, error) {
	if err := w.fs.MkdirAll(w.CompletedDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", w.CompletedDir, err)
	}

	dest := filepath.Join(w.CompletedDir, filepath.Base(doc))
	if err := w.fs.Rename(doc, dest); err != nil {
		return "", fmt.Errorf("failed to move %s: %w", doc, err)
	}
	return dest, nil
}

// CommitMove records an archived doc in git
func (w *Workspace) CommitMove(ctx context.Context, runner osauto.Runner, from, to string) error {
	if err := runner.Run(ctx, "git", "add", from, to); err != nil {
		return err
	}
	dir := w.CompletedDir
	if w.Root != "" {
		if rel, err := filepath.Rel(w.Root, dir); err == nil {
			dir = rel
		}
	}
	return runner.Run(ctx, "git", "commit", "-m", "Move completed spec to "+filepath.ToSlash(dir))
}
