package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"casewall/internal/board"
	"casewall/internal/gesture"
	"casewall/internal/snapshot"
)

// currentView is the frame the board shows right now.
func (m *model) currentView() boardView {
	g := m.ed.Gesture()
	return boardView{
		Case:    m.ed.Active(),
		View:    m.ed.View(),
		Sel:     g.Selection(),
		Pending: g.PendingSource(),
		Pointer: g.Pointer(),
		Cell:    m.cellSize(),
	}
}

// exportVisualTXT writes the board exactly as it is shown, without
// colours or selection marks.
func (m *model) exportVisualTXT(filename string) error {
	if m.ed.Active() == nil {
		return fmt.Errorf("no case open")
	}
	bv := m.currentView()
	bv.Sel = gesture.Selection{}
	bv.Pending = ""

	width := m.width
	if width < 1 {
		width = 80
	}
	height := m.boardRows()
	if m.height < 1 {
		height = 24
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, line := range bv.Render(width, height).Plain() {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return err
		}
	}
	return nil
}

func (m *model) exportArchive(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.ed.ExportCase(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// imagePaths expands a target without an extension into both formats.
func imagePaths(path string) []string {
	if filepath.Ext(path) != "" {
		return []string{path}
	}
	return []string{path + ".png", path + ".svg"}
}

// renderImages writes one snapshot per path concurrently.
func renderImages(ctx context.Context, c board.Case, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return snapshot.Save(&c, snapshot.Options{Path: path})
		})
	}
	return g.Wait()
}

func exportImageCmd(ctx context.Context, c board.Case, path string) tea.Cmd {
	return func() tea.Msg {
		return exportDoneMsg{path: path, err: renderImages(ctx, c, imagePaths(path))}
	}
}
