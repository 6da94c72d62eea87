package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"casewall/internal/board"
)

var helpLines = []string{
	"Casewall Help",
	"=============",
	"",
	"Cases:",
	"------",
	"  j/k, ↑/↓         Move through the case list",
	"  Enter            Open the selected case",
	"  n                Start a new case",
	"  o                Import a .mapinv archive",
	"  d/x              Delete the selected case",
	"",
	"Board:",
	"------",
	"  h/j/k/l, arrows  Pan the board (Shift pans faster)",
	"  +/-              Zoom in and out, mouse wheel works too",
	"  0                Reset pan and zoom",
	"  Mouse drag       Move a record, bend a thread by its handle, or pan",
	"  Click            Select a record or thread",
	"",
	"Records and threads:",
	"--------------------",
	"  t                Choose the type of new records, custom categories included",
	"  g                Add a custom category (name, optionally an icon name)",
	"  G                Delete the custom category chosen with t",
	"  n                Add a record at the centre of the view",
	"  c                Connect: click the source, then the target",
	"  e/Enter          Edit the title of a record or the label of a thread",
	"  s                Cycle record status or thread intensity",
	"  C                Cycle thread colour",
	"  r                Straighten the selected thread",
	"  x/d/Del          Delete the selection",
	"  F                Set a field on the selected record (label: value)",
	"  o                Set the sequence number of the selected thread",
	"  i                Rename the case",
	"",
	"Assistant:",
	"----------",
	"  a                Extract records and threads from the clipboard",
	"  f                Fill in the selected record from the clipboard",
	"  p                Copy a pattern analysis of the case to the clipboard",
	"",
	"Files:",
	"------",
	"  w                Save the case as an archive",
	"  S                Save a snapshot image (no extension writes png and svg)",
	"  T                Save the board as plain text",
	"",
	"General:",
	"--------",
	"  b                Back to the case list",
	"  Esc              Leave connect mode, clear selection or cancel",
	"  ?                Toggle this help screen",
	"  q/Ctrl+C         Quit",
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}

	var body []string
	switch {
	case m.mode == ModeStartup || (m.mode != ModeNormal && m.ed.Active() == nil):
		body = m.dashboardLines()
	default:
		body = m.currentView().Render(max(m.width, 1), m.boardRows()).Styled()
	}

	var b strings.Builder
	b.WriteString(strings.Join(body, "\n"))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m model) modeString() string {
	switch m.mode {
	case ModeStartup:
		return "CASES"
	case ModeNormal:
		if m.ed.Gesture().Connecting() {
			return "CONNECT"
		}
		return "BOARD"
	case ModeEditing:
		return "EDIT"
	case ModeFileInput:
		return "FILE"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

func (m model) statusLine() string {
	var status string
	switch m.mode {
	case ModeEditing:
		what := "Title"
		switch m.editTarget {
		case EditEdgeLabel:
			what = "Label"
		case EditCaseName:
			what = "Case name"
		case EditEdgeOrder:
			what = "Order (empty resets)"
		case EditNodeField:
			what = "Field (label: value)"
		case EditCategory:
			what = "New category (name [icon])"
		}
		status = fmt.Sprintf("Mode: EDIT | %s: %s | Enter=save, Esc=cancel", what, m.input.View())
	case ModeFileInput:
		op := "Import"
		switch m.fileOp {
		case FileOpSaveArchive:
			op = "Save archive"
		case FileOpSaveImage:
			op = "Save image"
		case FileOpSaveVisualTXT:
			op = "Save text"
		}
		status = fmt.Sprintf("Mode: FILE | %s: %s | Enter=confirm, Esc=cancel", op, m.input.View())
		if m.errorMessage != "" {
			status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
		}
	case ModeConfirm:
		status = "Mode: CONFIRM | " + pickStyle.Render(m.confirmMessage())
	default:
		status = m.boardStatus()
	}
	return fitStatus(status, m.width)
}

func (m model) boardStatus() string {
	parts := []string{"Mode: " + m.modeString()}
	if c := m.ed.Active(); c != nil && m.mode == ModeNormal {
		parts = append(parts,
			titleStyle.Render(c.Name),
			fmt.Sprintf("%.0f%%", m.ed.View().Zoom*100),
		)
		sel := m.ed.Selection()
		if n, ok := c.Node(sel.NodeID); ok {
			parts = append(parts, "Selected: "+n.Title)
		} else if e, i, ok := c.Edge(sel.EdgeID); ok {
			parts = append(parts, fmt.Sprintf("Selected: thread %d", i+1))
			if e.Label != "" {
				parts[len(parts)-1] += " " + e.Label
			}
		}
		if src := m.ed.Gesture().PendingSource(); src != "" {
			if n, ok := c.Node(src); ok {
				parts = append(parts, "Connecting from "+n.Title+" (click the target)")
			}
		} else if m.ed.Gesture().Connecting() {
			parts = append(parts, "Click the source record")
		}
	}
	if m.busy != "" {
		parts = append(parts, subtleStyle.Render(m.busy+"…"))
	}
	switch {
	case m.errorMessage != "":
		parts = append(parts, errorStyle.Render("ERROR: "+m.errorMessage))
	case m.successMessage != "":
		parts = append(parts, successStyle.Render(m.successMessage))
	default:
		parts = append(parts, "? for help | q to quit")
	}
	return strings.Join(parts, " | ")
}

func (m model) confirmMessage() string {
	switch m.confirmAction {
	case ConfirmDeleteSelection:
		if m.ed.Selection().NodeID != "" {
			return "Delete this record and its threads? (y/n)"
		}
		return "Delete this thread? (y/n)"
	case ConfirmDeleteCase:
		for _, c := range m.cases {
			if c.ID == m.confirmID {
				return fmt.Sprintf("Delete case %q? (y/n)", c.Name)
			}
		}
		return "Delete this case? (y/n)"
	case ConfirmDeleteCategory:
		name := m.confirmID
		if c := m.ed.Active(); c != nil {
			if cat, ok := c.Category(m.confirmID); ok {
				name = cat.Name
			}
		}
		return fmt.Sprintf("Delete category %q? Its records keep their data. (y/n)", name)
	case ConfirmQuit:
		return "Quit Casewall? (y/n)"
	case ConfirmOverwriteFile:
		return fmt.Sprintf("File %s already exists. Overwrite? (y/n)", m.pendingPath)
	}
	return ""
}

// fitStatus cuts the status line to the terminal width. Styled segments
// keep their escape codes, so the cut is measured on visible cells.
func fitStatus(s string, width int) string {
	if width <= 0 {
		return s
	}
	return statusStyle.MaxWidth(width).Render(s)
}

func (m model) dashboardLines() []string {
	rows := m.boardRows()
	lines := []string{
		titleStyle.Render("CASEWALL"),
		subtleStyle.Render("Investigation boards"),
		"",
	}
	if len(m.cases) == 0 {
		lines = append(lines, "No cases yet. Press 'n' to start one or 'o' to import an archive.")
		return padLines(lines, rows)
	}

	// keep the selected row visible
	header := len(lines)
	visible := max(rows-header, 1)
	start := 0
	if m.selectedCase >= visible {
		start = m.selectedCase - visible + 1
	}
	nameWidth := max(min(m.width-40, 48), 12)
	for i := start; i < len(m.cases) && i < start+visible; i++ {
		lines = append(lines, m.caseRow(m.cases[i], i == m.selectedCase, nameWidth))
	}
	return padLines(lines, rows)
}

func (m model) caseRow(c board.Case, selected bool, nameWidth int) string {
	name := runewidth.FillRight(runewidth.Truncate(c.Name, nameWidth, "…"), nameWidth)
	row := fmt.Sprintf("%s  %3d records  %3d threads  %s",
		name, len(c.Nodes), len(c.Edges), c.UpdatedAt.Local().Format("2006-01-02 15:04"))
	if selected {
		return pickStyle.Render("> " + row)
	}
	return "  " + row
}

func padLines(lines []string, n int) []string {
	for len(lines) < n {
		lines = append(lines, "")
	}
	return lines[:n]
}

func (m model) helpView() string {
	visible := m.boardRows()
	start := min(m.helpScroll, max(len(helpLines)-visible, 0))
	end := min(start+visible, len(helpLines))

	lines := padLines(append([]string(nil), helpLines[start:end]...), visible)
	status := fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		start+1, end, len(helpLines))
	return strings.Join(lines, "\n") + "\n" + fitStatus(status, m.width)
}
