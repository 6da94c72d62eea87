package main

import (
	tea "github.com/charmbracelet/bubbletea"
)

// handleMouse feeds terminal mouse events to the editor. A cell stands
// for the screen pixel at its centre.
func (m *model) handleMouse(msg tea.MouseMsg) {
	if m.mode != ModeNormal || m.help || m.ed.Active() == nil {
		return
	}
	p := m.cellSize().toScreen(msg.X, msg.Y)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.ed.Wheel(-m.cfg.Canvas.WheelStep)
	case msg.Button == tea.MouseButtonWheelDown:
		m.ed.Wheel(m.cfg.Canvas.WheelStep)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		// the status line is not part of the board
		if msg.Y >= m.boardRows() {
			return
		}
		m.clearMessages()
		m.ed.PointerDown(p)
	case msg.Action == tea.MouseActionMotion:
		m.ed.PointerMove(p)
	case msg.Action == tea.MouseActionRelease:
		m.ed.PointerUp(p)
	}
	m.checkSaveError()
}
