package main

// handlePan scrolls the board by whole cells. Moving "left" brings
// content on the left into view, so the model slides right.
func (m *model) handlePan(key string, speed int) {
	cs := m.cellSize()
	step := float64(m.cfg.Canvas.PanStep * speed)
	switch key {
	case "h", "left", "H", "shift+left":
		m.ed.PanBy(step*cs.W, 0)
	case "l", "right", "L", "shift+right":
		m.ed.PanBy(-step*cs.W, 0)
	case "k", "up", "K", "shift+up":
		m.ed.PanBy(0, step*cs.H)
	case "j", "down", "J", "shift+down":
		m.ed.PanBy(0, -step*cs.H)
	}
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}
