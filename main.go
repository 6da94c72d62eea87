package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"casewall/internal/archive"
	"casewall/internal/board"
	"casewall/internal/config"
	"casewall/internal/editor"
	"casewall/internal/extract"
	"casewall/internal/gesture"
	"casewall/internal/logger"
	"casewall/internal/logger/console"
	"casewall/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		bad.Fprintln(os.Stderr, "casewall:", err)
		os.Exit(1)
	}
}

// openEditor opens the configured store and wires extraction when a
// provider is usable.
func openEditor(ctx context.Context, cfg *config.Config) (*editor.Editor, error) {
	path := cfg.StorePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	repo, err := store.Open(cfg.Store.Backend, path)
	if err != nil {
		return nil, err
	}

	opts := []editor.Option{
		editor.WithMinCardSize(float64(minCardCols*cfg.Canvas.CellWidth), float64(minCardRows*cfg.Canvas.CellHeight)),
	}
	if ai, err := newExtractor(cfg); err != nil {
		logger.Debug("extraction disabled", "err", err)
	} else {
		opts = append(opts, editor.WithExtractor(ai))
	}

	ed, err := editor.New(ctx, repo, opts...)
	if err != nil {
		repo.Close()
		return nil, err
	}
	return ed, nil
}

func newExtractor(cfg *config.Config) (*extract.Service, error) {
	llm, err := extract.NewCompleter(extract.ProviderConfig{
		Provider: cfg.Extract.Provider,
		Model:    cfg.Extract.Model,
		BaseURL:  cfg.Extract.BaseURL,
		APIKey:   cfg.APIKey(),
	})
	if err != nil {
		return nil, err
	}
	retry := extract.DefaultRetry()
	if cfg.Extract.MaxRetries > 0 {
		retry.Attempts = cfg.Extract.MaxRetries
	}
	return extract.NewService(llm, extract.WithRetry(retry)), nil
}

// runTUI starts the interactive board, optionally straight into caseID.
func runTUI(cfg *config.Config, caseID string) error {
	logPath := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger.Init(console.New(console.Params{Debug: cfg.Log.Debug, Output: logFile}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ed, err := openEditor(ctx, cfg)
	if err != nil {
		return err
	}
	defer ed.Close()

	m := initialModel(ctx, cfg, ed)
	if err := m.openInitialCase(caseID); err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = p.Run()
	return err
}

func initialModel(ctx context.Context, cfg *config.Config, ed *editor.Editor) model {
	ctx, cancel := context.WithCancel(ctx)
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 50
	return model{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		ed:     ed,
		mode:   ModeStartup,
		cases:  ed.Cases(),
		input:  ti,
	}
}

// openInitialCase opens the case named on the command line, or the most
// recent one when the start menu is off.
func (m *model) openInitialCase(caseID string) error {
	switch {
	case caseID != "":
	case !m.cfg.UI.StartMenu && len(m.cases) > 0:
		caseID = m.cases[0].ID
	default:
		return nil
	}
	if err := m.ed.OpenCase(caseID); err != nil {
		return err
	}
	m.mode = ModeNormal
	return nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m *model) cellSize() cellSize {
	return cellSize{W: float64(m.cfg.Canvas.CellWidth), H: float64(m.cfg.Canvas.CellHeight)}
}

func (m *model) boardRows() int {
	return max(m.height-statusRows, 1)
}

func (m *model) refreshCases() {
	m.cases = m.ed.Cases()
	if m.selectedCase >= len(m.cases) {
		m.selectedCase = max(len(m.cases)-1, 0)
	}
}

func (m *model) clearMessages() {
	m.errorMessage = ""
	m.successMessage = ""
}

func (m *model) fail(err error) {
	m.successMessage = ""
	m.errorMessage = err.Error()
}

func (m *model) checkSaveError() {
	if err := m.ed.SaveError(); err != nil {
		m.fail(fmt.Errorf("save failed: %w", err))
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		cs := m.cellSize()
		m.ed.SetScreenSize(float64(m.width)*cs.W, float64(m.boardRows())*cs.H)
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case graphResultMsg:
		m.busy = ""
		nodes, edges, err := m.ed.ApplyGraphDraft(editor.GraphResult(msg))
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.successMessage = fmt.Sprintf("Added %d records and %d connections", nodes, edges)
		m.checkSaveError()
		return m, nil

	case entityResultMsg:
		m.busy = ""
		if err := m.ed.ApplyEntityDraft(editor.EntityResult(msg)); err != nil {
			m.fail(err)
			return m, nil
		}
		m.successMessage = "Record filled in"
		m.checkSaveError()
		return m, nil

	case patternsMsg:
		m.busy = ""
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		if err := writeClipboardText(msg.text); err != nil {
			m.fail(err)
			return m, nil
		}
		m.successMessage = "Pattern analysis copied to clipboard"
		return m, nil

	case exportDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.successMessage = "Saved " + msg.path
		return m, nil

	case tea.KeyMsg:
		if m.help {
			return m.handleHelpKey(msg)
		}
		switch m.mode {
		case ModeStartup:
			return m.handleStartupKey(msg)
		case ModeEditing:
			return m.handleEditKey(msg)
		case ModeFileInput:
			return m.handleFileKey(msg)
		case ModeConfirm:
			return m.handleConfirmKey(msg)
		default:
			return m.handleNormalKey(msg)
		}
	}
	return m, nil
}

func (m model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.helpScroll < max(len(helpLines)-m.boardRows(), 0) {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.help = false
		m.helpScroll = 0
	}
	return m, nil
}

func (m model) handleStartupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.clearMessages()
	switch msg.String() {
	case "j", "down":
		if m.selectedCase < len(m.cases)-1 {
			m.selectedCase++
		}
	case "k", "up":
		if m.selectedCase > 0 {
			m.selectedCase--
		}
	case "enter":
		if len(m.cases) == 0 {
			return m, nil
		}
		if err := m.ed.OpenCase(m.cases[m.selectedCase].ID); err != nil {
			m.fail(err)
			return m, nil
		}
		m.mode = ModeNormal
	case "n":
		m.ed.NewCase()
		m.mode = ModeNormal
		m.checkSaveError()
	case "o":
		m.promptFile(FileOpImport, "")
	case "d", "x":
		if len(m.cases) == 0 {
			return m, nil
		}
		m.confirm(ConfirmDeleteCase, m.cases[m.selectedCase].ID)
	case "?":
		m.help = true
	case "q", "ctrl+c":
		m.cancel()
		return m, tea.Quit
	}
	return m, nil
}

func (m model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEscape {
		if g := m.ed.Gesture(); g.Connecting() {
			g.CancelConnection()
		} else {
			g.ClearSelection()
		}
		m.clearMessages()
		return m, nil
	}
	if m.ed.Active() == nil {
		m.mode = ModeStartup
		m.refreshCases()
		return m, nil
	}

	key := msg.String()
	switch key {
	case "h", "left", "H", "shift+left", "l", "right", "L", "shift+right",
		"k", "up", "K", "shift+up", "j", "down", "J", "shift+down":
		m.handlePan(key, m.getMoveSpeed(key))
		return m, nil
	}

	m.clearMessages()
	sel := m.ed.Selection()
	switch key {
	case "ctrl+c", "q":
		m.confirm(ConfirmQuit, "")
	case "?":
		m.help = true
	case "b":
		m.ed.CloseCase()
		m.mode = ModeStartup
		m.refreshCases()
	case "+", "=":
		m.ed.Wheel(-m.cfg.Canvas.WheelStep)
	case "-", "_":
		m.ed.Wheel(m.cfg.Canvas.WheelStep)
	case "0":
		m.ed.ResetView()
	case "t":
		m.nodeType = (m.nodeType + 1) % len(newNodeTypes(m.ed.Active()))
		m.successMessage = "New records: " + m.ed.Active().Appearance(m.currentNodeType()).Name
	case "n":
		m.ed.AddNode(m.currentNodeType())
	case "g":
		m.startEdit(EditCategory, m.ed.Active().ID, "")
	case "G":
		t := m.currentNodeType()
		if t.IsBuiltin() {
			m.fail(errors.New("choose a custom category with t first"))
			return m, nil
		}
		if m.cfg.UI.Confirmations {
			m.confirm(ConfirmDeleteCategory, string(t))
			return m, nil
		}
		m.deleteCategory(string(t))
	case "c":
		m.ed.Gesture().ToggleConnectionMode()
	case "r":
		m.ed.ResetCurvature()
	case "x", "d", "delete":
		if sel == (gesture.Selection{}) {
			return m, nil
		}
		if m.cfg.UI.Confirmations {
			m.confirm(ConfirmDeleteSelection, "")
			return m, nil
		}
		m.ed.DeleteSelected()
	case "e", "enter":
		switch {
		case sel.NodeID != "":
			if n, ok := m.ed.Active().Node(sel.NodeID); ok {
				m.startEdit(EditNodeTitle, n.ID, n.Title)
			}
		case sel.EdgeID != "":
			if e, _, ok := m.ed.Active().Edge(sel.EdgeID); ok {
				m.startEdit(EditEdgeLabel, e.ID, e.Label)
			}
		}
	case "i":
		m.startEdit(EditCaseName, m.ed.Active().ID, m.ed.Active().Name)
	case "F":
		if sel.NodeID == "" {
			m.fail(errors.New("select a record to edit its fields"))
			return m, nil
		}
		m.startEdit(EditNodeField, sel.NodeID, "")
	case "o":
		e, _, ok := m.ed.Active().Edge(sel.EdgeID)
		if !ok {
			m.fail(errors.New("select a thread to set its order"))
			return m, nil
		}
		order := ""
		if e.CustomOrder != nil {
			order = strconv.Itoa(*e.CustomOrder)
		}
		m.startEdit(EditEdgeOrder, e.ID, order)
	case "s":
		m.cycleStatus(sel)
	case "C":
		m.cycleColor(sel)
	case "a":
		return m, m.startExtractGraph()
	case "f":
		return m, m.startAutoFill(sel.NodeID)
	case "p":
		return m, m.startPatterns()
	case "w":
		m.promptFile(FileOpSaveArchive, archive.FileName(*m.ed.Active()))
	case "S":
		m.promptFile(FileOpSaveImage, strings.TrimSuffix(archive.FileName(*m.ed.Active()), archive.Ext)+".png")
	case "T":
		m.promptFile(FileOpSaveVisualTXT, strings.TrimSuffix(archive.FileName(*m.ed.Active()), archive.Ext)+".txt")
	}
	m.checkSaveError()
	return m, nil
}

// currentNodeType is the type 'n' creates.
func (m *model) currentNodeType() board.NodeType {
	types := newNodeTypes(m.ed.Active())
	return types[m.nodeType%len(types)]
}

func (m *model) deleteCategory(id string) {
	if m.ed.Mutate(func(b *board.Board) bool { return b.DeleteCategory(id) }) {
		m.nodeType = 0
		m.successMessage = "Category deleted"
	}
}

// cycleStatus steps a node through review states, or an edge through
// intensities.
func (m *model) cycleStatus(sel gesture.Selection) {
	switch {
	case sel.NodeID != "":
		m.ed.Mutate(func(b *board.Board) bool {
			return b.UpdateNode(sel.NodeID, func(n *board.Node) {
				n.Status = nextOf([]board.NodeStatus{board.StatusPending, board.StatusConfirmed, board.StatusHypothesis}, n.Status)
			})
		})
	case sel.EdgeID != "":
		m.ed.Mutate(func(b *board.Board) bool {
			return b.UpdateEdge(sel.EdgeID, func(e *board.Edge) {
				e.Intensity = nextOf([]board.Intensity{board.IntensityWeak, board.IntensityMedium, board.IntensityStrong}, e.Intensity)
			})
		})
	}
}

func (m *model) cycleColor(sel gesture.Selection) {
	if sel.EdgeID == "" {
		return
	}
	colors := make([]string, len(board.ThreadColors))
	for i, c := range board.ThreadColors {
		colors[i] = c.Color
	}
	m.ed.Mutate(func(b *board.Board) bool {
		return b.UpdateEdge(sel.EdgeID, func(e *board.Edge) {
			e.Color = nextOf(colors, e.Color)
		})
	})
}

// nextOf returns the element after cur, wrapping around; unknown values
// start over at the first element.
func nextOf[T comparable](list []T, cur T) T {
	for i, v := range list {
		if v == cur {
			return list[(i+1)%len(list)]
		}
	}
	return list[0]
}

func (m *model) startEdit(target EditTarget, id, value string) {
	m.editTarget = target
	m.editID = id
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	m.returnMode = m.mode
	m.mode = ModeEditing
}

func (m model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.input.Blur()
		m.mode = m.returnMode
		return m, nil
	case tea.KeyEnter:
		m.input.Blur()
		m.mode = m.returnMode
		m.commitEdit(strings.TrimSpace(m.input.Value()))
		m.checkSaveError()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) commitEdit(value string) {
	id := m.editID
	switch m.editTarget {
	case EditNodeTitle:
		m.ed.Mutate(func(b *board.Board) bool {
			return b.UpdateNode(id, func(n *board.Node) { n.Title = value })
		})
	case EditEdgeLabel:
		m.ed.Mutate(func(b *board.Board) bool {
			return b.UpdateEdge(id, func(e *board.Edge) { e.Label = value })
		})
	case EditCaseName:
		if value == "" {
			return
		}
		m.ed.Mutate(func(b *board.Board) bool {
			b.UpdateInfo(board.CaseInfo{Name: value})
			return true
		})
	case EditEdgeOrder:
		order := 0
		if value != "" {
			n, err := strconv.Atoi(value)
			if err != nil {
				m.fail(fmt.Errorf("order must be a number: %q", value))
				return
			}
			order = n
		}
		m.ed.Mutate(func(b *board.Board) bool { return b.SetCustomOrder(id, order) })
	case EditNodeField:
		if value == "" {
			return
		}
		label, val, err := parseField(value)
		if err != nil {
			m.fail(err)
			return
		}
		m.ed.Mutate(func(b *board.Board) bool { return setField(b, id, label, val) })
	case EditCategory:
		if value == "" {
			return
		}
		var cat board.CustomCategory
		m.ed.Mutate(func(b *board.Board) bool {
			n := len(b.Case().Categories)
			name, icon := parseCategory(value, n)
			var ok bool
			cat, ok = b.AddCategory(name, icon, categoryColor(n))
			return ok
		})
		if cat.ID == "" {
			return
		}
		m.nodeType = slices.Index(newNodeTypes(m.ed.Active()), board.NodeType(cat.ID))
		m.successMessage = "New records: " + cat.Name
	}
}

func (m *model) promptFile(op FileOperation, name string) {
	m.fileOp = op
	m.input.SetValue(name)
	m.input.CursorEnd()
	m.input.Focus()
	m.returnMode = m.mode
	m.mode = ModeFileInput
}

func (m model) handleFileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.input.Blur()
		m.mode = m.returnMode
		m.clearMessages()
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			m.errorMessage = "file name required"
			return m, nil
		}
		if m.fileOp == FileOpImport {
			m.input.Blur()
			m.mode = m.returnMode
			m.importFile(name)
			return m, nil
		}
		path := m.cfg.ExportPath(name)
		if _, err := os.Stat(path); err == nil && m.cfg.UI.Confirmations {
			m.input.Blur()
			m.pendingPath = path
			m.mode = m.returnMode
			m.confirm(ConfirmOverwriteFile, "")
			return m, nil
		}
		m.input.Blur()
		m.mode = m.returnMode
		return m, m.writeFile(path)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) importFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		m.fail(err)
		return
	}
	defer f.Close()
	c, err := m.ed.ImportCase(f)
	if err != nil {
		m.fail(err)
		return
	}
	m.refreshCases()
	m.selectedCase = slices.IndexFunc(m.cases, func(x board.Case) bool { return x.ID == c.ID })
	m.successMessage = "Imported " + c.Name
	m.checkSaveError()
}

// writeFile runs the pending export operation against path.
func (m *model) writeFile(path string) tea.Cmd {
	m.clearMessages()
	switch m.fileOp {
	case FileOpSaveArchive:
		if err := m.exportArchive(path); err != nil {
			m.fail(err)
			return nil
		}
		m.successMessage = "Saved " + path
	case FileOpSaveVisualTXT:
		if err := m.exportVisualTXT(path); err != nil {
			m.fail(err)
			return nil
		}
		m.successMessage = "Saved " + path
	case FileOpSaveImage:
		m.busy = "rendering " + filepath.Base(path)
		return exportImageCmd(m.ctx, m.ed.Active().Clone(), path)
	}
	return nil
}

func (m *model) confirm(action ConfirmAction, id string) {
	m.confirmAction = action
	m.confirmID = id
	m.returnMode = m.mode
	m.mode = ModeConfirm
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = m.returnMode
	switch msg.String() {
	case "y", "Y":
	default:
		return m, nil
	}

	switch m.confirmAction {
	case ConfirmQuit:
		m.cancel()
		return m, tea.Quit
	case ConfirmDeleteSelection:
		m.ed.DeleteSelected()
	case ConfirmDeleteCategory:
		m.deleteCategory(m.confirmID)
	case ConfirmDeleteCase:
		if err := m.ed.DeleteCase(m.confirmID); err != nil {
			m.fail(err)
		}
		m.refreshCases()
	case ConfirmOverwriteFile:
		path := m.pendingPath
		m.pendingPath = ""
		return m, m.writeFile(path)
	}
	m.checkSaveError()
	return m, nil
}

func (m *model) startExtractGraph() tea.Cmd {
	text, err := readClipboardText()
	if err != nil {
		m.fail(fmt.Errorf("clipboard: %w", err))
		return nil
	}
	if text == "" {
		m.fail(errors.New("clipboard is empty"))
		return nil
	}
	ch, err := m.ed.StartExtractGraph(m.ctx, text)
	if err != nil {
		m.fail(err)
		return nil
	}
	m.busy = "extracting records"
	return func() tea.Msg { return graphResultMsg(<-ch) }
}

func (m *model) startAutoFill(nodeID string) tea.Cmd {
	if nodeID == "" {
		m.fail(errors.New("select a record to fill in"))
		return nil
	}
	text, err := readClipboardText()
	if err != nil {
		m.fail(fmt.Errorf("clipboard: %w", err))
		return nil
	}
	ch, err := m.ed.StartAutoFill(m.ctx, nodeID, text)
	if err != nil {
		m.fail(err)
		return nil
	}
	m.busy = "filling in record"
	return func() tea.Msg { return entityResultMsg(<-ch) }
}

func (m *model) startPatterns() tea.Cmd {
	ch, err := m.ed.StartSuggestPatterns(m.ctx)
	if err != nil {
		m.fail(err)
		return nil
	}
	m.busy = "analysing case"
	return func() tea.Msg {
		r := <-ch
		return patternsMsg{text: r.Text, err: r.Err}
	}
}
