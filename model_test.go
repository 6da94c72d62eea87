package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casewall/internal/archive"
	"casewall/internal/board"
	"casewall/internal/config"
	"casewall/internal/editor"
	"casewall/internal/extract"
	"casewall/internal/geom"
	"casewall/internal/gesture"
	"casewall/internal/store"
)

// newTestModel returns a model on a 100x31 terminal: a 100x30 cell board,
// 800x480 pixels.
func newTestModel(t *testing.T) model {
	t.Helper()
	ed, err := editor.New(context.Background(), store.NewMemory(),
		editor.WithIDs(board.SequentialIDs()),
		editor.WithClock(func() time.Time { return time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC) }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { ed.Close() })

	m := initialModel(context.Background(), config.Default(), ed)
	return update(m, tea.WindowSizeMsg{Width: 100, Height: 31})
}

func update(m model, msg tea.Msg) model {
	next, _ := m.Update(msg)
	return next.(model)
}

func press(m model, keys ...string) model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEscape}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m = update(m, msg)
	}
	return m
}

func mouse(m model, action tea.MouseAction, button tea.MouseButton, col, row int) model {
	return update(m, tea.MouseMsg{X: col, Y: row, Action: action, Button: button})
}

// withNode opens a new case holding one person card. The card sits at
// (300,190): the view centre minus the placement offset.
func withNode(t *testing.T) (model, board.Node) {
	t.Helper()
	m := press(newTestModel(t), "n", "n")
	require.Equal(t, ModeNormal, m.mode)
	c := m.ed.Active()
	require.NotNil(t, c)
	require.Len(t, c.Nodes, 1)
	return m, c.Nodes[0]
}

func TestStartupNewCase(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, ModeStartup, m.mode)
	assert.Contains(t, m.View(), "No cases yet")

	m = press(m, "n")
	assert.Equal(t, ModeNormal, m.mode)
	require.NotNil(t, m.ed.Active())
	assert.Contains(t, m.View(), "Mode: BOARD")
}

func TestOpenInitialCase(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.openInitialCase(""))
	assert.Equal(t, ModeStartup, m.mode)

	err := m.openInitialCase("case-missing")
	assert.ErrorIs(t, err, editor.ErrCaseNotFound)
	assert.Equal(t, ModeStartup, m.mode)

	c := m.ed.NewCase()
	m.ed.CloseCase()
	m.refreshCases()
	m.cfg.UI.StartMenu = false
	require.NoError(t, m.openInitialCase(""))
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, c.ID, m.ed.Active().ID)
}

func TestAddNodeAtCentre(t *testing.T) {
	_, n := withNode(t)
	assert.Equal(t, geom.Model(300, 190), n.Position)
	assert.Equal(t, board.TypePerson, n.Type)
}

func TestTypeCycleChangesNewNodes(t *testing.T) {
	m := press(newTestModel(t), "n", "t", "n")
	nodes := m.ed.Active().Nodes
	require.Len(t, nodes, 1)
	assert.Equal(t, board.BuiltinTypes[1], nodes[0].Type)
}

func TestMouseDragMovesNode(t *testing.T) {
	m, n := withNode(t)

	// cell (50,15) is pixel (404,248), inside the card
	m = mouse(m, tea.MouseActionPress, tea.MouseButtonLeft, 50, 15)
	m = mouse(m, tea.MouseActionMotion, tea.MouseButtonLeft, 60, 15)
	m = mouse(m, tea.MouseActionRelease, tea.MouseButtonNone, 60, 15)

	got, ok := m.ed.Active().Node(n.ID)
	require.True(t, ok)
	assert.Equal(t, geom.Model(380, 190), got.Position)
	assert.Equal(t, n.ID, m.ed.Selection().NodeID)
}

func TestMouseOnStatusRowIgnored(t *testing.T) {
	m, _ := withNode(t)
	m = press(m, "esc")
	m = mouse(m, tea.MouseActionPress, tea.MouseButtonLeft, 50, 30)
	m = mouse(m, tea.MouseActionRelease, tea.MouseButtonNone, 50, 30)
	assert.Empty(t, m.ed.Selection().NodeID)
}

func TestMouseWheelZooms(t *testing.T) {
	m := press(newTestModel(t), "n")
	m = mouse(m, tea.MouseActionPress, tea.MouseButtonWheelUp, 10, 10)
	assert.Greater(t, m.ed.View().Zoom, 1.0)

	m = press(m, "0")
	assert.Equal(t, 1.0, m.ed.View().Zoom)
	m = press(m, "-")
	assert.Less(t, m.ed.View().Zoom, 1.0)
}

func TestPanKeys(t *testing.T) {
	m := press(newTestModel(t), "n", "l")
	assert.Equal(t, -32.0, m.ed.View().X)

	m = press(m, "J")
	assert.Equal(t, -128.0, m.ed.View().Y)
}

func TestEditTitle(t *testing.T) {
	m, n := withNode(t)
	m = press(m, "e")
	require.Equal(t, ModeEditing, m.mode)
	assert.Equal(t, n.Title, m.input.Value())

	m.input.SetValue("  Ana Souza ")
	m = press(m, "enter")
	assert.Equal(t, ModeNormal, m.mode)
	got, _ := m.ed.Active().Node(n.ID)
	assert.Equal(t, "Ana Souza", got.Title)
}

func TestEditCancelKeepsTitle(t *testing.T) {
	m, n := withNode(t)
	m = press(m, "e")
	m.input.SetValue("discarded")
	m = press(m, "esc")
	got, _ := m.ed.Active().Node(n.ID)
	assert.Equal(t, n.Title, got.Title)
}

func TestRenameCase(t *testing.T) {
	m, _ := withNode(t)
	m = press(m, "i")
	m.input.SetValue("Operação Maré")
	m = press(m, "enter")
	assert.Equal(t, "Operação Maré", m.ed.Active().Name)
}

func TestCycleStatus(t *testing.T) {
	m, n := withNode(t)
	m = press(m, "s")
	got, _ := m.ed.Active().Node(n.ID)
	assert.Equal(t, board.StatusConfirmed, got.Status)

	m = press(m, "s", "s")
	got, _ = m.ed.Active().Node(n.ID)
	assert.Equal(t, board.StatusPending, got.Status)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, _ := withNode(t)
	m = press(m, "x")
	require.Equal(t, ModeConfirm, m.mode)
	assert.Contains(t, m.View(), "Delete this record")

	m = press(m, "n")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Len(t, m.ed.Active().Nodes, 1)

	m = press(m, "x", "y")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Empty(t, m.ed.Active().Nodes)
}

func TestBackToCaseList(t *testing.T) {
	m, _ := withNode(t)
	name := m.ed.Active().Name
	m = press(m, "b")
	assert.Equal(t, ModeStartup, m.mode)
	assert.Nil(t, m.ed.Active())
	require.Len(t, m.cases, 1)
	assert.Contains(t, m.View(), name)

	m = press(m, "enter")
	assert.Equal(t, ModeNormal, m.mode)
	assert.NotNil(t, m.ed.Active())
}

func TestImportSelectsImportedCase(t *testing.T) {
	old := board.NewCase(board.WithClock(func() time.Time { return time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC) }))
	old.Name = "Arquivo Antigo"
	path := filepath.Join(t.TempDir(), "old.mapinv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, archive.Export(f, old))
	require.NoError(t, f.Close())

	m, _ := withNode(t)
	m = press(m, "b")
	m.importFile(path)

	require.Len(t, m.cases, 2)
	assert.Equal(t, "Arquivo Antigo", m.cases[m.selectedCase].Name)
	m = press(m, "enter")
	require.NotNil(t, m.ed.Active())
	assert.Equal(t, "Arquivo Antigo", m.ed.Active().Name)
}

func TestDeleteCaseFromList(t *testing.T) {
	m, _ := withNode(t)
	m = press(m, "b", "d", "y")
	assert.Equal(t, ModeStartup, m.mode)
	assert.Empty(t, m.cases)
	assert.Empty(t, m.ed.Cases())
}

func TestHelpToggle(t *testing.T) {
	m := press(newTestModel(t), "?")
	assert.True(t, m.help)
	assert.Contains(t, m.View(), "Casewall Help")

	m = press(m, "j")
	assert.Equal(t, 1, m.helpScroll)
	m = press(m, "esc")
	assert.False(t, m.help)
}

func TestGraphResultMessage(t *testing.T) {
	m, n := withNode(t)
	m = update(m, graphResultMsg{
		CaseID: m.ed.Active().ID,
		Draft: extract.GraphDraft{
			Nodes: []extract.DraftNode{{Title: "Cais 3", Type: "local"}},
			Edges: []extract.DraftEdge{{SourceTitle: n.Title, TargetTitle: "Cais 3", Label: "visitou"}},
		},
	})
	assert.Equal(t, "Added 1 records and 1 connections", m.successMessage)
	assert.Len(t, m.ed.Active().Nodes, 2)
	assert.Len(t, m.ed.Active().Edges, 1)
}

func TestGraphResultFailure(t *testing.T) {
	m, _ := withNode(t)
	m.busy = "extracting records"
	m = update(m, graphResultMsg{CaseID: m.ed.Active().ID, Err: extract.ErrEmptyResponse})
	assert.Empty(t, m.busy)
	assert.Equal(t, extract.ErrEmptyResponse.Error(), m.errorMessage)
	assert.Len(t, m.ed.Active().Nodes, 1)
}

func TestExtractWithoutProvider(t *testing.T) {
	m := press(newTestModel(t), "n")
	_, err := m.ed.StartExtractGraph(context.Background(), "text")
	assert.ErrorIs(t, err, editor.ErrNoExtractor)
}

func TestExportDoneMessage(t *testing.T) {
	m := press(newTestModel(t), "n")
	m = update(m, exportDoneMsg{path: "/tmp/case.png"})
	assert.Equal(t, "Saved /tmp/case.png", m.successMessage)
}

func TestQuitConfirm(t *testing.T) {
	m := press(newTestModel(t), "n", "q")
	require.Equal(t, ModeConfirm, m.mode)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCustomCategory(t *testing.T) {
	m := press(newTestModel(t), "n", "g")
	require.Equal(t, ModeEditing, m.mode)
	m.input.SetValue("Veículo car")
	m = press(m, "enter")

	cats := m.ed.Active().Categories
	require.Len(t, cats, 1)
	assert.Equal(t, "Veículo", cats[0].Name)
	assert.Equal(t, "Car", cats[0].Icon)
	assert.Equal(t, board.NodeType(cats[0].ID), m.currentNodeType())

	m = press(m, "n")
	nodes := m.ed.Active().Nodes
	require.Len(t, nodes, 1)
	assert.Equal(t, "Veículo", m.ed.Active().Appearance(nodes[0].Type).Name)

	m = press(m, "t")
	assert.Equal(t, board.TypePerson, m.currentNodeType())
	m = press(m, "G")
	assert.Equal(t, ModeNormal, m.mode)
	assert.NotEmpty(t, m.errorMessage)

	for range board.BuiltinTypes {
		m = press(m, "t")
	}
	m = press(m, "G")
	require.Equal(t, ModeConfirm, m.mode)
	assert.Contains(t, m.View(), "Veículo")
	m = press(m, "y")
	assert.Empty(t, m.ed.Active().Categories)
	assert.Equal(t, board.TypePerson, m.currentNodeType())
	assert.Len(t, m.ed.Active().Nodes, 1)
}

func TestEdgeOrderPrompt(t *testing.T) {
	m, a := withNode(t)
	b, ok := m.ed.AddNode(board.TypeEvent)
	require.True(t, ok)
	require.True(t, m.ed.Connect(a.ID, b.ID))
	edgeID := m.ed.Active().Edges[0].ID
	m.ed.Gesture().Select(gesture.Selection{EdgeID: edgeID})

	m = press(m, "o")
	require.Equal(t, ModeEditing, m.mode)
	m.input.SetValue("7")
	m = press(m, "enter")
	e, _, _ := m.ed.Active().Edge(edgeID)
	require.NotNil(t, e.CustomOrder)
	assert.Equal(t, 7, *e.CustomOrder)

	m = press(m, "o")
	assert.Equal(t, "7", m.input.Value())
	m.input.SetValue("seven")
	m = press(m, "enter")
	assert.NotEmpty(t, m.errorMessage)

	m = press(m, "o")
	m.input.SetValue("")
	m = press(m, "enter")
	e, _, _ = m.ed.Active().Edge(edgeID)
	assert.Nil(t, e.CustomOrder)
}

func TestOrderPromptNeedsThread(t *testing.T) {
	m, _ := withNode(t)
	m = press(m, "o")
	assert.Equal(t, ModeNormal, m.mode)
	assert.NotEmpty(t, m.errorMessage)
}

func TestFieldPrompt(t *testing.T) {
	m, n := withNode(t)
	set := func(m model, value string) model {
		m = press(m, "F")
		require.Equal(t, ModeEditing, m.mode)
		m.input.SetValue(value)
		return press(m, "enter")
	}

	m = set(m, "age: 41")
	m = set(m, "Apelido: Nando")
	got, _ := m.ed.Active().Node(n.ID)
	require.NotNil(t, got.PersonFields)
	assert.Equal(t, "41", got.PersonFields.Age)
	assert.Equal(t, []board.CustomField{{Label: "Apelido", Value: "Nando"}}, got.CustomFields)

	m = set(m, "apelido:")
	got, _ = m.ed.Active().Node(n.ID)
	assert.Empty(t, got.CustomFields)

	m = set(m, "no separator")
	assert.Equal(t, errFieldSyntax.Error(), m.errorMessage)
}

func TestEscLeavesConnectModeFirst(t *testing.T) {
	m, n := withNode(t)
	m = press(m, "c")
	require.True(t, m.ed.Gesture().Connecting())

	m = press(m, "esc")
	assert.False(t, m.ed.Gesture().Connecting())
	assert.Equal(t, n.ID, m.ed.Selection().NodeID)

	m = press(m, "esc")
	assert.Empty(t, m.ed.Selection().NodeID)
}
