package main

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"

	"casewall/internal/board"
	"casewall/internal/config"
	"casewall/internal/editor"
)

type model struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg *config.Config
	ed  *editor.Editor

	width      int
	height     int
	mode       Mode
	help       bool
	helpScroll int

	// dashboard
	cases        []board.Case
	selectedCase int

	// inline editing and file prompts share one input
	input         textinput.Model
	editTarget    EditTarget
	editID        string
	fileOp        FileOperation
	confirmAction ConfirmAction
	confirmID     string
	pendingPath   string
	returnMode    Mode

	nodeType int // index into newNodeTypes for 'n'
	busy     string

	errorMessage   string
	successMessage string
}

// Results delivered back to Update from background work.
type (
	graphResultMsg  editor.GraphResult
	entityResultMsg editor.EntityResult
	patternsMsg     struct {
		text string
		err  error
	}
	exportDoneMsg struct {
		path string
		err  error
	}
)
