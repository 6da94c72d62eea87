package main

type Mode int

const (
	ModeStartup Mode = iota
	ModeNormal
	ModeEditing
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSaveArchive FileOperation = iota
	FileOpSaveImage
	FileOpSaveVisualTXT
	FileOpImport
)

type ConfirmAction int

const (
	ConfirmDeleteSelection ConfirmAction = iota
	ConfirmDeleteCase
	ConfirmQuit
	ConfirmOverwriteFile
	ConfirmDeleteCategory
)

// EditTarget is what the inline text input is editing.
type EditTarget int

const (
	EditNodeTitle EditTarget = iota
	EditEdgeLabel
	EditCaseName
	EditEdgeOrder
	EditNodeField
	EditCategory
)

const (
	minCardCols = 6
	minCardRows = 3
	labelMax    = 24
	// rows reserved below the board for the status line
	statusRows = 1
)
