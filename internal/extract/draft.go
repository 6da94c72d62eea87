package extract

import (
	"errors"
	"strings"

	"casewall/internal/board"
)

// DraftNode is one entity proposed by graph extraction.
type DraftNode struct {
	Title       string   `json:"title"`
	Type        string   `json:"type" jsonschema:"enum=pessoa,enum=evento,enum=local,enum=prova,enum=hipotese,enum=pista"`
	Description string   `json:"description"`
	Date        string   `json:"date" jsonschema:"description=Date as YYYY-MM-DD or empty"`
	Status      string   `json:"status" jsonschema:"enum=confirmado,enum=pendente,enum=hipotese"`
	Tags        []string `json:"tags"`
}

// DraftEdge links two draft (or existing) nodes by title.
type DraftEdge struct {
	SourceTitle string `json:"sourceTitle"`
	TargetTitle string `json:"targetTitle"`
	Label       string `json:"label"`
	Intensity   string `json:"intensity" jsonschema:"enum=fraca,enum=media,enum=forte"`
	Notes       string `json:"notes"`
}

// GraphDraft is the result of extracting a whole graph from free text.
type GraphDraft struct {
	Nodes []DraftNode `json:"nodes"`
	Edges []DraftEdge `json:"edges"`
}

// Validate rejects drafts that cannot be applied as a unit.
func (g GraphDraft) Validate() error {
	for i, n := range g.Nodes {
		if strings.TrimSpace(n.Title) == "" {
			return &DraftError{Index: i, Reason: "node without title"}
		}
	}
	return nil
}

// DraftError reports the first structurally invalid draft item.
type DraftError struct {
	Index  int
	Reason string
}

func (e *DraftError) Error() string {
	return "invalid draft: " + e.Reason
}

var ErrEmptyResponse = errors.New("extract: empty response")

// EntityDraft is a partial record for a single node.
type EntityDraft struct {
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Date           string              `json:"date"`
	Status         string              `json:"status" jsonschema:"enum=confirmado,enum=pendente,enum=hipotese"`
	PersonFields   DraftPerson         `json:"personFields"`
	LocationFields DraftLocation       `json:"locationFields"`
	CustomFields   []board.CustomField `json:"customFields"`
}

type DraftPerson struct {
	TaxID     string `json:"cpf"`
	BirthDate string `json:"dob"`
	Age       string `json:"age"`
}

type DraftLocation struct {
	PostalCode string `json:"cep"`
	State      string `json:"estado"`
	City       string `json:"municipio"`
	Street     string `json:"logradouro"`
	District   string `json:"bairro"`
	Complement string `json:"complemento"`
	Number     string `json:"numero"`
}

// Patch converts the draft into a board patch. Field groups that came
// back entirely empty are left out so they do not create empty groups.
func (d EntityDraft) Patch() board.Patch {
	p := board.Patch{
		Title:        strings.TrimSpace(d.Title),
		Description:  strings.TrimSpace(d.Description),
		Date:         strings.TrimSpace(d.Date),
		Status:       ParseStatus(d.Status),
		CustomFields: d.CustomFields,
	}
	if d.PersonFields != (DraftPerson{}) {
		pf := board.PersonFields(d.PersonFields)
		p.Person = &pf
	}
	if d.LocationFields != (DraftLocation{}) {
		lf := board.LocationFields(d.LocationFields)
		p.Location = &lf
	}
	return p
}

// ParseType maps a model-supplied type onto a built-in kind, defaulting
// to clue.
func ParseType(s string) board.NodeType {
	t := board.NodeType(strings.ToLower(strings.TrimSpace(s)))
	if t.IsBuiltin() {
		return t
	}
	return board.TypeClue
}

// ParseStatus returns "" for anything that is not a known status.
func ParseStatus(s string) board.NodeStatus {
	switch st := board.NodeStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case board.StatusConfirmed, board.StatusPending, board.StatusHypothesis:
		return st
	}
	return ""
}

// ParseIntensity defaults to medium.
func ParseIntensity(s string) board.Intensity {
	switch i := board.Intensity(strings.ToLower(strings.TrimSpace(s))); i {
	case board.IntensityWeak, board.IntensityMedium, board.IntensityStrong:
		return i
	}
	return board.IntensityMedium
}
