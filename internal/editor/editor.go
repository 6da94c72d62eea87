// Package editor owns the list of cases and the one being edited. It
// routes pointer input through the gesture classifier, applies extraction
// results and persists the whole list after each mutation.
package editor

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	json "github.com/goccy/go-json"

	"casewall/internal/archive"
	"casewall/internal/board"
	"casewall/internal/curve"
	"casewall/internal/extract"
	"casewall/internal/geom"
	"casewall/internal/gesture"
	"casewall/internal/logger"
	"casewall/internal/store"
	"casewall/internal/viewport"
)

var (
	ErrNoActiveCase = errors.New("editor: no active case")
	ErrCaseNotFound = errors.New("editor: case not found")
	ErrNoExtractor  = errors.New("editor: extraction is not configured")
)

// Draft nodes are laid out on a shallow diagonal starting here.
const (
	draftOriginX = 400.0
	draftOriginY = 300.0
	draftStepX   = 150.0
	draftStepY   = 20.0
)

type Option func(*Editor)

// WithExtractor enables the AI operations.
func WithExtractor(c extract.Client) Option {
	return func(e *Editor) { e.ai = c }
}

func WithIDs(newID board.IDFunc) Option {
	return func(e *Editor) { e.newID = newID }
}

func WithClock(now board.Clock) Option {
	return func(e *Editor) { e.now = now }
}

// WithMinCardSize makes cards hit-test as at least w by h screen pixels,
// matching renderers that never draw a card smaller than that.
func WithMinCardSize(w, h float64) Option {
	return func(e *Editor) { e.minCardW, e.minCardH = w, h }
}

// Editor is not safe for concurrent use. Extraction runs in its own
// goroutine but results are applied by the caller's goroutine.
type Editor struct {
	repo  store.Repository
	ai    extract.Client
	newID board.IDFunc
	now   board.Clock

	cases    []board.Case
	activeID string

	view    viewport.Transform
	gesture *gesture.Classifier
	width   float64
	height  float64

	minCardW float64
	minCardH float64

	dirty   bool
	saveErr error
}

// New loads every case from repo.
func New(ctx context.Context, repo store.Repository, opts ...Option) (*Editor, error) {
	e := &Editor{
		repo:  repo,
		newID: board.NanoID,
		now:   time.Now,
		view:  viewport.New(),
	}
	for _, o := range opts {
		o(e)
	}
	e.gesture = gesture.New(&e.view, e)

	cases, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cases: %w", err)
	}
	e.cases = cases
	logger.Debug("cases loaded", "count", len(cases))
	return e, nil
}

func (e *Editor) boardOpts() []board.Option {
	return []board.Option{board.WithIDs(e.newID), board.WithClock(e.now)}
}

func (e *Editor) index(id string) int {
	return slices.IndexFunc(e.cases, func(c board.Case) bool { return c.ID == id })
}

// Active returns the case being edited, or nil.
func (e *Editor) Active() *board.Case {
	i := e.index(e.activeID)
	if i < 0 {
		return nil
	}
	return &e.cases[i]
}

func (e *Editor) board() *board.Board {
	c := e.Active()
	if c == nil {
		return nil
	}
	return board.New(c, e.boardOpts()...)
}

// commit persists the case list. While a drag is running the save is
// deferred to pointer-up.
func (e *Editor) commit() {
	e.dirty = true
	if e.gesture.Dragging() != nil {
		return
	}
	e.flush()
}

func (e *Editor) flush() {
	if !e.dirty {
		return
	}
	e.dirty = false
	if err := e.repo.Save(context.Background(), e.cases); err != nil {
		logger.Error("save cases", "err", err)
		e.saveErr = err
	}
}

// SaveError returns and clears the last persistence failure.
func (e *Editor) SaveError() error {
	err := e.saveErr
	e.saveErr = nil
	return err
}

// Cases lists every case, most recently updated first.
func (e *Editor) Cases() []board.Case {
	out := slices.Clone(e.cases)
	slices.SortStableFunc(out, func(a, b board.Case) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out
}

// NewCase creates an empty case at the top of the list and opens it.
func (e *Editor) NewCase() board.Case {
	c := board.NewCase(e.boardOpts()...)
	e.cases = append([]board.Case{c}, e.cases...)
	e.commit()
	e.open(c.ID)
	logger.Info("case created", "id", c.ID)
	return c
}

// OpenCase makes id the active case with a fresh view.
func (e *Editor) OpenCase(id string) error {
	if e.index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrCaseNotFound, id)
	}
	e.open(id)
	return nil
}

func (e *Editor) open(id string) {
	e.activeID = id
	e.view.Reset()
	e.gesture = gesture.New(&e.view, e)
}

// CloseCase returns to the case list.
func (e *Editor) CloseCase() {
	e.flush()
	e.activeID = ""
	e.gesture = gesture.New(&e.view, e)
}

func (e *Editor) DeleteCase(id string) error {
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCaseNotFound, id)
	}
	e.cases = slices.Delete(e.cases, i, i+1)
	if e.activeID == id {
		e.activeID = ""
	}
	e.commit()
	return nil
}

// ImportCase reads a .mapinv archive and prepends it to the list.
func (e *Editor) ImportCase(r io.Reader) (board.Case, error) {
	c, err := archive.Import(r, e.newID)
	if err != nil {
		return board.Case{}, err
	}
	e.cases = append([]board.Case{c}, e.cases...)
	e.commit()
	logger.Info("case imported", "id", c.ID, "nodes", len(c.Nodes), "edges", len(c.Edges))
	return c, nil
}

// ExportCase writes the active case as a .mapinv archive.
func (e *Editor) ExportCase(w io.Writer) error {
	c := e.Active()
	if c == nil {
		return ErrNoActiveCase
	}
	return archive.Export(w, *c)
}

// Mutate runs fn against the active case and saves when it reports a
// change.
func (e *Editor) Mutate(fn func(b *board.Board) bool) bool {
	b := e.board()
	if b == nil {
		return false
	}
	if !fn(b) {
		return false
	}
	e.commit()
	return true
}

// View is the current viewport transform.
func (e *Editor) View() viewport.Transform { return e.view }

// ResetView restores the identity transform.
func (e *Editor) ResetView() { e.view.Reset() }

// PanBy shifts the view by a screen-space delta.
func (e *Editor) PanBy(dx, dy float64) { e.view.PanBy(dx, dy) }

// SetScreenSize records the viewport size in screen pixels.
func (e *Editor) SetScreenSize(width, height float64) {
	e.width, e.height = width, height
}

func (e *Editor) Gesture() *gesture.Classifier { return e.gesture }

func (e *Editor) Selection() gesture.Selection { return e.gesture.Selection() }

// AddNode places a new card under the centre of the viewport and selects
// it.
func (e *Editor) AddNode(t board.NodeType) (board.Node, bool) {
	b := e.board()
	if b == nil {
		return board.Node{}, false
	}
	n := b.AddNode(t, e.view.VisualCenter(e.width, e.height))
	e.gesture.Select(gesture.Selection{NodeID: n.ID})
	e.commit()
	return n, true
}

// DeleteSelected removes the selected node (with its edges) and the
// selected edge.
func (e *Editor) DeleteSelected() bool {
	b := e.board()
	if b == nil {
		return false
	}
	sel := e.gesture.Selection()
	changed := false
	if sel.NodeID != "" && b.DeleteNode(sel.NodeID) {
		changed = true
	}
	if sel.EdgeID != "" && b.DeleteEdge(sel.EdgeID) {
		changed = true
	}
	e.gesture.Forget(sel.NodeID)
	e.gesture.Forget(sel.EdgeID)
	if changed {
		e.commit()
	}
	return changed
}

// ResetCurvature straightens the selected edge back to the default sag.
func (e *Editor) ResetCurvature() bool {
	id := e.gesture.Selection().EdgeID
	if id == "" {
		return false
	}
	return e.Mutate(func(b *board.Board) bool { return b.ResetCurvature(id) })
}

// HitTest finds what lies under a screen point. Cards drawn last are on
// top, then edge handles, then edge bodies.
func (e *Editor) HitTest(p geom.ScreenPoint) gesture.Hit {
	c := e.Active()
	if c == nil {
		return gesture.Hit{Kind: gesture.HitCanvas}
	}
	m := e.view.ScreenToModel(p)

	for i := len(c.Nodes) - 1; i >= 0; i-- {
		n := c.Nodes[i]
		tl := e.view.ModelToScreen(n.Position)
		br := e.view.ModelToScreen(n.Position.Add(geom.Model(board.NodeWidth, board.NodeHeight)))
		br.X = max(br.X, tl.X+e.minCardW)
		br.Y = max(br.Y, tl.Y+e.minCardH)
		if p.X >= tl.X && p.X <= br.X && p.Y >= tl.Y && p.Y <= br.Y {
			return gesture.Hit{Kind: gesture.HitNode, ID: n.ID}
		}
	}

	paths := make([]curve.Path, len(c.Edges))
	ok := make([]bool, len(c.Edges))
	for i, ed := range c.Edges {
		paths[i], ok[i] = curve.For(c, ed)
		if ok[i] && paths[i].OnHandle(m) {
			return gesture.Hit{Kind: gesture.HitEdgeHandle, ID: ed.ID}
		}
	}
	for i, ed := range c.Edges {
		if ok[i] && paths[i].Hit(m) {
			return gesture.Hit{Kind: gesture.HitEdge, ID: ed.ID}
		}
	}
	return gesture.Hit{Kind: gesture.HitCanvas}
}

func (e *Editor) PointerDown(p geom.ScreenPoint) {
	if e.Active() == nil {
		return
	}
	e.gesture.PointerDown(p, e.HitTest(p))
}

func (e *Editor) PointerMove(p geom.ScreenPoint) {
	e.gesture.PointerMove(p)
}

func (e *Editor) PointerUp(p geom.ScreenPoint) {
	e.gesture.PointerUp(p)
	e.flush()
}

func (e *Editor) Wheel(deltaY float64) {
	e.gesture.Wheel(deltaY)
}

// NodePosition implements gesture.Graph.
func (e *Editor) NodePosition(id string) (geom.ModelPoint, bool) {
	c := e.Active()
	if c == nil {
		return geom.ModelPoint{}, false
	}
	n, ok := c.Node(id)
	if !ok {
		return geom.ModelPoint{}, false
	}
	return n.Position, true
}

// MoveNode implements gesture.Graph.
func (e *Editor) MoveNode(id string, pos geom.ModelPoint) bool {
	return e.Mutate(func(b *board.Board) bool { return b.MoveNode(id, pos) })
}

// SetControlPoint implements gesture.Graph.
func (e *Editor) SetControlPoint(edgeID string, p geom.ModelPoint) bool {
	return e.Mutate(func(b *board.Board) bool { return b.SetControlPoint(edgeID, p) })
}

// Connect implements gesture.Graph.
func (e *Editor) Connect(source, target string) bool {
	return e.Mutate(func(b *board.Board) bool {
		_, ok := b.AddEdge(source, target)
		return ok
	})
}

// GraphResult carries the outcome of an asynchronous graph extraction.
type GraphResult struct {
	CaseID string
	Draft  extract.GraphDraft
	Err    error
}

// EntityResult carries the outcome of an asynchronous auto-fill.
type EntityResult struct {
	CaseID string
	NodeID string
	Draft  extract.EntityDraft
	Err    error
}

// StartExtractGraph asks the extractor for a graph in the background. The
// result must be handed to ApplyGraphDraft on the editor's goroutine.
func (e *Editor) StartExtractGraph(ctx context.Context, text string) (<-chan GraphResult, error) {
	c := e.Active()
	if c == nil {
		return nil, ErrNoActiveCase
	}
	if e.ai == nil {
		return nil, ErrNoExtractor
	}
	caseID, ai := c.ID, e.ai
	out := make(chan GraphResult, 1)
	go func() {
		d, err := ai.ExtractGraph(ctx, text)
		out <- GraphResult{CaseID: caseID, Draft: d, Err: err}
	}()
	return out, nil
}

// StartAutoFill asks the extractor to fill nodeID from text in the
// background. The result must be handed to ApplyEntityDraft.
func (e *Editor) StartAutoFill(ctx context.Context, nodeID, text string) (<-chan EntityResult, error) {
	c := e.Active()
	if c == nil {
		return nil, ErrNoActiveCase
	}
	if e.ai == nil {
		return nil, ErrNoExtractor
	}
	n, ok := c.Node(nodeID)
	if !ok {
		return nil, fmt.Errorf("editor: node %s not found", nodeID)
	}
	caseID, nodeType, ai := c.ID, n.Type, e.ai
	out := make(chan EntityResult, 1)
	go func() {
		d, err := ai.ExtractEntity(ctx, text, nodeType)
		out <- EntityResult{CaseID: caseID, NodeID: nodeID, Draft: d, Err: err}
	}()
	return out, nil
}

// ApplyGraphDraft merges an extracted graph into the case it was started
// from. Nothing changes when the extraction failed or the draft is
// invalid. It returns the number of nodes and edges created.
func (e *Editor) ApplyGraphDraft(r GraphResult) (nodes, edges int, err error) {
	if r.Err != nil {
		return 0, 0, r.Err
	}
	if err := r.Draft.Validate(); err != nil {
		return 0, 0, err
	}
	i := e.index(r.CaseID)
	if i < 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrCaseNotFound, r.CaseID)
	}
	b := board.New(&e.cases[i], e.boardOpts()...)
	today := e.now().Format("2006-01-02")

	created := make([]board.Node, 0, len(r.Draft.Nodes))
	for i, dn := range r.Draft.Nodes {
		n := board.Node{
			Type:        extract.ParseType(dn.Type),
			Title:       dn.Title,
			Description: dn.Description,
			Date:        cmp.Or(dn.Date, today),
			Tags:        dn.Tags,
			Status:      cmp.Or(extract.ParseStatus(dn.Status), board.StatusPending),
			Position:    geom.Model(draftOriginX+draftStepX*float64(i), draftOriginY+draftStepY*float64(i)),
		}
		switch n.Type {
		case board.TypePerson:
			n.PersonFields = &board.PersonFields{}
		case board.TypeLocation:
			n.LocationFields = &board.LocationFields{}
		}
		created = append(created, b.InsertNode(n))
	}

	existing := b.Case().Nodes[:len(b.Case().Nodes)-len(created)]
	resolve := func(title string) (string, bool) {
		for _, n := range created {
			if n.Title == title {
				return n.ID, true
			}
		}
		for _, n := range existing {
			if n.Title == title {
				return n.ID, true
			}
		}
		return "", false
	}

	for _, de := range r.Draft.Edges {
		src, ok1 := resolve(de.SourceTitle)
		dst, ok2 := resolve(de.TargetTitle)
		if !ok1 || !ok2 {
			logger.Debug("draft edge skipped", "source", de.SourceTitle, "target", de.TargetTitle)
			continue
		}
		ed, ok := b.AddEdge(src, dst)
		if !ok {
			continue
		}
		b.UpdateEdge(ed.ID, func(ed *board.Edge) {
			if de.Label != "" {
				ed.Label = de.Label
			}
			ed.Intensity = extract.ParseIntensity(de.Intensity)
			ed.Notes = de.Notes
		})
		edges++
	}

	if len(created) > 0 || edges > 0 {
		e.commit()
	}
	logger.Info("graph draft applied", "case", r.CaseID, "nodes", len(created), "edges", edges)
	return len(created), edges, nil
}

// ApplyEntityDraft merges an auto-fill result into its node.
func (e *Editor) ApplyEntityDraft(r EntityResult) error {
	if r.Err != nil {
		return r.Err
	}
	i := e.index(r.CaseID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCaseNotFound, r.CaseID)
	}
	b := board.New(&e.cases[i], e.boardOpts()...)
	if !b.MergeExtracted(r.NodeID, r.Draft.Patch()) {
		return fmt.Errorf("editor: node %s not found", r.NodeID)
	}
	e.commit()
	return nil
}

// PatternResult carries a free-text analysis of a case.
type PatternResult struct {
	Text string
	Err  error
}

// StartSuggestPatterns asks the extractor to analyse the active case in
// the background. Nothing is modified.
func (e *Editor) StartSuggestPatterns(ctx context.Context) (<-chan PatternResult, error) {
	c := e.Active()
	if c == nil {
		return nil, ErrNoActiveCase
	}
	if e.ai == nil {
		return nil, ErrNoExtractor
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	ai := e.ai
	out := make(chan PatternResult, 1)
	go func() {
		text, err := ai.SuggestPatterns(ctx, string(data))
		out <- PatternResult{Text: text, Err: err}
	}()
	return out, nil
}

// Close flushes pending changes and closes the repository.
func (e *Editor) Close() error {
	e.flush()
	return e.repo.Close()
}
