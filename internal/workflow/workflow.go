// Package workflow is the state machine behind a split session: it owns the
// loaded file, the per-page inclusion flags and the busy/error status.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Lllllllleong/pdfsplitflow/internal/models"
	"github.com/Lllllllleong/pdfsplitflow/internal/pdf"
	"github.com/Lllllllleong/pdfsplitflow/internal/store"
)

// Phase is the position of a workflow in its lifecycle.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseEditing
	PhaseSplitting
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "EMPTY"
	case PhaseEditing:
		return "EDITING"
	case PhaseSplitting:
		return "SPLITTING"
	case PhaseDone:
		return "DONE"
	case PhaseFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Executor materializes a page selection. *splitter.Splitter implements it.
type Executor interface {
	Execute(ctx context.Context, source []byte, included []int) (*models.SplitOutput, error)
}

// State is a point-in-time copy of the workflow.
type State struct {
	Phase     Phase
	File      *models.UploadedFile
	PageCount int
	Pages     []models.PageEntry
	Busy      bool
	Error     string
	Result    *models.SplitResult
}

// Workflow drives one file at a time. The mutex only protects transitions;
// the busy flag is what keeps actions out while the engine is running.
type Workflow struct {
	engine   pdf.Engine
	executor Executor
	files    *store.FileStore

	mu        sync.Mutex
	phase     Phase
	file      *models.UploadedFile
	pages     []models.PageEntry
	busy      bool
	errMsg    string
	result    *models.SplitResult
	observers []func(busy bool)
}

// New returns an empty workflow.
func New(engine pdf.Engine, executor Executor, files *store.FileStore) *Workflow {
	return &Workflow{engine: engine, executor: executor, files: files}
}

// OnBusyChange registers fn to be called, outside the lock, every time the
// busy flag flips.
func (w *Workflow) OnBusyChange(fn func(busy bool)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observers = append(w.observers, fn)
}

func (w *Workflow) notifyBusy(busy bool) {
	w.mu.Lock()
	observers := append([]func(bool){}, w.observers...)
	w.mu.Unlock()
	for _, fn := range observers {
		fn(busy)
	}
}

// Snapshot returns a copy of the current state.
func (w *Workflow) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := State{
		Phase:     w.phase,
		File:      w.file,
		PageCount: len(w.pages),
		Pages:     append([]models.PageEntry(nil), w.pages...),
		Busy:      w.busy,
		Error:     w.errMsg,
	}
	if w.result != nil {
		r := *w.result
		s.Result = &r
	}
	return s
}

// Busy reports whether an operation is in flight.
func (w *Workflow) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// HasUnsavedSelection reports whether the user has excluded pages that have
// not been split yet.
func (w *Workflow) HasUnsavedSelection() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase != PhaseEditing {
		return false
	}
	for _, p := range w.pages {
		if !p.Included {
			return true
		}
	}
	return false
}

// IncludedIndices returns the kept page indices in ascending order.
func (w *Workflow) IncludedIndices() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.includedLocked()
}

func (w *Workflow) includedLocked() []int {
	var out []int
	for _, p := range w.pages {
		if p.Included {
			out = append(out, p.Index)
		}
	}
	return out
}

// LoadFile reads file's page count and enters the editing phase with every
// page included. Only valid from the empty phase. On failure the file is not
// retained and the error message is recorded.
func (w *Workflow) LoadFile(ctx context.Context, file *models.UploadedFile) error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return models.ErrBusy
	}
	if w.phase != PhaseEmpty {
		w.mu.Unlock()
		return fmt.Errorf("%w: load requires %s, workflow is %s", models.ErrInvalidTransition, PhaseEmpty, w.phase)
	}
	w.errMsg = ""
	w.busy = true
	w.mu.Unlock()
	w.notifyBusy(true)

	pageCount, err := w.pageCount(ctx, file)

	w.mu.Lock()
	w.busy = false
	if err != nil {
		w.errMsg = err.Error()
		w.mu.Unlock()
		w.notifyBusy(false)
		slog.Warn("Failed to load file.", "error", err)
		return err
	}
	w.file = file
	w.pages = make([]models.PageEntry, pageCount)
	for i := range w.pages {
		w.pages[i] = models.PageEntry{Index: i, Included: true}
	}
	w.phase = PhaseEditing
	w.mu.Unlock()
	w.notifyBusy(false)

	logCtx := slog.With("fileId", file.ID, "fileName", file.Name, "pageCount", pageCount)
	logCtx.Info("File loaded.")
	if err := w.files.StoreFiles(ctx, []models.UploadedFile{*file}); err != nil {
		logCtx.Warn("Could not mirror file metadata to session storage.", "error", err)
	}
	return nil
}

func (w *Workflow) pageCount(ctx context.Context, file *models.UploadedFile) (int, error) {
	if file == nil {
		return 0, fmt.Errorf("%w: no file selected", models.ErrDocumentLoad)
	}
	doc, err := w.engine.Load(ctx, file.Bytes)
	if err != nil {
		if !errors.Is(err, models.ErrDocumentLoad) {
			err = fmt.Errorf("%w: %v", models.ErrDocumentLoad, err)
		}
		return 0, fmt.Errorf("could not read %q: %w", file.Name, err)
	}
	if doc.PageCount() == 0 {
		return 0, fmt.Errorf("could not read %q: %w: document has no pages", file.Name, models.ErrDocumentLoad)
	}
	return doc.PageCount(), nil
}

// edit applies fn to the pages when the workflow is editable.
func (w *Workflow) edit(fn func(pages []models.PageEntry) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return models.ErrBusy
	}
	if w.phase != PhaseEditing {
		return fmt.Errorf("%w: page selection requires %s, workflow is %s", models.ErrInvalidTransition, PhaseEditing, w.phase)
	}
	w.errMsg = ""
	return fn(w.pages)
}

// TogglePage flips the inclusion of the page at index.
func (w *Workflow) TogglePage(index int) error {
	return w.edit(func(pages []models.PageEntry) error {
		if index < 0 || index >= len(pages) {
			return fmt.Errorf("%w: index %d, document has %d pages", models.ErrPageRange, index, len(pages))
		}
		pages[index].Included = !pages[index].Included
		return nil
	})
}

// SelectAll includes every page.
func (w *Workflow) SelectAll() error {
	return w.edit(func(pages []models.PageEntry) error {
		for i := range pages {
			pages[i].Included = true
		}
		return nil
	})
}

// SelectNone excludes every page.
func (w *Workflow) SelectNone() error {
	return w.edit(func(pages []models.PageEntry) error {
		for i := range pages {
			pages[i].Included = false
		}
		return nil
	})
}

// Invert flips every page.
func (w *Workflow) Invert() error {
	return w.edit(func(pages []models.PageEntry) error {
		for i := range pages {
			pages[i].Included = !pages[i].Included
		}
		return nil
	})
}

// Split hands the included pages, in source order, to the executor. With no
// page included it records models.ErrEmptySelection and stays in the editing
// phase without calling the executor.
func (w *Workflow) Split(ctx context.Context) error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return models.ErrBusy
	}
	if w.phase != PhaseEditing {
		w.mu.Unlock()
		return fmt.Errorf("%w: split requires %s, workflow is %s", models.ErrInvalidTransition, PhaseEditing, w.phase)
	}
	included := w.includedLocked()
	if len(included) == 0 {
		w.errMsg = models.ErrEmptySelection.Error()
		w.mu.Unlock()
		return models.ErrEmptySelection
	}
	w.errMsg = ""
	w.busy = true
	w.phase = PhaseSplitting
	file := w.file
	w.mu.Unlock()
	w.notifyBusy(true)

	logCtx := slog.With("fileId", file.ID, "includedPages", len(included))
	out, err := w.executor.Execute(ctx, file.Bytes, included)

	w.mu.Lock()
	w.busy = false
	if err != nil {
		w.phase = PhaseFailed
		w.errMsg = fmt.Sprintf("split failed: %v", err)
		w.mu.Unlock()
		w.notifyBusy(false)
		logCtx.Error("Split failed.", "error", err)
		return err
	}
	w.phase = PhaseDone
	w.result = &models.SplitResult{
		Encoded:      out.Encoded,
		FilenameStem: file.Stem(),
		PageCount:    len(out.SourcePages),
		SourcePages:  out.SourcePages,
	}
	w.mu.Unlock()
	w.notifyBusy(false)
	logCtx.Info("Split finished.")
	return nil
}

// Result returns the encoded result of a successful split, or nil.
func (w *Workflow) Result() *models.SplitResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil {
		return nil
	}
	r := *w.result
	return &r
}

// Reset returns to the empty phase from any phase and clears the file store.
// It is refused while busy because a running split cannot be cancelled.
func (w *Workflow) Reset(ctx context.Context) error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return models.ErrBusy
	}
	w.phase = PhaseEmpty
	w.file = nil
	w.pages = nil
	w.errMsg = ""
	w.result = nil
	w.mu.Unlock()

	if err := w.files.ClearStoredFiles(ctx); err != nil {
		slog.Warn("Could not clear session file metadata.", "error", err)
	}
	return nil
}
