package services

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Lllllllleong/pdfsplitflow/internal/handoff"
)

var waitingPage = template.Must(template.New("waiting").Parse(`<!doctype html>
<html><head><title>Split PDF</title></head>
<body><p>Waiting for split parameters.</p></body></html>
`))

// SuccessFunction serves the result of a split for download.
type SuccessFunction struct {
	surface *handoff.Surface
}

// NewSuccessFunction creates a SuccessFunction from the environment.
func NewSuccessFunction(ctx context.Context) (*SuccessFunction, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	handoffStore, err := newHandoffStore(ctx, config)
	if err != nil {
		return nil, err
	}
	return NewSuccessFunctionWith(handoffStore, config.MaxInlineBytes), nil
}

// NewSuccessFunctionWith wires a SuccessFunction from an explicit store.
func NewSuccessFunctionWith(handoffStore handoff.Store, maxInlineBytes int) *SuccessFunction {
	return &SuccessFunction{surface: handoff.NewSurface(handoff.NewCarrier(handoffStore, maxInlineBytes))}
}

// Process renders the view for the navigation parameters q.
func (f *SuccessFunction) Process(ctx context.Context, q url.Values) (*handoff.View, error) {
	return f.surface.Render(ctx, q)
}

// HandleSuccess is the HTTP entry point of the split-success function.
func (f *SuccessFunction) HandleSuccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	view, err := f.Process(r.Context(), r.URL.Query())
	if err != nil {
		slog.Warn("Could not render split result", "error", err)
		http.Error(w, err.Error(), HTTPStatus(err))
		return
	}

	if view.Waiting {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := waitingPage.Execute(w, nil); err != nil {
			slog.Error("Failed to write waiting page", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", view.Download.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", view.Filename))
	w.Header().Set("X-Page-Count", strconv.Itoa(view.PageCount))
	w.Header().Set("Cache-Control", "no-store")
	http.ServeContent(w, r, view.Filename, time.Time{}, view.Download.Reader())
}
