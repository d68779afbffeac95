// Package advisor is the application controller. One Advisor holds the
// state of a single client session and exposes a handler per user intent.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ziadkadry99/product-advisor/internal/catalog"
	"github.com/ziadkadry99/product-advisor/internal/llm"
	"github.com/ziadkadry99/product-advisor/internal/logger"
	"github.com/ziadkadry99/product-advisor/internal/prefs"
	"github.com/ziadkadry99/product-advisor/internal/render"
	"github.com/ziadkadry99/product-advisor/internal/selection"
	"github.com/ziadkadry99/product-advisor/internal/websearch"
)

// ErrUnknownProduct is returned when toggling an id that is not in the
// catalog. The selection is left unchanged.
var ErrUnknownProduct = errors.New("unknown product")

// CatalogLoader fetches the product catalog.
type CatalogLoader func(ctx context.Context) (*catalog.Catalog, error)

// CachedLoader returns a loader that calls load until it first succeeds
// and then serves that catalog to every caller. Failures are not cached.
func CachedLoader(load CatalogLoader) CatalogLoader {
	var (
		mu  sync.Mutex
		cat *catalog.Catalog
	)
	return func(ctx context.Context) (*catalog.Catalog, error) {
		mu.Lock()
		cached := cat
		mu.Unlock()
		if cached != nil {
			return cached, nil
		}

		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}

		mu.Lock()
		defer mu.Unlock()
		if cat == nil {
			cat = loaded
		}
		return cat, nil
	}
}

// Recorder receives every message shown to the user.
type Recorder interface {
	Record(ctx context.Context, msg ChatMessage) error
}

// ChatMessage is one entry in the visible chat log.
type ChatMessage struct {
	Role llm.Role `json:"role"`
	Text string   `json:"text"`
	HTML string   `json:"html"`
}

func newMessage(role llm.Role, text string) ChatMessage {
	return ChatMessage{Role: role, Text: text, HTML: render.Markdown(text)}
}

// State is the session's application state.
type State struct {
	Products  []catalog.Product
	Filtered  catalog.Result
	Selected  *selection.Set
	History   []llm.Message
	RTL       bool
	WebSearch bool

	category string
	term     string
}

// SelectionView is the selection as presented to clients.
type SelectionView struct {
	IDs      []int             `json:"ids"`
	Products []catalog.Product `json:"products"`
	Summary  string            `json:"summary"`
	// Selected reports the toggled product's state after ToggleProduct.
	Selected bool `json:"selected"`
}

// Options wires an Advisor to its collaborators. Prefs and Load are
// required. A nil Provider behaves as unconfigured and a nil Searcher
// disables web search.
type Options struct {
	Load     CatalogLoader
	Prefs    prefs.Store
	Provider llm.Provider
	Model    string
	Searcher websearch.Searcher
	Recorder Recorder
	// WebSearch is the initial state of the web search toggle.
	WebSearch bool
}

// Advisor is the controller for one client session.
type Advisor struct {
	opts Options

	mu      sync.Mutex
	state   State
	catalog *catalog.Catalog

	inflight atomic.Int32
}

// New creates an Advisor. Call Load before using it.
func New(opts Options) *Advisor {
	if opts.Provider == nil {
		opts.Provider = llm.Unconfigured{}
	}
	return &Advisor{
		opts: opts,
		state: State{
			Selected:  selection.New(),
			Filtered:  catalog.Result{Placeholder: catalog.PlaceholderInitial},
			WebSearch: opts.WebSearch,
		},
	}
}

// Load fetches the catalog and restores the persisted selection and
// layout preference.
func (a *Advisor) Load(ctx context.Context) error {
	rtl, err := prefs.LoadRTL(ctx, a.opts.Prefs)
	if err != nil {
		logger.Warn("reading layout preference", "error", err)
	}

	cat, loadErr := a.opts.Load(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.state.RTL = rtl
	if loadErr != nil {
		a.state.Filtered = catalog.Result{Placeholder: catalog.PlaceholderLoadError}
		return fmt.Errorf("loading products: %w", loadErr)
	}

	a.catalog = cat
	a.state.Products = cat.All()

	ids, err := prefs.LoadSelectedIDs(ctx, a.opts.Prefs)
	if err != nil {
		logger.Warn("reading saved selection", "error", err)
	}
	a.state.Selected.Clear()
	a.state.Selected.Hydrate(ids, cat.Find)

	a.state.Filtered = catalog.Filter(a.state.Products, a.state.category, a.state.term)
	return nil
}

// Snapshot returns a copy of the current state.
func (a *Advisor) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.state
	s.History = append([]llm.Message(nil), a.state.History...)
	sel := selection.New()
	sel.Hydrate(a.state.Selected.IDs(), a.findLocked)
	s.Selected = sel
	return s
}

// Categories lists the catalog's categories.
func (a *Advisor) Categories() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.catalog.Categories()
}

// ApplyFilters narrows the product grid. Before the catalog has loaded
// it returns the current placeholder unchanged.
func (a *Advisor) ApplyFilters(category, term string) catalog.Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.state.Products) == 0 {
		return a.state.Filtered
	}
	a.state.category = category
	a.state.term = term
	a.state.Filtered = catalog.Filter(a.state.Products, category, term)
	return a.state.Filtered
}

// Selection returns the current selection view.
func (a *Advisor) Selection() SelectionView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selectionLocked()
}

// ToggleProduct flips id in the selection and persists the result.
func (a *Advisor) ToggleProduct(ctx context.Context, id int) (SelectionView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.findLocked(id)
	if !ok {
		return a.selectionLocked(), ErrUnknownProduct
	}

	selected := a.state.Selected.Toggle(p)
	a.persistSelectionLocked(ctx)

	view := a.selectionLocked()
	view.Selected = selected
	return view, nil
}

// ClearSelection deselects everything and re-applies the current filters.
func (a *Advisor) ClearSelection(ctx context.Context) SelectionView {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state.Selected.Clear()
	a.persistSelectionLocked(ctx)
	if len(a.state.Products) > 0 {
		a.state.Filtered = catalog.Filter(a.state.Products, a.state.category, a.state.term)
	}
	return a.selectionLocked()
}

// SetRTL stores the layout-direction preference.
func (a *Advisor) SetRTL(ctx context.Context, rtl bool) error {
	a.mu.Lock()
	a.state.RTL = rtl
	a.mu.Unlock()

	if err := prefs.SaveRTL(ctx, a.opts.Prefs, rtl); err != nil {
		return fmt.Errorf("saving layout preference: %w", err)
	}
	return nil
}

// SetWebSearch turns live references on or off for later chat turns.
func (a *Advisor) SetWebSearch(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.WebSearch = enabled
}

// Busy reports whether a chat or routine request is in flight.
func (a *Advisor) Busy() bool {
	return a.inflight.Load() > 0
}

func (a *Advisor) findLocked(id int) (catalog.Product, bool) {
	return a.catalog.Find(id)
}

func (a *Advisor) selectionLocked() SelectionView {
	return SelectionView{
		IDs:      a.state.Selected.IDs(),
		Products: a.state.Selected.Products(),
		Summary:  a.state.Selected.Summary(),
	}
}

func (a *Advisor) persistSelectionLocked(ctx context.Context) {
	if err := prefs.SaveSelectedIDs(ctx, a.opts.Prefs, a.state.Selected.IDs()); err != nil {
		logger.Warn("saving selection", "error", err)
	}
}
