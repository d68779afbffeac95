package advisor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/product-advisor/internal/catalog"
	"github.com/ziadkadry99/product-advisor/internal/llm"
	"github.com/ziadkadry99/product-advisor/internal/prefs"
	"github.com/ziadkadry99/product-advisor/internal/websearch"
)

var testProducts = []catalog.Product{
	{ID: 1, Name: "Hydrating Cleanser", Brand: "CeraVe", Category: "cleanser", Description: "Gentle cleanser."},
	{ID: 2, Name: "Revitalift Serum", Brand: "L'Oreal Paris", Category: "skincare", Description: "Serum with pure hyaluronic acid."},
	{ID: 3, Name: "Elvive Shampoo", Brand: "L'Oreal Paris", Category: "haircare", Description: "Repairing shampoo for damaged hair."},
}

type fakeProvider struct {
	mu    sync.Mutex
	calls []llm.CompletionRequest
	resp  *llm.CompletionResponse
	err   error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeProvider) last() llm.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type fakeSearcher struct {
	queries []string
	sources []websearch.Source
}

func (f *fakeSearcher) Search(_ context.Context, query string) []websearch.Source {
	f.queries = append(f.queries, query)
	return f.sources
}

type recorder struct{ msgs []ChatMessage }

func (r *recorder) Record(_ context.Context, msg ChatMessage) error {
	r.msgs = append(r.msgs, msg)
	return nil
}

func newStore(t *testing.T) prefs.Store {
	t.Helper()
	s, err := prefs.NewStore(prefs.StoreTypeMemory)
	require.NoError(t, err)
	return s
}

func staticLoader(products []catalog.Product) CatalogLoader {
	return func(context.Context) (*catalog.Catalog, error) {
		return catalog.New(products), nil
	}
}

func newAdvisor(t *testing.T, opts Options) *Advisor {
	t.Helper()
	if opts.Load == nil {
		opts.Load = staticLoader(testProducts)
	}
	if opts.Prefs == nil {
		opts.Prefs = newStore(t)
	}
	a := New(opts)
	require.NoError(t, a.Load(context.Background()))
	return a
}

func roles(msgs []ChatMessage) []llm.Role {
	out := make([]llm.Role, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

func TestLoadHydratesFromPrefs(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, prefs.SaveSelectedIDs(ctx, store, []int{3, 99, 1}))
	require.NoError(t, prefs.SaveRTL(ctx, store, true))

	a := newAdvisor(t, Options{Prefs: store})

	sel := a.Selection()
	assert.Equal(t, []int{3, 1}, sel.IDs)
	assert.Equal(t, "2 products selected. Tap a card or the × icon to remove.", sel.Summary)

	snap := a.Snapshot()
	assert.True(t, snap.RTL)
	assert.Len(t, snap.Products, 3)
	assert.Equal(t, catalog.PlaceholderNoFilter, snap.Filtered.Placeholder)
}

func TestLoadFailure(t *testing.T) {
	a := New(Options{
		Prefs: newStore(t),
		Load: func(context.Context) (*catalog.Catalog, error) {
			return nil, catalog.ErrLoad
		},
	})

	err := a.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrLoad))

	assert.Equal(t, catalog.PlaceholderLoadError, a.Snapshot().Filtered.Placeholder)
	assert.Equal(t, catalog.PlaceholderLoadError, a.ApplyFilters("skincare", "").Placeholder)

	_, err = a.ToggleProduct(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestApplyFilters(t *testing.T) {
	a := newAdvisor(t, Options{})

	res := a.ApplyFilters("", "shampoo")
	require.Len(t, res.Products, 1)
	assert.Equal(t, 3, res.Products[0].ID)

	res = a.ApplyFilters("makeup", "")
	assert.Empty(t, res.Products)
	assert.Equal(t, catalog.PlaceholderNoMatches, res.Placeholder)
}

func TestToggleProductPersists(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	a := newAdvisor(t, Options{Prefs: store})

	view, err := a.ToggleProduct(ctx, 2)
	require.NoError(t, err)
	assert.True(t, view.Selected)
	assert.Equal(t, []int{2}, view.IDs)

	view, err = a.ToggleProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, view.IDs)

	ids, err := prefs.LoadSelectedIDs(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, ids)

	view, err = a.ToggleProduct(ctx, 2)
	require.NoError(t, err)
	assert.False(t, view.Selected)
	assert.Equal(t, []int{1}, view.IDs)
}

func TestToggleUnknownProductIsNoop(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	a := newAdvisor(t, Options{Prefs: store})

	view, err := a.ToggleProduct(ctx, 42)
	assert.ErrorIs(t, err, ErrUnknownProduct)
	assert.Empty(t, view.IDs)

	_, ok, err := store.Get(ctx, prefs.KeySelectedProducts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearSelection(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	a := newAdvisor(t, Options{Prefs: store})
	a.ToggleProduct(ctx, 1)
	a.ApplyFilters("cleanser", "")

	view := a.ClearSelection(ctx)
	assert.Empty(t, view.IDs)
	assert.Equal(t, "No products selected yet.", view.Summary)

	raw, ok, err := store.Get(ctx, prefs.KeySelectedProducts)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", raw)

	assert.Len(t, a.Snapshot().Filtered.Products, 1)
}

func TestSetRTL(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	a := newAdvisor(t, Options{Prefs: store})

	require.NoError(t, a.SetRTL(ctx, true))
	require.NoError(t, a.SetRTL(ctx, true))

	rtl, err := prefs.LoadRTL(ctx, store)
	require.NoError(t, err)
	assert.True(t, rtl)
	assert.True(t, a.Snapshot().RTL)
}

func TestGenerateRoutineEmptySelection(t *testing.T) {
	p := &fakeProvider{resp: &llm.CompletionResponse{Content: "x"}}
	a := newAdvisor(t, Options{Provider: p})

	msgs := a.GenerateRoutine(context.Background())
	require.Len(t, msgs, 1)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, MsgEmptySelection, msgs[0].Text)
	assert.Empty(t, p.calls)
}

func TestGenerateRoutine(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{resp: &llm.CompletionResponse{Content: "**AM**: cleanse", FinishReason: "stop"}}
	a := newAdvisor(t, Options{Provider: p, Model: "gpt-4o"})
	a.ToggleProduct(ctx, 2)
	a.ToggleProduct(ctx, 1)

	msgs := a.GenerateRoutine(ctx)
	assert.Equal(t, []llm.Role{llm.RoleUser, llm.RoleAssistant}, roles(msgs))
	assert.Equal(t, MsgRoutineRequest, msgs[0].Text)
	assert.Equal(t, "<strong>AM</strong>: cleanse", msgs[1].HTML)

	req := p.last()
	assert.Equal(t, "gpt-4o", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, systemPrompt, req.Messages[0].Content)

	detailed := req.Messages[1].Content
	assert.True(t, strings.HasPrefix(detailed,
		"I have selected these L'Oréal group products:\n"+
			"1. Revitalift Serum (Skincare) - Serum with pure hyaluronic acid.\n"+
			"2. Hydrating Cleanser (Cleanser) - Gentle cleanser.\n"+
			"Create a personalized routine"), detailed)
	assert.Contains(t, detailed, "under 1800 characters")

	history := a.Snapshot().History
	require.Len(t, history, 2)
	assert.Equal(t, detailed, history[0].Content)
	assert.Equal(t, "**AM**: cleanse", history[1].Content)
}

func TestGenerateRoutineResetsHistory(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{resp: &llm.CompletionResponse{Content: "ok"}}
	a := newAdvisor(t, Options{Provider: p})
	a.ToggleProduct(ctx, 1)

	a.SendChat(ctx, "hello")
	a.SendChat(ctx, "again")
	require.Len(t, a.Snapshot().History, 4)

	a.GenerateRoutine(ctx)
	assert.Len(t, p.last().Messages, 2)
	assert.Len(t, a.Snapshot().History, 2)
}

func TestSendChatKeepsHistory(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{resp: &llm.CompletionResponse{Content: "answer"}}
	a := newAdvisor(t, Options{Provider: p})

	assert.Nil(t, a.SendChat(ctx, "   "))
	assert.Empty(t, p.calls)

	a.SendChat(ctx, "first")
	msgs := a.SendChat(ctx, "  second  ")
	assert.Equal(t, "second", msgs[0].Text)

	req := p.last()
	require.Len(t, req.Messages, 4)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "first"},
		{Role: llm.RoleAssistant, Content: "answer"},
		{Role: llm.RoleUser, Content: "second"},
	}, req.Messages[1:])
}

func TestSendChatExpandsYes(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{resp: &llm.CompletionResponse{Content: "PM routine"}}
	s := &fakeSearcher{}
	a := newAdvisor(t, Options{Provider: p, Searcher: s})
	a.SetWebSearch(true)

	for _, in := range []string{"yes", " YES ", "Yes"} {
		msgs := a.SendChat(ctx, in)
		assert.Equal(t, strings.TrimSpace(in), msgs[0].Text)
		got := p.last().Messages
		assert.Equal(t, followUpExpansion, got[len(got)-1].Content)
	}
	assert.Equal(t, []string{"yes", "YES", "Yes"}, s.queries)

	a.SendChat(ctx, "yes please")
	got := p.last().Messages
	assert.Equal(t, "yes please", got[len(got)-1].Content)
}

func TestSendChatWithSources(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{resp: &llm.CompletionResponse{Content: "Use it nightly (1)."}}
	s := &fakeSearcher{sources: []websearch.Source{{Title: "Retinol guide", URL: "https://example.com/r", Snippet: "About retinol"}}}
	a := newAdvisor(t, Options{Provider: p, Searcher: s})

	a.SendChat(ctx, "retinol?")
	assert.Empty(t, s.queries)
	assert.Len(t, p.last().Messages, 2)

	a.SetWebSearch(true)
	msgs := a.SendChat(ctx, "retinol?")
	require.Len(t, msgs, 2)
	assert.Equal(t, "Use it nightly (1).\n\nSources:\n(1) Retinol guide - https://example.com/r", msgs[1].Text)

	req := p.last()
	lastMsg := req.Messages[len(req.Messages)-1]
	assert.Equal(t, llm.RoleSystem, lastMsg.Role)
	assert.Equal(t, websearch.FormatForPrompt(s.sources), lastMsg.Content)

	// History keeps the raw content without the trailer.
	history := a.Snapshot().History
	assert.Equal(t, "Use it nightly (1).", history[len(history)-1].Content)
}

func TestSendChatEmptySearchOmitsSourcesBlock(t *testing.T) {
	p := &fakeProvider{resp: &llm.CompletionResponse{Content: "ok"}}
	a := newAdvisor(t, Options{Provider: p, Searcher: &fakeSearcher{}})
	a.SetWebSearch(true)

	msgs := a.SendChat(context.Background(), "hi")
	assert.Equal(t, "ok", msgs[1].Text)
	assert.Len(t, p.last().Messages, 2)
}

func TestSendChatTruncated(t *testing.T) {
	p := &fakeProvider{resp: &llm.CompletionResponse{Content: "Step 1...", FinishReason: llm.FinishReasonLength}}
	a := newAdvisor(t, Options{Provider: p})

	msgs := a.SendChat(context.Background(), "long routine")
	assert.Equal(t, []llm.Role{llm.RoleUser, llm.RoleAssistant, llm.RoleSystem}, roles(msgs))
	assert.Equal(t, MsgTruncated, msgs[2].Text)
}

func TestSendChatFailureLeavesHistory(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{resp: &llm.CompletionResponse{Content: "ok"}}
	a := newAdvisor(t, Options{Provider: p})
	a.SendChat(ctx, "first")

	p.err = llm.ErrRequestFailed
	msgs := a.SendChat(ctx, "second")
	assert.Equal(t, []llm.Role{llm.RoleUser, llm.RoleSystem}, roles(msgs))
	assert.Equal(t, MsgAdvisorFailure, msgs[1].Text)
	assert.Len(t, a.Snapshot().History, 2)
	assert.False(t, a.Busy())
}

func TestUnconfigured(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	a := newAdvisor(t, Options{Provider: llm.Unconfigured{}, Recorder: rec})
	a.ToggleProduct(ctx, 1)

	msgs := a.SendChat(ctx, "hello")
	assert.Equal(t, []llm.Role{llm.RoleUser, llm.RoleSystem}, roles(msgs))
	assert.Equal(t, MsgUnconfigured, msgs[1].Text)

	msgs = a.GenerateRoutine(ctx)
	assert.Equal(t, []llm.Role{llm.RoleUser, llm.RoleSystem}, roles(msgs))
	assert.Equal(t, MsgUnconfigured, msgs[1].Text)

	assert.Len(t, rec.msgs, 4)
	assert.Empty(t, a.Snapshot().History)
}

func TestNilProviderIsUnconfigured(t *testing.T) {
	a := newAdvisor(t, Options{})
	msgs := a.SendChat(context.Background(), "hello")
	assert.Equal(t, MsgUnconfigured, msgs[len(msgs)-1].Text)
}

func TestRecorderSeesEveryMessage(t *testing.T) {
	rec := &recorder{}
	p := &fakeProvider{resp: &llm.CompletionResponse{Content: "hi there"}}
	a := newAdvisor(t, Options{Provider: p, Recorder: rec})

	msgs := a.SendChat(context.Background(), "hi")
	assert.Equal(t, msgs, rec.msgs)
}

// gatedProvider holds its first call until release is closed. Later calls
// return immediately.
type gatedProvider struct {
	mu      sync.Mutex
	calls   []llm.CompletionRequest
	entered chan struct{}
	release chan struct{}
}

func newGatedProvider() *gatedProvider {
	return &gatedProvider{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedProvider) Name() string { return "gated" }

func (g *gatedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	first := len(g.calls) == 1
	g.mu.Unlock()

	if first {
		close(g.entered)
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &llm.CompletionResponse{Content: "late reply"}, nil
	}
	return &llm.CompletionResponse{Content: "AM routine"}, nil
}

func (g *gatedProvider) call(i int) llm.CompletionRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[i]
}

func TestGenerateRoutineStartsFreshWhileChatPending(t *testing.T) {
	ctx := context.Background()
	p := newGatedProvider()
	a := newAdvisor(t, Options{Provider: p})
	a.ToggleProduct(ctx, 1)

	a.mu.Lock()
	a.state.History = []llm.Message{
		{Role: llm.RoleUser, Content: "old question"},
		{Role: llm.RoleAssistant, Content: "old reply"},
	}
	a.mu.Unlock()

	chatDone := make(chan []ChatMessage)
	go func() { chatDone <- a.SendChat(ctx, "another question") }()
	<-p.entered
	assert.True(t, a.Busy())

	// The routine is served while the chat turn is still pending.
	routine := a.GenerateRoutine(ctx)
	require.Equal(t, []llm.Role{llm.RoleUser, llm.RoleAssistant}, roles(routine))
	assert.Equal(t, "AM routine", routine[1].Text)

	req := p.call(1)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, llm.RoleUser, req.Messages[1].Role)
	assert.Contains(t, req.Messages[1].Content, "I have selected these")

	close(p.release)
	chat := <-chatDone
	require.Equal(t, []llm.Role{llm.RoleUser, llm.RoleAssistant}, roles(chat))
	assert.Equal(t, "late reply", chat[1].Text)

	// The chat turn was built on the history it started with.
	chatReq := p.call(0)
	require.Len(t, chatReq.Messages, 4)
	assert.Equal(t, "old question", chatReq.Messages[1].Content)
	assert.Equal(t, "another question", chatReq.Messages[3].Content)
	assert.False(t, a.Busy())
}

func TestSendChatAfterRoutineUsesResetHistory(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{resp: &llm.CompletionResponse{Content: "ok"}}
	a := newAdvisor(t, Options{Provider: p})
	a.ToggleProduct(ctx, 1)
	a.SendChat(ctx, "before")

	a.GenerateRoutine(ctx)
	a.SendChat(ctx, "after")

	// system, routine request, routine reply, "after"
	require.Len(t, p.last().Messages, 4)
	assert.Equal(t, "after", p.last().Messages[3].Content)
}

func TestCachedLoader(t *testing.T) {
	calls := 0
	fail := true
	load := CachedLoader(func(context.Context) (*catalog.Catalog, error) {
		calls++
		if fail {
			return nil, errors.New("offline")
		}
		return catalog.New(testProducts), nil
	})

	_, err := load(context.Background())
	require.Error(t, err)

	fail = false
	first, err := load(context.Background())
	require.NoError(t, err)
	second, err := load(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 2, calls)
}
