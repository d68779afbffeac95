package advisor

import (
	"context"
	"strings"

	"github.com/ziadkadry99/product-advisor/internal/llm"
	"github.com/ziadkadry99/product-advisor/internal/logger"
	"github.com/ziadkadry99/product-advisor/internal/websearch"
)

// GenerateRoutine asks for an AM routine built from the selected
// products. It starts a fresh conversation.
func (a *Advisor) GenerateRoutine(ctx context.Context) []ChatMessage {
	a.mu.Lock()
	products := a.state.Selected.Products()
	if len(products) == 0 {
		a.mu.Unlock()
		return a.emit(ctx, nil, newMessage(llm.RoleSystem, MsgEmptySelection))
	}
	a.state.History = nil
	a.mu.Unlock()

	out := a.emit(ctx, nil, newMessage(llm.RoleUser, MsgRoutineRequest))
	return a.dispatch(ctx, out, nil, routineRequest(products), routineSearchQuery(products))
}

// SendChat sends a free-form message. Blank input is ignored.
func (a *Advisor) SendChat(ctx context.Context, text string) []ChatMessage {
	message := strings.TrimSpace(text)
	if message == "" {
		return nil
	}

	a.mu.Lock()
	base := append([]llm.Message(nil), a.state.History...)
	a.mu.Unlock()

	out := a.emit(ctx, nil, newMessage(llm.RoleUser, message))
	return a.dispatch(ctx, out, base, expandFollowUp(message), message)
}

// dispatch runs one request/response turn on top of base, the history as
// it was when the request started, and appends the resulting messages to
// out. History only changes on success; the last turn to finish wins.
func (a *Advisor) dispatch(ctx context.Context, out []ChatMessage, base []llm.Message, userContent, searchQuery string) []ChatMessage {
	if !llm.IsConfigured(a.opts.Provider) {
		return a.emit(ctx, out, newMessage(llm.RoleSystem, MsgUnconfigured))
	}

	a.inflight.Add(1)
	defer a.inflight.Add(-1)

	historyWithUser := append(base, llm.Message{Role: llm.RoleUser, Content: userContent})

	a.mu.Lock()
	searchEnabled := a.state.WebSearch
	a.mu.Unlock()

	var sources []websearch.Source
	if searchEnabled && a.opts.Searcher != nil {
		sources = a.opts.Searcher.Search(ctx, searchQuery)
	}

	resp, err := a.opts.Provider.Complete(ctx, llm.CompletionRequest{
		Model:    a.opts.Model,
		Messages: buildMessages(historyWithUser, sources),
	})
	if err != nil {
		logger.Error("advisor request failed", "provider", a.opts.Provider.Name(), "error", err)
		return a.emit(ctx, out, newMessage(llm.RoleSystem, MsgAdvisorFailure))
	}

	a.mu.Lock()
	a.state.History = append(historyWithUser, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})
	a.mu.Unlock()

	out = a.emit(ctx, out, newMessage(llm.RoleAssistant, resp.Content+websearch.FormatForDisplay(sources)))
	if resp.Truncated() {
		out = a.emit(ctx, out, newMessage(llm.RoleSystem, MsgTruncated))
	}
	return out
}

func buildMessages(historyWithUser []llm.Message, sources []websearch.Source) []llm.Message {
	messages := make([]llm.Message, 0, len(historyWithUser)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	messages = append(messages, historyWithUser...)
	if len(sources) > 0 {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: websearch.FormatForPrompt(sources)})
	}
	return messages
}

func (a *Advisor) emit(ctx context.Context, out []ChatMessage, msg ChatMessage) []ChatMessage {
	if a.opts.Recorder != nil {
		if err := a.opts.Recorder.Record(ctx, msg); err != nil {
			logger.Warn("recording chat message", "error", err)
		}
	}
	return append(out, msg)
}
