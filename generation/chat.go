package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/scholia/ai"
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/search"
)

const chatKind = "chat"

// Turn is the pair of messages recorded by one chat exchange.
type Turn struct {
	User      *core.ChatMessage
	Assistant *core.ChatMessage
}

// SendMessage records query as the owner's message on the notebook and
// appends the assistant's answer. If answering fails, the assistant message
// carries a readable error and the error is also returned together with the
// recorded turn. Errors raised before the user message is stored return a
// nil turn.
func (o *Orchestrator) SendMessage(ctx context.Context, owner core.OwnerID, notebookID core.ID, query string) (*Turn, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query: %w", core.ErrInvalidChatMessage, core.ErrEmptyContent)
	}
	if _, err := o.guard.Notebook(ctx, owner, notebookID); err != nil {
		return nil, err
	}

	unlock := o.locks.lock(notebookID)
	defer unlock()

	userMsg, err := o.repos.Chats.AddChatMessage(ctx, &core.ChatMessage{
		NotebookID: notebookID,
		Owner:      owner,
		Role:       core.RoleUser,
		Content:    query,
	})
	if err != nil {
		return nil, err
	}
	turn := &Turn{User: userMsg}
	logger := o.logger.With("notebook", notebookID, "message", userMsg.Id)

	start := time.Now()
	answer, answerErr := o.answer(ctx, owner, query)
	o.metrics.GenerationFinished(chatKind, time.Since(start), answerErr)

	reply := answer
	if answerErr != nil {
		logger.Error("chat turn failed", "err", answerErr)
		reply = errorReply(answerErr)
	}

	// The reply is written even when ctx is done so the turn is complete.
	turn.Assistant, err = o.repos.Chats.AddChatMessage(context.WithoutCancel(ctx), &core.ChatMessage{
		NotebookID: notebookID,
		Owner:      owner,
		Role:       core.RoleAssistant,
		Content:    reply,
	})
	if err != nil {
		return turn, errors.Join(answerErr, err)
	}
	return turn, answerErr
}

// answer retrieves context for query and generates the reply text.
func (o *Orchestrator) answer(ctx context.Context, owner core.OwnerID, query string) (string, error) {
	results, err := o.searcher.FindSimilar(ctx, owner, query, o.topK)
	if err != nil {
		return "", err
	}
	prompt, err := formatChatPrompt(search.BuildContext(results), query)
	if err != nil {
		return "", err
	}
	o.logger.Debug("answering chat query", "chunks", len(results), "promptLength", len(prompt))

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	reply, err := o.generator.Generate(ctx, ai.GenerateRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", ai.ErrEmptyResponse
	}
	return reply, nil
}

// errorReply converts a failure into the assistant message shown to the user.
func errorReply(err error) string {
	if errors.Is(err, ai.ErrNotConfigured) {
		return MissingAPIKeyReply
	}
	return ErrorReplyPrefix + err.Error()
}

// ListMessages returns the notebook's conversation in submission order.
// Callers that may not read the notebook get an empty list.
func (o *Orchestrator) ListMessages(ctx context.Context, owner core.OwnerID, notebookID core.ID) ([]*core.ChatMessage, error) {
	ok, err := o.guard.Listable(ctx, owner, notebookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*core.ChatMessage{}, nil
	}
	return o.repos.Chats.ListChatMessages(ctx, notebookID)
}
