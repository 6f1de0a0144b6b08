package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"immodash/internal/adapters/observability"
	"immodash/internal/assistant"
)

// Apology is the only answer a user sees when something breaks internally.
const Apology = "Une erreur est survenue lors du traitement de votre demande."

const intentError = "error"

type ChatReply struct {
	Intent string `json:"intent"`
	Reply  string `json:"reply"`
}

type ChatService struct {
	snaps  Snapshotter
	router *assistant.Router
}

func NewChatService(s Snapshotter, r *assistant.Router) *ChatService {
	if r == nil {
		r = assistant.New()
	}
	return &ChatService{snaps: s, router: r}
}

// Ask never fails: store errors and handler panics become Apology.
func (c *ChatService) Ask(ctx context.Context, text string) (out ChatReply) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("text", text).Msg("chat handler panicked")
			observability.ObserveIntent(intentError)
			out = ChatReply{Intent: intentError, Reply: Apology}
		}
	}()

	snap, err := c.snaps.Snapshot(ctx)
	if err != nil {
		log.Error().Err(err).Msg("chat: snapshot unavailable")
		observability.ObserveIntent(intentError)
		return ChatReply{Intent: intentError, Reply: Apology}
	}
	intent, reply := c.router.Reply(strings.TrimSpace(text), snap)
	observability.ObserveIntent(string(intent))
	return ChatReply{Intent: string(intent), Reply: reply}
}
