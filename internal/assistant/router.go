// Package assistant answers free-text questions about the portfolio from an
// in-memory snapshot. It performs no I/O.
package assistant

import "immodash/internal/domain"

type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentHelp         Intent = "help"
	IntentSummary      Intent = "summary"
	IntentVisits       Intent = "visits"
	IntentRequests     Intent = "requests"
	IntentPipeline     Intent = "pipeline"
	IntentZones        Intent = "zones"
	IntentPriceAverage Intent = "price_average"
	IntentRecent       Intent = "recent"
	IntentSearch       Intent = "search"
	IntentCount        Intent = "count"
	IntentPoliteness   Intent = "politeness"
	IntentFallback     Intent = "fallback"
)

// Rule pairs a predicate with the handler that answers when it matches.
type Rule struct {
	Intent Intent
	Match  func(Query) bool
	Handle func(Query, domain.Snapshot) string
}

// Router evaluates its rules in order; the first match answers.
type Router struct {
	rules []Rule
}

func New() *Router {
	return &Router{rules: DefaultRules()}
}

// NewWithRules builds a router over a custom cascade. The last rule should always match.
func NewWithRules(rules []Rule) *Router {
	return &Router{rules: rules}
}

// DefaultRules is the intent cascade, most specific first.
func DefaultRules() []Rule {
	return []Rule{
		{IntentGreeting, isGreeting, answerGreeting},
		{IntentHelp, isHelp, answerHelp},
		{IntentSummary, isSummary, answerSummary},
		{IntentVisits, isVisits, answerVisits},
		{IntentRequests, isRequests, answerRequests},
		{IntentPipeline, isPipeline, answerPipeline},
		{IntentZones, isZones, answerZones},
		{IntentPriceAverage, isPriceAverage, answerPriceAverage},
		{IntentRecent, isRecent, answerRecent},
		{IntentSearch, isSearch, answerSearch},
		{IntentCount, isCount, answerCount},
		{IntentPoliteness, isPoliteness, answerPoliteness},
		{IntentFallback, func(Query) bool { return true }, answerFallback},
	}
}

// Intents lists the cascade order.
func (r *Router) Intents() []Intent {
	out := make([]Intent, len(r.rules))
	for i, rule := range r.rules {
		out[i] = rule.Intent
	}
	return out
}

// Resolve returns the intent that would answer text.
func (r *Router) Resolve(text string) Intent {
	q := parse(text)
	if rule := r.match(q); rule != nil {
		return rule.Intent
	}
	return IntentFallback
}

// Answer replies to text from snap.
func (r *Router) Answer(text string, snap domain.Snapshot) string {
	_, reply := r.Reply(text, snap)
	return reply
}

// Reply is Answer plus the intent that produced the reply.
func (r *Router) Reply(text string, snap domain.Snapshot) (Intent, string) {
	q := parse(text)
	rule := r.match(q)
	if rule == nil {
		return IntentFallback, answerFallback(q, snap)
	}
	return rule.Intent, rule.Handle(q, snap)
}

func (r *Router) match(q Query) *Rule {
	for i := range r.rules {
		if r.rules[i].Match(q) {
			return &r.rules[i]
		}
	}
	return nil
}
