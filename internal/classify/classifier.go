package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"immodash/internal/domain"
	"immodash/internal/normalize"
)

const fingerprintPrefix = 80

type Classifier struct {
	rules Rules
	m     matcher
}

func New(r Rules) *Classifier {
	return &Classifier{rules: r, m: newMatcher(r)}
}

// Result partitions one run. Discarded counts group messages that are not demands.
type Result struct {
	AgentDemands    []domain.ClassifiedMessage
	PrivateMessages []domain.ClassifiedMessage
	Discarded       int
	Duplicates      int
}

// ChannelOf reads the channel from a WhatsApp JID. Unknown or missing ids are groups.
func ChannelOf(source string) domain.Channel {
	s := strings.TrimSpace(source)
	if strings.Contains(s, "@c.us") {
		return domain.ChannelPrivate
	}
	if s != "" && s[0] >= '0' && s[0] <= '9' && !strings.Contains(s, "@g.us") {
		return domain.ChannelPrivate
	}
	return domain.ChannelGroup
}

// IsAgentDemand reports whether body asks for a property: some demand phrase,
// no offer phrase and more than MinLength characters.
func (c *Classifier) IsAgentDemand(body string) bool {
	if utf8.RuneCountInString(body) <= c.rules.MinLength {
		return false
	}
	text := normalize.Lower(body)
	return containsAny(text, c.m.demand) && !containsAny(text, c.m.offer)
}

// IsDemandText is IsAgentDemand without the length floor. Listings are
// checked with it to catch search requests stored as properties.
func (c *Classifier) IsDemandText(body string) bool {
	if strings.TrimSpace(body) == "" {
		return false
	}
	text := normalize.Lower(body)
	return containsAny(text, c.m.demand) && !containsAny(text, c.m.offer)
}

// Fingerprint is the message id, else phone|first 80 chars of the lower-cased trimmed body.
func Fingerprint(m domain.Message) string {
	if m.ID != "" {
		return m.ID
	}
	body := strings.ToLower(strings.TrimSpace(m.Body))
	if utf8.RuneCountInString(body) > fingerprintPrefix {
		body = string([]rune(body)[:fingerprintPrefix])
	}
	return m.Phone + "|" + body
}

// Classify splits messages into agent demands and private messages.
// Source order is kept; a later message with an already seen fingerprint
// is dropped from its bucket.
func (c *Classifier) Classify(msgs []domain.Message) Result {
	res := Result{
		AgentDemands:    []domain.ClassifiedMessage{},
		PrivateMessages: []domain.ClassifiedMessage{},
	}
	seenDemand := make(map[string]struct{})
	seenPrivate := make(map[string]struct{})

	for _, m := range msgs {
		cm := domain.ClassifiedMessage{
			Message:     m,
			Channel:     ChannelOf(m.Source),
			Fingerprint: Fingerprint(m),
		}
		switch cm.Channel {
		case domain.ChannelPrivate:
			if _, dup := seenPrivate[cm.Fingerprint]; dup {
				res.Duplicates++
				continue
			}
			seenPrivate[cm.Fingerprint] = struct{}{}
			res.PrivateMessages = append(res.PrivateMessages, cm)
		default:
			if !c.IsAgentDemand(m.Body) {
				res.Discarded++
				continue
			}
			cm.IsAgentDemand = true
			if _, dup := seenDemand[cm.Fingerprint]; dup {
				res.Duplicates++
				continue
			}
			seenDemand[cm.Fingerprint] = struct{}{}
			res.AgentDemands = append(res.AgentDemands, cm)
		}
	}
	return res
}

var groupDigits = regexp.MustCompile(`(\d{4,6})@g\.us`)

// GroupLabel names a group: the known name if any, else a label derived from its id.
func GroupLabel(source string, names map[string]string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return "Groupe inconnu"
	}
	if n := strings.TrimSpace(names[source]); n != "" {
		return n
	}
	if m := groupDigits.FindStringSubmatch(source); m != nil {
		return "Groupe " + m[1]
	}
	if utf8.RuneCountInString(source) > 12 {
		return "Groupe " + string([]rune(source)[:12]) + "..."
	}
	return "Groupe " + source
}

// ReplyLink prefills a WhatsApp answer quoting the start of the request.
func ReplyLink(m domain.Message) string {
	quote := strings.TrimSpace(m.Body)
	if utf8.RuneCountInString(quote) > 50 {
		quote = string([]rune(quote)[:50])
	}
	return normalize.WaLink(m.Phone, `Bonjour, concernant votre recherche : "`+quote+`..."`)
}

// Decorate fills the display fields of classified messages in place.
func Decorate(msgs []domain.ClassifiedMessage, names map[string]string) {
	for i := range msgs {
		if msgs[i].Channel == domain.ChannelGroup {
			m := msgs[i].Message
			switch {
			case names[m.Source] != "":
				msgs[i].GroupLabel = names[m.Source]
			case m.GroupName != "" && !strings.Contains(m.GroupName, "@"):
				msgs[i].GroupLabel = m.GroupName
			default:
				msgs[i].GroupLabel = GroupLabel(m.Source, names)
			}
		}
		msgs[i].ReplyLink = ReplyLink(msgs[i].Message)
	}
}
