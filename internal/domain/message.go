package domain

type Channel string

const (
	ChannelGroup   Channel = "group"
	ChannelPrivate Channel = "private"
)

// Message is one inbound WhatsApp publication.
type Message struct {
	ID          string `json:"id,omitempty"`
	Body        string `json:"message"`
	Source      string `json:"source"`
	Phone       string `json:"phone"`
	Sender      string `json:"sender"`
	GroupName   string `json:"groupName"`
	Timestamp   string `json:"timestamp"`
	FromListing bool   `json:"fromListing,omitempty"`
	RefBien     string `json:"refBien,omitempty"`
}

type ClassifiedMessage struct {
	Message
	Channel       Channel `json:"channel"`
	IsAgentDemand bool    `json:"isAgentDemand"`
	Fingerprint   string  `json:"fingerprint"`
	GroupLabel    string  `json:"groupLabel,omitempty"`
	ReplyLink     string  `json:"replyLink,omitempty"`
}

// Requests is the triaged inbound feed.
type Requests struct {
	AgentDemands    []ClassifiedMessage `json:"agentDemands"`
	PrivateMessages []ClassifiedMessage `json:"privateMessages"`
}
