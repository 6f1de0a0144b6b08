package classify_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"immodash/internal/classify"
	"immodash/internal/domain"
)

func newClassifier(t *testing.T) *classify.Classifier {
	t.Helper()
	r, err := classify.LoadRules("")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	return classify.New(r)
}

func TestChannelOf(t *testing.T) {
	cases := map[string]domain.Channel{
		"2250707123456@c.us":   domain.ChannelPrivate,
		"2250707123456":        domain.ChannelPrivate,
		"120363041234@g.us":    domain.ChannelGroup,
		"":                     domain.ChannelGroup,
		"Agents Cocody":        domain.ChannelGroup,
		"  2250707123456@c.us": domain.ChannelPrivate,
	}
	for in, want := range cases {
		if got := classify.ChannelOf(in); got != want {
			t.Errorf("ChannelOf(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestIsAgentDemand(t *testing.T) {
	c := newClassifier(t)
	cases := []struct {
		body string
		want bool
	}{
		{"Bonjour chers collègues, je cherche un studio à Cocody budget 150k", true},
		{"Mon client cherche une villa 5 pièces à Riviera", true},
		{"URGENT: besoin d'un appartement meublé à Marcory", true},
		{"Je cherche preneur : villa à louer à Cocody, 800k", false},
		{"Je vends un terrain, mon client est intéressé", false},
		{"je cherche", false},
		{"", false},
		{"Villa duplex 6 pièces disponible à Angré", false},
		{"Mon client cherche une villa à Cocody, il va louer pour deux ans", true},
		{"Je cherche un studio, ma cliente a loué chez vous l'an dernier", true},
		{"JE CHERCHE un appartement À LOUER pour ma cliente", false},
	}
	for _, tc := range cases {
		if got := c.IsAgentDemand(tc.body); got != tc.want {
			t.Errorf("IsAgentDemand(%q) = %v, want %v", tc.body, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	c := newClassifier(t)
	msgs := []domain.Message{
		{ID: "m1", Source: "1203630001@g.us", Body: "Je cherche un duplex à Cocody pour un client"},
		{ID: "m2", Source: "1203630001@g.us", Body: "Villa à louer à Bingerville, 500k par mois"},
		{ID: "m3", Source: "2250707000001@c.us", Body: "Bonjour"},
		{ID: "m1", Source: "1203630002@g.us", Body: "Je cherche un duplex à Cocody pour un client"},
		{Source: "1203630003@g.us", Phone: "0707", Body: "  Mon client cherche un terrain à Songon  "},
		{Source: "1203630004@g.us", Phone: "0707", Body: "mon client cherche un terrain à songon"},
		{Source: "2250707000002", Phone: "0708", Body: ""},
		{Source: "", Body: "ma cliente a besoin d'une maison à Yopougon"},
	}
	res := c.Classify(msgs)

	if len(res.AgentDemands) != 3 {
		t.Fatalf("agent demands: %d %+v", len(res.AgentDemands), res.AgentDemands)
	}
	if res.AgentDemands[0].ID != "m1" || res.AgentDemands[1].Phone != "0707" || res.AgentDemands[2].Source != "" {
		t.Fatalf("order: %+v", res.AgentDemands)
	}
	if len(res.PrivateMessages) != 2 || res.PrivateMessages[1].Body != "" {
		t.Fatalf("private: %+v", res.PrivateMessages)
	}
	if res.Discarded != 1 || res.Duplicates != 2 {
		t.Fatalf("discarded %d duplicates %d", res.Discarded, res.Duplicates)
	}
	for _, m := range res.AgentDemands {
		if !m.IsAgentDemand || m.Channel != domain.ChannelGroup {
			t.Fatalf("bad demand: %+v", m)
		}
	}
}

func TestClassify_ExclusiveAndIdempotent(t *testing.T) {
	c := newClassifier(t)
	msgs := []domain.Message{
		{Source: "111@c.us", Body: "Je cherche un studio meublé à Cocody, budget 200k"},
		{Source: "222@g.us", Body: "Je cherche un studio meublé à Cocody, budget 200k"},
		{Source: "222@g.us", Body: "Je cherche un studio meublé à Cocody, budget 200k"},
		{Source: "333", Body: "Merci"},
		{Source: "333", Body: "Merci"},
	}
	first := c.Classify(msgs)

	seen := map[string]domain.Channel{}
	for _, m := range first.AgentDemands {
		seen[m.Source+m.Fingerprint] = m.Channel
	}
	for _, m := range first.PrivateMessages {
		if _, both := seen[m.Source+m.Fingerprint]; both {
			t.Fatalf("message in both buckets: %+v", m)
		}
	}

	var again []domain.Message
	for _, m := range first.AgentDemands {
		again = append(again, m.Message)
	}
	for _, m := range first.PrivateMessages {
		again = append(again, m.Message)
	}
	second := c.Classify(again)
	if len(second.AgentDemands) != len(first.AgentDemands) || len(second.PrivateMessages) != len(first.PrivateMessages) {
		t.Fatalf("not idempotent: %d/%d vs %d/%d",
			len(second.AgentDemands), len(second.PrivateMessages),
			len(first.AgentDemands), len(first.PrivateMessages))
	}
	if second.Duplicates != 0 {
		t.Fatalf("second run removed %d messages", second.Duplicates)
	}
}

func TestFingerprint(t *testing.T) {
	long := strings.Repeat("x", 100)
	a := classify.Fingerprint(domain.Message{Phone: "01", Body: "  " + long + "A"})
	b := classify.Fingerprint(domain.Message{Phone: "01", Body: long + "B"})
	if a != b {
		t.Fatalf("bodies equal on the first 80 chars must collide: %q %q", a, b)
	}
	if got := classify.Fingerprint(domain.Message{ID: "X1", Body: "abc"}); got != "X1" {
		t.Fatalf("id wins: %q", got)
	}
}

func TestLoadRules_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	data := "min_length: 6\ndemand: [\"wanted\"]\noffer: [\"for sale\"]\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	r, err := classify.LoadRules(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c := classify.New(r)
	if !c.IsAgentDemand("flat wanted") || c.IsAgentDemand("flat wanted, for sale") || c.IsAgentDemand("wanted") {
		t.Fatalf("custom rules not applied")
	}
	if _, err := classify.ParseRules([]byte("min_length: 3\n")); err == nil {
		t.Fatalf("rules without demand phrases must be rejected")
	}
}

func TestGroupLabel(t *testing.T) {
	names := map[string]string{"120363999@g.us": "Agents Plateau"}
	cases := map[string]string{
		"120363999@g.us":        "Agents Plateau",
		"120363041234@g.us":     "Groupe 041234",
		"abcdefghijklmnop@g.us": "Groupe abcdefghijkl...",
		"":                      "Groupe inconnu",
	}
	for in, want := range cases {
		if got := classify.GroupLabel(in, names); got != want {
			t.Errorf("GroupLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecorate(t *testing.T) {
	msgs := []domain.ClassifiedMessage{{
		Message: domain.Message{Source: "120363041234@g.us", Phone: "0707123456", Body: "Je cherche un studio"},
		Channel: domain.ChannelGroup,
	}}
	classify.Decorate(msgs, nil)
	if msgs[0].GroupLabel != "Groupe 041234" {
		t.Fatalf("label: %q", msgs[0].GroupLabel)
	}
	if !strings.HasPrefix(msgs[0].ReplyLink, "https://wa.me/225") || !strings.Contains(msgs[0].ReplyLink, "text=Bonjour") {
		t.Fatalf("link: %q", msgs[0].ReplyLink)
	}
}
