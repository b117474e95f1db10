package timing

import (
	"strings"

	"github.com/wesleyorama2/tracehttp/internal/diag"
)

// Transition is what one diagnostic event does to a clock.
type Transition struct {
	Marks     []Boundary
	Cipher    string
	HasCipher bool
}

// Empty reports whether the event changes nothing.
func (t Transition) Empty() bool {
	return len(t.Marks) == 0 && !t.HasCipher
}

// Apply writes the transition into c.
func (t Transition) Apply(c *Clock) {
	if t.HasCipher {
		c.SetCipher(t.Cipher)
	}
	for _, b := range t.Marks {
		c.Mark(b)
	}
}

type messageRule struct {
	match func(msg string) bool
	marks []Boundary
}

type sourceRule struct {
	match    func(source string) bool
	messages []messageRule
}

const cipherPrefix = "using ciphersuite "

func hasPrefix(prefixes ...string) func(string) bool {
	return func(s string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(s, p) {
				return true
			}
		}
		return false
	}
}

func contains(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

// tlsRules only apply while the clock is in TLS mode.
var tlsRules = []messageRule{
	{match: hasPrefix("sending client hello", "sending clienthello"), marks: []Boundary{TLSStart}},
	{match: hasPrefix("server cert is"), marks: []Boundary{TLSDone}},
}

// sourceRules are evaluated top to bottom. The first source that matches owns
// the event even when none of its message rules does.
var sourceRules = []sourceRule{
	{
		match: contains("pool"),
		messages: []messageRule{
			{match: contains("checkout waiting for idle connection"), marks: []Boundary{RequestStart}},
		},
	},
	{
		match: contains("connect"),
		messages: []messageRule{
			{match: hasPrefix("connect;"), marks: []Boundary{ConnFromPool}},
			{match: hasPrefix("connecting to"), marks: []Boundary{DNSDone, TCPStart}},
			{match: hasPrefix("connected to"), marks: []Boundary{TCPDone, HTTPStart}},
		},
	},
	{
		match: contains("resolver", "dns"),
		messages: []messageRule{
			{match: hasPrefix("querying:"), marks: []Boundary{DNSStart}},
		},
	},
	{
		match: contains("framed_write", "frame_write"),
		messages: []messageRule{
			{match: contains("send"), marks: []Boundary{Written}},
		},
	},
	{
		match: contains("framed_read", "frame_read"),
		messages: []messageRule{
			{match: contains("received"), marks: []Boundary{FirstResponseByte}},
		},
	},
	{
		match: contains("client"),
		messages: []messageRule{
			{match: contains("handshake complete"), marks: []Boundary{Written}},
		},
	},
}

// Classify maps one (source, message) event onto clock updates. Message
// matching ignores case; the cipher name keeps the case it was reported in.
// Events no rule recognizes yield an empty Transition.
func Classify(source, message string, tls bool) Transition {
	var t Transition
	msg := strings.ToLower(message)

	if tls {
		switch {
		case strings.HasPrefix(msg, cipherPrefix):
			t.Cipher = message[len(cipherPrefix):]
			t.HasCipher = true
		default:
			for _, r := range tlsRules {
				if r.match(msg) {
					t.Marks = append(t.Marks, r.marks...)
					break
				}
			}
		}
	}

	src := strings.ToLower(source)
	for _, sr := range sourceRules {
		if !sr.match(src) {
			continue
		}
		for _, mr := range sr.messages {
			if mr.match(msg) {
				t.Marks = append(t.Marks, mr.marks...)
				break
			}
		}
		break
	}
	return t
}

// Classifier applies every diagnostic event to the clock its correlation key
// points at.
type Classifier struct {
	registry *Registry
}

// NewClassifier routes events through r.
func NewClassifier(r *Registry) *Classifier {
	return &Classifier{registry: r}
}

// OnEvent implements diag.Listener.
func (c *Classifier) OnEvent(e diag.Event) {
	clock := c.registry.Lookup(e.RequestID)
	if clock == nil {
		return
	}
	Classify(e.Source, e.Message, clock.IsTLS()).Apply(clock)
}

var _ diag.Listener = (*Classifier)(nil)
