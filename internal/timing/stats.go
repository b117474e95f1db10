package timing

// Stats is the waterfall of one finished exchange. Every duration is in
// milliseconds; a phase whose start or end was never observed reads as 0.
type Stats struct {
	RemoteAddr       string `json:"remoteAddr" yaml:"remoteAddr"`
	IsHTTPS          bool   `json:"isHttps" yaml:"isHttps"`
	Cipher           string `json:"cipher" yaml:"cipher"`
	DNSLookup        uint32 `json:"dnsLookup" yaml:"dnsLookup"`
	TCP              uint32 `json:"tcp" yaml:"tcp"`
	TLS              uint32 `json:"tls" yaml:"tls"`
	Send             uint32 `json:"send" yaml:"send"`
	ServerProcessing uint32 `json:"serverProcessing" yaml:"serverProcessing"`
	ContentTransfer  uint32 `json:"contentTransfer" yaml:"contentTransfer"`
	Total            uint32 `json:"total" yaml:"total"`
}

// Phase is one named duration of the waterfall.
type Phase struct {
	Name   string
	Millis uint32
}

// Phase names in waterfall order.
const (
	PhaseDNSLookup        = "dns_lookup"
	PhaseTCP              = "tcp_connection"
	PhaseTLS              = "tls_handshake"
	PhaseSend             = "send"
	PhaseServerProcessing = "server_processing"
	PhaseContentTransfer  = "content_transfer"
	PhaseTotal            = "total"
)

// Phases lists the durations in the order they happen, total last.
func (s Stats) Phases() []Phase {
	return []Phase{
		{Name: PhaseDNSLookup, Millis: s.DNSLookup},
		{Name: PhaseTCP, Millis: s.TCP},
		{Name: PhaseTLS, Millis: s.TLS},
		{Name: PhaseSend, Millis: s.Send},
		{Name: PhaseServerProcessing, Millis: s.ServerProcessing},
		{Name: PhaseContentTransfer, Millis: s.ContentTransfer},
		{Name: PhaseTotal, Millis: s.Total},
	}
}
