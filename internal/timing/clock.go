// Package timing reconstructs the latency waterfall of one HTTP exchange from
// phase boundary timestamps.
//
// # Concurrency
//
// A Clock is written from whichever goroutine the transport happens to emit a
// diagnostic event on, while the goroutine running the exchange reads it once
// the body has been consumed. Every integer boundary is therefore an atomic.
// The values are only ever subtracted from one another inside the same clock
// and are never used to publish other memory, so no ordering stronger than
// what sync/atomic already gives is needed. The cipher string is the one
// non-atomic field and sits behind a mutex that is held only for the copy.
package timing

import (
	"sync"
	"sync/atomic"
	"time"
)

// Boundary names one instant in the life of an exchange.
type Boundary int

const (
	RequestStart Boundary = iota
	ConnFromPool
	DNSStart
	DNSDone
	TCPStart
	TCPDone
	TLSStart
	TLSDone
	HTTPStart
	Written
	FirstResponseByte
	Done

	numBoundaries
)

var boundaryNames = [numBoundaries]string{
	RequestStart:      "requestStart",
	ConnFromPool:      "connFromPool",
	DNSStart:          "dnsStart",
	DNSDone:           "dnsDone",
	TCPStart:          "tcpStart",
	TCPDone:           "tcpDone",
	TLSStart:          "tlsStart",
	TLSDone:           "tlsDone",
	HTTPStart:         "httpStart",
	Written:           "written",
	FirstResponseByte: "firstResponseByte",
	Done:              "done",
}

func (b Boundary) String() string {
	if b < 0 || b >= numBoundaries {
		return "unknown"
	}
	return boundaryNames[b]
}

// NowFunc returns the current time in milliseconds. It must never return 0,
// which the clock reserves for "unset".
type NowFunc func() int64

var epoch = time.Now()

// monotonicMillis is wall-clock anchored at process start but advances on the
// monotonic clock, so a wall clock step cannot make a phase negative.
func monotonicMillis() int64 {
	return epoch.UnixMilli() + time.Since(epoch).Milliseconds()
}

// Clock holds the boundary timestamps of one exchange.
type Clock struct {
	stamps [numBoundaries]atomic.Int64
	tls    atomic.Bool

	cipherMu sync.Mutex
	cipher   string

	now NowFunc
}

// NewClock returns a clock reading the monotonic process clock.
func NewClock() *Clock {
	return NewClockWithSource(monotonicMillis)
}

// NewClockWithSource returns a clock reading now. Tests use it to make phase
// durations deterministic.
func NewClockWithSource(now NowFunc) *Clock {
	return &Clock{now: now}
}

// Reset clears every boundary, the cipher and the TLS flag.
func (c *Clock) Reset() {
	for i := range c.stamps {
		c.stamps[i].Store(0)
	}
	c.tls.Store(false)
	c.SetCipher("")
}

// Mark stamps b with the current time. Written and FirstResponseByte keep the
// first stamp they receive within a hop.
//
// RequestStart also keeps its first stamp, so Total spans every redirect hop.
// A repeated RequestStart opens a new hop and clears the connection and
// transfer boundaries of the previous one; the other phases then describe
// the final hop only.
func (c *Clock) Mark(b Boundary) {
	if b < 0 || b >= numBoundaries {
		return
	}
	now := c.now()
	switch b {
	case RequestStart:
		if !c.stamps[RequestStart].CompareAndSwap(0, now) {
			for h := ConnFromPool; h <= FirstResponseByte; h++ {
				c.stamps[h].Store(0)
			}
		}
	case Written, FirstResponseByte:
		c.stamps[b].CompareAndSwap(0, now)
	default:
		c.stamps[b].Store(now)
	}
}

// Timestamp returns the stamp for b, or 0 when it never arrived.
func (c *Clock) Timestamp(b Boundary) int64 {
	if b < 0 || b >= numBoundaries {
		return 0
	}
	return c.stamps[b].Load()
}

// SetTLS records whether the exchange negotiates TLS.
func (c *Clock) SetTLS(v bool) {
	c.tls.Store(v)
}

// IsTLS reports whether the exchange negotiates TLS.
func (c *Clock) IsTLS() bool {
	return c.tls.Load()
}

// SetCipher stores the negotiated cipher suite name.
func (c *Clock) SetCipher(name string) {
	c.cipherMu.Lock()
	c.cipher = name
	c.cipherMu.Unlock()
}

// Cipher returns the negotiated cipher suite name.
func (c *Clock) Cipher() string {
	c.cipherMu.Lock()
	defer c.cipherMu.Unlock()
	return c.cipher
}

// between is end-start when both are set and in order, 0 otherwise.
func (c *Clock) between(start, end Boundary) uint32 {
	s := c.stamps[start].Load()
	e := c.stamps[end].Load()
	if s == 0 || e == 0 || e < s {
		return 0
	}
	return uint32(e - s)
}

func (c *Clock) DNSLookup() uint32        { return c.between(DNSStart, DNSDone) }
func (c *Clock) TCP() uint32              { return c.between(TCPStart, TCPDone) }
func (c *Clock) TLS() uint32              { return c.between(TLSStart, TLSDone) }
func (c *Clock) Send() uint32             { return c.between(HTTPStart, Written) }
func (c *Clock) ServerProcessing() uint32 { return c.between(Written, FirstResponseByte) }
func (c *Clock) ContentTransfer() uint32  { return c.between(FirstResponseByte, Done) }
func (c *Clock) Total() uint32            { return c.between(RequestStart, Done) }

// Stats converts the current stamps into durations.
func (c *Clock) Stats() Stats {
	return Stats{
		IsHTTPS:          c.IsTLS(),
		Cipher:           c.Cipher(),
		DNSLookup:        c.DNSLookup(),
		TCP:              c.TCP(),
		TLS:              c.TLS(),
		Send:             c.Send(),
		ServerProcessing: c.ServerProcessing(),
		ContentTransfer:  c.ContentTransfer(),
		Total:            c.Total(),
	}
}

var (
	defaultClock     *Clock
	defaultClockOnce sync.Once
)

// Default returns the process-wide clock. Events that carry no correlation
// key land here.
func Default() *Clock {
	defaultClockOnce.Do(func() {
		defaultClock = NewClock()
	})
	return defaultClock
}
