package http

import (
	"github.com/wesleyorama2/tracehttp/internal/diag"
	internal "github.com/wesleyorama2/tracehttp/internal/http"
	"github.com/wesleyorama2/tracehttp/internal/timing"
)

type (
	// Client executes traced exchanges. It is safe for concurrent use.
	Client = internal.Client
	// ClientOption configures a Client.
	ClientOption = internal.ClientOption
	// RequestSpec describes one request.
	RequestSpec = internal.RequestSpec
	// KeyValue is a header or query entry.
	KeyValue = internal.KeyValue
	// Timeout carries per-phase budgets in seconds. Only Connect is enforced.
	Timeout = internal.Timeout
	// Response is a finished exchange with its phase timings.
	Response = internal.Response
	// Stats is the phase waterfall of a Response, in milliseconds.
	Stats = timing.Stats
	// State is the lifecycle position of an exchange.
	State = internal.State
	// Error is returned by every failed exchange.
	Error = internal.Error
	// ErrorKind categorizes an Error.
	ErrorKind = internal.ErrorKind
	// Event is one diagnostic line of the transport.
	Event = diag.Event
)

const (
	KindURL      = internal.KindURL
	KindHeader   = internal.KindHeader
	KindNetwork  = internal.KindNetwork
	KindEncoding = internal.KindEncoding
	KindIO       = internal.KindIO
)

const (
	StateIdle             = internal.StateIdle
	StateBuilt            = internal.StateBuilt
	StateSending          = internal.StateSending
	StateAwaitingResponse = internal.StateAwaitingResponse
	StateReadingBody      = internal.StateReadingBody
	StateDone             = internal.StateDone
	StateFailed           = internal.StateFailed
)

var (
	NewClient              = internal.NewClient
	NewRequest             = internal.NewRequest
	KindOf                 = internal.KindOf
	WithLogger             = internal.WithLogger
	WithTLSConfig          = internal.WithTLSConfig
	WithInsecureSkipVerify = internal.WithInsecureSkipVerify
	WithHeader             = internal.WithHeader
	WithSharedClock        = internal.WithSharedClock
	WithMaxRedirects       = internal.WithMaxRedirects
	WithStateHook          = internal.WithStateHook
)

// OnEvent subscribes fn to the diagnostic events of every client that was
// created without its own stream. The returned function unsubscribes.
func OnEvent(fn func(Event)) (stop func()) {
	return diag.Register(diag.ListenerFunc(fn))
}
