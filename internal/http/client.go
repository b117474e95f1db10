package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"

	"github.com/nats-io/nuid"
	"github.com/sirupsen/logrus"

	"github.com/wesleyorama2/tracehttp/internal/diag"
	"github.com/wesleyorama2/tracehttp/internal/timing"
)

// DefaultMaxRedirects is the redirect limit of a new Client.
const DefaultMaxRedirects = 10

// Client executes traced HTTP exchanges.
type Client struct {
	logger       *logrus.Logger
	stream       *diag.Stream
	registry     *timing.Registry
	tlsConfig    *tls.Config
	headers      []KeyValue
	sharedClock  bool
	maxRedirects int
	stateHook    func(State)
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// NewClient creates a client. Unless WithDiagnostics is given it listens on
// the process-wide diagnostic stream.
func NewClient(options ...ClientOption) *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client := &Client{
		logger:       logger,
		maxRedirects: DefaultMaxRedirects,
	}
	for _, option := range options {
		option(client)
	}

	if client.stream == nil {
		client.stream = diag.Default()
		client.registry = timing.Install()
	}
	return client
}

// WithLogger sets the logger used for exchange lifecycle messages.
func WithLogger(logger *logrus.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDiagnostics routes events through stream instead of the process-wide
// one. The client gets its own clock registry listening on it.
func WithDiagnostics(stream *diag.Stream) ClientOption {
	return func(c *Client) {
		if stream == nil {
			return
		}
		c.stream = stream
		c.registry = timing.NewRegistry()
		stream.Register(timing.NewClassifier(c.registry))
	}
}

// WithTLSConfig sets the TLS configuration used for https targets.
func WithTLSConfig(cfg *tls.Config) ClientOption {
	return func(c *Client) {
		c.tlsConfig = cfg
	}
}

// WithInsecureSkipVerify disables certificate verification.
func WithInsecureSkipVerify() ClientOption {
	return func(c *Client) {
		if c.tlsConfig == nil {
			c.tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		c.tlsConfig.InsecureSkipVerify = true
	}
}

// WithHeader adds a default header. A request header with the same name wins.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers = append(c.headers, KeyValue{Key: key, Value: value, Enabled: true})
	}
}

// WithSharedClock makes every exchange record into the process-wide clock.
// Concurrent exchanges then corrupt each other's timings.
func WithSharedClock() ClientOption {
	return func(c *Client) {
		c.sharedClock = true
	}
}

// WithMaxRedirects limits how many redirects are followed. Zero disables
// following and returns the redirect response itself.
func WithMaxRedirects(n int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = n
	}
}

// WithStateHook is called on every exchange state transition.
func WithStateHook(hook func(State)) ClientOption {
	return func(c *Client) {
		c.stateHook = hook
	}
}

// Do executes one request described by spec and returns the response with
// its phase timings. timeout may be nil.
func (c *Client) Do(ctx context.Context, spec *RequestSpec, timeout *Timeout) (*Response, error) {
	if spec == nil {
		return nil, newError(KindURL, "parse url", errors.New("no request"))
	}
	ex := &exchange{hook: c.stateHook}

	out, err := c.withDefaults(spec).Normalize()
	if err != nil {
		return nil, err
	}

	key := ""
	if !c.sharedClock {
		key = nuid.Next()
	}
	clock := c.registry.Acquire(key)
	defer c.registry.Release(key)

	log := c.logger.WithFields(logrus.Fields{
		diag.FieldRequestID: key,
		"method":            out.Method,
		"url":               out.URL.String(),
	})
	ex.advance(StateBuilt)

	var tlsConfig *tls.Config
	if out.URL.Scheme == "https" {
		clock.SetTLS(true)
		tlsConfig = c.tlsConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
	}

	budget := timeout.ConnectBudget()
	if timeout != nil && (timeout.Write > 0 || timeout.Read > 0) {
		log.WithFields(logrus.Fields{
			"write": timeout.Write,
			"read":  timeout.Read,
		}).Debug("write and read timeouts are not enforced")
	}

	tr := newTransport(tlsConfig, budget)
	defer tr.CloseIdleConnections()

	trace := newTracer(diag.NewEmitter(c.stream, key), func() {
		ex.advance(StateAwaitingResponse)
	})
	req, err := out.Build(httptrace.WithClientTrace(ctx, trace.clientTrace()))
	if err != nil {
		ex.fail()
		return nil, err
	}

	httpClient := &http.Client{
		Transport:     tr,
		Timeout:       budget,
		CheckRedirect: c.checkRedirect,
	}

	ex.advance(StateSending)
	log.Debug("sending request")
	httpResp, err := httpClient.Do(req)
	if err != nil {
		ex.fail()
		log.WithError(err).Debug("exchange failed")
		return nil, newError(KindNetwork, "send request", err)
	}

	ex.advance(StateReadingBody)
	resp, err := readResponse(httpResp, clock)
	if err != nil {
		ex.fail()
		log.WithError(err).Debug("exchange failed")
		return nil, err
	}
	resp.Stats.RemoteAddr = trace.RemoteAddr()

	ex.advance(StateDone)
	log.WithFields(logrus.Fields{
		"status": resp.Status,
		"total":  resp.Stats.Total,
	}).Debug("exchange complete")
	return resp, nil
}

// withDefaults puts the client headers in front of the request's own, so a
// request header of the same name overrides them.
func (c *Client) withDefaults(spec *RequestSpec) *RequestSpec {
	if len(c.headers) == 0 {
		return spec
	}
	merged := *spec
	merged.Headers = make([]KeyValue, 0, len(c.headers)+len(spec.Headers))
	merged.Headers = append(merged.Headers, c.headers...)
	merged.Headers = append(merged.Headers, spec.Headers...)
	return &merged
}

func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	if c.maxRedirects <= 0 {
		return http.ErrUseLastResponse
	}
	if len(via) >= c.maxRedirects {
		return fmt.Errorf("stopped after %d redirects", c.maxRedirects)
	}
	return nil
}
