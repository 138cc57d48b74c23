package hookhttp

import (
	"fmt"
	"time"

	"github.com/kbukum/hookhttp/resilience"
	"github.com/kbukum/hookhttp/transport"
)

const (
	defaultTimeout      = 5000 * time.Millisecond
	defaultMaxRedirects = 10
)

// Credentials are HTTP basic-auth credentials. Username must be non-empty.
type Credentials struct {
	Username string
	Password string
}

// Options configure a single request.
type Options struct {
	// Body is the request body. Defaults to empty.
	Body []byte

	// Headers are request headers, merged over the client's defaults.
	Headers Header

	// Timeout bounds the blocking transport call. Zero uses the client
	// default.
	Timeout time.Duration

	// BasicAuth injects basic-auth credentials at the wire level.
	BasicAuth *Credentials

	// StreamTo switches the request to streaming mode: the call returns an
	// AsyncToken immediately and typed events are delivered to this channel
	// as Headers, then zero or more Chunks, then exactly one End.
	StreamTo chan<- AsyncEvent

	// Direct issues the request over a caller-managed connection handle
	// instead of the pooled transport.
	Direct *transport.Conn

	// FollowRedirects chases 3xx responses transparently, up to the
	// client's MaxRedirects. Default false.
	FollowRedirects bool

	// TransportOptions are adapter-specific string settings passed through
	// untouched. The default adapter honors "host" (overrides the wire Host
	// header) and ignores unknown keys.
	TransportOptions map[string]string
}

// Config configures the client.
type Config struct {
	// Timeout is the default per-request timeout. Defaults to 5s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests. Request headers
	// override them key by key.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// MaxRedirects caps the redirect chase for redirect-following requests.
	// Defaults to 10.
	MaxRedirects int `yaml:"max_redirects" mapstructure:"max_redirects"`

	// Transport configures the default wire adapter. Ignored when a custom
	// transport is injected with WithTransport.
	Transport transport.Config `yaml:"transport" mapstructure:"transport"`

	// Retry configures explicit opt-in retry for synchronous requests.
	// Nil disables retry; requests are never retried automatically.
	Retry *resilience.RetryConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxRedirects == 0 {
		c.MaxRedirects = defaultMaxRedirects
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("hookhttp: timeout must be positive")
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("hookhttp: max_redirects must not be negative")
	}
	return c.Transport.TLS.Validate()
}
