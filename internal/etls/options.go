package etls

import (
	"crypto/tls"

	"github.com/onedata/etls/internal/model"
	"github.com/onedata/etls/internal/netxlite"
)

// Option configures a [*Socket] or an [*Acceptor].
type Option func(opts *options)

type options struct {
	dialer     netxlite.Dialer
	logger     model.Logger
	maxVersion uint16
	minVersion uint16
	resolver   netxlite.Resolver
}

// WithLogger sets the logger. The default discards all messages.
func WithLogger(logger model.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithResolver sets the resolver used by Connect. The default
// is the system resolver (see [netxlite.NewResolverStdlib]).
func WithResolver(resolver netxlite.Resolver) Option {
	return func(opts *options) {
		opts.resolver = resolver
	}
}

// WithDialer sets the dialer used by Connect.
func WithDialer(dialer netxlite.Dialer) Option {
	return func(opts *options) {
		opts.dialer = dialer
	}
}

// WithMinTLSVersion sets the minimum TLS version. Zero or values
// below TLS 1.2 are raised to TLS 1.2.
func WithMinTLSVersion(version uint16) Option {
	return func(opts *options) {
		opts.minVersion = version
	}
}

// WithMaxTLSVersion sets the maximum TLS version. Zero means
// the maximum version supported by crypto/tls.
func WithMaxTLSVersion(version uint16) Option {
	return func(opts *options) {
		opts.maxVersion = version
	}
}

func newOptions(optionsList []Option) *options {
	opts := &options{}
	for _, option := range optionsList {
		option(opts)
	}
	opts.logger = model.ValidLoggerOrDefault(opts.logger)
	if opts.resolver == nil {
		opts.resolver = netxlite.NewResolverStdlib(opts.logger)
	}
	if opts.dialer == nil {
		opts.dialer = netxlite.NewDialer(opts.logger)
	}
	if opts.minVersion < tls.VersionTLS12 {
		opts.minVersion = tls.VersionTLS12
	}
	return opts
}

// baseTLSConfig returns the TLS config shared by clients and servers
// before we install the chain observer.
func (opts *options) baseTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: opts.minVersion,
		MaxVersion: opts.maxVersion,
	}
}
