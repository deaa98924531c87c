// Package config contains the configuration of the etls command.
package config

import (
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/onedata/etls/internal/etls"
	"github.com/onedata/etls/internal/eventloop"
	"github.com/onedata/etls/internal/hostbind"
	"github.com/onedata/etls/internal/model"
	"github.com/onedata/etls/internal/netxlite"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ReadConfig reads the configuration from the path
func ReadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := ParseConfig(b)
	if err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	return c, nil
}

// ParseConfig returns config from YAML bytes. Since YAML is a
// superset of JSON, JSON bytes also work.
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, errors.Wrap(err, "parsing yaml")
	}
	if err := c.Default(); err != nil {
		return nil, errors.Wrap(err, "defaulting")
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating")
	}
	return &c, nil
}

// New returns the default configuration.
func New() *Config {
	c := &Config{}
	_ = c.Default() // cannot fail
	return c
}

// Config is the configuration of the etls command.
type Config struct {
	EventLoop EventLoop `yaml:"event_loop"`
	Resolver  Resolver  `yaml:"resolver"`
	TLS       TLS       `yaml:"tls"`
	Recv      Recv      `yaml:"recv"`
	Log       Log       `yaml:"log"`
	Metrics   Metrics   `yaml:"metrics"`
}

// EventLoop settings
type EventLoop struct {
	// Workers is the number of goroutines running handlers; zero
	// means one per CPU.
	Workers int `yaml:"workers"`

	// QueueSize is the size of the completion queue.
	QueueSize int `yaml:"queue_size"`
}

// Resolver settings
type Resolver struct {
	// Kind is either "system" or "udp".
	Kind string `yaml:"kind"`

	// Address is the DNS server address for the "udp" kind.
	Address string `yaml:"address"`
}

// TLS settings
type TLS struct {
	MinVersion string `yaml:"min_version"`
	MaxVersion string `yaml:"max_version"`
}

// Recv settings
type Recv struct {
	// DefaultSize is the buffer size for receiving "any" data.
	DefaultSize int `yaml:"default_size"`
}

// Log settings
type Log struct {
	Level string `yaml:"level"`
}

// Metrics settings
type Metrics struct {
	// Address is where to serve /metrics; empty disables it.
	Address string `yaml:"address"`
}

const (
	// ResolverSystem selects the system resolver.
	ResolverSystem = "system"

	// ResolverUDP selects the DNS over UDP resolver.
	ResolverUDP = "udp"
)

// Default config settings
func (c *Config) Default() error {
	if c.EventLoop.QueueSize == 0 {
		c.EventLoop.QueueSize = eventloop.DefaultQueueSize
	}
	if c.Resolver.Kind == "" {
		c.Resolver.Kind = ResolverSystem
	}
	if c.TLS.MinVersion == "" {
		c.TLS.MinVersion = "TLSv1.2"
	}
	if c.Recv.DefaultSize == 0 {
		c.Recv.DefaultSize = hostbind.DefaultRecvSize
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	return nil
}

// Validate the config
func (c *Config) Validate() error {
	if c.EventLoop.Workers < 0 {
		return errors.Errorf("event_loop.workers: negative value %d", c.EventLoop.Workers)
	}
	if c.EventLoop.QueueSize < 0 {
		return errors.Errorf("event_loop.queue_size: negative value %d", c.EventLoop.QueueSize)
	}
	switch c.Resolver.Kind {
	case ResolverSystem:
	case ResolverUDP:
		if c.Resolver.Address == "" {
			return errors.New("resolver.address: required by the udp resolver")
		}
	default:
		return errors.Errorf("resolver.kind: unknown resolver %q", c.Resolver.Kind)
	}
	minVersion, err := netxlite.ParseTLSVersion(c.TLS.MinVersion)
	if err != nil {
		return errors.Wrapf(err, "tls.min_version: %q", c.TLS.MinVersion)
	}
	maxVersion, err := netxlite.ParseTLSVersion(c.TLS.MaxVersion)
	if err != nil {
		return errors.Wrapf(err, "tls.max_version: %q", c.TLS.MaxVersion)
	}
	if maxVersion != 0 && maxVersion < minVersion {
		return errors.New("tls: max_version is lower than min_version")
	}
	if c.Recv.DefaultSize < 0 {
		return errors.Errorf("recv.default_size: negative value %d", c.Recv.DefaultSize)
	}
	if _, err := log.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return errors.Wrapf(err, "log.level")
	}
	return nil
}

// LogLevel returns the configured log level. Call only after Validate.
func (c *Config) LogLevel() log.Level {
	return log.MustParseLevel(strings.ToLower(c.Log.Level))
}

// EventLoopOptions returns the options for creating the event loop.
func (c *Config) EventLoopOptions() []eventloop.Option {
	return []eventloop.Option{
		eventloop.WithWorkers(c.EventLoop.Workers),
		eventloop.WithQueueSize(c.EventLoop.QueueSize),
	}
}

// NewResolver creates the configured resolver.
func (c *Config) NewResolver(logger model.DebugLogger) netxlite.Resolver {
	if c.Resolver.Kind == ResolverUDP {
		return netxlite.NewResolverUDP(logger, c.Resolver.Address)
	}
	return netxlite.NewResolverStdlib(logger)
}

// EtlsOptions returns the options for sockets and acceptors. Call only
// after Validate, since invalid TLS versions are ignored here.
func (c *Config) EtlsOptions(logger model.Logger) []etls.Option {
	minVersion, _ := netxlite.ParseTLSVersion(c.TLS.MinVersion)
	maxVersion, _ := netxlite.ParseTLSVersion(c.TLS.MaxVersion)
	return []etls.Option{
		etls.WithLogger(logger),
		etls.WithResolver(c.NewResolver(logger)),
		etls.WithMinTLSVersion(minVersion),
		etls.WithMaxTLSVersion(maxVersion),
	}
}

// BindingOptions returns the options for a [*hostbind.Binding].
func (c *Config) BindingOptions(logger model.Logger) []hostbind.Option {
	return []hostbind.Option{
		hostbind.WithLogger(logger),
		hostbind.WithRecvDefaultSize(c.Recv.DefaultSize),
		hostbind.WithSocketOptions(c.EtlsOptions(logger)...),
	}
}
