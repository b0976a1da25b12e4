package api

import (
	"time"

	"github.com/harborml/longshore/internal/bytesize"
)

// Config configures the upload API HTTP server.
type Config struct {
	// Host is the listen address. Empty binds all interfaces.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the HTTP port for the upload endpoints.
	// Default: 8080
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. Chunk requests carry file data, so this is more
	// generous than a plain API server would use.
	// Default: 30s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Completion reassembles the file and runs the sink pipeline
	// before responding.
	// Default: 60s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. If zero, the value of ReadTimeout is used.
	// Default: 120s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// MaxMultipartMemory caps how much of a chunk request body is held in
	// memory before spilling to a temporary file.
	// Default: 32Mi
	MaxMultipartMemory bytesize.ByteSize `mapstructure:"max_multipart_memory" yaml:"max_multipart_memory"`
}

// applyDefaults fills in zero values with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Port <= 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 60 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120 * time.Second
	}
	if c.MaxMultipartMemory == 0 {
		c.MaxMultipartMemory = 32 * bytesize.MiB
	}
}
