package telemetry

// Config controls the trace pipeline. It is populated from the telemetry
// section of the server configuration.
type Config struct {
	// Enabled turns span export on. When false, Init installs a no-op
	// tracer and every instrumentation point costs nothing.
	Enabled bool

	// ServiceName identifies this process to the trace backend.
	ServiceName string

	// ServiceVersion is the build version attached to every span.
	ServiceVersion string

	// Endpoint is the OTLP/gRPC collector address, host:port.
	Endpoint string

	// Insecure disables TLS on the collector connection. Appropriate for
	// a collector sidecar, not for a remote backend.
	Insecure bool

	// SampleRate is the fraction of traces to sample in [0, 1].
	SampleRate float64
}

// DefaultConfig is disabled tracing against a local collector.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "longshore",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
}
