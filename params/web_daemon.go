package params

import "time"

// ListenerConfig is passed to net.Listen.
// Network is one of "tcp", "tcp4", "tcp6" or "unix".
type ListenerConfig struct {
	Network string `mapstructure:"network"`
	Address string `mapstructure:"address"`
}

type WebDaemonConfig struct {
	ListenerConfig `mapstructure:",squash"`
	Map            *MapConfig `mapstructure:"map"`

	// DefaultViewport is used when a page or document request carries no size.
	DefaultViewport Viewport `mapstructure:"viewport"`

	// SVGCacheSize bounds the number of rendered documents kept, one per viewport.
	SVGCacheSize int `mapstructure:"svg_cache_size"`

	// SessionTTL expires idle view sessions of clients using the REST API.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

func DefaultWebListenerConfig() ListenerConfig {
	return ListenerConfig{
		Network: "tcp",
		Address: "localhost:3000",
	}
}

func DefaultWebDaemonConfig() *WebDaemonConfig {
	return &WebDaemonConfig{
		ListenerConfig:  DefaultWebListenerConfig(),
		Map:             DefaultMapConfig(),
		DefaultViewport: DefaultViewport(),
		SVGCacheSize:    64,
		SessionTTL:      30 * time.Minute,
	}
}

func DefaultTestWebDaemonConfig() *WebDaemonConfig {
	d := DefaultWebDaemonConfig()
	d.ListenerConfig = ListenerConfig{
		Network: "tcp",
		Address: "localhost:3333",
	}
	d.SessionTTL = time.Minute
	return d
}
