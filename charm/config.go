// ABOUTME: Charm connection settings derived from the app config
// ABOUTME: Host selection and auto-sync preference

package charm

import "github.com/harperreed/insuretrack/config"

// Config holds charm connection settings.
type Config struct {
	// Host is the charm server hostname
	Host string

	// AutoSync enables automatic sync after every write operation
	AutoSync bool
}

// ConfigFrom picks the charm settings out of the app config.
func ConfigFrom(cfg *config.Config) *Config {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Config{Host: cfg.CharmHost, AutoSync: cfg.AutoSync}
}
