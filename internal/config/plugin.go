package config

import (
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// PluginConfig carries the behavior toggles that used to live in the host
// plugin's settings block. Both are consulted by the task service: the first
// gates the external-contract validation rule, the second gates the
// auto-fill-from-parent propagation hook.
type PluginConfig struct {
	EnableExternalResourceValidation bool `mapstructure:"enableExternalResourceValidation"`
	AutoFillChangeOrder              bool `mapstructure:"autoFillChangeOrder"`
}

func DefaultPluginConfig() PluginConfig {
	return PluginConfig{
		EnableExternalResourceValidation: true,
		AutoFillChangeOrder:              true,
	}
}

// PluginConfigHolder exposes the current toggles and hot-reloads them when the
// backing file changes.
type PluginConfigHolder struct {
	current atomic.Value // holds PluginConfig
}

func NewPluginConfigHolder(log *zap.Logger) (*PluginConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("rms")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/rms/config") // Volume-mounted config
	v.AddConfigPath("/etc/rms")            // System config
	v.AddConfigPath(".")                   // Current directory (dev mode)

	v.SetEnvPrefix("RMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPluginConfig()
		v.SetDefault("plugin.enableExternalResourceValidation", defaults.EnableExternalResourceValidation)
		v.SetDefault("plugin.autoFillChangeOrder", defaults.AutoFillChangeOrder)
	}

	holder := &PluginConfigHolder{}
	if err := holder.load(v); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := holder.load(v); err != nil {
			if log != nil {
				log.Warn("plugin config reload failed", zap.Error(err))
			}
			return
		}
		if log != nil {
			log.Info("plugin config reloaded")
		}
	})
	v.WatchConfig()

	return holder, nil
}

// NewStaticPluginConfigHolder wraps a fixed config, for tests.
func NewStaticPluginConfigHolder(cfg PluginConfig) *PluginConfigHolder {
	holder := &PluginConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PluginConfigHolder) load(v *viper.Viper) error {
	cfg := DefaultPluginConfig()
	if err := v.UnmarshalKey("plugin", &cfg); err != nil {
		return err
	}
	h.current.Store(cfg)
	return nil
}

func (h *PluginConfigHolder) Current() PluginConfig {
	if value, ok := h.current.Load().(PluginConfig); ok {
		return value
	}
	return DefaultPluginConfig()
}
