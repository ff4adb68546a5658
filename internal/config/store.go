package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// StoreSettings are operator-tunable knobs that can change without a restart.
type StoreSettings struct {
	CurrencyCode     string  `mapstructure:"currency_code"`
	CurrencySymbol   string  `mapstructure:"currency_symbol"`
	DefaultGSTRate   float64 `mapstructure:"default_gst_rate"`
	ReceiptFooter    string  `mapstructure:"receipt_footer"`
	RecentBillsLimit int     `mapstructure:"recent_bills_limit"`
}

func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		CurrencyCode:     "INR",
		CurrencySymbol:   "₹",
		DefaultGSTRate:   18.0,
		ReceiptFooter:    "Thank you for shopping with us!",
		RecentBillsLimit: 5,
	}
}

// StoreSettingsHolder holds the live store settings, hot-reloaded from disk.
type StoreSettingsHolder struct {
	current atomic.Value // holds StoreSettings
}

func NewStoreSettingsHolder() (*StoreSettingsHolder, error) {
	v := viper.New()

	v.SetConfigName("store")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/tillpoint/config")
	v.AddConfigPath("/etc/tillpoint")
	v.AddConfigPath(".")

	holder := &StoreSettingsHolder{}
	holder.current.Store(DefaultStoreSettings())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		return holder, nil
	}

	if err := holder.apply(v); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := holder.apply(v); err != nil {
			log.Printf("store settings reload failed: %v", err)
		}
	})
	v.WatchConfig()

	return holder, nil
}

// Current returns the active settings snapshot.
func (h *StoreSettingsHolder) Current() StoreSettings {
	return h.current.Load().(StoreSettings)
}

func (h *StoreSettingsHolder) apply(v *viper.Viper) error {
	settings := DefaultStoreSettings()
	if err := v.Unmarshal(&settings); err != nil {
		return err
	}
	if strings.TrimSpace(settings.CurrencyCode) == "" {
		settings.CurrencyCode = "INR"
	}
	if settings.RecentBillsLimit <= 0 {
		settings.RecentBillsLimit = 5
	}
	h.current.Store(settings)
	return nil
}
