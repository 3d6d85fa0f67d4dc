// Package config loads the engine's process-wide, immutable
// configuration from the environment, following the flat
// AppConfig/FromEnv convention used across the nrgchamp services.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ModeLimits holds the per-mode temperature bounds and default target.
type ModeLimits struct {
	Min     float64
	Max     float64
	Default float64
}

// Config is the engine's process-wide, immutable-after-boot configuration.
type Config struct {
	HTTPBind string

	Capacity         int     // C: active compressor slots
	TimeSliceSeconds float64 // T
	RoomCount        int
	DefaultTemp      float64

	Cooling ModeLimits
	Heating ModeLimits

	TimeAccelerationFactor float64
	EnableACCycleDailyFee  bool

	// FanRates maps fan speed name to °C of conditioning per logical minute.
	FanRates map[string]float64
	// RewarmRate is the passive drift rate, °C per logical minute.
	RewarmRate float64
	// BillingUnitPrice is currency units per °C of effective change.
	BillingUnitPrice float64

	KafkaBrokers []string
}

// FromEnv reads Config from the environment, applying the defaults
// documented in the engine's external interface spec.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPBind:               getEnv("HTTP_BIND", ":8080"),
		Capacity:               getEnvInt("HOTEL_AC_TOTAL_COUNT", 3),
		TimeSliceSeconds:       getEnvFloat("HOTEL_TIME_SLICE", 120),
		RoomCount:              getEnvInt("HOTEL_ROOM_COUNT", 20),
		DefaultTemp:            getEnvFloat("HOTEL_DEFAULT_TEMP", 30),
		TimeAccelerationFactor: getEnvFloat("TIME_ACCELERATION_FACTOR", 1),
		EnableACCycleDailyFee:  getEnvBool("ENABLE_AC_CYCLE_DAILY_FEE", false),
		Cooling: ModeLimits{
			Min:     getEnvFloat("COOLING_MIN_TEMP", 18),
			Max:     getEnvFloat("COOLING_MAX_TEMP", 30),
			Default: getEnvFloat("COOLING_DEFAULT_TARGET_TEMP", 25),
		},
		Heating: ModeLimits{
			Min:     getEnvFloat("HEATING_MIN_TEMP", 18),
			Max:     getEnvFloat("HEATING_MAX_TEMP", 30),
			Default: getEnvFloat("HEATING_DEFAULT_TARGET_TEMP", 22),
		},
		FanRates: map[string]float64{
			"LOW":    1.0 / 3.0,
			"MEDIUM": 1.0 / 2.0,
			"HIGH":   1.0,
		},
		RewarmRate:       0.5,
		BillingUnitPrice: 1.0,
		KafkaBrokers:     splitAndTrim(os.Getenv("KAFKA_BROKERS"), ","),
	}

	if cfg.Capacity <= 0 {
		return Config{}, fmt.Errorf("HOTEL_AC_TOTAL_COUNT must be positive, got %d", cfg.Capacity)
	}
	if cfg.Cooling.Min > cfg.Cooling.Max {
		return Config{}, fmt.Errorf("COOLING_MIN_TEMP (%v) exceeds COOLING_MAX_TEMP (%v)", cfg.Cooling.Min, cfg.Cooling.Max)
	}
	if cfg.Heating.Min > cfg.Heating.Max {
		return Config{}, fmt.Errorf("HEATING_MIN_TEMP (%v) exceeds HEATING_MAX_TEMP (%v)", cfg.Heating.Min, cfg.Heating.Max)
	}
	return cfg, nil
}

// Redacted returns a copy safe to log (no secrets live in this config
// today, but every nrgchamp service logs cfg.Redacted() rather than cfg
// so that adding one later is not a silent leak).
func (c Config) Redacted() Config {
	return c
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func splitAndTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
