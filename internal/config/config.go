package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/quakewatch/alert-summary/internal/domain"
)

// Config holds all service settings and business thresholds, populated from
// defaults, an optional YAML file, and ALERTSUMMARY_* environment variables.
type Config struct {
	Service    ServiceConfig    `mapstructure:"service"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
}

// ServiceConfig covers the daemon plumbing: Kafka topics, HTTP endpoints,
// logging, and batch sizing.
type ServiceConfig struct {
	KafkaBrokers    []string      `mapstructure:"kafka_brokers"`
	SourceTopic     string        `mapstructure:"source_topic"`
	SinkTopic       string        `mapstructure:"sink_topic"`
	GroupID         string        `mapstructure:"group_id"`
	HTTPAddr        string        `mapstructure:"http_addr"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	BatchSize          int           `mapstructure:"batch_size"`
	BatchFlushInterval time.Duration `mapstructure:"batch_flush_interval"`

	RosterPath string `mapstructure:"roster_path"`
}

// ThresholdsConfig carries the business-tuned constants of the engine. The
// attenuation coefficients and radius scaling are operational tuning, not
// structural values; only monotonicity is relied on.
type ThresholdsConfig struct {
	MagMapChange float64 `mapstructure:"mag_map_change"`
	MMISmall     int     `mapstructure:"mmi_small"`
	MMIAlert     int     `mapstructure:"mmi_alert"`

	MaxCities            int     `mapstructure:"max_cities"`
	MaxRadiusKm          float64 `mapstructure:"max_radius_km"`
	RadiusBaseKm         float64 `mapstructure:"radius_base_km"`
	RadiusPerMagnitudeKm float64 `mapstructure:"radius_per_magnitude_km"`

	AttenuationIntercept        float64 `mapstructure:"attenuation_intercept"`
	AttenuationMagnitudeCoeff   float64 `mapstructure:"attenuation_magnitude_coeff"`
	AttenuationDistanceCoeff    float64 `mapstructure:"attenuation_distance_coeff"`
	AttenuationDistanceOffsetKm float64 `mapstructure:"attenuation_distance_offset_km"`

	SWaveVelocityKmS float64 `mapstructure:"s_wave_velocity_km_s"`

	// Colors overrides the MMI palette, keyed by level ("4": "#b0fff7").
	Colors map[string]string `mapstructure:"colors"`
}

// Load reads configuration: defaults first, then an optional config file
// (path may be empty to search the working directory), then environment
// variables, e.g. ALERTSUMMARY_THRESHOLDS_MAG_MAP_CHANGE → thresholds.mag_map_change.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("service.kafka_brokers", []string{"localhost:9092"})
	v.SetDefault("service.source_topic", "raw-seismic-alerts")
	v.SetDefault("service.sink_topic", "alert-summaries")
	v.SetDefault("service.group_id", "alert-summary")
	v.SetDefault("service.http_addr", ":8080")
	v.SetDefault("service.log_level", "info")
	v.SetDefault("service.log_format", "json")
	v.SetDefault("service.shutdown_timeout", "10s")
	v.SetDefault("service.batch_size", 20)
	v.SetDefault("service.batch_flush_interval", "1s")
	v.SetDefault("service.roster_path", "")

	v.SetDefault("thresholds.mag_map_change", 5.0)
	v.SetDefault("thresholds.mmi_small", 3)
	v.SetDefault("thresholds.mmi_alert", 4)
	v.SetDefault("thresholds.max_cities", 4)
	v.SetDefault("thresholds.max_radius_km", 0.0)
	v.SetDefault("thresholds.radius_base_km", 60.0)
	v.SetDefault("thresholds.radius_per_magnitude_km", 40.0)
	v.SetDefault("thresholds.attenuation_intercept", 1.7)
	v.SetDefault("thresholds.attenuation_magnitude_coeff", 1.5)
	v.SetDefault("thresholds.attenuation_distance_coeff", 3.0)
	v.SetDefault("thresholds.attenuation_distance_offset_km", 10.0)
	v.SetDefault("thresholds.s_wave_velocity_km_s", 3.55)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		_ = v.ReadInConfig() // OK if missing
	}

	v.SetEnvPrefix("ALERTSUMMARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if len(c.Service.KafkaBrokers) == 0 {
		errs = append(errs, "service.kafka_brokers is required")
	}
	if c.Service.SourceTopic == "" {
		errs = append(errs, "service.source_topic is required")
	}
	if c.Service.SinkTopic == "" {
		errs = append(errs, "service.sink_topic is required")
	}
	if c.Service.BatchSize <= 0 {
		errs = append(errs, fmt.Sprintf("service.batch_size must be positive, got %d", c.Service.BatchSize))
	}
	if c.Service.ShutdownTimeout <= 0 {
		errs = append(errs, "service.shutdown_timeout must be positive")
	}

	t := c.Thresholds
	if t.MMISmall < domain.MinSupportedLevel || t.MMISmall > domain.MaxSupportedLevel {
		errs = append(errs, fmt.Sprintf("thresholds.mmi_small must be %d-%d, got %d",
			domain.MinSupportedLevel, domain.MaxSupportedLevel, t.MMISmall))
	}
	if t.MMIAlert < domain.MinSupportedLevel || t.MMIAlert > domain.MaxSupportedLevel {
		errs = append(errs, fmt.Sprintf("thresholds.mmi_alert must be %d-%d, got %d",
			domain.MinSupportedLevel, domain.MaxSupportedLevel, t.MMIAlert))
	}
	if t.MaxCities <= 0 {
		errs = append(errs, fmt.Sprintf("thresholds.max_cities must be positive, got %d", t.MaxCities))
	}
	if t.MaxRadiusKm == 0 && (t.RadiusBaseKm <= 0 || t.RadiusPerMagnitudeKm < 0) {
		errs = append(errs, "thresholds.radius_base_km must be positive when max_radius_km is unset")
	}
	if t.AttenuationMagnitudeCoeff <= 0 || t.AttenuationDistanceCoeff <= 0 {
		errs = append(errs, "attenuation coefficients must keep intensity increasing with magnitude and decreasing with distance")
	}
	if t.SWaveVelocityKmS <= 0 {
		errs = append(errs, "thresholds.s_wave_velocity_km_s must be positive")
	}
	if _, err := t.colorOverrides(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ProximityOptions wires the thresholds into the city ranking stage.
func (t ThresholdsConfig) ProximityOptions() domain.ProximityOptions {
	return domain.ProximityOptions{
		MaxResults:           t.MaxCities,
		MaxRadiusKm:          t.MaxRadiusKm,
		RadiusBaseKm:         t.RadiusBaseKm,
		RadiusPerMagnitudeKm: t.RadiusPerMagnitudeKm,
		Attenuation:          t.attenuation(),
		SWaveVelocityKmS:     t.SWaveVelocityKmS,
	}
}

// ContourOptions wires the thresholds into the contour builder.
func (t ThresholdsConfig) ContourOptions() domain.ContourOptions {
	colors, _ := t.colorOverrides()
	return domain.ContourOptions{
		MagMapChange:  t.MagMapChange,
		MinLevelSmall: t.MMISmall,
		MinLevelLarge: t.MMIAlert,
		Attenuation:   t.attenuation(),
		Colors:        colors,
	}
}

func (t ThresholdsConfig) attenuation() domain.AttenuationParams {
	return domain.AttenuationParams{
		Intercept:        t.AttenuationIntercept,
		MagnitudeCoeff:   t.AttenuationMagnitudeCoeff,
		DistanceCoeff:    t.AttenuationDistanceCoeff,
		DistanceOffsetKm: t.AttenuationDistanceOffsetKm,
	}
}

func (t ThresholdsConfig) colorOverrides() (map[int]string, error) {
	if len(t.Colors) == 0 {
		return nil, nil
	}
	out := make(map[int]string, len(t.Colors))
	for k, v := range t.Colors {
		level, err := strconv.Atoi(k)
		if err != nil || level < domain.MinSupportedLevel || level > domain.MaxSupportedLevel {
			return nil, fmt.Errorf("thresholds.colors key %q is not a supported level", k)
		}
		if !strings.HasPrefix(v, "#") {
			return nil, fmt.Errorf("thresholds.colors[%s] %q is not a hex color", k, v)
		}
		out[level] = v
	}
	return out, nil
}
