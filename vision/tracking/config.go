package tracking

import (
	"encoding/json"
	"os"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	viamutils "go.viam.com/utils"

	"go.viam.com/colortrack/rimage"
)

// Defaults used for unset configuration fields.
const (
	DefaultCandidateCount    = 20
	DefaultPresenceThreshold = 5.0
	DefaultMaxIterations     = 20
	DefaultEpsilon           = 1.0
	DefaultFramePeriod       = 100 * time.Millisecond
)

// Config is the JSON configuration surface of a tracking session. Channels,
// bins and ranges default to the hue and saturation channels with one bin per
// value.
type Config struct {
	SearchAreaWidth  int `json:"search_area_width"`
	SearchAreaHeight int `json:"search_area_height"`

	// Channels index the working color space: 0 hue, 1 saturation, 2 value.
	Channels []int `json:"channels,omitempty"`
	Bins     []int `json:"bins,omitempty"`
	// Ranges are [min, max) per channel.
	Ranges [][2]float64 `json:"ranges,omitempty"`

	CandidateCount    *int     `json:"candidate_count,omitempty"`
	PresenceThreshold *float64 `json:"presence_threshold,omitempty"`
	MaxIterations     *int     `json:"max_iterations,omitempty"`
	Epsilon           *float64 `json:"epsilon,omitempty"`
	Workers           int      `json:"workers,omitempty"`
	Seed              int64    `json:"seed,omitempty"`
	// FramePeriodMS is how long one frame may take before it is logged as slow. 0 disables.
	FramePeriodMS *int `json:"frame_period_ms,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.SearchAreaWidth == 0 {
		return viamutils.NewConfigValidationFieldRequiredError(path, "search_area_width")
	}
	if cfg.SearchAreaHeight == 0 {
		return viamutils.NewConfigValidationFieldRequiredError(path, "search_area_height")
	}
	if err := (SearchArea{cfg.SearchAreaWidth, cfg.SearchAreaHeight}).Validate(); err != nil {
		return viamutils.NewConfigValidationError(path, err)
	}
	if len(cfg.Channels) > 0 || len(cfg.Bins) > 0 || len(cfg.Ranges) > 0 {
		channels, bins, ranges := cfg.HistogramParams()
		if err := validateHistogramParams(channels, bins, ranges, 3); err != nil {
			return viamutils.NewConfigValidationError(path, err)
		}
	}
	if cfg.CandidateCount != nil && *cfg.CandidateCount < 1 {
		return viamutils.NewConfigValidationError(path,
			newInvalidConfigurationError("candidate_count must be at least 1, got %d", *cfg.CandidateCount))
	}
	if cfg.FramePeriodMS != nil && *cfg.FramePeriodMS < 0 {
		return viamutils.NewConfigValidationError(path,
			newInvalidConfigurationError("frame_period_ms must not be negative, got %d", *cfg.FramePeriodMS))
	}
	if err := cfg.SearchParams().Validate(); err != nil {
		return viamutils.NewConfigValidationError(path, err)
	}
	return nil
}

// HistogramParams returns the channels, bins and ranges of the color model.
func (cfg *Config) HistogramParams() ([]int, []int, []ValueRange) {
	if len(cfg.Channels) == 0 && len(cfg.Bins) == 0 && len(cfg.Ranges) == 0 {
		return []int{rimage.ChannelHue, rimage.ChannelSaturation},
			[]int{int(rimage.HSVRanges[0][1]), int(rimage.HSVRanges[1][1])},
			append([]ValueRange(nil), HueSaturationRanges...)
	}
	ranges := make([]ValueRange, 0, len(cfg.Ranges))
	for _, r := range cfg.Ranges {
		ranges = append(ranges, ValueRange{Min: r[0], Max: r[1]})
	}
	return append([]int(nil), cfg.Channels...), append([]int(nil), cfg.Bins...), ranges
}

// Candidates returns the candidate count, defaulted.
func (cfg *Config) Candidates() int {
	if cfg.CandidateCount == nil {
		return DefaultCandidateCount
	}
	return *cfg.CandidateCount
}

// Threshold returns the presence threshold, defaulted.
func (cfg *Config) Threshold() float64 {
	if cfg.PresenceThreshold == nil {
		return DefaultPresenceThreshold
	}
	return *cfg.PresenceThreshold
}

// MeanShiftCriteria returns the mean-shift termination criteria, defaulted.
func (cfg *Config) MeanShiftCriteria() TermCriteria {
	criteria := DefaultTermCriteria
	if cfg.MaxIterations != nil {
		criteria.MaxIterations = *cfg.MaxIterations
	}
	if cfg.Epsilon != nil {
		criteria.Epsilon = *cfg.Epsilon
	}
	return criteria
}

// FramePeriod returns the slow frame limit, defaulted.
func (cfg *Config) FramePeriod() time.Duration {
	if cfg.FramePeriodMS == nil {
		return DefaultFramePeriod
	}
	return time.Duration(*cfg.FramePeriodMS) * time.Millisecond
}

// SearchParams returns the parameters for a ParallelSearch.
func (cfg *Config) SearchParams() SearchParams {
	return SearchParams{
		Criteria:          cfg.MeanShiftCriteria(),
		PresenceThreshold: cfg.Threshold(),
		Workers:           cfg.Workers,
	}
}

// NewConfigFromAttributes decodes a config from loosely typed attributes, as
// produced by decoding JSON into a map.
func NewConfigFromAttributes(attributes map[string]interface{}) (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "couldn't decode tracking config")
	}
	return &cfg, nil
}

// LoadConfig reads a JSON config file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read config %q", path)
	}
	var attributes map[string]interface{}
	if err := json.Unmarshal(raw, &attributes); err != nil {
		return nil, errors.Wrapf(err, "couldn't parse config %q", path)
	}
	return NewConfigFromAttributes(attributes)
}
