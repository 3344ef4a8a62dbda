// Package anomaly flags statistics whose latest value deviates from a
// player's historical median.
package anomaly

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/ramonehamilton/rugby-stats/internal/rugby"
)

// Mode selects which median the last match is compared against.
type Mode string

const (
	// ModeAll compares against the median of the whole history.
	ModeAll Mode = "all"
	// ModeRecent compares against the median of the most recent matches.
	ModeRecent Mode = "recent"
)

// ParseMode validates a mode string. The empty string means ModeAll.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAll:
		return ModeAll, nil
	case ModeRecent:
		return ModeRecent, nil
	default:
		return "", fmt.Errorf("invalid anomaly mode %q (want all or recent)", s)
	}
}

// Alert is the direction of a flagged deviation. The zero value means no alert.
type Alert string

const (
	AlertNone     Alert = ""
	AlertPositive Alert = "positive"
	AlertNegative Alert = "negative"
)

// MarshalJSON encodes AlertNone as null.
func (a Alert) MarshalJSON() ([]byte, error) {
	if a == AlertNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(a))
}

// UnmarshalJSON accepts null, "positive" or "negative".
func (a *Alert) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*a = AlertNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Alert(s) {
	case AlertPositive, AlertNegative:
		*a = Alert(s)
		return nil
	default:
		return fmt.Errorf("invalid alert %q", s)
	}
}

// Thresholds are the alert thresholds, in percent, per volatility tier.
type Thresholds struct {
	Consistent float64
	Moderate   float64
	Volatile   float64
}

// For returns the threshold of a tier.
func (t Thresholds) For(tier rugby.Tier) float64 {
	switch tier {
	case rugby.Consistent:
		return t.Consistent
	case rugby.Moderate:
		return t.Moderate
	default:
		return t.Volatile
	}
}

// Config holds the tunable detection constants.
type Config struct {
	// RecentWindow is the number of history entries used in ModeRecent.
	RecentWindow int
	Thresholds   Thresholds
	// InclusiveBoundary alerts when the deviation equals the threshold.
	InclusiveBoundary bool
}

// DefaultConfig returns a window of 5 and 25/30/50 percent thresholds.
func DefaultConfig() Config {
	return Config{
		RecentWindow: 5,
		Thresholds: Thresholds{
			Consistent: 25,
			Moderate:   30,
			Volatile:   50,
		},
		InclusiveBoundary: true,
	}
}

// Result is the outcome for one statistic.
type Result struct {
	MedianAll    float64 `json:"median_all"`
	MedianRecent float64 `json:"median_recent"`
	LastValue    int     `json:"last_value"`
	DeviationPct float64 `json:"deviation_pct"`
	Alert        Alert   `json:"alert"`
	Threshold    float64 `json:"threshold"`
}

// Report maps every statistic to its result. It is empty when the
// history is too short to compare.
type Report map[rugby.Statistic]Result

// Alerts returns the flagged statistics in canonical order.
func (r Report) Alerts() []rugby.Statistic {
	var out []rugby.Statistic
	for _, s := range rugby.Statistics() {
		if res, ok := r[s]; ok && res.Alert != AlertNone {
			out = append(out, s)
		}
	}
	return out
}

// Detector runs anomaly detection. It is stateless and safe for concurrent use.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector. Zero fields of cfg take the defaults,
// except InclusiveBoundary which is used as given.
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = def.RecentWindow
	}
	if cfg.Thresholds.Consistent <= 0 {
		cfg.Thresholds.Consistent = def.Thresholds.Consistent
	}
	if cfg.Thresholds.Moderate <= 0 {
		cfg.Thresholds.Moderate = def.Thresholds.Moderate
	}
	if cfg.Thresholds.Volatile <= 0 {
		cfg.Thresholds.Volatile = def.Thresholds.Volatile
	}
	return &Detector{cfg: cfg}
}

// Config returns the detector's effective configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// Detect compares the last entry of history against the entries before it.
// history must be in chronological order, oldest first.
func (d *Detector) Detect(history []rugby.StatLine, mode Mode) Report {
	report := make(Report, rugby.NumStatistics)
	if len(history) < 2 {
		return report
	}

	last := history[len(history)-1]
	previous := history[:len(history)-1]
	recent := previous
	if len(recent) > d.cfg.RecentWindow {
		recent = recent[len(recent)-d.cfg.RecentWindow:]
	}

	for _, stat := range rugby.Statistics() {
		medianAll := median(column(previous, stat))
		medianRecent := median(column(recent, stat))

		comparison := medianAll
		if mode == ModeRecent {
			comparison = medianRecent
		}

		lastValue := last.Get(stat)
		deviation := deviationPct(float64(lastValue), comparison)
		threshold := d.cfg.Thresholds.For(stat.Tier())

		report[stat] = Result{
			MedianAll:    medianAll,
			MedianRecent: medianRecent,
			LastValue:    lastValue,
			DeviationPct: round1(deviation),
			Alert:        d.alert(stat, deviation, threshold),
			Threshold:    threshold,
		}
	}

	return report
}

func (d *Detector) alert(stat rugby.Statistic, deviation, threshold float64) Alert {
	magnitude := math.Abs(deviation)
	if magnitude < threshold || (!d.cfg.InclusiveBoundary && magnitude == threshold) {
		return AlertNone
	}

	up := deviation > 0
	if stat.Polarity() == rugby.Negative {
		up = !up
	}
	if up {
		return AlertPositive
	}
	return AlertNegative
}

// deviationPct is the percent change from base to value. A zero base
// yields 100 for any positive value and 0 otherwise.
func deviationPct(value, base float64) float64 {
	if base == 0 {
		if value > 0 {
			return 100
		}
		return 0
	}
	return (value - base) / base * 100
}

func column(lines []rugby.StatLine, stat rugby.Statistic) []float64 {
	out := make([]float64, len(lines))
	for i, l := range lines {
		out[i] = float64(l.Get(stat))
	}
	return out
}

// median averages the two middle values of an even-length sample.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
