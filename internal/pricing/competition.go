package pricing

import (
	"fmt"
	"strings"
)

// Intensity is the fine-grained competition scale. It is the single source
// of truth for competition: the coarse Level is always derived from it.
type Intensity int

const (
	IntensityVeryLow Intensity = iota
	IntensityLow
	IntensityModerate
	IntensityHigh
	IntensityVeryHigh
	IntensityExtreme
)

var intensityKeys = [...]string{"very_low", "low", "moderate", "high", "very_high", "extreme"}

// Spanish labels shown by the marketplace UI
var intensityLabels = [...]string{"muy baja", "baja", "moderada", "alta", "muy alta", "extrema"}

// String returns the string representation of the intensity
func (i Intensity) String() string {
	if i < IntensityVeryLow || i > IntensityExtreme {
		return "unknown"
	}
	return intensityKeys[i]
}

// Label returns the UI label of the intensity
func (i Intensity) Label() string {
	if i < IntensityVeryLow || i > IntensityExtreme {
		return ""
	}
	return intensityLabels[i]
}

// Level collapses the intensity onto the three-step competition level
func (i Intensity) Level() Level {
	switch {
	case i <= IntensityLow:
		return LevelLow
	case i == IntensityModerate:
		return LevelModerate
	default:
		return LevelHigh
	}
}

// MarshalText implements encoding.TextMarshaler
func (i Intensity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (i *Intensity) UnmarshalText(text []byte) error {
	for c := IntensityVeryLow; c <= IntensityExtreme; c++ {
		if strings.EqualFold(c.String(), string(text)) {
			*i = c
			return nil
		}
	}
	return fmt.Errorf("unknown competition intensity %q", string(text))
}

// ParseIntensityLabel maps a UI label ("muy baja" … "extrema") back onto the
// enumeration. Unknown labels resolve to moderate, like the UI does.
func ParseIntensityLabel(label string) Intensity {
	normalized := strings.ToLower(strings.TrimSpace(label))
	for c := IntensityVeryLow; c <= IntensityExtreme; c++ {
		if normalized == intensityLabels[c] || normalized == intensityKeys[c] {
			return c
		}
	}
	return IntensityModerate
}

// Spread groups price dispersion and coefficient of variation into three classes
type Spread int

const (
	SpreadLow Spread = iota
	SpreadModerate
	SpreadHigh
)

// String returns the string representation of the spread class
func (s Spread) String() string {
	switch s {
	case SpreadLow:
		return "low"
	case SpreadModerate:
		return "moderate"
	case SpreadHigh:
		return "high"
	default:
		return "unknown"
	}
}

// CompetitionInput carries everything the competition classifier looks at
type CompetitionInput struct {
	Count      int
	Dispersion float64 // (max-min)/mean
	CV         float64 // stdDev/mean
}

// ClassifySpread combines dispersion and CV. Either signal alone can make the
// spread high; both must be small for it to be low.
func ClassifySpread(dispersion, cv float64, params Params) Spread {
	switch {
	case dispersion >= params.HighDispersion || cv >= params.HighCV:
		return SpreadHigh
	case dispersion < params.LowDispersion && cv < params.LowCV:
		return SpreadLow
	default:
		return SpreadModerate
	}
}

// ClassifyCompetition returns the competition intensity. Crowded markets with
// a wide price spread escalate to high and beyond; thin markets with a tight
// spread drop to low; everything in between, including boundary cases,
// stays moderate.
func ClassifyCompetition(in CompetitionInput, params Params) Intensity {
	spread := ClassifySpread(in.Dispersion, in.CV, params)

	switch {
	case in.Count > params.CompetitionHighAbove && spread == SpreadHigh:
		switch {
		case in.Count >= params.CompetitionExtremeAt:
			return IntensityExtreme
		case in.Count >= params.CompetitionVeryHighAt:
			return IntensityVeryHigh
		default:
			return IntensityHigh
		}
	case in.Count < params.CompetitionLowBelow && spread == SpreadLow:
		if in.Count < params.CompetitionVeryLowBelow {
			return IntensityVeryLow
		}
		return IntensityLow
	default:
		return IntensityModerate
	}
}
