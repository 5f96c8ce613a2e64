package portfolio

// TradingStrategy is the immutable-per-cycle configuration that gates and
// sizes trades. Swapping it between cycles never invalidates positions that
// are already open.
type TradingStrategy struct {
	Name                 string  `json:"name"`
	RiskPerTrade         float64 `json:"riskPerTrade"` // percent of cash risked per trade
	MaxPositions         int     `json:"maxPositions"`
	MinConfidence        float64 `json:"minConfidence"`
	UseTrailingStop      bool    `json:"useTrailingStop"`
	TrailingStopPercent  float64 `json:"trailingStopPercent"`
	UseDCA               bool    `json:"useDCA"`
	DCALevels            int     `json:"dcaLevels"`
	UseScalping          bool    `json:"useScalping"`
	ScalpingTargetPct    float64 `json:"scalpingTargetPercent"`
	UseMarketTiming      bool    `json:"useMarketTiming"`
	AvoidWeekends        bool    `json:"avoidWeekends"`
	MaxLeverage          int     `json:"maxLeverage"`
	Diversification      bool    `json:"diversification"`
}

// Presets keyed by name. Changing these values changes live sizing and
// gating for anyone running on a named preset.
var Presets = map[string]TradingStrategy{
	"conservative": {
		Name:                "conservative",
		RiskPerTrade:        1,
		MaxPositions:        3,
		MinConfidence:       0.75,
		UseTrailingStop:     true,
		TrailingStopPercent: 2,
		UseMarketTiming:     true,
		AvoidWeekends:       true,
		MaxLeverage:         5,
		Diversification:     true,
	},
	"moderate": {
		Name:                "moderate",
		RiskPerTrade:        2,
		MaxPositions:        5,
		MinConfidence:       0.65,
		UseTrailingStop:     true,
		TrailingStopPercent: 3,
		UseDCA:              true,
		DCALevels:           2,
		UseMarketTiming:     true,
		MaxLeverage:         10,
		Diversification:     true,
	},
	"aggressive": {
		Name:                "aggressive",
		RiskPerTrade:        3,
		MaxPositions:        8,
		MinConfidence:       0.60,
		UseTrailingStop:     true,
		TrailingStopPercent: 4,
		UseDCA:              true,
		DCALevels:           3,
		UseScalping:         true,
		ScalpingTargetPct:   1.5,
		MaxLeverage:         20,
	},
	"scalper": {
		Name:              "scalper",
		RiskPerTrade:      1.5,
		MaxPositions:      10,
		MinConfidence:     0.70,
		UseScalping:       true,
		ScalpingTargetPct: 0.8,
		MaxLeverage:       15,
	},
}

// DefaultStrategy is the preset used when nothing else is configured.
func DefaultStrategy() TradingStrategy {
	return Presets["moderate"]
}

// PresetByName returns the named preset, or the default with false when the
// name is unknown.
func PresetByName(name string) (TradingStrategy, bool) {
	s, ok := Presets[name]
	if !ok {
		return DefaultStrategy(), false
	}
	return s, true
}
