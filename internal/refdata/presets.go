package refdata

import "strings"

// Range is an annual cost range in USD.
type Range struct {
	Min float64
	Max float64
	Avg float64
}

// Preset maps budget category names to their annual USD range.
type Preset map[string]Range

// DefaultPresetKey is the fallback entry for countries without a preset.
const DefaultPresetKey = "DEFAULT"

var presets = map[string]Preset{
	"US": {
		"tuition": {10000, 55000, 28000}, "accommodation": {8000, 18000, 12000},
		"transport": {600, 2400, 1200}, "insurance": {1500, 4000, 2500},
		"travel": {800, 3000, 1500}, "living": {4000, 9000, 6000},
		"books": {600, 2000, 1200}, "other": {500, 3000, 1500},
	},
	"GB": {
		"tuition": {12000, 38000, 22000}, "accommodation": {7000, 15000, 10000},
		"transport": {500, 1800, 1000}, "insurance": {400, 1500, 800},
		"travel": {600, 2400, 1200}, "living": {3500, 7500, 5000},
		"books": {300, 1000, 600}, "other": {500, 2500, 1200},
	},
	"CA": {
		"tuition": {12000, 35000, 20000}, "accommodation": {6000, 13000, 9000},
		"transport": {500, 1500, 900}, "insurance": {400, 1200, 700},
		"travel": {800, 3000, 1500}, "living": {3500, 7000, 4800},
		"books": {500, 1600, 1000}, "other": {400, 2000, 1000},
	},
	"AU": {
		"tuition": {14000, 40000, 24000}, "accommodation": {7500, 16000, 11000},
		"transport": {600, 1800, 1100}, "insurance": {400, 800, 500},
		"travel": {1000, 3500, 2000}, "living": {4000, 8000, 5500},
		"books": {400, 1300, 800}, "other": {500, 2400, 1200},
	},
	"DE": {
		"tuition": {300, 3000, 500}, "accommodation": {3600, 8400, 5400},
		"transport": {300, 1000, 600}, "insurance": {1200, 1500, 1300},
		"travel": {400, 1500, 800}, "living": {2800, 5000, 3600},
		"books": {200, 700, 400}, "other": {300, 1500, 800},
	},
	"FR": {
		"tuition": {200, 15000, 3500}, "accommodation": {4200, 10800, 6600},
		"transport": {300, 900, 450}, "insurance": {0, 700, 350},
		"travel": {400, 1800, 900}, "living": {2800, 5400, 3600},
		"books": {200, 800, 400}, "other": {300, 1500, 800},
	},
	"NL": {
		"tuition": {2500, 20000, 12000}, "accommodation": {6000, 12000, 8400},
		"transport": {300, 1200, 600}, "insurance": {1000, 1800, 1400},
		"travel": {400, 1800, 900}, "living": {3200, 6000, 4200},
		"books": {400, 1100, 700}, "other": {400, 1800, 900},
	},
	"ES": {
		"tuition": {1000, 12000, 3000}, "accommodation": {4200, 9000, 6000},
		"transport": {250, 800, 400}, "insurance": {400, 1000, 600},
		"travel": {400, 1800, 900}, "living": {2800, 5000, 3600},
		"books": {200, 700, 400}, "other": {300, 1500, 800},
	},
	"IT": {
		"tuition": {900, 15000, 2500}, "accommodation": {4200, 9600, 6000},
		"transport": {250, 800, 400}, "insurance": {300, 900, 500},
		"travel": {400, 1800, 900}, "living": {2800, 5400, 3800},
		"books": {250, 800, 500}, "other": {300, 1500, 800},
	},
	"IE": {
		"tuition": {10000, 25000, 16000}, "accommodation": {7000, 14000, 10000},
		"transport": {400, 1400, 800}, "insurance": {400, 1000, 600},
		"travel": {400, 1800, 900}, "living": {3400, 6400, 4500},
		"books": {300, 1000, 600}, "other": {400, 2000, 1000},
	},
	"CH": {
		"tuition": {1000, 4000, 1500}, "accommodation": {8400, 18000, 12000},
		"transport": {500, 1600, 900}, "insurance": {2400, 5000, 3600},
		"travel": {500, 2000, 1000}, "living": {5400, 10000, 7200},
		"books": {400, 1300, 800}, "other": {600, 3000, 1500},
	},
	"SE": {
		"tuition": {9000, 25000, 14000}, "accommodation": {4200, 8400, 6000},
		"transport": {400, 1100, 700}, "insurance": {0, 600, 300},
		"travel": {400, 1800, 900}, "living": {3200, 5600, 4200},
		"books": {300, 1000, 600}, "other": {400, 1800, 900},
	},
	"JP": {
		"tuition": {3500, 12000, 5000}, "accommodation": {3600, 9600, 6000},
		"transport": {400, 1500, 800}, "insurance": {200, 400, 250},
		"travel": {800, 3000, 1500}, "living": {3600, 7200, 4800},
		"books": {250, 900, 500}, "other": {400, 1800, 900},
	},
	"KR": {
		"tuition": {3000, 10000, 5500}, "accommodation": {3000, 7800, 4800},
		"transport": {300, 900, 500}, "insurance": {400, 900, 600},
		"travel": {700, 2500, 1300}, "living": {3000, 6000, 4200},
		"books": {200, 700, 400}, "other": {300, 1500, 800},
	},
	"CN": {
		"tuition": {2000, 8000, 3500}, "accommodation": {1200, 5000, 2400},
		"transport": {150, 600, 300}, "insurance": {100, 200, 120},
		"travel": {800, 2800, 1400}, "living": {2000, 4800, 3000},
		"books": {150, 500, 300}, "other": {300, 1200, 600},
	},
	DefaultPresetKey: {
		"tuition": {2000, 20000, 8000}, "accommodation": {4000, 12000, 7200},
		"transport": {300, 1400, 700}, "insurance": {300, 2000, 800},
		"travel": {500, 2500, 1200}, "living": {2500, 7000, 4200},
		"books": {200, 1000, 500}, "other": {300, 2000, 900},
	},
}

// PresetFor returns the preset for an ISO country code. ok is false when the
// default entry was substituted.
func PresetFor(code string) (p Preset, ok bool) {
	p, ok = presets[strings.ToUpper(strings.TrimSpace(code))]
	if !ok || code == DefaultPresetKey {
		return presets[DefaultPresetKey], false
	}
	return p, true
}

// PresetCountries lists the codes that have a dedicated preset.
func PresetCountries() []string {
	out := make([]string, 0, len(presets))
	for code := range presets {
		if code != DefaultPresetKey {
			out = append(out, code)
		}
	}
	return out
}
