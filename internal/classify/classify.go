// Package classify maps raw weather signals to display categories.
//
// Two independent schemes exist. ByTemperature drives panel icons from the
// current temperature; ByWeatherCode labels a numeric condition code. They
// are never combined: callers pick whichever signal they have.
package classify

// Icon is a temperature-band icon key.
type Icon string

const (
	IconSunny        Icon = "sunny"
	IconPartlyCloudy Icon = "partly-cloudy"
	IconRainy        Icon = "rainy"
	IconSnow         Icon = "snow"
)

// Weather code labels.
const (
	LabelSunny        = "Sunny"
	LabelPartlyCloudy = "Partly Cloudy"
	LabelCloudy       = "Cloudy"
	LabelRainy        = "Rainy"
	LabelStormy       = "Stormy"
	LabelUnknown      = "Unknown Weather Condition"
)

// ByTemperature picks an icon using strict thresholds; a value exactly on a
// boundary falls into the lower band. NaN compares false everywhere and maps to IconSnow.
func ByTemperature(celsius float64) Icon {
	switch {
	case celsius > 30:
		return IconSunny
	case celsius > 20:
		return IconPartlyCloudy
	case celsius > 10:
		return IconRainy
	default:
		return IconSnow
	}
}

// ByWeatherCode labels codes 0..11; anything else is LabelUnknown.
func ByWeatherCode(code int) string {
	switch {
	case code == 0:
		return LabelSunny
	case code == 1 || code == 2:
		return LabelPartlyCloudy
	case code == 3 || code == 4:
		return LabelCloudy
	case code >= 5 && code <= 8:
		return LabelRainy
	case code >= 9 && code <= 11:
		return LabelStormy
	default:
		return LabelUnknown
	}
}
