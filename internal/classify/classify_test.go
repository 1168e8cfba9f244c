package classify

import (
	"math"
	"testing"
)

func TestByTemperature(t *testing.T) {
	tests := []struct {
		name    string
		celsius float64
		want    Icon
	}{
		{"hot", 35, IconSunny},
		{"just above 30", 30.01, IconSunny},
		{"boundary 30", 30, IconPartlyCloudy},
		{"warm", 25, IconPartlyCloudy},
		{"boundary 20", 20, IconRainy},
		{"mild", 15.5, IconRainy},
		{"boundary 10", 10, IconSnow},
		{"cold", -5, IconSnow},
		{"extreme heat", math.Inf(1), IconSunny},
		{"extreme cold", math.Inf(-1), IconSnow},
		{"nan", math.NaN(), IconSnow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ByTemperature(tt.celsius); got != tt.want {
				t.Errorf("ByTemperature(%v) = %q, want %q", tt.celsius, got, tt.want)
			}
		})
	}
}

// TestByTemperature_Total sweeps a wide range and checks every result is one of the four icons.
func TestByTemperature_Total(t *testing.T) {
	valid := map[Icon]bool{IconSunny: true, IconPartlyCloudy: true, IconRainy: true, IconSnow: true}
	for c := -80.0; c <= 60.0; c += 0.25 {
		if got := ByTemperature(c); !valid[got] {
			t.Fatalf("ByTemperature(%v) = %q, not a known icon", c, got)
		}
	}
}

func TestByWeatherCode(t *testing.T) {
	want := map[int]string{
		0:  LabelSunny,
		1:  LabelPartlyCloudy,
		2:  LabelPartlyCloudy,
		3:  LabelCloudy,
		4:  LabelCloudy,
		5:  LabelRainy,
		6:  LabelRainy,
		7:  LabelRainy,
		8:  LabelRainy,
		9:  LabelStormy,
		10: LabelStormy,
		11: LabelStormy,
	}
	for code := 0; code <= 11; code++ {
		if got := ByWeatherCode(code); got != want[code] {
			t.Errorf("ByWeatherCode(%d) = %q, want %q", code, got, want[code])
		}
	}

	for _, code := range []int{-1, 12, 45, 95, math.MaxInt32, math.MinInt32} {
		if got := ByWeatherCode(code); got != LabelUnknown {
			t.Errorf("ByWeatherCode(%d) = %q, want %q", code, got, LabelUnknown)
		}
	}
}
