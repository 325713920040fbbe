package calibrate

import "strings"

// Profile is a display technology with known calibration parameters.
type Profile int

const (
	ProfileLCD Profile = iota
	ProfileLEDBacklit
	ProfileOLED
	ProfileQLED
	ProfileEPaper
)

// Parameters are the fixed calibration parameters of a display profile.
type Parameters struct {
	// SaturationFactor is the multiplier applied to the saturation channel.
	// Greater than 1 compensates displays that wash colors out, less than 1
	// compensates displays that oversaturate.
	SaturationFactor float64
	// ColorTemperature is the target white point in Kelvin.
	ColorTemperature float64
}

var profileNames = map[Profile]string{
	ProfileLCD:        "LCD",
	ProfileLEDBacklit: "LED Backlit",
	ProfileOLED:       "OLED",
	ProfileQLED:       "QLED",
	ProfileEPaper:     "E-Paper",
}

// parameters maps every profile to its calibration parameters. All profiles
// currently target the standard 6500K white point; only the saturation
// factor differs per technology.
var parameters = map[Profile]Parameters{
	ProfileLCD:        {SaturationFactor: 1.10, ColorTemperature: 6500},
	ProfileLEDBacklit: {SaturationFactor: 1.15, ColorTemperature: 6500},
	ProfileOLED:       {SaturationFactor: 0.93, ColorTemperature: 6500},
	ProfileQLED:       {SaturationFactor: 0.97, ColorTemperature: 6500},
	ProfileEPaper:     {SaturationFactor: 1.00, ColorTemperature: 6500},
}

// aliases maps normalized (lowercased, trimmed) selectors to profiles,
// including the spelling variants clients are known to send.
var aliases = map[string]Profile{
	"lcd":         ProfileLCD,
	"led backlit": ProfileLEDBacklit,
	"led-backlit": ProfileLEDBacklit,
	"led_backlit": ProfileLEDBacklit,
	"ledbacklit":  ProfileLEDBacklit,
	"led":         ProfileLEDBacklit,
	"oled":        ProfileOLED,
	"qled":        ProfileQLED,
	"e-paper":     ProfileEPaper,
	"e paper":     ProfileEPaper,
	"e_paper":     ProfileEPaper,
	"epaper":      ProfileEPaper,
}

func (p Profile) String() string {
	if name, ok := profileNames[p]; ok {
		return name
	}
	return "unknown"
}

// Parameters returns the calibration parameters of the profile.
func (p Profile) Parameters() Parameters {
	return parameters[p]
}

// ProfileNames returns the canonical names of all known profiles in a
// stable order, suitable for user-facing error messages.
func ProfileNames() []string {
	names := make([]string, 0, len(profileNames))
	for p := ProfileLCD; p <= ProfileEPaper; p++ {
		names = append(names, profileNames[p])
	}
	return names
}

// ResolveProfile resolves a display type selector to a profile. Matching is
// case-insensitive and tolerant of common spacing and hyphenation variants.
func ResolveProfile(displayType string) (Profile, error) {
	key := strings.ToLower(strings.TrimSpace(displayType))
	if p, ok := aliases[key]; ok {
		return p, nil
	}
	return 0, &UnsupportedDisplayTypeError{
		DisplayType: displayType,
		Valid:       ProfileNames(),
	}
}
