package console

import "github.com/fatih/color"

var (
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	White  = color.New(color.FgHiWhite).SprintFunc()
)

// TVOC bands in ppb, after the German UBA indoor air guidance.
const (
	TVOCGoodMax     = 220
	TVOCModerateMax = 660
)

// TVOC renders a reading coloured by its air quality band.
func TVOC(ppb uint32) string {
	switch {
	case ppb <= TVOCGoodMax:
		return Green(ppb)
	case ppb <= TVOCModerateMax:
		return Yellow(ppb)
	default:
		return Red(ppb)
	}
}
