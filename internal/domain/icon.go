package domain

import "strings"

// Icon identifies an entry in the fixed icon table.
type Icon string

const (
	IconRun      Icon = "run"
	IconWalk     Icon = "walk"
	IconBike     Icon = "bike"
	IconGym      Icon = "gym"
	IconYoga     Icon = "yoga"
	IconHiking   Icon = "hiking"
	IconRacket   Icon = "racket"
	IconStanding Icon = "standing"
	IconDefault  Icon = "default"
)

var iconSynonyms = map[string]Icon{
	"correr":  IconRun,
	"running": IconRun,
	"run":     IconRun,

	"andar":          IconWalk,
	"caminar":        IconWalk,
	"walk":           IconWalk,
	"cinta":          IconWalk,
	"cinta de andar": IconWalk,

	"bicicleta": IconBike,
	"bici":      IconBike,
	"ciclismo":  IconBike,
	"spinning":  IconBike,
	"eliptica":  IconBike,
	"elíptica":  IconBike,

	"gimnasio":      IconGym,
	"gym":           IconGym,
	"weightlifting": IconGym,
	"lift":          IconGym,
	"musculacion":   IconGym,
	"musculación":   IconGym,

	"yoga": IconYoga,

	"senderismo": IconHiking,
	"hiking":     IconHiking,
	"trekking":   IconHiking,

	"tenis":     IconRacket,
	"padel":     IconRacket,
	"pádel":     IconRacket,
	"badminton": IconRacket,
	"squash":    IconRacket,
}

// ResolveIcon maps a free-text activity name to its icon. Unknown names get IconDefault.
func ResolveIcon(name string) Icon {
	key := strings.ToLower(strings.TrimSpace(name))
	if icon, ok := iconSynonyms[key]; ok {
		return icon
	}
	return IconDefault
}
