package game

import (
	"fmt"
	"strings"
)

// Game is one of the titles the backend analyzes. The zero value is not a
// valid game.
type Game int

const (
	Valorant Game = iota + 1
	Roblox
	Minecraft
	LeagueOfLegends
	CounterStrike2
	Fortnite
)

type info struct {
	name string // display name, also sent as the "game" query parameter
	id   string // normalized identifier used by the event stream
}

var table = map[Game]info{
	Valorant:        {name: "Valorant", id: "valorant"},
	Roblox:          {name: "Roblox", id: "roblox"},
	Minecraft:       {name: "Minecraft", id: "minecraft"},
	LeagueOfLegends: {name: "League of Legends", id: "league_of_legends"},
	CounterStrike2:  {name: "Counter-Strike 2", id: "counter_strike_2"},
	Fortnite:        {name: "Fortnite", id: "fortnite"},
}

// All lists the supported games in display order.
var All = []Game{Valorant, Roblox, Minecraft, LeagueOfLegends, CounterStrike2, Fortnite}

func (g Game) Valid() bool {
	_, ok := table[g]
	return ok
}

func (g Game) String() string {
	if i, ok := table[g]; ok {
		return i.name
	}
	return fmt.Sprintf("Game(%d)", int(g))
}

// ID returns the normalized identifier, e.g. "league_of_legends".
func (g Game) ID() string {
	return table[g].id
}

// Index returns the position of g in All, or -1.
func (g Game) Index() int {
	for i, other := range All {
		if other == g {
			return i
		}
	}
	return -1
}

// Normalize folds a free-form game name to identifier form: lower-case,
// with every run of spaces, dashes, dots and underscores collapsed to a
// single underscore. Leading and trailing separators are dropped.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '-', '.', '_':
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte('_')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Parse accepts a display name or identifier in any casing or separator
// style.
func Parse(s string) (Game, error) {
	id := Normalize(s)
	for _, g := range All {
		if table[g].id == id {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown game %q", s)
}

// Matches reports whether a raw identifier from the backend refers to g.
func (g Game) Matches(raw string) bool {
	return g.Valid() && Normalize(raw) == g.ID()
}
