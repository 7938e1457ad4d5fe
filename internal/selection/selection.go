package selection

import (
	"fmt"

	"github.com/marcin-skalski/patchwatch/internal/game"
)

type Mode int

const (
	Latest Mode = iota
	Archive
)

func (m Mode) String() string {
	switch m {
	case Latest:
		return "latest"
	case Archive:
		return "archive"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Selection fully determines what should be fetched and displayed.
// ArchiveKey is only meaningful in Archive mode.
type Selection struct {
	Game       game.Game
	Mode       Mode
	ArchiveKey string
}

// Browsing reports the ArchiveBrowsing state: archive mode, no entry open.
func (s Selection) Browsing() bool {
	return s.Mode == Archive && s.ArchiveKey == ""
}

// Viewing reports the ArchiveViewing state.
func (s Selection) Viewing() bool {
	return s.Mode == Archive && s.ArchiveKey != ""
}

func (s Selection) String() string {
	switch {
	case s.Viewing():
		return fmt.Sprintf("ArchiveViewing(%s, %s)", s.Game, s.ArchiveKey)
	case s.Browsing():
		return fmt.Sprintf("ArchiveBrowsing(%s)", s.Game)
	default:
		return fmt.Sprintf("Latest(%s)", s.Game)
	}
}

// Machine is the view-mode state machine. Transitions never perform I/O;
// each returns the new Selection for the caller to hand to the fetch
// orchestrator.
type Machine struct {
	cur Selection
}

func New(g game.Game) *Machine {
	return &Machine{cur: Selection{Game: g, Mode: Latest}}
}

func (m *Machine) Current() Selection {
	return m.cur
}

// SelectGame keeps the mode. An open archive entry belongs to the old
// game, so it is dropped.
func (m *Machine) SelectGame(g game.Game) Selection {
	m.cur.Game = g
	m.cur.ArchiveKey = ""
	return m.cur
}

func (m *Machine) SelectMode(mode Mode) Selection {
	m.cur.Mode = mode
	m.cur.ArchiveKey = ""
	return m.cur
}

// SelectArchiveKey opens an archive entry. An empty key goes back to
// browsing. Outside archive mode the call changes nothing.
func (m *Machine) SelectArchiveKey(key string) Selection {
	if m.cur.Mode != Archive {
		return m.cur
	}
	m.cur.ArchiveKey = key
	return m.cur
}

// NextGame and PrevGame step through game.All, wrapping around.
func (m *Machine) NextGame() Selection {
	return m.SelectGame(step(m.cur.Game, 1))
}

func (m *Machine) PrevGame() Selection {
	return m.SelectGame(step(m.cur.Game, -1))
}

func step(g game.Game, delta int) game.Game {
	n := len(game.All)
	i := g.Index()
	if i < 0 {
		return game.All[0]
	}
	return game.All[((i+delta)%n+n)%n]
}
