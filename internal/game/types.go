package game

import "time"

const (
	// BoardSize is the number of visible board slots once a game runs.
	BoardSize = 12

	// pickExpiry is how long a resolved pick stays visible before its
	// record is swept (and, for correct picks, its slots are cleared).
	pickExpiry = 5000 * time.Millisecond

	// wrongTimeout is the cooldown after a wrong pick during which the
	// player's further picks are rejected.
	wrongTimeout = 10000 * time.Millisecond

	// startLeadIn is the countdown between starting a game and play
	// becoming effective on clients.
	startLeadIn = 3000 * time.Millisecond
)

// Player is a named participant of one room. ClientID is empty while the
// player is disconnected; the slot is kept so the same name can rebind.
type Player struct {
	ClientID   string
	Name       string
	Score      int
	MinusScore int
	// Timeout is the instant until which new picks by this player are
	// disallowed. Enforcement sits at the coordinator boundary.
	Timeout time.Time
}

// PickRecord is one resolved pick attempt, kept until Expire passes.
type PickRecord struct {
	Player int // index into Room.Players
	Slots  [3]int
	Expire time.Time
}

// PlayerUpdate is the wire form of one roster entry. Timeout is
// milliseconds until the player's pick cooldown ends.
type PlayerUpdate struct {
	Name       string `json:"name"`
	Score      int    `json:"score"`
	MinusScore int    `json:"minus_score"`
	Timeout    int64  `json:"timeout"`
	Connected  bool   `json:"connected"`
}

// PickUpdate is the wire form of one pick record. Expire is milliseconds
// until the record disappears.
type PickUpdate struct {
	Player int    `json:"player"`
	Cards  [3]int `json:"cards"`
	Expire int64  `json:"expire"`
}

// GameUpdate is the full game snapshot sent to players of a started room.
// All time fields are relative milliseconds computed at snapshot time.
type GameUpdate struct {
	Players   []PlayerUpdate `json:"players"`
	Cards     []*int         `json:"cards"` // board slots, null = empty
	Wrong     []PickUpdate   `json:"wrong"`
	Correct   []PickUpdate   `json:"correct"`
	GameOver  bool           `json:"game_over"`
	StartTime int64          `json:"start_time"`
}
