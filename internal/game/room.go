package game

import (
	"math/rand"
	"time"

	"github.com/tripleset/server/internal/card"
)

// Room owns one game: the 12-slot board, the undealt deck, the roster of
// players and viewers, and the recent pick history. A Room is not safe for
// concurrent use; the coordinator serializes all access to it.
type Room struct {
	ID      string
	Viewers []string // client ids watching without a player slot
	Players []Player

	Started   bool
	StartTime time.Time

	CardsLeft []card.Card  // undealt deck, dealt from the end
	Cards     []*card.Card // board slots, nil = empty

	Correct []PickRecord
	Wrong   []PickRecord

	GameOver bool

	// DeleteTime is set while the room has no viewers and no connected
	// players; zero otherwise.
	DeleteTime time.Time

	rng *rand.Rand
}

func NewRoom(id string) *Room {
	return &Room{
		ID:  id,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// PlayerIndex returns the index of the player bound to the given client, or
// -1 if the client holds no player slot here.
func (r *Room) PlayerIndex(clientID string) int {
	if clientID == "" {
		return -1
	}
	for i := range r.Players {
		if r.Players[i].ClientID == clientID {
			return i
		}
	}
	return -1
}

// AddPlayer appends a player to the roster. Players are never removed while
// the room exists, only unbound from their client.
func (r *Room) AddPlayer(p Player) {
	r.Players = append(r.Players, p)
	r.DeleteTime = time.Time{}
}

// RemoveClient unbinds the client from its player slot (if any) and drops
// it from the viewer list.
func (r *Room) RemoveClient(clientID string) {
	for i := range r.Players {
		if r.Players[i].ClientID == clientID {
			r.Players[i].ClientID = ""
		}
	}
	r.RemoveViewer(clientID)
}

// RemoveViewer drops the client from the viewer list.
func (r *Room) RemoveViewer(clientID string) {
	kept := r.Viewers[:0]
	for _, id := range r.Viewers {
		if id != clientID {
			kept = append(kept, id)
		}
	}
	r.Viewers = kept
}

// CheckEmpty starts the deletion countdown when nobody is attached to the
// room anymore, and clears it otherwise.
func (r *Room) CheckEmpty(now time.Time, grace time.Duration) {
	if len(r.Viewers) > 0 {
		r.DeleteTime = time.Time{}
		return
	}
	for i := range r.Players {
		if r.Players[i].ClientID != "" {
			r.DeleteTime = time.Time{}
			return
		}
	}
	if r.DeleteTime.IsZero() {
		r.DeleteTime = now.Add(grace)
	}
}

// Start begins a new game: full shuffled deck, cleared 12-slot board, and
// an opening deal. The start instant clients count down to is a short
// lead-in from now.
func (r *Room) Start(now time.Time) {
	r.Started = true
	r.StartTime = now.Add(startLeadIn)
	r.GameOver = false

	ids := r.rng.Perm(card.DeckSize)
	r.CardsLeft = make([]card.Card, 0, card.DeckSize)
	for _, id := range ids {
		r.CardsLeft = append(r.CardsLeft, card.Decode(id))
	}
	r.Cards = make([]*card.Card, BoardSize)
	r.Correct = nil
	r.Wrong = nil
	r.AddCards()
}

// AddCards refills empty board slots from the deck while keeping the board
// solvable: as long as the deck has more cards than there are empty slots,
// the dealt board is guaranteed to contain at least one valid triple. When
// the deck can no longer support that guarantee, whatever remains is dealt
// and the game ends if no triple exists.
func (r *Room) AddCards() {
	var missing []int
	for i, c := range r.Cards {
		if c == nil {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return
	}

	if len(r.CardsLeft) <= len(missing) {
		for _, i := range missing {
			if len(r.CardsLeft) == 0 {
				break
			}
			r.Cards[i] = r.draw()
		}
		r.GameOver = !r.hasSolution()
		return
	}

	// One empty slot is designated up front: if the plain deal turns out
	// unsolvable, this slot gets replaced with a synthesized card.
	replace := missing[r.rng.Intn(len(missing))]

	for _, i := range missing {
		r.Cards[i] = r.draw()
	}
	if r.hasSolution() {
		return
	}

	// Force a solution: pick two other slots uniformly (shifting indexes
	// past the excluded positions keeps the pair choice uniform) and
	// overwrite the designated slot with their completing card.
	i1 := r.rng.Intn(BoardSize - 1)
	if i1 >= replace {
		i1++
	}
	i2 := r.rng.Intn(BoardSize - 2)
	if i2 >= min(replace, i1) {
		i2++
	}
	if i2 >= max(replace, i1) {
		i2++
	}

	third := card.ThirdCard(*r.Cards[i1], *r.Cards[i2])
	c := card.Decode(third)
	r.Cards[replace] = &c

	// The synthesized card must not be dealt a second time later.
	for i := range r.CardsLeft {
		if r.CardsLeft[i].ID == third {
			r.CardsLeft = append(r.CardsLeft[:i], r.CardsLeft[i+1:]...)
			break
		}
	}
}

func (r *Room) draw() *card.Card {
	c := r.CardsLeft[len(r.CardsLeft)-1]
	r.CardsLeft = r.CardsLeft[:len(r.CardsLeft)-1]
	return &c
}

// hasSolution reports whether any two occupied slots complete to a card
// that is also on the board.
func (r *Room) hasSolution() bool {
	ids := make(map[int]struct{}, len(r.Cards))
	for _, c := range r.Cards {
		if c != nil {
			ids[c.ID] = struct{}{}
		}
	}

	for i, ci := range r.Cards {
		if ci == nil {
			continue
		}
		for _, cj := range r.Cards[i+1:] {
			if cj == nil {
				continue
			}
			if _, ok := ids[card.ThirdCard(*ci, *cj)]; ok {
				return true
			}
		}
	}
	return false
}

// PickCards resolves one pick attempt. Picks from unknown clients, with
// out-of-range, duplicate or empty slots, are dropped without touching
// state. A correct pick overlapping an unexpired earlier claim is dropped
// too: the first claim on a card set wins.
func (r *Room) PickCards(clientID string, slots [3]int, now time.Time) {
	pi := r.PlayerIndex(clientID)
	if pi < 0 {
		return
	}
	for i, s := range slots {
		if s < 0 || s >= len(r.Cards) || r.Cards[s] == nil {
			return
		}
		for _, prev := range slots[:i] {
			if s == prev {
				return
			}
		}
	}

	if card.IsMatch(*r.Cards[slots[0]], *r.Cards[slots[1]], *r.Cards[slots[2]]) {
		for _, pick := range r.Correct {
			for _, s := range slots {
				if pick.Slots[0] == s || pick.Slots[1] == s || pick.Slots[2] == s {
					return
				}
			}
		}
		r.Correct = append(r.Correct, PickRecord{Player: pi, Slots: slots, Expire: now.Add(pickExpiry)})
		r.Players[pi].Score++
		return
	}

	r.Wrong = append(r.Wrong, PickRecord{Player: pi, Slots: slots, Expire: now.Add(pickExpiry)})
	r.Players[pi].MinusScore++
	r.Players[pi].Timeout = now.Add(wrongTimeout)
}

// Sweep drops expired pick records, clears the board slots behind expired
// correct picks and refills the board. It reports whether anything a client
// can see changed, so callers can decide whether to broadcast.
func (r *Room) Sweep(now time.Time) bool {
	changed := false

	kept := r.Wrong[:0]
	for _, p := range r.Wrong {
		if now.Before(p.Expire) {
			kept = append(kept, p)
		} else {
			changed = true
		}
	}
	r.Wrong = kept

	kept = r.Correct[:0]
	for _, p := range r.Correct {
		if now.Before(p.Expire) {
			kept = append(kept, p)
			continue
		}
		changed = true
		for _, s := range p.Slots {
			r.Cards[s] = nil
		}
	}
	r.Correct = kept

	r.AddCards()
	return changed
}

// PlayerUpdates builds the roster snapshot, converting absolute deadlines
// to relative milliseconds at snapshot time.
func (r *Room) PlayerUpdates(now time.Time) []PlayerUpdate {
	updates := make([]PlayerUpdate, 0, len(r.Players))
	for i := range r.Players {
		p := &r.Players[i]
		updates = append(updates, PlayerUpdate{
			Name:       p.Name,
			Score:      p.Score,
			MinusScore: p.MinusScore,
			Timeout:    msUntil(p.Timeout, now),
			Connected:  p.ClientID != "",
		})
	}
	return updates
}

// GameSnapshot builds the full game snapshot for a started room.
func (r *Room) GameSnapshot(now time.Time) GameUpdate {
	cards := make([]*int, len(r.Cards))
	for i, c := range r.Cards {
		if c != nil {
			id := c.ID
			cards[i] = &id
		}
	}
	return GameUpdate{
		Players:   r.PlayerUpdates(now),
		Cards:     cards,
		Wrong:     pickUpdates(r.Wrong, now),
		Correct:   pickUpdates(r.Correct, now),
		GameOver:  r.GameOver,
		StartTime: msUntil(r.StartTime, now),
	}
}

func pickUpdates(records []PickRecord, now time.Time) []PickUpdate {
	updates := make([]PickUpdate, 0, len(records))
	for _, rec := range records {
		updates = append(updates, PickUpdate{
			Player: rec.Player,
			Cards:  rec.Slots,
			Expire: msUntil(rec.Expire, now),
		})
	}
	return updates
}

func msUntil(t, now time.Time) int64 {
	return t.Sub(now).Milliseconds()
}
