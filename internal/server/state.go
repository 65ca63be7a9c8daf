package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tripleset/server/internal/game"
)

var (
	ErrNotInRoom      = errors.New("client is not in a room")
	ErrNotPlayer      = errors.New("client is not a player of this room")
	ErrAlreadyStarted = errors.New("game already started")
	ErrNameTaken      = errors.New("name already taken in this room")
	ErrNoFreeSlot     = errors.New("no disconnected player slot with this name")
	ErrNotStarted     = errors.New("game has not started")
	ErrOnCooldown     = errors.New("pick cooldown has not elapsed")
)

// State is the coordinator: the client table and the room table behind one
// critical section that serializes every operation against them. Two picks
// on the same room never interleave, and a sweep never overlaps a join or
// pick. Methods only enqueue outbound frames; they never block on I/O while
// holding the lock.
type State struct {
	mu      sync.Mutex
	clients map[string]*Client
	rooms   map[string]*game.Room

	emptyRoomGrace time.Duration
}

func NewState(emptyRoomGrace time.Duration) *State {
	return &State{
		clients:        make(map[string]*Client),
		rooms:          make(map[string]*game.Room),
		emptyRoomGrace: emptyRoomGrace,
	}
}

// Register adds a client entry for a fresh connection.
func (s *State) Register(sendBuffer int) *Client {
	c := &Client{ID: uuid.NewString(), send: make(chan []byte, sendBuffer)}
	s.mu.Lock()
	s.clients[c.ID] = c
	s.mu.Unlock()
	return c
}

// ViewRoom attaches the client to a room as a spectator, creating the room
// on first view, and sends it the current roster.
func (s *State) ViewRoom(clientID, roomID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewRoomLocked(clientID, roomID, now)
}

func (s *State) viewRoomLocked(clientID, roomID string, now time.Time) {
	c := s.clients[clientID]
	if c == nil {
		return
	}
	// Switching rooms must not leave a ghost viewer behind: it would keep
	// the old room's empty-grace countdown from ever arming.
	if c.RoomID != "" && c.RoomID != roomID {
		prevID := c.RoomID
		s.detachLocked(c)
		if prev := s.rooms[prevID]; prev != nil {
			prev.CheckEmpty(now, s.emptyRoomGrace)
			s.broadcastPlayersLocked(prev, now, true, true)
		}
	}
	r := s.rooms[roomID]
	if r == nil {
		r = game.NewRoom(roomID)
		s.rooms[roomID] = r
		log.Info().Str("room", roomID).Msg("room created")
	}
	r.Viewers = append(r.Viewers, clientID)
	r.CheckEmpty(now, s.emptyRoomGrace)
	c.RoomID = roomID
	c.trySend(marshalPlayers(r.PlayerUpdates(now), r.Started))
}

// JoinRoom promotes a viewing client to a player. Before the game starts a
// join claims a fresh name; after it starts a join can only rebind a
// disconnected player slot carrying the same name. A failed join sends the
// client a rejection notice and changes nothing.
func (s *State) JoinRoom(clientID, name string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.clients[clientID]
	if c == nil || c.RoomID == "" {
		return ErrNotInRoom
	}
	r := s.rooms[c.RoomID]
	if r == nil {
		return ErrNotInRoom
	}
	c.Name = name

	if r.Started {
		rebound := -1
		for i := range r.Players {
			if r.Players[i].ClientID == "" && r.Players[i].Name == name {
				rebound = i
				break
			}
		}
		if rebound < 0 {
			c.trySend(marshalReject())
			return ErrNoFreeSlot
		}
		r.Players[rebound].ClientID = clientID
		r.RemoveViewer(clientID)
		r.CheckEmpty(now, s.emptyRoomGrace)
		c.trySend(marshalGame(r.GameSnapshot(now)))
		s.broadcastPlayersLocked(r, now, true, true)
		return nil
	}

	for i := range r.Players {
		if r.Players[i].Name == name {
			c.trySend(marshalReject())
			return ErrNameTaken
		}
	}
	r.RemoveViewer(clientID)
	r.AddPlayer(game.Player{ClientID: clientID, Name: name})
	s.broadcastPlayersLocked(r, now, true, true)
	return nil
}

// LeaveRoom gives up the client's player binding but keeps it watching the
// same room as a viewer.
func (s *State) LeaveRoom(clientID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.clients[clientID]
	if c == nil || c.RoomID == "" {
		return
	}
	roomID := c.RoomID
	s.detachLocked(c)
	s.viewRoomLocked(clientID, roomID, now)

	r := s.rooms[roomID]
	r.CheckEmpty(now, s.emptyRoomGrace)
	s.broadcastPlayersLocked(r, now, true, true)
}

// Disconnect removes the client entirely. Its player slot, if any, stays in
// the room unbound so the same name can rejoin later.
func (s *State) Disconnect(clientID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.clients[clientID]
	if c == nil {
		return
	}
	if c.RoomID != "" {
		roomID := c.RoomID
		s.detachLocked(c)
		if r := s.rooms[roomID]; r != nil {
			r.CheckEmpty(now, s.emptyRoomGrace)
			s.broadcastPlayersLocked(r, now, true, true)
		}
	}
	delete(s.clients, clientID)
	close(c.send)
}

func (s *State) detachLocked(c *Client) {
	if r := s.rooms[c.RoomID]; r != nil {
		r.RemoveClient(c.ID)
	}
	c.RoomID = ""
}

// StartGame shuffles a fresh deck and deals the opening board. Only a
// player of the room may start it, and only when the room has not started
// yet or the previous game is over.
func (s *State) StartGame(clientID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.clients[clientID]
	if c == nil || c.RoomID == "" {
		return ErrNotInRoom
	}
	r := s.rooms[c.RoomID]
	if r == nil {
		return ErrNotInRoom
	}
	if r.PlayerIndex(clientID) < 0 {
		return ErrNotPlayer
	}
	if r.Started && !r.GameOver {
		return ErrAlreadyStarted
	}
	r.Start(now)
	log.Info().Str("room", r.ID).Int("players", len(r.Players)).Msg("game started")

	s.broadcastGameLocked(r, now)
	s.broadcastPlayersLocked(r, now, false, true)
	return nil
}

// PickCards enforces the wrong-pick cooldown at this boundary, lets the
// room resolve the attempt and broadcasts the result to its players.
func (s *State) PickCards(clientID string, slots [3]int, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.clients[clientID]
	if c == nil || c.RoomID == "" {
		return ErrNotInRoom
	}
	r := s.rooms[c.RoomID]
	if r == nil {
		return ErrNotInRoom
	}
	idx := r.PlayerIndex(clientID)
	if idx < 0 {
		return ErrNotPlayer
	}
	if !r.Started {
		return ErrNotStarted
	}
	if now.Before(r.Players[idx].Timeout) {
		return ErrOnCooldown
	}
	r.PickCards(clientID, slots, now)
	s.broadcastGameLocked(r, now)
	return nil
}

// Sweep runs one sweeper pass over every room: expire pick records, refill
// boards, broadcast rooms whose visible state changed, and reclaim rooms
// whose empty-grace deadline has passed.
func (s *State) Sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.rooms {
		if r.Sweep(now) {
			s.broadcastGameLocked(r, now)
		}
		if !r.DeleteTime.IsZero() && now.After(r.DeleteTime) {
			delete(s.rooms, id)
			log.Info().Str("room", id).Msg("empty room deleted")
		}
	}
}

// broadcastPlayersLocked sends the roster snapshot to the room's connected
// players and/or viewers. Callers hold mu; sends are non-blocking enqueues.
func (s *State) broadcastPlayersLocked(r *game.Room, now time.Time, toPlayers, toViewers bool) {
	frame := marshalPlayers(r.PlayerUpdates(now), r.Started)
	if toPlayers {
		for i := range r.Players {
			if id := r.Players[i].ClientID; id != "" {
				if c := s.clients[id]; c != nil {
					c.trySend(frame)
				}
			}
		}
	}
	if toViewers {
		for _, id := range r.Viewers {
			if c := s.clients[id]; c != nil {
				c.trySend(frame)
			}
		}
	}
}

// broadcastGameLocked sends the game snapshot to the room's connected
// players. Callers hold mu.
func (s *State) broadcastGameLocked(r *game.Room, now time.Time) {
	frame := marshalGame(r.GameSnapshot(now))
	for i := range r.Players {
		if id := r.Players[i].ClientID; id != "" {
			if c := s.clients[id]; c != nil {
				c.trySend(frame)
			}
		}
	}
}
