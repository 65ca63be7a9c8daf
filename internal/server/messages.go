package server

import (
	"encoding/json"

	"github.com/tripleset/server/internal/game"
)

// Inbound message types, one JSON document per websocket text frame,
// discriminated by "type".
const (
	msgViewRoom  = "view-room"
	msgJoinRoom  = "join-room"
	msgLeaveRoom = "leave-room"
	msgPickCards = "pick-cards"
	msgStartGame = "start-game"
	msgHeartbeat = "heartbeat"
)

type clientMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`    // view-room: room id
	Name  string `json:"name,omitempty"`  // join-room: display name
	Cards []int  `json:"cards,omitempty"` // pick-cards: three board slot indexes
}

type updatePlayers struct {
	Type    string              `json:"type"`
	Players []game.PlayerUpdate `json:"players"`
	Started bool                `json:"started"`
}

type updateGame struct {
	Type string `json:"type"`
	game.GameUpdate
}

type rejectJoinGame struct {
	Type string `json:"type"`
}

func marshalPlayers(players []game.PlayerUpdate, started bool) []byte {
	frame, _ := json.Marshal(updatePlayers{Type: "update-players", Players: players, Started: started})
	return frame
}

func marshalGame(update game.GameUpdate) []byte {
	frame, _ := json.Marshal(updateGame{Type: "update-game", GameUpdate: update})
	return frame
}

func marshalReject() []byte {
	frame, _ := json.Marshal(rejectJoinGame{Type: "reject-join-game"})
	return frame
}
