package server

import "github.com/rs/zerolog/log"

// Client is one live connection as the coordinator sees it. Rooms reference
// clients by id only and clients reference rooms by id only; both sides are
// resolved through the owning tables, never held directly. send is the sole
// path back to the socket, so no lock is ever held across a network write.
type Client struct {
	ID     string
	RoomID string
	Name   string

	send chan []byte
}

// trySend queues a frame without blocking. A slow consumer loses frames
// rather than stalling everyone behind the coordinator lock.
func (c *Client) trySend(frame []byte) {
	select {
	case c.send <- frame:
	default:
		log.Warn().Str("client", c.ID).Msg("send buffer full, dropping frame")
	}
}
