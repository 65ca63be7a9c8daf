package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port           string
	SweepInterval  time.Duration
	EmptyRoomGrace time.Duration
	SendBuffer     int
	MsgRate        float64 // inbound frames per second per connection
	MsgBurst       int
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.SweepInterval = time.Duration(getint("SWEEP_INTERVAL_MS", 100)) * time.Millisecond
	c.EmptyRoomGrace = time.Duration(getint("EMPTY_ROOM_GRACE_MS", 300000)) * time.Millisecond
	c.SendBuffer = getint("SEND_BUFFER", 32)
	c.MsgRate = float64(getint("MSG_RATE", 20))
	c.MsgBurst = getint("MSG_BURST", 40)
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
