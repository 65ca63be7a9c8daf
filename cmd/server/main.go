package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/tripleset/server/internal/config"
	"github.com/tripleset/server/internal/server"
	staticserver "github.com/tripleset/server/static"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Tripleset - realtime multiplayer pattern-matching card game server

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT                  Port to listen on (default: 8080)
  SWEEP_INTERVAL_MS     Cadence of the room sweeper (default: 100)
  EMPTY_ROOM_GRACE_MS   How long an empty room is kept (default: 300000)
  SEND_BUFFER           Outbound frames buffered per connection (default: 32)
  MSG_RATE              Inbound frames per second per connection (default: 20)
  MSG_BURST             Inbound frame burst per connection (default: 40)

Clients connect via websocket at /ws.
`, os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Tripleset %s\n", version)
		return
	}

	_ = godotenv.Load()
	cfg := config.FromEnv()

	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	// Gin setup with custom logger (skip websocket noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/ws") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Coordinator + websocket hub
	state := server.NewState(cfg.EmptyRoomGrace)
	hub := server.NewHub(state, cfg)
	hub.Mount(r)

	// Background sweeper: expires picks, refills boards, reclaims rooms
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.RunSweeper(ctx, state, cfg.SweepInterval)

	// Serve the embedded landing page for all other routes
	r.NoRoute(func(c *gin.Context) {
		staticserver.Handler().ServeHTTP(c.Writer, c.Request)
	})

	log.Printf("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
