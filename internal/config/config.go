package config

import (
	"fmt"
	"time"
)

// This file defines the configuration structures used by viper_config.go.
// The actual loading is handled by viper in viper_config.go.

// ServerConfig is the top-level configuration for the impostor server.
type ServerConfig struct {
	Server ServerSettings `yaml:"server"`
	Game   GameSettings   `yaml:"game"`
	Redis  RedisSettings  `yaml:"redis"`
}

// ServerSettings contains server-wide settings
type ServerSettings struct {
	Port            string        `yaml:"port" envconfig:"PORT" required:"true"`
	Host            string        `yaml:"host" envconfig:"HOST" required:"true"`
	PublicURL       string        `yaml:"publicUrl" envconfig:"PUBLIC_URL"` // Base URL embedded in QR join links
	ReadTimeout     time.Duration `yaml:"readTimeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idleTimeout" envconfig:"IDLE_TIMEOUT" default:"0s"` // 0 for long-lived websockets
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// Rate limiting (using golang.org/x/time/rate)
	RateLimit      float64 `yaml:"rateLimit" envconfig:"RATE_LIMIT" default:"10"`            // requests per second
	RateLimitBurst int     `yaml:"rateLimitBurst" envconfig:"RATE_LIMIT_BURST" default:"20"` // burst size

	// Request limits
	MaxRequestSize int64 `yaml:"maxRequestSize" envconfig:"MAX_REQUEST_SIZE" default:"1048576"` // 1MB
}

// GameSettings contains the room and round pacing rules.
type GameSettings struct {
	MinPlayers     int           `yaml:"minPlayers"`     // required to start a game
	MaxPlayers     int           `yaml:"maxPlayers"`     // room capacity
	RoomCodeLength int           `yaml:"roomCodeLength"` // characters of the join code
	CommentPhase   time.Duration `yaml:"commentPhase"`   // time allotted for clue comments
	VotePhase      time.Duration `yaml:"votePhase"`      // time allotted for voting
	StartDelay     time.Duration `yaml:"startDelay"`     // pause between game start and the first comment phase
	NextRoundDelay time.Duration `yaml:"nextRoundDelay"` // pause before the next round begins
}

// RedisSettings selects the room/subject store backend. An empty Addr
// keeps everything in memory.
type RedisSettings struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Port:            "", // Must be set via env
			Host:            "", // Must be set via env
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     0,
			ShutdownTimeout: 30 * time.Second,

			RateLimit:      10,
			RateLimitBurst: 20,

			MaxRequestSize: 1048576, // 1MB
		},
		Game: GameSettings{
			MinPlayers:     3,
			MaxPlayers:     6,
			RoomCodeLength: 6,
			CommentPhase:   30 * time.Second,
			VotePhase:      30 * time.Second,
			StartDelay:     1 * time.Second,
			NextRoundDelay: 2 * time.Second,
		},
	}
}

// Validate checks if the configuration is valid
func (c *ServerConfig) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT environment variable must be set")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HOST environment variable must be set")
	}

	if c.Game.MinPlayers < 3 {
		return fmt.Errorf("minPlayers must be at least 3")
	}
	if c.Game.MinPlayers > c.Game.MaxPlayers {
		return fmt.Errorf("minPlayers cannot be greater than maxPlayers")
	}
	if c.Game.RoomCodeLength < 3 {
		return fmt.Errorf("roomCodeLength must be at least 3")
	}
	if c.Game.CommentPhase <= 0 {
		return fmt.Errorf("commentPhase must be positive")
	}
	if c.Game.VotePhase <= 0 {
		return fmt.Errorf("votePhase must be positive")
	}
	if c.Game.NextRoundDelay < 0 || c.Game.StartDelay < 0 {
		return fmt.Errorf("phase delays cannot be negative")
	}

	return nil
}
