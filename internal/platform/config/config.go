package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	// ConsensusMinWitnesses is the number of distinct witnesses with
	// byte-identical results required to verify a station.
	ConsensusMinWitnesses int
	// RecoveryInterval is the period of the pending-station recovery
	// sweep; RecoveryStaleness skips stations recomputed more recently
	// than this window.
	RecoveryInterval  time.Duration
	RecoveryStaleness time.Duration

	EnableRecoverySweep    bool
	EnableTallyBroadcaster bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "oya-consensus"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		ConsensusMinWitnesses: envInt("CONSENSUS_MIN_WITNESSES", 3),
		RecoveryInterval:      envDuration("RECOVERY_INTERVAL", 10*time.Second),
		RecoveryStaleness:     envDuration("RECOVERY_STALENESS", 30*time.Second),

		EnableRecoverySweep:    envBool("ENABLE_RECOVERY_SWEEP", true),
		EnableTallyBroadcaster: envBool("ENABLE_TALLY_BROADCASTER", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
