package gameserver

import "time"

type Config struct {
	Addr           string  `env:"ADDR" envDefault:":8080"`
	APIToken       string  `env:"API_TOKEN"`
	MaxBodyBytes   int64   `env:"MAX_BODY_BYTES" envDefault:"4096"`
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
	// must exceed the oracle timeout or the fail-closed 500 is never written
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
}

const (
	readHeaderTimeout   = 5 * time.Second
	readTimeout         = 10 * time.Second
	defaultWriteTimeout = 15 * time.Second
	shutdownTimeout     = 5 * time.Second
	readyTimeout        = 2 * time.Second

	limiterTTL   = 5 * time.Minute
	limiterSweep = time.Minute
)
