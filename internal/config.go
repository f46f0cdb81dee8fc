package internal

import (
	"fmt"
	"letter-lab/services"
	"strings"
	"time"

	"github.com/samber/lo"
)

type Config struct {
	Host              string        `env:"HOST,default=0.0.0.0"`
	Port              int           `env:"PORT,default=3000"`
	BaseURL           string        `env:"BASE_URL,default=http://localhost:3000"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	StatsFilepath     string        `env:"STATS_FILEPATH"`
	StatsBufferSize   int           `env:"STATS_BUFFER_SIZE,default=1024"`
	MetricInterval    time.Duration `env:"METRIC_INTERVAL,default=15s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT,default=5s"`
	CensoredWords     string        `env:"CENSORED_WORDS"`
	CharReplacement   string        `env:"CHARACTER_REPLACEMENT,default=*"`
	MaxToLength       int           `env:"MAX_TO_LENGTH,default=50"`
	MaxFromLength     int           `env:"MAX_FROM_LENGTH,default=50"`
	MaxMessageLength  int           `env:"MAX_MESSAGE_LENGTH,default=2000"`
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) Limits() services.Limits {
	return services.Limits{
		MaxTo:      c.MaxToLength,
		MaxFrom:    c.MaxFromLength,
		MaxMessage: c.MaxMessageLength,
	}
}

// Words splits CENSORED_WORDS on commas, ignoring blanks.
func (c Config) Words() []string {
	words := lo.Map(strings.Split(c.CensoredWords, ","), func(w string, _ int) string {
		return strings.TrimSpace(w)
	})
	return lo.Compact(words)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
