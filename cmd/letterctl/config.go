package main

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BaseURL string `envconfig:"LETTER_BASE_URL" default:"http://localhost:3000"`
	// LETTER_COLOURS enables colorized output for better readability
	Colours       bool   `envconfig:"LETTER_COLOURS" default:"true"`
	StatsFilepath string `envconfig:"LETTER_STATS_FILEPATH" default:"./data/stats"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
