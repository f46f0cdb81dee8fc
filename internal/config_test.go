package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	req.Equal(3000, config.Port)
	req.Equal(1024, config.StatsBufferSize)
	req.Equal(200*time.Millisecond, config.RestartInterval)
	req.Equal(50, config.Limits().MaxTo)
	req.Empty(config.Words())
}

func TestConfig_FromEnviron(t *testing.T) {
	req := require.New(t)
	t.Setenv("PORT", "8080")
	t.Setenv("BASE_URL", "https://xmas.example.com")
	t.Setenv("CENSORED_WORDS", " badger, ,바보 ,")
	t.Setenv("MAX_MESSAGE_LENGTH", "300")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	req.Equal("0.0.0.0:8080", config.Address())
	req.Equal("https://xmas.example.com", config.BaseURL)
	req.Equal([]string{"badger", "바보"}, config.Words())
	req.Equal(300, config.Limits().MaxMessage)
}

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("♥")
	req.NoError(err)
	req.Equal('♥', r)

	_, err = CharacterRune("**")
	req.Error(err)
	_, err = CharacterRune("")
	req.Error(err)
}
