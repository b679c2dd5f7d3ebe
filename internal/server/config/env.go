package config

import (
	"errors"
	"io/fs"

	"github.com/dmitrijs2005/culturehub/internal/flagx"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// parseEnv overlays environment variables onto config. A dotenv file (-env,
// default ".env") is loaded first when present; variables already set in the
// process environment win over the file. Only variables that are set replace
// the current field values.
func parseEnv(config *Config, args []string) error {
	if err := godotenv.Load(flagx.EnvFilePath(args)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return cleanenv.ReadEnv(config)
}
