// Package config loads settings for the users screen and the reference
// users server from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Client configures the users screen.
type Client struct {
	BaseURL    string `env:"USERS_API_URL" envDefault:"https://67da405935c87309f52ba22e.mockapi.io/users"`
	LogFile    string `env:"USERS_LOG_FILE" envDefault:"users.log"`
	ExportPath string `env:"USERS_EXPORT_PATH" envDefault:"users.xlsx"`
}

// Server configures the reference users collection server.
type Server struct {
	Addr          string `env:"USERSAPI_ADDR" envDefault:":8080"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"8"`
	Seed          bool   `env:"USERSAPI_SEED" envDefault:"true"`
}

// LoadDotenv loads variables from the given .env files (".env" when none
// are named) without overriding ones already set. Missing files are ignored.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
		log.Printf("[env] loaded %s", f)
	}
	return nil
}

// LoadClient reads the screen configuration.
func LoadClient() (Client, error) {
	return parse[Client]()
}

// LoadServer reads the server configuration.
func LoadServer() (Server, error) {
	return parse[Server]()
}

func parse[T any]() (T, error) {
	cfg, err := env.ParseAs[T]()
	if err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
