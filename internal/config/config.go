package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
)

type Config struct {
	LogLevel          string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort        string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis             Redis  `yaml:"redis"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"./matches.db"`
	Game              Game   `yaml:"game"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`

	// PlayerTTL is how long an idle player session is kept. Zero keeps players forever.
	PlayerTTL time.Duration `yaml:"player-ttl" env:"REDIS_PLAYER_TTL" env-default:"24h"`
}

// Game holds the match rules. The defaults are an 8x8 board with one piece of each length 2..5.
type Game struct {
	Rows        int    `yaml:"rows" env:"GAME_ROWS" env-default:"8"`
	Cols        int    `yaml:"cols" env:"GAME_COLS" env-default:"8"`
	Fleet       []int  `yaml:"fleet" env:"GAME_FLEET" env-default:"2,3,4,5"`
	FirstPlayer string `yaml:"first-player" env:"GAME_FIRST_PLAYER" env-default:"p1"`
}

// MustLoad - load all configurations in config.yml file, after an optional .env next to it.
func MustLoad(path, envPath string) *Config {
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Errorf("unable to load env file: %w", err))
	}

	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if err := config.Game.Rules().Validate(); err != nil {
		panic(fmt.Errorf("invalid game config: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Game) Rules() battleship.Rules {
	return battleship.Rules{
		Rows:        that.Rows,
		Cols:        that.Cols,
		Fleet:       append([]int(nil), that.Fleet...),
		FirstPlayer: battleship.Player(that.FirstPlayer),
	}
}
