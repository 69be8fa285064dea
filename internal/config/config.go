package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. QUIZ_REDIS_ADDR.
const EnvPrefix = "QUIZ"

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Rooms struct {
		TTL  string `yaml:"ttl"`
		File string `yaml:"file"`
	} `yaml:"rooms"`
	Game struct {
		StartDelay      string `yaml:"startDelay"`
		Intermission    string `yaml:"intermission"`
		Grace           string `yaml:"grace"`
		MinQuestion     string `yaml:"minQuestion"`
		MaxQuestion     string `yaml:"maxQuestion"`
		DefaultQuestion string `yaml:"defaultQuestion"`
		NameMaxLength   int    `yaml:"nameMaxLength"`
		NameProbes      int    `yaml:"nameProbes"`
	} `yaml:"game"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Default returns the configuration used when neither file nor env sets a value.
func Default() Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Redis.TTL = "10m"
	cfg.Rooms.TTL = "30s"
	cfg.Game.StartDelay = "3s"
	cfg.Game.Intermission = "5s"
	cfg.Game.Grace = "300ms"
	cfg.Game.MinQuestion = "5s"
	cfg.Game.MaxQuestion = "120s"
	cfg.Game.DefaultQuestion = "20s"
	cfg.Game.NameMaxLength = 24
	cfg.Game.NameProbes = 50
	cfg.Log.Level = "info"
	return cfg
}

// Load reads YAML config from path on top of the defaults, then applies
// QUIZ_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}
	applyEnv(&cfg, newEnv())
	return cfg, nil
}

func newEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func applyEnv(cfg *Config, v *viper.Viper) {
	strs := map[string]*string{
		"server.port":          &cfg.Server.Port,
		"redis.addr":           &cfg.Redis.Addr,
		"redis.password":       &cfg.Redis.Password,
		"redis.ttl":            &cfg.Redis.TTL,
		"postgres.url":         &cfg.Postgres.URL,
		"rooms.ttl":            &cfg.Rooms.TTL,
		"rooms.file":           &cfg.Rooms.File,
		"game.startdelay":      &cfg.Game.StartDelay,
		"game.intermission":    &cfg.Game.Intermission,
		"game.grace":           &cfg.Game.Grace,
		"game.minquestion":     &cfg.Game.MinQuestion,
		"game.maxquestion":     &cfg.Game.MaxQuestion,
		"game.defaultquestion": &cfg.Game.DefaultQuestion,
		"log.level":            &cfg.Log.Level,
	}
	for key, dst := range strs {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	ints := map[string]*int{
		"redis.db":           &cfg.Redis.DB,
		"game.namemaxlength": &cfg.Game.NameMaxLength,
		"game.nameprobes":    &cfg.Game.NameProbes,
	}
	for key, dst := range ints {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}

	_ = v.BindEnv("log.pretty")
	if v.IsSet("log.pretty") {
		cfg.Log.Pretty = v.GetBool("log.pretty")
	}
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
