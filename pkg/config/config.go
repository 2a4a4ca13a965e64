// Package config layers render settings from defaults, an optional .env
// file and RAYTRACER_* / S3_* environment variables. Command line flags are
// applied on top by the binaries.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every setting shared by the window, headless and web binaries
type Config struct {
	Width     int
	Height    int
	Scene     string
	Frames    int
	Workers   int
	Bounces   int
	Seed      uint32
	Headless  bool
	OutputDir string
	Upscale   int
	Port      int

	S3 S3Config
}

// S3Config holds the object storage credentials used to publish renders
type S3Config struct {
	AccessKey string
	SecretKey string
	Endpoint  string
	Region    string
	Bucket    string
}

// Enabled reports whether enough is configured to attempt an upload
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Default returns the built-in settings: the 712x400 window on the default scene
func Default() Config {
	return Config{
		Width:     712,
		Height:    400,
		Scene:     "default",
		Frames:    100,
		Workers:   0,
		Bounces:   5,
		Seed:      0,
		OutputDir: "output",
		Upscale:   1,
		Port:      8080,
		S3: S3Config{
			Region: "us-east-1",
		},
	}
}

// Load returns Default overridden by the environment. Each env file is read
// with godotenv first; files that don't exist are skipped.
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := Default()
	var err error

	cfg.Scene = getEnv("RAYTRACER_SCENE", cfg.Scene)
	cfg.OutputDir = getEnv("RAYTRACER_OUTPUT_DIR", cfg.OutputDir)

	if cfg.Width, err = getEnvInt("RAYTRACER_WIDTH", cfg.Width); err != nil {
		return Config{}, err
	}
	if cfg.Height, err = getEnvInt("RAYTRACER_HEIGHT", cfg.Height); err != nil {
		return Config{}, err
	}
	if cfg.Frames, err = getEnvInt("RAYTRACER_FRAMES", cfg.Frames); err != nil {
		return Config{}, err
	}
	if cfg.Workers, err = getEnvInt("RAYTRACER_WORKERS", cfg.Workers); err != nil {
		return Config{}, err
	}
	if cfg.Bounces, err = getEnvInt("RAYTRACER_BOUNCES", cfg.Bounces); err != nil {
		return Config{}, err
	}
	if cfg.Upscale, err = getEnvInt("RAYTRACER_UPSCALE", cfg.Upscale); err != nil {
		return Config{}, err
	}
	if cfg.Port, err = getEnvInt("RAYTRACER_PORT", cfg.Port); err != nil {
		return Config{}, err
	}
	if cfg.Headless, err = getEnvBool("RAYTRACER_HEADLESS", cfg.Headless); err != nil {
		return Config{}, err
	}

	if cfg.Seed, err = getEnvUint32("RAYTRACER_SEED", cfg.Seed); err != nil {
		return Config{}, err
	}

	cfg.S3 = S3Config{
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		Region:    getEnv("S3_REGION", cfg.S3.Region),
		Bucket:    os.Getenv("S3_BUCKET"),
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the renderer cannot work with
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d: width and height must be positive", c.Width, c.Height)
	}
	if c.Frames <= 0 {
		return fmt.Errorf("invalid frame count %d: must be positive", c.Frames)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid worker count %d: must not be negative", c.Workers)
	}
	if c.Bounces <= 0 {
		return fmt.Errorf("invalid bounce count %d: must be positive", c.Bounces)
	}
	if c.Upscale < 1 {
		return fmt.Errorf("invalid upscale factor %d: must be at least 1", c.Upscale)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// getEnv returns the environment value for key, or fallback when unset
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvUint32(key string, fallback uint32) (uint32, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return uint32(n), nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}
