package internal

import (
	"fmt"
	"time"

	"friendly-chat/moderation"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const minSecretLength = 16

const (
	BackendLocal    = "local"
	BackendFirebase = "firebase"
)

type Config struct {
	Backend         string        `env:"BACKEND,default=local" validate:"oneof=local firebase"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=2s" validate:"gt=0"`

	CensoredWords   string `env:"CENSORED_WORDS"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`

	// Local backend
	BadgerFilepath    string        `env:"BADGER_FILEPATH,default=./data/badger" validate:"required_if=Backend local"`
	BlobDir           string        `env:"BLOB_DIR,default=./data/blobs" validate:"required_if=Backend local"`
	BlobBaseURL       string        `env:"BLOB_BASE_URL" validate:"omitempty,url"`
	SessionFilepath   string        `env:"SESSION_FILEPATH,default=./data/session"`
	JWTSecret         string        `env:"JWT_SECRET" validate:"required_if=Backend local"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=168h" validate:"gt=0"`

	// Firebase backend
	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID" validate:"required_if=Backend firebase"`
	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseStorageBucket   string `env:"FIREBASE_STORAGE_BUCKET" validate:"required_if=Backend firebase"`
	FirebaseIDToken         string `env:"FIREBASE_ID_TOKEN"`
	FCMDeviceToken          string `env:"FCM_DEVICE_TOKEN"`

	FirestoreEmulatorHost string `env:"FIRESTORE_EMULATOR_HOST"`
	AuthEmulatorHost      string `env:"FIREBASE_AUTH_EMULATOR_HOST"`
	StorageEmulatorHost   string `env:"STORAGE_EMULATOR_HOST"`
}

// LoadConfig reads an optional .env file, then the environment.
// Variables already set in the environment win over the file.
func LoadConfig(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && len(files) > 0 {
		return Config{}, fmt.Errorf("env file: %w", err)
	}
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Backend == BackendLocal && len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("invalid config: JWT_SECRET must have at least %d characters", minSecretLength)
	}
	if _, err := CharacterRune(c.CharReplacement); err != nil {
		return err
	}
	return nil
}

// Emulated reports whether any Firebase emulator is configured.
func (c Config) Emulated() bool {
	return c.FirestoreEmulatorHost != "" || c.AuthEmulatorHost != "" || c.StorageEmulatorHost != ""
}

func (c Config) ModerationWords() []string {
	return moderation.ParseWords(c.CensoredWords)
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
