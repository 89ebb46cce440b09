package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	FirestoreEmulatorHost string `envconfig:"FIRESTORE_EMULATOR_HOST"`
	AuthEmulatorHost      string `envconfig:"FIREBASE_AUTH_EMULATOR_HOST"`
	StorageEmulatorHost   string `envconfig:"STORAGE_EMULATOR_HOST"`
	// Emulators accept any project id starting with demo-
	ProjectID     string `envconfig:"FIREBASE_PROJECT_ID" default:"demo-friendly-chat"`
	StorageBucket string `envconfig:"FIREBASE_STORAGE_BUCKET" default:"demo-friendly-chat.appspot.com"`
	// E2E_COLOURS enables colorized step headers
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

func (c Config) Emulated() bool {
	return c.FirestoreEmulatorHost != "" && c.AuthEmulatorHost != "" && c.StorageEmulatorHost != ""
}
