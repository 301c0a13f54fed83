package env

import (
	"os"

	"github.com/joho/godotenv"
)

// vars holds the key/value pairs read from the .env file at startup
var vars map[string]string

// GetEnv returns the configured value for key, preferring the loaded .env
// file over the process environment. def applies when neither is set.
func GetEnv(key, def string) string {
	if v, ok := vars[key]; ok {
		return v
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// SetupEnvFile loads the first .env file it finds, trying the working
// directory and then the repo root relative to a cmd/* binary.
func SetupEnvFile() {
	for _, candidate := range []string{".env", "../../.env", "../../../.env"} {
		if m, err := godotenv.Read(candidate); err == nil {
			vars = m
			return
		}
	}
	panic("no .env file found; copy .env.example to .env")
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
