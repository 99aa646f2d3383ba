package config

import "github.com/joho/godotenv"

// LoadDotEnv exports the variables in the given .env files (default ".env")
// into the process environment without overriding variables already set.
// Local development uses it; deployments inject the environment directly.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}
