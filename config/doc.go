// Package config loads service configuration with Viper.
//
// LoadConfig layers, lowest precedence first: the YAML file found next to the
// service's main package (./cmd/<service>/config.yml), a .env file loaded with
// godotenv, and the process environment. Environment keys map onto nested
// config keys by replacing underscores with dots, so SERVER_PORT sets
// server.port and DEEPGRAM_API_KEY sets deepgram.api_key.
package config
