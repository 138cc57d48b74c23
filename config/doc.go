// Package config loads hookhttp configuration structs from YAML files and
// environment variables (viper + godotenv). Any struct with ApplyDefaults
// and Validate can be loaded; see hookhttp.Config and logger.Config.
package config
