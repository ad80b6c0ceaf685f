// Package config loads and validates the service configuration.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix      = "PRODUCT_"
	defaultEnvFile = ".env"
	configFile     = "config.yaml"
	// portEnv is honoured on its own so that PORT=8080 works without the prefix.
	portEnv = "PORT"
)

// Defaults returns the values used when no other source sets a key.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":                        3000,
		"server.maxHeaderBytes":              1 << 20,
		"server.timeout.read":                "5s",
		"server.timeout.write":               "10s",
		"server.timeout.idle":                "60s",
		"server.timeout.readHeader":          "2s",
		"log.level":                          "info",
		"pprof.enabled":                      false,
		"pprof.addr":                         ":6060",
		"grpc.enabled":                       false,
		"grpc.port":                          "50051",
		"grpc.reflection":                    false,
		"shutdown.timeout":                   "10s",
		"cors.allowedOrigins":                []string{"http://localhost:3000", "http://localhost:1234"},
		"catalog.defaultLimit":               5,
		"catalog.seedFile":                   "",
		"nats.enabled":                       false,
		"nats.url":                           "nats://localhost:4222",
		"nats.timeout":                       "5s",
		"nats.stream":                        "PRODUCTS",
		"telemetry.enabled":                  false,
		"telemetry.traces.otlphttp.endpoint": "localhost:4318",
		"telemetry.traces.otlphttp.insecure": true,
		"telemetry.traces.otlphttp.timeout":  "10s",
	}
}

// Load reads the configuration from defaults, a YAML file, a .env file and environment variables,
// in increasing order of priority.
func Load() (*Config, error) {
	return load(configFile, defaultEnvFile)
}

func load(yamlPath, envPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	// 2. Load configuration from yaml file
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: error loading YAML config file '%s': %v", yamlPath, err)
		}
	}

	// 3. Load environment variables from .env file
	if envFileMap, err := godotenv.Read(envPath); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if key == portEnv {
				envMap["server.port"] = value
				continue
			}
			if !strings.HasPrefix(key, envPrefix) {
				continue
			}
			envMap[keyTransformer(key)] = value
		}
		// Load the envMap into Koanf
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 4. The bare PORT variable
	if err := k.Load(env.Provider(portEnv, ".", portTransformer), nil); err != nil {
		log.Printf("WARN: error loading %s env var: %v", portEnv, err)
	}

	// 5. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(envPrefix, ".", keyTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	var cfg Config
	// 6. Unmarshal the configuration into the Config struct
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 7. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// canonicalKeys maps lower-cased keys to their camel-cased form, e.g. server.maxheaderbytes.
var canonicalKeys = func() map[string]string {
	keys := make(map[string]string)
	for key := range Defaults() {
		keys[strings.ToLower(key)] = key
	}
	return keys
}()

// keyTransformer maps PRODUCT_SERVER_MAXHEADERBYTES to server.maxHeaderBytes.
func keyTransformer(key string) string {
	key = strings.TrimPrefix(key, envPrefix)
	key = strings.ReplaceAll(strings.ToLower(key), "_", ".")
	if canonical, ok := canonicalKeys[key]; ok {
		return canonical
	}
	return key
}

// portTransformer keeps only the exact PORT variable; the provider prefix would also match PORTAL etc.
func portTransformer(key string) string {
	if key != portEnv {
		return ""
	}
	return "server.port"
}
