package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// StoreDriver selects the storage backend: "mongo", "postgres", or
	// "memory" (no persistence, useful for local runs).
	StoreDriver string

	MongoURI    string
	MongoDB     string
	PostgresDSN string

	Port string

	// WriteTimeout bounds a single write request.
	WriteTimeout time.Duration

	// MQTTBroker enables the event bridge when non-empty.
	MQTTBroker      string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return d
}

func LoadConfig() Config {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := Config{
		StoreDriver:     getEnv("STORE_DRIVER", "mongo"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "seren"),
		PostgresDSN:     getEnv("POSTGRES_DSN", ""),
		Port:            getEnv("PORT", "3000"),
		WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 5*time.Second),
		MQTTBroker:      getEnv("MQTT_BROKER", ""),
		MQTTUsername:    getEnv("MQTT_USERNAME", ""),
		MQTTPassword:    getEnv("MQTT_PASSWORD", ""),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", ""),
	}
	return cfg
}
