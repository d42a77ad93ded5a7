package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDRESS", "KAFKA_BROKERS", "CONSUMER_GROUP_ID", "CONSUMER_TOPICS", "MODEL_BACKEND",
		"MODEL_API_KEY", "GEMINI_KEY", "MODEL_TIMEOUT", "MODEL_RATE_LIMIT", "RECOMMENDATION_CACHE_SIZE", "RECOMMENDATION_CACHE_TTL", "STORE_BACKEND", "JWT_SECRET",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "activity-processor-group", cfg.ConsumerGroup)
	require.Equal(t, []string{"activity-events"}, cfg.ConsumerTopics)
	require.Equal(t, ModelBackendHTTP, cfg.ModelBackend)
	require.Equal(t, StoreBackendPostgres, cfg.StoreBackend)
	require.Equal(t, 5*time.Second, cfg.ModelTimeout)
	require.Zero(t, cfg.ModelRateLimit)
	require.Equal(t, 1024, cfg.CacheSize)
	require.Equal(t, 30*time.Second, cfg.CacheTTL)
	require.Empty(t, cfg.ModelAPIKey)
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.ValidateAPI())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " broker-1:9092, ,broker-2:9092 ")
	t.Setenv("CONSUMER_TOPICS", "activity-events,activity-replays")
	t.Setenv("MODEL_BACKEND", "GenAI")
	t.Setenv("MODEL_API_KEY", "")
	t.Setenv("GEMINI_KEY", "legacy-key")
	t.Setenv("MODEL_TIMEOUT", "750ms")
	t.Setenv("MODEL_RATE_LIMIT", "2.5")
	t.Setenv("RECOMMENDATION_CACHE_SIZE", "not-a-number")
	t.Setenv("STORE_BACKEND", "memory")

	cfg := Load()
	require.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, []string{"activity-events", "activity-replays"}, cfg.ConsumerTopics)
	require.Equal(t, ModelBackendGenAI, cfg.ModelBackend)
	require.Equal(t, "legacy-key", cfg.ModelAPIKey)
	require.Equal(t, 750*time.Millisecond, cfg.ModelTimeout)
	require.Equal(t, 2.5, cfg.ModelRateLimit)
	require.Equal(t, 1024, cfg.CacheSize)
	require.Equal(t, StoreBackendMemory, cfg.StoreBackend)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownBackends(t *testing.T) {
	cfg := Config{ModelBackend: "carrier-pigeon", StoreBackend: "floppy", ModelTimeout: time.Second}

	err := cfg.Validate()
	require.ErrorContains(t, err, "MODEL_BACKEND")
	require.ErrorContains(t, err, "STORE_BACKEND")

	cfg = Config{ModelBackend: ModelBackendGenAI, StoreBackend: StoreBackendMemory, ModelTimeout: time.Second}
	require.ErrorContains(t, cfg.Validate(), "MODEL_API_KEY")
}

func TestValidateAPIRequiresSharedStore(t *testing.T) {
	cfg := Config{StoreBackend: StoreBackendMemory, JWTSecret: "s", CacheSize: 8, CacheTTL: time.Second}
	require.ErrorContains(t, cfg.ValidateAPI(), "STORE_BACKEND=memory")

	cfg.StoreBackend = StoreBackendPostgres
	require.NoError(t, cfg.ValidateAPI())

	cfg.JWTSecret = ""
	cfg.CacheTTL = 0
	err := cfg.ValidateAPI()
	require.ErrorContains(t, err, "JWT_SECRET")
	require.ErrorContains(t, err, "RECOMMENDATION_CACHE_TTL")
}
