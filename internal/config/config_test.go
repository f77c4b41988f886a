package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/iyhunko/price-alerts-dashboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.DBHostEnv, "localhost")
	t.Setenv(config.DBUserEnv, "user")
	t.Setenv(config.DBPassEnv, "pass")
	t.Setenv(config.DBNameEnv, "testdb")
	t.Setenv(config.DBPortEnv, "5432")
	t.Setenv(config.HTTPServerPortEnv, "8080")
	t.Setenv(config.MetricsServerPortEnv, "9090")
	t.Setenv(config.VAPIDPublicKeyEnv, "")
	t.Setenv(config.VAPIDPrivateKeyEnv, "")
	t.Setenv(config.SQSQueueURLEnv, "")
	t.Setenv(config.HistoryLimitEnv, "")
	t.Setenv(config.FetchTimeoutEnv, "")
	t.Setenv(config.CacheVersionEnv, "")
}

func TestLoadFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(config.DebugModeEnv, "true")
	t.Setenv(config.RedisAddrEnv, "localhost:6379")
	t.Setenv(config.RedisDBEnv, "2")

	conf, err := config.LoadFromEnv()
	require.NoError(t, err, "loading config should not return error")

	assert.True(t, conf.DebugMode, "DebugMode should be true")
	assert.Equal(t, "localhost", conf.Database.Host, "DB Host should be 'localhost'")
	assert.Equal(t, "user", conf.Database.User, "DB User should be 'user'")
	assert.Equal(t, "pass", conf.Database.Password, "DB Password should be 'pass'")
	assert.Equal(t, "testdb", conf.Database.Name, "DB Name should be 'testdb'")
	assert.Equal(t, "5432", conf.Database.Port, "DB Port should be '5432'")
	assert.Equal(t, "8080", conf.HTTPServer.Port, "HTTP Server Port should be '8080'")
	assert.Equal(t, "9090", conf.MetricsServer.Port, "Metrics Server Port should be '9090'")
	assert.Equal(t, "localhost:6379", conf.Redis.Addr)
	assert.Equal(t, 2, conf.Redis.DB)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setRequiredEnv(t)

	conf, err := config.LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 100, conf.Dashboard.HistoryLimit)
	assert.Equal(t, 10*time.Second, conf.Dashboard.FetchTimeout)
	assert.Equal(t, "price-alerts-v1", conf.Dashboard.CacheVersion)
	assert.False(t, conf.PushEnabled())
	assert.False(t, conf.RelayEnabled())
}

func TestLoadFromEnv_MissingDatabaseHost(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(config.DBHostEnv, "")

	conf, err := config.LoadFromEnv()
	require.Error(t, err)
	assert.Nil(t, conf)
	assert.True(t, errors.Is(err, config.ErrMissingConfig))
}

func TestLoadFromEnv_HalfVAPIDPair(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(config.VAPIDPublicKeyEnv, "public")

	_, err := config.LoadFromEnv()
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingConfig))
}

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"GetEnvAsBool_True", "true", false, true},
		{"GetEnvAsBool_False", "false", true, false},
		{"GetEnvAsBool_Invalid", "invalid", true, true},
		{"GetEnvAsBool_Empty", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV", tt.envValue)
			got := config.GetEnvAsBool("TEST_ENV", tt.defaultValue)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     time.Duration
	}{
		{"GetEnvAsDuration_Valid", "3s", 3 * time.Second},
		{"GetEnvAsDuration_Invalid", "soon", time.Minute},
		{"GetEnvAsDuration_Empty", "", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.envValue)
			assert.Equal(t, tt.want, config.GetEnvAsDuration("TEST_DURATION", time.Minute))
		})
	}
}

func TestAllNumbers(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]string
		wantErr bool
	}{
		{"AllNumbers_Valid", map[string]string{"key1": "123", "key2": "456", "key3": "789"}, false},
		{"AllNumbers_Invalid", map[string]string{"key1": "123", "key2": "abc", "key3": "789"}, true},
		{"AllNumbers_EmptyString", map[string]string{"key1": "123", "key2": "", "key3": "789"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := config.AllNumbers(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAllNonEmpty(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]string
		wantErr bool
	}{
		{"AllNonEmpty_Valid", map[string]string{"key1": "host", "key2": "user", "key3": "pass"}, false},
		{"AllNonEmpty_EmptyString", map[string]string{"key1": "host", "key2": "", "key3": "pass"}, true},
		{"AllNonEmpty_AllEmpty", map[string]string{"key1": "", "key2": "", "key3": ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := config.AllNonEmpty(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadQueueFromEnv(t *testing.T) {
	t.Setenv(config.EnvFilePath, "testdata/missing.env")
	t.Setenv(config.AWSRegionEnv, "us-east-1")
	t.Setenv(config.AWSEndpointEnv, "http://localhost:4566")
	t.Setenv(config.SQSQueueURLEnv, "http://localhost:4566/000000000000/price-alerts")

	conf, err := config.LoadQueueFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", conf.Region)
	assert.Equal(t, "http://localhost:4566", conf.Endpoint)

	t.Setenv(config.SQSQueueURLEnv, "")
	_, err = config.LoadQueueFromEnv()
	assert.ErrorIs(t, err, config.ErrMissingConfig)
}
