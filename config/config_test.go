package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpirationDuration())
	assert.EqualValues(t, 20, cfg.Query.DefaultLimit)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRATION", "90m")
	t.Setenv("DATABASE_DRIVER", "MEMORY")
	t.Setenv("DATABASE_PORT", "6543")
	t.Setenv("SERVER_PORT", "9000")

	cfg := Load()

	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 90*time.Minute, cfg.JWT.ExpirationDuration())
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "9000", cfg.Server.Port)
}

func TestJWTConfig_ExpirationFallback(t *testing.T) {
	assert.Equal(t, 24*time.Hour, JWTConfig{Expiration: "soon"}.ExpirationDuration())
	assert.Equal(t, 24*time.Hour, JWTConfig{Expiration: "-1h"}.ExpirationDuration())
}

func TestDatabaseConfig_ConnectionStrings(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.ConnectionString())
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", d.URL())
}
