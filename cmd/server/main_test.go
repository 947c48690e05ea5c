package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classpad/answerboard/internal/app"
)

func validTestConfig() *app.Config {
	cfg := &app.Config{}
	cfg.Auth.JWT.Secret = "secret"
	cfg.Sheets.BaseURL = "https://sheets.internal"
	cfg.Sheets.SpreadsheetID = "board-1"
	return cfg
}

func TestEnsureSecretsPresent(t *testing.T) {
	require.NoError(t, ensureSecretsPresent(validTestConfig()))
}

func TestEnsureSecretsRequiresJWTSecret(t *testing.T) {
	cfg := validTestConfig()
	cfg.Auth.JWT.Secret = "  "
	require.Error(t, ensureSecretsPresent(cfg))
}

func TestEnsureSecretsRequiresSheetsTarget(t *testing.T) {
	cfg := validTestConfig()
	cfg.Sheets.BaseURL = ""
	require.Error(t, ensureSecretsPresent(cfg))

	cfg = validTestConfig()
	cfg.Sheets.SpreadsheetID = ""
	require.Error(t, ensureSecretsPresent(cfg))
}

func TestConvertDatabaseConfigNormalisesDriver(t *testing.T) {
	cfg := validTestConfig()
	cfg.Database.Driver = "PostgreSQL"
	cfg.Database.Postgres.Host = "db.internal"
	cfg.Database.Postgres.Username = "board"
	cfg.Database.Postgres.Database = "answerboard"

	dbCfg := convertDatabaseConfig(cfg)
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)

	cfg.Database.Driver = ""
	require.Equal(t, "sqlite", convertDatabaseConfig(cfg).Driver)
}
