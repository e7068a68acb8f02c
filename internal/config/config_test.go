package config

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		ModelName:              "gemini-2.5-flash",
		EmbedderModel:          "gemini-embedding-001",
		ChunkSize:              1000,
		ChunkOverlap:           200,
		TopK:                   5,
		MinSimilarity:          0.3,
		MaxHistoryTurns:        6,
		DatasetCacheTTLSeconds: 300,
		PostgresHost:           "localhost",
		PostgresPort:           5432,
		PostgresUser:           "radex",
		PostgresDBName:         "radex",
		PostgresSSLMode:        "disable",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "empty model name",
			mutate:  func(c *Config) { c.ModelName = "  " },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "empty embedder model",
			mutate:  func(c *Config) { c.EmbedderModel = "" },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "overlap equals chunk size",
			mutate:  func(c *Config) { c.ChunkOverlap = c.ChunkSize },
			wantErr: ErrInvalidChunking,
		},
		{
			name:    "negative overlap",
			mutate:  func(c *Config) { c.ChunkOverlap = -1 },
			wantErr: ErrInvalidChunking,
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.ChunkSize = 0 },
			wantErr: ErrInvalidChunking,
		},
		{
			name:    "similarity above one",
			mutate:  func(c *Config) { c.MinSimilarity = 1.5 },
			wantErr: ErrInvalidSimilarity,
		},
		{
			name:    "empty postgres host",
			mutate:  func(c *Config) { c.PostgresHost = "" },
			wantErr: ErrInvalidPostgresHost,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.PostgresPort = 70000 },
			wantErr: ErrInvalidPostgresPort,
		},
		{
			name:    "empty db name",
			mutate:  func(c *Config) { c.PostgresDBName = "" },
			wantErr: ErrInvalidPostgresDBName,
		},
		{
			name:    "bad ssl mode",
			mutate:  func(c *Config) { c.PostgresSSLMode = "maybe" },
			wantErr: ErrInvalidPostgresSSLMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNil(t *testing.T) {
	var cfg *Config
	if err := cfg.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Fatalf("Validate() on nil = %v, want ErrConfigNil", err)
	}
}

func TestPostgresURL(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "s3cret"

	got := cfg.PostgresURL()
	for _, want := range []string{"postgres://", "radex:s3cret@", "localhost:5432", "/radex", "sslmode=disable"} {
		if !strings.Contains(got, want) {
			t.Errorf("PostgresURL() = %q, missing %q", got, want)
		}
	}
}

func TestPostgresURLNoPassword(t *testing.T) {
	cfg := validConfig()

	got := cfg.PostgresURL()
	if strings.Contains(got, ":@") {
		t.Errorf("PostgresURL() = %q, should omit empty password", got)
	}
	if !strings.Contains(got, "radex@") {
		t.Errorf("PostgresURL() = %q, missing user", got)
	}
}
