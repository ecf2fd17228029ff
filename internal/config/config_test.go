package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Database: DatabaseConfig{
			Host:   "localhost",
			User:   "test",
			DBName: "builderops",
		},
		Email: EmailConfig{
			Provider: ProviderGmail,
			Gmail: GmailConfig{
				ClientID:     "test",
				ClientSecret: "test",
				RefreshToken: "test",
				UserEmail:    "notify@builderops.io",
			},
		},
		Digest: DigestConfig{
			RFIReminderDays:      2,
			ApprovalReminderDays: 3,
		},
	}
}

func TestConfigValidation(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	invalidConfig := &Config{
		Server: ServerConfig{
			Port: "",
		},
	}
	assert.Error(t, invalidConfig.Validate())
}

func TestConfigValidationProviders(t *testing.T) {
	cfg := validConfig()
	cfg.Email.Gmail.RefreshToken = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Email.Provider = ProviderSMTP
	assert.Error(t, cfg.Validate(), "smtp provider requires a host")

	cfg.Email.SMTP.Host = "smtp.example.com"
	assert.NoError(t, cfg.Validate())

	cfg.Email.Provider = "pigeon"
	assert.Error(t, cfg.Validate())
}

func TestConfigValidationReminderDays(t *testing.T) {
	cfg := validConfig()
	cfg.Digest.ApprovalReminderDays = -1
	assert.Error(t, cfg.Validate())
}

func TestMissingSchedulerSecretIsNotAStartupError(t *testing.T) {
	cfg := validConfig()
	cfg.Scheduler.Secret = ""
	assert.NoError(t, cfg.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	}

	expected := "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=UTC"
	assert.Equal(t, expected, cfg.GetDSN())
}

func TestSenderAddress(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "notify@builderops.io", cfg.Email.SenderAddress())

	cfg.Email.FromAddress = "no-reply@builderops.io"
	assert.Equal(t, "no-reply@builderops.io", cfg.Email.SenderAddress())

	cfg.Email.FromAddress = ""
	cfg.Email.Provider = ProviderSMTP
	cfg.Email.SMTP.User = "relay@builderops.io"
	assert.Equal(t, "relay@builderops.io", cfg.Email.SenderAddress())
}
