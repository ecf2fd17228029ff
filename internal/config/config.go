package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Email provider names
const (
	ProviderGmail = "gmail"
	ProviderSMTP  = "smtp"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Email     EmailConfig     `mapstructure:"email"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Digest    DigestConfig    `mapstructure:"digest"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// EmailConfig holds the outbound email transport configuration
type EmailConfig struct {
	Provider    string        `mapstructure:"provider"`
	FromName    string        `mapstructure:"from_name"`
	FromAddress string        `mapstructure:"from_address"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Gmail       GmailConfig   `mapstructure:"gmail"`
	SMTP        SMTPConfig    `mapstructure:"smtp"`
}

// GmailConfig holds Gmail API configuration
type GmailConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	UserEmail    string `mapstructure:"user_email"`
	WatchTopic   string `mapstructure:"watch_topic"`
}

// SMTPConfig holds SMTP relay configuration plus the optional IMAP sent-copy archive
type SMTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	IMAPHost     string `mapstructure:"imap_host"`
	IMAPPort     int    `mapstructure:"imap_port"`
	IMAPUser     string `mapstructure:"imap_user"`
	IMAPPassword string `mapstructure:"imap_password"`
	SentMailbox  string `mapstructure:"sent_mailbox"`
}

// SchedulerConfig holds the trigger secret and the in-process cron specs
type SchedulerConfig struct {
	Secret                 string `mapstructure:"secret"`
	Enabled                bool   `mapstructure:"enabled"`
	DailySummaryCron       string `mapstructure:"daily_summary_cron"`
	NotificationDigestCron string `mapstructure:"notification_digest_cron"`
	RFIDeadlineCron        string `mapstructure:"rfi_deadline_cron"`
	ApprovalReminderCron   string `mapstructure:"approval_reminder_cron"`
}

// DigestConfig holds content settings shared by the notification jobs
type DigestConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	RFIReminderDays      int    `mapstructure:"rfi_reminder_days"`
	ApprovalReminderDays int    `mapstructure:"approval_reminder_days"`
}

// RedisConfig holds the optional run report store connection
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	RunTTL   time.Duration `mapstructure:"run_ttl"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("email.provider", ProviderGmail)
	v.SetDefault("email.from_name", "BuilderOps")
	v.SetDefault("email.send_timeout", "30s")
	v.SetDefault("email.max_attempts", 3)
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.imap_port", 993)
	v.SetDefault("email.smtp.sent_mailbox", "Sent")

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.daily_summary_cron", "0 0 18 * * *")
	v.SetDefault("scheduler.notification_digest_cron", "0 0 * * * *")
	v.SetDefault("scheduler.rfi_deadline_cron", "0 0 7 * * *")
	v.SetDefault("scheduler.approval_reminder_cron", "0 30 7 * * *")

	v.SetDefault("digest.base_url", "https://app.builderops.io")
	v.SetDefault("digest.rfi_reminder_days", 2)
	v.SetDefault("digest.approval_reminder_days", 3)

	v.SetDefault("redis.run_ttl", "168h")

	v.SetDefault("log.level", "info")
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Database
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.auto_migrate", "DB_AUTO_MIGRATE")

	// Email
	v.BindEnv("email.provider", "EMAIL_PROVIDER")
	v.BindEnv("email.from_name", "EMAIL_FROM_NAME")
	v.BindEnv("email.from_address", "EMAIL_FROM_ADDRESS")
	v.BindEnv("email.send_timeout", "EMAIL_SEND_TIMEOUT")
	v.BindEnv("email.max_attempts", "EMAIL_MAX_ATTEMPTS")
	v.BindEnv("email.gmail.client_id", "GMAIL_CLIENT_ID")
	v.BindEnv("email.gmail.client_secret", "GMAIL_CLIENT_SECRET")
	v.BindEnv("email.gmail.refresh_token", "GMAIL_REFRESH_TOKEN")
	v.BindEnv("email.gmail.user_email", "GMAIL_USER_EMAIL")
	v.BindEnv("email.gmail.watch_topic", "GMAIL_WATCH_TOPIC")
	v.BindEnv("email.smtp.host", "SMTP_HOST")
	v.BindEnv("email.smtp.port", "SMTP_PORT")
	v.BindEnv("email.smtp.user", "SMTP_USER")
	v.BindEnv("email.smtp.password", "SMTP_PASSWORD")
	v.BindEnv("email.smtp.imap_host", "SMTP_IMAP_HOST")
	v.BindEnv("email.smtp.imap_port", "SMTP_IMAP_PORT")
	v.BindEnv("email.smtp.imap_user", "SMTP_IMAP_USER")
	v.BindEnv("email.smtp.imap_password", "SMTP_IMAP_PASSWORD")
	v.BindEnv("email.smtp.sent_mailbox", "SMTP_SENT_MAILBOX")

	// Scheduler
	v.BindEnv("scheduler.secret", "SCHEDULER_SECRET")
	v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	v.BindEnv("scheduler.daily_summary_cron", "SCHEDULER_DAILY_SUMMARY_CRON")
	v.BindEnv("scheduler.notification_digest_cron", "SCHEDULER_NOTIFICATION_DIGEST_CRON")
	v.BindEnv("scheduler.rfi_deadline_cron", "SCHEDULER_RFI_DEADLINE_CRON")
	v.BindEnv("scheduler.approval_reminder_cron", "SCHEDULER_APPROVAL_REMINDER_CRON")

	// Digest
	v.BindEnv("digest.base_url", "APP_BASE_URL")
	v.BindEnv("digest.rfi_reminder_days", "RFI_REMINDER_DAYS")
	v.BindEnv("digest.approval_reminder_days", "APPROVAL_REMINDER_DAYS")

	// Redis
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("redis.run_ttl", "REDIS_RUN_TTL")

	// Logging
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.file", "LOG_FILE")
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host, user, and dbname are required")
	}

	switch c.Email.Provider {
	case ProviderGmail:
		g := c.Email.Gmail
		if g.ClientID == "" || g.ClientSecret == "" || g.RefreshToken == "" {
			return fmt.Errorf("Gmail OAuth2 credentials are required for the gmail provider")
		}
	case ProviderSMTP:
		if c.Email.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required for the smtp provider")
		}
	default:
		return fmt.Errorf("unknown email provider %q", c.Email.Provider)
	}

	if c.Digest.RFIReminderDays < 0 || c.Digest.ApprovalReminderDays < 0 {
		return fmt.Errorf("reminder day thresholds must not be negative")
	}

	return nil
}

// SenderAddress returns the From address for outbound notifications
func (c *EmailConfig) SenderAddress() string {
	if c.FromAddress != "" {
		return c.FromAddress
	}
	if c.Provider == ProviderGmail {
		return c.Gmail.UserEmail
	}
	return c.SMTP.User
}
