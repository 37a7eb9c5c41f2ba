package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is set by NewConfig. Most components receive a *Config explicitly;
// the global exists for leaf helpers (mail rendering, reset tokens) that predate DI.
var Conf *Config

type Config struct {
	Debug    bool
	TestMode bool
	Env      string // DEV (local; default), TEST, QA, PROD
	Build    string

	AppName          string
	SecretKey        string
	FrontendBaseURL  string
	DefaultFromEmail mail.Address

	PasswordResetTimeoutDelta time.Duration

	SendgridAPIKey string
	RollbarToken   string

	Server struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	Database struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	Uploads struct {
		Dir          string
		MaxSizeBytes int64
	}

	AI struct {
		APIKey  string
		Model   string
		BaseURL string
		Timeout time.Duration
	}

	TTS struct {
		APIKey  string
		Voice   string
		Timeout time.Duration
	}

	RateLimit struct {
		ProcessMaxRequests int
		ProcessWindow      time.Duration
		TTSMaxRequests     int
		TTSWindow          time.Duration
	}
}

// DatabaseAddress returns the host:port of the database server.
func (c *Config) DatabaseAddress() string {
	return net.JoinHostPort(c.Database.Host, c.Database.Port)
}

// AIEnabled reports whether an AI credential was configured.
// The decision is made once at construction time, not per call.
func (c *Config) AIEnabled() bool {
	return c.AI.APIKey != ""
}

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Oratoria")
	v.SetDefault("secretKey", "x#2z)ld$qmy7t&(h5no0b!e89c^uv+r4_pgw3akfs6ij%1")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverDebugHost", ":9000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseName", "oratoria")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", "5432")
	v.SetDefault("databaseUser", "oratoria")
	v.SetDefault("databasePassword", "")
	v.SetDefault("databaseAdminUser", "")
	v.SetDefault("databaseAdminPassword", "")
	v.SetDefault("databaseDisableTLS", true)

	v.SetDefault("uploadsDir", "uploads")
	v.SetDefault("uploadsMaxSizeBytes", int64(50<<20)) // 50 MB

	v.SetDefault("aiApiKey", "")
	v.SetDefault("aiModel", "gpt-4o-mini")
	v.SetDefault("aiBaseURL", "")
	v.SetDefault("aiTimeout", 2*time.Minute)

	v.SetDefault("ttsApiKey", "")
	v.SetDefault("ttsVoice", "21m00Tcm4TlvDq8ikWAM") // Rachel - natural, clear English
	v.SetDefault("ttsTimeout", 30*time.Second)

	v.SetDefault("rateLimitProcessMaxRequests", 5)
	v.SetDefault("rateLimitProcessWindow", time.Hour)
	v.SetDefault("rateLimitTtsMaxRequests", 30)
	v.SetDefault("rateLimitTtsWindow", time.Hour)

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Address: v.GetString("defaultFromEmail")},

		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),

		SendgridAPIKey: v.GetString("sendgridApiKey"),
		RollbarToken:   v.GetString("rollbarToken"),
	}
	conf.Server.Host = v.GetString("serverHost")
	conf.Server.Address = v.GetString("serverAddress")
	conf.Server.DebugHost = v.GetString("serverDebugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("serverShutdownTimeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("jwtExpirationDelta")
	conf.Server.JWTRefreshExpirationDelta = v.GetDuration("jwtRefreshExpirationDelta")

	conf.Database.Engine = v.GetString("databaseEngine")
	conf.Database.Name = v.GetString("databaseName")
	conf.Database.Host = v.GetString("databaseHost")
	conf.Database.Port = v.GetString("databasePort")
	conf.Database.User = v.GetString("databaseUser")
	conf.Database.Password = v.GetString("databasePassword")
	conf.Database.AdminUser = v.GetString("databaseAdminUser")
	conf.Database.AdminPassword = v.GetString("databaseAdminPassword")
	conf.Database.DisableTLS = v.GetBool("databaseDisableTLS")

	conf.Uploads.Dir = v.GetString("uploadsDir")
	conf.Uploads.MaxSizeBytes = v.GetInt64("uploadsMaxSizeBytes")

	conf.AI.APIKey = v.GetString("aiApiKey")
	conf.AI.Model = v.GetString("aiModel")
	conf.AI.BaseURL = v.GetString("aiBaseURL")
	conf.AI.Timeout = v.GetDuration("aiTimeout")

	conf.TTS.APIKey = v.GetString("ttsApiKey")
	conf.TTS.Voice = v.GetString("ttsVoice")
	conf.TTS.Timeout = v.GetDuration("ttsTimeout")

	conf.RateLimit.ProcessMaxRequests = v.GetInt("rateLimitProcessMaxRequests")
	conf.RateLimit.ProcessWindow = v.GetDuration("rateLimitProcessWindow")
	conf.RateLimit.TTSMaxRequests = v.GetInt("rateLimitTtsMaxRequests")
	conf.RateLimit.TTSWindow = v.GetDuration("rateLimitTtsWindow")

	Conf = conf
	return conf
}
