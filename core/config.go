package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address                   string
		DebugHost                 string
		Host                      string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		PasswordResetTimeoutDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite
		Host          string
		Port          int
		Name          string // file path when Engine is sqlite
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// LocationConfig is the fallback location used for prayer times when neither the request
	// nor the user profile provides one.
	LocationConfig struct {
		Latitude        float64
		Longitude       float64
		Timezone        string
		Method          string
		HijriAdjustment int
	}

	QuranConfig struct {
		AudioBaseURL  string
		Reciter       string
		TafsirBaseURL string
		TafsirTimeout time.Duration
	}

	ZakatConfig struct {
		GoldPricePerGram float64
		StaplePricePerKg float64
	}

	Config struct {
		AppName          string
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		SecretKey        string
		WorkDir          string
		FrontendBaseURL  string
		DefaultFromEmail string
		RollbarToken     string
		SendgridApiKey   string

		Server   ServerConfig
		Database DatabaseConfig
		Location LocationConfig
		Quran    QuranConfig
		Zakat    ZakatConfig
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, strconv.Itoa(dbc.Port))
}

// NewConfig loads the configuration from the environment.
// Variables are prefixed with the current ENV (DEV by default), eg. DEV_DATABASE_NAME.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "dev")
	v.SetDefault("debug", env == "DEV" || env == "TEST")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("appName", "Amal")
	v.SetDefault("secretKey", "k2v#w!r9)p8a^s@t3mq+z7x(e&n5u*b0j4h=c6y1l_dgfo")
	v.SetDefault("workDir", "")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 30*24*time.Hour)
	v.SetDefault("server.passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "amal")
	v.SetDefault("database.user", "amal")
	v.SetDefault("database.password", "amal")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	// Jakarta
	v.SetDefault("location.latitude", -6.2088)
	v.SetDefault("location.longitude", 106.8456)
	v.SetDefault("location.timezone", "Asia/Jakarta")
	v.SetDefault("location.method", "kemenag")
	v.SetDefault("location.hijriAdjustment", 0)

	v.SetDefault("quran.audioBaseURL", "https://everyayah.com/data")
	v.SetDefault("quran.reciter", "Alafasy_128kbps")
	v.SetDefault("quran.tafsirBaseURL", "https://equran.id/api/v2/tafsir")
	v.SetDefault("quran.tafsirTimeout", 10*time.Second)

	v.SetDefault("zakat.goldPricePerGram", 1500000.0)
	v.SetDefault("zakat.staplePricePerKg", 15000.0)

	// load .env if it exists (ignore if it does not)
	wd := os.Getenv("WORKDIR")
	if wd == "" {
		wd, _ = os.Getwd()
	}
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		SecretKey:        v.GetString("secretKey"),
		WorkDir:          v.GetString("workDir"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Address:                   v.GetString("server.address"),
			DebugHost:                 v.GetString("server.debugHost"),
			Host:                      v.GetString("server.host"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			PasswordResetTimeoutDelta: v.GetDuration("server.passwordResetTimeoutDelta"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Location: LocationConfig{
			Latitude:        v.GetFloat64("location.latitude"),
			Longitude:       v.GetFloat64("location.longitude"),
			Timezone:        v.GetString("location.timezone"),
			Method:          v.GetString("location.method"),
			HijriAdjustment: v.GetInt("location.hijriAdjustment"),
		},
		Quran: QuranConfig{
			AudioBaseURL:  v.GetString("quran.audioBaseURL"),
			Reciter:       v.GetString("quran.reciter"),
			TafsirBaseURL: v.GetString("quran.tafsirBaseURL"),
			TafsirTimeout: v.GetDuration("quran.tafsirTimeout"),
		},
		Zakat: ZakatConfig{
			GoldPricePerGram: v.GetFloat64("zakat.goldPricePerGram"),
			StaplePricePerKg: v.GetFloat64("zakat.staplePricePerKg"),
		},
	}
	if conf.WorkDir == "" {
		conf.WorkDir = wd
	}
	return conf
}

// NewTestConfig returns a configuration suitable for tests, independent of the environment.
func NewTestConfig() *Config {
	return &Config{
		AppName:          "Amal",
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		SecretKey:        "secret",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: "noreply@localhost",
		Server: ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
			ShutdownTimeout:           time.Second,
		},
		Database: DatabaseConfig{Engine: "sqlite"},
		Location: LocationConfig{
			Latitude:  -6.2088,
			Longitude: 106.8456,
			Timezone:  "Asia/Jakarta",
			Method:    "kemenag",
		},
		Quran: QuranConfig{
			AudioBaseURL:  "https://everyayah.com/data",
			Reciter:       "Alafasy_128kbps",
			TafsirTimeout: time.Second,
		},
		Zakat: ZakatConfig{
			GoldPricePerGram: 1000000,
			StaplePricePerKg: 15000,
		},
	}
}
