package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // calendar timezones on hosts without zoneinfo

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		SecretKey    string
		RollbarToken string
		WorkDir      string

		Server   ServerConfig
		Database DatabaseConfig
		Storage  StorageConfig
		Mongo    MongoConfig
		Calendar CalendarConfig
		Session  SessionConfig
	}

	ServerConfig struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Name          string
		DisableTLS    bool
	}

	StorageConfig struct {
		Backend string // memory | postgres | mongo
	}

	MongoConfig struct {
		URI      string
		Database string
	}

	CalendarConfig struct {
		Timezone         string
		MaxEventsPerCell int
		UpcomingDays     int
		UpcomingLimit    int
	}

	SessionConfig struct {
		IdleTimeout time.Duration
		SweepSpec   string
	}
)

// Address returns the database "host:port".
func (dc DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", dc.Host, dc.Port)
}

// Location resolves the configured calendar timezone. Event dates follow this local clock.
func (cc CalendarConfig) Location() *time.Location {
	if cc.Timezone == "" || strings.EqualFold(cc.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(cc.Timezone)
	if err != nil {
		log.Printf("config: unknown calendar timezone %q, falling back to Local", cc.Timezone)
		return time.Local
	}
	return loc
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Agenda")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "agenda")
	v.SetDefault("database.password", "agenda")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.name", "agenda")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("storage.backend", "memory")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "agenda")

	v.SetDefault("calendar.timezone", "Local")
	v.SetDefault("calendar.maxEventsPerCell", 3)
	v.SetDefault("calendar.upcomingDays", 30)
	v.SetDefault("calendar.upcomingLimit", 5)

	v.SetDefault("session.idleTimeout", 2*time.Hour)
	v.SetDefault("session.sweepSpec", "@every 5m")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		WorkDir:      wd,
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			DebugHost:          v.GetString("server.debugHost"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Name:          v.GetString("database.name"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(v.GetString("storage.backend")),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("mongo.uri"),
			Database: v.GetString("mongo.database"),
		},
		Calendar: CalendarConfig{
			Timezone:         v.GetString("calendar.timezone"),
			MaxEventsPerCell: v.GetInt("calendar.maxEventsPerCell"),
			UpcomingDays:     v.GetInt("calendar.upcomingDays"),
			UpcomingLimit:    v.GetInt("calendar.upcomingLimit"),
		},
		Session: SessionConfig{
			IdleTimeout: v.GetDuration("session.idleTimeout"),
			SweepSpec:   v.GetString("session.sweepSpec"),
		},
	}
}
