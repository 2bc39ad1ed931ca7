package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config regroupe la configuration de l'application (lecture via Viper depuis
// l'environnement et optionnellement un fichier).
type Config struct {
	App        AppConfig
	DB         DBConfig
	JWT        JWTConfig
	HTTP       HTTPConfig
	Inventaire InventaireConfig
}

// AppConfig configuration générale.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
	// StoreDriver "postgres" ou "memory" (démo/tests d'intégration).
	StoreDriver string
}

// DBConfig configuration PostgreSQL.
// Si DatabaseURL est non vide, il est utilisé comme connection string complet.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString renvoie le DSN: DATABASE_URL si défini, sinon DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN construit le connection string PostgreSQL, avec encodage URL pour les
// caractères spéciaux du mot de passe.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuration JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutes
	Issuer     string
}

// HTTPConfig configuration du serveur HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr renvoie l'adresse d'écoute (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// InventaireConfig planification des inventaires tournants.
type InventaireConfig struct {
	// TournantCron expression cron; vide = planificateur désactivé.
	TournantCron        string
	TournantEmplacement string
	TournantResponsable string
}

// Load lit la configuration depuis les variables d'environnement (et
// optionnellement un fichier .env). Les env vars ont priorité.
func Load() (*Config, error) {
	v := viper.New()

	// Optionnel: fichier .env à la racine
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoré si absent

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:         getString(v, "APP_ENV", "development"),
			Name:        getString(v, "APP_NAME", "labostock"),
			StoreDriver: getString(v, "STORE_DRIVER", "postgres"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "labostock"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "labostock"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Inventaire: InventaireConfig{
			TournantCron:        getString(v, "INVENTAIRE_TOURNANT_CRON", ""),
			TournantEmplacement: getString(v, "INVENTAIRE_TOURNANT_EMPLACEMENT", ""),
			TournantResponsable: getString(v, "INVENTAIRE_TOURNANT_RESPONSABLE", "scheduler"),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
