package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all the configuration for the application.
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Session    `yaml:"session"`
	Network    `yaml:"network"`
	Auth       `yaml:"auth"`
	Storage    `yaml:"storage"`
	PBX        `yaml:"pbx"`
}

// HTTPServer holds HTTP server specific configuration.
type HTTPServer struct {
	Address         string `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout     int    `yaml:"read_timeout_seconds" env:"HTTP_READ_TIMEOUT" env-default:"30"`
	WriteTimeout    int    `yaml:"write_timeout_seconds" env:"HTTP_WRITE_TIMEOUT" env-default:"30"`
	IdleTimeout     int    `yaml:"idle_timeout_seconds" env:"HTTP_IDLE_TIMEOUT" env-default:"60"`
	ShutdownTimeout int    `yaml:"shutdown_timeout_seconds" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"30"`
}

// Database holds PostgreSQL connection configuration.
type Database struct {
	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string `yaml:"user" env:"DB_USER" env-default:"flexpbx"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	DBName          string `yaml:"dbname" env:"DB_NAME" env-default:"flexpbx_admin"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"50"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
	InMemory        bool   `yaml:"in_memory" env:"DB_IN_MEMORY" env-default:"false"`
}

// Session holds session timeout policy configuration.
type Session struct {
	CookieName           string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"flexpbx_admin_session"`
	IdleTimeoutSeconds   int    `yaml:"idle_timeout_seconds" env:"SESSION_IDLE_TIMEOUT" env-default:"1800"`
	ExtendedTrustedDays  int    `yaml:"extended_trusted_days" env:"SESSION_EXTENDED_TRUSTED_DAYS" env-default:"30"`
	ExtendedPublicDays   int    `yaml:"extended_public_days" env:"SESSION_EXTENDED_PUBLIC_DAYS" env-default:"7"`
	SweepIntervalSeconds int    `yaml:"sweep_interval_seconds" env:"SESSION_SWEEP_INTERVAL" env-default:"3600"`
	CookieSecure         bool   `yaml:"cookie_secure" env:"SESSION_COOKIE_SECURE" env-default:"true"`
}

// Network holds network classification configuration.
type Network struct {
	// WireguardCIDR is deployment-specific, unlike the fixed Tailscale and
	// RFC1918 ranges.
	WireguardCIDR string `yaml:"wireguard_cidr" env:"NETWORK_WIREGUARD_CIDR" env-default:"10.8.0.0/24"`
}

// Auth holds authentication specific configuration.
type Auth struct {
	BcryptCost         int     `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST" env-default:"12"`
	LoginRatePerMinute float64 `yaml:"login_rate_per_minute" env:"AUTH_LOGIN_RATE_PER_MINUTE" env-default:"10"`
	LoginRateBurst     int     `yaml:"login_rate_burst" env:"AUTH_LOGIN_RATE_BURST" env-default:"5"`
	JWTSecret          string  `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	APITokenTTLMinutes int     `yaml:"api_token_ttl_minutes" env:"AUTH_API_TOKEN_TTL" env-default:"60"`
	UARegexesPath      string  `yaml:"ua_regexes_path" env:"AUTH_UA_REGEXES_PATH" env-default:"assets/regexes.yaml"`
}

// Storage holds storage path configuration file location.
type Storage struct {
	PathsFile string `yaml:"paths_file" env:"STORAGE_PATHS_FILE" env-default:"config/storage-paths.json"`
}

// PBX holds the connection settings for the PBX core internal API.
type PBX struct {
	BaseURL        string `yaml:"base_url" env:"PBX_BASE_URL" env-default:"http://127.0.0.1:8088"`
	APIKey         string `yaml:"api_key" env:"PBX_API_KEY"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"PBX_TIMEOUT" env-default:"10"`
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	var cfg Config

	// Check if config file path is specified
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yml" // default path
	}

	// Try to load config file
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
	} else {
		// If config file doesn't exist, use environment variables only
		log.Println("Config file not found, using environment variables only")
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err)
		}
	}

	return &cfg
}
