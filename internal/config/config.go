package config

import (
	"strconv"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Reporting ReportingConfig `yaml:"reporting"`
	CORS      CORSConfig      `yaml:"cors"`
}

// OptionalBool is a boolean that remembers whether it was explicitly set.
// cleanenv treats a plain bool's false as an unset field and writes the
// env-default over it, so a yaml "false" would silently flip back to the
// default. Parsing goes through UnmarshalText for both the yaml and env
// paths.
type OptionalBool struct {
	set bool
	val bool
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *OptionalBool) UnmarshalText(text []byte) error {
	v, err := strconv.ParseBool(string(text))
	if err != nil {
		return err
	}
	b.set = true
	b.val = v
	return nil
}

// Or returns the configured value, or def when the field was never set.
func (b OptionalBool) Or(def bool) bool {
	if b.set {
		return b.val
	}
	return def
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// LoginRatePerMinute caps login attempts per client to slow down
	// credential stuffing.
	LoginRatePerMinute int `yaml:"login_rate_per_minute" env:"SERVER_LOGIN_RATE_PER_MINUTE" env-default:"10"`
}

// DatabaseConfig holds SQLite settings. Path is the database file;
// ":memory:" is accepted for throwaway instances.
type DatabaseConfig struct {
	Path        string        `yaml:"path"          env:"DATABASE_PATH"          env-default:"./carelog.db"`
	BusyTimeout time.Duration `yaml:"busy_timeout"  env:"DATABASE_BUSY_TIMEOUT"  env-default:"5s"`
	MaxConns    int           `yaml:"max_conns"     env:"DATABASE_MAX_CONNS"     env-default:"10"`
	AutoMigrate OptionalBool  `yaml:"auto_migrate"  env:"DATABASE_AUTO_MIGRATE"  env-default:"true"`
}

// AutoMigrateEnabled reports whether startup migrations run; unset means yes.
func (d DatabaseConfig) AutoMigrateEnabled() bool {
	return d.AutoMigrate.Or(true)
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"carelog"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"8h"`
	BcryptCost     int           `yaml:"bcrypt_cost"      env:"AUTH_BCRYPT_COST"      env-default:"12"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// ReportingConfig holds reporting-projection settings.
type ReportingConfig struct {
	// RefreshOnWrite triggers a projection refresh after bulk service-log
	// writes instead of waiting for the next scheduled refresh.
	RefreshOnWrite OptionalBool  `yaml:"refresh_on_write" env:"REPORTING_REFRESH_ON_WRITE" env-default:"true"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout"  env:"REPORTING_REFRESH_TIMEOUT"  env-default:"2m"`
}

// RefreshOnWriteEnabled reports whether state changes rebuild the projection;
// unset means yes.
func (r ReportingConfig) RefreshOnWriteEnabled() bool {
	return r.RefreshOnWrite.Or(true)
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string       `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string       `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string       `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials OptionalBool `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int          `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// CredentialsAllowed reports whether CORS responses allow credentials; unset
// means yes.
func (c CORSConfig) CredentialsAllowed() bool {
	return c.AllowCredentials.Or(true)
}
