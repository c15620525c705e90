package config // package config loads application configuration from environment variables

import (
    "log"     // log reports configuration errors and halts execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Secrets and identifiers
// stay strings; durations and costs are ints in the unit named by
// the variable.
type Config struct {
    Env               string // application environment ("dev", "prod")
    Port              string // HTTP port to listen on
    DBUser            string // database username
    DBPass            string // database password (optional)
    DBHost            string // database host address
    DBPort            string // database port number
    DBName            string // database name
    JWTSecret         string // secret signing access tokens
    JWTRefreshSecret  string // distinct secret signing refresh tokens
    AccessTTLMin      int    // access token time-to-live in minutes (24h = 1440)
    RefreshTTLDays    int    // refresh token time-to-live in days (30)
    RememberMeTTLDays int    // refresh TTL in days when "remember me" is set (90)
    BcryptCost        int    // bcrypt cost for password hashing (12)
    SiteBaseURL       string // public base URL used to build reset links
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// The access and refresh secrets are required to differ so a leaked
// access key can never mint refresh tokens.
func Load() Config {
    cfg := Config{
        Env:               must("APP_ENV"),
        Port:              must("APP_PORT"),
        DBUser:            must("DB_USER"),
        DBPass:            os.Getenv("DB_PASS"), // empty allowed
        DBHost:            must("DB_HOST"),
        DBPort:            must("DB_PORT"),
        DBName:            must("DB_NAME"),
        JWTSecret:         must("JWT_SECRET"),
        JWTRefreshSecret:  must("JWT_REFRESH_SECRET"),
        AccessTTLMin:      mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays:    mustInt("REFRESH_TOKEN_TTL_DAYS"),
        RememberMeTTLDays: mustInt("REMEMBER_ME_TTL_DAYS"),
        BcryptCost:        mustInt("BCRYPT_COST"),
        SiteBaseURL:       must("SITE_BASE_URL"),
    }
    if cfg.JWTSecret == cfg.JWTRefreshSecret {
        log.Fatal("JWT_SECRET and JWT_REFRESH_SECRET must differ")
    }
    return cfg
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.  If conversion fails, the application logs a fatal error
// and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
