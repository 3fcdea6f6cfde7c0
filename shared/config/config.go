package config

import (
	"os"
	"path"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Gate           Gate     `yaml:"gate"`
	Storage        Storage  `yaml:"storage"`
	Log            Log      `yaml:"log"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	SecureCookies  bool     `yaml:"secure_cookies"`
}

type Gate struct {
	ResendDelaySeconds  int      `yaml:"resend_delay_seconds"`
	CodeTTLMinutes      int      `yaml:"code_ttl_minutes"`
	SessionTTLHours     int      `yaml:"session_ttl_hours"` // 0 = session lasts until logout
	DisableFallbackCode bool     `yaml:"disable_fallback_code"`
	AllowedDomains      []string `yaml:"allowed_domains"`
	DefaultAllowlist    []string `yaml:"default_allowlist"`
	AdminEmails         []string `yaml:"admin_emails"`
	BackupRecipient     string   `yaml:"backup_recipient"`
}

// ResendDelay is the cooldown between two code sends.
func (g *Gate) ResendDelay() time.Duration {
	if g.ResendDelaySeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(g.ResendDelaySeconds) * time.Second
}

// CodeTTL is how long an issued code stays verifiable.
func (g *Gate) CodeTTL() time.Duration {
	if g.CodeTTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(g.CodeTTLMinutes) * time.Minute
}

// SessionTTL of zero keeps the session marker until an explicit logout.
func (g *Gate) SessionTTL() time.Duration {
	return time.Duration(g.SessionTTLHours) * time.Hour
}

func (g *Gate) IsAdmin(email string) bool {
	email = strings.ToLower(email)
	for _, admin := range g.AdminEmails {
		if strings.ToLower(admin) == email {
			return true
		}
	}
	return false
}

type Storage struct {
	Backend string `yaml:"backend"` // pg, fs or memory
	FsPath  string `yaml:"fs_path"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
	Pg     Pg     `yaml:"pg"`
	Email  Email  `yaml:"email"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Email struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	SenderName string `yaml:"sender_name"`
	Timeout    int    `yaml:"timeout"` // seconds
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

// TokenTTL is the lifetime of issued access tokens. A non-expiring session
// still gets a year-long token so the JWT always carries an exp claim.
func (s *Config) TokenTTL() time.Duration {
	if ttl := s.Public.Gate.SessionTTL(); ttl > 0 {
		return ttl
	}
	return 365 * 24 * time.Hour
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder. Secrets may
// be overridden through the environment (optionally via a .env file):
// JWT_KEY, SMTP_PASSWORD, PG_PASSWORD.
func MustLoad(configFolder string) *Config {
	_ = godotenv.Load() // best effort, env vars win over yaml either way

	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	if v := os.Getenv("JWT_KEY"); v != "" {
		private.JwtKey = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		private.Email.Password = v
	}
	if v := os.Getenv("PG_PASSWORD"); v != "" {
		private.Pg.Password = v
	}

	cfg := &Config{public, private}
	cfg.mustValidate()
	return cfg
}

func (s *Config) mustValidate() {
	if s.Private.JwtKey == "" {
		panic("config: jwt_key is required (private.yaml or JWT_KEY)")
	}
	switch s.Public.Storage.Backend {
	case "pg":
		if s.Private.Pg.Host == "" || s.Private.Pg.Dbname == "" {
			panic("config: pg backend requires pg host and dbname")
		}
	case "fs":
		if s.Public.Storage.FsPath == "" {
			s.Public.Storage.FsPath = "data/gate_state.json"
		}
	case "", "memory":
		// in-memory store needs nothing
	default:
		panic("config: unknown storage backend " + s.Public.Storage.Backend)
	}
}
