package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/joeshaw/envdecode"
	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"
)

// Approval email policies. BestEffort logs a failed send and still reports success;
// Required turns a failed send into a server error (the approval stays committed).
const (
	EmailPolicyBestEffort = "best-effort"
	EmailPolicyRequired   = "required"
)

// Scraper backends.
const (
	ScraperModeProcess = "process"
	ScraperModeHTTP    = "http"
)

type Config struct {
	// Port Settings
	Host           string `json:"host"`                              // The domain name of the server.
	ServerAddr     string `json:"serverAddr" env:"SERVER_ADDR"`      // The address the server endpoint binds to.
	FrontendOrigin string `json:"frontendOrigin" env:"FRONTEND_URL"` // Allowed CORS origin in debug mode.

	Site struct {
		Name    string `json:"name"`
		BaseURL string `json:"baseURL" env:"SITE_URL"` // Used to build links in emails.
	} `json:"site"`

	Auth struct {
		AdminEmail        string `json:"adminEmail" env:"ADMIN_EMAIL"` // Recorded as reviewed_by.
		AdminPassword     string `json:"adminPassword" env:"ADMIN_PASSWORD"`
		AdminPasswordHash string `json:"adminPasswordHash" env:"ADMIN_PASSWORD_HASH"` // bcrypt, wins over AdminPassword.
		TokenSecret       string `json:"tokenSecret" env:"TOKEN_SECRET"`
		AdminTokenHours   int    `json:"adminTokenHours"`
		ProjectTokenHours int    `json:"projectTokenHours"`
		InviteTokenHours  int    `json:"inviteTokenHours"`
	} `json:"auth"`

	Postgres struct {
		URL         string `json:"url" env:"DATABASE_URL"`
		Host        string `json:"host"`
		Port        string `json:"port"`
		DBName      string `json:"dbname"`
		User        string `json:"user"`
		Password    string `json:"password" env:"DATABASE_PASSWORD"`
		SSLMode     string `json:"sslmode"`
		TimeZone    string `json:"TimeZone"`
		AutoMigrate bool   `json:"autoMigrate"`
	} `json:"postgres"`

	SMTP struct {
		Host     string `json:"host" env:"SMTP_HOST"`
		Port     int    `json:"port" env:"SMTP_PORT"`
		User     string `json:"user" env:"SMTP_USER"`
		Password string `json:"password" env:"SMTP_PASSWORD"`
		From     string `json:"from" env:"SMTP_FROM"`
		FromName string `json:"fromName"`
	} `json:"smtp"`

	Notify struct {
		OwnerEmail          string `json:"ownerEmail"`
		ApprovalEmailPolicy string `json:"approvalEmailPolicy"`
		DigestSpec          string `json:"digestSpec"`                          // cron spec, empty disables the digest
		WebhookURL          string `json:"webhookURL" env:"NOTIFY_WEBHOOK_URL"` // Slack or Discord, owner notifications only
	} `json:"notify"`

	Scraper struct {
		Mode           string   `json:"mode"`
		APIKey         string   `json:"apiKey" env:"SCRAPER_API_KEY"`
		Command        []string `json:"command"`
		ProxyURL       string   `json:"proxyURL"`
		TimeoutSeconds int      `json:"timeoutSeconds"`
	} `json:"scraper"`

	RateLimit struct {
		RequestsPerSecond float64 `json:"requestsPerSecond"`
		Burst             int     `json:"burst"`
	} `json:"rateLimit"`
}

var (
	once   sync.Once
	config *Config
)

func GetConfig() *Config {
	once.Do(func() {
		config = initConfig()
	})
	return config
}

func IsDebugMode() bool {
	return gin.Mode() == gin.DebugMode
}

// initConfig reads the YAML file, then lets the environment override secrets.
// In debug mode the default path is ./etc/debug-config.yaml, otherwise ./etc/config.yaml;
// PORTAL_CONFIG_PATH overrides both. A missing default file is not fatal so that a
// deployment can be configured through the environment alone.
func initConfig() *Config {
	configPath, explicit := os.LookupEnv("PORTAL_CONFIG_PATH")
	if !explicit {
		if IsDebugMode() {
			configPath = "./etc/debug-config.yaml"
		} else {
			configPath = "./etc/config.yaml"
		}
	}
	klog.Info("config path: ", configPath)

	cfg, err := Load(configPath)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		klog.Warningf("config file %s not found, using defaults and environment", configPath)
		cfg, err = FromEnv(Default())
	}
	if err != nil {
		klog.Error("init config", err)
		panic(err)
	}
	return cfg
}

// Default returns a configuration with every optional setting filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.ServerAddr = ":8088"
	cfg.Site.Name = "B0ASE"
	cfg.Site.BaseURL = "https://b0ase.com"
	cfg.Auth.AdminTokenHours = 12
	cfg.Auth.ProjectTokenHours = 24
	cfg.Auth.InviteTokenHours = 72
	cfg.Postgres.SSLMode = "require"
	cfg.Postgres.TimeZone = "UTC"
	cfg.Postgres.Port = "5432"
	cfg.SMTP.Port = 587
	cfg.SMTP.FromName = "B0ASE"
	cfg.Notify.ApprovalEmailPolicy = EmailPolicyBestEffort
	cfg.Scraper.Mode = ScraperModeProcess
	cfg.Scraper.Command = []string{"python3", "scripts/fiverr_category_scraper.py"}
	cfg.Scraper.ProxyURL = "https://api.scraperapi.com"
	cfg.Scraper.TimeoutSeconds = 60
	cfg.RateLimit.RequestsPerSecond = 1
	cfg.RateLimit.Burst = 5
	return cfg
}

// Load reads filePath on top of the defaults and applies environment overrides.
func Load(filePath string) (*Config, error) {
	cfg := Default()
	if err := readConfig(filePath, cfg); err != nil {
		return nil, err
	}
	return FromEnv(cfg)
}

// FromEnv overrides the fields tagged with `env` from the process environment.
func FromEnv(cfg *Config) (*Config, error) {
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}

func readConfig(filePath string, config *Config) error {
	// 读取 YAML 配置文件
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	// 解析 YAML 数据到结构体
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return err
	}
	return nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.TokenSecret == "" {
		errs = append(errs, errors.New("auth.tokenSecret (TOKEN_SECRET) is required"))
	}
	if c.Auth.AdminPassword == "" && c.Auth.AdminPasswordHash == "" {
		errs = append(errs, errors.New("auth.adminPassword (ADMIN_PASSWORD) or auth.adminPasswordHash is required"))
	}
	switch c.Notify.ApprovalEmailPolicy {
	case EmailPolicyBestEffort, EmailPolicyRequired:
	default:
		errs = append(errs, fmt.Errorf("notify.approvalEmailPolicy %q is not one of %s, %s",
			c.Notify.ApprovalEmailPolicy, EmailPolicyBestEffort, EmailPolicyRequired))
	}
	switch c.Scraper.Mode {
	case ScraperModeProcess, ScraperModeHTTP:
	default:
		errs = append(errs, fmt.Errorf("scraper.mode %q is not one of %s, %s",
			c.Scraper.Mode, ScraperModeProcess, ScraperModeHTTP))
	}
	return errors.Join(errs...)
}

// SMTPEnabled reports whether a mail relay has been configured.
func (c *Config) SMTPEnabled() bool {
	return c.SMTP.Host != "" && c.SMTP.From != ""
}
