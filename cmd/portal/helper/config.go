package helper

import (
	"errors"
	"io/fs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"k8s.io/klog/v2"

	"github.com/b0ase/portal/dao/migrate"
	"github.com/b0ase/portal/dao/query"
	"github.com/b0ase/portal/internal/handler"
	"github.com/b0ase/portal/internal/middleware"
	"github.com/b0ase/portal/internal/util"
	"github.com/b0ase/portal/pkg/alert"
	"github.com/b0ase/portal/pkg/config"
	"github.com/b0ase/portal/pkg/constants"
	"github.com/b0ase/portal/pkg/scraper"
)

// LoadDebugEnvironment 加载调试环境变量，文件不存在时忽略
func LoadDebugEnvironment() error {
	if gin.Mode() != gin.DebugMode {
		return nil
	}
	err := godotenv.Load(".debug.env")
	if errors.Is(err, fs.ErrNotExist) {
		klog.Info(".debug.env not found, using the process environment")
		return nil
	}
	return err
}

// ConfigInitializer 封装配置初始化逻辑
type ConfigInitializer struct {
	backendConfig *config.Config
}

// NewConfigInitializer 创建新的ConfigInitializer实例
func NewConfigInitializer() *ConfigInitializer {
	return &ConfigInitializer{
		backendConfig: config.GetConfig(),
	}
}

// GetBackendConfig 获取后端配置
func (ci *ConfigInitializer) GetBackendConfig() *config.Config {
	return ci.backendConfig
}

// InitializeRegisterConfig 初始化注册配置
func (ci *ConfigInitializer) InitializeRegisterConfig() (*handler.RegisterConfig, error) {
	cfg := ci.backendConfig
	registerConfig := &handler.RegisterConfig{Config: cfg}

	// init db
	db := query.GetDB()
	if cfg.Postgres.AutoMigrate {
		if err := migrate.Migrate(db); err != nil {
			return nil, err
		}
	}
	query.SetDefault(db)
	registerConfig.Query = query.Q

	adminHash, err := adminPasswordHash(cfg)
	if err != nil {
		return nil, err
	}
	registerConfig.AdminPasswordHash = adminHash
	if cfg.Auth.AdminEmail == "" {
		klog.Warningf("auth.adminEmail is empty, reviews are recorded as %q", constants.DefaultAdminSubject)
	}

	registerConfig.TokenMgr = util.GetTokenMgr()
	registerConfig.Alert = alert.GetAlertMgr()
	registerConfig.Limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	runner, err := scraper.New(cfg)
	if err != nil {
		return nil, err
	}
	registerConfig.Scraper = runner

	util.RegisterValidators()
	return registerConfig, nil
}

// adminPasswordHash prefers the configured bcrypt hash and otherwise hashes the
// plaintext password once at startup.
func adminPasswordHash(cfg *config.Config) (string, error) {
	if cfg.Auth.AdminPasswordHash != "" {
		return cfg.Auth.AdminPasswordHash, nil
	}
	return util.HashPassword(cfg.Auth.AdminPassword)
}
