package main

import (
	"k8s.io/klog/v2"

	"github.com/b0ase/portal/cmd/portal/helper"
)

// @title						B0ASE Portal API
// @version						1.0.0
// @description					Client intake, review and project login service behind b0ase.com.
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
// @description					访问 /v1/auth/admin 或 /v1/project-logins/verify 获取 TOKEN 后，填入 'Bearer ${TOKEN}'
func main() {
	klog.InitFlags(nil)

	// Load debug environment before the config reads it
	if err := helper.LoadDebugEnvironment(); err != nil {
		klog.Fatalf("Failed to load env: %s", err)
	}

	configInit := helper.NewConfigInitializer()
	backendConfig := configInit.GetBackendConfig()
	if err := backendConfig.Validate(); err != nil {
		klog.Fatalf("Invalid config: %s", err)
	}

	registerConfig, err := configInit.InitializeRegisterConfig()
	if err != nil {
		klog.Fatalf("Failed to register config: %s", err)
	}

	serverRunner := helper.NewServerRunner(backendConfig)
	cronMgr, err := serverRunner.StartCron(registerConfig)
	if err != nil {
		klog.Fatalf("Failed to start cron jobs: %s", err)
	}
	defer cronMgr.StopCron()

	serverRunner.StartServer(registerConfig)
}
