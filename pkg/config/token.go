package config

import "time"

type TokenConf struct {
	AdminTokenTTL   time.Duration
	ProjectTokenTTL time.Duration
	InviteTokenTTL  time.Duration
	Secret          string
}

func NewTokenConf(cfg *Config) *TokenConf {
	return &TokenConf{
		AdminTokenTTL:   time.Duration(cfg.Auth.AdminTokenHours) * time.Hour,
		ProjectTokenTTL: time.Duration(cfg.Auth.ProjectTokenHours) * time.Hour,
		InviteTokenTTL:  time.Duration(cfg.Auth.InviteTokenHours) * time.Hour,
		Secret:          cfg.Auth.TokenSecret,
	}
}
