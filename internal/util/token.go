package util

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/b0ase/portal/pkg/config"
	"github.com/b0ase/portal/pkg/constants"
)

var ErrWrongRole = errors.New("token role mismatch")

type (
	JWTClaims struct {
		Role        string `json:"ro"`
		ProjectSlug string `json:"ps,omitempty"`
		Email       string `json:"em,omitempty"`
		jwt.RegisteredClaims
	}
	JWTMessage struct {
		Role        string    `json:"role"`        // admin, project or invite
		Subject     string    `json:"subject"`     // Admin identity, or the visitor email
		ProjectSlug string    `json:"projectSlug"` // Only for project tokens
		Email       string    `json:"email"`
		ExpiresAt   time.Time `json:"expiresAt"`
	}
)

type TokenManager struct {
	secretKey  []byte
	adminTTL   time.Duration
	projectTTL time.Duration
	inviteTTL  time.Duration
	now        func() time.Time
}

var (
	once     sync.Once
	tokenMgr *TokenManager
)

func GetTokenMgr() *TokenManager {
	once.Do(func() {
		tokenMgr = NewTokenManager(config.NewTokenConf(config.GetConfig()))
	})
	return tokenMgr
}

func NewTokenManager(conf *config.TokenConf) *TokenManager {
	return &TokenManager{
		secretKey:  []byte(conf.Secret),
		adminTTL:   conf.AdminTokenTTL,
		projectTTL: conf.ProjectTokenTTL,
		inviteTTL:  conf.InviteTokenTTL,
		now:        time.Now,
	}
}

func (tm *TokenManager) createToken(msg *JWTMessage, ttl time.Duration) (string, time.Time, error) {
	now := tm.now()
	expiresAt := now.Add(ttl)

	claims := &JWTClaims{
		Role:        msg.Role,
		ProjectSlug: msg.ProjectSlug,
		Email:       msg.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   msg.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", msg.Role, err)
	}
	return signed, expiresAt, nil
}

// CreateAdminToken issues a token for the portal administrator identified by subject.
// An empty subject becomes constants.DefaultAdminSubject.
func (tm *TokenManager) CreateAdminToken(subject string) (string, time.Time, error) {
	if strings.TrimSpace(subject) == "" {
		subject = constants.DefaultAdminSubject
	}
	return tm.createToken(&JWTMessage{Role: constants.RoleAdmin, Subject: subject}, tm.adminTTL)
}

// CreateProjectToken issues a token scoped to one project slug.
func (tm *TokenManager) CreateProjectToken(slug, email string) (string, time.Time, error) {
	return tm.createToken(&JWTMessage{
		Role:        constants.RoleProject,
		Subject:     email,
		ProjectSlug: slug,
		Email:       email,
	}, tm.projectTTL)
}

// CreateInviteToken issues the token embedded in an invitation link.
func (tm *TokenManager) CreateInviteToken(email string) (string, time.Time, error) {
	return tm.createToken(&JWTMessage{Role: constants.RoleInvite, Subject: email, Email: email}, tm.inviteTTL)
}

// CheckToken verifies the signature and expiry and, when role is non-empty, the role claim.
func (tm *TokenManager) CheckToken(requestToken, role string) (JWTMessage, error) {
	claims := JWTClaims{}
	_, err := jwt.ParseWithClaims(requestToken, &claims, func(_ *jwt.Token) (any, error) {
		return tm.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return JWTMessage{}, err
	}
	if role != "" && claims.Role != role {
		return JWTMessage{}, ErrWrongRole
	}
	msg := JWTMessage{
		Role:        claims.Role,
		Subject:     claims.Subject,
		ProjectSlug: claims.ProjectSlug,
		Email:       claims.Email,
	}
	if claims.ExpiresAt != nil {
		msg.ExpiresAt = claims.ExpiresAt.Time
	}
	return msg, nil
}
