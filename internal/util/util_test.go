package util

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b0ase/portal/pkg/config"
	"github.com/b0ase/portal/pkg/constants"
)

func newTestTokenMgr() *TokenManager {
	return NewTokenManager(&config.TokenConf{
		AdminTokenTTL:   time.Hour,
		ProjectTokenTTL: time.Hour,
		InviteTokenTTL:  time.Hour,
		Secret:          "test-secret",
	})
}

func TestAdminToken(t *testing.T) {
	tm := newTestTokenMgr()
	token, expiresAt, err := tm.CreateAdminToken("admin@x.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	msg, err := tm.CheckToken(token, constants.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleAdmin, msg.Role)
	assert.Equal(t, "admin@x.com", msg.Subject)

	_, err = tm.CheckToken(token, constants.RoleProject)
	assert.ErrorIs(t, err, ErrWrongRole)
}

func TestAdminTokenDefaultSubject(t *testing.T) {
	tm := newTestTokenMgr()
	for _, subject := range []string{"", "  "} {
		token, _, err := tm.CreateAdminToken(subject)
		require.NoError(t, err)
		msg, err := tm.CheckToken(token, constants.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, constants.DefaultAdminSubject, msg.Subject)
	}
}

func TestProjectToken(t *testing.T) {
	tm := newTestTokenMgr()
	token, _, err := tm.CreateProjectToken("alpha", "a@x.com")
	require.NoError(t, err)

	msg, err := tm.CheckToken(token, constants.RoleProject)
	require.NoError(t, err)
	assert.Equal(t, "alpha", msg.ProjectSlug)
	assert.Equal(t, "a@x.com", msg.Email)

	_, err = tm.CheckToken(token, constants.RoleAdmin)
	assert.ErrorIs(t, err, ErrWrongRole)
}

func TestTokenRejectsTamperingAndExpiry(t *testing.T) {
	tm := newTestTokenMgr()
	token, _, err := tm.CreateInviteToken("a@x.com")
	require.NoError(t, err)

	other := NewTokenManager(&config.TokenConf{InviteTokenTTL: time.Hour, Secret: "other"})
	_, err = other.CheckToken(token, constants.RoleInvite)
	assert.Error(t, err)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tm.CheckToken(token, constants.RoleInvite)
	assert.Error(t, err)

	_, err = tm.CheckToken("not-a-jwt", "")
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", "s3cret"))
	assert.False(t, CheckPassword(hash, ""))

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestMailtoLink(t *testing.T) {
	link := MailtoLink("ann+test@x.com", "Your request & next steps", "Hi Ann,\n\nReason: budget=low")

	require.True(t, strings.HasPrefix(link, "mailto:ann%2Btest@x.com?subject="))
	assert.NotContains(t, link, " ")
	assert.NotContains(t, link, "+")
	assert.Contains(t, link, "subject=Your%20request%20%26%20next%20steps")
	assert.Contains(t, link, "%0D%0A%0D%0AReason%3A%20budget%3Dlow")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "mailto", u.Scheme)
	q, err := url.ParseQuery(u.RawQuery)
	require.NoError(t, err)
	assert.Equal(t, "Your request & next steps", q.Get("subject"))
	assert.Equal(t, "Hi Ann,\r\n\r\nReason: budget=low", q.Get("body"))
}

func TestMailtoLinkWithoutFields(t *testing.T) {
	assert.Equal(t, "mailto:a@x.com", MailtoLink("a@x.com", "", ""))
	assert.Equal(t, "mailto:a@x.com?body=hi", MailtoLink("a@x.com", "", "hi"))
}
