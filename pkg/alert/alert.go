package alert

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/b0ase/portal/dao/model"
	"github.com/b0ase/portal/pkg/config"
	"github.com/b0ase/portal/pkg/constants"
	"github.com/b0ase/portal/pkg/logutils"
)

type alertMgr struct {
	// mail reaches requesters and invited clients
	mail alertHandlerInterface
	// owner receives intake notifications and digests, defaults to mail
	owner      alertHandlerInterface
	ownerEmail string
	siteName   string
	siteURL    string
}

var (
	once    sync.Once
	alerter *alertMgr
)

func GetAlertMgr() AlertInterface {
	once.Do(func() {
		alerter = initAlertMgr(config.GetConfig())
	})
	return alerter
}

// NewAlertMgr builds a manager from cfg. Without SMTP settings every mail fails
// with ErrNotConfigured; a webhook, when set, replaces mail for owner messages.
func NewAlertMgr(cfg *config.Config) AlertInterface {
	return initAlertMgr(cfg)
}

func initAlertMgr(cfg *config.Config) *alertMgr {
	var mail alertHandlerInterface = noopAlerter{}
	if cfg.SMTPEnabled() {
		mail = newSMTPAlerter(cfg)
	} else {
		logutils.Log.Warn("smtp is not configured, outgoing mail is disabled")
	}
	owner := mail
	if cfg.Notify.WebhookURL != "" {
		owner = newWebhookAlerter(cfg.Notify.WebhookURL)
	}
	return newAlertMgr(mail, owner, cfg)
}

func newAlertMgr(mail, owner alertHandlerInterface, cfg *config.Config) *alertMgr {
	return &alertMgr{
		mail:       mail,
		owner:      owner,
		ownerEmail: cfg.Notify.OwnerEmail,
		siteName:   cfg.Site.Name,
		siteURL:    strings.TrimSuffix(cfg.Site.BaseURL, "/"),
	}
}

const approvedTemplate = `Hi %s,

Congratulations! Your project request has been approved. You can now access your client dashboard at %s.

We'll be in touch soon with next steps.

Best,
The %s Team`

func (a *alertMgr) ClientApproved(ctx context.Context, req *model.ClientRequest) error {
	subject := "Your project request has been approved!"
	body := fmt.Sprintf(approvedTemplate, req.Name, strings.ToUpper(a.siteHost()), a.siteName)
	return a.mail.SendMessageTo(ctx, &Receiver{Name: req.Name, Email: req.Email}, subject, body)
}

const invitedTemplate = `Hello,

You have been invited to the %s client portal. Set your password using the link below:

%s

The link expires, so please use it soon.

Best,
The %s Team`

func (a *alertMgr) ClientInvited(ctx context.Context, email, link string) error {
	subject := fmt.Sprintf("You're invited to the %s client portal", a.siteName)
	body := fmt.Sprintf(invitedTemplate, a.siteName, link, a.siteName)
	return a.mail.SendMessageTo(ctx, &Receiver{Email: email}, subject, body)
}

func (a *alertMgr) NewClientRequest(ctx context.Context, req *model.ClientRequest) error {
	if !a.ownerReachable() {
		return nil
	}
	subject := "New project request from " + req.Name
	body := fmt.Sprintf("%s <%s> submitted a project request.\n\n%s\n\nReview it at %s%s",
		req.Name, req.Email, req.ProjectBrief, a.siteURL, constants.DashboardPath)
	return a.owner.SendMessageTo(ctx, &Receiver{Email: a.ownerEmail}, subject, body)
}

// PendingDigest lists reqs (a page of the pending queue) out of total pending.
func (a *alertMgr) PendingDigest(ctx context.Context, reqs []*model.ClientRequest, total int64) error {
	if total == 0 || !a.ownerReachable() {
		return nil
	}
	subject := fmt.Sprintf("%d project request(s) awaiting review", total)
	lines := lo.Map(reqs, func(r *model.ClientRequest, _ int) string {
		return fmt.Sprintf("- %s <%s>, submitted %s", r.Name, r.Email, r.CreatedAt.Format("2006-01-02 15:04"))
	})
	body := strings.Join(lines, "\n")
	if more := total - int64(len(reqs)); more > 0 {
		body += fmt.Sprintf("\n...and %d more", more)
	}
	return a.owner.SendMessageTo(ctx, &Receiver{Email: a.ownerEmail}, subject, body)
}

// ownerReachable reports whether owner messages have somewhere to go.
func (a *alertMgr) ownerReachable() bool {
	if _, ok := a.owner.(*webhookAlerter); ok {
		return true
	}
	return a.ownerEmail != ""
}

func (a *alertMgr) siteHost() string {
	host := strings.TrimPrefix(strings.TrimPrefix(a.siteURL, "https://"), "http://")
	if host == "" {
		return a.siteName
	}
	return host
}
