package handler

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/b0ase/portal/dao/model"
	"github.com/b0ase/portal/dao/query"
	"github.com/b0ase/portal/internal/payload"
	"github.com/b0ase/portal/internal/resputil"
	"github.com/b0ase/portal/internal/util"
	"github.com/b0ase/portal/pkg/alert"
	"github.com/b0ase/portal/pkg/constants"
	"github.com/b0ase/portal/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewClientMgr)
}

type ClientMgr struct {
	name     string
	query    *query.Query
	alert    alert.AlertInterface
	tokenMgr *util.TokenManager
	siteURL  string
}

func NewClientMgr(conf *RegisterConfig) Manager {
	return &ClientMgr{
		name:     "clients",
		query:    conf.Query,
		alert:    conf.Alert,
		tokenMgr: conf.TokenMgr,
		siteURL:  strings.TrimSuffix(conf.Config.Site.BaseURL, "/"),
	}
}

func (mgr *ClientMgr) GetName() string { return mgr.name }

func (mgr *ClientMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ClientMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *ClientMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("", mgr.ListClients)
	g.POST("/invite", mgr.InviteClient)
}

type (
	InviteClientReq struct {
		Email string `json:"email" binding:"notblank"`
	}

	InviteClientResp struct {
		Email     string    `json:"email"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
)

// ListClients godoc
// @Summary List provisioned clients
// @Tags Client
// @Produce json
// @Security Bearer
// @Param page_index query int false "page index, from 0"
// @Param page_size query int false "page size"
// @Success 200 {object} resputil.Response[payload.ListResp[model.Client]] "clients"
// @Router /v1/admin/clients [get]
func (mgr *ClientMgr) ListClients(c *gin.Context) {
	var req payload.ListReqQuery
	if !bindQuery(c, &req) {
		return
	}
	offset, limit := req.Bounds()
	rows, count, err := mgr.query.Client.List(c, query.Page{Offset: offset, Limit: limit})
	if err != nil {
		logutils.Log.Errorf("list clients: %v", err)
		resputil.Error(c, "Failed to list clients", resputil.NotSpecified)
		return
	}
	resputil.Success(c, payload.ListResp[*model.Client]{Rows: rows, Count: count})
}

// InviteClient godoc
// @Summary Invite a client to set a portal password
// @Description Mails a signed, expiring set-password link to the address.
// @Tags Client
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body InviteClientReq true "invitee"
// @Success 200 {object} resputil.Response[InviteClientResp] "invited"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Mail relay missing or failed"
// @Router /v1/admin/clients/invite [post]
func (mgr *ClientMgr) InviteClient(c *gin.Context) {
	var req InviteClientReq
	if !bindJSON(c, &req) {
		return
	}
	email, ok := bindEmail(c, "email", req.Email)
	if !ok {
		return
	}
	email = strings.ToLower(email)

	token, expiresAt, err := mgr.tokenMgr.CreateInviteToken(email)
	if err != nil {
		logutils.Log.Errorf("create invite token for %s: %v", email, err)
		resputil.Error(c, "Failed to create invitation", resputil.NotSpecified)
		return
	}
	link := mgr.siteURL + constants.SetPasswordPath + "?token=" + url.QueryEscape(token)

	if err := mgr.alert.ClientInvited(c, email, link); err != nil {
		notificationCounter.WithLabelValues("invite", "failed").Inc()
		logutils.Log.Errorf("send invitation to %s: %v", email, err)
		if errors.Is(err, alert.ErrNotConfigured) {
			resputil.Error(c, "Mail relay is not configured", resputil.NotificationFailed)
			return
		}
		resputil.Error(c, "Failed to send invitation", resputil.NotificationFailed)
		return
	}
	notificationCounter.WithLabelValues("invite", "sent").Inc()
	logutils.Log.Infof("invitation sent to %s by %s", email, util.GetToken(c).Subject)
	resputil.Success(c, InviteClientResp{Email: email, ExpiresAt: expiresAt})
}
