package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/datatypes"

	"github.com/b0ase/portal/dao/model"
	"github.com/b0ase/portal/dao/query"
	"github.com/b0ase/portal/internal/payload"
	"github.com/b0ase/portal/internal/resputil"
	"github.com/b0ase/portal/internal/util"
	"github.com/b0ase/portal/pkg/alert"
	"github.com/b0ase/portal/pkg/config"
	"github.com/b0ase/portal/pkg/constants"
	"github.com/b0ase/portal/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewClientRequestMgr)
}

const ownerNotifyTimeout = 30 * time.Second

type ClientRequestMgr struct {
	name        string
	query       *query.Query
	alert       alert.AlertInterface
	emailPolicy string
	siteName    string
	limiter     gin.HandlerFunc
	now         func() time.Time
}

func NewClientRequestMgr(conf *RegisterConfig) Manager {
	return &ClientRequestMgr{
		name:        "client-requests",
		query:       conf.Query,
		alert:       conf.Alert,
		emailPolicy: conf.Config.Notify.ApprovalEmailPolicy,
		siteName:    conf.Config.Site.Name,
		limiter:     conf.Limiter.Handler(),
		now:         conf.now,
	}
}

func (mgr *ClientRequestMgr) GetName() string { return mgr.name }

func (mgr *ClientRequestMgr) RegisterPublic(g *gin.RouterGroup) {
	g.POST("", mgr.limiter, mgr.CreateClientRequest)
}

func (mgr *ClientRequestMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *ClientRequestMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("", mgr.ListClientRequests)
	g.GET("/:id", mgr.GetClientRequest)
	g.POST("/:id/approve", mgr.ApproveClientRequest)
	g.POST("/:id/reject", mgr.RejectClientRequest)
	g.POST("/:id/resend-approval-email", mgr.ResendApprovalEmail)
}

type (
	CreateClientRequestReq struct {
		Name             string   `json:"name" binding:"notblank"`
		Email            string   `json:"email" binding:"notblank"`
		ProjectBrief     string   `json:"project_brief" binding:"notblank"`
		Website          *string  `json:"website"`
		Phone            *string  `json:"phone"`
		LogoURL          *string  `json:"logo_url"`
		Socials          *string  `json:"socials"`
		GithubLinks      *string  `json:"github_links"`
		InspirationLinks *string  `json:"inspiration_links"`
		HowHeard         *string  `json:"how_heard"`
		ProjectTypes     []string `json:"project_types"`
		RequestedBudget  *float64 `json:"requested_budget" binding:"omitempty,gte=0"`
	}

	ListClientRequestsReq struct {
		Status    string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
		PageIndex *int   `form:"page_index" binding:"omitempty,min=0"`
		PageSize  *int   `form:"page_size" binding:"omitempty,min=1"`
	}

	ClientRequestIDReq struct {
		ID string `uri:"id" binding:"required"`
	}

	ApproveReq struct {
		ReviewNotes *string `json:"review_notes"`
	}

	RejectReq struct {
		RejectionReason string `json:"rejection_reason" binding:"notblank"`
	}

	ApproveResp struct {
		ID            string                    `json:"id"`
		Status        model.ClientRequestStatus `json:"status"`
		ClientCreated bool                      `json:"clientCreated"`
		Notification  string                    `json:"notification"`
	}

	RejectResp struct {
		ID     string                    `json:"id"`
		Status model.ClientRequestStatus `json:"status"`
		Mailto string                    `json:"mailto"`
	}

	MessageResp struct {
		Message string `json:"message"`
	}
)

// CreateClientRequest godoc
// @Summary Submit a project request
// @Description Public intake form. The row is stored as pending; duplicates are not merged.
// @Tags ClientRequest
// @Accept json
// @Produce json
// @Param data body CreateClientRequestReq true "request"
// @Success 200 {object} resputil.Response[model.ClientRequest] "Created request"
// @Failure 400 {object} resputil.Response[resputil.FieldsData] "Missing or invalid fields"
// @Failure 500 {object} resputil.Response[any] "other errors"
// @Router /v1/client-requests [post]
func (mgr *ClientRequestMgr) CreateClientRequest(c *gin.Context) {
	var req CreateClientRequestReq
	if !bindJSON(c, &req) {
		intakeCounter.WithLabelValues("invalid").Inc()
		return
	}
	email, ok := bindEmail(c, "email", req.Email)
	if !ok {
		intakeCounter.WithLabelValues("invalid").Inc()
		return
	}

	record := &model.ClientRequest{
		Name:             strings.TrimSpace(req.Name),
		Email:            email,
		ProjectBrief:     strings.TrimSpace(req.ProjectBrief),
		Website:          trimPtr(req.Website),
		Phone:            trimPtr(req.Phone),
		LogoURL:          trimPtr(req.LogoURL),
		Socials:          trimPtr(req.Socials),
		GithubLinks:      trimPtr(req.GithubLinks),
		InspirationLinks: trimPtr(req.InspirationLinks),
		HowHeard:         trimPtr(req.HowHeard),
		RequestedBudget:  req.RequestedBudget,
	}
	if types := lo.Compact(lo.Map(req.ProjectTypes, func(s string, _ int) string {
		return strings.TrimSpace(s)
	})); len(types) > 0 {
		record.ProjectTypes = datatypes.JSONSlice[string](types)
	}

	if err := mgr.query.ClientRequest.Create(c, record); err != nil {
		logutils.Log.Errorf("create client request from %s: %v", record.Email, err)
		intakeCounter.WithLabelValues("error").Inc()
		resputil.Error(c, "Failed to submit request", resputil.NotSpecified)
		return
	}
	intakeCounter.WithLabelValues("created").Inc()
	logutils.WithRequest(record.ID).Infof("client request submitted by %s", record.Email)

	// the owner notification must not hold up or fail the submission
	go func(r model.ClientRequest) {
		ctx, cancel := context.WithTimeout(context.Background(), ownerNotifyTimeout)
		defer cancel()
		if err := mgr.alert.NewClientRequest(ctx, &r); err != nil {
			notificationCounter.WithLabelValues("new-request", "failed").Inc()
			logutils.WithRequest(r.ID).Warnf("notify owner: %v", err)
			return
		}
		notificationCounter.WithLabelValues("new-request", "sent").Inc()
	}(*record)

	resputil.Success(c, record)
}

// ListClientRequests godoc
// @Summary List project requests
// @Description Newest first, optionally filtered by status
// @Tags ClientRequest
// @Produce json
// @Security Bearer
// @Param status query string false "pending, approved or rejected"
// @Param page_index query int false "page index, from 0"
// @Param page_size query int false "page size"
// @Success 200 {object} resputil.Response[payload.ListResp[model.ClientRequest]] "requests"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Router /v1/admin/client-requests [get]
func (mgr *ClientRequestMgr) ListClientRequests(c *gin.Context) {
	var req ListClientRequestsReq
	if !bindQuery(c, &req) {
		return
	}
	offset, limit := payload.Bounds(req.PageIndex, req.PageSize)
	rows, count, err := mgr.query.ClientRequest.List(c, model.ClientRequestStatus(req.Status),
		query.Page{Offset: offset, Limit: limit})
	if err != nil {
		logutils.Log.Errorf("list client requests: %v", err)
		resputil.Error(c, "Failed to list requests", resputil.NotSpecified)
		return
	}
	resputil.Success(c, payload.ListResp[*model.ClientRequest]{Rows: rows, Count: count})
}

// GetClientRequest godoc
// @Summary Get one project request
// @Tags ClientRequest
// @Produce json
// @Security Bearer
// @Param id path string true "request id"
// @Success 200 {object} resputil.Response[model.ClientRequest] "request"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Router /v1/admin/client-requests/{id} [get]
func (mgr *ClientRequestMgr) GetClientRequest(c *gin.Context) {
	var uri ClientRequestIDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, "Invalid request id")
		return
	}
	record, err := mgr.query.ClientRequest.Get(c, uri.ID)
	if err != nil {
		mgr.writeLookupError(c, uri.ID, err)
		return
	}
	resputil.Success(c, record)
}

// ApproveClientRequest godoc
// @Summary Approve a project request
// @Description Marks the request approved, provisions a client for its email and,
// @Description when the status changed, emails the requester.
// @Tags ClientRequest
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "request id"
// @Param data body ApproveReq false "review notes"
// @Success 200 {object} resputil.Response[ApproveResp] "approved"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 409 {object} resputil.Response[any] "Already rejected"
// @Failure 500 {object} resputil.Response[any] "other errors"
// @Router /v1/admin/client-requests/{id}/approve [post]
func (mgr *ClientRequestMgr) ApproveClientRequest(c *gin.Context) {
	var uri ClientRequestIDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, "Invalid request id")
		return
	}
	var req ApproveReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		resputil.BadRequestError(c, "Invalid request body")
		return
	}

	reviewer := util.GetToken(c).Subject
	result, err := mgr.query.ClientRequest.Approve(c, uri.ID, trimPtr(req.ReviewNotes), reviewer, mgr.now())
	if err != nil {
		reviewCounter.WithLabelValues("approve", "error").Inc()
		mgr.writeReviewError(c, uri.ID, err, "Client request has already been rejected")
		return
	}
	l := logutils.WithRequest(uri.ID)
	if result.Changed {
		reviewCounter.WithLabelValues("approve", "changed").Inc()
		l.Infof("approved by %s, client created: %t", reviewer, result.ClientCreated)
	} else {
		reviewCounter.WithLabelValues("approve", "unchanged").Inc()
		l.Infof("already approved, client created: %t", result.ClientCreated)
	}

	resp := ApproveResp{
		ID:            result.Request.ID,
		Status:        result.Request.Status,
		ClientCreated: result.ClientCreated,
		Notification:  constants.NotificationSkipped,
	}
	if result.Changed {
		// the approval is committed at this point, mail failure cannot undo it
		if err := mgr.alert.ClientApproved(c, result.Request); err != nil {
			notificationCounter.WithLabelValues("approval", "failed").Inc()
			l.Errorf("send approval email to %s: %v", result.Request.Email, err)
			resp.Notification = constants.NotificationFailed
			if mgr.emailPolicy == config.EmailPolicyRequired {
				resputil.Error(c, "Request approved but the approval email could not be sent",
					resputil.NotificationFailed)
				return
			}
		} else {
			notificationCounter.WithLabelValues("approval", "sent").Inc()
			resp.Notification = constants.NotificationSent
		}
	}
	resputil.Success(c, resp)
}

// RejectClientRequest godoc
// @Summary Reject a project request
// @Description No email is sent; the response carries a mailto link the admin can use.
// @Tags ClientRequest
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "request id"
// @Param data body RejectReq true "rejection reason"
// @Success 200 {object} resputil.Response[RejectResp] "rejected"
// @Failure 400 {object} resputil.Response[resputil.FieldsData] "Missing reason"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 409 {object} resputil.Response[any] "Already approved"
// @Router /v1/admin/client-requests/{id}/reject [post]
func (mgr *ClientRequestMgr) RejectClientRequest(c *gin.Context) {
	var uri ClientRequestIDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, "Invalid request id")
		return
	}
	var req RejectReq
	if !bindJSON(c, &req) {
		return
	}

	reviewer := util.GetToken(c).Subject
	reason := strings.TrimSpace(req.RejectionReason)
	result, err := mgr.query.ClientRequest.Reject(c, uri.ID, reason, reviewer, mgr.now())
	if err != nil {
		reviewCounter.WithLabelValues("reject", "error").Inc()
		mgr.writeReviewError(c, uri.ID, err, "Client request has already been approved")
		return
	}
	if result.Changed {
		reviewCounter.WithLabelValues("reject", "changed").Inc()
		logutils.WithRequest(uri.ID).Infof("rejected by %s", reviewer)
	} else {
		reviewCounter.WithLabelValues("reject", "unchanged").Inc()
	}

	r := result.Request
	storedReason := lo.FromPtrOr(r.RejectionReason, reason)
	resputil.Success(c, RejectResp{
		ID:     r.ID,
		Status: r.Status,
		Mailto: util.MailtoLink(r.Email, mgr.rejectionSubject(), mgr.rejectionBody(r.Name, storedReason)),
	})
}

// ResendApprovalEmail godoc
// @Summary Send the approval email again
// @Tags ClientRequest
// @Produce json
// @Security Bearer
// @Param id path string true "request id"
// @Success 200 {object} resputil.Response[MessageResp] "sent"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 409 {object} resputil.Response[any] "Request is not approved"
// @Failure 500 {object} resputil.Response[any] "Mail relay missing or failed"
// @Router /v1/admin/client-requests/{id}/resend-approval-email [post]
func (mgr *ClientRequestMgr) ResendApprovalEmail(c *gin.Context) {
	var uri ClientRequestIDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, "Invalid request id")
		return
	}
	record, err := mgr.query.ClientRequest.Get(c, uri.ID)
	if err != nil {
		mgr.writeLookupError(c, uri.ID, err)
		return
	}
	if record.Status != model.ClientRequestStatusApproved {
		resputil.ConflictError(c, fmt.Sprintf("Client request is %s, not approved", record.Status),
			resputil.StatusConflict)
		return
	}

	if err := mgr.alert.ClientApproved(c, record); err != nil {
		notificationCounter.WithLabelValues("approval", "failed").Inc()
		logutils.WithRequest(uri.ID).Errorf("resend approval email to %s: %v", record.Email, err)
		if errors.Is(err, alert.ErrNotConfigured) {
			resputil.Error(c, "Mail relay is not configured", resputil.NotificationFailed)
			return
		}
		resputil.Error(c, "Failed to send approval email", resputil.NotificationFailed)
		return
	}
	notificationCounter.WithLabelValues("approval", "sent").Inc()
	resputil.Success(c, MessageResp{Message: "Approval email sent to " + record.Email})
}

func (mgr *ClientRequestMgr) rejectionSubject() string {
	return "Your " + mgr.siteName + " project request"
}

func (mgr *ClientRequestMgr) rejectionBody(name, reason string) string {
	return fmt.Sprintf("Hi %s,\n\n"+
		"Thank you for your interest in working with us. After reviewing your project request, "+
		"we are unable to take it on at this time.\n\n"+
		"Reason: %s\n\n"+
		"Best,\nThe %s Team", name, reason, mgr.siteName)
}

func (mgr *ClientRequestMgr) writeLookupError(c *gin.Context, id string, err error) {
	if errors.Is(err, query.ErrNotFound) {
		resputil.NotFoundError(c, "Client request not found")
		return
	}
	logutils.WithRequest(id).Errorf("get client request: %v", err)
	resputil.Error(c, "Failed to load request", resputil.NotSpecified)
}

func (mgr *ClientRequestMgr) writeReviewError(c *gin.Context, id string, err error, conflictMsg string) {
	switch {
	case errors.Is(err, query.ErrNotFound):
		resputil.NotFoundError(c, "Client request not found")
	case errors.Is(err, query.ErrStatusConflict):
		resputil.HTTPError(c, http.StatusConflict, conflictMsg, resputil.StatusConflict)
	default:
		logutils.WithRequest(id).Errorf("review client request: %v", err)
		resputil.Error(c, "Failed to update request", resputil.NotSpecified)
	}
}
