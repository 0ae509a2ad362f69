package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/b0ase/portal/dao/model"
	"github.com/b0ase/portal/dao/query"
	"github.com/b0ase/portal/internal/payload"
	"github.com/b0ase/portal/internal/resputil"
	"github.com/b0ase/portal/internal/util"
	"github.com/b0ase/portal/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewDiaryMgr)
}

type DiaryMgr struct {
	name  string
	query *query.Query
	now   func() time.Time
}

func NewDiaryMgr(conf *RegisterConfig) Manager {
	return &DiaryMgr{
		name:  "diary",
		query: conf.Query,
		now:   conf.now,
	}
}

func (mgr *DiaryMgr) GetName() string { return mgr.name }

func (mgr *DiaryMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *DiaryMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *DiaryMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("/entries", mgr.ListDiaryEntries)
	g.POST("/entries", mgr.CreateDiaryEntry)
	g.PUT("/action-items/:id", mgr.UpdateActionItem)
}

type (
	CreateDiaryEntryReq struct {
		Title       string   `json:"title" binding:"notblank"`
		Summary     string   `json:"summary" binding:"notblank"`
		ActionItems []string `json:"action_items"`
	}

	ActionItemIDReq struct {
		ID string `uri:"id" binding:"required"`
	}

	UpdateActionItemReq struct {
		IsCompleted *bool `json:"is_completed" binding:"required"`
	}
)

// CreateDiaryEntry godoc
// @Summary Record a diary entry
// @Description Blank action items are dropped. The entry and its items are stored together or not at all.
// @Tags Diary
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body CreateDiaryEntryReq true "entry"
// @Success 201 {object} resputil.Response[model.DiaryEntry] "Created entry"
// @Failure 400 {object} resputil.Response[resputil.FieldsData] "Missing title or summary"
// @Failure 500 {object} resputil.Response[any] "other errors"
// @Router /v1/admin/diary/entries [post]
func (mgr *DiaryMgr) CreateDiaryEntry(c *gin.Context) {
	var req CreateDiaryEntryReq
	if !bindJSON(c, &req) {
		return
	}
	author := util.GetToken(c).Subject

	entry := &model.DiaryEntry{
		Author:         author,
		Title:          strings.TrimSpace(req.Title),
		Summary:        strings.TrimSpace(req.Summary),
		EntryTimestamp: mgr.now(),
	}
	texts := lo.Compact(lo.Map(req.ActionItems, func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	entry.ActionItems = lo.Map(texts, func(text string, _ int) model.DiaryActionItem {
		return model.DiaryActionItem{Text: text}
	})

	if err := mgr.query.Diary.Create(c, entry); err != nil {
		logutils.Log.Errorf("create diary entry for %s: %v", author, err)
		resputil.Error(c, "Failed to create diary entry", resputil.NotSpecified)
		return
	}
	logutils.Log.Infof("diary entry %s created by %s with %d action items", entry.ID, author, len(entry.ActionItems))
	resputil.SuccessWithStatus(c, http.StatusCreated, entry)
}

// ListDiaryEntries godoc
// @Summary List diary entries
// @Description The caller's entries newest first, each with its action items
// @Tags Diary
// @Produce json
// @Security Bearer
// @Param page_index query int false "page index, from 0"
// @Param page_size query int false "page size"
// @Success 200 {object} resputil.Response[payload.ListResp[model.DiaryEntry]] "entries"
// @Router /v1/admin/diary/entries [get]
func (mgr *DiaryMgr) ListDiaryEntries(c *gin.Context) {
	var req payload.ListReqQuery
	if !bindQuery(c, &req) {
		return
	}
	offset, limit := req.Bounds()
	rows, count, err := mgr.query.Diary.List(c, util.GetToken(c).Subject, query.Page{Offset: offset, Limit: limit})
	if err != nil {
		logutils.Log.Errorf("list diary entries: %v", err)
		resputil.Error(c, "Failed to list diary entries", resputil.NotSpecified)
		return
	}
	resputil.Success(c, payload.ListResp[*model.DiaryEntry]{Rows: rows, Count: count})
}

// UpdateActionItem godoc
// @Summary Mark an action item done or open
// @Tags Diary
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "action item id"
// @Param data body UpdateActionItemReq true "completion"
// @Success 200 {object} resputil.Response[model.DiaryActionItem] "updated item"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Router /v1/admin/diary/action-items/{id} [put]
func (mgr *DiaryMgr) UpdateActionItem(c *gin.Context) {
	var uri ActionItemIDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, "Invalid action item id")
		return
	}
	var req UpdateActionItemReq
	if !bindJSON(c, &req) {
		return
	}

	item, err := mgr.query.Diary.SetActionItemCompleted(c, util.GetToken(c).Subject, uri.ID, *req.IsCompleted)
	if err != nil {
		if errors.Is(err, query.ErrNotFound) {
			resputil.NotFoundError(c, "Action item not found")
			return
		}
		logutils.Log.Errorf("update action item %s: %v", uri.ID, err)
		resputil.Error(c, "Failed to update action item", resputil.NotSpecified)
		return
	}
	resputil.Success(c, item)
}
