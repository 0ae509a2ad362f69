package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/b0ase/portal/internal/resputil"
	"github.com/b0ase/portal/pkg/logutils"
	"github.com/b0ase/portal/pkg/scraper"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewScrapeMgr)
}

type ScrapeMgr struct {
	name   string
	runner scraper.Runner
}

func NewScrapeMgr(conf *RegisterConfig) Manager {
	return &ScrapeMgr{
		name:   "scrape",
		runner: conf.Scraper,
	}
}

func (mgr *ScrapeMgr) GetName() string { return mgr.name }

func (mgr *ScrapeMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ScrapeMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *ScrapeMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("/fiverr", mgr.ScrapeFiverr)
}

type (
	ScrapeFiverrReq struct {
		TargetURL string `json:"targetUrl" binding:"notblank"`
	}

	ScrapeFailure struct {
		ExitCode *int `json:"exitCode,omitempty"`
	}
)

// ScrapeFiverr godoc
// @Summary Scrape a Fiverr gig
// @Description Runs the configured scraper backend against one fiverr.com URL.
// @Tags Scrape
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body ScrapeFiverrReq true "target url"
// @Success 200 {object} resputil.Response[scraper.Gig] "gig"
// @Failure 400 {object} resputil.Response[any] "Invalid url"
// @Failure 500 {object} resputil.Response[ScrapeFailure] "Scraper missing or failed"
// @Failure 504 {object} resputil.Response[any] "Scraper timed out"
// @Router /v1/admin/scrape/fiverr [post]
func (mgr *ScrapeMgr) ScrapeFiverr(c *gin.Context) {
	var req ScrapeFiverrReq
	if !bindJSON(c, &req) {
		return
	}
	target := strings.TrimSpace(req.TargetURL)
	if err := scraper.ValidateTarget(target); err != nil {
		resputil.BadRequestError(c, "targetUrl must be an https fiverr.com URL")
		return
	}
	if mgr.runner == nil {
		resputil.Error(c, "Scraper is not configured", resputil.ScrapeFailed)
		return
	}

	gig, err := mgr.runner.Scrape(c, target)
	if err != nil {
		logutils.Log.WithField("url", target).Error("scrape fiverr: ", err)
		mgr.writeScrapeError(c, err)
		return
	}
	resputil.Success(c, gig)
}

func (mgr *ScrapeMgr) writeScrapeError(c *gin.Context, err error) {
	var (
		exitErr   *scraper.ExitError
		outputErr *scraper.OutputError
	)
	switch {
	case errors.Is(err, scraper.ErrNotConfigured):
		resputil.Error(c, "Scraper API key is not configured", resputil.ScrapeFailed)
	case errors.Is(err, scraper.ErrTimeout):
		resputil.HTTPError(c, http.StatusGatewayTimeout, "Scraper timed out", resputil.ScrapeFailed)
	case errors.Is(err, scraper.ErrNoData):
		resputil.HTTPError(c, http.StatusBadGateway, "No gig data found on the page", resputil.ScrapeFailed)
	case errors.As(err, &exitErr):
		code := exitErr.Code
		c.JSON(http.StatusInternalServerError, resputil.Response[ScrapeFailure]{
			Code: resputil.ScrapeFailed,
			Data: ScrapeFailure{ExitCode: &code},
			Msg:  "Scraper process failed",
		})
	case errors.As(err, &outputErr):
		resputil.Error(c, "Scraper returned unreadable output", resputil.ScrapeFailed)
	default:
		resputil.Error(c, "Failed to scrape the page", resputil.ScrapeFailed)
	}
}
