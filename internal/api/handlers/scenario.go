package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"powersimdata/internal/analysis"
	"powersimdata/internal/api/models"
	"powersimdata/internal/data"
	"powersimdata/internal/model"
	"powersimdata/internal/scenario"
)

// ScenarioSource lists scenarios and opens them by id or name.
type ScenarioSource interface {
	List(ctx context.Context) (*data.ScenarioList, error)
	Open(ctx context.Context, key string) (scenario.Scenario, error)
}

// ScenarioHandler serves scenario data and statistics.
type ScenarioHandler struct {
	source ScenarioSource
	infos  *data.MemoryCache
}

// NewScenarioHandler creates a scenario handler. infos caches ScenarioInfo
// values per scenario and may be nil.
func NewScenarioHandler(source ScenarioSource, infos *data.MemoryCache) *ScenarioHandler {
	return &ScenarioHandler{source: source, infos: infos}
}

// ListScenarios handles GET /api/v1/scenarios
func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	list, err := h.source.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	state := c.Query("state")
	resp := models.ScenarioListResponse{Scenarios: []models.ScenarioInfo{}}
	for _, r := range list.Records {
		if state != "" && r.State != state {
			continue
		}
		resp.Scenarios = append(resp.Scenarios, models.ScenarioInfo{
			ID:           r.ID,
			Plan:         r.Plan,
			Name:         r.Name,
			State:        r.State,
			Interconnect: r.Interconnect,
			StartDate:    r.StartDate,
			EndDate:      r.EndDate,
			Engine:       r.Engine,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// GetInput handles GET /api/v1/scenarios/:scenario/input/:field
func (h *ScenarioHandler) GetInput(c *gin.Context) {
	var req models.ProfileRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	start, end, ok := parseWindow(c, req.WindowRequest)
	if !ok {
		return
	}
	s, err := h.source.Open(c.Request.Context(), c.Param("scenario"))
	if err != nil {
		respondErr(c, err)
		return
	}
	field := c.Param("field")
	if !contains(data.ProfileFields, field) {
		respondErr(c, &data.InvalidFieldError{Field: field, Allowed: data.ProfileFields})
		return
	}
	p, err := s.Profile(c.Request.Context(), field)
	if err != nil {
		respondErr(c, err)
		return
	}
	ids := p.Columns()
	if req.Columns != "" {
		if ids, err = parseIDs(req.Columns); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_COLUMNS", err.Error())
			return
		}
	}
	p = p.Select(ids, start, end)

	if req.Format == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Status(http.StatusOK)
		if err := model.WriteProfileCSV(c.Writer, p); err != nil {
			_ = c.Error(err)
		}
		return
	}
	resp := models.ProfileResponse{
		Name:    p.Name,
		Columns: p.Columns(),
		Times:   p.Times(),
		Values:  make([][]float64, p.Len()),
	}
	for row := range resp.Values {
		resp.Values[row] = make([]float64, len(resp.Columns))
		for i, id := range resp.Columns {
			resp.Values[row][i] = p.At(row, id)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ScenarioHandler) info(c *gin.Context) (*analysis.ScenarioInfo, bool) {
	ctx := c.Request.Context()
	s, err := h.source.Open(ctx, c.Param("scenario"))
	if err != nil {
		respondErr(c, err)
		return nil, false
	}
	key := data.GenerateCacheKey("info", s.Record().ID)
	if v, ok := h.infos.Get(key); ok {
		return v.(*analysis.ScenarioInfo), true
	}
	info, err := analysis.NewScenarioInfo(ctx, s)
	if err != nil {
		respondErr(c, err)
		return nil, false
	}
	h.infos.Set(key, info)
	return info, true
}

// GetInfo handles GET /api/v1/scenarios/:scenario/info
func (h *ScenarioHandler) GetInfo(c *gin.Context) {
	var req models.InfoRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	start, end, ok := parseWindow(c, req.WindowRequest)
	if !ok {
		return
	}
	info, ok := h.info(c)
	if !ok {
		return
	}
	area := req.Area
	if area == "" {
		area = analysis.AreaAll
	}
	demand, err := info.Demand(area, start, end)
	if err != nil {
		respondErr(c, err)
		return
	}
	types := []string{req.Resource}
	if req.Resource == "" {
		if types, err = info.AvailableResources(area); err != nil {
			respondErr(c, err)
			return
		}
	}
	resp := models.InfoResponse{
		Scenario:  info.Record.ID,
		Area:      area,
		Window:    window(info, start, end),
		Demand:    demand,
		Resources: make([]models.ResourceDetail, 0, len(types)),
	}
	for _, t := range types {
		d, err := resourceDetail(info, t, area, start, end)
		if err != nil {
			respondErr(c, err)
			return
		}
		resp.Resources = append(resp.Resources, d)
	}
	c.JSON(http.StatusOK, resp)
}

// RankResources handles GET /api/v1/scenarios/:scenario/rank
func (h *ScenarioHandler) RankResources(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	start, end, ok := parseWindow(c, req.WindowRequest)
	if !ok {
		return
	}
	info, ok := h.info(c)
	if !ok {
		return
	}
	area := req.Area
	if area == "" {
		area = analysis.AreaAll
	}
	ranked, err := info.RankResources(area, start, end)
	if err != nil {
		respondErr(c, err)
		return
	}
	resp := models.RankResponse{Scenario: info.Record.ID, Area: area, Rankings: make([]models.Ranking, len(ranked))}
	for i, r := range ranked {
		resp.Rankings[i] = models.Ranking{
			Rank:           i + 1,
			Type:           r.Type,
			Capacity:       r.Capacity,
			Generation:     r.Generation,
			CapacityFactor: r.CapacityFactor,
			Curtailment:    r.Curtailment,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func resourceDetail(info *analysis.ScenarioInfo, gentype, area string, start, end time.Time) (models.ResourceDetail, error) {
	d := models.ResourceDetail{Type: gentype}
	var err error
	if d.Capacity, err = info.Capacity(gentype, area); err != nil {
		return d, err
	}
	if d.Generation, err = info.Generation(gentype, area, start, end); err != nil {
		return d, err
	}
	if d.Capacity > 0 {
		cf, err := info.CapacityFactor(gentype, area, start, end)
		if err != nil {
			return d, err
		}
		d.CapacityFactor = &cf
	}
	if !model.IsProfileResource(gentype) {
		return d, nil
	}
	res, err := info.ProfileResource(gentype, area, start, end)
	if err != nil {
		return d, err
	}
	d.ProfileResource = &res
	if res > 0 {
		curtailment, err := info.Curtailment(gentype, area, start, end)
		if err != nil {
			return d, err
		}
		d.Curtailment = &curtailment
	}
	if d.Capacity > 0 {
		cf, err := info.NoCongestCapacityFactor(gentype, area, start, end)
		if err != nil {
			return d, err
		}
		d.NoCongestCapacityFactor = &cf
	}
	return d, nil
}

func window(info *analysis.ScenarioInfo, start, end time.Time) models.TimeWindow {
	first, last := info.Window()
	if start.IsZero() {
		start = first
	}
	if end.IsZero() {
		end = last
	}
	return models.TimeWindow{Start: start, End: end}
}

func parseWindow(c *gin.Context, req models.WindowRequest) (time.Time, time.Time, bool) {
	var start, end time.Time
	var err error
	if req.Start != "" {
		if start, err = model.ParseTime(req.Start); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
			return start, end, false
		}
	}
	if req.End != "" {
		if end, err = model.ParseTime(req.End); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
			return start, end, false
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", "end must not be before start")
		return start, end, false
	}
	return start, end, true
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errors.Errorf("invalid column id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
