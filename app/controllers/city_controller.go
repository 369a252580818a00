package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/geo-reconciler/app/config"
	"github.com/geo-reconciler/app/models"
	"github.com/geo-reconciler/app/requests"
	"github.com/geo-reconciler/app/responses"
	"github.com/geo-reconciler/app/services"
	"github.com/geo-reconciler/helpers/utils"
	"github.com/geo-reconciler/internal/reconcile"
)

// CityController handles city resolution, reconciliation and merge requests.
type CityController struct {
	resolveService *services.ResolveService
	sessionService *services.SessionService
	cacheService   services.ICacheService
	logger         *zap.Logger
}

// NewCityController creates a CityController.
func NewCityController(
	resolveService *services.ResolveService,
	sessionService *services.SessionService,
	cacheService services.ICacheService,
	logger *zap.Logger,
) *CityController {
	return &CityController{
		resolveService: resolveService,
		sessionService: sessionService,
		cacheService:   cacheService,
		logger:         logger,
	}
}

// ResolveCity resolves one raw label.
func (cc *CityController) ResolveCity(c *gin.Context) {
	var req requests.ResolveCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	threshold := pickThreshold(req.Threshold)
	startTime := time.Now()

	// The cache key carries directory version, threshold and normalized
	// label; a hit can only replay a resolution for these exact inputs.
	cacheKey, keyErr := cc.resolveService.ResolutionCacheKey(req.City, threshold)
	useCache := req.UseCache && keyErr == nil

	if useCache {
		if cached, found, err := cc.cacheService.Get(c.Request.Context(), cacheKey); err == nil && found {
			c.JSON(http.StatusOK, responses.ResolveCityResponse{
				Query:            cached.Query,
				Match:            cached.Match,
				Candidates:       cached.Candidates,
				Threshold:        cached.Threshold,
				DirectoryVersion: cached.DirectoryVersion,
				CacheHit:         true,
				ProcessingTimeMs: time.Since(startTime).Milliseconds(),
			})
			return
		}
	}

	result, err := cc.resolveService.ResolveCity(req.City, threshold)
	if err != nil {
		status, code := resolveErrorStatus(err)
		c.JSON(status, responses.ErrorResponse{Error: code, Message: err.Error()})
		return
	}

	if useCache {
		cc.cacheService.Set(c.Request.Context(), cacheKey, result)
	}

	c.JSON(http.StatusOK, responses.ResolveCityResponse{
		Query:            result.Query,
		Match:            result.Match,
		Candidates:       result.Candidates,
		Threshold:        result.Threshold,
		DirectoryVersion: result.DirectoryVersion,
		CacheHit:         false,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// Reconcile runs a batch against the directory. Small batches run inline and
// return the full result; async requests get a job id to poll.
func (cc *CityController) Reconcile(c *gin.Context) {
	var req requests.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	threshold := pickThreshold(req.Threshold)
	records := toSourceRecords(req.Records)
	if req.TrimHeader {
		records = reconcile.TrimHeaderRecord(records)
	}
	sheet := req.Sheet
	if sheet == "" {
		sheet = "batch"
	}

	if req.Async {
		jobID := utils.GenerateShortID()
		job, err := cc.resolveService.StartReconcileJob(jobID, records, threshold, sheet)
		if err != nil {
			status, code := resolveErrorStatus(err)
			c.JSON(status, responses.ErrorResponse{Error: code, Message: err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, responses.JobResponse{
			JobID:   job.ID,
			Status:  job.Status,
			Total:   job.Total,
			Message: "reconciliation started",
		})
		return
	}

	startTime := time.Now()
	resolved, stats, cache, err := cc.resolveService.Reconcile(records, threshold, sheet, nil)
	if err != nil {
		status, code := resolveErrorStatus(err)
		c.JSON(status, responses.ErrorResponse{Error: code, Message: err.Error()})
		return
	}

	sessionID := utils.GenerateUUID()
	if _, err := cc.sessionService.Save(c.Request.Context(), sessionID, sheet, threshold, resolved, cache, stats); err != nil {
		cc.logger.Error("session save failed", zap.Error(err), zap.String("session_id", sessionID))
	}

	c.JSON(http.StatusOK, responses.ReconcileResponse{
		SessionID:        sessionID,
		Records:          resolved,
		Stats:            stats,
		TotalDuplicates:  stats.TotalDuplicates(),
		Threshold:        threshold,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// Merge unions two collections into one deduplicated set.
func (cc *CityController) Merge(c *gin.Context) {
	var req requests.MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	threshold := pickThreshold(req.Threshold)
	startTime := time.Now()

	merged, stats, err := cc.resolveService.Merge(
		toSourceRecords(req.First), toSourceRecords(req.Second), threshold)
	if err != nil {
		status, code := resolveErrorStatus(err)
		c.JSON(status, responses.ErrorResponse{Error: code, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, responses.MergeResponse{
		Records:          merged,
		Stats:            stats,
		Threshold:        threshold,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// GetJobStatus polls an asynchronous reconciliation.
func (cc *CityController) GetJobStatus(c *gin.Context) {
	job, err := cc.resolveService.GetJob(c.Param("jobID"))
	if err != nil {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "JOB_NOT_FOUND",
			Message: err.Error(),
		})
		return
	}

	resp := responses.JobStatusResponse{
		JobID:     job.ID,
		Status:    job.Status,
		Processed: job.Processed,
		Total:     job.Total,
		Stats:     job.Stats,
		Error:     job.Error,
	}
	if job.Status == services.JobStatusCompleted {
		resp.Records = job.Records
	}
	c.JSON(http.StatusOK, resp)
}

// GetSession returns a stored reconciliation session.
func (cc *CityController) GetSession(c *gin.Context) {
	session, err := cc.sessionService.Get(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, responses.ErrorResponse{
				Error:   "SESSION_NOT_FOUND",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "SESSION_LOAD_ERROR",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, sessionResponse(session))
}

// ApplyOverride applies manual row choices to a stored session.
func (cc *CityController) ApplyOverride(c *gin.Context) {
	var req requests.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	dir, err := cc.resolveService.Directory()
	if err != nil {
		status, code := resolveErrorStatus(err)
		c.JSON(status, responses.ErrorResponse{Error: code, Message: err.Error()})
		return
	}

	overrides := make(map[int]string, len(req.Overrides))
	for _, item := range req.Overrides {
		overrides[item.RowID] = item.Value
	}

	session, err := cc.sessionService.ApplyOverrides(c.Request.Context(), c.Param("sessionID"), overrides, dir)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, responses.ErrorResponse{
				Error:   "SESSION_NOT_FOUND",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "OVERRIDE_ERROR",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, sessionResponse(session))
}

// HealthCheck reports process and directory health.
func (cc *CityController) HealthCheck(c *gin.Context) {
	status, err := cc.resolveService.DirectoryStatus()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, responses.HealthCheckResponse{
			Status:        "degraded",
			UptimeSeconds: int64(time.Since(cc.resolveService.GetStartTime()).Seconds()),
		})
		return
	}
	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:           "healthy",
		DirectoryVersion: status.Version,
		DirectoryEntries: status.DomesticEntries,
		UptimeSeconds:    int64(time.Since(cc.resolveService.GetStartTime()).Seconds()),
	})
}

func sessionResponse(session *services.Session) responses.SessionResponse {
	return responses.SessionResponse{
		ID:         session.ID,
		Sheet:      session.Sheet,
		Threshold:  session.Threshold,
		Records:    session.Records,
		Candidates: session.Candidates,
		Stats:      session.Stats,
		CreatedAt:  session.CreatedAt,
		UpdatedAt:  session.UpdatedAt,
	}
}

func pickThreshold(override *float64) float64 {
	if override != nil {
		return *override
	}
	return config.C.Thresholds.Accept
}

func toSourceRecords(payloads []requests.SourceRecordPayload) []models.SourceRecord {
	records := make([]models.SourceRecord, len(payloads))
	for i, p := range payloads {
		records[i] = models.SourceRecord{Label: p.Label, Extra: p.Extra}
	}
	return records
}

func resolveErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrEmptyLabel):
		return http.StatusBadRequest, "EMPTY_LABEL"
	case errors.Is(err, services.ErrDirectoryNotLoaded):
		return http.StatusServiceUnavailable, "DIRECTORY_NOT_LOADED"
	default:
		return http.StatusBadRequest, "RESOLVE_ERROR"
	}
}
