package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jakechorley/camp-signup/pkg/core/allocator"
	"github.com/jakechorley/camp-signup/pkg/core/model"
	"github.com/jakechorley/camp-signup/pkg/core/services"
)

type applyRequest struct {
	SlotID int64  `json:"slot_id" binding:"required,min=1"`
	Day    string `json:"day"`
}

type fillAfternoonRequest struct {
	MaxPerPerson *int   `json:"max_per_person" binding:"omitempty,min=0"`
	Seed         *int64 `json:"seed"`
	DryRun       bool   `json:"dry_run"`
}

type backfillTrailsRequest struct {
	Seed   *int64 `json:"seed"`
	DryRun bool   `json:"dry_run"`
}

type batchResponse struct {
	Pool             model.Pool                  `json:"pool"`
	Seed             int64                       `json:"seed"`
	DryRun           bool                        `json:"dry_run"`
	Success          bool                        `json:"success"`
	Committed        bool                        `json:"committed"`
	Created          int                         `json:"created"`
	Skipped          int                         `json:"skipped"`
	ValidationErrors []allocator.ValidationError `json:"validation_errors,omitempty"`
}

func newBatchResponse(result *services.BatchResult) batchResponse {
	return batchResponse{
		Pool:             result.Pool,
		Seed:             result.Seed,
		DryRun:           result.DryRun,
		Success:          result.Success,
		Committed:        result.Committed,
		Created:          len(result.Created),
		Skipped:          result.Skipped,
		ValidationErrors: result.ValidationErrors,
	}
}

// poolParam reads the :pool segment, aborting with 404 for unknown pools
func poolParam(c *gin.Context) (model.Pool, bool) {
	pool := model.Pool(c.Param("pool"))
	if !pool.IsValid() {
		abortWithError(c, http.StatusNotFound, "unknown_pool", "unknown pool "+string(pool))
		return "", false
	}
	return pool, true
}

// dayQuery reads ?day=, which is required for pools with days unless optional is set
func dayQuery(c *gin.Context, pool model.Pool, optional bool) (string, bool) {
	day := c.Query("day")
	if pool.HasDays() && day == "" && !optional {
		abortWithError(c, http.StatusBadRequest, "missing_day", "day is required")
		return "", false
	}
	return day, true
}

func (s *Server) handleListActivities(c *gin.Context) {
	pool, ok := poolParam(c)
	if !ok {
		return
	}
	day, _ := dayQuery(c, pool, true)

	views, err := services.ListActivities(c.Request.Context(), s.store, s.logger, s.cfg, c.GetString(personIDKey), pool, day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": views})
}

func (s *Server) handleListAppliedDays(c *gin.Context) {
	pool, ok := poolParam(c)
	if !ok {
		return
	}

	days, err := services.ListAppliedDays(c.Request.Context(), s.store, s.cfg, c.GetString(personIDKey), pool)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

func (s *Server) handleApply(c *gin.Context) {
	pool, ok := poolParam(c)
	if !ok {
		return
	}

	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if pool.HasDays() && req.Day == "" {
		abortWithError(c, http.StatusBadRequest, "missing_day", "day is required")
		return
	}

	assignment, err := services.AdmitApplication(c.Request.Context(), s.store, s.logger, s.cfg, services.AdmissionRequest{
		PersonID: c.GetString(personIDKey),
		Pool:     pool,
		Day:      req.Day,
		SlotID:   req.SlotID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":         assignment.ID,
		"pool":       assignment.Pool,
		"day":        assignment.Day,
		"slot_id":    assignment.SlotID,
		"status":     assignment.Status,
		"created_at": assignment.CreatedAt,
	})
}

func (s *Server) handleGetApplication(c *gin.Context) {
	pool, ok := poolParam(c)
	if !ok {
		return
	}
	day, ok := dayQuery(c, pool, false)
	if !ok {
		return
	}

	view, err := services.GetApplication(c.Request.Context(), s.store, s.logger, s.cfg, c.GetString(personIDKey), pool, day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleCancel(c *gin.Context) {
	pool, ok := poolParam(c)
	if !ok {
		return
	}
	day, ok := dayQuery(c, pool, false)
	if !ok {
		return
	}

	if err := services.CancelApplication(c.Request.Context(), s.store, s.logger, c.GetString(personIDKey), pool, day); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGroupApplications(c *gin.Context) {
	day := c.Query("day")
	if day == "" {
		abortWithError(c, http.StatusBadRequest, "missing_day", "day is required")
		return
	}

	views, err := services.GroupApplications(c.Request.Context(), s.store, s.logger, s.cfg, c.GetString(personIDKey), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": views})
}

func (s *Server) handleFillAfternoon(c *gin.Context) {
	var req fillAfternoonRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}

	result, err := services.FillAfternoon(c.Request.Context(), s.store, s.logger, s.cfg, services.FillAfternoonOptions{
		MaxPerPerson: req.MaxPerPerson,
		Seed:         req.Seed,
		DryRun:       req.DryRun,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBatchResponse(result))
}

func (s *Server) handleBackfillTrails(c *gin.Context) {
	var req backfillTrailsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}

	result, err := services.BackfillTrails(c.Request.Context(), s.store, s.logger, s.cfg, services.BackfillTrailsOptions{
		Seed:   req.Seed,
		DryRun: req.DryRun,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBatchResponse(result))
}
