package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PlanSourceRequest carries a provisioning plan as YAML source text.
type PlanSourceRequest struct {
	Source string `json:"source"`
}

// parsePlan handles POST /api/v1/plans/parse
// @Summary Parse and validate a provisioning plan
// @Description Decode the YAML source and report every validation finding without touching the fleet. Overlapping ranges come back as warnings since range creation is idempotent.
// @Tags Plans
// @Accept json
// @Produce json
// @Param plan body PlanSourceRequest true "Plan YAML source"
// @Success 200 {object} plan.ParseResult
// @Failure 400 {object} plan.ParseResult
// @Router /plans/parse [post]
func (s *Server) parsePlan(c echo.Context) error {
	var req PlanSourceRequest

	if err := c.Bind(&req); err != nil {
		return BadRequestError("Invalid request body", "Failed to parse JSON: "+err.Error())
	}
	if req.Source == "" {
		return BadRequestError("Plan source is required", "source field cannot be empty")
	}

	if s.plans == nil {
		return InternalError("Plan service not available", "Service not initialized")
	}

	// Findings travel in the result; the error only flags their presence
	result, err := s.plans.Parse([]byte(req.Source))
	if err != nil {
		return c.JSON(http.StatusBadRequest, result)
	}

	return c.JSON(http.StatusOK, result)
}

// applyPlan handles POST /api/v1/plans/apply
// @Summary Apply a provisioning plan
// @Description Parse the YAML source and ensure every named node and allocation range exists. Application is idempotent and best-effort: existing steps are skipped, failed steps are recorded without stopping the rest.
// @Tags Plans
// @Accept json
// @Produce json
// @Param plan body PlanSourceRequest true "Plan YAML source"
// @Success 200 {object} models.PlanRecord
// @Failure 400 {object} plan.ParseResult
// @Failure 500 {object} ErrorResponse
// @Router /plans/apply [post]
func (s *Server) applyPlan(c echo.Context) error {
	var req PlanSourceRequest

	if err := c.Bind(&req); err != nil {
		return BadRequestError("Invalid request body", "Failed to parse JSON: "+err.Error())
	}
	if req.Source == "" {
		return BadRequestError("Plan source is required", "source field cannot be empty")
	}

	if s.plans == nil {
		return InternalError("Plan service not available", "Service not initialized")
	}

	result, err := s.plans.Parse([]byte(req.Source))
	if err != nil {
		return c.JSON(http.StatusBadRequest, result)
	}

	record, err := s.plans.Apply(c.Request().Context(), result.Definition)
	if err != nil {
		return InternalError("Failed to apply plan", err.Error())
	}

	s.BroadcastEvent(EventPlanApplied, record)

	return c.JSON(http.StatusOK, record)
}

// listPlans handles GET /api/v1/plans
// @Summary List applied plan records
// @Description Get the stored outcomes of past plan applications, most recent first.
// @Tags Plans
// @Accept json
// @Produce json
// @Success 200 {object} PlanRecordsResponse
// @Failure 500 {object} ErrorResponse
// @Router /plans [get]
func (s *Server) listPlans(c echo.Context) error {
	records, err := s.storage.ListPlanRecords()
	if err != nil {
		return InternalError("Failed to list plans", err.Error())
	}

	return c.JSON(http.StatusOK, PlanRecordsResponse{
		Count: len(records),
		Plans: records,
	})
}

// getPlan handles GET /api/v1/plans/:id
// @Summary Get an applied plan record
// @Description Retrieve the per-step outcome of one plan application.
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path string true "Plan record ID"
// @Success 200 {object} models.PlanRecord
// @Failure 404 {object} ErrorResponse
// @Router /plans/{id} [get]
func (s *Server) getPlan(c echo.Context) error {
	id := c.Param("id")

	record, err := s.storage.GetPlanRecord(id)
	if err != nil {
		return NotFoundError("Plan", id)
	}

	return c.JSON(http.StatusOK, record)
}
