package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portico-hosting/portico/internal/integrity"
)

// RepairRequest contains options for a repair pass.
type RepairRequest struct {
	DryRun  bool                `json:"dryRun"`
	MaxRisk integrity.RiskLevel `json:"maxRisk,omitempty"`
}

// auditIntegrity handles GET /api/v1/integrity/audit
// @Summary Audit the allocation database
// @Description Walk every node, allocation, and workload and report invariant violations: duplicate endpoints, orphaned rows, out-of-range ports, and active bindings with no backing allocation.
// @Tags Integrity
// @Accept json
// @Produce json
// @Success 200 {object} integrity.Report
// @Failure 500 {object} ErrorResponse
// @Router /integrity/audit [get]
func (s *Server) auditIntegrity(c echo.Context) error {
	if s.integrity == nil {
		return InternalError("Integrity service not available", "Service not initialized")
	}

	report, err := s.integrity.Audit(c.Request().Context())
	if err != nil {
		return InternalError("Integrity audit failed", err.Error())
	}

	return c.JSON(http.StatusOK, report)
}

// repairIntegrity handles POST /api/v1/integrity/repair
// @Summary Repair detected integrity issues
// @Description Run a fresh audit and apply the fix for every issue at or below the given risk level. Fixes are best-effort: a failed fix is recorded and the pass continues. Under dryRun nothing is written.
// @Tags Integrity
// @Accept json
// @Produce json
// @Param options body RepairRequest true "Repair options"
// @Success 200 {object} integrity.RepairResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /integrity/repair [post]
func (s *Server) repairIntegrity(c echo.Context) error {
	var req RepairRequest

	if err := c.Bind(&req); err != nil {
		return BadRequestError("Invalid request body", "Failed to parse JSON: "+err.Error())
	}

	switch req.MaxRisk {
	case "", integrity.RiskLow, integrity.RiskMedium, integrity.RiskHigh:
	default:
		return BadRequestError(
			"Invalid risk level",
			"maxRisk must be one of: low, medium, high. Got: "+string(req.MaxRisk),
		)
	}

	if s.integrity == nil {
		return InternalError("Integrity service not available", "Service not initialized")
	}

	result, err := s.integrity.Repair(c.Request().Context(), integrity.RepairOptions{
		DryRun:  req.DryRun,
		MaxRisk: req.MaxRisk,
	})
	if err != nil {
		return InternalError("Integrity repair failed", err.Error())
	}

	// Repairs rewrite storage behind the registry's back; refresh so the
	// snapshot reflects them before anyone reads it.
	if !req.DryRun && result.Fixed > 0 {
		if err := s.registry.Refresh(c.Request().Context()); err != nil {
			s.debugLog("refresh after repair failed: %v", err)
		}
		s.BroadcastEvent(EventFleetRefresh, nil)
	}

	return c.JSON(http.StatusOK, result)
}
