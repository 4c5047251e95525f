package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/portico-hosting/portico/models"
)

// PushNoticeRequest contains an operator notice to queue.
type PushNoticeRequest struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// listNotices handles GET /api/v1/notices
// @Summary List current notices
// @Description Get the transient notice queue, newest first. Notices expire on a background sweep, never on read, so the queue is stable between sweeps.
// @Tags Notices
// @Accept json
// @Produce json
// @Success 200 {object} NoticesResponse
// @Router /notices [get]
func (s *Server) listNotices(c echo.Context) error {
	notices := s.notices.List()

	return c.JSON(http.StatusOK, NoticesResponse{
		Count:   len(notices),
		Notices: notices,
	})
}

// pushNotice handles POST /api/v1/notices
// @Summary Push an operator notice
// @Description Queue a notice for every panel session. It expires after the configured TTL; there is no delete.
// @Tags Notices
// @Accept json
// @Produce json
// @Param notice body PushNoticeRequest true "Notice to queue"
// @Success 201 {object} models.Notice
// @Failure 400 {object} ErrorResponse
// @Router /notices [post]
func (s *Server) pushNotice(c echo.Context) error {
	var req PushNoticeRequest

	if err := c.Bind(&req); err != nil {
		return BadRequestError("Invalid request body", "Failed to parse JSON: "+err.Error())
	}

	if strings.TrimSpace(req.Message) == "" {
		return BadRequestError("Message is required", "message field cannot be empty")
	}

	if req.Level == "" {
		req.Level = models.NoticeLevelInfo
	}
	switch req.Level {
	case models.NoticeLevelInfo, models.NoticeLevelWarning, models.NoticeLevelError:
	default:
		return BadRequestError(
			"Invalid notice level",
			"Level must be one of: info, warning, error. Got: "+req.Level,
		)
	}

	notice := s.notices.Push(req.Level, req.Message)

	s.BroadcastEvent(EventNoticePushed, notice)

	return c.JSON(http.StatusCreated, notice)
}
