package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crestwood-digital/school-admin-api/internal/service"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
	"github.com/crestwood-digital/school-admin-api/pkg/response"
)

// AttendanceHandler wires HTTP endpoints to the attendance service.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Mark godoc
// @Summary Mark class attendance
// @Description Record a class attendance sheet for one date atomically
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.AttendanceBatchRequest true "Attendance batch"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.AttendanceBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	records, err := h.service.MarkBatch(c.Request.Context(), sess.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, records)
}

// ListByClass godoc
// @Summary Class attendance sheet
// @Tags Attendance
// @Produce json
// @Param class_id query int true "Class ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) ListByClass(c *gin.Context) {
	records, err := h.service.ListByClassDate(c.Request.Context(), queryInt64(c, "class_id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// ListByStudent godoc
// @Summary Student attendance history
// @Tags Attendance
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id}/attendance [get]
func (h *AttendanceHandler) ListByStudent(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	records, err := h.service.ListByStudent(c.Request.Context(), sess.UserID, actorRole(c, sess), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
