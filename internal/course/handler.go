package course

import (
	"net/http"
	"strconv"

	"techdeputies/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      List courses
// @Tags         courses
// @Produce      json
// @Success      200 {array} course.Course
// @Failure      500 {object} api.ErrorResponse
// @Router       /courses [get]
func (h *Handler) ListCourses(c *gin.Context) {
	courses, err := h.service.ListCourses(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

// @Summary      Get a course
// @Tags         courses
// @Produce      json
// @Param        courseID path int true "Course ID"
// @Success      200 {object} course.Course
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /courses/{courseID} [get]
func (h *Handler) GetCourse(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("courseID"))
	if err != nil {
		api.RespondBadRequest(c, "invalid course ID")
		return
	}

	course, err := h.service.GetCourse(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// @Summary      Create a course
// @Description  Admin-only: add a course to the catalog
// @Tags         admin,courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body course.CreateCourseRequest true "Course payload"
// @Success      201 {object} course.Course
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/courses [post]
func (h *Handler) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if !api.BindJSON(c, &req) {
		return
	}

	course, err := h.service.CreateCourse(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}
