package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/colegio-sanjuan/portal-api/internal/models"
	"github.com/colegio-sanjuan/portal-api/internal/service"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
	"github.com/colegio-sanjuan/portal-api/pkg/response"
)

// StudentHandler serves the student catalogue.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List returns students matching the query filters, paginated.
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Level:      models.EducationLevel(c.Query("level")),
		Grade:      c.Query("grade"),
		Section:    c.Query("section"),
		Search:     c.Query("search"),
		ActiveOnly: c.Query("active") != "false",
		Page:       intQuery(c, "page", 1),
		PageSize:   intQuery(c, "page_size", 50),
	}
	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, students, pagination)
}

// Get returns one student.
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Create enrols a new student.
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid student payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
