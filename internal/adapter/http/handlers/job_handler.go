package handlers

import (
	"net/http"

	request "mechmarket/internal/adapter/http/dto/request"
	response "mechmarket/internal/adapter/http/dto/response"
	"mechmarket/internal/domain/entities"
	"mechmarket/internal/usecase"
	"mechmarket/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidJobPayload = apperrors.Validation("INVALID_JOB_PAYLOAD", "invalid job payload")
	errCustomerOnly      = apperrors.Authorization("CUSTOMER_ONLY", "only customers may post jobs")
)

// JobHandler handles HTTP requests for the job lifecycle.
type JobHandler struct {
	usecase *usecase.JobUseCase
}

func NewJobHandler(uc *usecase.JobUseCase) *JobHandler {
	return &JobHandler{usecase: uc}
}

// CreateJob godoc
// @Summary  Post a new job
// @Tags     jobs
// @Accept   json
// @Produce  json
// @Param    job body request.CreateJobRequest true "job to post"
// @Success  201 {object} response.JobResponse
// @Router   /jobs [post]
func (h *JobHandler) CreateJob(c *gin.Context) {
	actor := actorFrom(c)
	if actor.Role != entities.RoleCustomer {
		c.JSON(errCustomerOnly.HTTPStatus, errCustomerOnly.ToHTTPError())
		return
	}

	var payload request.CreateJobRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidJobPayload.HTTPStatus, errInvalidJobPayload.ToHTTPError())
		return
	}

	job, err := h.usecase.CreateJob(c.Request.Context(), actor.ID, payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.FromJob(job))
}

// GetJob godoc
// @Summary  Fetch a job by id
// @Tags     jobs
// @Produce  json
// @Param    job_id path string true "job id"
// @Success  200 {object} response.JobResponse
// @Router   /jobs/{job_id} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.usecase.GetByID(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromJob(job))
}

// TransitionJob godoc
// @Summary  Drive a job to a new lifecycle status
// @Tags     jobs
// @Accept   json
// @Produce  json
// @Param    job_id path string true "job id"
// @Param    transition body request.TransitionJobRequest true "target status and last-seen version"
// @Success  200 {object} response.JobResponse
// @Router   /jobs/{job_id}/status [patch]
func (h *JobHandler) TransitionJob(c *gin.Context) {
	var payload request.TransitionJobRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidJobPayload.HTTPStatus, errInvalidJobPayload.ToHTTPError())
		return
	}

	job, err := h.usecase.Transition(
		c.Request.Context(),
		c.Param("job_id"),
		entities.JobStatus(payload.Status),
		actorFrom(c),
		payload.Version,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromJob(job))
}
