package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hireside/proctor-gateway/internal/config"
	"github.com/hireside/proctor-gateway/internal/model"
	"github.com/hireside/proctor-gateway/internal/platform"
	"github.com/hireside/proctor-gateway/internal/response"
	"github.com/hireside/proctor-gateway/internal/session"
	"github.com/hireside/proctor-gateway/internal/validator"
	"github.com/hireside/proctor-gateway/internal/violation"
)

// AssessmentHandler exposes the proctored session controller to the
// presentation layer: open, state, drafts, per-item submission, final
// submission, close.
type AssessmentHandler struct {
	manager *session.Manager
	client  *platform.Client
	claims  *platform.Claims
	cfg     *config.Config
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(manager *session.Manager, client *platform.Client, claims *platform.Claims, cfg *config.Config) *AssessmentHandler {
	return &AssessmentHandler{
		manager: manager,
		client:  client,
		claims:  claims,
		cfg:     cfg,
	}
}

// OpenRequest selects which proctored flow to start.
type OpenRequest struct {
	Mode model.AssessmentMode `json:"mode" binding:"required,oneof=CODING_TEST APTITUDE_TEST"`
}

// Open godoc
// POST /api/v1/assessment/:job_id/open
// Starts a proctored session: fetches items and time budget, seeds the
// clock, begins violation monitoring. At most one session may be open.
func (h *AssessmentHandler) Open(c *gin.Context) {
	jobID := c.Param("job_id")

	var req OpenRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	cfg := session.Config{
		JobID:          jobID,
		ApplicationID:  h.claims.ApplicationID,
		Mode:           req.Mode,
		Rules:          h.rulesFor(req.Mode),
		PerItemSeconds: h.cfg.PerItemSeconds,
	}

	ctrl, err := h.manager.Open(c.Request.Context(), cfg)
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// rulesFor selects the violation policy for a mode. The coding test
// enforces its threshold; the aptitude test counts violations for display
// and leaves the hard stop to the timer unless configured otherwise.
func (h *AssessmentHandler) rulesFor(mode model.AssessmentMode) violation.Rules {
	if mode == model.ModeAptitudeTest {
		return violation.Rules{
			Threshold: h.cfg.AptitudeViolationLimit,
			Enforce:   h.cfg.AptitudeEnforceLimit,
		}
	}
	return violation.Rules{
		Threshold: h.cfg.CodingViolationLimit,
		Enforce:   true,
	}
}

// GetState godoc
// GET /api/v1/assessment/state
// Returns the active session snapshot for rendering.
func (h *AssessmentHandler) GetState(c *gin.Context) {
	ctrl, err := h.manager.Active()
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// GetRemoteSession godoc
// GET /api/v1/assessment/:job_id/remote
// Reports the platform-held session for this job, if any. A 404 means no
// session exists yet — informational, not fatal.
func (h *AssessmentHandler) GetRemoteSession(c *gin.Context) {
	sess, err := h.client.FetchSession(c.Request.Context(), c.Param("job_id"), h.claims.ApplicationID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": sess})
}

// AnswerRequest carries a draft or a submission for one item.
type AnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// SaveDraft godoc
// PUT /api/v1/assessment/items/:item_id/draft
// Records the candidate's in-progress answer. Rejected once the item is
// submitted.
func (h *AssessmentHandler) SaveDraft(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ctrl, err := h.manager.Active()
	if err != nil {
		failFromErr(c, err)
		return
	}
	if err := ctrl.SetDraft(itemID, req.Answer); err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"saved": true})
}

// SubmitItem godoc
// POST /api/v1/assessment/items/:item_id/submit
// Submits one item for scoring. A failed submission leaves the item
// unsubmitted; the candidate may retry.
func (h *AssessmentHandler) SubmitItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ctrl, err := h.manager.Active()
	if err != nil {
		failFromErr(c, err)
		return
	}
	rec, err := ctrl.SubmitItem(c.Request.Context(), itemID, req.Answer)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

// SubmitFinal godoc
// POST /api/v1/assessment/submit
// The candidate's explicit final submission. Races freely with timer expiry
// and the violation policy: whoever wins the gate performs the sweep.
func (h *AssessmentHandler) SubmitFinal(c *gin.Context) {
	ctrl, err := h.manager.Active()
	if err != nil {
		failFromErr(c, err)
		return
	}
	ctrl.Submit()
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// Close godoc
// POST /api/v1/assessment/close
// Tears down the session. Permitted from TERMINATED, or from LOADING when
// the candidate aborts before the session starts.
func (h *AssessmentHandler) Close(c *gin.Context) {
	if err := h.manager.Close(); err != nil {
		response.Fail(c, http.StatusConflict, response.ErrSessionState)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"closed": true})
}
