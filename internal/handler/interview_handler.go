package handler

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hireside/proctor-gateway/internal/apperr"
	"github.com/hireside/proctor-gateway/internal/config"
	"github.com/hireside/proctor-gateway/internal/interview"
	"github.com/hireside/proctor-gateway/internal/platform"
	"github.com/hireside/proctor-gateway/internal/response"
	"github.com/hireside/proctor-gateway/internal/validator"
)

// InterviewHandler exposes the interview progression engine: open the
// dialog, read the current question, submit one answer at a time.
type InterviewHandler struct {
	client *platform.Client
	claims *platform.Claims
	cfg    *config.Config
	log    zerolog.Logger

	mu      sync.Mutex
	engines map[string]*engineEntry
}

// engineEntry is one job's engine plus its load status. The entry is
// published before the initial fetch so concurrent opens share one load;
// ready closes once loadErr is set, and readers must wait on it before
// touching the engine.
type engineEntry struct {
	engine  *interview.Engine
	ready   chan struct{}
	loadErr error
}

// NewInterviewHandler creates a new InterviewHandler.
func NewInterviewHandler(client *platform.Client, claims *platform.Claims, cfg *config.Config, log zerolog.Logger) *InterviewHandler {
	return &InterviewHandler{
		client:  client,
		claims:  claims,
		cfg:     cfg,
		log:     log,
		engines: make(map[string]*engineEntry),
	}
}

// Open godoc
// POST /api/v1/interview/:job_id/open
// Fetches the interview and positions the cursor on the first unanswered
// question. Idempotent: reopening an open interview returns its state.
func (h *InterviewHandler) Open(c *gin.Context) {
	jobID := c.Param("job_id")

	h.mu.Lock()
	entry, ok := h.engines[jobID]
	if !ok {
		entry = &engineEntry{
			engine: interview.NewEngine(h.client, jobID, h.claims.ApplicationID, h.cfg.InterviewRefetchDelay, h.log),
			ready:  make(chan struct{}),
		}
		h.engines[jobID] = entry
	}
	h.mu.Unlock()

	if !ok {
		// This request owns the load. The entry is removed before ready
		// closes, so on failure waiters see the error and a retry gets a
		// fresh entry.
		entry.loadErr = entry.engine.Open(c.Request.Context())
		if entry.loadErr != nil {
			h.mu.Lock()
			delete(h.engines, jobID)
			h.mu.Unlock()
		}
		close(entry.ready)
	}

	<-entry.ready
	if entry.loadErr != nil {
		failFromErr(c, entry.loadErr)
		return
	}
	response.Success(c, http.StatusOK, entry.engine.Snapshot())
}

// GetState godoc
// GET /api/v1/interview/:job_id
// Returns the question list, cursor, and completion flag.
func (h *InterviewHandler) GetState(c *gin.Context) {
	engine, err := h.engine(c.Param("job_id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, engine.Snapshot())
}

// InterviewAnswerRequest is one answer to the question at the given ordinal.
type InterviewAnswerRequest struct {
	Ordinal *int   `json:"ordinal" binding:"required,min=0"`
	Text    string `json:"text" binding:"required"`
}

// SubmitAnswer godoc
// POST /api/v1/interview/:job_id/answers
// Posts one answer and advances the cursor. Scoring is asynchronous on the
// platform side; the engine re-fetches after a short delay.
func (h *InterviewHandler) SubmitAnswer(c *gin.Context) {
	engine, err := h.engine(c.Param("job_id"))
	if err != nil {
		failFromErr(c, err)
		return
	}

	var req InterviewAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := engine.SubmitAnswer(c.Request.Context(), *req.Ordinal, req.Text); err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, engine.Snapshot())
}

// Close godoc
// POST /api/v1/interview/:job_id/close
// Invalidates the engine; a pending re-fetch no-ops on arrival.
func (h *InterviewHandler) Close(c *gin.Context) {
	h.mu.Lock()
	entry, ok := h.engines[c.Param("job_id")]
	if ok {
		delete(h.engines, c.Param("job_id"))
	}
	h.mu.Unlock()

	if ok {
		<-entry.ready
		entry.engine.Close()
	}
	response.Success(c, http.StatusOK, gin.H{"closed": true})
}

// engine returns the loaded engine for a job, waiting out an in-flight
// initial load.
func (h *InterviewHandler) engine(jobID string) (*interview.Engine, error) {
	h.mu.Lock()
	entry, ok := h.engines[jobID]
	h.mu.Unlock()
	if !ok {
		return nil, apperr.ErrNotFound
	}
	<-entry.ready
	if entry.loadErr != nil {
		return nil, apperr.ErrNotFound
	}
	return entry.engine, nil
}
