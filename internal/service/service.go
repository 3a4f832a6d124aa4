// Package service wires the REST API: route registration, request
// validation, identity resolution and the mapping of store and assistant
// errors onto HTTP status codes.
package service

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gitlab.com/dirk.krummacker/birthday-assistant/internal/assistant"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/auth"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/metrics"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/model"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/store"
)

// Server holds the handler dependencies.
type Server struct {
	store     *store.Store
	assistant *assistant.Orchestrator
	verifier  *auth.Verifier
	metrics   *metrics.Metrics
	limiter   *chatLimiter
	logger    *slog.Logger
}

// Options configures a Server.
type Options struct {
	Store     *store.Store
	Assistant *assistant.Orchestrator
	Verifier  *auth.Verifier
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	// ChatRatePerMinute and ChatBurst bound assistant requests per user.
	// Zero values disable the limiter.
	ChatRatePerMinute int
	ChatBurst         int
}

// New creates a Server.
func New(opts Options) *Server {
	s := &Server{
		store:     opts.Store,
		assistant: opts.Assistant,
		verifier:  opts.Verifier,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}
	if opts.ChatRatePerMinute > 0 {
		s.limiter = newChatLimiter(opts.ChatRatePerMinute, opts.ChatBurst)
	}
	return s
}

// Router initializes the REST API router and registers all endpoints.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(s.requestLog())
	router.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		s.logger.Error("panic recovered", "error", err, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))

	router.GET("/healthz", s.health)
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := router.Group("/api", s.verifier.Middleware(s.logger))
	api.POST("/users/sync", s.syncUser)
	api.GET("/contacts", s.listContacts)
	api.POST("/contacts", s.createContact)
	api.GET("/contacts/:id", s.getContact)
	api.PUT("/contacts/:id", s.updateContact)
	api.DELETE("/contacts/:id", s.deleteContact)
	api.POST("/assistant/chat", s.rateLimitChat(), s.chat)
	return router
}

// health answers liveness probes and the wait-until-available helper.
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLog records every request with its duration and feeds the HTTP
// request counter.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		if s.metrics != nil {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			s.metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		}
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start))
	}
}

// internalError logs the failure and answers with the generic 500 body.
// Diagnostic detail stays server-side only.
func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// notFound answers with the uniform 404 body. A contact owned by somebody
// else produces exactly this response as well, so existence never leaks
// across users.
func notFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found"})
}

// syncUser upserts the caller's user row keyed by the verified external
// identity, refreshing the email and the update timestamp.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/users/sync --request "POST" --header "Authorization: Bearer $TOKEN"
func (s *Server) syncUser(c *gin.Context) {
	identity, err := auth.IdentityFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var email *string
	if identity.Email != "" {
		email = &identity.Email
	}
	if _, err := s.store.UpsertUser(c.Request.Context(), identity.Subject, email); err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// listContacts responds with all contacts owned by the caller.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/contacts --header "Authorization: Bearer $TOKEN"
func (s *Server) listContacts(c *gin.Context) {
	user, ok := s.resolveUser(c)
	if !ok {
		return
	}
	contacts, err := s.store.ContactsByUser(c.Request.Context(), user.Id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// getContact responds with a single contact, or 404 when the id does not
// exist or belongs to a different user.
func (s *Server) getContact(c *gin.Context) {
	user, ok := s.resolveUser(c)
	if !ok {
		return
	}
	id, ok := contactId(c)
	if !ok {
		return
	}
	contact, err := s.store.ContactById(c.Request.Context(), user.Id, id)
	if errors.Is(err, store.ErrNotFound) {
		notFound(c)
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// createContact inserts the contact specified in the request's JSON and
// responds with the full contact data including the newly assigned id.
// Month and day are range-checked independently; a day that does not exist
// in the given month (such as February 30) is accepted.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/contacts --request "POST" --header "Authorization: Bearer $TOKEN" --header "Content-Type: application/json" --data '{"name": "Ada", "birthdayMonth": 12, "birthdayDay": 10, "birthdayYear": 1815}'
func (s *Server) createContact(c *gin.Context) {
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, ok := s.resolveUser(c)
	if !ok {
		return
	}
	contact, err := s.store.CreateContact(c.Request.Context(), model.Contact{
		UserId:        user.Id,
		Name:          req.Name,
		BirthdayMonth: req.BirthdayMonth,
		BirthdayDay:   req.BirthdayDay,
		BirthdayYear:  req.BirthdayYear,
		Notes:         req.Notes,
	})
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// updateContact updates the values specified in the JSON (and only those)
// and responds with the new version of the contact. At least one updatable
// field must be present.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/contacts/$ID --request "PUT" --header "Authorization: Bearer $TOKEN" --header "Content-Type: application/json" --data '{"birthdayDay": 11}'
func (s *Server) updateContact(c *gin.Context) {
	var req updateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	patch := req.patch()
	if patch.IsEmpty() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": []fieldError{
			{Field: "body", Message: "at least one field must be provided"},
		}})
		return
	}
	user, ok := s.resolveUser(c)
	if !ok {
		return
	}
	id, ok := contactId(c)
	if !ok {
		return
	}
	contact, err := s.store.UpdateContact(c.Request.Context(), user.Id, id, patch)
	if errors.Is(err, store.ErrNotFound) {
		notFound(c)
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// deleteContact deletes the contact and responds with 204, or 404 when the
// id does not exist or belongs to a different user.
func (s *Server) deleteContact(c *gin.Context) {
	user, ok := s.resolveUser(c)
	if !ok {
		return
	}
	id, ok := contactId(c)
	if !ok {
		return
	}
	err := s.store.DeleteContact(c.Request.Context(), user.Id, id)
	if errors.Is(err, store.ErrNotFound) {
		notFound(c)
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// contactId validates the id path parameter. A syntactically invalid id can
// never match a row, so it is reported as not found, indistinguishable from
// a missing record.
func contactId(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		notFound(c)
		return "", false
	}
	return id, true
}
