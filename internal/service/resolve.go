package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/dirk.krummacker/birthday-assistant/internal/auth"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/model"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/store"
)

// lookupUser maps the verified external identity on the context to the
// internal user record. It returns auth.ErrNoIdentity when the context
// carries no identity and store.ErrNotFound when the identity was never
// synced. Response shaping is left to the call sites.
func (s *Server) lookupUser(ctx context.Context) (model.User, error) {
	identity, err := auth.IdentityFrom(ctx)
	if err != nil {
		return model.User{}, err
	}
	return s.store.UserByExternalId(ctx, identity.Subject)
}

// resolveUser is the contact-handler flavor of lookupUser: it writes the
// response for the two failure cases itself. A verified caller whose
// identity was never synced cannot own contacts, so the contact routes
// treat that as unauthorized rather than inventing an empty owner.
func (s *Server) resolveUser(c *gin.Context) (model.User, bool) {
	user, err := s.lookupUser(c.Request.Context())
	switch {
	case err == nil:
		return user, true
	case errors.Is(err, auth.ErrNoIdentity), errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return model.User{}, false
	default:
		s.internalError(c, err)
		return model.User{}, false
	}
}
