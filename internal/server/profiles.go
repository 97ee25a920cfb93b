package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/estatehub/internal/common"
	"github.com/joseph-ayodele/estatehub/internal/entity"
	"github.com/joseph-ayodele/estatehub/internal/services/profile"
	"github.com/joseph-ayodele/estatehub/internal/session"
)

func caller(c *gin.Context) session.Session {
	sess, _ := session.FromContext(c.Request.Context())
	return sess
}

func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, common.ValidationErrorf("%s must be a UUID", name)
	}
	return id, nil
}

// bind reads the request body and decodes it after schema validation.
func (r *Router) bind(c *gin.Context, schema *jsonschema.Schema, out any) bool {
	raw, err := c.GetRawData()
	if err != nil {
		abortWithError(c, r.logger, common.ValidationErrorf("unable to read request body"))
		return false
	}
	if err := decodeValidated(schema, raw, out); err != nil {
		abortWithError(c, r.logger, err)
		return false
	}
	return true
}

func (r *Router) respondView(c *gin.Context, status int, p *entity.Profile) {
	v, err := r.profiles.View(c.Request.Context(), p)
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	c.JSON(status, v)
}

// provision is the explicit, idempotent provisioning call made right after
// the external identity is confirmed. It also stores the session cookie.
func (r *Router) provision(c *gin.Context) {
	var body struct {
		PendingType string `json:"pending_type"`
	}
	if !r.bind(c, provisionSchema, &body) {
		return
	}
	sess := caller(c)
	p, err := r.profiles.EnsureProfile(c.Request.Context(), profile.EnsureRequest{
		UserID:        sess.UserID,
		Email:         sess.Email,
		EmailVerified: sess.EmailVerified,
		PendingType:   body.PendingType,
	})
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	if token := r.tokenFrom(c); token != "" {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(r.cookieName, token, 0, "/", "", r.secureCookie, true)
	}
	r.respondView(c, http.StatusOK, p)
}

// endSession clears the session cookie.
func (r *Router) endSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(r.cookieName, "", -1, "/", "", r.secureCookie, true)
	c.Status(http.StatusNoContent)
}

func (r *Router) evaluateGuard(c *gin.Context) {
	c.JSON(http.StatusOK, r.guard.Evaluate(r.guardState(c)))
}

func (r *Router) listProfiles(c *gin.Context) {
	plist, err := r.profiles.ListProfiles(c.Request.Context(), caller(c))
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	views, err := r.profiles.Views(c.Request.Context(), plist)
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": views})
}

func (r *Router) createProfile(c *gin.Context) {
	var body struct {
		Type       string                    `json:"type"`
		Individual *entity.IndividualDetails `json:"individual"`
		Business   *entity.BusinessDetails   `json:"business"`
	}
	if !r.bind(c, createProfileSchema, &body) {
		return
	}
	p, err := r.profiles.CreateProfile(c.Request.Context(), caller(c), profile.CreateRequest{
		Type:       body.Type,
		Individual: body.Individual,
		Business:   body.Business,
	})
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	r.respondView(c, http.StatusCreated, p)
}

func (r *Router) getActiveProfile(c *gin.Context) {
	p, err := r.profiles.GetActiveProfile(c.Request.Context(), caller(c))
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	r.respondView(c, http.StatusOK, p)
}

func (r *Router) switchActiveProfile(c *gin.Context) {
	var body struct {
		ProfileID string `json:"profile_id"`
	}
	if !r.bind(c, switchSchema, &body) {
		return
	}
	id, err := uuid.Parse(body.ProfileID)
	if err != nil {
		abortWithError(c, r.logger, common.ValidationErrorf("profile_id must be a UUID"))
		return
	}
	p, err := r.profiles.SwitchActiveProfile(c.Request.Context(), caller(c), id)
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	r.respondView(c, http.StatusOK, p)
}

func (r *Router) getProfile(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	p, err := r.profiles.GetProfile(c.Request.Context(), caller(c), id)
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	r.respondView(c, http.StatusOK, p)
}

func (r *Router) updateProfile(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	var patch entity.ProfilePatch
	if !r.bind(c, patchProfileSchema, &patch) {
		return
	}
	p, err := r.profiles.UpdateProfile(c.Request.Context(), caller(c), id, patch)
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	r.respondView(c, http.StatusOK, p)
}

func (r *Router) deleteProfile(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	if err := r.profiles.DeleteProfile(c.Request.Context(), caller(c), id); err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) listDocuments(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	docs, err := r.profiles.ListDocuments(c.Request.Context(), caller(c), id)
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (r *Router) submitDocument(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	var up profile.DocumentUpload
	if !r.bind(c, documentSchema, &up) {
		return
	}
	doc, err := r.profiles.SubmitDocument(c.Request.Context(), caller(c), id, up)
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (r *Router) deleteDocument(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	docID, err := pathID(c, "docID")
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	if err := r.profiles.DeleteDocument(c.Request.Context(), caller(c), id, docID); err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) resubmit(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	rec, err := r.profiles.Resubmit(c.Request.Context(), caller(c), id)
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (r *Router) history(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	out, err := r.profiles.History(c.Request.Context(), caller(c), id)
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verifications": out})
}

func (r *Router) listRoles(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	roles, err := r.profiles.ListRoles(c.Request.Context(), caller(c), id)
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

func (r *Router) grantRole(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	var body struct {
		Role string `json:"role"`
	}
	if !r.bind(c, roleSchema, &body) {
		return
	}
	a, err := r.profiles.GrantRole(c.Request.Context(), caller(c), id, body.Role)
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (r *Router) revokeRole(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	if err := r.profiles.RevokeRole(c.Request.Context(), caller(c), id, c.Param("role")); err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) review(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	var body struct {
		Decision string `json:"decision"`
		Note     string `json:"note"`
	}
	if !r.bind(c, reviewSchema, &body) {
		return
	}
	rec, err := r.profiles.Review(c.Request.Context(), caller(c).UserID, id, body.Decision, body.Note)
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// dashboard summarizes the caller's active profile. Only reached through the
// guard, so a session and an active profile exist.
func (r *Router) dashboard(c *gin.Context) {
	p, err := r.profiles.GetActiveProfile(c.Request.Context(), caller(c))
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	v, err := r.profiles.View(c.Request.Context(), p)
	if err != nil {
		abortWithError(c, r.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"display_name":        v.DisplayName,
		"profile_type":        v.Type,
		"completion":          v.Completion,
		"verification_status": v.VerificationStatus,
		"roles":               v.Roles,
	})
}
