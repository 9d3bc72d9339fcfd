package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/identity-service/internal/apperr"
	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/engine"
	"github.com/tazhibayda/identity-service/internal/metrics"
	"github.com/tazhibayda/identity-service/internal/oauth"
	"github.com/tazhibayda/identity-service/internal/repo"
)

type Handler struct {
	Engine          *engine.Engine
	Store           *repo.Store
	Redis           *repo.Redis
	RateLimitPerMin int
	RateLimitBypass bool
	Google          *oauth.GoogleOAuth
}

func NewHandler(eng *engine.Engine, store *repo.Store, rds *repo.Redis, rlPerMin int, rlBypass bool, google *oauth.GoogleOAuth) *Handler {
	return &Handler{
		Engine:          eng,
		Store:           store,
		Redis:           rds,
		RateLimitPerMin: rlPerMin,
		RateLimitBypass: rlBypass,
		Google:          google,
	}
}

// writeError maps the engine taxonomy onto status codes; anything outside
// the taxonomy is an infrastructure failure and stays opaque.
func writeError(c *gin.Context, err error) {
	kind, ok := apperr.KindOf(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindAuthentication:
		status = http.StatusUnauthorized
	case apperr.KindAuthorization:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// identifier builds the lookup key from whichever of username/email the
// caller supplied. Username wins when both are present.
func identifier(username, email string) domain.Identifier {
	if username != "" {
		return domain.ByUsername(username)
	}
	if email != "" {
		return domain.ByEmail(email)
	}
	return domain.Identifier{}
}

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register godoc
// @Summary Register user
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerReq true "register"
// @Success 201 {object} engine.RegisterResult
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if len(username) < 3 || len(username) > 20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username must be 3-20 characters"})
		return
	}
	if !strings.Contains(email, "@") || len(in.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email or weak password"})
		return
	}

	res, err := h.Engine.RegisterWithAutoLogin(requestCtx(c), username, email, in.Password)
	if err != nil {
		metrics.Registrations.WithLabelValues("error").Inc()
		writeError(c, err)
		return
	}
	metrics.Registrations.WithLabelValues("ok").Inc()
	c.JSON(http.StatusCreated, res)
}

type loginReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} engine.TokenPair
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ident := identifier(strings.TrimSpace(in.Username), strings.ToLower(strings.TrimSpace(in.Email)))
	if ident.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username or email required"})
		return
	}

	pair, err := h.Engine.Login(requestCtx(c), ident, in.Password)
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		writeError(c, err)
		return
	}
	metrics.Logins.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, pair)
}

// Verify godoc
// @Summary Verify email
// @Tags auth
// @Produce json
// @Param token query string true "verification token"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/auth/verify [get]
func (h *Handler) Verify(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}
	msg, err := h.Engine.VerifyEmail(requestCtx(c), token)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

type resendReq struct {
	Email string `json:"email"`
}

func (h *Handler) ResendVerification(c *gin.Context) {
	var in resendReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	msg, err := h.Engine.ResendVerificationEmail(requestCtx(c), strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

type refreshReq struct {
	Refresh string `json:"refresh"`
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body refreshReq true "refresh"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var in refreshReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	access, err := h.Engine.Refresh(requestCtx(c), in.Refresh)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		writeError(c, err)
		return
	}
	metrics.TokenRefreshes.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (h *Handler) Logout(c *gin.Context) {
	var in refreshReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Engine.Logout(requestCtx(c), in.Refresh); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type changePasswordReq struct {
	Refresh     string `json:"refresh"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var in changePasswordReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(in.NewPassword) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weak new password"})
		return
	}
	ident := identifier(strings.TrimSpace(in.Username), strings.ToLower(strings.TrimSpace(in.Email)))
	if ident.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username or email required"})
		return
	}
	msg, err := h.Engine.ChangePassword(requestCtx(c), in.Refresh, ident, in.OldPassword, in.NewPassword)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

type deleteAccountReq struct {
	Refresh  string `json:"refresh"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	var in deleteAccountReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ident := identifier(strings.TrimSpace(in.Username), strings.ToLower(strings.TrimSpace(in.Email)))
	if ident.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username or email required"})
		return
	}
	msg, err := h.Engine.RemoveUser(requestCtx(c), in.Refresh, ident, in.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /api/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	au, _ := c.Get(authUserKey)
	userCtx := au.(AuthUser)

	u, err := h.Engine.UserByID(requestCtx(c), userCtx.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"verified": u.Verified,
		"provider": u.Provider,
	})
}

func (h *Handler) GoogleLogin(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "oauth not configured"})
		return
	}
	state := h.Google.MakeState(requestID(c))
	c.Redirect(http.StatusTemporaryRedirect, h.Google.AuthURL(state))
}

func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "oauth not configured"})
		return
	}
	if !h.Google.VerifyState(c.Query("state")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}
	profile, err := h.Google.ExchangeAndVerify(requestCtx(c), c.Query("code"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "oauth exchange failed"})
		return
	}
	pair, err := h.Engine.OAuthLogin(requestCtx(c), profile.Sub, strings.ToLower(profile.Email))
	if err != nil {
		writeError(c, err)
		return
	}
	metrics.Logins.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, pair)
}

func (h *Handler) Healthz(c *gin.Context) {
	if h.Store != nil {
		if err := h.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
