package server

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/postpilothq/postpilot/model"
	"github.com/postpilothq/postpilot/utils"
	Logger "github.com/postpilothq/postpilot/utils/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"
	"gorm.io/gorm/clause"
)

func linkedInOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     os.Getenv("LINKEDIN_CLIENT_ID"),
		ClientSecret: os.Getenv("LINKEDIN_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("LINKEDIN_REDIRECT_URL"),
		Scopes:       []string{"openid", "profile", "w_member_social"},
		Endpoint:     linkedin.Endpoint,
	}
}

// HandleLinkedInConnect starts the OAuth dance: a random state is bound to
// the session user in redis, then the caller is sent to LinkedIn's consent
// screen.
func (s *APIServer) HandleLinkedInConnect(c *gin.Context) {
	cfg := linkedInOAuthConfig()
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		abortWithError(c, utils.NewConfigurationError("LinkedIn OAuth credentials are not configured"))
		return
	}

	state := utils.RandomAlphabetString(24)
	if err := utils.GetRedisClient().SetOAuthState(state, userID(c)); err != nil {
		abortWithError(c, utils.NewPersistenceError("store oauth state", err))
		return
	}

	c.Redirect(http.StatusFound, cfg.AuthCodeURL(state))
}

// HandleLinkedInCallback finishes the dance: the state resolves back to the
// initiating user, the code is exchanged, the token is validated against
// userinfo and stored. One token row per user, reconnecting overwrites.
func (s *APIServer) HandleLinkedInCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		abortWithError(c, utils.NewValidationError("state and code are required"))
		return
	}

	uid, ok := utils.GetRedisClient().GetOAuthState(state)
	if !ok {
		abortWithError(c, utils.NewValidationError("unknown or expired oauth state"))
		return
	}

	exchanged, err := linkedInOAuthConfig().Exchange(c.Request.Context(), code)
	if err != nil {
		Logger.Log.Error("linkedin code exchange failed: ", err)
		abortWithError(c, &utils.UpstreamError{API: "linkedin", StatusCode: http.StatusBadGateway, Body: "code exchange failed"})
		return
	}

	memberID, err := s.Publisher.LinkedIn.ValidateToken(exchanged.AccessToken)
	if err != nil {
		abortWithError(c, err)
		return
	}

	token := model.LinkedInToken{
		UserId:         uid,
		AccessToken:    exchanged.AccessToken,
		ExpiresAt:      exchanged.Expiry,
		LinkedInUserId: memberID,
	}
	err = s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "expires_at", "linked_in_user_id", "updated_at"}),
	}).Create(&token).Error
	if err != nil {
		abortWithError(c, utils.NewPersistenceError("store linkedin token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "linkedInUserId": memberID})
}

// HandleLinkedInDisconnect drops the stored token, used by sign-out.
func (s *APIServer) HandleLinkedInDisconnect(c *gin.Context) {
	if err := s.DB.Where("user_id = ?", userID(c)).Delete(&model.LinkedInToken{}).Error; err != nil {
		abortWithError(c, utils.NewPersistenceError("delete linkedin token", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
