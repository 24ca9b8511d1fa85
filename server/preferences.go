package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/postpilothq/postpilot/model"
	"github.com/postpilothq/postpilot/utils"
	"gorm.io/gorm/clause"
)

type preferencesView struct {
	DefaultTone   string `json:"defaultTone"`
	DefaultPov    string `json:"defaultPov"`
	Industry      string `json:"industry"`
	WritingSample string `json:"writingSample"`
}

func (s *APIServer) HandleGetPreferences(c *gin.Context) {
	var prefs model.UserPreferences
	res := s.DB.Where("user_id = ?", userID(c)).Limit(1).Find(&prefs)
	if res.Error != nil {
		abortWithError(c, utils.NewPersistenceError("load preferences", res.Error))
		return
	}
	c.JSON(http.StatusOK, preferencesView{
		DefaultTone:   prefs.DefaultTone,
		DefaultPov:    prefs.DefaultPov,
		Industry:      prefs.Industry,
		WritingSample: prefs.WritingSample,
	})
}

// HandleUpdatePreferences upserts the settings row keyed by user id.
func (s *APIServer) HandleUpdatePreferences(c *gin.Context) {
	var body preferencesView
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, utils.NewValidationError("invalid request body: %s", err.Error()))
		return
	}

	prefs := model.UserPreferences{
		UserId:        userID(c),
		DefaultTone:   body.DefaultTone,
		DefaultPov:    body.DefaultPov,
		Industry:      body.Industry,
		WritingSample: body.WritingSample,
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"default_tone", "default_pov", "industry", "writing_sample", "updated_at"}),
	}).Create(&prefs).Error
	if err != nil {
		abortWithError(c, utils.NewPersistenceError("save preferences", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
