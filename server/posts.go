package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/postpilothq/postpilot/generator"
	"github.com/postpilothq/postpilot/model"
	"github.com/postpilothq/postpilot/utils"
	"gorm.io/gorm"
)

// HandleListPosts returns the caller's current-version posts, newest first.
// Pass ?all=true to include superseded versions.
func (s *APIServer) HandleListPosts(c *gin.Context) {
	query := s.DB.Where("user_id = ?", userID(c)).Order("created_at DESC")
	if c.Query("all") != "true" {
		query = query.Where("is_current_version = ?", true)
	}

	var posts []model.Post
	if err := query.Find(&posts).Error; err != nil {
		abortWithError(c, utils.NewPersistenceError("list posts", err))
		return
	}

	views := []postView{}
	for i := range posts {
		views = append(views, s.postToView(&posts[i]))
	}
	c.JSON(http.StatusOK, gin.H{"posts": views})
}

func (s *APIServer) loadOwnedPost(c *gin.Context) (*model.Post, bool) {
	var post model.Post
	res := s.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID(c)).First(&post)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			abortWithError(c, utils.NewValidationError("post not found"))
		} else {
			abortWithError(c, utils.NewPersistenceError("load post", res.Error))
		}
		return nil, false
	}
	return &post, true
}

func (s *APIServer) HandleGetPost(c *gin.Context) {
	post, ok := s.loadOwnedPost(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.postToView(post))
}

type updatePostRequest struct {
	Content  string   `json:"content" binding:"required"`
	Hook     string   `json:"hook"`
	Hashtags []string `json:"hashtags"`
}

// HandleUpdatePost edits the post in place. The row keeps its version group
// and current flag, only content fields and the updated timestamp move.
func (s *APIServer) HandleUpdatePost(c *gin.Context) {
	post, ok := s.loadOwnedPost(c)
	if !ok {
		return
	}

	var body updatePostRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, utils.NewValidationError("invalid request body: %s", err.Error()))
		return
	}

	post.Content = body.Content
	post.Hook = body.Hook
	if body.Hashtags != nil {
		if err := post.SetHashtagList(body.Hashtags); err != nil {
			abortWithError(c, utils.NewValidationError("invalid hashtags"))
			return
		}
	}
	if err := s.DB.Save(post).Error; err != nil {
		abortWithError(c, utils.NewPersistenceError("update post", err))
		return
	}
	c.JSON(http.StatusOK, s.postToView(post))
}

// HandleDeletePost removes the post and its children in one transaction so
// no orphaned sources, schedules or images survive the parent.
func (s *APIServer) HandleDeletePost(c *gin.Context) {
	post, ok := s.loadOwnedPost(c)
	if !ok {
		return
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.Id).Delete(&model.PostSource{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.Id).Delete(&model.PostSchedule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.Id).Delete(&model.PostImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
	if err != nil {
		abortWithError(c, utils.NewPersistenceError("delete post", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleRevisePost saves the edited content as a new version of the post's
// group instead of overwriting it. The prior row keeps the history, the new
// row takes the current flag.
func (s *APIServer) HandleRevisePost(c *gin.Context) {
	post, ok := s.loadOwnedPost(c)
	if !ok {
		return
	}

	var body updatePostRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, utils.NewValidationError("invalid request body: %s", err.Error()))
		return
	}

	revised, err := s.Persister.SaveRevision(userID(c), post.VersionGroup, generator.Variant{
		Content:  body.Content,
		Hook:     body.Hook,
		Hashtags: body.Hashtags,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.postToView(revised))
}

type scheduleRequest struct {
	ScheduledTime time.Time `json:"scheduledTime" binding:"required"`
}

// HandleSchedulePost replaces any existing schedule for the post with a new
// pending one. Replace semantics are intentional (one active schedule per
// post); the delete and insert share a transaction so a concurrent reader
// never observes zero rows mid-update.
func (s *APIServer) HandleSchedulePost(c *gin.Context) {
	post, ok := s.loadOwnedPost(c)
	if !ok {
		return
	}

	var body scheduleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, utils.NewValidationError("invalid request body: %s", err.Error()))
		return
	}
	if body.ScheduledTime.Before(time.Now()) {
		abortWithError(c, utils.NewValidationError("scheduledTime must be in the future"))
		return
	}

	schedule := model.PostSchedule{
		Id:            uuid.New().String(),
		PostId:        post.Id,
		UserId:        userID(c),
		ScheduledTime: body.ScheduledTime,
		Status:        model.ScheduleStatusPending,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.Id).Delete(&model.PostSchedule{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&schedule).Error; err != nil {
			return err
		}
		return tx.Model(post).Update("scheduled_for", body.ScheduledTime).Error
	})
	if err != nil {
		abortWithError(c, utils.NewPersistenceError("schedule post", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"scheduleId":    schedule.Id,
		"scheduledTime": schedule.ScheduledTime,
	})
}
