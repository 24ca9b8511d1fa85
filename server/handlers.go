package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/postpilothq/postpilot/generator"
	"github.com/postpilothq/postpilot/model"
	"github.com/postpilothq/postpilot/publisher"
	"github.com/postpilothq/postpilot/utils"
	Logger "github.com/postpilothq/postpilot/utils/log"
)

type generateRequest struct {
	Topic         string `json:"topic" binding:"required"`
	Tone          string `json:"tone"`
	Pov           string `json:"pov"`
	WritingSample string `json:"writingSample"`
	Industry      string `json:"industry"`
	NumPosts      int    `json:"numPosts"`
	IncludeNews   bool   `json:"includeNews"`
	GenerateImage bool   `json:"generateImage"`
}

// mergedGenerateRequest is what actually reaches the generator, after user
// preferences filled the gaps. Validated as a whole so a user without stored
// defaults still gets a clean 400 instead of a deep failure.
type mergedGenerateRequest struct {
	UserId string `validate:"required"`
	Topic  string `validate:"required"`
	Tone   string `validate:"required"`
	Pov    string `validate:"required"`
}

type postView struct {
	Id               string     `json:"id"`
	Content          string     `json:"content"`
	Topic            string     `json:"topic,omitempty"`
	Hook             string     `json:"hook,omitempty"`
	Hashtags         []string   `json:"hashtags"`
	VersionGroup     string     `json:"versionGroup"`
	IsCurrentVersion bool       `json:"isCurrentVersion"`
	NewsReference    *string    `json:"newsReference,omitempty"`
	ImageUrl         string     `json:"imageUrl,omitempty"`
	ScheduledFor     *time.Time `json:"scheduledFor,omitempty"`
	PublishedAt      *time.Time `json:"publishedAt,omitempty"`
}

func (s *APIServer) postToView(post *model.Post) postView {
	imageURL, err := model.CurrentImageURL(s.DB, post)
	if err != nil {
		// Missing image is "not yet available", never an error to the reader.
		Logger.Log.Warn("failed to resolve post image: ", err)
		imageURL = ""
	}
	return postView{
		Id:               post.Id,
		Content:          post.Content,
		Topic:            post.Topic,
		Hook:             post.Hook,
		Hashtags:         post.HashtagList(),
		VersionGroup:     post.VersionGroup,
		IsCurrentVersion: post.IsCurrentVersion,
		NewsReference:    post.NewsReference,
		ImageUrl:         imageURL,
		ScheduledFor:     post.ScheduledFor,
		PublishedAt:      post.PublishedAt,
	}
}

// HandleGenerate runs the canonical generation workflow: merge preference
// defaults, generate variants, persist them as one version group, then
// optionally kick off an image for the first variant. Generation and
// persistence stay separate components, this handler is the only place that
// sequences them.
func (s *APIServer) HandleGenerate(c *gin.Context) {
	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, utils.NewValidationError("invalid request body: %s", err.Error()))
		return
	}

	req := s.applyPreferenceDefaults(userID(c), body)
	if err := validate.Struct(mergedGenerateRequest{
		UserId: req.UserId,
		Topic:  req.Topic,
		Tone:   req.Tone,
		Pov:    req.Pov,
	}); err != nil {
		abortWithError(c, utils.NewValidationError("topic, tone and pov are required (set defaults in preferences or pass them explicitly)"))
		return
	}

	result, err := s.Generator.Generate(req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	gc, err := s.Persister.CreateGeneratedContent(req, result.StyleAnalysis)
	if err != nil {
		abortWithError(c, err)
		return
	}

	saved, err := s.Persister.Save(req.UserId, &gc.Id, req.Topic, result.Variants)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if body.GenerateImage && len(saved.Saved) > 0 {
		first := saved.Saved[0]
		if _, err := s.Images.Generate(first.Id, req.UserId, first.Content, first.Topic, ""); err != nil {
			// Optional stage, the generated posts are already saved.
			Logger.Log.Warn("image generation after save failed, continuing: ", err)
		}
	}

	views := []postView{}
	for i := range saved.Saved {
		views = append(views, s.postToView(&saved.Saved[i]))
	}
	failures := []gin.H{}
	for _, failure := range saved.Failures {
		failures = append(failures, gin.H{"index": failure.Index, "error": failure.Err.Error()})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"posts":    views,
		"failures": failures,
	})
}

// applyPreferenceDefaults backfills tone/pov/industry/writing sample from
// the user's stored preferences. Explicit request values always win.
func (s *APIServer) applyPreferenceDefaults(uid string, body generateRequest) generator.Request {
	req := generator.Request{
		UserId:        uid,
		Topic:         body.Topic,
		Tone:          body.Tone,
		Pov:           body.Pov,
		WritingSample: body.WritingSample,
		Industry:      body.Industry,
		NumPosts:      body.NumPosts,
		IncludeNews:   body.IncludeNews,
	}

	var prefs model.UserPreferences
	if res := s.DB.Where("user_id = ?", uid).Limit(1).Find(&prefs); res.Error != nil || res.RowsAffected == 0 {
		return req
	}
	if req.Tone == "" {
		req.Tone = prefs.DefaultTone
	}
	if req.Pov == "" {
		req.Pov = prefs.DefaultPov
	}
	if req.Industry == "" {
		req.Industry = prefs.Industry
	}
	if req.WritingSample == "" {
		req.WritingSample = prefs.WritingSample
	}
	return req
}

type imageRequest struct {
	PostId       string `json:"postId" binding:"required"`
	PostContent  string `json:"postContent" binding:"required"`
	Topic        string `json:"topic"`
	CustomPrompt string `json:"customPrompt"`
}

func (s *APIServer) HandleGenerateImage(c *gin.Context) {
	var body imageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, utils.NewValidationError("invalid request body: %s", err.Error()))
		return
	}

	generated, err := s.Images.Generate(body.PostId, userID(c), body.PostContent, body.Topic, body.CustomPrompt)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imageUrl": generated.ImageUrl,
		"prompt":   generated.Prompt,
	})
}

type publishRequest struct {
	LinkedInPostId string `json:"linkedInPostId" binding:"required"`
	GenerateImage  bool   `json:"generateImage"`
	ImagePrompt    string `json:"imagePrompt"`
}

func (s *APIServer) HandlePublish(c *gin.Context) {
	var body publishRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, utils.NewValidationError("invalid request body: %s", err.Error()))
		return
	}

	result, err := s.Publisher.Publish(publisher.PublishRequest{
		PostID:        body.LinkedInPostId,
		UserID:        userID(c),
		GenerateImage: body.GenerateImage,
		ImagePrompt:   body.ImagePrompt,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"postId":  result.RemotePostID,
		"postUrl": result.PostURL,
	})
}

func (s *APIServer) HandleNewsRefresh(c *gin.Context) {
	if err := s.News.RefreshAll(); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "news refresh completed"})
}
