package publisher

import (
	"encoding/base64"
	"io/ioutil"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/postpilothq/postpilot/clients"
	"github.com/postpilothq/postpilot/imagegen"
	"github.com/postpilothq/postpilot/model"
	"github.com/postpilothq/postpilot/utils"
	Logger "github.com/postpilothq/postpilot/utils/log"
	"gorm.io/gorm"
)

/*

Publisher pushes a stored post to LinkedIn.

One publish attempt walks TokenCheck -> (ImagePrep)? -> ShareSubmit ->
Recorded. Token problems are terminal and delete the stored token so the
user reconnects. Everything between TokenCheck and ShareSubmit is optional:
a failed image generation or media upload downgrades the share to text-only
instead of blocking it.

The remote publish and the local record are not transactional. A share that
lands on LinkedIn but fails to record locally is a known at-least-once
window, the local row still looks unpublished; we log and surface the result
rather than trying to undo the remote side.

*/
type Publisher struct {
	DB       *gorm.DB
	LinkedIn *clients.LinkedInClient
	Images   *imagegen.ImageGenerator
}

func NewPublisher(db *gorm.DB, linkedIn *clients.LinkedInClient, images *imagegen.ImageGenerator) *Publisher {
	return &Publisher{DB: db, LinkedIn: linkedIn, Images: images}
}

type PublishRequest struct {
	PostID        string
	UserID        string
	GenerateImage bool
	ImagePrompt   string
}

type PublishResult struct {
	PostID       string
	RemotePostID string
	PostURL      string
	Stages       []StageResult
}

// Publish runs the full state machine for one post.
func (p *Publisher) Publish(req PublishRequest) (*PublishResult, error) {
	if req.PostID == "" || req.UserID == "" {
		return nil, utils.NewValidationError("postId and userId are required")
	}

	var post model.Post
	res := p.DB.Where("id = ? AND user_id = ?", req.PostID, req.UserID).First(&post)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, utils.NewValidationError("post %s not found", req.PostID)
		}
		return nil, utils.NewPersistenceError("load post", res.Error)
	}

	// TokenCheck
	token, memberID, err := p.checkToken(req.UserID)
	if err != nil {
		return nil, err
	}

	result := &PublishResult{PostID: post.Id}

	// ImagePrep, only when the post has no image and the caller asked for one.
	imageURL, err := model.CurrentImageURL(p.DB, &post)
	if err != nil {
		Logger.Log.Warn("failed to resolve current image, publishing without: ", err)
		imageURL = ""
	}
	if imageURL == "" && req.GenerateImage && req.ImagePrompt != "" {
		stage := p.prepareImage(&post, req)
		result.Stages = append(result.Stages, stage)
		if stage.Status == StageSuccess {
			imageURL, _ = model.CurrentImageURL(p.DB, &post)
		}
	}

	// Media attach, best effort: register, fetch bytes, upload. Any failure
	// along the way downgrades the share to text-only.
	asset := ""
	if imageURL != "" {
		stage, attached := p.attachMedia(token.AccessToken, memberID, imageURL)
		result.Stages = append(result.Stages, stage)
		asset = attached
	}

	// ShareSubmit
	remoteID, err := p.LinkedIn.SubmitShare(token.AccessToken, memberID, shareText(&post), asset)
	if err != nil {
		if clients.IsUnauthorized(err) {
			p.deleteToken(req.UserID)
			return nil, &utils.TokenExpiredError{}
		}
		return nil, err
	}

	// Recorded. A failed local write does not undo the remote publish.
	now := time.Now()
	updates := map[string]interface{}{
		"remote_post_id": remoteID,
		"published_at":   &now,
	}
	if err := p.DB.Model(&model.Post{}).Where("id = ?", post.Id).Updates(updates).Error; err != nil {
		Logger.Log.Errorf("post %s published remotely as %s but failed to record locally: %v", post.Id, remoteID, err)
	}

	result.RemotePostID = remoteID
	result.PostURL = clients.ShareURL(remoteID)
	return result, nil
}

// checkToken loads and validates the stored LinkedIn credential. A 401 from
// the userinfo endpoint deletes the token, forcing a reconnect.
func (p *Publisher) checkToken(userID string) (*model.LinkedInToken, string, error) {
	var token model.LinkedInToken
	res := p.DB.Where("user_id = ?", userID).First(&token)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, "", &utils.NotConnectedError{}
		}
		return nil, "", utils.NewPersistenceError("load linkedin token", res.Error)
	}

	memberID, err := p.LinkedIn.ValidateToken(token.AccessToken)
	if err != nil {
		// Any non-2xx from userinfo means the stored credential is no longer
		// usable, drop it and force a reconnect. Transport failures keep the
		// token, the credential itself was never judged.
		var upstream *utils.UpstreamError
		if errors.As(err, &upstream) {
			p.deleteToken(userID)
			return nil, "", &utils.TokenExpiredError{}
		}
		return nil, "", err
	}
	if token.LinkedInUserId != "" {
		memberID = token.LinkedInUserId
	}
	return &token, memberID, nil
}

func (p *Publisher) prepareImage(post *model.Post, req PublishRequest) StageResult {
	_, err := p.Images.Generate(post.Id, req.UserID, post.Content, post.Topic, req.ImagePrompt)
	if err != nil {
		return logStage(StageResult{Name: "image_prep", Status: StageFailed, Err: err})
	}
	return logStage(StageResult{Name: "image_prep", Status: StageSuccess})
}

func (p *Publisher) attachMedia(accessToken string, memberID string, imageURL string) (StageResult, string) {
	asset, uploadURL, err := p.LinkedIn.RegisterUpload(accessToken, memberID)
	if err != nil {
		return logStage(StageResult{Name: "media_attach", Status: StageFailed, Err: err}), ""
	}
	image, err := fetchImageBytes(imageURL)
	if err != nil {
		return logStage(StageResult{Name: "media_attach", Status: StageFailed, Err: err}), ""
	}
	if err := p.LinkedIn.UploadAsset(accessToken, uploadURL, image); err != nil {
		return logStage(StageResult{Name: "media_attach", Status: StageFailed, Err: err}), ""
	}
	return logStage(StageResult{Name: "media_attach", Status: StageSuccess}), asset
}

func (p *Publisher) deleteToken(userID string) {
	if err := p.DB.Where("user_id = ?", userID).Delete(&model.LinkedInToken{}).Error; err != nil {
		Logger.Log.Error("failed to delete invalid linkedin token: ", err)
	}
}

// shareText renders the post body plus its hashtag line.
func shareText(post *model.Post) string {
	tags := utils.FormatHashtags(post.HashtagList())
	if tags == "" {
		return post.Content
	}
	return post.Content + "\n\n" + tags
}

// fetchImageBytes resolves an image URL into raw bytes. Generated images are
// stored as data URIs and decode locally, anything else is fetched over HTTP.
func fetchImageBytes(imageURL string) ([]byte, error) {
	if strings.HasPrefix(imageURL, "data:") {
		idx := strings.Index(imageURL, ",")
		if idx < 0 {
			return nil, errors.New("malformed data URI")
		}
		return base64.StdEncoding.DecodeString(imageURL[idx+1:])
	}

	res, err := clients.NewDefaultHttpClient().Get(imageURL)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if clients.IsNon200HttpResponse(res) {
		return nil, errors.Errorf("image fetch returned status %d", res.StatusCode)
	}
	return ioutil.ReadAll(res.Body)
}
