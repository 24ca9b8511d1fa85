package imagegen

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/postpilothq/postpilot/clients"
	"github.com/postpilothq/postpilot/model"
	"github.com/postpilothq/postpilot/utils"
	"gorm.io/gorm"
)

const (
	promptTemplate = "Professional LinkedIn illustration, clean modern style, no text overlay. Theme: %s. Post excerpt: %s"

	maxExcerptLen = 200
	maxPromptLen  = 1000
)

// GeneratedImage is what callers get back: the stored data URI plus the
// prompt that produced it.
type GeneratedImage struct {
	ImageUrl string
	Prompt   string
}

// ImageGenerator turns a post into an illustration via the image API and
// records it as a new PostImage row. The PostImage table is append-only
// history, the newest row for a post is its current image; nothing is
// denormalized back onto the post row.
type ImageGenerator struct {
	DB        *gorm.DB
	Stability *clients.StabilityClient
}

func NewImageGenerator(db *gorm.DB, stability *clients.StabilityClient) *ImageGenerator {
	return &ImageGenerator{DB: db, Stability: stability}
}

// Generate validates its inputs, derives the effective prompt and makes one
// image API call. Validation and configuration failures happen before any
// outbound request.
func (g *ImageGenerator) Generate(postID string, userID string, postContent string, topic string, customPrompt string) (*GeneratedImage, error) {
	if postID == "" || userID == "" || postContent == "" {
		return nil, utils.NewValidationError("postId, userId and postContent are required")
	}
	if !g.Stability.HasAPIKey() {
		return nil, utils.NewConfigurationError("STABILITY_API_KEY is not configured")
	}

	prompt := EffectivePrompt(postContent, topic, customPrompt)

	encoded, err := g.Stability.GenerateImage(prompt)
	if err != nil {
		return nil, err
	}

	dataURI := "data:image/png;base64," + encoded
	row := model.PostImage{
		Id:           uuid.New().String(),
		PostId:       postID,
		UserId:       userID,
		Prompt:       prompt,
		CustomPrompt: strings.TrimSpace(customPrompt),
		ImageUrl:     dataURI,
		StoragePath:  fmt.Sprintf("post-images/%s/%s.png", postID, uuid.New().String()),
	}
	if err := g.DB.Create(&row).Error; err != nil {
		return nil, utils.NewPersistenceError("create post image", err)
	}

	return &GeneratedImage{ImageUrl: dataURI, Prompt: prompt}, nil
}

// EffectivePrompt picks the user's custom prompt when non-empty after
// trimming, otherwise derives one from the template, the topic and the first
// 200 characters of the post. Either way the result is capped at 1000
// characters.
func EffectivePrompt(postContent string, topic string, customPrompt string) string {
	prompt := strings.TrimSpace(customPrompt)
	if prompt == "" {
		prompt = fmt.Sprintf(promptTemplate, topic, truncateRunes(postContent, maxExcerptLen))
	}
	return truncateRunes(prompt, maxPromptLen)
}

// truncateRunes cuts s to at most n characters. Counting runes instead of
// bytes keeps multi-byte content intact, a byte slice could split a character
// and hand the image API invalid UTF-8.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
