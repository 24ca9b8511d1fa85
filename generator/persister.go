package generator

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/postpilothq/postpilot/model"
	"github.com/postpilothq/postpilot/utils"
	Logger "github.com/postpilothq/postpilot/utils/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Persister writes generated variants into the store as one new version
// group. It deliberately lives apart from the Generator: generation is pure,
// all side effects happen here.
type Persister struct {
	DB *gorm.DB
}

func NewPersister(db *gorm.DB) *Persister {
	return &Persister{DB: db}
}

// VariantFailure records one variant that failed to insert, so the caller
// can surface or retry it instead of silently losing it.
type VariantFailure struct {
	Index int
	Err   error
}

// SaveResult enumerates per-variant outcomes of one Save call. Partial
// success is an expected state: Saved holds whichever rows made it in.
type SaveResult struct {
	VersionGroup string
	Saved        []model.Post
	Failures     []VariantFailure
}

// CreateGeneratedContent records the generation request itself. Immutable
// after creation except for status updates.
func (p *Persister) CreateGeneratedContent(req Request, styleAnalysis string) (*model.GeneratedContent, error) {
	gc := model.GeneratedContent{
		Id:            uuid.New().String(),
		UserId:        req.UserId,
		Topic:         req.Topic,
		Tone:          req.Tone,
		Pov:           req.Pov,
		WritingSample: req.WritingSample,
		Status:        model.ContentStatusDraft,
	}
	if styleAnalysis != "" {
		encoded, err := json.Marshal(map[string]string{"analysis": styleAnalysis})
		if err != nil {
			return nil, err
		}
		gc.StyleAnalysis = datatypes.JSON(encoded)
	}
	if err := p.DB.Create(&gc).Error; err != nil {
		return nil, utils.NewPersistenceError("create generated content", err)
	}
	return &gc, nil
}

// Save writes all variants under one fresh version group, every row current.
// A variant that fails to insert is logged and reported in the result, it
// does not abort the batch. Source rows ride along with their parent post,
// a failing source insert is logged but never rolls the post back.
func (p *Persister) Save(userID string, generatedContentID *string, topic string, variants []Variant) (*SaveResult, error) {
	if userID == "" {
		return nil, utils.NewValidationError("userId is required")
	}
	if len(variants) == 0 {
		return nil, utils.NewValidationError("no variants to save")
	}

	result := &SaveResult{VersionGroup: uuid.New().String()}
	for i, variant := range variants {
		post, err := p.insertVariant(userID, generatedContentID, topic, result.VersionGroup, variant)
		if err != nil {
			Logger.Log.Error("failed to save generated variant: ", err)
			result.Failures = append(result.Failures, VariantFailure{Index: i, Err: err})
			continue
		}
		result.Saved = append(result.Saved, *post)
	}
	return result, nil
}

// SaveRevision inserts an edited variant as the new current version of an
// existing group. The previous current row loses its flag in the same
// transaction, keeping the at-most-one-current invariant.
func (p *Persister) SaveRevision(userID string, versionGroup string, variant Variant) (*model.Post, error) {
	if userID == "" || versionGroup == "" {
		return nil, utils.NewValidationError("userId and versionGroup are required")
	}

	var post *model.Post
	err := p.DB.Transaction(func(tx *gorm.DB) error {
		// Topic and generation link carry forward from the row being replaced.
		var prior model.Post
		if err := tx.Where("version_group = ? AND user_id = ? AND is_current_version = ?", versionGroup, userID, true).
			Limit(1).Find(&prior).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Post{}).
			Where("version_group = ? AND user_id = ? AND is_current_version = ?", versionGroup, userID, true).
			Update("is_current_version", false).Error; err != nil {
			return err
		}
		inserted, err := buildPostRow(userID, prior.GeneratedContentId, prior.Topic, versionGroup, variant)
		if err != nil {
			return err
		}
		if err := tx.Create(inserted).Error; err != nil {
			return err
		}
		post = inserted
		return nil
	})
	if err != nil {
		return nil, utils.NewPersistenceError("save revision", err)
	}

	p.insertSources(post.Id, variant.Sources)
	return post, nil
}

func (p *Persister) insertVariant(userID string, generatedContentID *string, topic string, versionGroup string, variant Variant) (*model.Post, error) {
	post, err := buildPostRow(userID, generatedContentID, topic, versionGroup, variant)
	if err != nil {
		return nil, err
	}
	if err := p.DB.Create(post).Error; err != nil {
		return nil, utils.NewPersistenceError("create post", err)
	}

	p.insertSources(post.Id, variant.Sources)
	return post, nil
}

// insertSources writes citation rows for a post, defaulting the publication
// date to today when the generator did not supply one. Failures are logged,
// readers treat missing sources as not yet available.
func (p *Persister) insertSources(postID string, sources []SourceCitation) {
	for _, source := range sources {
		publicationDate := source.PublicationDate
		if publicationDate == nil {
			today := time.Now()
			publicationDate = &today
		}
		row := model.PostSource{
			Id:              uuid.New().String(),
			PostId:          postID,
			Title:           source.Title,
			Url:             source.Url,
			PublicationDate: publicationDate,
		}
		if err := p.DB.Create(&row).Error; err != nil {
			Logger.Log.Error("failed to save post source, continuing: ", err)
		}
	}
}

func buildPostRow(userID string, generatedContentID *string, topic string, versionGroup string, variant Variant) (*model.Post, error) {
	post := model.Post{
		Id:                 uuid.New().String(),
		UserId:             userID,
		GeneratedContentId: generatedContentID,
		Topic:              topic,
		Content:            variant.Content,
		Hook:               variant.Hook,
		VersionGroup:       versionGroup,
		IsCurrentVersion:   true,
		NewsReference:      variant.NewsReference,
	}
	if err := post.SetHashtagList(variant.Hashtags); err != nil {
		return nil, err
	}
	return &post, nil
}
