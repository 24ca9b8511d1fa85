package news

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/postpilothq/postpilot/clients"
	"github.com/postpilothq/postpilot/generator"
	"github.com/postpilothq/postpilot/model"
	"github.com/postpilothq/postpilot/utils"
	Logger "github.com/postpilothq/postpilot/utils/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fetcher keeps the news_articles table fresh and serves the generator's
// read path. Refreshes are triggered over HTTP by an external cron, nothing
// in this process schedules them.
type Fetcher struct {
	DB     *gorm.DB
	Client *clients.NewsClient

	// Cache is optional; nil disables caching of the read path.
	Cache *utils.RedisClient
}

func NewFetcher(db *gorm.DB, client *clients.NewsClient, cache *utils.RedisClient) *Fetcher {
	return &Fetcher{DB: db, Client: client, Cache: cache}
}

// RefreshAll pulls recent articles for every active tracked industry. The
// industries fan out concurrently, one industry failing does not abort the
// others. Upserts are keyed by article url so repeated runs are idempotent.
func (f *Fetcher) RefreshAll() error {
	if !f.Client.HasAPIKey() {
		return utils.NewConfigurationError("NEWS_API_KEY is not configured")
	}

	var industries []model.TrackedIndustry
	if err := f.DB.Where("active = ?", true).Find(&industries).Error; err != nil {
		return utils.NewPersistenceError("load tracked industries", err)
	}

	var wg sync.WaitGroup
	for ind := range industries {
		industry := industries[ind]
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.refreshIndustry(industry.Name); err != nil {
				Logger.Log.Errorf("fail to refresh industry %s: %s", industry.Name, err)
			}
		}()
	}
	wg.Wait()
	return nil
}

func (f *Fetcher) refreshIndustry(industry string) error {
	results, err := f.Client.SearchIndustry(industry)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Url == "" {
			continue
		}
		// Result fields map onto the row field-by-field.
		article := model.NewsArticle{
			Id:       uuid.New().String(),
			Industry: industry,
		}
		if err := copier.Copy(&article, &r); err != nil {
			Logger.Log.Errorf("fail to map article %s: %s", r.Url, err)
			continue
		}
		err := f.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "source", "published_date", "snippet", "content"}),
		}).Create(&article).Error
		if err != nil {
			Logger.Log.Errorf("fail to upsert article %s: %s", r.Url, err)
		}
	}
	return nil
}

// RecentArticles is the generator's read path: newest stored articles for an
// industry, optionally narrowed by topic. Served from the redis cache when
// possible, a cold or failing cache falls through to postgres.
func (f *Fetcher) RecentArticles(topic string, industry string, limit int) ([]generator.Article, error) {
	if f.Cache != nil {
		cached := []generator.Article{}
		if f.Cache.GetCachedArticles(industry, topic, limit, &cached) {
			return cached, nil
		}
	}

	query := f.DB.Model(&model.NewsArticle{}).Order("published_date DESC NULLS LAST").Limit(limit)
	if industry != "" {
		query = query.Where("industry = ?", industry)
	}
	if topic != "" {
		query = query.Where("(title ILIKE ? OR snippet ILIKE ?)", "%"+topic+"%", "%"+topic+"%")
	}

	var rows []model.NewsArticle
	if err := query.Find(&rows).Error; err != nil {
		return nil, utils.NewPersistenceError("load recent articles", err)
	}

	articles := []generator.Article{}
	for _, row := range rows {
		articles = append(articles, generator.Article{
			Title:         row.Title,
			Url:           row.Url,
			Snippet:       row.Snippet,
			PublishedDate: row.PublishedDate,
		})
	}

	if f.Cache != nil {
		if err := f.Cache.SetCachedArticles(industry, topic, limit, articles); err != nil {
			Logger.Log.Warn("fail to cache recent articles: ", err)
		}
	}
	return articles, nil
}
