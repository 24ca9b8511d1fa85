package news

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/postpilothq/postpilot/clients"
	"github.com/postpilothq/postpilot/model"
	"github.com/postpilothq/postpilot/utils"
	"github.com/postpilothq/postpilot/utils/dotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func newFakeNewsAPI(t *testing.T, failFor map[string]bool) (*clients.NewsClient, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		query := r.URL.Query().Get("q")
		for industry, fail := range failFor {
			if fail && strings.HasPrefix(query, industry) {
				http.Error(w, "upstream down", http.StatusBadGateway)
				return
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"articles": []map[string]interface{}{
				{
					"source":      map[string]string{"name": "Example Wire"},
					"title":       "Industry shifts ahead",
					"url":         "https://example.com/shifts",
					"publishedAt": "2026-08-30T10:00:00Z",
					"description": "a snippet",
				},
				{
					"source":      map[string]string{"name": "Example Wire"},
					"title":       "Second story",
					"url":         "https://example.com/second",
					"publishedAt": "2026-08-29T10:00:00Z",
					"description": "another snippet",
				},
			},
		})
	}))
	t.Cleanup(srv.Close)

	os.Setenv("NEWS_API_KEY", "test-key")
	client := clients.NewNewsClient()
	client.BaseURL = srv.URL
	return client, &calls
}

func seedIndustry(t *testing.T, db *gorm.DB, name string, active bool) {
	t.Helper()
	require.NoError(t, db.Create(&model.TrackedIndustry{
		Id:     name,
		Name:   name,
		Active: active,
	}).Error)
}

func TestRefreshAllIsIdempotent(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	client, _ := newFakeNewsAPI(t, nil)
	f := NewFetcher(db, client, nil)
	seedIndustry(t, db, "consulting", true)

	require.NoError(t, f.RefreshAll())
	require.NoError(t, f.RefreshAll())

	// Same articles twice must not duplicate: url is the conflict key.
	var count int64
	require.NoError(t, db.Model(&model.NewsArticle{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestRefreshAllSkipsInactiveIndustries(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	client, calls := newFakeNewsAPI(t, nil)
	f := NewFetcher(db, client, nil)
	seedIndustry(t, db, "consulting", false)

	require.NoError(t, f.RefreshAll())
	assert.Equal(t, 0, *calls)
}

func TestRefreshAllOneIndustryFailureDoesNotAbortOthers(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	client, _ := newFakeNewsAPI(t, map[string]bool{"finance": true})
	f := NewFetcher(db, client, nil)
	seedIndustry(t, db, "finance", true)
	seedIndustry(t, db, "consulting", true)

	require.NoError(t, f.RefreshAll())

	// The healthy industry still landed its articles.
	var count int64
	require.NoError(t, db.Model(&model.NewsArticle{}).Where("industry = ?", "consulting").Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestRefreshAllRequiresAPIKey(t *testing.T) {
	os.Setenv("NEWS_API_KEY", "")
	f := NewFetcher(nil, clients.NewNewsClient(), nil)
	assert.Error(t, f.RefreshAll())
}

func TestRecentArticlesFiltersByIndustryAndTopic(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	f := NewFetcher(db, clients.NewNewsClient(), nil)

	require.NoError(t, db.Create(&model.NewsArticle{
		Id: "a1", Industry: "consulting", Title: "AI reshapes consulting", Url: "https://example.com/1",
	}).Error)
	require.NoError(t, db.Create(&model.NewsArticle{
		Id: "a2", Industry: "consulting", Title: "Hiring slows down", Url: "https://example.com/2",
	}).Error)
	require.NoError(t, db.Create(&model.NewsArticle{
		Id: "a3", Industry: "finance", Title: "AI in banking", Url: "https://example.com/3",
	}).Error)

	articles, err := f.RecentArticles("AI", "consulting", 5)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "AI reshapes consulting", articles[0].Title)

	articles, err = f.RecentArticles("", "consulting", 5)
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}
