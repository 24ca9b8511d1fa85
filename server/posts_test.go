package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/postpilothq/postpilot/generator"
	"github.com/postpilothq/postpilot/model"
	"github.com/postpilothq/postpilot/utils"
	"github.com/postpilothq/postpilot/utils/dotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// newTestRouter wires the API against a temp DB without the session
// middleware; tests stamp the "sub" header themselves.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db, _ := utils.CreateTempDB(t)
	router := gin.New()
	router.HandleMethodNotAllowed = true
	s := NewAPIServer(db, nil, generator.NewPersister(db), nil, nil, nil)
	s.RegisterRoutes(router)
	return router, db
}

func doJSON(router *gin.Engine, method string, path string, sub string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer = bytes.NewBuffer(nil)
	if payload != nil {
		encoded, _ := json.Marshal(payload)
		body = bytes.NewBuffer(encoded)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if sub != "" {
		req.Header.Set("sub", sub)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedPost(t *testing.T, db *gorm.DB, id string, userID string, current bool) *model.Post {
	t.Helper()
	post := model.Post{
		Id:               id,
		UserId:           userID,
		Content:          "original content",
		VersionGroup:     "vg-" + id,
		IsCurrentVersion: current,
	}
	require.NoError(t, db.Create(&post).Error)
	return &post
}

func TestUpdatePostEditsInPlace(t *testing.T) {
	router, db := newTestRouter(t)
	seedPost(t, db, "p1", "user-1", true)

	w := doJSON(router, "PUT", "/api/posts/p1", "user-1", gin.H{
		"content":  "edited content",
		"hashtags": []string{"AI"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var post model.Post
	require.NoError(t, db.Where("id = ?", "p1").First(&post).Error)
	assert.Equal(t, "edited content", post.Content)
	assert.Equal(t, "vg-p1", post.VersionGroup)
	assert.True(t, post.IsCurrentVersion)
	assert.Equal(t, []string{"AI"}, post.HashtagList())
}

func TestUpdatePostEnforcesOwnership(t *testing.T) {
	router, db := newTestRouter(t)
	seedPost(t, db, "p1", "user-1", true)

	w := doJSON(router, "PUT", "/api/posts/p1", "user-2", gin.H{"content": "hijacked"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var post model.Post
	require.NoError(t, db.Where("id = ?", "p1").First(&post).Error)
	assert.Equal(t, "original content", post.Content)
}

func TestRevisePostCreatesNewCurrentVersion(t *testing.T) {
	router, db := newTestRouter(t)
	seedPost(t, db, "p1", "user-1", true)

	w := doJSON(router, "POST", "/api/posts/p1/revisions", "user-1", gin.H{
		"content":  "revised body",
		"hashtags": []string{"AI"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var revised postView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &revised))
	assert.NotEqual(t, "p1", revised.Id)
	assert.Equal(t, "vg-p1", revised.VersionGroup)
	assert.True(t, revised.IsCurrentVersion)

	// The replaced row survives as history and loses its flag.
	var current []model.Post
	require.NoError(t, db.Where("version_group = ? AND is_current_version = ?", "vg-p1", true).Find(&current).Error)
	require.Len(t, current, 1)
	assert.Equal(t, revised.Id, current[0].Id)

	var old model.Post
	require.NoError(t, db.Where("id = ?", "p1").First(&old).Error)
	assert.False(t, old.IsCurrentVersion)
	assert.Equal(t, "original content", old.Content)
}

func TestDeletePostCascades(t *testing.T) {
	router, db := newTestRouter(t)
	seedPost(t, db, "p1", "user-1", true)
	require.NoError(t, db.Create(&model.PostSource{Id: "s1", PostId: "p1", Title: "cite"}).Error)
	require.NoError(t, db.Create(&model.PostSchedule{Id: "sch1", PostId: "p1", UserId: "user-1", ScheduledTime: time.Now().Add(time.Hour), Status: model.ScheduleStatusPending}).Error)
	require.NoError(t, db.Create(&model.PostImage{Id: "i1", PostId: "p1", UserId: "user-1", ImageUrl: "data:image/png;base64,eA=="}).Error)

	w := doJSON(router, "DELETE", "/api/posts/p1", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, check := range []struct {
		name  string
		model interface{}
	}{
		{"posts", &model.Post{}},
		{"sources", &model.PostSource{}},
		{"schedules", &model.PostSchedule{}},
		{"images", &model.PostImage{}},
	} {
		var count int64
		require.NoError(t, db.Model(check.model).Count(&count).Error)
		assert.Equal(t, int64(0), count, "expected no remaining %s", check.name)
	}
}

func TestListPostsOnlyCurrentVersions(t *testing.T) {
	router, db := newTestRouter(t)
	seedPost(t, db, "p1", "user-1", true)
	seedPost(t, db, "p2", "user-1", false)
	seedPost(t, db, "p3", "user-2", true)

	w := doJSON(router, "GET", "/api/posts", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Posts []postView `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "p1", resp.Posts[0].Id)
}

func TestSchedulePostReplacesPriorSchedule(t *testing.T) {
	router, db := newTestRouter(t)
	seedPost(t, db, "p1", "user-1", true)

	first := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	w := doJSON(router, "PUT", "/api/posts/p1/schedule", "user-1", gin.H{"scheduledTime": first})
	require.Equal(t, http.StatusOK, w.Code)

	second := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	w = doJSON(router, "PUT", "/api/posts/p1/schedule", "user-1", gin.H{"scheduledTime": second})
	require.Equal(t, http.StatusOK, w.Code)

	// Replace semantics: exactly one pending schedule, the newest one.
	var schedules []model.PostSchedule
	require.NoError(t, db.Where("post_id = ?", "p1").Find(&schedules).Error)
	require.Len(t, schedules, 1)
	assert.Equal(t, second.Unix(), schedules[0].ScheduledTime.Unix())
	assert.Equal(t, model.ScheduleStatusPending, schedules[0].Status)

	var post model.Post
	require.NoError(t, db.Where("id = ?", "p1").First(&post).Error)
	require.NotNil(t, post.ScheduledFor)
	assert.Equal(t, second.Unix(), post.ScheduledFor.Unix())
}

func TestSchedulePostRejectsPastTime(t *testing.T) {
	router, db := newTestRouter(t)
	seedPost(t, db, "p1", "user-1", true)

	w := doJSON(router, "PUT", "/api/posts/p1/schedule", "user-1", gin.H{
		"scheduledTime": time.Now().Add(-time.Hour),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewsRefreshRejectsWrongMethod(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doJSON(router, "GET", "/api/news/refresh", "user-1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
