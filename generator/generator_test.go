package generator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/postpilothq/postpilot/clients"
	"github.com/postpilothq/postpilot/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArticleReader struct {
	articles []Article
	err      error
}

func (f fakeArticleReader) RecentArticles(topic string, industry string, limit int) ([]Article, error) {
	return f.articles, f.err
}

// newFakeOpenAI serves a canned completion and counts how many requests it
// saw.
func newFakeOpenAI(t *testing.T, completion string, calls *int) *clients.OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": completion}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	os.Setenv("OPENAI_API_KEY", "test-key")
	client := clients.NewOpenAIClient()
	client.BaseURL = srv.URL
	return client
}

func validRequest() Request {
	return Request{
		UserId: "user-1",
		Topic:  "AI in consulting",
		Tone:   "professional",
		Pov:    "first person",
	}
}

func TestGenerateValidatesRequiredFields(t *testing.T) {
	calls := 0
	g := NewGenerator(newFakeOpenAI(t, "===POST===\nbody", &calls), nil)

	for _, req := range []Request{
		{Topic: "t", Tone: "t", Pov: "p"},
		{UserId: "u", Tone: "t", Pov: "p"},
		{UserId: "u", Topic: "t", Pov: "p"},
		{UserId: "u", Topic: "t", Tone: "t"},
	} {
		_, err := g.Generate(req)
		var validation *utils.ValidationError
		require.True(t, errors.As(err, &validation), "expected validation error for %+v", req)
	}
	// Validation failures must never reach the model.
	assert.Equal(t, 0, calls)
}

func TestGenerateReturnsRequestedCount(t *testing.T) {
	completion := "===POST===\none\n===HASHTAGS===\n#a\n" +
		"===POST===\ntwo\n===HASHTAGS===\n#b\n" +
		"===POST===\nthree\n===HASHTAGS===\n#c"
	calls := 0
	g := NewGenerator(newFakeOpenAI(t, completion, &calls), nil)

	result, err := g.Generate(validRequest())
	require.NoError(t, err)
	require.Len(t, result.Variants, 3)
	assert.Equal(t, 1, calls)
	for _, v := range result.Variants {
		assert.NotEmpty(t, v.Content)
		assert.NotNil(t, v.Hashtags)
	}
}

func TestGeneratePartialResponseIsAccepted(t *testing.T) {
	calls := 0
	g := NewGenerator(newFakeOpenAI(t, "===POST===\nonly one", &calls), nil)

	result, err := g.Generate(validRequest())
	require.NoError(t, err)
	assert.Len(t, result.Variants, 1)
}

func TestGenerateNewsEnrichmentFailureDegrades(t *testing.T) {
	calls := 0
	g := NewGenerator(
		newFakeOpenAI(t, "===POST===\nbody\n===HASHTAGS===\n#a", &calls),
		fakeArticleReader{err: errors.New("news api down")},
	)

	req := validRequest()
	req.IncludeNews = true
	result, err := g.Generate(req)
	require.NoError(t, err)
	require.Len(t, result.Variants, 1)
	assert.Empty(t, result.Variants[0].Sources)
}

func TestGenerateAttachesCitations(t *testing.T) {
	calls := 0
	g := NewGenerator(
		newFakeOpenAI(t, "===POST===\nbody\n===HASHTAGS===\n#a", &calls),
		fakeArticleReader{articles: []Article{
			{Title: "Big news", Url: "https://example.com/a"},
			{Title: "Other news", Url: "https://example.com/b"},
		}},
	)

	req := validRequest()
	req.IncludeNews = true
	result, err := g.Generate(req)
	require.NoError(t, err)
	require.Len(t, result.Variants, 1)

	v := result.Variants[0]
	require.Len(t, v.Sources, 2)
	assert.Equal(t, "Big news", v.Sources[0].Title)
	require.NotNil(t, v.NewsReference)
	assert.Equal(t, "Big news", *v.NewsReference)
}

func TestGenerateUpstreamErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	os.Setenv("OPENAI_API_KEY", "test-key")
	client := clients.NewOpenAIClient()
	client.BaseURL = srv.URL
	g := NewGenerator(client, nil)

	_, err := g.Generate(validRequest())
	var upstream *utils.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
}

func TestBuildPromptMentionsArticles(t *testing.T) {
	req := validRequest()
	req.NumPosts = 2
	prompt := BuildPrompt(req, []Article{{Title: "Quarterly AI report", Snippet: "spending doubled"}})
	assert.Contains(t, prompt, "Quarterly AI report")
	assert.Contains(t, prompt, "spending doubled")
	assert.Contains(t, prompt, PostDelimiter)
	assert.Contains(t, prompt, HashtagsDelimiter)
}

func TestBuildPromptStyleSectionOnlyWithSample(t *testing.T) {
	req := validRequest()
	assert.NotContains(t, BuildPrompt(req, nil), StyleDelimiter)
	req.WritingSample = "I write like this."
	assert.Contains(t, BuildPrompt(req, nil), StyleDelimiter)
}
