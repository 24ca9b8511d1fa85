package imagegen

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/postpilothq/postpilot/clients"
	"github.com/postpilothq/postpilot/model"
	"github.com/postpilothq/postpilot/utils"
	"github.com/postpilothq/postpilot/utils/dotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func newFakeStability(t *testing.T, calls *int) *clients.StabilityClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		json.NewEncoder(w).Encode(map[string]interface{}{
			"artifacts": []map[string]string{{"base64": "aGVsbG8=", "finishReason": "SUCCESS"}},
		})
	}))
	t.Cleanup(srv.Close)

	os.Setenv("STABILITY_API_KEY", "test-key")
	client := clients.NewStabilityClient()
	client.BaseURL = srv.URL
	return client
}

func TestGenerateValidatesBeforeAnyNetworkCall(t *testing.T) {
	calls := 0
	g := NewImageGenerator(nil, newFakeStability(t, &calls))

	_, err := g.Generate("post-1", "user-1", "", "topic", "")
	var validation *utils.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, 0, calls)

	_, err = g.Generate("", "user-1", "content", "topic", "")
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, 0, calls)
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	os.Setenv("STABILITY_API_KEY", "")
	g := NewImageGenerator(nil, clients.NewStabilityClient())

	_, err := g.Generate("post-1", "user-1", "content", "topic", "")
	var configuration *utils.ConfigurationError
	require.True(t, errors.As(err, &configuration))
}

func TestGenerateStoresDataURI(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	calls := 0
	g := NewImageGenerator(db, newFakeStability(t, &calls))

	generated, err := g.Generate("post-1", "user-1", "post body", "AI", "")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, strings.HasPrefix(generated.ImageUrl, "data:image/png;base64,"))

	var rows []model.PostImage
	require.NoError(t, db.Where("post_id = ?", "post-1").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, generated.ImageUrl, rows[0].ImageUrl)
	assert.Equal(t, generated.Prompt, rows[0].Prompt)
}

func TestGenerateUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of credits", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	os.Setenv("STABILITY_API_KEY", "test-key")
	client := clients.NewStabilityClient()
	client.BaseURL = srv.URL
	g := NewImageGenerator(nil, client)

	_, err := g.Generate("post-1", "user-1", "content", "topic", "")
	var upstream *utils.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusPaymentRequired, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "out of credits")
}

func TestEffectivePrompt(t *testing.T) {
	// Custom prompt wins when non-empty after trimming.
	assert.Equal(t, "my prompt", EffectivePrompt("content", "topic", "  my prompt  "))

	// Whitespace-only custom prompt falls back to the derived template.
	derived := EffectivePrompt("content body", "growth", "   ")
	assert.Contains(t, derived, "growth")
	assert.Contains(t, derived, "content body")

	// Only the first 200 characters of the post feed the derived prompt.
	long := strings.Repeat("x", 500)
	derived = EffectivePrompt(long, "topic", "")
	assert.NotContains(t, derived, strings.Repeat("x", 201))
	assert.Contains(t, derived, strings.Repeat("x", 200))

	// Everything is capped at 1000 characters.
	assert.Len(t, EffectivePrompt("c", "t", strings.Repeat("y", 2000)), 1000)
}

func TestEffectivePromptTruncatesOnRuneBoundaries(t *testing.T) {
	// Both caps count characters, not bytes, and never split a rune.
	capped := EffectivePrompt("c", "t", strings.Repeat("漢", 1200))
	assert.True(t, utf8.ValidString(capped))
	assert.Equal(t, 1000, utf8.RuneCountInString(capped))

	derived := EffectivePrompt(strings.Repeat("漢", 300), "topic", "")
	assert.True(t, utf8.ValidString(derived))
	assert.Contains(t, derived, strings.Repeat("漢", 200))
	assert.NotContains(t, derived, strings.Repeat("漢", 201))
}
