package clients

import (
	"fmt"
	"os"
	"time"

	"github.com/araddon/dateparse"
)

const (
	defaultNewsBaseURL = "https://newsapi.org"

	// Query shape used for every industry refresh.
	newsQueryTemplate = "%s AND (business OR professional OR industry)"
	newsPageSize      = "10"
)

// NewsClient queries the news search API for recent articles per industry.
type NewsClient struct {
	BaseURL string
	apiKey  string
	http    *HttpClient
}

// NewsResult is one article as returned by the search API, with the
// published date already parsed. Nil PublishedDate means the upstream date
// was absent or unparsable.
type NewsResult struct {
	Title         string
	Url           string
	Source        string
	Snippet       string
	Content       string
	PublishedDate *time.Time
}

type newsSearchResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Url         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Description string `json:"description"`
		Content     string `json:"content"`
	} `json:"articles"`
}

func NewNewsClient() *NewsClient {
	return &NewsClient{
		BaseURL: defaultNewsBaseURL,
		apiKey:  os.Getenv("NEWS_API_KEY"),
		http:    NewDefaultHttpClient(),
	}
}

func (c *NewsClient) HasAPIKey() bool {
	return c.apiKey != ""
}

// SearchIndustry pulls up to 10 recent articles for one industry, newest
// first.
func (c *NewsClient) SearchIndustry(industry string) ([]NewsResult, error) {
	res, err := c.http.GetWithQueryParams(c.BaseURL+"/v2/everything", map[string]string{
		"q":        fmt.Sprintf(newsQueryTemplate, industry),
		"pageSize": newsPageSize,
		"sortBy":   "publishedAt",
		"language": "en",
		"apiKey":   c.apiKey,
	})
	if err != nil {
		return nil, err
	}
	if err := CheckStatus("newsapi", res); err != nil {
		return nil, err
	}
	var decoded newsSearchResponse
	if err := DecodeJSONBody(res, &decoded); err != nil {
		return nil, err
	}

	results := []NewsResult{}
	for _, a := range decoded.Articles {
		r := NewsResult{
			Title:   a.Title,
			Url:     a.Url,
			Source:  a.Source.Name,
			Snippet: a.Description,
			Content: a.Content,
		}
		// Upstream date formats drift, be liberal in what we accept here.
		if parsed, err := dateparse.ParseAny(a.PublishedAt); err == nil {
			r.PublishedDate = &parsed
		}
		results = append(results, r)
	}
	return results, nil
}
