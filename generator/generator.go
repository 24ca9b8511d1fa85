package generator

import (
	"time"

	"github.com/postpilothq/postpilot/clients"
	"github.com/postpilothq/postpilot/utils"
	Logger "github.com/postpilothq/postpilot/utils/log"
)

const (
	DefaultNumPosts = 3

	// How many articles a generation request may be grounded on.
	maxEnrichmentArticles = 3
)

// Request carries everything one generation run needs. Tone/Pov/Industry
// default from UserPreferences at the handler boundary, by the time a
// request reaches the generator the required fields must be populated.
type Request struct {
	UserId        string
	Topic         string
	Tone          string
	Pov           string
	WritingSample string
	Industry      string
	NumPosts      int
	IncludeNews   bool
}

// SourceCitation is one article citation attached to a generated variant.
type SourceCitation struct {
	Title           string
	Url             string
	PublicationDate *time.Time
}

// Variant is one generated post candidate. Hook is the opening line, kept
// separately so the UI can render it emphasized.
type Variant struct {
	Content       string
	Hook          string
	Hashtags      []string
	Sources       []SourceCitation
	NewsReference *string
}

// Result is the outcome of one generation run. StyleAnalysis is the model's
// free-form read of the user's writing sample, empty when no sample was
// given or the model skipped the section.
type Result struct {
	Variants      []Variant
	StyleAnalysis string
}

// Article is the slice of a news article the generator cares about.
type Article struct {
	Title   string
	Url     string
	Snippet string

	PublishedDate *time.Time
}

// ArticleReader is the news read path, satisfied by news.Fetcher. Kept as an
// interface so tests can hand the generator canned articles.
type ArticleReader interface {
	RecentArticles(topic string, industry string, limit int) ([]Article, error)
}

// Generator produces post variants from a single language-model call. It is
// pure with respect to the store: persistence of the result is entirely the
// Persister's job.
type Generator struct {
	OpenAI   *clients.OpenAIClient
	Articles ArticleReader
}

func NewGenerator(openAI *clients.OpenAIClient, articles ArticleReader) *Generator {
	return &Generator{OpenAI: openAI, Articles: articles}
}

// Generate validates the request, optionally enriches it with recent news,
// makes one model call and parses the delimited response. A response with
// fewer sections than requested is returned as-is, partial results are
// accepted.
func (g *Generator) Generate(req Request) (*Result, error) {
	if req.UserId == "" || req.Topic == "" || req.Tone == "" || req.Pov == "" {
		return nil, utils.NewValidationError("userId, topic, tone and pov are required")
	}
	if !g.OpenAI.HasAPIKey() {
		return nil, utils.NewConfigurationError("OPENAI_API_KEY is not configured")
	}
	if req.NumPosts <= 0 {
		req.NumPosts = DefaultNumPosts
	}

	// Best effort enrichment: a failing article fetch degrades to an empty
	// list, it never fails the generation itself.
	articles := []Article{}
	if req.IncludeNews && g.Articles != nil {
		fetched, err := g.Articles.RecentArticles(req.Topic, req.Industry, maxEnrichmentArticles)
		if err != nil {
			Logger.Log.Warn("news enrichment failed, generating without articles: ", err)
		} else {
			articles = fetched
		}
	}

	raw, err := g.OpenAI.Complete(systemPrompt, BuildPrompt(req, articles))
	if err != nil {
		return nil, err
	}

	variants, styleAnalysis := ParseVariants(raw, req.NumPosts)
	if len(variants) < req.NumPosts {
		Logger.Log.Warnf("model returned %d of %d requested posts, forwarding partial result", len(variants), req.NumPosts)
	}

	attachCitations(variants, articles)

	return &Result{Variants: variants, StyleAnalysis: styleAnalysis}, nil
}

// attachCitations links the articles the prompt was grounded on to every
// variant. The first article doubles as the variant's news reference.
func attachCitations(variants []Variant, articles []Article) {
	if len(articles) == 0 {
		return
	}
	citations := []SourceCitation{}
	for _, a := range articles {
		citations = append(citations, SourceCitation{
			Title:           a.Title,
			Url:             a.Url,
			PublicationDate: a.PublishedDate,
		})
	}
	reference := articles[0].Title
	for i := range variants {
		variants[i].Sources = citations
		variants[i].NewsReference = &reference
	}
}
