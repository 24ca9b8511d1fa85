package clients

import (
	"net/http"
	"os"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	openAIModel          = "gpt-4o-mini"
)

// OpenAIClient calls the chat completions API to produce post drafts.
// BaseURL is overridable so tests can point it at a local fake.
type OpenAIClient struct {
	BaseURL string
	apiKey  string
	http    *HttpClient
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewOpenAIClient() *OpenAIClient {
	apiKey := os.Getenv("OPENAI_API_KEY")
	header := http.Header{}
	header.Set("Authorization", "Bearer "+apiKey)
	return &OpenAIClient{
		BaseURL: defaultOpenAIBaseURL,
		apiKey:  apiKey,
		http:    NewHttpClient(header),
	}
}

func (c *OpenAIClient) HasAPIKey() bool {
	return c.apiKey != ""
}

// Complete sends one chat completion request and returns the raw assistant
// message. Parsing of the delimited post sections is the generator's job.
func (c *OpenAIClient) Complete(systemPrompt string, userPrompt string) (string, error) {
	res, err := c.http.PostJSON(c.BaseURL+"/v1/chat/completions", chatCompletionRequest{
		Model: openAIModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if err := CheckStatus("openai", res); err != nil {
		return "", err
	}
	var decoded chatCompletionResponse
	if err := DecodeJSONBody(res, &decoded); err != nil {
		return "", err
	}
	if len(decoded.Choices) == 0 {
		return "", &UnexpectedResponseError{API: "openai", Reason: "no choices returned"}
	}
	return decoded.Choices[0].Message.Content, nil
}
