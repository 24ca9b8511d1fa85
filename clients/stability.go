package clients

import (
	"net/http"
	"os"
)

const (
	defaultStabilityBaseURL = "https://api.stability.ai"
	stabilityEngine         = "stable-diffusion-xl-1024-v1-0"

	// Fixed generation parameters, deterministic for a given prompt.
	imageWidth    = 1024
	imageHeight   = 1024
	imageSteps    = 30
	imageSeed     = 0
	imageCfgScale = 7
)

// StabilityClient calls the text-to-image API and returns base64 artifacts.
type StabilityClient struct {
	BaseURL string
	apiKey  string
	http    *HttpClient
}

type textPrompt struct {
	Text string `json:"text"`
}

type textToImageRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	CfgScale    int          `json:"cfg_scale"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Samples     int          `json:"samples"`
	Steps       int          `json:"steps"`
	Seed        int          `json:"seed"`
}

type textToImageResponse struct {
	Artifacts []struct {
		Base64       string `json:"base64"`
		FinishReason string `json:"finishReason"`
	} `json:"artifacts"`
}

func NewStabilityClient() *StabilityClient {
	apiKey := os.Getenv("STABILITY_API_KEY")
	header := http.Header{}
	header.Set("Authorization", "Bearer "+apiKey)
	header.Set("Accept", "application/json")
	return &StabilityClient{
		BaseURL: defaultStabilityBaseURL,
		apiKey:  apiKey,
		http:    NewHttpClient(header),
	}
}

func (c *StabilityClient) HasAPIKey() bool {
	return c.apiKey != ""
}

// GenerateImage produces one image for the prompt and returns it as a raw
// base64 string, PNG encoded.
func (c *StabilityClient) GenerateImage(prompt string) (string, error) {
	uri := c.BaseURL + "/v1/generation/" + stabilityEngine + "/text-to-image"
	res, err := c.http.PostJSON(uri, textToImageRequest{
		TextPrompts: []textPrompt{{Text: prompt}},
		CfgScale:    imageCfgScale,
		Width:       imageWidth,
		Height:      imageHeight,
		Samples:     1,
		Steps:       imageSteps,
		Seed:        imageSeed,
	})
	if err != nil {
		return "", err
	}
	if err := CheckStatus("stability", res); err != nil {
		return "", err
	}
	var decoded textToImageResponse
	if err := DecodeJSONBody(res, &decoded); err != nil {
		return "", err
	}
	if len(decoded.Artifacts) == 0 {
		return "", &UnexpectedResponseError{API: "stability", Reason: "no artifacts returned"}
	}
	return decoded.Artifacts[0].Base64, nil
}
