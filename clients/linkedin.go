package clients

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/postpilothq/postpilot/utils"
)

const defaultLinkedInBaseURL = "https://api.linkedin.com"

// LinkedInClient covers the slice of the LinkedIn REST API the publisher
// needs: token validation, media asset registration/upload and share
// submission. Every method takes the user's access token explicitly, the
// client itself holds no credential state.
type LinkedInClient struct {
	BaseURL string
	http    *HttpClient
}

func NewLinkedInClient() *LinkedInClient {
	return &LinkedInClient{
		BaseURL: defaultLinkedInBaseURL,
		http:    NewDefaultHttpClient(),
	}
}

// IsUnauthorized reports whether an upstream failure was a 401, which for
// LinkedIn means the stored token is no longer valid.
func IsUnauthorized(err error) bool {
	var upstream *utils.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode == http.StatusUnauthorized
	}
	return false
}

type userinfoResponse struct {
	Sub string `json:"sub"`
}

// ValidateToken checks the access token against the userinfo endpoint and
// returns the LinkedIn member id it belongs to.
func (c *LinkedInClient) ValidateToken(accessToken string) (string, error) {
	res, err := c.authorized(accessToken).Get(c.BaseURL + "/v2/userinfo")
	if err != nil {
		return "", err
	}
	if err := CheckStatus("linkedin", res); err != nil {
		return "", err
	}
	var decoded userinfoResponse
	if err := DecodeJSONBody(res, &decoded); err != nil {
		return "", err
	}
	if decoded.Sub == "" {
		return "", &UnexpectedResponseError{API: "linkedin", Reason: "userinfo missing sub"}
	}
	return decoded.Sub, nil
}

type registerUploadRequest struct {
	RegisterUploadRequest struct {
		Recipes              []string `json:"recipes"`
		Owner                string   `json:"owner"`
		ServiceRelationships []struct {
			RelationshipType string `json:"relationshipType"`
			Identifier       string `json:"identifier"`
		} `json:"serviceRelationships"`
	} `json:"registerUploadRequest"`
}

type registerUploadResponse struct {
	Value struct {
		Asset           string `json:"asset"`
		UploadMechanism map[string]struct {
			UploadUrl string `json:"uploadUrl"`
		} `json:"uploadMechanism"`
	} `json:"value"`
}

// RegisterUpload reserves a media asset slot for the member and returns the
// asset urn plus the URL the image bytes must be uploaded to.
func (c *LinkedInClient) RegisterUpload(accessToken string, memberID string) (asset string, uploadURL string, err error) {
	var payload registerUploadRequest
	payload.RegisterUploadRequest.Recipes = []string{"urn:li:digitalmediaRecipe:feedshare-image"}
	payload.RegisterUploadRequest.Owner = "urn:li:person:" + memberID
	payload.RegisterUploadRequest.ServiceRelationships = []struct {
		RelationshipType string `json:"relationshipType"`
		Identifier       string `json:"identifier"`
	}{{RelationshipType: "OWNER", Identifier: "urn:li:userGeneratedContent"}}

	res, err := c.authorized(accessToken).PostJSON(c.BaseURL+"/v2/assets?action=registerUpload", payload)
	if err != nil {
		return "", "", err
	}
	if err := CheckStatus("linkedin", res); err != nil {
		return "", "", err
	}
	var decoded registerUploadResponse
	if err := DecodeJSONBody(res, &decoded); err != nil {
		return "", "", err
	}
	for _, mechanism := range decoded.Value.UploadMechanism {
		if mechanism.UploadUrl != "" {
			return decoded.Value.Asset, mechanism.UploadUrl, nil
		}
	}
	return "", "", &UnexpectedResponseError{API: "linkedin", Reason: "registerUpload missing upload url"}
}

// UploadAsset pushes raw image bytes to the upload URL returned by
// RegisterUpload.
func (c *LinkedInClient) UploadAsset(accessToken string, uploadURL string, image []byte) error {
	res, err := c.authorized(accessToken).Post(uploadURL, "application/octet-stream", bytes.NewReader(image))
	if err != nil {
		return err
	}
	return CheckStatus("linkedin", res)
}

type shareMedia struct {
	Status string `json:"status"`
	Media  string `json:"media"`
}

type shareRequest struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent map[string]shareContent `json:"specificContent"`
	Visibility      map[string]string       `json:"visibility"`
}

type shareContent struct {
	ShareCommentary struct {
		Text string `json:"text"`
	} `json:"shareCommentary"`
	ShareMediaCategory string       `json:"shareMediaCategory"`
	Media              []shareMedia `json:"media,omitempty"`
}

type shareResponse struct {
	Id string `json:"id"`
}

// SubmitShare publishes the post text (and the optional media asset) to the
// member's feed with PUBLIC visibility. Returns the remote post id.
func (c *LinkedInClient) SubmitShare(accessToken string, memberID string, text string, asset string) (string, error) {
	var content shareContent
	content.ShareCommentary.Text = text
	content.ShareMediaCategory = "NONE"
	if asset != "" {
		content.ShareMediaCategory = "IMAGE"
		content.Media = []shareMedia{{Status: "READY", Media: asset}}
	}

	payload := shareRequest{
		Author:          "urn:li:person:" + memberID,
		LifecycleState:  "PUBLISHED",
		SpecificContent: map[string]shareContent{"com.linkedin.ugc.ShareContent": content},
		Visibility:      map[string]string{"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC"},
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+accessToken)
	header.Set("X-Restli-Protocol-Version", "2.0.0")
	res, err := NewHttpClient(header).PostJSON(c.BaseURL+"/v2/ugcPosts", payload)
	if err != nil {
		return "", err
	}
	if err := CheckStatus("linkedin", res); err != nil {
		return "", err
	}
	var decoded shareResponse
	if err := DecodeJSONBody(res, &decoded); err != nil {
		return "", err
	}
	if decoded.Id == "" {
		return "", &UnexpectedResponseError{API: "linkedin", Reason: "share response missing id"}
	}
	return decoded.Id, nil
}

// ShareURL builds the public permalink for a published share.
func ShareURL(remotePostID string) string {
	return "https://www.linkedin.com/feed/update/" + remotePostID + "/"
}

func (c *LinkedInClient) authorized(accessToken string) *HttpClient {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+accessToken)
	return &HttpClient{header: header, client: c.http.client}
}
