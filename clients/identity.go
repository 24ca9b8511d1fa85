package clients

import (
	"net/http"
	"os"
)

// IdentityClient resolves a session token into a user id via the identity
// provider's OIDC userinfo endpoint. Used by the session middleware.
type IdentityClient struct {
	UserinfoURL string
	http        *HttpClient
}

func NewIdentityClient() *IdentityClient {
	return &IdentityClient{
		UserinfoURL: os.Getenv("IDENTITY_USERINFO_URL"),
		http:        NewDefaultHttpClient(),
	}
}

// ResolveUser validates the session token and returns the subject it belongs
// to. Any non-2xx response means the session is not valid.
func (c *IdentityClient) ResolveUser(sessionToken string) (string, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+sessionToken)
	res, err := NewHttpClient(header).Get(c.UserinfoURL)
	if err != nil {
		return "", err
	}
	if err := CheckStatus("identity", res); err != nil {
		return "", err
	}
	var decoded userinfoResponse
	if err := DecodeJSONBody(res, &decoded); err != nil {
		return "", err
	}
	if decoded.Sub == "" {
		return "", &UnexpectedResponseError{API: "identity", Reason: "userinfo missing sub"}
	}
	return decoded.Sub, nil
}
