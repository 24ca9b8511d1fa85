package clients

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/postpilothq/postpilot/utils"
	Logger "github.com/postpilothq/postpilot/utils/log"
)

const defaultTimeoutSec = 30

// HttpClient is the shared outbound client. Headers set on construction are
// carried on every request. All upstream callers go through this so non-2xx
// handling and timeouts live in one place.
type HttpClient struct {
	header http.Header

	client *http.Client
}

func NewDefaultHttpClient() *HttpClient {
	return NewHttpClient(http.Header{})
}

func NewHttpClient(header http.Header) *HttpClient {
	return &HttpClient{
		header: header,
		client: &http.Client{Timeout: defaultTimeoutSec * time.Second},
	}
}

func (c *HttpClient) Get(uri string) (*http.Response, error) {
	req, err := http.NewRequest("GET", uri, nil)
	if err != nil {
		return nil, err
	}
	req.Header = cloneHeader(c.header)
	return c.client.Do(req)
}

func (c *HttpClient) Post(uri string, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest("POST", uri, body)
	if err != nil {
		return nil, err
	}
	req.Header = cloneHeader(c.header)
	req.Header.Set("Content-Type", contentType)
	return c.client.Do(req)
}

// PostJSON marshals payload and POSTs it as application/json.
func (c *HttpClient) PostJSON(uri string, payload interface{}) (*http.Response, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.Post(uri, "application/json", bytes.NewReader(encoded))
}

// GetWithQueryParams takes an additional map from query key to query value,
// which will be appended to query uri as ?${KEY}=${VALUE}
func (c *HttpClient) GetWithQueryParams(uri string, params map[string]string) (*http.Response, error) {
	req, err := http.NewRequest("GET", uri, nil)
	if err != nil {
		return nil, err
	}
	req.Header = cloneHeader(c.header)
	q := req.URL.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	req.URL.RawQuery = q.Encode()
	return c.client.Do(req)
}

func cloneHeader(h http.Header) http.Header {
	cloned := http.Header{}
	for k, vs := range h {
		for _, v := range vs {
			cloned.Add(k, v)
		}
	}
	return cloned
}

func IsNon200HttpResponse(res *http.Response) bool {
	return res.StatusCode >= 300
}

// CheckStatus drains the response into an UpstreamError when the status is
// not 2xx, logging the body for debugging. Returns nil on success.
func CheckStatus(api string, res *http.Response) error {
	if !IsNon200HttpResponse(res) {
		return nil
	}
	body, _ := ioutil.ReadAll(res.Body)
	res.Body.Close()
	Logger.Log.Errorf("%s non-200 http code: %d, body: %s", api, res.StatusCode, string(body))
	return &utils.UpstreamError{API: api, StatusCode: res.StatusCode, Body: string(body)}
}

// DecodeJSONBody decodes a 2xx response body into out and closes it.
func DecodeJSONBody(res *http.Response, out interface{}) error {
	defer res.Body.Close()
	return json.NewDecoder(res.Body).Decode(out)
}
