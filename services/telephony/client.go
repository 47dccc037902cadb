package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIBaseURL = "https://api.twilio.com/2010-04-01"

// Client is a minimal Twilio REST client covering the one control-plane
// operation this service needs: updating a live call with new TwiML.
type Client struct {
	accountSID string
	authToken  string
	baseURL    string
	httpClient *http.Client
}

// NewClient validates credentials up front; missing call-control credentials
// are the one failure class that should stop the process at boot.
func NewClient(accountSID, authToken string) (*Client, error) {
	if accountSID == "" {
		return nil, fmt.Errorf("twilio account SID is required")
	}
	if authToken == "" {
		return nil, fmt.Errorf("twilio auth token is required")
	}
	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		baseURL:    defaultAPIBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// apiError is a Twilio API error body.
type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("twilio error %d: %s", e.Code, e.Message)
}

// UpdateCallTwiML redirects an in-progress call to execute the given TwiML.
func (c *Client) UpdateCallTwiML(ctx context.Context, callSID, twiml string) error {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls/%s.json", c.baseURL, c.accountSID, callSID)

	data := url.Values{}
	data.Set("Twiml", twiml)

	return c.post(ctx, endpoint, data)
}

// PlayAudio injects a synthesized reply into a live call by pointing it at a
// public audio URL.
func (c *Client) PlayAudio(ctx context.Context, callSID, audioURL string) error {
	return c.UpdateCallTwiML(ctx, callSID, RenderPlay(audioURL))
}

func (c *Client) post(ctx context.Context, endpoint string, data url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err != nil {
			return fmt.Errorf("twilio error: %s", string(body))
		}
		return &apiErr
	}
	return nil
}
