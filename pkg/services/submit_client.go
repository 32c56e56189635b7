package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/backsoul/studytrack/pkg/models"
)

// SubmitClient posts attempt summaries to the grading/history endpoint.
// Any 2xx response counts as acknowledgment; anything else is a soft
// failure reported to the caller.
type SubmitClient struct {
	url    string
	client *fasthttp.Client
}

// NewSubmitClient creates a client for the given submission endpoint URL
func NewSubmitClient(url string) *SubmitClient {
	return &SubmitClient{
		url: url,
		client: &fasthttp.Client{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Send posts the report with the caller's bearer credential attached
func (c *SubmitClient) Send(token string, report *models.QuizReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("error serializing report: %v", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.SetBody(body)

	if err := c.client.Do(req, resp); err != nil {
		return fmt.Errorf("error posting report: %v", err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return fmt.Errorf("submission endpoint returned status %d", status)
	}
	return nil
}
