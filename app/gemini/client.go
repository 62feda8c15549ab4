package gemini

import (
	"context"
	"fmt"
	"os"

	"resty.dev/v3"
)

// File states reported by the Gemini Files API.
const (
	FileStateProcessing = "PROCESSING"
	FileStateActive     = "ACTIVE"
	FileStateFailed     = "FAILED"
)

// File is an uploaded payload tracked by the Files API.
type File struct {
	Name     string `json:"name"`
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	State    string `json:"state"`
}

// Client talks to the Gemini REST API.
type Client struct {
	http *resty.Client
}

// NewClient creates a client against the given API base URL.
func NewClient(baseURL string) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	return &Client{http: client}
}

type uploadResponse struct {
	File File `json:"file"`
}

// UploadFile uploads a local audio file and returns its Files API handle.
// The returned file usually starts in the PROCESSING state.
func (c *Client) UploadFile(ctx context.Context, apiKey, path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read upload payload: %w", err)
	}

	var out uploadResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", apiKey).
		SetHeader("X-Goog-Upload-Protocol", "raw").
		SetHeader("Content-Type", "audio/mpeg").
		SetBody(data).
		SetResult(&out).
		Post("/upload/v1beta/files")
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("upload failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	return &out.File, nil
}

// GetFile refreshes the state of an uploaded file.
func (c *Client) GetFile(ctx context.Context, apiKey, name string) (*File, error) {
	var out File
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", apiKey).
		SetResult(&out).
		Get("/v1beta/" + name)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("get file failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	return &out, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text     string    `json:"text,omitempty"`
	FileData *fileData `json:"file_data,omitempty"`
}

type fileData struct {
	MimeType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// GenerateContent asks modelID to produce text from the prompt and the
// uploaded audio file.
func (c *Client) GenerateContent(ctx context.Context, apiKey, modelID, prompt string, file *File) (string, error) {
	body := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{FileData: &fileData{MimeType: file.MimeType, FileURI: file.URI}},
			},
		}},
	}

	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", apiKey).
		SetBody(body).
		SetResult(&out).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", modelID))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("generate failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("response blocked by safety filters: %s", out.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("model returned an empty response")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
