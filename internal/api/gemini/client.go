package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/omarshaarawi/survivorbot/internal/config"
	"github.com/omarshaarawi/survivorbot/internal/models"
	"github.com/omarshaarawi/survivorbot/internal/retry"
	"google.golang.org/genai"
)

var ErrDisabled = errors.New("gemini: no API key configured")

// Generation is the text of one model response plus any web citations the
// search tool attached to it.
type Generation struct {
	Text    string
	Sources []models.Source
}

type Generator interface {
	Generate(ctx context.Context, prompt string, search bool) (Generation, error)
}

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, cfg config.Gemini) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Client{client: client, model: cfg.Model}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string, search bool) (Generation, error) {
	var genCfg *genai.GenerateContentConfig
	if search {
		genCfg = &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genCfg)
	if err != nil {
		return Generation{}, statusError(err)
	}

	gen := Generation{Text: strings.TrimSpace(resp.Text())}
	if len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
		for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			title := chunk.Web.Title
			if title == "" {
				title = "Source"
			}
			gen.Sources = append(gen.Sources, models.Source{Title: title, URI: chunk.Web.URI})
		}
	}
	return gen, nil
}

// statusError maps genai API failures onto retry.StatusError so the retry
// package can classify them.
func statusError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &retry.StatusError{Code: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &retry.StatusError{Code: apiErrPtr.Code, Status: apiErrPtr.Status, Message: apiErrPtr.Message}
	}
	return err
}

// Disabled stands in for the model when no API key is set.
type Disabled struct{}

func (Disabled) Generate(context.Context, string, bool) (Generation, error) {
	return Generation{}, ErrDisabled
}
