package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/regula/internal/common"
	"github.com/ternarybob/regula/internal/interfaces"
	"github.com/ternarybob/regula/internal/models"
)

const (
	// maxDocumentRunes bounds how much of one document is placed in the
	// grounding context
	maxDocumentRunes = 20000

	// maxDocumentsPerSearch bounds how many documents ground one answer
	maxDocumentsPerSearch = 25

	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 8 * time.Second
)

// GeminiService answers collection queries with Gemini, grounded strictly
// on the collection's own documents. The prompt forbids outside knowledge;
// an answer is only as good as the uploaded material.
type GeminiService struct {
	logger  arbor.ILogger
	client  *genai.Client
	store   interfaces.CollectionStore
	blobs   interfaces.BlobStore
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// searchResponse is the JSON shape the model is instructed to return
type searchResponse struct {
	Answer    string `json:"answer"`
	Citations []struct {
		Source  string `json:"source"`
		Content string `json:"content"`
	} `json:"citations"`
}

// NewGeminiService creates the retrieval service. Requires a configured
// API key; callers without one should not construct the service.
func NewGeminiService(cfg *common.Config, store interfaces.CollectionStore, blobs interfaces.BlobStore, logger arbor.ILogger) (*GeminiService, error) {
	if cfg.Retrieval.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required for retrieval (set GEMINI_API_KEY or retrieval.api_key in config)")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.Retrieval.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		logger:  logger,
		client:  client,
		store:   store,
		blobs:   blobs,
		model:   cfg.Retrieval.Model,
		timeout: cfg.RetrievalTimeout(),
		limiter: rate.NewLimiter(rate.Every(cfg.RetrievalRateLimit()), 1),
	}

	logger.Info().
		Str("model", service.model).
		Dur("timeout", service.timeout).
		Msg("Gemini retrieval service initialized")

	return service, nil
}

// Search grounds the query on the named collection's documents and returns
// the model's answer with citations. Citations missing either field are
// dropped rather than partially carried.
func (s *GeminiService) Search(ctx context.Context, collection string, query string) (*interfaces.RetrievalAnswer, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	grounding, err := s.buildGrounding(timeoutCtx, collection)
	if err != nil {
		return nil, err
	}
	if grounding == "" {
		s.logger.Debug().Str("collection", collection).Msg("Collection has no readable documents")
		return &interfaces.RetrievalAnswer{}, nil
	}

	if err := s.limiter.Wait(timeoutCtx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	response, err := s.generate(timeoutCtx, searchPrompt(query, grounding))
	if err != nil {
		return nil, fmt.Errorf("retrieval call failed for collection %s: %w", collection, err)
	}

	answer, err := parseSearchResponse(response)
	if err != nil {
		return nil, fmt.Errorf("malformed retrieval response for collection %s: %w", collection, err)
	}

	s.logger.Debug().
		Str("collection", collection).
		Int("citations", len(answer.Citations)).
		Msg("Retrieval search completed")

	return answer, nil
}

// HealthCheck verifies the collection store is reachable; the Gemini call
// path is exercised lazily on first search
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("genai client is not initialized")
	}
	if _, err := s.store.List(ctx); err != nil {
		return fmt.Errorf("collection store unavailable: %w", err)
	}
	return nil
}

// buildGrounding concatenates the collection's document text into a single
// labeled context block
func (s *GeminiService) buildGrounding(ctx context.Context, collection string) (string, error) {
	docs, err := s.store.ListDocuments(ctx, collection)
	if err != nil {
		return "", fmt.Errorf("failed to list documents for collection %s: %w", collection, err)
	}

	var b strings.Builder
	included := 0
	for _, doc := range docs {
		if included >= maxDocumentsPerSearch {
			break
		}
		if !isTextual(doc.MimeType) {
			continue
		}
		data, err := s.blobs.Load(ctx, doc.BlobRef)
		if err != nil {
			s.logger.Warn().Err(err).Str("document", doc.DisplayName).Msg("Skipping unreadable document blob")
			continue
		}
		content := string(data)
		if runes := []rune(content); len(runes) > maxDocumentRunes {
			content = string(runes[:maxDocumentRunes])
		}
		fmt.Fprintf(&b, "=== DOCUMENT: %s ===\n%s\n\n", doc.DisplayName, content)
		included++
	}
	return b.String(), nil
}

func (s *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}

	var resp *genai.GenerateContentResponse
	var apiErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, apiErr = s.client.Models.GenerateContent(ctx, s.model, []*genai.Content{
			{
				Role:  "user",
				Parts: []*genai.Part{genai.NewPartFromText(prompt)},
			},
		}, config)

		if apiErr == nil {
			break
		}
		if attempt == maxRetries {
			break
		}

		backoff := initialBackoff << uint(attempt)
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}
	if apiErr != nil {
		return "", fmt.Errorf("generate content failed after %d retries: %w", maxRetries, apiErr)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

func searchPrompt(query, grounding string) string {
	return fmt.Sprintf(`You are a document retrieval assistant. Answer the query using ONLY the documents below. Do not use outside knowledge. If the documents do not contain relevant information, return an empty answer and no citations.

Return ONLY JSON in this shape:
{
  "answer": "...",
  "citations": [{"source": "document name", "content": "exact supporting excerpt"}]
}

Every citation content must be an exact excerpt copied from a document, and every citation must name its source document.

Query: %s

%s`, query, grounding)
}

func parseSearchResponse(response string) (*interfaces.RetrievalAnswer, error) {
	cleaned := cleanMarkdownFences(response)

	var parsed searchResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, err
	}

	answer := &interfaces.RetrievalAnswer{Answer: strings.TrimSpace(parsed.Answer)}
	for _, c := range parsed.Citations {
		source := strings.TrimSpace(c.Source)
		content := strings.TrimSpace(c.Content)
		if source == "" || content == "" {
			continue
		}
		answer.Citations = append(answer.Citations, models.Citation{Source: source, Content: content})
	}
	return answer, nil
}

func cleanMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func isTextual(mimeType string) bool {
	switch {
	case strings.HasPrefix(mimeType, "text/"):
		return true
	case mimeType == "application/json",
		mimeType == "application/x-yaml",
		mimeType == "application/yaml",
		mimeType == "application/xml":
		return true
	}
	return false
}
