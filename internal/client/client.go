package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/saulo-duarte/quizmaker/internal/domain/models"
)

// ErrBackendUnreachable is returned when no HTTP response could be obtained.
var ErrBackendUnreachable = errors.New("backend unreachable")

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type unreachableError struct {
	base string
	err  error
}

func (e *unreachableError) Error() string {
	return fmt.Sprintf("Could not connect to the server. Please ensure the backend server is running and accessible at %s", e.base)
}

func (e *unreachableError) Unwrap() []error {
	return []error{ErrBackendUnreachable, e.err}
}

// Client talks to the quiz API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Categories(ctx context.Context) ([]models.QuizCategory, error) {
	var out []models.QuizCategory
	err := c.do(ctx, http.MethodGet, "/categories", nil, &out)
	return out, err
}

func (c *Client) AddCategory(ctx context.Context, title string) (*models.QuizCategory, error) {
	var out models.QuizCategory
	if err := c.do(ctx, http.MethodPost, "/categories", map[string]string{"title": title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Generate(ctx context.Context, category, title string) (*models.Quiz, error) {
	var out models.Quiz
	req := models.GenerateRequest{Category: category, Title: title}
	if err := c.do(ctx, http.MethodPost, "/quizzes/generate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPublished(ctx context.Context) ([]models.CategoryWithQuizzes, error) {
	var out []models.CategoryWithQuizzes
	err := c.do(ctx, http.MethodGet, "/published-content", nil, &out)
	return out, err
}

func (c *Client) GetQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	var out models.Quiz
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/quizzes/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Publish(ctx context.Context, quiz models.Quiz, categoryName string) (*models.PublishResult, error) {
	req := models.PublishRequest{
		Title:        quiz.Title,
		Description:  quiz.Description,
		Questions:    quiz.Questions,
		CategoryName: categoryName,
	}
	var out models.PublishResult
	if err := c.do(ctx, http.MethodPost, "/quizzes", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &unreachableError{base: c.baseURL, err: err}
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// decodeResponse reads the body once. A failed response carries the server's
// message when the body is JSON, otherwise the raw text.
func decodeResponse(resp *http.Response, out interface{}) error {
	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	var envelope struct {
		Message string `json:"message"`
	}
	if !ok {
		if json.Unmarshal(text, &envelope) == nil && envelope.Message != "" {
			return &APIError{Status: resp.StatusCode, Message: envelope.Message}
		}
		msg := strings.TrimSpace(string(text))
		if msg == "" || json.Valid(text) {
			msg = fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(text, out); err != nil {
		return errors.New("Received a non-JSON response from the server.")
	}
	return nil
}
