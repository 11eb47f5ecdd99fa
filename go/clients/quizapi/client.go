package quizapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dancras/tv-quiz-party-sub000/go/internal/models"
)

// Client talks to the quiz party HTTP API. The server identifies callers by
// the X-User-ID header, so one Client is bound to one user for its lifetime.
type Client struct {
	baseURL string
	client  *http.Client
	headers map[string]string
}

// NewClient returns a Client for userID against baseURL.
func NewClient(baseURL, userID string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: map[string]string{
			"Content-Type": "application/json",
			"X-User-ID":    userID,
		},
	}
}

// SetTimeout overrides the default 30s request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status code: %d, response: %s", resp.StatusCode, string(responseBody))
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return responseBody, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.makeRequest(ctx, http.MethodGet, endpoint, nil)
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	return c.makeRequest(ctx, http.MethodPost, endpoint, body)
}

func (c *Client) postLobby(ctx context.Context, endpoint string, payload any) (*models.LobbySnapshot, error) {
	body, err := c.post(ctx, endpoint, payload)
	if err != nil {
		return nil, err
	}

	snapshot, err := DecodeLobby(body)
	if err != nil {
		return nil, fmt.Errorf("%w, raw response: %s", err, string(body))
	}
	return &snapshot, nil
}

// CreateLobby opens a new lobby hosted by this client's user.
func (c *Client) CreateLobby(ctx context.Context, name string) (*models.LobbySnapshot, error) {
	return c.postLobby(ctx, "/lobbies", map[string]string{"user_name": name})
}

// JoinLobby adds this client's user to the lobby identified by joinCode.
func (c *Client) JoinLobby(ctx context.Context, joinCode, name string) (*models.LobbySnapshot, error) {
	return c.postLobby(ctx, "/lobbies/"+joinCode+"/join", map[string]string{"user_name": name})
}

// GetLobby fetches the current snapshot of the lobby identified by joinCode.
func (c *Client) GetLobby(ctx context.Context, joinCode string) (*models.LobbySnapshot, error) {
	body, err := c.get(ctx, "/lobbies/"+joinCode)
	if err != nil {
		return nil, err
	}

	snapshot, err := DecodeLobby(body)
	if err != nil {
		return nil, fmt.Errorf("%w, raw response: %s", err, string(body))
	}
	return &snapshot, nil
}

// CompleteProfile records the user's display name server-side.
func (c *Client) CompleteProfile(ctx context.Context, name string) error {
	_, err := c.post(ctx, "/profile", map[string]string{"user_name": name})
	return err
}

// ExitLobby removes this client's user from the lobby.
func (c *Client) ExitLobby(ctx context.Context, lobbyID string) error {
	_, err := c.post(ctx, "/lobbies/"+lobbyID+"/exit", nil)
	return err
}

// StartRound begins the round for the lobby. Host only; the server enforces.
func (c *Client) StartRound(ctx context.Context, lobbyID string) error {
	_, err := c.post(ctx, "/lobbies/"+lobbyID+"/round", nil)
	return err
}

// StartNextQuestion advances the round to the next question.
func (c *Client) StartNextQuestion(ctx context.Context, lobbyID string) error {
	_, err := c.post(ctx, "/lobbies/"+lobbyID+"/round/next_question", nil)
	return err
}

// AnswerQuestion submits the user's answer for a question.
func (c *Client) AnswerQuestion(ctx context.Context, lobbyID string, questionIndex, answerIndex int) error {
	_, err := c.post(ctx, "/lobbies/"+lobbyID+"/round/answer", map[string]int{
		"question_index": questionIndex,
		"answer_index":   answerIndex,
	})
	return err
}

// LockQuestion tells the server no further answers may be accepted.
func (c *Client) LockQuestion(ctx context.Context, lobbyID string, questionIndex int) error {
	_, err := c.post(ctx, "/lobbies/"+lobbyID+"/round/lock_answers", map[string]int{
		"question_index": questionIndex,
	})
	return err
}

// EndQuestion marks a question finished.
func (c *Client) EndQuestion(ctx context.Context, lobbyID string, questionIndex int) error {
	_, err := c.post(ctx, "/lobbies/"+lobbyID+"/round/end_question", map[string]int{
		"question_index": questionIndex,
	})
	return err
}

// EndFinalQuestion closes out the round after its last question.
func (c *Client) EndFinalQuestion(ctx context.Context, lobbyID string) error {
	_, err := c.post(ctx, "/lobbies/"+lobbyID+"/round/end", nil)
	return err
}

// ServerTime returns the server's current epoch time, for the one-time clock
// sync handshake.
func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	body, err := c.get(ctx, "/time")
	if err != nil {
		return time.Time{}, err
	}

	var wire struct {
		Now float64 `json:"now"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return time.Time{}, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	return time.UnixMilli(int64(wire.Now * 1000)), nil
}
