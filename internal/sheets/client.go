package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ad/telegram-bolao-bot/internal/domain"
)

var (
	// ErrGatewayRejected is returned when the web app answered but refused
	// the record (bad key, bad type, ok:false)
	ErrGatewayRejected = errors.New("sheets web app rejected the request")
	// ErrGatewayUnavailable is returned when the web app could not be
	// reached or kept failing after retries
	ErrGatewayUnavailable = errors.New("sheets web app unavailable")
)

const (
	typeCadastro = "cadastro"
	typeAposta   = "aposta"

	maxAttempts = 3
)

// Client submits registration and pick records to the spreadsheet web app.
// The web app authenticates with a shared key field in the JSON body and
// answers {ok:bool}; anything other than ok:true is a failure the caller
// must treat as "record not saved".
type Client struct {
	url        string
	key        string
	httpClient *http.Client
	logger     domain.Logger
}

// New creates a gateway client with a bounded per-request timeout
func New(url, key string, timeout time.Duration, log domain.Logger) *Client {
	return &Client{
		url:        url,
		key:        key,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

type registrationPayload struct {
	Key        string `json:"key"`
	Type       string `json:"type"`
	CreatedAt  string `json:"createdAt"`
	TelegramID int64  `json:"telegramId"`
	Username   string `json:"username"`
	Nome       string `json:"nome"`
	Telefone   string `json:"telefone"`
	CPF        string `json:"cpf"`
	Email      string `json:"email"`
	ReferredBy string `json:"referredBy"`
}

type pickPayload struct {
	Key        string `json:"key"`
	Type       string `json:"type"`
	CreatedAt  string `json:"createdAt"`
	WeekKey    string `json:"weekKey"`
	TelegramID int64  `json:"telegramId"`
	Nome       string `json:"nome"`
	Numeros    string `json:"numeros"`
}

type webAppResponse struct {
	OK    bool   `json:"ok"`
	Saved string `json:"saved"`
	Error string `json:"error"`
}

// SubmitRegistration appends a row to the cadastros sheet
func (c *Client) SubmitRegistration(ctx context.Context, reg *domain.Registration) error {
	payload := registrationPayload{
		Key:        c.key,
		Type:       typeCadastro,
		CreatedAt:  reg.CreatedAt.UTC().Format(time.RFC3339),
		TelegramID: reg.TelegramID,
		Username:   reg.Username,
		Nome:       reg.Nome,
		Telefone:   reg.Telefone,
		CPF:        reg.CPF,
		Email:      reg.Email,
		ReferredBy: reg.ReferredBy,
	}
	return c.post(ctx, typeCadastro, payload)
}

// SubmitPick appends a row to the apostas sheet
func (c *Client) SubmitPick(ctx context.Context, pick *domain.Pick) error {
	payload := pickPayload{
		Key:        c.key,
		Type:       typeAposta,
		CreatedAt:  pick.CreatedAt.UTC().Format(time.RFC3339),
		WeekKey:    pick.WeekKey,
		TelegramID: pick.TelegramID,
		Nome:       pick.Nome,
		Numeros:    pick.Numeros,
	}
	return c.post(ctx, typeAposta, payload)
}

// post sends the payload, retrying transport failures and 5xx answers with
// linear backoff. Auth and format rejections are not retried: resending the
// same record cannot fix a bad key.
func (c *Client) post(ctx context.Context, recordType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", recordType, err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * time.Second):
			}
		}

		retryable, err := c.postOnce(ctx, recordType, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
		c.logger.Warn("sheets request failed, retrying", "type", recordType, "attempt", attempt, "error", err)
	}

	return fmt.Errorf("%w: %v", ErrGatewayUnavailable, lastErr)
}

func (c *Client) postOnce(ctx context.Context, recordType string, body []byte) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return true, fmt.Errorf("%w: status %d", ErrGatewayRejected, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("%w: status %d", ErrGatewayRejected, resp.StatusCode)
	}

	var parsed webAppResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("%w: non-JSON response: %v", ErrGatewayRejected, err)
	}

	if !parsed.OK {
		return false, fmt.Errorf("%w: %s", ErrGatewayRejected, parsed.Error)
	}

	c.logger.Debug("record saved to sheet", "type", recordType, "saved", parsed.Saved)
	return false, nil
}
