// Package uau implements the remote gateway for the UAU ERP. UAU exposes a
// token-authenticated JSON API with per-development contract listings and
// per-contract installment listings; there is no bulk contract endpoint.
package uau

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/gateway"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/logger"
)

const component = "UAUGateway"

const retryAttempts = 4

type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	log      *logger.Logger

	mu    sync.Mutex
	token string
}

func NewClient(baseURL, username, password string, log *logger.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		http:     &http.Client{Timeout: 60 * time.Second},
		log:      log,
	}
}

func (c *Client) Source() string { return gateway.SourceUAU }

func (c *Client) FetchDevelopments(ctx context.Context) ([]gateway.RawRecord, error) {
	return c.getRecords(ctx, "/api/v1/empreendimentos", nil)
}

// FetchContracts has no bulk form on UAU: one call per development, keyed
// back by the external id the caller asked for. A development whose fetch
// fails after retries is omitted from the result so the caller can isolate
// it; the error return fires only when every development failed or the
// failure is an authentication one.
func (c *Client) FetchContracts(ctx context.Context, developmentExternalIDs []string) (map[string][]gateway.RawRecord, error) {
	out := make(map[string][]gateway.RawRecord, len(developmentExternalIDs))
	var failed int
	for _, extID := range developmentExternalIDs {
		params := url.Values{"empreendimento": {extID}}
		records, err := c.getRecords(ctx, "/api/v1/vendas", params)
		if err != nil {
			if errors.Is(err, gateway.ErrUnauthorized) || ctx.Err() != nil {
				return nil, fmt.Errorf("fetching contracts for development %s: %w", extID, err)
			}
			c.log.Error(component, "Contract fetch failed, development excluded: development=%s err=%v", extID, err)
			failed++
			continue
		}
		out[extID] = records
	}
	if failed > 0 && failed == len(developmentExternalIDs) {
		return nil, fmt.Errorf("contract fetch failed for all %d developments", failed)
	}
	return out, nil
}

func (c *Client) FetchInstallments(ctx context.Context, contractKey string) ([]gateway.RawRecord, error) {
	params := url.Values{"venda": {contractKey}}
	return c.getRecords(ctx, "/api/v1/parcelas", params)
}

func (c *Client) FetchExpenseInvoices(ctx context.Context, from, to time.Time) ([]gateway.RawRecord, error) {
	params := url.Values{
		"data_inicio": {from.Format("2006-01-02")},
		"data_fim":    {to.Format("2006-01-02")},
	}
	return c.getRecords(ctx, "/api/v1/contas-pagar", params)
}

func (c *Client) getRecords(ctx context.Context, path string, params url.Values) ([]gateway.RawRecord, error) {
	var records []gateway.RawRecord

	err := gateway.WithRetry(ctx, c.log, component, retryAttempts, func() error {
		body, err := c.get(ctx, path, params)
		if err != nil {
			return err
		}
		records, err = gateway.RecordsFromJSON(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := c.doGet(ctx, path, params, token)
	if errors.Is(err, gateway.ErrUnauthorized) {
		// Token expired mid-run: re-login once and replay.
		c.log.Warn(component, "Token rejected, re-authenticating: path=%s", path)
		token, err = c.login(ctx)
		if err != nil {
			return nil, err
		}
		return c.doGet(ctx, path, params, token)
	}
	return body, err
}

func (c *Client) doGet(ctx context.Context, path string, params url.Values, token string) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrServerError, err)
	}
	defer resp.Body.Close()

	if err := gateway.ClassifyStatus(resp.StatusCode); err != nil {
		c.log.Warn(component, "Non-OK upstream response: path=%s status=%d", path, resp.StatusCode)
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// ensureToken returns the cached auth token, logging in on first use.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}
	return c.login(ctx)
}

func (c *Client) login(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"login": c.username,
		"senha": c.password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/autenticador", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", gateway.ErrServerError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error(component, "Authentication failed: status=%d", resp.StatusCode)
		return "", gateway.ErrUnauthorized
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	// The authenticator returns the bare token as a JSON string.
	token := ""
	if err := json.Unmarshal(raw, &token); err != nil {
		token = string(bytes.Trim(raw, `" \n`))
	}
	if token == "" {
		return "", gateway.ErrUnauthorized
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	c.log.Debug(component, "Authenticated against UAU API")
	return token, nil
}
