// Package paymentprovider реализует клиент платёжного провайдера
// с хостовым оформлением подписки (hosted checkout).
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент платёжного провайдера
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.apiKey + ":"))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.New("unexpected status: " + resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// CreateCustomer регистрирует пользователя у провайдера и возвращает
// его идентификатор для последующих сессий оформления
func (c *Client) CreateCustomer(ctx context.Context, reqParams CreateCustomerRequest) (*CreateCustomerResponse, error) {
	req, err := c.newRequest(ctx, "POST", "/customers", reqParams)
	if err != nil {
		return nil, err
	}
	var customerResp CreateCustomerResponse
	if err := c.do(req, &customerResp); err != nil {
		return nil, err
	}
	return &customerResp, nil
}

// CreateCheckoutSession отправляет запрос на создание сессии оформления;
// пользователь завершает оплату на странице провайдера по полученному URL
func (c *Client) CreateCheckoutSession(ctx context.Context, reqParams CreateCheckoutSessionRequest) (*CheckoutSession, error) {
	req, err := c.newRequest(ctx, "POST", "/checkout/sessions", reqParams)
	if err != nil {
		return nil, err
	}
	var sessionResp CheckoutSession
	if err := c.do(req, &sessionResp); err != nil {
		return nil, err
	}
	return &sessionResp, nil
}

// GetCheckoutSession запрашивает состояние сессии оформления по её ID
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	req, err := c.newRequest(ctx, "GET", "/checkout/sessions/"+sessionID, nil)
	if err != nil {
		return nil, err
	}
	var sessionResp CheckoutSession
	if err := c.do(req, &sessionResp); err != nil {
		return nil, err
	}
	return &sessionResp, nil
}
