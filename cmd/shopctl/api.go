package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/j1vetr/EscapeTable/internal/auth"
	"github.com/j1vetr/EscapeTable/internal/catalog"
	"github.com/j1vetr/EscapeTable/internal/delivery"
	"github.com/j1vetr/EscapeTable/internal/order"
	"github.com/j1vetr/EscapeTable/internal/user"
)

// apiClient covers the read endpoints and login; order submission goes
// through the checkout package.
type apiClient struct {
	baseURL string
	session string
	http    *http.Client
}

func newAPIClient(baseURL, session string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		session: session,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *apiClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: c.session})
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var body struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Message != "" {
			return fmt.Errorf("%s", body.Message)
		}
		return fmt.Errorf("sunucu %d yanıtı döndürdü", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// login exchanges credentials for the session cookie value.
func (c *apiClient) login(ctx context.Context, email, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var msg struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&msg) == nil && msg.Message != "" {
			return "", fmt.Errorf("%s", msg.Message)
		}
		return "", fmt.Errorf("giriş başarısız (%d)", resp.StatusCode)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == auth.CookieName {
			return ck.Value, nil
		}
	}
	return "", fmt.Errorf("oturum çerezi alınamadı")
}

func (c *apiClient) product(ctx context.Context, id string) (catalog.Product, error) {
	var p catalog.Product
	err := c.getJSON(ctx, "/api/products/"+id, &p)
	return p, err
}

func (c *apiClient) searchProducts(ctx context.Context, query string) ([]catalog.Product, error) {
	var out []catalog.Product
	err := c.getJSON(ctx, "/api/products/search?q="+url.QueryEscape(query), &out)
	return out, err
}

func (c *apiClient) locations(ctx context.Context) ([]delivery.CampingLocation, error) {
	var out []delivery.CampingLocation
	err := c.getJSON(ctx, "/api/camping-locations", &out)
	return out, err
}

func (c *apiClient) orders(ctx context.Context) ([]order.Order, error) {
	var out []order.Order
	err := c.getJSON(ctx, "/api/orders", &out)
	return out, err
}

func (c *apiClient) me(ctx context.Context) (user.User, error) {
	var u user.User
	err := c.getJSON(ctx, "/api/user", &u)
	return u, err
}
