package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func (h *Handlers) networkTools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		tool("fetch_url", "Fetch a URL over HTTP GET and return the response body as text.", domain.CategoryNetwork, domain.RiskLow,
			map[string]domain.ParamSchema{"url": requiredParam("string", "URL to fetch")}, h.fetchURL),
		tool("web_search", "Search the web for a query. No search provider is configured: every call returns an error naming the query.", domain.CategoryNetwork, domain.RiskLow,
			map[string]domain.ParamSchema{"query": requiredParam("string", "search query")}, h.webSearch),
		tool("http_request", "Issue an arbitrary HTTP request with method, headers and body.", domain.CategoryNetwork, domain.RiskMedium,
			map[string]domain.ParamSchema{
				"url":         requiredParam("string", "request URL"),
				"method":      optionalParam("string", "HTTP method, defaults to GET"),
				"body":        optionalParam("string", "request body"),
				"auth_secret": optionalParam("string", "name of a stored secret to send as a Bearer Authorization header"),
			}, h.httpRequest),
	}
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

func (h *Handlers) fetchURL(ctx context.Context, args map[string]string) (string, error) {
	url, err := requireArg(args, "url")
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errString("invalid url %s: %v", url, err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return errString("failed to fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errString("failed to read response from %s: %v", url, err)
	}
	return string(body), nil
}

// webSearch has no search provider wired in this deployment; it reports
// that plainly rather than fabricating results.
func (h *Handlers) webSearch(ctx context.Context, args map[string]string) (string, error) {
	query, err := requireArg(args, "query")
	if err != nil {
		return "", err
	}
	return errString("no web search provider configured for query %q", query)
}

func (h *Handlers) httpRequest(ctx context.Context, args map[string]string) (string, error) {
	url, err := requireArg(args, "url")
	if err != nil {
		return "", err
	}
	method := strings.ToUpper(args["method"])
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if args["body"] != "" {
		body = bytes.NewBufferString(args["body"])
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return errString("invalid request %s %s: %v", method, url, err)
	}

	if secretName := args["auth_secret"]; secretName != "" {
		if h.Secrets == nil {
			return errString("no secret store configured, cannot resolve auth_secret %q", secretName)
		}
		token, ok := h.Secrets.Get(secretName)
		if !ok {
			return errString("secret %q not found", secretName)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return errString("request failed %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errString("failed to read response from %s: %v", url, err)
	}
	return resp.Status + "\n" + string(respBody), nil
}
