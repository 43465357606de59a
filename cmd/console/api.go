package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/fallhouse/pkg/place"
	"github.com/jwebster45206/fallhouse/pkg/state"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionInfo mirrors the server's /api/session response.
type SessionInfo struct {
	Started      bool          `json:"started"`
	History      state.History `json:"history"`
	CurrentPlace place.Place   `json:"current_place"`
	LastPlace    place.Place   `json:"last_place"`
	GameOver     bool          `json:"gameover"`
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// fetchPage requests path, following the game's redirects, and parses the
// page it lands on. The returned page's URL is the final location.
func fetchPage(client *http.Client, baseURL, path string) (*PageView, error) {
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	page, err := parsePage(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	page.URL = resp.Request.URL.String()
	page.Path = resp.Request.URL.Path
	return page, nil
}

func getSession(client *http.Client, baseURL string) (*SessionInfo, error) {
	resp, err := client.Get(baseURL + "/api/session")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to get session: %s", errorResp.Error)
	}

	var info SessionInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &info, nil
}
