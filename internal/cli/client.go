package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"courier-tracking/internal/database"
	"courier-tracking/internal/handlers"
)

// Client is the HTTP client for the tracking API server
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates an API client with the given base URL
func NewClient(baseURL string) *Client {
	return NewClientWithTimeout(baseURL, 180*time.Second)
}

// NewClientWithTimeout creates an API client with a custom request timeout
func NewClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// apiError converts a non-2xx API response into an error
func apiError(resp *http.Response, body []byte) error {
	var errResp handlers.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("%s", errResp.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}

func (c *Client) get(path string, out any) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp, body)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

// HealthCheck verifies the server is reachable
func (c *Client) HealthCheck() error {
	return c.get("/api/health", nil)
}

// GetCarriers returns the registered carriers
func (c *Client) GetCarriers() ([]handlers.CarrierInfo, error) {
	var infos []handlers.CarrierInfo
	if err := c.get("/api/carriers", &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// Track performs a live carrier lookup
func (c *Client) Track(carrier, trackingNumber string) (*handlers.TrackResponse, error) {
	path := fmt.Sprintf("/api/carriers/%s/track/%s",
		url.PathEscape(carrier), url.PathEscape(trackingNumber))
	var track handlers.TrackResponse
	if err := c.get(path, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// GetShipments returns the persisted watch list
func (c *Client) GetShipments() ([]database.Shipment, error) {
	var shipments []database.Shipment
	if err := c.get("/api/shipments", &shipments); err != nil {
		return nil, err
	}
	return shipments, nil
}

// GetEvents returns the recorded events for a shipment
func (c *Client) GetEvents(shipmentID int) ([]database.TrackingEvent, error) {
	var events []database.TrackingEvent
	if err := c.get(fmt.Sprintf("/api/shipments/%d/events", shipmentID), &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CreateShipment adds a shipment to the watch list
func (c *Client) CreateShipment(req handlers.CreateShipmentRequest) (*database.Shipment, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Post(c.baseURL+"/api/shipments", "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp, body)
	}

	var shipment database.Shipment
	if err := json.Unmarshal(body, &shipment); err != nil {
		return nil, err
	}
	return &shipment, nil
}
