// Package registry provides the vehicle recall/bulletin registry client.
// Reads go through the external cache manager; recall and complaint fetches
// are independent, so a partial result is valid and cacheable.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/kamilpajak/crankshaft/pkg/models"
)

// Client fetches recall and complaint data for a vehicle.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient creates a registry client against the NHTSA public API. Requests
// are rate-limited to stay polite toward the public API.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    "https://api.nhtsa.gov",
		limiter:    rate.NewLimiter(rate.Limit(5), 10),
	}
}

// NHTSA API response types
type recallResponse struct {
	Results []struct {
		NHTSACampaignNumber string `json:"NHTSACampaignNumber"`
		Component           string `json:"Component"`
		Summary             string `json:"Summary"`
		Remedy              string `json:"Remedy"`
	} `json:"results"`
}

type complaintResponse struct {
	Results []struct {
		Components []struct {
			Description string `json:"description"`
		} `json:"components"`
		Summary string `json:"summary"`
		ODINo   int    `json:"odiNumber"`
		Miles   int    `json:"failureMileage"`
	} `json:"results"`
}

// Fetch retrieves recalls and complaints for a vehicle in parallel. The two
// lookups fail independently: one failing does not discard the other's data.
// An error is returned only when both fail and there is nothing to cache.
func (c *Client) Fetch(ctx context.Context, vehicleMake, vehicleModel string, year int) (models.RegistryData, error) {
	data := models.RegistryData{
		Recalls:    []models.Recall{},
		Complaints: []models.Complaint{},
	}

	var recallErr, complaintErr error
	done := make(chan struct{})

	go func() {
		defer close(done)
		data.Complaints, complaintErr = c.fetchComplaints(ctx, vehicleMake, vehicleModel, year)
	}()

	data.Recalls, recallErr = c.fetchRecalls(ctx, vehicleMake, vehicleModel, year)
	<-done

	if recallErr != nil {
		log.Printf("registry: recall fetch failed for %s %s %d: %v", vehicleMake, vehicleModel, year, recallErr)
		data.Recalls = []models.Recall{}
	}
	if complaintErr != nil {
		log.Printf("registry: complaint fetch failed for %s %s %d: %v", vehicleMake, vehicleModel, year, complaintErr)
		data.Complaints = []models.Complaint{}
	}
	if recallErr != nil && complaintErr != nil {
		return data, fmt.Errorf("registry fetch failed: recalls: %v; complaints: %v", recallErr, complaintErr)
	}

	return data, nil
}

func (c *Client) fetchRecalls(ctx context.Context, vehicleMake, vehicleModel string, year int) ([]models.Recall, error) {
	var resp recallResponse
	if err := c.getJSON(ctx, "/recalls/recallsByVehicle", vehicleMake, vehicleModel, year, &resp); err != nil {
		return nil, err
	}

	recalls := make([]models.Recall, 0, len(resp.Results))
	for _, r := range resp.Results {
		recalls = append(recalls, models.Recall{
			CampaignNumber: r.NHTSACampaignNumber,
			Component:      r.Component,
			Summary:        r.Summary,
			Remedy:         r.Remedy,
		})
	}
	return recalls, nil
}

func (c *Client) fetchComplaints(ctx context.Context, vehicleMake, vehicleModel string, year int) ([]models.Complaint, error) {
	var resp complaintResponse
	if err := c.getJSON(ctx, "/complaints/complaintsByVehicle", vehicleMake, vehicleModel, year, &resp); err != nil {
		return nil, err
	}

	complaints := make([]models.Complaint, 0, len(resp.Results))
	for _, r := range resp.Results {
		component := ""
		if len(r.Components) > 0 {
			component = r.Components[0].Description
		}
		complaints = append(complaints, models.Complaint{
			Component:   component,
			Summary:     r.Summary,
			FailureMile: r.Miles,
		})
	}
	return complaints, nil
}

func (c *Client) getJSON(ctx context.Context, path, vehicleMake, vehicleModel string, year int, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params := url.Values{}
	params.Set("make", vehicleMake)
	params.Set("model", vehicleModel)
	params.Set("modelYear", strconv.Itoa(year))

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
