package vin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lotbridge/lotbridge-backend/pkg/config"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
)

// DecodedVehicle holds the attributes resolved from a VIN.
type DecodedVehicle struct {
	VIN   string
	Year  int
	Make  string
	Model string
	Trim  string
}

// Decoder resolves vehicle attributes from a VIN.
type Decoder interface {
	Decode(ctx context.Context, vin string) (*DecodedVehicle, error)
}

// Client decodes VINs against the NHTSA vPIC API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a VIN decode client from configuration.
func NewClient(cfg config.VINConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("vin decoder base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type decodeResponse struct {
	Results []struct {
		ErrorCode string `json:"ErrorCode"`
		ModelYear string `json:"ModelYear"`
		Make      string `json:"Make"`
		Model     string `json:"Model"`
		Trim      string `json:"Trim"`
	} `json:"Results"`
}

// Decode resolves year/make/model/trim for the provided VIN.
func (c *Client) Decode(ctx context.Context, vin string) (*DecodedVehicle, error) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if len(vin) != 17 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vin must be 17 characters")
	}

	endpoint := fmt.Sprintf("%s/vehicles/DecodeVinValues/%s?format=json", c.baseURL, url.PathEscape(vin))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build vin request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call vin decoder")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("vin decoder returned status %d", resp.StatusCode))
	}

	var payload decodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode vin response")
	}
	if len(payload.Results) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "vin decoder returned no results")
	}

	result := payload.Results[0]
	year := 0
	if y, convErr := strconv.Atoi(strings.TrimSpace(result.ModelYear)); convErr == nil {
		year = y
	}

	return &DecodedVehicle{
		VIN:   vin,
		Year:  year,
		Make:  strings.TrimSpace(result.Make),
		Model: strings.TrimSpace(result.Model),
		Trim:  strings.TrimSpace(result.Trim),
	}, nil
}
