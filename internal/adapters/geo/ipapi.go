// Package geo resolves visitor IP addresses to an approximate location.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"parlevrai/internal/domain/visit"
)

// DefaultBaseURL is the public ipapi.co endpoint.
const DefaultBaseURL = "https://ipapi.co"

// IPAPIClient looks addresses up against an ipapi.co compatible service.
type IPAPIClient struct {
	baseURL string
	http    *http.Client
}

// NewIPAPIClient creates a client for baseURL. Each lookup is bounded by timeout.
func NewIPAPIClient(baseURL string, timeout time.Duration) *IPAPIClient {
	return &IPAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type ipapiResponse struct {
	IP          string `json:"ip"`
	Country     string `json:"country"`
	CountryName string `json:"country_name"`
	Region      string `json:"region"`
	RegionName  string `json:"region_name"`
	City        string `json:"city"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

// Locate returns the location of ip. Loopback and private addresses are not
// sent to the service and resolve to an empty location.
func (c *IPAPIClient) Locate(ctx context.Context, ip string) (visit.Geo, error) {
	addr := net.ParseIP(ip)
	if addr == nil {
		return visit.Geo{}, fmt.Errorf("invalid IP address %q", ip)
	}
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() {
		return visit.Geo{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(addr.String())+"/json/", nil)
	if err != nil {
		return visit.Geo{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return visit.Geo{}, fmt.Errorf("geo lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return visit.Geo{}, fmt.Errorf("geo lookup: status %d", resp.StatusCode)
	}

	var body ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return visit.Geo{}, fmt.Errorf("geo lookup: decode: %w", err)
	}
	if body.Error {
		return visit.Geo{}, fmt.Errorf("geo lookup: %s", body.Reason)
	}
	return normalize(body), nil
}

// normalize accepts both the full and the short field names.
func normalize(r ipapiResponse) visit.Geo {
	return visit.Geo{
		Country: firstNonEmpty(r.CountryName, r.Country),
		Region:  firstNonEmpty(r.Region, r.RegionName),
		City:    r.City,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
