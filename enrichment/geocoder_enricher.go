package enrichment

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// GeocoderName название основного уровня
const GeocoderName = "geocoder"

// DefaultGeocoderURL адрес API Base Adresse Nationale
const DefaultGeocoderURL = "https://api-adresse.data.gouv.fr"

// GeocoderEnricher ищет код коммуны полнотекстовым геокодированием адреса
type GeocoderEnricher struct {
	config *EnricherConfig
	client *tierClient
}

// NewGeocoderEnricher создает основной уровень поиска
func NewGeocoderEnricher(config *EnricherConfig) *GeocoderEnricher {
	if config.BaseURL == "" {
		config.BaseURL = DefaultGeocoderURL
	}

	return &GeocoderEnricher{
		config: config,
		client: newTierClient(config),
	}
}

// GeocoderResponse ответ /search/ в формате GeoJSON
type GeocoderResponse struct {
	Type     string            `json:"type"`
	Features []GeocoderFeature `json:"features"`
}

// GeocoderFeature найденный объект
type GeocoderFeature struct {
	Properties GeocoderProperties `json:"properties"`
}

// GeocoderProperties свойства найденного объекта
type GeocoderProperties struct {
	Label    string  `json:"label"`
	Score    float64 `json:"score"`
	CityCode string  `json:"citycode"`
	City     string  `json:"city"`
	Postcode string  `json:"postcode"`
}

// Lookup ищет адрес целиком и берет citycode первого объекта
func (g *GeocoderEnricher) Lookup(ctx context.Context, address string) (*LookupResult, error) {
	query := strings.TrimSpace(address)
	if query == "" {
		return failedResult(g.GetName(), query, ReasonEmptyQuery, "No address provided"), nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "1")

	var resp GeocoderResponse
	if err := g.client.getJSON(ctx, "/search/", params, &resp); err != nil {
		return lookupFailure(g.GetName(), query, err), nil
	}

	if len(resp.Features) == 0 {
		return failedResult(g.GetName(), query, ReasonNotFound, "No features found"), nil
	}

	props := resp.Features[0].Properties
	if strings.TrimSpace(props.CityCode) == "" {
		return failedResult(g.GetName(), query, ReasonEmptyCode, "Feature has no citycode"), nil
	}

	return &LookupResult{
		Source:    g.GetName(),
		Timestamp: time.Now(),
		Success:   true,
		Query:     query,
		Code:      strings.TrimSpace(props.CityCode),
		Label:     props.Label,
		Score:     props.Score,
	}, nil
}

func (g *GeocoderEnricher) GetName() string {
	return GeocoderName
}

func (g *GeocoderEnricher) GetPriority() int {
	return g.config.Priority
}

func (g *GeocoderEnricher) IsAvailable() bool {
	return g.config.Enabled && g.config.BaseURL != ""
}
