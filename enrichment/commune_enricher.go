package enrichment

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// CommuneName название резервного уровня
const CommuneName = "commune"

// DefaultCommuneURL адрес API Découpage administratif
const DefaultCommuneURL = "https://geo.api.gouv.fr"

// CommuneEnricher ищет код коммуны по названию города из адреса
type CommuneEnricher struct {
	config *EnricherConfig
	client *tierClient
}

// NewCommuneEnricher создает резервный уровень поиска
func NewCommuneEnricher(config *EnricherConfig) *CommuneEnricher {
	if config.BaseURL == "" {
		config.BaseURL = DefaultCommuneURL
	}

	return &CommuneEnricher{
		config: config,
		client: newTierClient(config),
	}
}

// Commune элемент ответа /communes
type Commune struct {
	Code string `json:"code"`
	Nom  string `json:"nom,omitempty"`
}

// Lookup выделяет город из адреса и запрашивает код коммуны по имени
func (c *CommuneEnricher) Lookup(ctx context.Context, address string) (*LookupResult, error) {
	city := CityToken(address)
	if city == "" {
		return failedResult(c.GetName(), city, ReasonEmptyQuery, "No city in address"), nil
	}

	params := url.Values{}
	params.Set("nom", city)
	params.Set("fields", "code")
	params.Set("limit", "1")

	var communes []Commune
	if err := c.client.getJSON(ctx, "/communes", params, &communes); err != nil {
		return lookupFailure(c.GetName(), city, err), nil
	}

	if len(communes) == 0 {
		return failedResult(c.GetName(), city, ReasonNotFound, "No communes found"), nil
	}

	code := strings.TrimSpace(communes[0].Code)
	if code == "" {
		return failedResult(c.GetName(), city, ReasonEmptyCode, "Commune has no code"), nil
	}

	return &LookupResult{
		Source:    c.GetName(),
		Timestamp: time.Now(),
		Success:   true,
		Query:     city,
		Code:      code,
		Label:     communes[0].Nom,
	}, nil
}

func (c *CommuneEnricher) GetName() string {
	return CommuneName
}

func (c *CommuneEnricher) GetPriority() int {
	return c.config.Priority
}

func (c *CommuneEnricher) IsAvailable() bool {
	return c.config.Enabled && c.config.BaseURL != ""
}
