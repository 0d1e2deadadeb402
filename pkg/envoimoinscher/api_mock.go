package envoimoinscher

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnQuotation func(ctx context.Context, params url.Values) (*QuotationResponse, error)
	OnOrder     func(ctx context.Context, params url.Values) (*OrderResponse, error)

	mu    sync.Mutex
	calls []url.Values
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// Calls returns the parameters of every request received so far.
func (m *MockAPIClient) Calls() []url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]url.Values, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockAPIClient) record(params url.Values) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, cloneValues(params))
}

func (m *MockAPIClient) wait(ctx context.Context) error {
	if m.SimulateLatency <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.SimulateLatency):
		return nil
	}
}

// Quotation returns mock offers.
func (m *MockAPIClient) Quotation(ctx context.Context, params url.Values) (*QuotationResponse, error) {
	m.record(params)
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	if m.SimulateErrors {
		return nil, NewAPIError("quotation", ErrorDetail{Code: "MOCK_ERROR", Message: "Simulated API error"})
	}

	if m.OnQuotation != nil {
		return m.OnQuotation(ctx, params)
	}

	collection := params.Get("collecte")
	if collection == "" {
		collection = time.Now().Format("2006-01-02")
	}

	return &QuotationResponse{
		Offers: []Offer{
			{
				Mode:     ModeOrderable,
				URL:      "https://www.envoimoinscher.com/offre/mock-sogp",
				Operator: Operator{Code: "SOGP", Label: "Relais Colis", Logo: "https://www.envoimoinscher.com/logos/SOGP.png"},
				Service:  Service{Code: "RelaisColis", Label: "Relais Colis"},
				Price: Price{
					Currency:     "EUR",
					TaxExclusive: decimal.RequireFromString("4.90"),
					TaxInclusive: decimal.RequireFromString("5.88"),
				},
				Collection:      Schedule{Type: "POST_OFFICE", TypeLabel: "Dépôt en Relais", Date: collection},
				Delivery:        Schedule{Type: "PICKUP_POINT", TypeLabel: "Livraison en Relais", Date: collection},
				Characteristics: []string{"Dépôt en Relais Colis", "Délai indicatif : 5 jours"},
				Mandatory: map[string]MandatoryInfo{
					"depot.pointrelais": {
						Code:   "depot.pointrelais",
						Label:  "Point relais de dépôt",
						Type:   "string",
						Fields: map[string]string{"code": "depot.pointrelais", "label": "Point relais de dépôt", "type": "string"},
					},
				},
			},
			{
				Mode:     ModeInfo,
				URL:      "https://www.envoimoinscher.com/offre/mock-upse",
				Operator: Operator{Code: "UPSE", Label: "UPS", Logo: "https://www.envoimoinscher.com/logos/UPSE.png"},
				Service:  Service{Code: "Standard", Label: "UPS Standard"},
				Price: Price{
					Currency:     "EUR",
					TaxExclusive: decimal.RequireFromString("12.40"),
					TaxInclusive: decimal.RequireFromString("14.83"),
				},
				Collection:      Schedule{Type: "COMPANY", TypeLabel: "Enlèvement sur site", Date: collection},
				Delivery:        Schedule{Type: "HOME", TypeLabel: "Livraison à domicile", Date: collection},
				Characteristics: []string{"Enlèvement sur site", "Livraison en 24h à 48h"},
				Alert:           "Offre uniquement disponible sur le site",
				Mandatory:       map[string]MandatoryInfo{},
			},
		},
	}, nil
}

// Order confirms a mock order with a well-formed reference.
func (m *MockAPIClient) Order(ctx context.Context, params url.Values) (*OrderResponse, error) {
	m.record(params)
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	if m.SimulateErrors {
		return nil, NewAPIError("order", ErrorDetail{Code: "MOCK_ERROR", Message: "Simulated API error"})
	}

	if m.OnOrder != nil {
		return m.OnOrder(ctx, params)
	}

	return &OrderResponse{
		Reference: mockReference(),
		Offer: &OrderDetails{
			URL:      "https://www.envoimoinscher.com/offre/mock-sogp",
			Mode:     ModeOrderable,
			Operator: Operator{Code: params.Get("operateur"), Label: "Relais Colis"},
			Service:  Service{Code: params.Get("service"), Label: "Relais Colis"},
			Price: Price{
				Currency:     "EUR",
				TaxExclusive: decimal.RequireFromString("4.90"),
				TaxInclusive: decimal.RequireFromString("5.88"),
			},
			Collection: Schedule{Type: "POST_OFFICE", TypeLabel: "Dépôt en Relais", Date: params.Get("collecte")},
			Delivery:   Schedule{Type: "PICKUP_POINT", TypeLabel: "Livraison en Relais"},
			Labels:     []string{"https://www.envoimoinscher.com/documents/mock-label.pdf"},
		},
	}, nil
}

// mockReference builds a reference in the partner format: 10 digits, 4
// letters, 4 digits, 2 letters.
func mockReference() string {
	letters := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = byte('A' + rand.IntN(26))
		}
		return string(b)
	}
	return fmt.Sprintf("%010d%s%04d%s",
		rand.Int64N(1e10), letters(4), rand.IntN(1e4), letters(2))
}

var _ APIClient = (*MockAPIClient)(nil)
