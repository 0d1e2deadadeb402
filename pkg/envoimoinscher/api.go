package envoimoinscher

import (
	"context"
	"net/url"
)

// APIClient defines the raw EnvoiMoinsCher API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// Quotation submits quotation parameters and returns every offer
	// of the response.
	Quotation(ctx context.Context, params url.Values) (*QuotationResponse, error)

	// Order submits order parameters and returns the raw confirmation.
	// The reference is not validated at this level.
	Order(ctx context.Context, params url.Values) (*OrderResponse, error)
}

// Partner endpoints.
const (
	quotationPath = "/api/v1/cotation"
	orderPath     = "/api/v1/order"
)

// Partner environments.
const (
	TestBaseURL       = "https://test.envoimoinscher.com"
	ProductionBaseURL = "https://www.envoimoinscher.com"
)

// QuotationResponse is the mapped content of a quotation response.
type QuotationResponse struct {
	Offers []Offer
}

// OrderResponse is the mapped content of an order response.
type OrderResponse struct {
	Reference string
	// Offer is the first offer of the confirmation; nil when the response
	// carries none.
	Offer *OrderDetails
}
