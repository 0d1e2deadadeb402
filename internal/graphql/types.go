package graphql

import "time"

// PersonInput describes a shipper or a recipient.
type PersonInput struct {
	Country    string            `mapstructure:"country"`
	PostalCode string            `mapstructure:"postalCode"`
	City       string            `mapstructure:"city"`
	Type       string            `mapstructure:"type"`
	Address    string            `mapstructure:"address"`
	Civility   string            `mapstructure:"civility"`
	FirstName  string            `mapstructure:"firstName"`
	LastName   string            `mapstructure:"lastName"`
	Company    string            `mapstructure:"company"`
	Email      string            `mapstructure:"email"`
	Phone      string            `mapstructure:"phone"`
	Infos      string            `mapstructure:"infos"`
	Extra      map[string]string `mapstructure:"extra"`
}

// PackageInput is one package, in kilograms and centimetres.
type PackageInput struct {
	Weight     float64 `mapstructure:"weight"`
	Length     float64 `mapstructure:"length"`
	Width      float64 `mapstructure:"width"`
	Height     float64 `mapstructure:"height"`
	PalletCode int     `mapstructure:"palletCode"`
}

// ProformaInput is one proforma invoice line.
type ProformaInput struct {
	DescriptionEN string  `mapstructure:"descriptionEn"`
	DescriptionFR string  `mapstructure:"descriptionFr"`
	Origin        string  `mapstructure:"origin"`
	Number        int     `mapstructure:"number"`
	Value         float64 `mapstructure:"value"`
}

// InfoInput carries the quotation and order information.
type InfoInput struct {
	// CollectionDate is formatted as YYYY-MM-DD.
	CollectionDate string            `mapstructure:"collectionDate"`
	Delay          string            `mapstructure:"delay"`
	ContentCode    int               `mapstructure:"contentCode"`
	Operator       string            `mapstructure:"operator"`
	Service        string            `mapstructure:"service"`
	DeclaredValue  float64           `mapstructure:"declaredValue"`
	Insurance      *bool             `mapstructure:"insurance"`
	Reason         string            `mapstructure:"reason"`
	Extra          map[string]string `mapstructure:"extra"`
}

// QuotationInput is the input of the quotation query.
type QuotationInput struct {
	Shipper     PersonInput     `mapstructure:"shipper"`
	Recipient   PersonInput     `mapstructure:"recipient"`
	PackageType string          `mapstructure:"packageType"`
	Packages    []PackageInput  `mapstructure:"packages"`
	Proforma    []ProformaInput `mapstructure:"proforma"`
	Info        InfoInput       `mapstructure:"info"`
	OnlyCom     bool            `mapstructure:"onlyCom"`
}

// OrderInput is the input of the order mutation. With Double set, a
// return order is placed right after the first one, using ReturnInfo on
// top of Info when given.
type OrderInput struct {
	QuotationInput `mapstructure:",squash"`
	WithDetails    bool       `mapstructure:"withDetails"`
	Double         bool       `mapstructure:"double"`
	ReturnInfo     *InfoInput `mapstructure:"returnInfo"`
}

// Operator is the carrier of an offer.
type Operator struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Logo  string `json:"logo,omitempty"`
}

// Service is the carrier service of an offer.
type Service struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Price amounts are decimal strings with two digits.
type Price struct {
	Currency     string `json:"currency"`
	TaxExclusive string `json:"taxExclusive"`
	TaxInclusive string `json:"taxInclusive"`
}

// Schedule is the collection or delivery side of an offer.
type Schedule struct {
	Type      string `json:"type"`
	TypeLabel string `json:"typeLabel"`
	Date      string `json:"date"`
	Time      string `json:"time,omitempty"`
	Label     string `json:"label,omitempty"`
}

// MandatoryInfo is a field required before ordering an offer.
type MandatoryInfo struct {
	Code   string            `json:"code"`
	Label  string            `json:"label"`
	Type   string            `json:"type"`
	Values []string          `json:"values,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Offer is one priced offer.
type Offer struct {
	Mode            string          `json:"mode"`
	URL             string          `json:"url"`
	Operator        Operator        `json:"operator"`
	Service         Service         `json:"service"`
	Price           Price           `json:"price"`
	Collection      Schedule        `json:"collection"`
	Delivery        Schedule        `json:"delivery"`
	Characteristics []string        `json:"characteristics"`
	Alert           string          `json:"alert,omitempty"`
	Mandatory       []MandatoryInfo `json:"mandatory"`
}

// QuotationResult is the result of the quotation query.
type QuotationResult struct {
	RequestID string  `json:"requestId"`
	Offers    []Offer `json:"offers"`
}

// OrderDetails is the confirmed offer of an order.
type OrderDetails struct {
	URL             string   `json:"url"`
	Mode            string   `json:"mode"`
	Operator        Operator `json:"operator"`
	Service         Service  `json:"service"`
	Price           Price    `json:"price"`
	Collection      Schedule `json:"collection"`
	Delivery        Schedule `json:"delivery"`
	Proforma        string   `json:"proforma,omitempty"`
	Alerts          []string `json:"alerts"`
	Characteristics []string `json:"characteristics"`
	Labels          []string `json:"labels"`
}

// Order is a confirmed booking.
type Order struct {
	Reference string        `json:"reference"`
	Date      time.Time     `json:"date"`
	Details   *OrderDetails `json:"details,omitempty"`
}

// OrderResult is the result of the order mutation. Return is only set
// for double orders.
type OrderResult struct {
	RequestID string `json:"requestId"`
	Order     Order  `json:"order"`
	Return    *Order `json:"return,omitempty"`
}

// Reason is one shipment reason with its label.
type Reason struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Pallet is one accepted pallet footprint.
type Pallet struct {
	Code   int `json:"code"`
	Length int `json:"length"`
	Width  int `json:"width"`
}

// Health reports the service state.
type Health struct {
	Status  string    `json:"status"`
	Partner string    `json:"partner"`
	Time    time.Time `json:"time"`
}
