package envoimoinscher

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const maxResponseSize = 10 << 20

// HTTPAPIClient is the production implementation of APIClient using HTTP/XML.
type HTTPAPIClient struct {
	baseURL    string
	login      string
	password   string
	apiKey     string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL  string
	Login    string
	Password string
	APIKey   string
	Timeout  time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = TestBaseURL
	}

	return &HTTPAPIClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		login:    cfg.Login,
		password: cfg.Password,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ============================================================================
// XML Response structures for the EnvoiMoinsCher API
// ============================================================================

// cotationXML is the XML structure of quotation responses
type cotationXML struct {
	XMLName xml.Name   `xml:"cotation"`
	Offers  []offerXML `xml:"shipment>offer"`
}

// orderXML is the XML structure of order responses
type orderXML struct {
	XMLName  xml.Name         `xml:"order"`
	Shipment orderShipmentXML `xml:"shipment"`
}

// orderShipmentXML reads the reference as a direct child of <shipment>
// only, so a <reference> nested in an offer is never taken for it.
type orderShipmentXML struct {
	Reference string     `xml:"reference"`
	Offers    []offerXML `xml:"offer"`
}

type offerXML struct {
	Mode            string      `xml:"mode"`
	URL             string      `xml:"url"`
	Operator        operatorXML `xml:"operator"`
	Service         serviceXML  `xml:"service"`
	Price           priceXML    `xml:"price"`
	Collection      scheduleXML `xml:"collection"`
	Delivery        scheduleXML `xml:"delivery"`
	Characteristics []string    `xml:"characteristics>label"`
	Alerts          []string    `xml:"alert"`
	Proforma        string      `xml:"proforma"`
	Labels          []string    `xml:"labels>label"`
	Mandatory       []xmlNode   `xml:"mandatory_informations>parameter"`
}

type operatorXML struct {
	Code  string `xml:"code"`
	Label string `xml:"label"`
	Logo  string `xml:"logo"`
}

type serviceXML struct {
	Code  string `xml:"code"`
	Label string `xml:"label"`
}

type priceXML struct {
	Currency     string `xml:"currency"`
	TaxExclusive string `xml:"tax-exclusive"`
	TaxInclusive string `xml:"tax-inclusive"`
}

type scheduleXML struct {
	Type      string `xml:"type>code"`
	TypeLabel string `xml:"type>label"`
	Date      string `xml:"date"`
	Time      string `xml:"time"`
	Label     string `xml:"label"`
}

// xmlNode is a generic element, used where the partner schema is open.
type xmlNode struct {
	XMLName xml.Name
	Content string
	Nodes   []xmlNode

	// inner is the text of the node and its descendants in document order.
	inner string
}

func (n *xmlNode) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.XMLName = start.Name
	var content, inner strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			content.Write(t)
			inner.Write(t)
		case xml.StartElement:
			var c xmlNode
			if err := c.UnmarshalXML(d, t); err != nil {
				return err
			}
			n.Nodes = append(n.Nodes, c)
			inner.WriteString(c.inner)
		case xml.EndElement:
			n.Content = content.String()
			n.inner = inner.String()
			return nil
		}
	}
}

// text returns the text content of the node and its descendants.
func (n xmlNode) text() string {
	return n.inner
}

// child returns the first child element with the given name.
func (n xmlNode) child(name string) (xmlNode, bool) {
	for _, c := range n.Nodes {
		if c.XMLName.Local == name {
			return c, true
		}
	}
	return xmlNode{}, false
}

// collectErrors returns every <error> element of the tree, root included.
func (n xmlNode) collectErrors() []ErrorDetail {
	var out []ErrorDetail
	if n.XMLName.Local == "error" {
		d := ErrorDetail{}
		if c, ok := n.child("code"); ok {
			d.Code = strings.TrimSpace(c.text())
		}
		if m, ok := n.child("message"); ok {
			d.Message = strings.TrimSpace(m.text())
		}
		if d.Code == "" && d.Message == "" {
			d.Message = strings.TrimSpace(n.text())
		}
		return append(out, d)
	}
	for _, c := range n.Nodes {
		out = append(out, c.collectErrors()...)
	}
	return out
}

// ============================================================================
// API Implementation
// ============================================================================

// Quotation fetches offers from the quotation endpoint.
func (c *HTTPAPIClient) Quotation(ctx context.Context, params url.Values) (*QuotationResponse, error) {
	body, err := c.call(ctx, "quotation", http.MethodGet, quotationPath, params)
	if err != nil {
		return nil, err
	}

	var doc cotationXML
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode quotation response: %w", err)
	}

	offers := make([]Offer, len(doc.Offers))
	for i, o := range doc.Offers {
		offers[i] = o.toOffer()
	}
	return &QuotationResponse{Offers: offers}, nil
}

// Order posts an order to the order endpoint.
func (c *HTTPAPIClient) Order(ctx context.Context, params url.Values) (*OrderResponse, error) {
	body, err := c.call(ctx, "order", http.MethodPost, orderPath, params)
	if err != nil {
		return nil, err
	}

	var doc orderXML
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	resp := &OrderResponse{
		Reference: strings.TrimSpace(doc.Shipment.Reference),
	}
	if len(doc.Shipment.Offers) > 0 {
		resp.Offer = doc.Shipment.Offers[0].toOrderDetails()
	}
	return resp, nil
}

// ============================================================================
// Conversion helpers
// ============================================================================

func (o offerXML) toOffer() Offer {
	var alert string
	if len(o.Alerts) > 0 {
		alert = o.Alerts[0]
	}

	mandatory := make(map[string]MandatoryInfo, len(o.Mandatory))
	for _, p := range o.Mandatory {
		info := mandatoryInfo(p)
		if info.Code == "" {
			continue
		}
		mandatory[info.Code] = info
	}

	return Offer{
		Mode:     o.Mode,
		URL:      o.URL,
		Operator: Operator(o.Operator),
		Service:  Service(o.Service),
		Price:    o.Price.toPrice(),
		Collection: Schedule{
			Type:      o.Collection.Type,
			TypeLabel: o.Collection.TypeLabel,
			Date:      o.Collection.Date,
		},
		Delivery: Schedule{
			Type:      o.Delivery.Type,
			TypeLabel: o.Delivery.TypeLabel,
			Date:      o.Delivery.Date,
		},
		Characteristics: o.Characteristics,
		Alert:           alert,
		Mandatory:       mandatory,
	}
}

func (o offerXML) toOrderDetails() *OrderDetails {
	labels := make([]string, len(o.Labels))
	for i, l := range o.Labels {
		labels[i] = strings.TrimSpace(l)
	}

	return &OrderDetails{
		URL:             o.URL,
		Mode:            o.Mode,
		Operator:        Operator(o.Operator),
		Service:         Service(o.Service),
		Price:           o.Price.toPrice(),
		Collection:      Schedule(o.Collection),
		Delivery:        Schedule(o.Delivery),
		Proforma:        o.Proforma,
		Alerts:          o.Alerts,
		Characteristics: o.Characteristics,
		Labels:          labels,
	}
}

func (p priceXML) toPrice() Price {
	return Price{
		Currency:     p.Currency,
		TaxExclusive: parseAmount(p.TaxExclusive),
		TaxInclusive: parseAmount(p.TaxInclusive),
	}
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// mandatoryInfo maps a <parameter> element. Every child becomes a field;
// <type> is reduced to the name of its first element, and enum types keep
// their non-empty values.
func mandatoryInfo(p xmlNode) MandatoryInfo {
	info := MandatoryInfo{Fields: make(map[string]string, len(p.Nodes))}
	for _, child := range p.Nodes {
		name := child.XMLName.Local
		if name != "type" {
			info.Fields[name] = strings.TrimSpace(child.text())
			continue
		}

		info.Type = strings.TrimSpace(child.text())
		if len(child.Nodes) > 0 {
			kind := child.Nodes[0]
			info.Type = kind.XMLName.Local
			if info.Type == "enum" {
				for _, v := range kind.Nodes {
					if s := strings.TrimSpace(v.text()); s != "" {
						info.Values = append(info.Values, s)
					}
				}
			}
		}
		info.Fields[name] = info.Type
	}
	info.Code = info.Fields["code"]
	info.Label = info.Fields["label"]
	return info
}

// ============================================================================
// HTTP Helpers
// ============================================================================

// call performs the request and returns the body of a successful
// response. Non-2xx statuses and <error> elements become APIErrors.
func (c *HTTPAPIClient) call(ctx context.Context, operation, method, path string, params url.Values) ([]byte, error) {
	resp, err := c.doRequest(ctx, method, path, params)
	if err != nil {
		return nil, NewAPIError(operation).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, NewAPIError(operation).WithStatusCode(resp.StatusCode).
			WithCause(fmt.Errorf("failed to read response: %w", err))
	}

	var root xmlNode
	parseErr := xml.Unmarshal(body, &root)
	var details []ErrorDetail
	if parseErr == nil {
		details = root.collectErrors()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(details) == 0 {
			details = []ErrorDetail{{
				Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
				Message: truncate(strings.TrimSpace(string(body)), 512),
			}}
		}
		return nil, NewAPIError(operation, details...).WithStatusCode(resp.StatusCode)
	}
	if len(details) > 0 {
		return nil, NewAPIError(operation, details...).WithStatusCode(resp.StatusCode)
	}
	if parseErr != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", operation, parseErr)
	}
	return body, nil
}

func (c *HTTPAPIClient) doRequest(ctx context.Context, method, path string, params url.Values) (*http.Response, error) {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if method == http.MethodGet {
		if len(params) > 0 {
			endpoint += "?" + params.Encode()
		}
	} else {
		bodyReader = bytes.NewBufferString(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.login, c.password)
	req.Header.Set("access_key", c.apiKey)
	req.Header.Set("Accept", "application/xml")
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	return c.httpClient.Do(req)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ APIClient = (*HTTPAPIClient)(nil)
