// Package envoimoinscher provides integration with the EnvoiMoinsCher
// quotation and order API.
package envoimoinscher

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const carrierName = "envoimoinscher"

// A placed order is identified by 10 digits, 4 letters, 4 digits and 2
// letters.
var referencePattern = regexp.MustCompile(`^[0-9]{10}[A-Z]{4}[0-9]{4}[A-Z]{2}$`)

// ValidateReference checks an order reference returned by the partner.
func ValidateReference(ref string) error {
	if !referencePattern.MatchString(ref) {
		return fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	return nil
}

// Config holds EnvoiMoinsCher configuration.
type Config struct {
	Login    string
	Password string
	APIKey   string
	// BaseURL overrides the environment selected by Production.
	BaseURL    string
	Production bool
	Timeout    time.Duration
	UseMock    bool
}

func (c Config) baseURL() string {
	switch {
	case c.BaseURL != "":
		return c.BaseURL
	case c.Production:
		return ProductionBaseURL
	default:
		return TestBaseURL
	}
}

// Client is the EnvoiMoinsCher client.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// New creates a new EnvoiMoinsCher client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:  cfg.baseURL(),
			Login:    cfg.Login,
			Password: cfg.Password,
			APIKey:   cfg.APIKey,
			Timeout:  cfg.Timeout,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new EnvoiMoinsCher client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(carrierName)
	}
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
		now:       time.Now,
	}
}

// Name returns the partner name.
func (c *Client) Name() string {
	return carrierName
}

// GetQuotation merges info into the quotation parameters and requests
// the offers.
func (c *Client) GetQuotation(ctx context.Context, q *Quotation, info QuoteInfo) (*QuoteResult, error) {
	ctx, span := c.tracer.Start(ctx, "envoimoinscher.GetQuotation")
	defer span.End()

	vals, err := info.values()
	if err != nil {
		return nil, c.fail(span, err)
	}
	q.merge(vals)

	params := q.Params()
	c.logger.Ctx(ctx).Info("Requesting EnvoiMoinsCher quotation",
		zap.String("shipper_country", params.Get("expediteur.pays")),
		zap.String("recipient_country", params.Get("destinataire.pays")),
		zap.String("collection_date", params.Get("collecte")),
	)

	resp, err := c.apiClient.Quotation(ctx, params)
	if err != nil {
		c.logger.Ctx(ctx).Error("EnvoiMoinsCher API error", zap.String("operation", "quotation"), zap.Error(err))
		return nil, c.fail(span, err)
	}

	span.SetAttributes(attribute.Int("envoimoinscher.offers", len(resp.Offers)))
	return &QuoteResult{offers: resp.Offers}, nil
}

// MakeOrder places an order with the quotation parameters and info. The
// reason key is translated to its partner code and insurance defaults to
// not selected. The order only succeeds when the partner returns a
// well-formed reference. withDetails attaches the confirmed offer.
func (c *Client) MakeOrder(ctx context.Context, q *Quotation, info QuoteInfo, withDetails bool) (*Order, error) {
	ctx, span := c.tracer.Start(ctx, "envoimoinscher.MakeOrder")
	defer span.End()

	vals, err := orderValues(info)
	if err != nil {
		return nil, c.fail(span, err)
	}
	return c.placeOrder(ctx, span, q, vals, withDetails)
}

// MakeDoubleOrder places the same order in the other direction, from the
// recipient back to the shipper. With a nil info the information of the
// last order is reused; otherwise info is applied on top of it.
func (c *Client) MakeDoubleOrder(ctx context.Context, q *Quotation, info *QuoteInfo, withDetails bool) (*Order, error) {
	ctx, span := c.tracer.Start(ctx, "envoimoinscher.MakeDoubleOrder")
	defer span.End()

	if q.info == nil && info == nil {
		return nil, c.fail(span, ErrNoOrderInfo)
	}

	var vals url.Values
	if info == nil {
		vals = cloneValues(q.info)
	} else {
		newVals, err := encodeOrderInfo(*info)
		if err != nil {
			return nil, c.fail(span, err)
		}
		vals = q.overlayInfo(newVals)
	}
	applyOrderDefaults(vals)

	q.switchPeople()
	return c.placeOrder(ctx, span, q, vals, withDetails)
}

func (c *Client) placeOrder(ctx context.Context, span trace.Span, q *Quotation, vals url.Values, withDetails bool) (*Order, error) {
	q.info = cloneValues(vals)
	q.merge(vals)

	params := q.Params()
	c.logger.Ctx(ctx).Info("Placing EnvoiMoinsCher order",
		zap.String("operator", params.Get("operateur")),
		zap.String("service", params.Get("service")),
		zap.String("reason", params.Get("envoi.raison")),
		zap.Bool("with_details", withDetails),
	)

	resp, err := c.apiClient.Order(ctx, params)
	if err != nil {
		c.logger.Ctx(ctx).Error("EnvoiMoinsCher API error", zap.String("operation", "order"), zap.Error(err))
		return nil, c.fail(span, err)
	}

	if err := ValidateReference(resp.Reference); err != nil {
		c.logger.Ctx(ctx).Warn("EnvoiMoinsCher order rejected", zap.String("reference", resp.Reference))
		return nil, c.fail(span, err)
	}

	order := &Order{
		Reference: resp.Reference,
		Date:      c.now(),
	}
	if withDetails {
		order.Details = resp.Offer
	}

	span.SetAttributes(attribute.String("envoimoinscher.reference", order.Reference))
	c.logger.Ctx(ctx).Info("EnvoiMoinsCher order placed", zap.String("reference", order.Reference))
	return order, nil
}

func (c *Client) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// orderValues encodes order information with the order defaults applied.
func orderValues(info QuoteInfo) (url.Values, error) {
	vals, err := encodeOrderInfo(info)
	if err != nil {
		return nil, err
	}
	applyOrderDefaults(vals)
	return vals, nil
}

func encodeOrderInfo(info QuoteInfo) (url.Values, error) {
	vals, err := info.values()
	if err != nil {
		return nil, err
	}
	if info.Reason != "" {
		code, ok := ReasonCode(info.Reason)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownReason, info.Reason)
		}
		vals.Set("envoi.raison", code)
	}
	return vals, nil
}

func applyOrderDefaults(vals url.Values) {
	if vals.Get("assurance.selected") == "" {
		vals.Set("assurance.selected", "false")
	}
}
