package graphql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/tournevent/emc/internal/telemetry"
	"github.com/tournevent/emc/pkg/envoimoinscher"
)

// Partner is the quotation and order backend used by the resolver.
// *envoimoinscher.Client implements it.
type Partner interface {
	Name() string
	GetQuotation(ctx context.Context, q *envoimoinscher.Quotation, info envoimoinscher.QuoteInfo) (*envoimoinscher.QuoteResult, error)
	MakeOrder(ctx context.Context, q *envoimoinscher.Quotation, info envoimoinscher.QuoteInfo, withDetails bool) (*envoimoinscher.Order, error)
	MakeDoubleOrder(ctx context.Context, q *envoimoinscher.Quotation, info *envoimoinscher.QuoteInfo, withDetails bool) (*envoimoinscher.Order, error)
}

// Resolver is the root resolver for the GraphQL schema.
// It holds dependencies needed by all resolvers.
type Resolver struct {
	Partner Partner
	Logger  *otelzap.Logger
	Metrics *telemetry.Metrics
}

// NewResolver creates a new resolver with the given dependencies.
func NewResolver(partner Partner, logger *otelzap.Logger, metrics *telemetry.Metrics) *Resolver {
	return &Resolver{
		Partner: partner,
		Logger:  logger,
		Metrics: metrics,
	}
}

// Quotation requests the offers for a shipment.
func (r *Resolver) Quotation(ctx context.Context, input QuotationInput) (result *QuotationResult, err error) {
	start := time.Now()
	requestID := uuid.NewString()
	defer func() { r.observe("quotation", start, err) }()

	q, err := buildQuotation(input)
	if err != nil {
		return nil, err
	}
	info, err := infoInputToModel(input.Info)
	if err != nil {
		return nil, err
	}

	res, err := r.Partner.GetQuotation(ctx, q, info)
	if err != nil {
		r.Logger.Ctx(ctx).Error("Quotation failed", zap.String("request_id", requestID), zap.Error(err))
		return nil, err
	}

	offers := res.Offers(input.OnlyCom)
	if r.Metrics != nil {
		r.Metrics.RecordOffers(len(offers))
	}

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.Int("offers", len(offers)),
		zap.Bool("only_com", input.OnlyCom),
	}
	if cheapest, ok := cheapestPrice(offers); ok {
		fields = append(fields, zap.String("cheapest", cheapest.StringFixed(2)))
	}
	r.Logger.Ctx(ctx).Info("Quotation completed", fields...)

	result = &QuotationResult{
		RequestID: requestID,
		Offers:    make([]Offer, len(offers)),
	}
	for i, o := range offers {
		result.Offers[i] = offerToGraphQL(o)
	}
	return result, nil
}

// Order places an order and, when Double is set, the return order. When
// the return order fails the result still carries the booked first order.
func (r *Resolver) Order(ctx context.Context, input OrderInput) (result *OrderResult, err error) {
	start := time.Now()
	requestID := uuid.NewString()
	operation := "order"
	if input.Double {
		operation = "double_order"
	}
	defer func() { r.observe(operation, start, err) }()

	q, err := buildQuotation(input.QuotationInput)
	if err != nil {
		return nil, err
	}
	info, err := infoInputToModel(input.Info)
	if err != nil {
		return nil, err
	}

	var returnInfo *envoimoinscher.QuoteInfo
	if input.Double && input.ReturnInfo != nil {
		ri, err := infoInputToModel(*input.ReturnInfo)
		if err != nil {
			return nil, err
		}
		returnInfo = &ri
	}

	order, err := r.Partner.MakeOrder(ctx, q, info, input.WithDetails)
	if err != nil {
		r.Logger.Ctx(ctx).Error("Order failed", zap.String("request_id", requestID), zap.Error(err))
		return nil, err
	}
	result = &OrderResult{
		RequestID: requestID,
		Order:     orderToGraphQL(order),
	}

	if input.Double {
		ret, err := r.Partner.MakeDoubleOrder(ctx, q, returnInfo, input.WithDetails)
		if err != nil {
			r.Logger.Ctx(ctx).Error("Return order failed",
				zap.String("request_id", requestID),
				zap.String("reference", order.Reference),
				zap.Error(err),
			)
			return result, fmt.Errorf("return order after %s: %w", order.Reference, err)
		}
		converted := orderToGraphQL(ret)
		result.Return = &converted
	}

	r.Logger.Ctx(ctx).Info("Order completed",
		zap.String("request_id", requestID),
		zap.String("reference", result.Order.Reference),
		zap.Bool("double", input.Double),
	)
	return result, nil
}

// Reasons lists the shipment reasons in table order. Labels come from
// translations keyed by reason key, falling back to the code.
func (r *Resolver) Reasons(ctx context.Context, translations map[string]string) []Reason {
	labels := envoimoinscher.Reasons(translations)
	out := make([]Reason, 0, len(labels))
	for _, sr := range envoimoinscher.ShipmentReasons() {
		out = append(out, Reason{Code: sr.Code, Label: labels[sr.Code]})
	}
	return out
}

// Pallets lists the accepted pallet footprints.
func (r *Resolver) Pallets(ctx context.Context) []Pallet {
	pallets := envoimoinscher.PalletDimensions()
	out := make([]Pallet, len(pallets))
	for i, p := range pallets {
		out[i] = Pallet(p)
	}
	return out
}

// Health reports that the service is up.
func (r *Resolver) Health(ctx context.Context) *Health {
	return &Health{
		Status:  "ok",
		Partner: r.Partner.Name(),
		Time:    time.Now().UTC(),
	}
}

func (r *Resolver) observe(operation string, start time.Time, err error) {
	if r.Metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		r.Metrics.RecordError(operation, err)
	}
	r.Metrics.RecordRequest(operation, status, time.Since(start).Seconds())
}
