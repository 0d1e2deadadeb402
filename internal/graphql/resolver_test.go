package graphql_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/tournevent/emc/internal/graphql"
	"github.com/tournevent/emc/internal/telemetry"
	"github.com/tournevent/emc/pkg/envoimoinscher"
)

func newTestResolver() (*graphql.Resolver, *envoimoinscher.MockAPIClient) {
	mockAPI := envoimoinscher.NewMockAPIClient()
	logger := otelzap.New(zap.NewNop())
	client := envoimoinscher.NewWithAPIClient(envoimoinscher.Config{}, mockAPI, logger, nil)
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())

	return graphql.NewResolver(client, logger, metrics), mockAPI
}

func quotationInput() graphql.QuotationInput {
	return graphql.QuotationInput{
		Shipper: graphql.PersonInput{
			Country:    "FR",
			PostalCode: "75002",
			City:       "Paris",
			Type:       "entreprise",
		},
		Recipient: graphql.PersonInput{
			Country:    "FR",
			PostalCode: "13001",
			City:       "Marseille",
			Type:       "particulier",
		},
		Packages: []graphql.PackageInput{
			{Weight: 2, Length: 30, Width: 20, Height: 10},
		},
		Info: graphql.InfoInput{CollectionDate: "2026-10-20"},
	}
}

func TestResolver_Quotation_Success(t *testing.T) {
	resolver, mockAPI := newTestResolver()

	resp, err := resolver.Quotation(context.Background(), quotationInput())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.RequestID)
	require.Len(t, resp.Offers, 2)
	assert.Equal(t, "SOGP", resp.Offers[0].Operator.Code)
	assert.Equal(t, "5.88", resp.Offers[0].Price.TaxInclusive)
	require.Len(t, resp.Offers[0].Mandatory, 1)
	assert.Equal(t, "depot.pointrelais", resp.Offers[0].Mandatory[0].Code)
	assert.Equal(t, "Point relais de dépôt", resp.Offers[0].Mandatory[0].Fields["label"])
	assert.Equal(t, "2026-10-20", resp.Offers[0].Collection.Date)

	calls := mockAPI.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "13001", calls[0].Get("destinataire.code_postal"))
}

func TestResolver_Quotation_OnlyCom(t *testing.T) {
	resolver, _ := newTestResolver()

	input := quotationInput()
	input.OnlyCom = true

	resp, err := resolver.Quotation(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, resp.Offers, 1)
	assert.Equal(t, envoimoinscher.ModeOrderable, resp.Offers[0].Mode)
}

func TestResolver_Quotation_InvalidInput(t *testing.T) {
	resolver, mockAPI := newTestResolver()

	input := quotationInput()
	input.Recipient.Country = ""

	_, err := resolver.Quotation(context.Background(), input)
	assert.ErrorIs(t, err, envoimoinscher.ErrInvalidPerson)
	assert.Empty(t, mockAPI.Calls())
}

func TestResolver_Quotation_PartnerError(t *testing.T) {
	resolver, mockAPI := newTestResolver()
	mockAPI.SimulateErrors = true

	_, err := resolver.Quotation(context.Background(), quotationInput())

	var apiErr *envoimoinscher.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestResolver_Order_Success(t *testing.T) {
	resolver, mockAPI := newTestResolver()

	input := graphql.OrderInput{QuotationInput: quotationInput()}
	input.Info.Operator = "SOGP"
	input.Info.Service = "RelaisColis"
	input.Info.Reason = "sale"

	resp, err := resolver.Order(context.Background(), input)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.RequestID)
	assert.NoError(t, envoimoinscher.ValidateReference(resp.Order.Reference))
	assert.False(t, resp.Order.Date.IsZero())
	assert.Nil(t, resp.Order.Details)
	assert.Nil(t, resp.Return)

	params := mockAPI.Calls()[0]
	assert.Equal(t, "sale", params.Get("envoi.raison"))
	assert.Equal(t, "false", params.Get("assurance.selected"))
}

func TestResolver_Order_WithDetails(t *testing.T) {
	resolver, _ := newTestResolver()

	input := graphql.OrderInput{QuotationInput: quotationInput(), WithDetails: true}
	input.Info.Operator = "SOGP"

	resp, err := resolver.Order(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, resp.Order.Details)
	assert.Equal(t, "SOGP", resp.Order.Details.Operator.Code)
	assert.Equal(t, "4.90", resp.Order.Details.Price.TaxExclusive)
}

func TestResolver_Order_Double(t *testing.T) {
	resolver, mockAPI := newTestResolver()

	input := graphql.OrderInput{
		QuotationInput: quotationInput(),
		Double:         true,
		ReturnInfo:     &graphql.InfoInput{Reason: "return"},
	}
	input.Info.Operator = "SOGP"
	input.Info.Reason = "sale"

	resp, err := resolver.Order(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, resp.Return)
	assert.NoError(t, envoimoinscher.ValidateReference(resp.Return.Reference))

	calls := mockAPI.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "75002", calls[0].Get("expediteur.code_postal"))
	assert.Equal(t, "13001", calls[1].Get("expediteur.code_postal"))
	assert.Equal(t, "SOGP", calls[1].Get("operateur"))
	assert.Equal(t, "rtrn", calls[1].Get("envoi.raison"))
}

func TestResolver_Order_DoubleReturnFails(t *testing.T) {
	resolver, mockAPI := newTestResolver()

	const first = "1234567890ABCD1234EF"
	placed := 0
	mockAPI.OnOrder = func(ctx context.Context, params url.Values) (*envoimoinscher.OrderResponse, error) {
		placed++
		if placed == 1 {
			return &envoimoinscher.OrderResponse{Reference: first}, nil
		}
		return nil, envoimoinscher.NewAPIError("order", envoimoinscher.ErrorDetail{Code: "x", Message: "down"})
	}

	input := graphql.OrderInput{QuotationInput: quotationInput(), Double: true}
	input.Info.Operator = "SOGP"

	resp, err := resolver.Order(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, 2, placed)
	assert.Contains(t, err.Error(), first)

	var apiErr *envoimoinscher.APIError
	assert.True(t, errors.As(err, &apiErr))

	require.NotNil(t, resp)
	assert.Equal(t, first, resp.Order.Reference)
	assert.Nil(t, resp.Return)
}

func TestResolver_Order_InvalidReturnInfo(t *testing.T) {
	resolver, mockAPI := newTestResolver()

	input := graphql.OrderInput{
		QuotationInput: quotationInput(),
		Double:         true,
		ReturnInfo:     &graphql.InfoInput{CollectionDate: "tomorrow"},
	}

	resp, err := resolver.Order(context.Background(), input)
	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Empty(t, mockAPI.Calls())
}

func TestResolver_Order_InvalidReference(t *testing.T) {
	resolver, mockAPI := newTestResolver()
	mockAPI.OnOrder = func(ctx context.Context, params url.Values) (*envoimoinscher.OrderResponse, error) {
		return &envoimoinscher.OrderResponse{Reference: "pending"}, nil
	}

	_, err := resolver.Order(context.Background(), graphql.OrderInput{QuotationInput: quotationInput()})
	assert.ErrorIs(t, err, envoimoinscher.ErrInvalidReference)
}

func TestResolver_Reasons(t *testing.T) {
	resolver, _ := newTestResolver()

	reasons := resolver.Reasons(context.Background(), map[string]string{"repair": "Réparation"})
	require.Len(t, reasons, 8)
	assert.Equal(t, graphql.Reason{Code: "sale", Label: "sale"}, reasons[0])
	assert.Equal(t, graphql.Reason{Code: "repr", Label: "Réparation"}, reasons[1])
}

func TestResolver_Pallets(t *testing.T) {
	resolver, _ := newTestResolver()

	pallets := resolver.Pallets(context.Background())
	require.Len(t, pallets, 10)
	assert.Equal(t, graphql.Pallet{Code: 130110, Length: 130, Width: 110}, pallets[0])
}

func TestResolver_Health(t *testing.T) {
	resolver, _ := newTestResolver()

	health := resolver.Health(context.Background())
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "envoimoinscher", health.Partner)
}

func TestResolver_WithoutMetrics(t *testing.T) {
	logger := otelzap.New(zap.NewNop())
	client := envoimoinscher.NewWithAPIClient(envoimoinscher.Config{}, envoimoinscher.NewMockAPIClient(), logger, nil)
	resolver := graphql.NewResolver(client, logger, nil)

	_, err := resolver.Quotation(context.Background(), quotationInput())
	assert.NoError(t, err)
}
