package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tournevent/emc/internal/graphql"
)

const shipmentJSON = `{
	"shipper":   {"country": "FR", "postalCode": "75002", "city": "Paris"},
	"recipient": {"country": "FR", "postalCode": "33000", "city": "Bordeaux"},
	"packages":  [{"weight": 3, "length": 40, "width": 30, "height": 20}],
	"info":      {"collectionDate": "2026-10-20", "operator": "SOGP"}
}`

func TestReadInput_Stdin(t *testing.T) {
	var in graphql.QuotationInput
	require.NoError(t, readInput("-", strings.NewReader(shipmentJSON), &in))

	assert.Equal(t, "33000", in.Recipient.PostalCode)
	require.Len(t, in.Packages, 1)
	assert.Equal(t, 3.0, in.Packages[0].Weight)
}

func TestReadInput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipment.json")
	require.NoError(t, os.WriteFile(path, []byte(shipmentJSON), 0o600))

	var in graphql.OrderInput
	require.NoError(t, readInput(path, nil, &in))
	assert.Equal(t, "SOGP", in.Info.Operator)
}

func TestReadInput_Errors(t *testing.T) {
	var in graphql.QuotationInput
	assert.Error(t, readInput(filepath.Join(t.TempDir(), "missing.json"), nil, &in))
	assert.Error(t, readInput("-", strings.NewReader("not json"), &in))
	assert.Error(t, readInput("-", strings.NewReader(`{"sender": {}}`), &in))
}

// execute runs the root command against the mock partner.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("EMC_USE_MOCK", "true")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommand_Pallets(t *testing.T) {
	out, err := execute(t, "", "pallets")
	require.NoError(t, err)

	var pallets []graphql.Pallet
	require.NoError(t, json.Unmarshal([]byte(out), &pallets))
	assert.Len(t, pallets, 10)
}

func TestCommand_Reasons(t *testing.T) {
	out, err := execute(t, "", "reasons", "--label", "gift=Cadeau")
	require.NoError(t, err)

	var reasons []graphql.Reason
	require.NoError(t, json.Unmarshal([]byte(out), &reasons))
	assert.Contains(t, reasons, graphql.Reason{Code: "gift", Label: "Cadeau"})
}

func TestCommand_Quote(t *testing.T) {
	out, err := execute(t, shipmentJSON, "quote", "--input", "-", "--only-com")
	require.NoError(t, err)

	var result graphql.QuotationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Offers, 1)
	assert.Equal(t, "COM", result.Offers[0].Mode)
}

func TestCommand_Order(t *testing.T) {
	out, err := execute(t, shipmentJSON, "order", "--input", "-", "--details", "--double")
	require.NoError(t, err)

	var result graphql.OrderResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.NotEmpty(t, result.Order.Reference)
	assert.NotNil(t, result.Order.Details)
	require.NotNil(t, result.Return)
	assert.NotEmpty(t, result.Return.Reference)
}
