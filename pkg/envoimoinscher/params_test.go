package envoimoinscher_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/emc/pkg/envoimoinscher"
)

func TestQuotation_SetType_Parcel(t *testing.T) {
	q := envoimoinscher.NewQuotation()

	err := q.SetType(envoimoinscher.PackageParcel, []envoimoinscher.Dimensions{
		{Weight: 2.5, Length: 30, Width: 20, Height: 10},
		{Weight: 1, Length: 15, Width: 15, Height: 15},
	})
	require.NoError(t, err)

	params := q.Params()
	assert.Equal(t, "2.5", params.Get("colis_1.poids"))
	assert.Equal(t, "30", params.Get("colis_1.longueur"))
	assert.Equal(t, "20", params.Get("colis_1.largeur"))
	assert.Equal(t, "10", params.Get("colis_1.hauteur"))
	assert.Equal(t, "1", params.Get("colis_2.poids"))
	assert.Equal(t, "15", params.Get("colis_2.hauteur"))
}

func TestQuotation_SetType_EnvelopeHasNoHeight(t *testing.T) {
	q := envoimoinscher.NewQuotation()

	err := q.SetType(envoimoinscher.PackageEnvelope, []envoimoinscher.Dimensions{
		{Weight: 0.2, Length: 32, Width: 22, Height: 1},
	})
	require.NoError(t, err)

	params := q.Params()
	assert.Equal(t, "0.2", params.Get("pli_1.poids"))
	assert.Equal(t, "32", params.Get("pli_1.longueur"))
	assert.Equal(t, "22", params.Get("pli_1.largeur"))
	_, ok := params["pli_1.hauteur"]
	assert.False(t, ok, "envelopes carry no height")
}

func TestQuotation_SetType_PalletUsesTable(t *testing.T) {
	q := envoimoinscher.NewQuotation()

	err := q.SetType(envoimoinscher.PackagePallet, []envoimoinscher.Dimensions{
		{Weight: 150, Length: 1, Width: 1, Height: 120, PalletCode: 12080},
	})
	require.NoError(t, err)

	params := q.Params()
	assert.Equal(t, "150", params.Get("palette_1.poids"))
	assert.Equal(t, "120", params.Get("palette_1.longueur"))
	assert.Equal(t, "80", params.Get("palette_1.largeur"))
	assert.Equal(t, "120", params.Get("palette_1.hauteur"))
}

func TestQuotation_SetType_UnknownPallet(t *testing.T) {
	q := envoimoinscher.NewQuotation()

	err := q.SetType(envoimoinscher.PackagePallet, []envoimoinscher.Dimensions{
		{Weight: 150, Height: 120, PalletCode: 999},
	})
	assert.True(t, errors.Is(err, envoimoinscher.ErrUnknownPalletCode))
	assert.Empty(t, q.Params(), "no parameter is set when a package is rejected")
}

func TestQuotation_SetType_InvalidWeight(t *testing.T) {
	q := envoimoinscher.NewQuotation()

	err := q.SetType(envoimoinscher.PackageParcel, []envoimoinscher.Dimensions{
		{Weight: 0, Length: 10, Width: 10, Height: 10},
	})
	assert.True(t, errors.Is(err, envoimoinscher.ErrInvalidPackage))
}

func TestQuotation_SetType_UnknownType(t *testing.T) {
	q := envoimoinscher.NewQuotation()

	err := q.SetType("caisse", []envoimoinscher.Dimensions{{Weight: 1}})
	assert.True(t, errors.Is(err, envoimoinscher.ErrInvalidPackage))
}

func TestQuotation_SetPerson(t *testing.T) {
	q := envoimoinscher.NewQuotation()

	err := q.SetPerson(envoimoinscher.RoleShipper, envoimoinscher.Person{
		Country:    "FR",
		PostalCode: "75002",
		City:       "Paris",
		Type:       "entreprise",
		Address:    "15 rue Marsollier",
		Company:    "Boutique",
		Email:      "contact@example.com",
		Extra:      map[string]string{"code_porte": "1234"},
	})
	require.NoError(t, err)

	params := q.Params()
	assert.Equal(t, "FR", params.Get("expediteur.pays"))
	assert.Equal(t, "75002", params.Get("expediteur.code_postal"))
	assert.Equal(t, "Paris", params.Get("expediteur.ville"))
	assert.Equal(t, "entreprise", params.Get("expediteur.type"))
	assert.Equal(t, "15 rue Marsollier", params.Get("expediteur.adresse"))
	assert.Equal(t, "Boutique", params.Get("expediteur.societe"))
	assert.Equal(t, "contact@example.com", params.Get("expediteur.email"))
	assert.Equal(t, "1234", params.Get("expediteur.code_porte"))
	_, ok := params["expediteur.tel"]
	assert.False(t, ok, "empty fields are not sent")
}

func TestQuotation_SetPerson_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		role   envoimoinscher.Role
		person envoimoinscher.Person
	}{
		{"missing country", envoimoinscher.RoleRecipient, envoimoinscher.Person{PostalCode: "75002"}},
		{"country not ISO-2", envoimoinscher.RoleRecipient, envoimoinscher.Person{Country: "FRA", PostalCode: "75002"}},
		{"missing postal code", envoimoinscher.RoleRecipient, envoimoinscher.Person{Country: "FR"}},
		{"bad type", envoimoinscher.RoleRecipient, envoimoinscher.Person{Country: "FR", PostalCode: "75002", Type: "ami"}},
		{"bad email", envoimoinscher.RoleShipper, envoimoinscher.Person{Country: "FR", PostalCode: "75002", Email: "nope"}},
		{"unknown role", "transporteur", envoimoinscher.Person{Country: "FR", PostalCode: "75002"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := envoimoinscher.NewQuotation()
			err := q.SetPerson(tt.role, tt.person)
			assert.True(t, errors.Is(err, envoimoinscher.ErrInvalidPerson))
		})
	}
}

func TestQuotation_SetProforma(t *testing.T) {
	q := envoimoinscher.NewQuotation()

	err := q.SetProforma([]envoimoinscher.ProformaLine{
		{DescriptionEN: "english description", DescriptionFR: "description française", Origin: "FR", Number: 2, Value: 500},
		{DescriptionEN: "spare part", Origin: "EEE", Number: 1, Value: 12.5},
	})
	require.NoError(t, err)

	params := q.Params()
	assert.Equal(t, "english description", params.Get("proforma_1.description_en"))
	assert.Equal(t, "description française", params.Get("proforma_1.description_fr"))
	assert.Equal(t, "FR", params.Get("proforma_1.origine"))
	assert.Equal(t, "2", params.Get("proforma_1.number"))
	assert.Equal(t, "500", params.Get("proforma_1.value"))
	assert.Equal(t, "spare part", params.Get("proforma_2.description_en"))
	assert.Equal(t, "EEE", params.Get("proforma_2.origine"))
	assert.Equal(t, "12.5", params.Get("proforma_2.value"))
}

func TestQuotation_UnsetParams(t *testing.T) {
	q := envoimoinscher.NewQuotation()
	require.NoError(t, q.SetType(envoimoinscher.PackageParcel, []envoimoinscher.Dimensions{
		{Weight: 1, Length: 10, Width: 10, Height: 10},
	}))

	q.UnsetParams("colis_1.hauteur", "not-set")

	params := q.Params()
	_, ok := params["colis_1.hauteur"]
	assert.False(t, ok)
	assert.Equal(t, "1", params.Get("colis_1.poids"))
}

func TestQuotation_ParamsIsACopy(t *testing.T) {
	q := envoimoinscher.NewQuotation()
	require.NoError(t, q.SetType(envoimoinscher.PackageParcel, []envoimoinscher.Dimensions{
		{Weight: 1, Length: 10, Width: 10, Height: 10},
	}))

	params := q.Params()
	params.Set("colis_1.poids", "99")

	assert.Equal(t, "1", q.Params().Get("colis_1.poids"))
}
