package envoimoinscher

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role identifies which party of the shipment a Person describes.
type Role string

const (
	RoleShipper   Role = "expediteur"
	RoleRecipient Role = "destinataire"
)

// PackageType is the partner's package family. It prefixes every
// dimension parameter (e.g. "colis_1.poids").
type PackageType string

const (
	PackageEnvelope PackageType = "pli"
	PackageParcel   PackageType = "colis"
	PackageBulky    PackageType = "encombrant"
	PackagePallet   PackageType = "palette"
)

// Offer modes returned by the quotation endpoint.
const (
	ModeOrderable = "COM"
	ModeInfo      = "INFO"
)

// Person describes a shipper or a recipient.
type Person struct {
	Country    string `url:"pays" validate:"required,len=2"`
	PostalCode string `url:"code_postal" validate:"required"`
	City       string `url:"ville,omitempty"`
	Type       string `url:"type,omitempty" validate:"omitempty,oneof=particulier entreprise"`
	Address    string `url:"adresse,omitempty"`
	Civility   string `url:"civilite,omitempty"`
	FirstName  string `url:"prenom,omitempty"`
	LastName   string `url:"nom,omitempty"`
	Company    string `url:"societe,omitempty"`
	Email      string `url:"email,omitempty" validate:"omitempty,email"`
	Phone      string `url:"tel,omitempty"`
	Infos      string `url:"infos,omitempty"`

	// Extra holds partner fields that have no dedicated attribute.
	Extra map[string]string `url:"-"`
}

// Dimensions describes one package. Weight is in kilograms, sizes in
// centimetres. PalletCode is only read for PackagePallet and replaces
// Length and Width.
type Dimensions struct {
	Weight     float64 `validate:"gt=0"`
	Length     float64 `validate:"gte=0"`
	Width      float64 `validate:"gte=0"`
	Height     float64 `validate:"gte=0"`
	PalletCode int
}

// ProformaLine is one item of the proforma invoice required for
// shipments leaving the EU.
type ProformaLine struct {
	DescriptionEN string  `url:"description_en,omitempty"`
	DescriptionFR string  `url:"description_fr,omitempty"`
	Origin        string  `url:"origine,omitempty"`
	Number        int     `url:"number"`
	Value         float64 `url:"value"`
}

// QuoteInfo carries the quotation (and order) parameters that are not
// attached to a person or a package.
type QuoteInfo struct {
	CollectionDate time.Time `url:"collecte,omitempty" layout:"2006-01-02"`
	Delay          string    `url:"delai,omitempty"`
	ContentCode    int       `url:"code_contenu,omitempty"`
	Operator       string    `url:"operateur,omitempty"`
	Service        string    `url:"service,omitempty"`
	DeclaredValue  float64   `url:"valeur,omitempty"`
	Insurance      *bool     `url:"assurance.selected,omitempty"`

	// Reason is a key of the reasons table ("sale", "repair", ...). It is
	// only sent with orders, as envoi.raison.
	Reason string `url:"-"`

	Extra map[string]string `url:"-"`
}

// Operator is the carrier behind an offer.
type Operator struct {
	Code  string
	Label string
	Logo  string
}

// Service is the carrier service of an offer.
type Service struct {
	Code  string
	Label string
}

// Price of an offer. Amounts stay zero when the partner omits them.
type Price struct {
	Currency     string
	TaxExclusive decimal.Decimal
	TaxInclusive decimal.Decimal
}

// Schedule describes the collection or the delivery side of an offer.
// Time and Label are only filled in order confirmations.
type Schedule struct {
	Type      string
	TypeLabel string
	Date      string
	Time      string
	Label     string
}

// MandatoryInfo is an additional field the partner requires before the
// offer can be ordered.
type MandatoryInfo struct {
	Code  string
	Label string
	// Type is the element name found under <type>, or "enum".
	Type string
	// Values lists the allowed values when Type is "enum".
	Values []string
	// Fields holds every child element of the parameter as trimmed text.
	Fields map[string]string
}

// Offer is one priced shipping offer.
type Offer struct {
	Mode            string
	URL             string
	Operator        Operator
	Service         Service
	Price           Price
	Collection      Schedule
	Delivery        Schedule
	Characteristics []string
	Alert           string
	Mandatory       map[string]MandatoryInfo
}

// Orderable reports whether the offer can be ordered through the API.
func (o Offer) Orderable() bool {
	return o.Mode == ModeOrderable
}

// QuoteResult holds the offers of a quotation.
type QuoteResult struct {
	offers []Offer
}

// Offers returns the offers of the quotation. With onlyCom set, offers
// that cannot be ordered through the API are left out.
func (r *QuoteResult) Offers(onlyCom bool) []Offer {
	if !onlyCom {
		return r.offers
	}
	out := make([]Offer, 0, len(r.offers))
	for _, o := range r.offers {
		if o.Orderable() {
			out = append(out, o)
		}
	}
	return out
}

// OrderDetails is the confirmation of the ordered offer.
type OrderDetails struct {
	URL             string
	Mode            string
	Operator        Operator
	Service         Service
	Price           Price
	Collection      Schedule
	Delivery        Schedule
	Proforma        string
	Alerts          []string
	Characteristics []string
	Labels          []string
}

// Order is a confirmed booking.
type Order struct {
	Reference string
	Date      time.Time
	// Details is only set when the order was placed with details requested.
	Details *OrderDetails
}

// ============================================================================
// Lookup tables
// ============================================================================

// Pallet is an accepted pallet footprint, in centimetres.
type Pallet struct {
	Code   int
	Length int
	Width  int
}

// Sorted from the longest to the shortest.
var pallets = []Pallet{
	{Code: 130110, Length: 130, Width: 110},
	{Code: 122102, Length: 122, Width: 102},
	{Code: 120120, Length: 120, Width: 120},
	{Code: 120100, Length: 120, Width: 100},
	{Code: 12080, Length: 120, Width: 80},
	{Code: 114114, Length: 114, Width: 114},
	{Code: 11476, Length: 114, Width: 76},
	{Code: 110110, Length: 110, Width: 110},
	{Code: 107107, Length: 107, Width: 107},
	{Code: 8060, Length: 80, Width: 60},
}

// PalletDimensions returns the pallet footprints accepted by the partner.
func PalletDimensions() []Pallet {
	out := make([]Pallet, len(pallets))
	copy(out, pallets)
	return out
}

// LookupPallet returns the footprint registered under code.
func LookupPallet(code int) (Pallet, bool) {
	for _, p := range pallets {
		if p.Code == code {
			return p, true
		}
	}
	return Pallet{}, false
}

// ShipmentReason maps a caller-facing key to the partner reason code used
// on proforma invoices.
type ShipmentReason struct {
	Key  string
	Code string
}

var reasons = []ShipmentReason{
	{Key: "sale", Code: "sale"},
	{Key: "repair", Code: "repr"},
	{Key: "return", Code: "rtrn"},
	{Key: "gift", Code: "gift"},
	{Key: "sample", Code: "smpl"},
	{Key: "personal", Code: "prsu"},
	{Key: "document", Code: "icdt"},
	{Key: "other", Code: "othr"},
}

// ShipmentReasons returns the reasons table in partner order.
func ShipmentReasons() []ShipmentReason {
	out := make([]ShipmentReason, len(reasons))
	copy(out, reasons)
	return out
}

// ReasonCode returns the partner code for a reason key.
func ReasonCode(key string) (string, bool) {
	for _, r := range reasons {
		if r.Key == key {
			return r.Code, true
		}
	}
	return "", false
}

// Reasons returns partner reason codes mapped to labels. translations is
// keyed by reason key ("repair" => "Réparation"); when it is empty every
// code maps to itself. Keys missing from translations fall back to the
// code.
func Reasons(translations map[string]string) map[string]string {
	out := make(map[string]string, len(reasons))
	for _, r := range reasons {
		label, ok := translations[r.Key]
		if !ok || label == "" {
			label = r.Code
		}
		out[r.Code] = label
	}
	return out
}
