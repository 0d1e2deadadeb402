package graphql

import (
	"fmt"
	"sort"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	"github.com/tournevent/emc/pkg/envoimoinscher"
)

const dateLayout = "2006-01-02"

// Decode copies loosely typed input, such as GraphQL variables or a
// decoded JSON document, into out. Unknown keys are rejected.
func Decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("decoding input: %w", err)
	}
	return nil
}

func personInputToModel(in PersonInput) envoimoinscher.Person {
	return envoimoinscher.Person{
		Country:    in.Country,
		PostalCode: in.PostalCode,
		City:       in.City,
		Type:       in.Type,
		Address:    in.Address,
		Civility:   in.Civility,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Company:    in.Company,
		Email:      in.Email,
		Phone:      in.Phone,
		Infos:      in.Infos,
		Extra:      in.Extra,
	}
}

func packagesInputToModel(inputs []PackageInput) []envoimoinscher.Dimensions {
	dims := make([]envoimoinscher.Dimensions, len(inputs))
	for i, in := range inputs {
		dims[i] = envoimoinscher.Dimensions{
			Weight:     in.Weight,
			Length:     in.Length,
			Width:      in.Width,
			Height:     in.Height,
			PalletCode: in.PalletCode,
		}
	}
	return dims
}

func proformaInputToModel(inputs []ProformaInput) []envoimoinscher.ProformaLine {
	lines := make([]envoimoinscher.ProformaLine, len(inputs))
	for i, in := range inputs {
		lines[i] = envoimoinscher.ProformaLine{
			DescriptionEN: in.DescriptionEN,
			DescriptionFR: in.DescriptionFR,
			Origin:        in.Origin,
			Number:        in.Number,
			Value:         in.Value,
		}
	}
	return lines
}

func infoInputToModel(in InfoInput) (envoimoinscher.QuoteInfo, error) {
	info := envoimoinscher.QuoteInfo{
		Delay:         in.Delay,
		ContentCode:   in.ContentCode,
		Operator:      in.Operator,
		Service:       in.Service,
		DeclaredValue: in.DeclaredValue,
		Insurance:     in.Insurance,
		Reason:        in.Reason,
		Extra:         in.Extra,
	}
	if in.CollectionDate != "" {
		date, err := time.Parse(dateLayout, in.CollectionDate)
		if err != nil {
			return info, fmt.Errorf("invalid collection date %q: %w", in.CollectionDate, err)
		}
		info.CollectionDate = date
	}
	return info, nil
}

// buildQuotation fills a quotation from the input. The package type
// defaults to parcels.
func buildQuotation(in QuotationInput) (*envoimoinscher.Quotation, error) {
	q := envoimoinscher.NewQuotation()

	if err := q.SetPerson(envoimoinscher.RoleShipper, personInputToModel(in.Shipper)); err != nil {
		return nil, err
	}
	if err := q.SetPerson(envoimoinscher.RoleRecipient, personInputToModel(in.Recipient)); err != nil {
		return nil, err
	}

	packageType := envoimoinscher.PackageType(in.PackageType)
	if packageType == "" {
		packageType = envoimoinscher.PackageParcel
	}
	if len(in.Packages) == 0 {
		return nil, fmt.Errorf("%w: at least one package is required", envoimoinscher.ErrInvalidPackage)
	}
	if err := q.SetType(packageType, packagesInputToModel(in.Packages)); err != nil {
		return nil, err
	}

	if len(in.Proforma) > 0 {
		if err := q.SetProforma(proformaInputToModel(in.Proforma)); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func priceToGraphQL(p envoimoinscher.Price) Price {
	return Price{
		Currency:     p.Currency,
		TaxExclusive: p.TaxExclusive.StringFixed(2),
		TaxInclusive: p.TaxInclusive.StringFixed(2),
	}
}

func scheduleToGraphQL(s envoimoinscher.Schedule) Schedule {
	return Schedule(s)
}

// mandatoryToGraphQL lists mandatory fields sorted by code.
func mandatoryToGraphQL(m map[string]envoimoinscher.MandatoryInfo) []MandatoryInfo {
	out := make([]MandatoryInfo, 0, len(m))
	for _, info := range m {
		out = append(out, MandatoryInfo{
			Code:   info.Code,
			Label:  info.Label,
			Type:   info.Type,
			Values: info.Values,
			Fields: info.Fields,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func offerToGraphQL(o envoimoinscher.Offer) Offer {
	return Offer{
		Mode:            o.Mode,
		URL:             o.URL,
		Operator:        Operator(o.Operator),
		Service:         Service(o.Service),
		Price:           priceToGraphQL(o.Price),
		Collection:      scheduleToGraphQL(o.Collection),
		Delivery:        scheduleToGraphQL(o.Delivery),
		Characteristics: o.Characteristics,
		Alert:           o.Alert,
		Mandatory:       mandatoryToGraphQL(o.Mandatory),
	}
}

func orderDetailsToGraphQL(d *envoimoinscher.OrderDetails) *OrderDetails {
	if d == nil {
		return nil
	}
	return &OrderDetails{
		URL:             d.URL,
		Mode:            d.Mode,
		Operator:        Operator(d.Operator),
		Service:         Service(d.Service),
		Price:           priceToGraphQL(d.Price),
		Collection:      scheduleToGraphQL(d.Collection),
		Delivery:        scheduleToGraphQL(d.Delivery),
		Proforma:        d.Proforma,
		Alerts:          d.Alerts,
		Characteristics: d.Characteristics,
		Labels:          d.Labels,
	}
}

func orderToGraphQL(o *envoimoinscher.Order) Order {
	return Order{
		Reference: o.Reference,
		Date:      o.Date,
		Details:   orderDetailsToGraphQL(o.Details),
	}
}

// cheapestPrice returns the lowest tax inclusive price among offers.
func cheapestPrice(offers []envoimoinscher.Offer) (decimal.Decimal, bool) {
	if len(offers) == 0 {
		return decimal.Zero, false
	}
	lowest := offers[0].Price.TaxInclusive
	for _, o := range offers[1:] {
		if o.Price.TaxInclusive.LessThan(lowest) {
			lowest = o.Price.TaxInclusive
		}
	}
	return lowest, true
}
