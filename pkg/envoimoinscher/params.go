package envoimoinscher

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/go-querystring/query"
)

var validate = validator.New()

// Quotation accumulates the request parameters of one shipment: people,
// packages, proforma lines and the quotation or order information merged
// in by the Client. A Quotation is not safe for concurrent use.
type Quotation struct {
	params url.Values
	// info is the encoded information of the last order, kept for
	// double orders.
	info url.Values
}

// NewQuotation creates an empty quotation.
func NewQuotation() *Quotation {
	return &Quotation{params: url.Values{}}
}

// Params returns a copy of the current request parameters.
func (q *Quotation) Params() url.Values {
	return cloneValues(q.params)
}

// SetProforma adds proforma invoice lines. Lines are numbered from 1.
func (q *Quotation) SetProforma(lines []ProformaLine) error {
	encoded := url.Values{}
	for i, line := range lines {
		vals, err := query.Values(line)
		if err != nil {
			return fmt.Errorf("encoding proforma line %d: %w", i+1, err)
		}
		prefix := fmt.Sprintf("proforma_%d.", i+1)
		for k, v := range vals {
			encoded[prefix+k] = v
		}
	}
	mergeValues(q.params, encoded)
	return nil
}

// SetType sets the packages of the shipment. Packages are numbered from
// 1. Envelopes carry no height. Pallets take their length and width from
// the pallet table, so Dimensions.PalletCode must be a known code.
func (q *Quotation) SetType(t PackageType, dims []Dimensions) error {
	switch t {
	case PackageEnvelope, PackageParcel, PackageBulky, PackagePallet:
	default:
		return fmt.Errorf("%w: unknown package type %q", ErrInvalidPackage, t)
	}

	encoded := url.Values{}
	for i, d := range dims {
		if err := validate.Struct(d); err != nil {
			return fmt.Errorf("%w: package %d: %v", ErrInvalidPackage, i+1, err)
		}

		length, width := d.Length, d.Width
		if t == PackagePallet {
			p, ok := LookupPallet(d.PalletCode)
			if !ok {
				return fmt.Errorf("%w: %d", ErrUnknownPalletCode, d.PalletCode)
			}
			length, width = float64(p.Length), float64(p.Width)
		}

		prefix := fmt.Sprintf("%s_%d.", t, i+1)
		encoded.Set(prefix+"poids", formatFloat(d.Weight))
		encoded.Set(prefix+"longueur", formatFloat(length))
		encoded.Set(prefix+"largeur", formatFloat(width))
		if t != PackageEnvelope {
			encoded.Set(prefix+"hauteur", formatFloat(d.Height))
		}
	}
	mergeValues(q.params, encoded)
	return nil
}

// SetPerson sets the shipper or the recipient.
func (q *Quotation) SetPerson(role Role, p Person) error {
	if role != RoleShipper && role != RoleRecipient {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidPerson, role)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPerson, role, err)
	}

	vals, err := query.Values(p)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", role, err)
	}
	for k, v := range p.Extra {
		vals.Set(k, v)
	}

	prefix := string(role) + "."
	for k, v := range vals {
		q.params[prefix+k] = v
	}
	return nil
}

// UnsetParams removes parameters, including ones stored from a previous
// order.
func (q *Quotation) UnsetParams(keys ...string) {
	for _, k := range keys {
		q.params.Del(k)
		if q.info != nil {
			q.info.Del(k)
		}
	}
}

// merge adds encoded information to the request parameters.
func (q *Quotation) merge(info url.Values) {
	mergeValues(q.params, info)
}

// overlayInfo returns the information of the last order with info
// applied on top: new keys override old ones and the rest is kept.
func (q *Quotation) overlayInfo(info url.Values) url.Values {
	out := cloneValues(q.info)
	mergeValues(out, info)
	return out
}

// switchPeople exchanges shipper and recipient parameters.
func (q *Quotation) switchPeople() {
	swapped := make(url.Values, len(q.params))
	for k, v := range q.params {
		swapped[swapRole(k)] = v
	}
	q.params = swapped
}

func swapRole(key string) string {
	shipper := string(RoleShipper) + "."
	recipient := string(RoleRecipient) + "."
	switch {
	case strings.HasPrefix(key, shipper):
		return recipient + strings.TrimPrefix(key, shipper)
	case strings.HasPrefix(key, recipient):
		return shipper + strings.TrimPrefix(key, recipient)
	default:
		return key
	}
}

// values encodes the information as request parameters. The reason key
// is not part of it; orders translate it separately.
func (info QuoteInfo) values() (url.Values, error) {
	vals, err := query.Values(info)
	if err != nil {
		return nil, fmt.Errorf("encoding quote info: %w", err)
	}
	for k, v := range info.Extra {
		vals.Set(k, v)
	}
	return vals, nil
}

func mergeValues(dst, src url.Values) {
	for k, v := range src {
		dst[k] = append([]string(nil), v...)
	}
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	mergeValues(out, v)
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
