package domain

import (
	"context"
	"encoding/json"

	"github.com/transnet/rms/internal/document"
	"gorm.io/datatypes"
)

// CheckInput is the flat set of category-specific inputs a client submits.
// Site fields carry primary keys; Devices carries a JSON-encoded list.
type CheckInput struct {
	Bandwidth     string `json:"bandwidth,omitempty" form:"bandwidth"`
	Quantity      string `json:"quantity,omitempty" form:"quantity"`
	Protection    string `json:"protection,omitempty" form:"protection"`
	InterfaceType string `json:"interface_type,omitempty" form:"interface_type"`
	SiteA         string `json:"site_a,omitempty" form:"site_a"`
	SiteZ         string `json:"site_z,omitempty" form:"site_z"`

	Site           string `json:"site,omitempty" form:"site"`
	FiberCoreCount string `json:"fiber_core_count,omitempty" form:"fiber_core_count"`
	Devices        string `json:"devices,omitempty" form:"devices"`
}

// TransmissionCheck holds the transmission-circuit feasibility attributes.
type TransmissionCheck struct {
	Bandwidth     string            `json:"bandwidth,omitempty"`
	Quantity      *int              `json:"quantity,omitempty"`
	Protection    bool              `json:"protection,omitempty"`
	InterfaceType string            `json:"interface_type,omitempty"`
	SiteA         *document.SiteRef `json:"site_a,omitempty"`
	SiteZ         *document.SiteRef `json:"site_z,omitempty"`
}

// FiberCheck holds the dark-fiber feasibility attributes.
type FiberCheck struct {
	Bandwidth     string            `json:"bandwidth,omitempty"`
	Quantity      *int              `json:"quantity,omitempty"`
	Protection    bool              `json:"protection,omitempty"`
	InterfaceType string            `json:"interface_type,omitempty"`
	SiteA         *document.SiteRef `json:"site_a,omitempty"`
	SiteZ         *document.SiteRef `json:"site_z,omitempty"`
}

// ColocationCheck holds the colocation feasibility attributes.
type ColocationCheck struct {
	Site           *document.SiteRef `json:"site,omitempty"`
	FiberCoreCount *int              `json:"fiber_core_count,omitempty"`
	Devices        []map[string]any  `json:"devices"`
}

// CheckDocument is the tagged check_data variant. Exactly one variant is set,
// matching Type; an empty Type means an empty document.
type CheckDocument struct {
	Type         CheckType          `json:"type,omitempty"`
	Transmission *TransmissionCheck `json:"transmission,omitempty"`
	Fiber        *FiberCheck        `json:"fiber,omitempty"`
	Colocation   *ColocationCheck   `json:"colocation,omitempty"`
}

// Empty reports whether the document carries no variant.
func (d CheckDocument) Empty() bool {
	return d.Transmission == nil && d.Fiber == nil && d.Colocation == nil
}

// BuildCheckDocument assembles the document for the given category from flat
// inputs. Unrecognized or empty category yields an empty document. Site
// references that fail to resolve are dropped silently; malformed list input
// degrades to an empty list.
func BuildCheckDocument(ctx context.Context, checkType CheckType, in CheckInput, resolver document.SiteResolver) CheckDocument {
	switch checkType {
	case CheckTypeTransmission:
		return CheckDocument{
			Type: checkType,
			Transmission: &TransmissionCheck{
				Bandwidth:     in.Bandwidth,
				Quantity:      document.ParseInt(in.Quantity),
				Protection:    document.ParseBool(in.Protection),
				InterfaceType: in.InterfaceType,
				SiteA:         document.ResolveSiteInput(ctx, resolver, in.SiteA),
				SiteZ:         document.ResolveSiteInput(ctx, resolver, in.SiteZ),
			},
		}
	case CheckTypeFiber:
		return CheckDocument{
			Type: checkType,
			Fiber: &FiberCheck{
				Bandwidth:     in.Bandwidth,
				Quantity:      document.ParseInt(in.Quantity),
				Protection:    document.ParseBool(in.Protection),
				InterfaceType: in.InterfaceType,
				SiteA:         document.ResolveSiteInput(ctx, resolver, in.SiteA),
				SiteZ:         document.ResolveSiteInput(ctx, resolver, in.SiteZ),
			},
		}
	case CheckTypeColocation:
		return CheckDocument{
			Type: checkType,
			Colocation: &ColocationCheck{
				Site:           document.ResolveSiteInput(ctx, resolver, in.Site),
				FiberCoreCount: document.ParseInt(in.FiberCoreCount),
				Devices:        document.DecodeList(in.Devices),
			},
		}
	default:
		return CheckDocument{}
	}
}

// Encode serializes the document for storage. The built document replaces any
// stored one wholesale.
func (d CheckDocument) Encode() (datatypes.JSON, error) {
	if d.Empty() {
		return datatypes.JSON([]byte(`{}`)), nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// DecodeCheckDocument reads a stored document back under the given category.
// A document stored under a different category yields an empty document.
func DecodeCheckDocument(checkType CheckType, raw datatypes.JSON) CheckDocument {
	if len(raw) == 0 || checkType == "" {
		return CheckDocument{}
	}
	var doc CheckDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return CheckDocument{}
	}
	if doc.Type != checkType {
		return CheckDocument{}
	}
	switch checkType {
	case CheckTypeTransmission:
		if doc.Transmission == nil {
			return CheckDocument{}
		}
		return CheckDocument{Type: checkType, Transmission: doc.Transmission}
	case CheckTypeFiber:
		if doc.Fiber == nil {
			return CheckDocument{}
		}
		return CheckDocument{Type: checkType, Fiber: doc.Fiber}
	case CheckTypeColocation:
		if doc.Colocation == nil {
			return CheckDocument{}
		}
		return CheckDocument{Type: checkType, Colocation: doc.Colocation}
	default:
		return CheckDocument{}
	}
}

// Input reverse-maps the document back to flat inputs for editing. Site
// references populate by stored id only; lists re-encode to JSON strings.
func (d CheckDocument) Input() CheckInput {
	switch {
	case d.Transmission != nil:
		v := d.Transmission
		return CheckInput{
			Bandwidth:     v.Bandwidth,
			Quantity:      document.FormatInt(v.Quantity),
			Protection:    document.FormatBool(v.Protection),
			InterfaceType: v.InterfaceType,
			SiteA:         siteInput(v.SiteA),
			SiteZ:         siteInput(v.SiteZ),
		}
	case d.Fiber != nil:
		v := d.Fiber
		return CheckInput{
			Bandwidth:     v.Bandwidth,
			Quantity:      document.FormatInt(v.Quantity),
			Protection:    document.FormatBool(v.Protection),
			InterfaceType: v.InterfaceType,
			SiteA:         siteInput(v.SiteA),
			SiteZ:         siteInput(v.SiteZ),
		}
	case d.Colocation != nil:
		v := d.Colocation
		return CheckInput{
			Site:           siteInput(v.Site),
			FiberCoreCount: document.FormatInt(v.FiberCoreCount),
			Devices:        document.EncodeList(v.Devices),
		}
	default:
		return CheckInput{}
	}
}

func siteInput(ref *document.SiteRef) string {
	if ref == nil {
		return ""
	}
	return ref.ID.String()
}
