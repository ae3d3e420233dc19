package domain

import (
	"context"
	"encoding/json"

	"github.com/transnet/rms/internal/document"
	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
	"gorm.io/datatypes"
)

// FeedbackInput is the flat set of execution-feedback inputs a client
// submits. The owning order's check_type selects which fields apply.
type FeedbackInput struct {
	CardAdded   string `json:"card_added,omitempty" form:"card_added"`
	ModuleAdded string `json:"module_added,omitempty" form:"module_added"`
	AddMethod   string `json:"add_method,omitempty" form:"add_method"`
	Description string `json:"description,omitempty" form:"description"`
	Circuits    string `json:"circuits,omitempty" form:"circuits"`

	CoreCount       string `json:"core_count,omitempty" form:"core_count"`
	EndASite        string `json:"end_a_site,omitempty" form:"end_a_site"`
	EndAODF         string `json:"end_a_odf,omitempty" form:"end_a_odf"`
	EndADescription string `json:"end_a_description,omitempty" form:"end_a_description"`
	EndZSite        string `json:"end_z_site,omitempty" form:"end_z_site"`
	EndZODF         string `json:"end_z_odf,omitempty" form:"end_z_odf"`
	EndZDescription string `json:"end_z_description,omitempty" form:"end_z_description"`

	Site       string `json:"site,omitempty" form:"site"`
	Devices    string `json:"devices,omitempty" form:"devices"`
	CableCount string `json:"cable_count,omitempty" form:"cable_count"`
	ODFInfo    string `json:"odf_info,omitempty" form:"odf_info"`
}

// TransmissionFeedback records circuit provisioning feedback.
type TransmissionFeedback struct {
	CardAdded   bool             `json:"card_added,omitempty"`
	ModuleAdded bool             `json:"module_added,omitempty"`
	AddMethod   string           `json:"add_method,omitempty"`
	Description string           `json:"description,omitempty"`
	Circuits    []map[string]any `json:"circuits"`
}

// FiberEnd is one end of a fiber span.
type FiberEnd struct {
	Site        *document.SiteRef `json:"site,omitempty"`
	ODF         string            `json:"odf,omitempty"`
	Description string            `json:"description,omitempty"`
}

// FiberFeedback records fiber provisioning feedback.
type FiberFeedback struct {
	CoreCount *int      `json:"core_count,omitempty"`
	EndA      *FiberEnd `json:"end_a,omitempty"`
	EndZ      *FiberEnd `json:"end_z,omitempty"`
}

// ColocationFeedback records colocation provisioning feedback.
type ColocationFeedback struct {
	Site       *document.SiteRef `json:"site,omitempty"`
	Devices    []map[string]any  `json:"devices"`
	CableCount *int              `json:"cable_count,omitempty"`
	ODFInfo    string            `json:"odf_info,omitempty"`
}

// FeedbackDocument is the tagged feedback_data variant, keyed by the owning
// order's check_type.
type FeedbackDocument struct {
	Type         sodomain.CheckType    `json:"type,omitempty"`
	Transmission *TransmissionFeedback `json:"transmission,omitempty"`
	Fiber        *FiberFeedback        `json:"fiber,omitempty"`
	Colocation   *ColocationFeedback   `json:"colocation,omitempty"`
}

// Empty reports whether the document carries no variant.
func (d FeedbackDocument) Empty() bool {
	return d.Transmission == nil && d.Fiber == nil && d.Colocation == nil
}

// BuildFeedbackDocument assembles the feedback document for the owning
// order's category. Unrecognized or empty category yields an empty document.
func BuildFeedbackDocument(ctx context.Context, checkType sodomain.CheckType, in FeedbackInput, resolver document.SiteResolver) FeedbackDocument {
	switch checkType {
	case sodomain.CheckTypeTransmission:
		return FeedbackDocument{
			Type: checkType,
			Transmission: &TransmissionFeedback{
				CardAdded:   document.ParseBool(in.CardAdded),
				ModuleAdded: document.ParseBool(in.ModuleAdded),
				AddMethod:   in.AddMethod,
				Description: in.Description,
				Circuits:    document.DecodeList(in.Circuits),
			},
		}
	case sodomain.CheckTypeFiber:
		return FeedbackDocument{
			Type: checkType,
			Fiber: &FiberFeedback{
				CoreCount: document.ParseInt(in.CoreCount),
				EndA: fiberEnd(ctx, resolver, in.EndASite, in.EndAODF, in.EndADescription),
				EndZ: fiberEnd(ctx, resolver, in.EndZSite, in.EndZODF, in.EndZDescription),
			},
		}
	case sodomain.CheckTypeColocation:
		return FeedbackDocument{
			Type: checkType,
			Colocation: &ColocationFeedback{
				Site:       document.ResolveSiteInput(ctx, resolver, in.Site),
				Devices:    document.DecodeList(in.Devices),
				CableCount: document.ParseInt(in.CableCount),
				ODFInfo:    in.ODFInfo,
			},
		}
	default:
		return FeedbackDocument{}
	}
}

func fiberEnd(ctx context.Context, resolver document.SiteResolver, site, odf, description string) *FiberEnd {
	ref := document.ResolveSiteInput(ctx, resolver, site)
	if ref == nil && odf == "" && description == "" {
		return nil
	}
	return &FiberEnd{Site: ref, ODF: odf, Description: description}
}

// Encode serializes the document for storage, replacing any stored one.
func (d FeedbackDocument) Encode() (datatypes.JSON, error) {
	if d.Empty() {
		return datatypes.JSON([]byte(`{}`)), nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// DecodeFeedbackDocument reads a stored document back under the given
// category. A document stored under a different category yields an empty
// document.
func DecodeFeedbackDocument(checkType sodomain.CheckType, raw datatypes.JSON) FeedbackDocument {
	if len(raw) == 0 || checkType == "" {
		return FeedbackDocument{}
	}
	var doc FeedbackDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return FeedbackDocument{}
	}
	if doc.Type != checkType {
		return FeedbackDocument{}
	}
	switch checkType {
	case sodomain.CheckTypeTransmission:
		if doc.Transmission == nil {
			return FeedbackDocument{}
		}
		return FeedbackDocument{Type: checkType, Transmission: doc.Transmission}
	case sodomain.CheckTypeFiber:
		if doc.Fiber == nil {
			return FeedbackDocument{}
		}
		return FeedbackDocument{Type: checkType, Fiber: doc.Fiber}
	case sodomain.CheckTypeColocation:
		if doc.Colocation == nil {
			return FeedbackDocument{}
		}
		return FeedbackDocument{Type: checkType, Colocation: doc.Colocation}
	default:
		return FeedbackDocument{}
	}
}

// Input reverse-maps the document back to flat inputs for editing.
func (d FeedbackDocument) Input() FeedbackInput {
	switch {
	case d.Transmission != nil:
		v := d.Transmission
		return FeedbackInput{
			CardAdded:   document.FormatBool(v.CardAdded),
			ModuleAdded: document.FormatBool(v.ModuleAdded),
			AddMethod:   v.AddMethod,
			Description: v.Description,
			Circuits:    document.EncodeList(v.Circuits),
		}
	case d.Fiber != nil:
		v := d.Fiber
		in := FeedbackInput{CoreCount: document.FormatInt(v.CoreCount)}
		if v.EndA != nil {
			in.EndASite = siteInput(v.EndA.Site)
			in.EndAODF = v.EndA.ODF
			in.EndADescription = v.EndA.Description
		}
		if v.EndZ != nil {
			in.EndZSite = siteInput(v.EndZ.Site)
			in.EndZODF = v.EndZ.ODF
			in.EndZDescription = v.EndZ.Description
		}
		return in
	case d.Colocation != nil:
		v := d.Colocation
		return FeedbackInput{
			Site:       siteInput(v.Site),
			Devices:    document.EncodeList(v.Devices),
			CableCount: document.FormatInt(v.CableCount),
			ODFInfo:    v.ODFInfo,
		}
	default:
		return FeedbackInput{}
	}
}

func siteInput(ref *document.SiteRef) string {
	if ref == nil {
		return ""
	}
	return ref.ID.String()
}
