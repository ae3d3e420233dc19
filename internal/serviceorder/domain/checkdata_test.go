package domain

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"github.com/transnet/rms/internal/document"
)

type fakeResolver struct {
	sites map[snowflake.ID]string
}

func (f fakeResolver) ResolveSite(_ context.Context, id snowflake.ID) (*document.SiteRef, error) {
	name, ok := f.sites[id]
	if !ok {
		return nil, nil
	}
	return &document.SiteRef{ID: id, Name: name}, nil
}

func TestBuildCheckDocumentTransmissionRoundTrip(t *testing.T) {
	resolver := fakeResolver{sites: map[snowflake.ID]string{
		101: "Hangzhou-DC1",
		102: "Nanchang-DC2",
	}}

	in := CheckInput{
		Bandwidth:     "10G",
		Quantity:      "2",
		Protection:    "true",
		InterfaceType: InterfaceTypeOptical,
		SiteA:         "101",
		SiteZ:         "102",
	}

	doc := BuildCheckDocument(context.Background(), CheckTypeTransmission, in, resolver)
	require.Equal(t, CheckTypeTransmission, doc.Type)
	require.NotNil(t, doc.Transmission)
	require.Equal(t, "Hangzhou-DC1", doc.Transmission.SiteA.Name)
	require.NotNil(t, doc.Transmission.Quantity)
	require.Equal(t, 2, *doc.Transmission.Quantity)
	require.True(t, doc.Transmission.Protection)

	raw, err := doc.Encode()
	require.NoError(t, err)

	decoded := DecodeCheckDocument(CheckTypeTransmission, raw)
	require.Equal(t, in, decoded.Input())
}

func TestBuildCheckDocumentColocationRoundTrip(t *testing.T) {
	resolver := fakeResolver{sites: map[snowflake.ID]string{201: "Chengdu-IDC"}}

	in := CheckInput{
		Site:           "201",
		FiberCoreCount: "24",
		Devices:        `[{"model":"NE8000","type":"router"}]`,
	}

	doc := BuildCheckDocument(context.Background(), CheckTypeColocation, in, resolver)
	require.NotNil(t, doc.Colocation)
	require.Len(t, doc.Colocation.Devices, 1)

	raw, err := doc.Encode()
	require.NoError(t, err)

	decoded := DecodeCheckDocument(CheckTypeColocation, raw)
	require.Equal(t, in, decoded.Input())
}

func TestBuildCheckDocumentMalformedDeviceListYieldsEmptyList(t *testing.T) {
	doc := BuildCheckDocument(context.Background(), CheckTypeColocation, CheckInput{
		Devices: `[{"model": "NE8000"`,
	}, fakeResolver{})

	require.NotNil(t, doc.Colocation)
	require.Empty(t, doc.Colocation.Devices)

	raw, err := doc.Encode()
	require.NoError(t, err)

	var stored map[string]any
	require.NoError(t, json.Unmarshal(raw, &stored))
	colocation, ok := stored["colocation"].(map[string]any)
	require.True(t, ok)
	devices, ok := colocation["devices"].([]any)
	require.True(t, ok)
	require.Empty(t, devices)
}

func TestBuildCheckDocumentInvalidNumericInputAbsent(t *testing.T) {
	doc := BuildCheckDocument(context.Background(), CheckTypeFiber, CheckInput{
		Quantity: "two",
	}, fakeResolver{})

	require.NotNil(t, doc.Fiber)
	require.Nil(t, doc.Fiber.Quantity)
	require.Equal(t, "", doc.Input().Quantity)
}

func TestBuildCheckDocumentSiteLookupMissDropsReference(t *testing.T) {
	doc := BuildCheckDocument(context.Background(), CheckTypeTransmission, CheckInput{
		SiteA: "999",
	}, fakeResolver{})

	require.NotNil(t, doc.Transmission)
	require.Nil(t, doc.Transmission.SiteA)
}

func TestBuildCheckDocumentUnknownDiscriminator(t *testing.T) {
	doc := BuildCheckDocument(context.Background(), CheckType("satellite"), CheckInput{
		Bandwidth: "GE",
	}, fakeResolver{})

	require.True(t, doc.Empty())

	raw, err := doc.Encode()
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(raw))
}

func TestDecodeCheckDocumentDiscriminatorMismatch(t *testing.T) {
	doc := BuildCheckDocument(context.Background(), CheckTypeTransmission, CheckInput{
		Bandwidth: "GE",
	}, fakeResolver{})
	raw, err := doc.Encode()
	require.NoError(t, err)

	decoded := DecodeCheckDocument(CheckTypeColocation, raw)
	require.True(t, decoded.Empty())
	require.Equal(t, CheckInput{}, decoded.Input())
}

func TestSafeCheckData(t *testing.T) {
	require.Equal(t, map[string]any{}, ServiceOrder{}.SafeCheckData())

	order := ServiceOrder{CheckData: []byte(`{"type":"fiber"}`)}
	require.Equal(t, map[string]any{"type": "fiber"}, order.SafeCheckData())

	malformed := ServiceOrder{CheckData: []byte(`{"type":`)}
	require.Equal(t, map[string]any{}, malformed.SafeCheckData())
}
