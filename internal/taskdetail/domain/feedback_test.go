package domain

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"github.com/transnet/rms/internal/document"
	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
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

func TestBuildFeedbackDocumentTransmissionRoundTrip(t *testing.T) {
	in := FeedbackInput{
		CardAdded:   "yes",
		ModuleAdded: "",
		AddMethod:   AddMethodNew,
		Description: "two new waves lit",
		Circuits:    `[{"circuit_id":"C-1001","wavelength":"1550.12"}]`,
	}

	doc := BuildFeedbackDocument(context.Background(), sodomain.CheckTypeTransmission, in, fakeResolver{})
	require.Equal(t, sodomain.CheckTypeTransmission, doc.Type)
	require.NotNil(t, doc.Transmission)
	require.True(t, doc.Transmission.CardAdded)
	require.False(t, doc.Transmission.ModuleAdded)
	require.Len(t, doc.Transmission.Circuits, 1)

	raw, err := doc.Encode()
	require.NoError(t, err)

	decoded := DecodeFeedbackDocument(sodomain.CheckTypeTransmission, raw)
	got := decoded.Input()
	require.Equal(t, "true", got.CardAdded)
	require.Equal(t, "", got.ModuleAdded)
	require.Equal(t, in.AddMethod, got.AddMethod)
	require.Equal(t, in.Description, got.Description)
	require.JSONEq(t, in.Circuits, got.Circuits)
}

func TestBuildFeedbackDocumentFiberRoundTrip(t *testing.T) {
	resolver := fakeResolver{sites: map[snowflake.ID]string{
		301: "Nanchang-POP1",
		302: "Jiujiang-POP2",
	}}

	in := FeedbackInput{
		CoreCount:       "4",
		EndASite:        "301",
		EndAODF:         "ODF-A-03",
		EndADescription: "rack 12",
		EndZSite:        "302",
		EndZODF:         "ODF-Z-07",
	}

	doc := BuildFeedbackDocument(context.Background(), sodomain.CheckTypeFiber, in, resolver)
	require.NotNil(t, doc.Fiber)
	require.NotNil(t, doc.Fiber.CoreCount)
	require.Equal(t, 4, *doc.Fiber.CoreCount)
	require.NotNil(t, doc.Fiber.EndA)
	require.Equal(t, "Nanchang-POP1", doc.Fiber.EndA.Site.Name)
	require.NotNil(t, doc.Fiber.EndZ)

	raw, err := doc.Encode()
	require.NoError(t, err)

	decoded := DecodeFeedbackDocument(sodomain.CheckTypeFiber, raw)
	require.Equal(t, in, decoded.Input())
}

func TestBuildFeedbackDocumentFiberEmptyEndsDropped(t *testing.T) {
	in := FeedbackInput{CoreCount: "2"}

	doc := BuildFeedbackDocument(context.Background(), sodomain.CheckTypeFiber, in, fakeResolver{})
	require.NotNil(t, doc.Fiber)
	require.Nil(t, doc.Fiber.EndA)
	require.Nil(t, doc.Fiber.EndZ)
}

func TestBuildFeedbackDocumentColocationMalformedDevices(t *testing.T) {
	in := FeedbackInput{
		Site:       "999",
		Devices:    `{"not":"a list"`,
		CableCount: "3",
		ODFInfo:    "ODF row B",
	}

	doc := BuildFeedbackDocument(context.Background(), sodomain.CheckTypeColocation, in, fakeResolver{})
	require.NotNil(t, doc.Colocation)
	require.Nil(t, doc.Colocation.Site)
	require.Empty(t, doc.Colocation.Devices)

	raw, err := doc.Encode()
	require.NoError(t, err)

	var stored map[string]any
	require.NoError(t, json.Unmarshal(raw, &stored))
	colocation, ok := stored["colocation"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, []any{}, colocation["devices"])
}

func TestDecodeFeedbackDocumentTypeMismatch(t *testing.T) {
	doc := BuildFeedbackDocument(context.Background(), sodomain.CheckTypeTransmission, FeedbackInput{
		Description: "done",
	}, fakeResolver{})

	raw, err := doc.Encode()
	require.NoError(t, err)

	decoded := DecodeFeedbackDocument(sodomain.CheckTypeFiber, raw)
	require.True(t, decoded.Empty())
	require.Equal(t, FeedbackInput{}, decoded.Input())
}

func TestBuildFeedbackDocumentNoCategory(t *testing.T) {
	doc := BuildFeedbackDocument(context.Background(), "", FeedbackInput{Description: "ignored"}, fakeResolver{})
	require.True(t, doc.Empty())

	raw, err := doc.Encode()
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(raw))
}
