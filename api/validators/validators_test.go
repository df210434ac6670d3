package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/refabry-storefront/pkg/errors"
)

type addItemBody struct {
	ID       int64 `json:"id" validate:"required,gte=1"`
	Quantity int   `json:"quantity"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":7,"quantity":2}`))
	var body addItemBody
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, int64(7), body.ID)
	assert.Equal(t, 2, body.Quantity)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":7,"colour":"red"}`))
	var body addItemBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":1}`))
	var body addItemBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["id"])
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5", nil)
	got, err := ParseQueryInt(req, "limit", 0, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	req = httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)
	_, err = ParseQueryInt(req, "limit", 0, 0, 100)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	req = httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	_, err = ParseQueryInt(req, "limit", 0, 0, 100)
	assert.Error(t, err)
}

func TestParseQueryBool(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?refresh=true", nil)
	got, err := ParseQueryBool(req, "refresh")
	require.NoError(t, err)
	assert.True(t, got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	got, err = ParseQueryBool(req, "refresh")
	require.NoError(t, err)
	assert.False(t, got)

	req = httptest.NewRequest(http.MethodGet, "/?refresh=maybe", nil)
	_, err = ParseQueryBool(req, "refresh")
	assert.Error(t, err)
}

func TestParsePathInt(t *testing.T) {
	got, err := ParsePathInt("42", "id")
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	for _, raw := range []string{"", "0", "-3", "x1"} {
		_, err := ParsePathInt(raw, "id")
		assert.Error(t, err, raw)
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	assert.Equal(t, "abc", SanitizeString(" abc ", 0))
}
