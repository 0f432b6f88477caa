package dto

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anu-devcode/deploy-test-sub001/internal/apperr"
)

func decodeString(body string, dst any) error {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return Decode(r, dst)
}

func TestDecodeClassifiesFailures(t *testing.T) {
	var req CreateReviewRequest

	err := decodeString("", &req)
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))

	err = decodeString(`{"product_id": 1}`, &req)
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))

	err = decodeString(`{"product_id":"p","rating":3,"extra":true}`, &req)
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))

	err = decodeString(`{"product_id":"p","rating":6}`, &req)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Contains(t, apperr.As(err).Message, "rating must be at most 5")

	require.NoError(t, decodeString(`{"product_id":"p","rating":4,"comment":"good"}`, &req))
	assert.Equal(t, 4, req.Rating)
}

func TestValidateNestedOrderRequest(t *testing.T) {
	var req CreateOrderRequest
	err := decodeString(`{"items":[{"product_id":"p","quantity":0}],"shipping_address":{"recipient":"a","phone":"1","line1":"x","city":"c","country":"ETH"}}`, &req)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
	msg := apperr.As(err).Message
	assert.Contains(t, msg, "items[0].quantity must be at least 1")
	assert.Contains(t, msg, "shipping_address.country failed len")

	err = decodeString(`{"items":[],"shipping_address":{"recipient":"a","phone":"1","line1":"x","city":"c","country":"ET"}}`, &req)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
