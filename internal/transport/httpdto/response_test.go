package httpdto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuccessEnvelope(t *testing.T) {
	body, err := json.Marshal(NewSuccessResponse(map[string]string{"id": "42"}))
	require.NoError(t, err)
	require.JSONEq(t, `{"success":true,"data":{"id":"42"}}`, string(body))
}

func TestErrorEnvelope(t *testing.T) {
	body, err := json.Marshal(NewErrorResponse("no such chat", "NOT_FOUND"))
	require.NoError(t, err)
	require.JSONEq(t,
		`{"success":false,"error":{"code":"NOT_FOUND","message":"no such chat"}}`,
		string(body))
}
