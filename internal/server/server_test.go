package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/config"
)

const mt900 = "{1:F01BANKBEBBAXXX0000000000}{2:I900BANKDEFFXXXXN}{4:\n" +
	":20:C11126A1378\n" +
	":21:5482ABC\n" +
	":25:9-9876543\n" +
	":32A:250102USD233530,\n" +
	"-}"

const mt101 = "{1:F01BANKBEBBAXXX0000000000}{2:I101BANKDEFFXXXXN}{4:\n" +
	":20:11FF99RR\n" +
	":28D:1/1\n" +
	":50H:/12345\nORDERING CO\n" +
	":30:250103\n" +
	":21:TX1\n" +
	":32B:EUR100,00\n" +
	":33B:USD110,00\n" +
	":59:/DE89370400440532013000\nBENEFICIARY\n" +
	":71A:SHA\n" +
	":36:0,9\n" +
	"-}"

func newTestServer() *Server {
	return New(config.ServerConfig{Addr: ":0", MaxBodyBytes: 4096, CORSOrigins: []string{"http://ops.local"}},
		zerolog.Nop(), "test")
}

func do(t *testing.T, s *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestParse(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/v1/messages/parse", "text/plain", mt900)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var view messageView
	decode(t, rec, &view)
	assert.Equal(t, "900", view.MessageType)
	assert.Equal(t, "I", view.Direction)
	assert.Equal(t, "C11126A1378", view.Reference)
	assert.Equal(t, []fieldView{
		{Tag: "20", Value: "C11126A1378"},
		{Tag: "21", Value: "5482ABC"},
		{Tag: "25", Value: "9-9876543"},
		{Tag: "32A", Value: "250102USD233530,"},
	}, view.Body)
}

func TestParseJSONRequest(t *testing.T) {
	body, err := json.Marshal(messageRequest{Message: mt900, MessageType: "103"})
	require.NoError(t, err)

	rec := do(t, newTestServer(), http.MethodPost, "/v1/messages/parse", "application/json", string(body))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var out map[string]string
	decode(t, rec, &out)
	assert.Equal(t, "WrongMessageType", out["kind"])
}

func TestParseAcceptsPrefixedMessageType(t *testing.T) {
	s := newTestServer()

	body, err := json.Marshal(messageRequest{Message: mt900, MessageType: "MT900"})
	require.NoError(t, err)
	rec := do(t, s, http.MethodPost, "/v1/messages/parse", "application/json; charset=utf-8", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/v1/messages/parse?type=mt900", "text/plain", mt900)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var view messageView
	decode(t, rec, &view)
	assert.Equal(t, "900", view.MessageType)
}

func TestParseJSONTooLarge(t *testing.T) {
	body, err := json.Marshal(messageRequest{Message: mt900 + strings.Repeat(" ", 5000)})
	require.NoError(t, err)

	rec := do(t, newTestServer(), http.MethodPost, "/v1/messages/parse", "application/json", string(body))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestParseBadRequests(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodPost, "/v1/messages/parse", "application/json", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/v1/messages/parse", "text/plain", "   ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/v1/messages/parse", "text/plain", strings.Repeat("x", 5000))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = do(t, s, http.MethodPost, "/v1/messages/parse", "text/plain", mt900[:len(mt900)-2]+":71A:SHA\n-}")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var out map[string]string
	decode(t, rec, &out)
	assert.Equal(t, "UnparsedContent", out["kind"])
}

func TestValidate(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodPost, "/v1/messages/validate", "text/plain", mt101)
	require.Equal(t, http.StatusOK, rec.Code)

	var view validationView
	decode(t, rec, &view)
	assert.False(t, view.Valid)
	assert.Equal(t, "101", view.MessageType)
	require.Len(t, view.Errors, 1)
	assert.Equal(t, "D54", view.Errors[0].Code)
	assert.Equal(t, "B", view.Errors[0].Sequence)

	rec = do(t, s, http.MethodPost, "/v1/messages/validate?disable=D54", "text/plain", mt101)
	require.Equal(t, http.StatusOK, rec.Code)
	view = validationView{}
	decode(t, rec, &view)
	assert.True(t, view.Valid)
	assert.NotNil(t, view.Errors)

	rec = do(t, s, http.MethodPost, "/v1/messages/validate?stop_on_first_error=maybe", "text/plain", mt101)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSerialize(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/v1/messages/serialize", "text/plain", mt900)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mt900, rec.Body.String())
}

func TestRules(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodGet, "/v1/rules/MT101", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		MessageType string     `json:"message_type"`
		Rules       []ruleView `json:"rules"`
	}
	decode(t, rec, &out)
	assert.Equal(t, "101", out.MessageType)
	assert.NotEmpty(t, out.Rules)

	rec = do(t, s, http.MethodGet, "/v1/rules/999", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/rules", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var types map[string][]string
	decode(t, rec, &types)
	assert.Contains(t, types["message_types"], "101")
	assert.Contains(t, types["rule_sets"], "101")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer()
	do(t, s, http.MethodGet, "/health", "", "")

	rec := do(t, s, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `swiftmt_http_requests_total{method="GET",path="/health",status="200"}`)
}

func TestCORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/messages/parse", nil)
	req.Header.Set("Origin", "http://ops.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://ops.local", rec.Header().Get("Access-Control-Allow-Origin"))
}
