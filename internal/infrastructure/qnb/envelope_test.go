package qnb

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginEnvelope_Namespaces(t *testing.T) {
	efatura := LoginEnvelope("1234567890", "secret")
	earsiv := LoginEarsivEnvelope("portal-user", "secret")

	assert.Contains(t, efatura, `xmlns:ser="http://service.csap.cs.com.tr/"`)
	assert.Contains(t, earsiv, `xmlns:ser="http://service.earsiv.uut.cs.com.tr/"`)
	assert.Contains(t, efatura, "<userId>1234567890</userId>")
	assert.Contains(t, earsiv, "<userId>portal-user</userId>")
	assert.Contains(t, efatura, "<lang>tr</lang>")
}

func TestLoginEnvelope_Deterministic(t *testing.T) {
	first := LoginEnvelope("u", "p")
	second := LoginEnvelope("u", "p")
	assert.Equal(t, first, second)
}

func TestLoginEnvelope_EscapesCredentials(t *testing.T) {
	env := LoginEnvelope("user", `p<a>&"w`)
	assert.NotContains(t, env, "<a>")
	assert.Contains(t, env, "&lt;a&gt;&amp;")
}

func TestSendDocumentExtEnvelope(t *testing.T) {
	env := SendDocumentExtEnvelope("1234567890", "FATURA_UBL", "JET2026000000042", "QkFTRTY0", "ABCDEF0123", "ERP01")

	assert.Contains(t, env, `xmlns:ser="http://service.connector.elenx.com.tr"`)
	assert.Contains(t, env, "<ser:belgeTuru>FATURA_UBL</ser:belgeTuru>")
	assert.Contains(t, env, "<ser:belgeNo>JET2026000000042</ser:belgeNo>")
	assert.Contains(t, env, "<ser:veri>QkFTRTY0</ser:veri>")
	assert.Contains(t, env, "<ser:belgeHash>ABCDEF0123</ser:belgeHash>")
	assert.Contains(t, env, "<ser:erpKodu>ERP01</ser:erpKodu>")
}

func TestCheckStatusExtEnvelope_LocalNumberType(t *testing.T) {
	env := CheckStatusExtEnvelope("1234567890", "JET2026000000042", "FATURA_UBL")

	assert.Contains(t, env, "<ser:belgeNoTip>YEREL</ser:belgeNoTip>")
	assert.Contains(t, env, "<ser:belgeNo>JET2026000000042</ser:belgeNo>")
}

func TestCreateEarsivInvoiceEnvelope_WSSecurity(t *testing.T) {
	env := CreateEarsivInvoiceEnvelope("QkFTRTY0", "1234567890", "ERP01", "portal-user", "secret", "islem-1")

	assert.Contains(t, env, "<wsse:Username>portal-user</wsse:Username>")
	assert.Contains(t, env, "<wsse:Password>secret</wsse:Password>")
	assert.Contains(t, env, "<belgeFormati>UBL</belgeFormati>")
	assert.Contains(t, env, "<belgeIcerigi>QkFTRTY0</belgeIcerigi>")
}

func TestCreateEarsivInvoiceEnvelope_RawJSONInput(t *testing.T) {
	env := CreateEarsivInvoiceEnvelope("QkFTRTY0", "1234567890", "ERP01", "portal-user", "secret", "islem-1")

	start := strings.Index(env, "<input>")
	end := strings.Index(env, "</input>")
	require.Greater(t, start, -1)
	require.Greater(t, end, start)
	raw := env[start+len("<input>") : end]

	// The control block must survive as parseable JSON, quotes unescaped.
	assert.NotContains(t, raw, "&quot;")
	var control map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &control))
	assert.Equal(t, "islem-1", control["islemId"])
	assert.Equal(t, "1234567890", control["vkn"])
	assert.Equal(t, "DFLT", control["sube"])
	assert.Equal(t, "DFLT", control["kasa"])
	assert.Equal(t, "2", control["donenBelgeFormati"])
	assert.Equal(t, "ERP01", control["erpKodu"])
	assert.Equal(t, float64(1), control["numaraVerilsinMi"])
}

func TestEarsivStatusEnvelopes(t *testing.T) {
	byNo := EarsivStatusEnvelope("1234567890", "EAA2026000000001")
	byUUID := EarsivStatusByUUIDEnvelope("1234567890", "a1b2c3d4-0000-0000-0000-000000000000")

	assert.Contains(t, byNo, "<faturaNo>EAA2026000000001</faturaNo>")
	assert.NotContains(t, byNo, "<ettn>")
	assert.Contains(t, byUUID, "<ettn>a1b2c3d4-0000-0000-0000-000000000000</ettn>")
	assert.NotContains(t, byUUID, "<faturaNo>")
}
