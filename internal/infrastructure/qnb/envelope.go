package qnb

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"
	"text/template"
)

// One constructor per remote operation. Every envelope is rendered from a
// fixed template so that identical inputs always produce identical bytes:
// these strings are a wire contract, not a formatting convenience.
//
// All scalar values pass through the esc function. The single deliberate
// exception is the JSON control block of faturaOlusturExt, which the target
// schema consumes as raw element text (see earsivControlBlock).
//
// The WS-Security block carries the credentials in clear. That is how the
// e-Archive endpoint authenticates; there is no transport-independent
// encryption in this contract.

var envelopeFuncs = template.FuncMap{"esc": escapeXML}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func mustTemplate(name, body string) *template.Template {
	return template.Must(template.New(name).Funcs(envelopeFuncs).Parse(body))
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	// Templates only reference fields that exist; Execute cannot fail here.
	_ = t.Execute(&buf, data)
	return strings.TrimSpace(buf.String())
}

// ── wsLogin ───────────────────────────────────────────────────────────────────

var loginTpl = mustTemplate("wsLogin", `
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ser="http://service.csap.cs.com.tr/">
   <soapenv:Header/>
   <soapenv:Body>
      <ser:wsLogin>
         <userId>{{esc .Username}}</userId>
         <password>{{esc .Password}}</password>
         <lang>tr</lang>
      </ser:wsLogin>
   </soapenv:Body>
</soapenv:Envelope>`)

var loginEarsivTpl = mustTemplate("wsLoginEarsiv", `
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ser="http://service.earsiv.uut.cs.com.tr/">
   <soapenv:Header/>
   <soapenv:Body>
      <ser:wsLogin>
         <userId>{{esc .Username}}</userId>
         <password>{{esc .Password}}</password>
         <lang>tr</lang>
      </ser:wsLogin>
   </soapenv:Body>
</soapenv:Envelope>`)

type loginData struct{ Username, Password string }

// LoginEnvelope composes the plain login call of the e-Invoice connector.
func LoginEnvelope(username, password string) string {
	return render(loginTpl, loginData{username, password})
}

// LoginEarsivEnvelope composes the plain login call of the e-Archive service,
// which lives in its own namespace.
func LoginEarsivEnvelope(username, password string) string {
	return render(loginEarsivTpl, loginData{username, password})
}

// ── belgeGonderExt (e-Invoice send) ───────────────────────────────────────────

var sendDocumentTpl = mustTemplate("belgeGonderExt", `
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ser="http://service.connector.elenx.com.tr">
   <soapenv:Header/>
   <soapenv:Body>
      <ser:belgeGonderExt>
         <ser:vergiTcKimlikNo>{{esc .VKN}}</ser:vergiTcKimlikNo>
         <ser:belgeTuru>{{esc .DocType}}</ser:belgeTuru>
         <ser:belgeNo>{{esc .DocNo}}</ser:belgeNo>
         <ser:veri>{{esc .Data}}</ser:veri>
         <ser:belgeHash>{{esc .Hash}}</ser:belgeHash>
         <ser:mimeType>application/xml</ser:mimeType>
         <ser:belgeVersiyon>1.0</ser:belgeVersiyon>
         <ser:erpKodu>{{esc .ErpCode}}</ser:erpKodu>
      </ser:belgeGonderExt>
   </soapenv:Body>
</soapenv:Envelope>`)

type sendDocumentData struct {
	VKN, DocType, DocNo, Data, Hash, ErpCode string
}

// SendDocumentExtEnvelope composes the extended send call: base64 document
// body plus its uppercase MD5 hash and the ERP code.
func SendDocumentExtEnvelope(vkn, docType, docNo, b64Data, docHash, erpCode string) string {
	return render(sendDocumentTpl, sendDocumentData{vkn, docType, docNo, b64Data, docHash, erpCode})
}

// ── gidenBelgeDurumSorgulaExt (e-Invoice status) ──────────────────────────────

var checkStatusTpl = mustTemplate("gidenBelgeDurumSorgulaExt", `
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ser="http://service.connector.elenx.com.tr">
   <soapenv:Header/>
   <soapenv:Body>
      <ser:gidenBelgeDurumSorgulaExt>
         <ser:vergiTcKimlikNo>{{esc .VKN}}</ser:vergiTcKimlikNo>
         <ser:belgeNo>{{esc .DocNo}}</ser:belgeNo>
         <ser:belgeNoTip>YEREL</ser:belgeNoTip>
         <ser:belgeTuru>{{esc .DocType}}</ser:belgeTuru>
      </ser:gidenBelgeDurumSorgulaExt>
   </soapenv:Body>
</soapenv:Envelope>`)

type checkStatusData struct{ VKN, DocNo, DocType string }

// CheckStatusExtEnvelope composes the outbound-document status query.
// belgeNoTip is fixed to YEREL: we always query by our local number.
func CheckStatusExtEnvelope(vkn, docNo, docType string) string {
	return render(checkStatusTpl, checkStatusData{vkn, docNo, docType})
}

// ── faturaOlusturExt (e-Archive create) ───────────────────────────────────────

var createEarsivTpl = mustTemplate("faturaOlusturExt", `
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ser="http://service.earsiv.uut.cs.com.tr/" xmlns:wsse="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd">
   <soapenv:Header>
      <wsse:Security>
         <wsse:UsernameToken>
            <wsse:Username>{{esc .Username}}</wsse:Username>
            <wsse:Password>{{esc .Password}}</wsse:Password>
         </wsse:UsernameToken>
      </wsse:Security>
   </soapenv:Header>
   <soapenv:Body>
      <ser:faturaOlusturExt>
         <input>{{.InputJSON}}</input>
         <fatura>
            <belgeFormati>UBL</belgeFormati>
            <belgeIcerigi>{{esc .Data}}</belgeIcerigi>
         </fatura>
      </ser:faturaOlusturExt>
   </soapenv:Body>
</soapenv:Envelope>`)

type createEarsivData struct {
	Username, Password, InputJSON, Data string
}

// earsivControl is the JSON control block faturaOlusturExt expects as raw
// element text. numaraVerilsinMi=1 asks the service to assign the number.
type earsivControl struct {
	IslemID           string `json:"islemId"`
	VKN               string `json:"vkn"`
	Sube              string `json:"sube"`
	Kasa              string `json:"kasa"`
	DonenBelgeFormati string `json:"donenBelgeFormati"`
	ErpKodu           string `json:"erpKodu"`
	NumaraVerilsinMi  int    `json:"numaraVerilsinMi"`
}

// earsivControlBlock renders the raw JSON control block. Deliberately NOT
// XML-escaped: the target schema reads the element content as JSON text and
// chokes on entity-escaped quotes. Keep this the only unescaped insertion.
func earsivControlBlock(vkn, erpCode, islemID string) string {
	raw, _ := json.Marshal(earsivControl{
		IslemID:           islemID,
		VKN:               vkn,
		Sube:              "DFLT",
		Kasa:              "DFLT",
		DonenBelgeFormati: "2", // PDF
		ErpKodu:           erpCode,
		NumaraVerilsinMi:  1,
	})
	return string(raw)
}

// CreateEarsivInvoiceEnvelope composes the e-Archive creation call. It
// authenticates inline through the WS-Security header, so no prior login is
// needed for this operation.
func CreateEarsivInvoiceEnvelope(b64Data, vkn, erpCode, username, password, islemID string) string {
	return render(createEarsivTpl, createEarsivData{
		Username:  username,
		Password:  password,
		InputJSON: earsivControlBlock(vkn, erpCode, islemID),
		Data:      b64Data,
	})
}

// ── faturaSorgula (e-Archive status) ──────────────────────────────────────────

var earsivStatusTpl = mustTemplate("faturaSorgula", `
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ser="http://service.earsiv.uut.cs.com.tr/">
   <soapenv:Header/>
   <soapenv:Body>
      <ser:faturaSorgula>
         <vknTckn>{{esc .VKN}}</vknTckn>
         <faturaNo>{{esc .DocNo}}</faturaNo>
      </ser:faturaSorgula>
   </soapenv:Body>
</soapenv:Envelope>`)

var earsivStatusByUUIDTpl = mustTemplate("faturaSorgulaETTN", `
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ser="http://service.earsiv.uut.cs.com.tr/">
   <soapenv:Header/>
   <soapenv:Body>
      <ser:faturaSorgula>
         <vknTckn>{{esc .VKN}}</vknTckn>
         <ettn>{{esc .ETTN}}</ettn>
      </ser:faturaSorgula>
   </soapenv:Body>
</soapenv:Envelope>`)

// EarsivStatusEnvelope queries an e-Archive invoice by its number.
func EarsivStatusEnvelope(vkn, docNo string) string {
	return render(earsivStatusTpl, struct{ VKN, DocNo string }{vkn, docNo})
}

// EarsivStatusByUUIDEnvelope queries an e-Archive invoice by its ETTN, the
// only stable handle while the number is still provisional.
func EarsivStatusByUUIDEnvelope(vkn, ettn string) string {
	return render(earsivStatusByUUIDTpl, struct{ VKN, ETTN string }{vkn, ettn})
}
