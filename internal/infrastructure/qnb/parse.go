package qnb

import (
	"encoding/json"
	"strings"

	"github.com/beevik/etree"
)

// SOAP responses come back with unpredictable namespace prefixes depending on
// the gateway revision, so all lookups here go by local element name.

func parseXML(body []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, err
	}
	return doc, nil
}

// findLocal walks the tree and returns the first element whose local tag
// matches, depth first.
func findLocal(el *etree.Element, local string) *etree.Element {
	if el == nil {
		return nil
	}
	if el.Tag == local {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findLocal(child, local); found != nil {
			return found
		}
	}
	return nil
}

func textOf(root *etree.Element, local string) string {
	if el := findLocal(root, local); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

func firstTextOf(root *etree.Element, locals ...string) string {
	for _, local := range locals {
		if v := textOf(root, local); v != "" {
			return v
		}
	}
	return ""
}

// extractFault returns the SOAP fault reason if the body carries one. The
// connector puts the useful text in faultstring, the e-archive service
// sometimes in a detail/message element.
func extractFault(body []byte) (string, bool) {
	doc, err := parseXML(body)
	if err != nil {
		return "", false
	}
	fault := findLocal(doc.Root(), "Fault")
	if fault == nil {
		return "", false
	}
	reason := firstTextOf(fault, "faultstring", "message", "Text")
	if reason == "" {
		reason = "SOAP fault"
	}
	return reason, true
}

// parseReturnValue extracts the bare <return> text of a response, used by
// the login operations.
func parseReturnValue(body []byte) (string, error) {
	doc, err := parseXML(body)
	if err != nil {
		return "", err
	}
	return textOf(doc.Root(), "return"), nil
}

// parseSendResponse reads a belgeGonderExt response. A successful submission
// returns the gateway document OID in belgeOid.
func parseSendResponse(body []byte) (string, error) {
	doc, err := parseXML(body)
	if err != nil {
		return "", err
	}
	return firstTextOf(doc.Root(), "belgeOid", "return"), nil
}

// earsivReturn is the JSON payload the e-archive service wraps inside the
// SOAP <return> element.
type earsivReturn struct {
	ResultCode  string          `json:"resultCode"`
	ResultText  string          `json:"resultText"`
	FaturaNo    string          `json:"faturaNo"`
	FaturaUUID  string          `json:"faturaUuid"`
	ETTN        string          `json:"ettn"`
	URL         string          `json:"url"`
	FaturaURL   string          `json:"faturaUrl"`
	ResultExtra json.RawMessage `json:"resultExtra"`
}

// earsivResultExtra is the payload nested inside resultExtra. Depending on
// gateway revision it arrives either as a JSON object or as a JSON-encoded
// string holding that object.
type earsivResultExtra struct {
	FaturaOid string `json:"faturaOid"`
	FaturaNo  string `json:"faturaNo"`
}

func (r earsivReturn) extra() earsivResultExtra {
	var extra earsivResultExtra
	raw := []byte(r.ResultExtra)
	if len(raw) == 0 {
		return extra
	}
	var inner string
	if json.Unmarshal(raw, &inner) == nil {
		raw = []byte(inner)
	}
	_ = json.Unmarshal(raw, &extra)
	return extra
}

// earsivOutcome is the normalized result of an e-archive create call,
// whichever wire shape it arrived in.
type earsivOutcome struct {
	ResultCode string
	ResultText string
	Number     string
	ETTN       string
	PdfURL     string
}

// parseEarsivCreateResponse reads a faturaOlusturExt response. Older gateway
// revisions answer with plain XML children, newer ones with a JSON blob in
// <return>; both shapes are handled. An inline belgeIcerigi PDF becomes a
// data URL.
func parseEarsivCreateResponse(body []byte) (earsivOutcome, error) {
	var out earsivOutcome
	doc, err := parseXML(body)
	if err != nil {
		return out, err
	}
	root := doc.Root()

	out.ResultCode = textOf(root, "resultCode")
	out.ResultText = textOf(root, "resultText")
	out.Number = textOf(root, "faturaNo")
	out.ETTN = firstTextOf(root, "ettn", "faturaUuid")
	out.PdfURL = firstTextOf(root, "url", "faturaUrl")
	if out.PdfURL == "" {
		if content := textOf(root, "belgeIcerigi"); content != "" {
			out.PdfURL = "data:application/pdf;base64," + content
		}
	}

	if ret := textOf(root, "return"); ret != "" && strings.HasPrefix(ret, "{") {
		var payload earsivReturn
		if jsonErr := json.Unmarshal([]byte(ret), &payload); jsonErr == nil {
			extra := payload.extra()
			mergeIfEmpty(&out.ResultCode, payload.ResultCode)
			mergeIfEmpty(&out.ResultText, payload.ResultText)
			mergeIfEmpty(&out.Number, payload.FaturaNo)
			mergeIfEmpty(&out.Number, extra.FaturaNo)
			mergeIfEmpty(&out.ETTN, payload.ETTN)
			mergeIfEmpty(&out.ETTN, payload.FaturaUUID)
			mergeIfEmpty(&out.ETTN, extra.FaturaOid)
			mergeIfEmpty(&out.PdfURL, payload.URL)
			mergeIfEmpty(&out.PdfURL, payload.FaturaURL)
		}
	}
	return out, nil
}

func mergeIfEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

// parseStatusResponse reads a status query response from either service.
// The status text lands in durum on the connector and in durumAciklamasi or
// resultText on the e-archive side.
func parseStatusResponse(body []byte, documentNumber string) (StatusResult, error) {
	doc, err := parseXML(body)
	if err != nil {
		return StatusResult{}, err
	}
	root := doc.Root()

	res := StatusResult{
		DocumentNumber: documentNumber,
		Status:         firstTextOf(root, "durum", "durumAciklamasi", "resultText"),
		ETTN:           firstTextOf(root, "ettn", "faturaUuid"),
		PdfURL:         firstTextOf(root, "url", "faturaUrl", "pdfUrl"),
		Raw:            string(body),
	}
	if n := textOf(root, "faturaNo"); n != "" {
		res.DocumentNumber = n
	}
	return res, nil
}
