// SimpleDB 2009-04-15 wire response rendering.

package server

import (
	"encoding/xml"
	"log/slog"
	"net/http"

	"github.com/camvine/fakesdb/internal/models"
	"github.com/google/uuid"
)

// xmlns is the namespace stamped on every success response.
const xmlns = "http://sdb.amazonaws.com/doc/2009-04-15/"

// boxUsage is a fixed placeholder; the emulator does not meter usage.
const boxUsage = "0.0000219907"

type responseMetadata struct {
	RequestID string `xml:"RequestId"`
	BoxUsage  string `xml:"BoxUsage"`
}

// actionResponse is the shared shape of responses that carry only
// metadata (CreateDomain, DeleteDomain, PutAttributes, ...). XMLName is
// set per action.
type actionResponse struct {
	XMLName  xml.Name
	Xmlns    string           `xml:"xmlns,attr"`
	Metadata responseMetadata `xml:"ResponseMetadata"`
}

type listDomainsResponse struct {
	XMLName  xml.Name          `xml:"ListDomainsResponse"`
	Xmlns    string            `xml:"xmlns,attr"`
	Result   listDomainsResult `xml:"ListDomainsResult"`
	Metadata responseMetadata  `xml:"ResponseMetadata"`
}

type listDomainsResult struct {
	DomainNames []string `xml:"DomainName"`
}

type getAttributesResponse struct {
	XMLName  xml.Name            `xml:"GetAttributesResponse"`
	Xmlns    string              `xml:"xmlns,attr"`
	Result   getAttributesResult `xml:"GetAttributesResult"`
	Metadata responseMetadata    `xml:"ResponseMetadata"`
}

type getAttributesResult struct {
	Attributes []wireAttribute `xml:"Attribute"`
}

type selectResponse struct {
	XMLName  xml.Name         `xml:"SelectResponse"`
	Xmlns    string           `xml:"xmlns,attr"`
	Result   selectResult     `xml:"SelectResult"`
	Metadata responseMetadata `xml:"ResponseMetadata"`
}

type selectResult struct {
	Items []wireItem `xml:"Item"`
}

type wireItem struct {
	Name       string          `xml:"Name"`
	Attributes []wireAttribute `xml:"Attribute"`
}

type wireAttribute struct {
	Name  string `xml:"Name"`
	Value string `xml:"Value"`
}

// errorResponse is the fault envelope. Note the real service spells the
// outer request id "RequestID" here but "RequestId" on success.
type errorResponse struct {
	XMLName   xml.Name  `xml:"Response"`
	Errors    errorList `xml:"Errors"`
	RequestID string    `xml:"RequestID"`
}

type errorList struct {
	Errors []wireError `xml:"Error"`
}

type wireError struct {
	Code     string `xml:"Code"`
	Message  string `xml:"Message"`
	BoxUsage string `xml:"BoxUsage"`
}

func newMetadata() responseMetadata {
	return responseMetadata{RequestID: uuid.NewString(), BoxUsage: boxUsage}
}

func writeXML(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}

// writeActionResponse writes a metadata-only success response with the
// given root element, e.g. "CreateDomainResponse".
func writeActionResponse(w http.ResponseWriter, element string) {
	writeXML(w, http.StatusOK, actionResponse{
		XMLName:  xml.Name{Local: element},
		Xmlns:    xmlns,
		Metadata: newMetadata(),
	})
}

// faultStatus maps fault codes to HTTP status codes the way the real
// service does.
func faultStatus(code models.FaultCode) int {
	switch code {
	case models.FaultNumberDomainsExceeded:
		return http.StatusConflict
	case models.FaultInvalidParameterValue, models.FaultMissingParameter:
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

// writeError renders err as a wire fault. Non-fault errors become an
// InternalError response; the request must not take the process down.
func writeError(w http.ResponseWriter, err error) {
	code, message, status := "InternalError", "An internal error occurred.", http.StatusInternalServerError
	if f := models.AsFault(err); f != nil {
		code, message, status = string(f.Code), f.Message, faultStatus(f.Code)
	} else {
		slog.Error("Internal error", "err", err)
	}
	writeXML(w, status, errorResponse{
		Errors:    errorList{Errors: []wireError{{Code: code, Message: message, BoxUsage: boxUsage}}},
		RequestID: uuid.NewString(),
	})
}

// writeThrottled renders the rate-limit rejection.
func writeThrottled(w http.ResponseWriter) {
	writeXML(w, http.StatusServiceUnavailable, errorResponse{
		Errors:    errorList{Errors: []wireError{{Code: "ServiceUnavailable", Message: "Service is currently unavailable. Please try again later.", BoxUsage: boxUsage}}},
		RequestID: uuid.NewString(),
	})
}
