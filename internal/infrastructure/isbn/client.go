// Package isbn validates ISBN-13 numbers against an external SOAP service.
package isbn

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Result is the outcome of a validation call. Unreachable means the
// service could not be consulted, which callers must not treat as valid.
type Result int

const (
	ResultInvalid Result = iota
	ResultValid
	ResultUnreachable
)

func (r Result) String() string {
	switch r {
	case ResultValid:
		return "valid"
	case ResultInvalid:
		return "invalid"
	default:
		return "unreachable"
	}
}

const soapAction = "http://webservices.daehosting.com/ISBN/IsValidISBN13"

const requestTemplate = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <IsValidISBN13 xmlns="http://webservices.daehosting.com/ISBN">
      <sISBN>%s</sISBN>
    </IsValidISBN13>
  </soap:Body>
</soap:Envelope>`

type soapEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Result bool `xml:"IsValidISBN13Result"`
		} `xml:"IsValidISBN13Response"`
	} `xml:"Body"`
}

// Client talks to the ISBN validation SOAP endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Validate checks isbn against the remote service. Network and protocol
// failures yield ResultUnreachable rather than an error so callers can
// apply their own fail-closed policy.
func (c *Client) Validate(ctx context.Context, isbn string) Result {
	body := fmt.Sprintf(requestTemplate, isbn)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(body))
	if err != nil {
		log.Error().Err(err).Str("isbn", isbn).Msg("Failed to build ISBN validation request")
		return ResultUnreachable
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapAction)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("isbn", isbn).Msg("ISBN validation service unreachable")
		return ResultUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("isbn", isbn).Msg("ISBN validation service returned error status")
		return ResultUnreachable
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ResultUnreachable
	}

	var envelope soapEnvelope
	if err := xml.Unmarshal(data, &envelope); err != nil {
		log.Warn().Err(err).Str("isbn", isbn).Msg("Failed to parse ISBN validation response")
		return ResultUnreachable
	}

	if envelope.Body.Response.Result {
		return ResultValid
	}
	return ResultInvalid
}
