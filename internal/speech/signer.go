package speech

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// AuthParams are the three query parameters the vendor expects on every
// signed call. A fresh set is produced per request.
type AuthParams struct {
	Authorization string `json:"authorization"`
	Date          string `json:"date"`
	Host          string `json:"host"`
}

// Query returns the params as URL query values.
func (p AuthParams) Query() url.Values {
	q := url.Values{}
	q.Set("authorization", p.Authorization)
	q.Set("date", p.Date)
	q.Set("host", p.Host)
	return q
}

// Signer produces HMAC-SHA256 authorization tokens for the speech vendor.
type Signer struct {
	APIKey    string
	APISecret string
}

// Sign builds the authorization for host and requestLine (e.g.
// "POST /v2/iat HTTP/1.1") at time now. The date is rendered in RFC-1123 GMT
// form; identical inputs within the same second yield identical output.
func (s Signer) Sign(host, requestLine string, now time.Time) AuthParams {
	date := now.UTC().Format(http.TimeFormat)
	origin := SignatureOrigin(host, date, requestLine)

	mac := hmac.New(sha256.New, []byte(s.APISecret))
	mac.Write([]byte(origin))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	authOrigin := fmt.Sprintf(`api_key="%s", algorithm="hmac-sha256", headers="host date request-line", signature="%s"`,
		s.APIKey, signature)

	return AuthParams{
		Authorization: base64.StdEncoding.EncodeToString([]byte(authOrigin)),
		Date:          date,
		Host:          host,
	}
}

// SignatureOrigin is the canonical string covered by the signature.
func SignatureOrigin(host, date, requestLine string) string {
	return "host: " + host + "\ndate: " + date + "\n" + requestLine
}
