package speech

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

func TestSigner_DateFormat(t *testing.T) {
	s := Signer{APIKey: "key", APISecret: "secret"}
	p := s.Sign("tts-api.xfyun.cn", "GET /v2/tts HTTP/1.1", fixedNow)

	if p.Date != "Tue, 02 Jan 2024 03:04:05 GMT" {
		t.Fatalf("unexpected date %q", p.Date)
	}
	if p.Host != "tts-api.xfyun.cn" {
		t.Fatalf("unexpected host %q", p.Host)
	}
}

func TestSigner_NonUTCClockRendersGMT(t *testing.T) {
	s := Signer{APIKey: "key", APISecret: "secret"}
	shanghai := time.FixedZone("CST", 8*3600)
	a := s.Sign("h", "GET / HTTP/1.1", fixedNow)
	b := s.Sign("h", "GET / HTTP/1.1", fixedNow.In(shanghai))
	if a != b {
		t.Fatalf("same instant in different zones produced different params: %+v vs %+v", a, b)
	}
}

func TestSigner_Deterministic(t *testing.T) {
	s := Signer{APIKey: "key", APISecret: "secret"}
	a := s.Sign("iat-api.xfyun.cn", "POST /v2/iat HTTP/1.1", fixedNow)
	b := s.Sign("iat-api.xfyun.cn", "POST /v2/iat HTTP/1.1", fixedNow.Add(400*time.Millisecond))
	if a != b {
		t.Fatalf("expected identical params within the same second")
	}
}

func TestSigner_AuthorizationLayout(t *testing.T) {
	s := Signer{APIKey: "my-key", APISecret: "my-secret"}
	p := s.Sign("iat-api.xfyun.cn", "POST /v2/iat HTTP/1.1", fixedNow)

	raw, err := base64.StdEncoding.DecodeString(p.Authorization)
	if err != nil {
		t.Fatalf("authorization is not base64: %v", err)
	}

	mac := hmac.New(sha256.New, []byte("my-secret"))
	mac.Write([]byte("host: iat-api.xfyun.cn\ndate: " + p.Date + "\nPOST /v2/iat HTTP/1.1"))
	wantSig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	want := `api_key="my-key", algorithm="hmac-sha256", headers="host date request-line", signature="` + wantSig + `"`
	if string(raw) != want {
		t.Fatalf("authorization mismatch\n got: %s\nwant: %s", raw, want)
	}
}

func TestSigner_EveryInputChangesSignature(t *testing.T) {
	base := Signer{APIKey: "key", APISecret: "secret"}
	ref := base.Sign("host.example", "POST /v2/iat HTTP/1.1", fixedNow).Authorization

	cases := []struct {
		name string
		got  string
	}{
		{"host", base.Sign("other.example", "POST /v2/iat HTTP/1.1", fixedNow).Authorization},
		{"request line", base.Sign("host.example", "GET /v2/iat HTTP/1.1", fixedNow).Authorization},
		{"date", base.Sign("host.example", "POST /v2/iat HTTP/1.1", fixedNow.Add(time.Second)).Authorization},
		{"secret", Signer{APIKey: "key", APISecret: "secret2"}.Sign("host.example", "POST /v2/iat HTTP/1.1", fixedNow).Authorization},
		{"key id", Signer{APIKey: "key2", APISecret: "secret"}.Sign("host.example", "POST /v2/iat HTTP/1.1", fixedNow).Authorization},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got == ref {
				t.Fatalf("changing %s did not change the authorization", tc.name)
			}
		})
	}
}

func TestAuthParams_Query(t *testing.T) {
	p := Signer{APIKey: "k", APISecret: "s"}.Sign("tts-api.xfyun.cn", "GET /v2/tts HTTP/1.1", fixedNow)
	q := p.Query()
	if q.Get("authorization") != p.Authorization || q.Get("date") != p.Date || q.Get("host") != p.Host {
		t.Fatalf("query values do not match params: %v", q)
	}
	if !strings.Contains(q.Encode(), "date=Tue%2C+02+Jan+2024") {
		t.Fatalf("date not url-encoded as expected: %s", q.Encode())
	}
}
