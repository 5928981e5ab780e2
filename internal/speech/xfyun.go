package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"interviewgw/internal/breaker"
	"interviewgw/internal/logger"
	"interviewgw/internal/metrics"
)

const providerXfyun = "xfyun"

// XfyunConfig holds credentials and endpoints for the iFlytek open platform.
type XfyunConfig struct {
	AppID     string
	APIKey    string
	APISecret string
	TTSURL    string
	ASRURL    string

	Timeout            time.Duration
	BreakerFailures    uint32
	BreakerOpenTimeout time.Duration
}

func (c XfyunConfig) configured() bool {
	return c.AppID != "" && c.APIKey != "" && c.APISecret != ""
}

// XfyunClient implements Synthesizer and Recognizer against the vendor's
// REST endpoints. It performs a single attempt per call.
type XfyunClient struct {
	cfg        XfyunConfig
	signer     Signer
	httpClient *http.Client
	ttsBreaker *gobreaker.CircuitBreaker
	asrBreaker *gobreaker.CircuitBreaker
	log        *zap.Logger
	now        func() time.Time
}

// NewXfyunClient creates a new client. Missing credentials are not an error
// here; every call then reports KindConfigMissing.
func NewXfyunClient(cfg XfyunConfig, log *zap.Logger) *XfyunClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	log = log.Named("speech")
	return &XfyunClient{
		cfg:        cfg,
		signer:     Signer{APIKey: cfg.APIKey, APISecret: cfg.APISecret},
		httpClient: &http.Client{Timeout: cfg.Timeout},
		ttsBreaker: breaker.New(breaker.Settings{
			Name:             "xfyun-tts",
			FailureThreshold: cfg.BreakerFailures,
			OpenTimeout:      cfg.BreakerOpenTimeout,
		}, log),
		asrBreaker: breaker.New(breaker.Settings{
			Name:             "xfyun-asr",
			FailureThreshold: cfg.BreakerFailures,
			OpenTimeout:      cfg.BreakerOpenTimeout,
		}, log),
		log: log,
		now: time.Now,
	}
}

// Name returns the provider name
func (c *XfyunClient) Name() string {
	return providerXfyun
}

// Configured reports whether all three credentials are present.
func (c *XfyunClient) Configured() bool {
	return c.cfg.configured()
}

// vendorEnvelope is the outer shape shared by TTS and ASR responses.
type vendorEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Sid     string          `json:"sid"`
	Data    json.RawMessage `json:"data"`
}

type httpReply struct {
	status int
	body   []byte
}

// call signs and posts body to endpoint, returning the vendor data payload or
// a failed Result. method is the verb placed in the signed request line.
// Success is not recorded here; the caller observes it once the payload has
// been decoded.
func (c *XfyunClient) call(ctx context.Context, op string, cb *gobreaker.CircuitBreaker, endpoint, method string, body any, started time.Time) (json.RawMessage, *Result) {
	log := c.log.With(zap.String("operation", op))

	if !c.cfg.configured() {
		log.Warn("xfyun credentials not configured")
		metrics.ObserveUpstream(providerXfyun, op, metrics.OutcomeConfigMissing, started)
		return nil, failure(providerXfyun, KindConfigMissing, "xfyun credentials not configured")
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		log.Error("invalid endpoint", zap.String("endpoint", endpoint), zap.Error(err))
		metrics.ObserveUpstream(providerXfyun, op, metrics.OutcomeConfigMissing, started)
		return nil, failure(providerXfyun, KindConfigMissing, fmt.Sprintf("invalid %s endpoint %q", op, endpoint))
	}

	auth := c.signer.Sign(u.Host, fmt.Sprintf("%s %s HTTP/1.1", method, u.Path), c.now())
	u.RawQuery = auth.Query().Encode()

	payload, err := json.Marshal(body)
	if err != nil {
		metrics.ObserveUpstream(providerXfyun, op, metrics.OutcomeResponse, started)
		return nil, failure(providerXfyun, KindResponse, fmt.Sprintf("failed to marshal request: %v", err))
	}

	out, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to send request to xfyun: %w", err)
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		reply := &httpReply{status: resp.StatusCode, body: b}
		if resp.StatusCode >= http.StatusInternalServerError {
			return reply, fmt.Errorf("xfyun returned status %d", resp.StatusCode)
		}
		return reply, nil
	})

	reply, _ := out.(*httpReply)
	if reply == nil {
		msg := "transport failure"
		if err != nil {
			msg = err.Error()
		}
		if breaker.IsOpen(err) {
			msg = "circuit open: " + err.Error()
		}
		log.Error("xfyun call failed", zap.Error(err))
		metrics.ObserveUpstream(providerXfyun, op, metrics.OutcomeTransport, started)
		return nil, failure(providerXfyun, KindTransport, msg)
	}

	log.Debug("xfyun response", zap.Int("status", reply.status), zap.String("preview", logger.Preview(string(reply.body), 500)))

	if reply.status != http.StatusOK {
		log.Error("xfyun api error", zap.Int("status", reply.status), zap.String("body", logger.Preview(string(reply.body), 500)))
		metrics.ObserveUpstream(providerXfyun, op, metrics.OutcomeVendor, started)
		res := failure(providerXfyun, KindVendor, fmt.Sprintf("xfyun returned status %d: %s", reply.status, logger.Preview(string(reply.body), 200)))
		return nil, res
	}

	var env vendorEnvelope
	if err := json.Unmarshal(reply.body, &env); err != nil {
		log.Error("failed to parse xfyun response", zap.Error(err))
		metrics.ObserveUpstream(providerXfyun, op, metrics.OutcomeResponse, started)
		return nil, failure(providerXfyun, KindResponse, fmt.Sprintf("failed to parse xfyun response: %v", err))
	}

	if env.Code != 0 {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("xfyun error code %d", env.Code)
		}
		log.Warn("xfyun vendor error", zap.Int("code", env.Code), zap.String("message", env.Message), zap.String("sid", env.Sid))
		metrics.ObserveUpstream(providerXfyun, op, metrics.OutcomeVendor, started)
		res := failure(providerXfyun, KindVendor, msg)
		res.Code = env.Code
		return nil, res
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		metrics.ObserveUpstream(providerXfyun, op, metrics.OutcomeResponse, started)
		return nil, failure(providerXfyun, KindResponse, "xfyun response has no data")
	}

	log.Debug("xfyun call answered", zap.String("sid", env.Sid), zap.Duration("duration", time.Since(started)))
	return env.Data, nil
}
