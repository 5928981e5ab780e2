package speech

// ErrorKind classifies why a speech call did not succeed.
type ErrorKind string

const (
	KindConfigMissing ErrorKind = "config_missing"
	KindTransport     ErrorKind = "transport"
	KindVendor        ErrorKind = "vendor"
	KindResponse      ErrorKind = "response"
)

// Result is the outcome of one TTS or ASR call. Failures are reported here
// instead of as Go errors so callers can always fall back.
type Result struct {
	Success  bool
	Audio    string // base64 PCM, TTS only
	Text     string // transcript, ASR only
	Provider string
	Kind     ErrorKind
	Code     int // vendor status code, when the vendor answered
	Error    string
}

func failure(provider string, kind ErrorKind, msg string) *Result {
	return &Result{Provider: provider, Kind: kind, Error: msg}
}
