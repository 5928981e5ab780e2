package speech

import "context"

// Synthesizer converts text to audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, req TTSRequest) *Result

	// Name returns the provider name (e.g., "xfyun")
	Name() string
}

// Recognizer converts audio to text.
type Recognizer interface {
	Recognize(ctx context.Context, req ASRRequest) *Result
	Name() string
}

// TTSRequest describes one synthesis. Speed, Volume and Pitch are in [0,100]
// and sent as given; out-of-range values are rejected by the vendor.
type TTSRequest struct {
	Text   string
	Voice  string
	Speed  int
	Volume int
	Pitch  int
}

// ASRRequest carries 16 kHz 16-bit mono PCM audio.
type ASRRequest struct {
	Audio    []byte
	Language string
}

const (
	DefaultVoice = "xiaoyan"
	DefaultLevel = 50
)

func (r TTSRequest) withDefaults() TTSRequest {
	if r.Voice == "" {
		r.Voice = DefaultVoice
	}
	return r
}

// MapLanguage converts the application language tag to the vendor's.
func MapLanguage(lang string) string {
	switch lang {
	case "zh", "zh_cn", "zh-CN", "":
		return "zh_cn"
	default:
		return "en_us"
	}
}
