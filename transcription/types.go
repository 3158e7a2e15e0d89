package transcription

// Request holds parameters for a transcription call.
type Request struct {
	// AudioPath is the path to a 16 kHz mono WAV file.
	AudioPath string `json:"audio_path"`
	// Language is the expected language, e.g. "en".
	Language string `json:"language,omitempty"`
	// Model overrides the backend's default model.
	Model string `json:"model,omitempty"`
}

// Result holds the outcome of a transcription call. Text may be empty when
// the audio held no speech.
type Result struct {
	Text       string    `json:"text"`
	Language   string    `json:"language,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Duration   float64   `json:"duration,omitempty"`
	Segments   []Segment `json:"segments,omitempty"`
}

// Segment is a time-aligned portion of a transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
