package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/voicebridge/internal/speech"
)

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio speech.AudioPayload) (*speech.TranscriptionResult, error)
}

// Translator converts text into its translation.
type Translator interface {
	Translate(ctx context.Context, req speech.TranslationRequest) (*speech.TranslationResult, error)
}

// Synthesizer converts text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, req speech.SynthesisRequest) (*speech.SynthesisResult, error)
}

// Options controls a single run.
type Options struct {
	Synthesize bool                 `json:"synthesize"`
	Voice      string               `json:"voice,omitempty"`
	Languages  *speech.LanguagePair `json:"languages,omitempty"`
}

// Result collects the output of every stage that ran.
type Result struct {
	Transcript  string `json:"transcript"`
	Translation string `json:"translation"`
	Audio       []byte `json:"audio,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	LatencyMs   int64  `json:"latency_ms"`
}

// StageError names the stage that failed. The underlying speech error stays
// reachable through errors.As and already names its operation, so the
// message is passed through unchanged.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// Pipeline runs record -> transcribe -> translate -> speak in order.
// Each stage starts only after the previous one succeeded.
type Pipeline struct {
	stt Transcriber
	tr  Translator
	tts Synthesizer
}

func New(stt Transcriber, tr Translator, tts Synthesizer) *Pipeline {
	return &Pipeline{stt: stt, tr: tr, tts: tts}
}

func (p *Pipeline) Run(ctx context.Context, audio speech.AudioPayload, opts Options) (*Result, error) {
	start := time.Now()

	transcript, err := p.stt.Transcribe(ctx, audio)
	if err != nil {
		return nil, &StageError{Stage: "transcribe", Err: err}
	}
	slog.Debug("pipeline transcribed", "chars", len(transcript.Text))

	translation, err := p.tr.Translate(ctx, speech.TranslationRequest{
		Text:      transcript.Text,
		Languages: opts.Languages,
	})
	if err != nil {
		return nil, &StageError{Stage: "translate", Err: err}
	}

	res := &Result{
		Transcript:  transcript.Text,
		Translation: translation.Text,
	}

	if opts.Synthesize {
		audioOut, err := p.tts.Synthesize(ctx, speech.SynthesisRequest{
			Input: translation.Text,
			Voice: opts.Voice,
		})
		if err != nil {
			return nil, &StageError{Stage: "synthesize", Err: err}
		}
		res.Audio = audioOut.Audio
		res.ContentType = audioOut.ContentType
	}

	res.LatencyMs = time.Since(start).Milliseconds()
	slog.Info("pipeline completed",
		"synthesized", opts.Synthesize,
		"latency_ms", res.LatencyMs,
	)
	return res, nil
}

// Describe is a short human summary used in logs and CLI output.
func (r *Result) Describe() string {
	return fmt.Sprintf("transcript=%q translation=%q audio=%dB", r.Transcript, r.Translation, len(r.Audio))
}
