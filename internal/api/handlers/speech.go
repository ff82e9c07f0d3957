package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/nikhilbhutani/voicebridge/internal/pipeline"
	"github.com/nikhilbhutani/voicebridge/internal/speech"
	"github.com/nikhilbhutani/voicebridge/internal/translator"
)

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio speech.AudioPayload) (*speech.TranscriptionResult, error)
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, req speech.SynthesisRequest) (*speech.SynthesisResult, error)
}

// Runner executes the full record-to-speech sequence.
type Runner interface {
	Run(ctx context.Context, audio speech.AudioPayload, opts pipeline.Options) (*pipeline.Result, error)
}

type SpeechHandler struct {
	stt       Transcriber
	tr        translator.Translator
	tts       Synthesizer
	pipeline  Runner
	maxUpload int64
}

func NewSpeechHandler(stt Transcriber, tr translator.Translator, tts Synthesizer, p Runner, maxUpload int64) *SpeechHandler {
	if maxUpload <= 0 {
		maxUpload = 25 << 20
	}
	return &SpeechHandler{stt: stt, tr: tr, tts: tts, pipeline: p, maxUpload: maxUpload}
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// Transcribe converts an uploaded clip (multipart field "file") to text.
func (h *SpeechHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	audio, err := readAudio(w, r, h.maxUpload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := h.stt.Transcribe(r.Context(), audio)
	if err != nil {
		writeSpeechError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Translate translates text. Without source/target the bidirectional
// English/Japanese instruction applies.
func (h *SpeechHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.tr.Translate(r.Context(), speech.TranslationRequest{
		Text:      req.Text,
		Languages: languagePair(req.Source, req.Target),
	})
	if err != nil {
		writeSpeechError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Synthesize converts text to audio and streams back the raw bytes.
func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req speech.SynthesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.tts.Synthesize(r.Context(), req)
	if err != nil {
		writeSpeechError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Audio)))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Audio)
}

// Pipeline runs transcribe -> translate -> (optional) synthesize in one call.
func (h *SpeechHandler) Pipeline(w http.ResponseWriter, r *http.Request) {
	audio, err := readAudio(w, r, h.maxUpload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := h.pipeline.Run(r.Context(), audio, pipelineOptions(r))
	if err != nil {
		writeSpeechError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func pipelineOptions(r *http.Request) pipeline.Options {
	synth, _ := strconv.ParseBool(r.FormValue("synthesize"))
	return pipeline.Options{
		Synthesize: synth,
		Voice:      r.FormValue("voice"),
		Languages:  languagePair(r.FormValue("source"), r.FormValue("target")),
	}
}

func languagePair(source, target string) *speech.LanguagePair {
	if target == "" {
		return nil
	}
	return &speech.LanguagePair{Source: source, Target: target}
}

// readAudio pulls the "file" part out of a multipart upload. The upstream part
// is always sent as audio/m4a, whatever type the client declared.
func readAudio(w http.ResponseWriter, r *http.Request, maxBytes int64) (speech.AudioPayload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return speech.AudioPayload{}, errors.New("invalid multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return speech.AudioPayload{}, errors.New("file required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return speech.AudioPayload{}, fmt.Errorf("read upload: %w", err)
	}

	return speech.AudioPayload{
		Data:      data,
		Filename:  header.Filename,
		MediaType: speech.DefaultAudioMediaType,
	}, nil
}
