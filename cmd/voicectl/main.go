// Command voicectl is a terminal host for the speech client: it plays the
// part of the recording screen, walking one clip through transcribe,
// translate and speak, with every result handled on the main goroutine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nikhilbhutani/voicebridge/internal/config"
	"github.com/nikhilbhutani/voicebridge/internal/speech"
)

func main() {
	audioPath := flag.String("audio", "audio_record.m4a", "recorded clip to transcribe")
	speak := flag.Bool("speak", true, "synthesize the translation")
	voice := flag.String("voice", "", "voice for synthesis (default from config)")
	outDir := flag.String("out", os.TempDir(), "directory for speech.mp3")
	source := flag.String("source", "", "source language (optional)")
	target := flag.String("target", "", "target language; empty keeps the English/Japanese toggle")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Speech.APIKey == "" {
		slog.Error("OPENAI_API_KEY is not set")
		os.Exit(1)
	}

	var pair *speech.LanguagePair
	if *target != "" {
		pair = &speech.LanguagePair{Source: *source, Target: *target}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, finish := context.WithCancel(ctx)
	defer finish()

	loop := speech.NewLoop(4)
	s := &session{
		ctx:    ctx,
		async:  speech.NewAsync(speech.New(cfg.Speech, speech.WithLogger(logger)), loop),
		speak:  *speak,
		voice:  *voice,
		pair:   pair,
		outDir: *outDir,
		finish: finish,
	}

	audio, err := speech.AudioFromFile(*audioPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("File size: %d KB\n", len(audio.Data)/1024)

	s.async.TranscribeAsync(ctx, audio, s.onTranscribed)
	loop.Run(ctx)
	s.async.Wait()

	if code := s.exitCode(); code != 0 {
		if s.err == nil {
			fmt.Fprintln(os.Stderr, "interrupted")
		}
		os.Exit(code)
	}
}

// session holds the screen state; it is only touched from loop callbacks.
type session struct {
	ctx       context.Context
	async     *speech.AsyncClient
	speak     bool
	voice     string
	pair      *speech.LanguagePair
	outDir    string
	finish    context.CancelFunc
	err       error
	completed bool
}

// exitCode is 1 after a failed stage and 130 when the run was cut short.
func (s *session) exitCode() int {
	switch {
	case s.err != nil:
		return 1
	case !s.completed:
		return 130
	default:
		return 0
	}
}

func (s *session) fail(stage string, err error) {
	fmt.Fprintf(os.Stderr, "%s failed: %v\n", stage, err)
	s.err = err
	s.finish()
}

func (s *session) onTranscribed(res *speech.TranscriptionResult, err error) {
	if err != nil {
		s.fail("transcription", err)
		return
	}
	fmt.Printf("Transcript: %s\n", res.Text)
	s.async.TranslateAsync(s.ctx, speech.TranslationRequest{Text: res.Text, Languages: s.pair}, s.onTranslated)
}

func (s *session) onTranslated(res *speech.TranslationResult, err error) {
	if err != nil {
		s.fail("translation", err)
		return
	}
	fmt.Printf("Translation: %s\n", res.Text)
	if !s.speak {
		s.completed = true
		s.finish()
		return
	}
	s.async.SynthesizeAsync(s.ctx, speech.SynthesisRequest{Input: res.Text, Voice: s.voice}, s.onSynthesized)
}

func (s *session) onSynthesized(res *speech.SynthesisResult, err error) {
	if err != nil {
		s.fail("speech", err)
		return
	}
	path := filepath.Join(s.outDir, "speech.mp3")
	if err := os.WriteFile(path, res.Audio, 0o644); err != nil {
		s.fail("speech", err)
		return
	}
	fmt.Printf("Speech written to %s (%d bytes)\n", path, len(res.Audio))
	s.completed = true
	s.finish()
}
