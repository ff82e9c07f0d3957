package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/voicebridge/internal/api/handlers"
	"github.com/nikhilbhutani/voicebridge/internal/api/middleware"
	"github.com/nikhilbhutani/voicebridge/internal/config"
	"github.com/nikhilbhutani/voicebridge/internal/pipeline"
	"github.com/nikhilbhutani/voicebridge/internal/speech"
	"github.com/nikhilbhutani/voicebridge/internal/translator"
)

// Deps are the collaborators the gateway routes to. Jobs, Queue and Redis
// may be nil, in which case the job endpoints are not mounted.
type Deps struct {
	Speech     *speech.Client
	Translator translator.Translator
	Jobs       handlers.JobStore
	Queue      handlers.PipelineEnqueuer
	Redis      handlers.Pinger
}

type Router struct {
	mux  *chi.Mux
	cfg  *config.Config
	deps Deps
}

func NewRouter(cfg *config.Config, deps Deps) *Router {
	if deps.Translator == nil {
		deps.Translator = deps.Speech
	}
	return &Router{
		mux:  chi.NewRouter(),
		cfg:  cfg,
		deps: deps,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	// Health endpoints (no auth)
	deps := map[string]handlers.Pinger{}
	if rt.deps.Redis != nil {
		deps["redis"] = rt.deps.Redis
	}
	health := handlers.NewHealthHandler(deps)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	p := pipeline.New(rt.deps.Speech, rt.deps.Translator, rt.deps.Speech)
	maxUpload := rt.cfg.Server.MaxUploadBytes

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKey(rt.cfg.Server.APIKey))
		r.Use(middleware.RateLimit(rt.cfg.Server.RateLimitRPM))

		speechH := handlers.NewSpeechHandler(rt.deps.Speech, rt.deps.Translator, rt.deps.Speech, p, maxUpload)
		r.Route("/speech", func(r chi.Router) {
			r.Post("/transcriptions", speechH.Transcribe)
			r.Post("/translations", speechH.Translate)
			r.Post("/syntheses", speechH.Synthesize)
			r.Post("/pipeline", speechH.Pipeline)
		})

		if rt.deps.Jobs != nil && rt.deps.Queue != nil {
			jobH := handlers.NewJobHandler(rt.deps.Jobs, rt.deps.Queue, maxUpload)
			r.Route("/jobs", func(r chi.Router) {
				r.Post("/", jobH.Create)
				r.Get("/{id}", jobH.Get)
			})
		}
	})

	return r
}
