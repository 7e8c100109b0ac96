// Package routing decides, for a question and a knowledge document, whether to
// answer directly or hand the user off with a reusable prompt.
package routing

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloo-solutions/roadmapbot/internal/domain"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultRetries        = 1
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
)

// Generator produces text for a single prompt. Name is "<service>:<model>".
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// ProfileSource supplies the persona and handoff defaults per call so profile
// reloads take effect without rebuilding the router.
type ProfileSource interface {
	Role() string
	DefaultMissing() []string
}

// Config tunes the outbound call.
type Config struct {
	Timeout        time.Duration
	Retries        int
	InitialBackoff time.Duration
}

// Result is the decision plus how it was obtained.
type Result struct {
	Decision domain.RouteDecision
	// Fallback is set when the backend text was not a well-formed decision.
	Fallback bool
	Provider string
	Attempts int
}

// Router is stateless and safe for concurrent use.
type Router struct {
	gen     Generator
	profile ProfileSource
	cfg     Config
}

// NewRouter builds a router. A nil generator is allowed: every routed
// question then fails with ErrGenerationNotConfigured.
func NewRouter(gen Generator, profile ProfileSource, cfg Config) *Router {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	return &Router{gen: gen, profile: profile, cfg: cfg}
}

// Route answers or hands off. Input and configuration errors are returned
// before any backend call; backend failures come back as *domain.UpstreamError.
// Unparsable backend text never errors.
func (r *Router) Route(ctx context.Context, question, knowledge string) (*Result, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrQuestionRequired
	}
	if r.gen == nil {
		return nil, domain.ErrGenerationNotConfigured
	}

	if strings.TrimSpace(knowledge) == "" {
		return &Result{
			Decision: r.localHandoff(question),
			Provider: r.gen.Name(),
		}, nil
	}

	prompt := BuildPrompt(r.profile.Role(), knowledge, question)
	raw, attempts, err := r.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	reply := ParseReply(raw, question)
	return &Result{
		Decision: reply.Decision(),
		Fallback: !reply.Structured(),
		Provider: r.gen.Name(),
		Attempts: attempts,
	}, nil
}

func (r *Router) localHandoff(question string) domain.RouteDecision {
	missing := r.profile.DefaultMissing()
	explanation := "There is no documentation available to answer this question, so I can't answer it without guessing."
	return domain.NewHandoff(explanation, handoffTemplate(question, missing), missing)
}

func (r *Router) generate(ctx context.Context, prompt string) (string, int, error) {
	var (
		text     string
		attempts int
	)

	op := func() error {
		attempts++
		callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()

		out, err := r.gen.Generate(callCtx, prompt)
		if err != nil {
			if ctx.Err() != nil || !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		text = out
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialBackoff
	b.MaxInterval = defaultMaxBackoff
	b.MaxElapsedTime = 0

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.cfg.Retries)), ctx))
	if err != nil {
		return "", attempts, wrapGenerateError(serviceOf(r.gen.Name()), err)
	}
	return text, attempts, nil
}

func retryable(err error) bool {
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// serviceOf strips the model from a generator name.
func serviceOf(name string) string {
	service, _, _ := strings.Cut(name, ":")
	return service
}

func wrapGenerateError(service string, err error) error {
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return upstream
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.UpstreamError{
			Service: service,
			Status:  504,
			Details: map[string]any{"message": "generation timed out"},
			Err:     err,
		}
	}
	return fmt.Errorf("generation failed: %w", err)
}
