// Package orchestrator routes generation requests to provider adapters and
// drives deferred jobs to completion under bounded time and attempt budgets.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/catalog"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers"
)

// Status is the caller-facing discriminator of a Result.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPending Status = "pending"
	StatusFailure Status = "failure"
)

// Result is the single outcome type every orchestration call resolves to.
// Exactly one semantic variant is populated: a success carries the artifact, a
// pending carries the task handle, a failure carries the error kind and
// message. Pending is only a final result for fire-and-forget submissions.
type Result struct {
	Status    Status
	Artifact  *providers.Artifact
	TaskID    string
	Provider  providers.Kind
	ErrorKind providers.ErrorKind
	Message   string
}

// PollPolicy bounds one polling loop.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
	MaxElapsed  time.Duration
}

// Policies carries the per-media-type polling budgets. Image providers answer
// within seconds; video renders can legitimately take many minutes, so the
// budgets are configuration rather than a single universal timeout.
type Policies struct {
	Image PollPolicy
	Video PollPolicy
	Audio PollPolicy
}

// DefaultPolicies returns budgets tuned to real provider latencies.
func DefaultPolicies() Policies {
	return Policies{
		Image: PollPolicy{Interval: 2 * time.Second, MaxAttempts: 20, MaxElapsed: 50 * time.Second},
		Video: PollPolicy{Interval: 10 * time.Second, MaxAttempts: 60, MaxElapsed: 10 * time.Minute},
		Audio: PollPolicy{Interval: 2 * time.Second, MaxAttempts: 15, MaxElapsed: 30 * time.Second},
	}
}

func (p Policies) forMedia(media providers.MediaType) PollPolicy {
	switch media {
	case providers.MediaVideo:
		return p.Video
	case providers.MediaAudio:
		return p.Audio
	default:
		return p.Image
	}
}

// CredentialResolver supplies a decrypted per-caller key for a provider. The
// absence case is a first-class, user-actionable condition, not an error.
type CredentialResolver interface {
	Resolve(ctx context.Context, kind providers.Kind, callerID string) (providers.Credential, bool, error)
}

// Input wraps a provider request with orchestration-level options.
type Input struct {
	CallerID      string
	FireAndForget bool
	Request       providers.Request
}

// Options configures an Orchestrator at construction time, so tests can
// inject stub adapters and credentials without environment mutation.
type Options struct {
	Registry    *catalog.Registry
	Adapters    []providers.Adapter
	Credentials CredentialResolver
	Policies    Policies
	Logger      zerolog.Logger
}

// Orchestrator holds no per-request state; concurrent calls are independent.
type Orchestrator struct {
	registry *catalog.Registry
	adapters map[providers.Kind]providers.Adapter
	creds    CredentialResolver
	policies Policies
	logger   zerolog.Logger
}

// New wires an orchestrator from explicit collaborators.
func New(opts Options) *Orchestrator {
	adapters := make(map[providers.Kind]providers.Adapter, len(opts.Adapters))
	for _, a := range opts.Adapters {
		if a != nil {
			adapters[a.Kind()] = a
		}
	}
	policies := opts.Policies
	if policies == (Policies{}) {
		policies = DefaultPolicies()
	}
	registry := opts.Registry
	if registry == nil {
		registry = catalog.Default()
	}
	return &Orchestrator{
		registry: registry,
		adapters: adapters,
		creds:    opts.Credentials,
		policies: policies,
		logger:   opts.Logger,
	}
}

// job tracks one in-flight deferred task for the duration of a single
// Generate call. It is never persisted; callers that need durability keep the
// task id themselves and use CheckStatus.
type job struct {
	ID        string
	TaskID    string
	Provider  providers.Kind
	CreatedAt time.Time
	Attempts  int
}

// Generate runs the full state machine: validate, submit, and, for deferred
// outcomes, poll to a terminal result. Submission is never retried; a failed
// submit would risk double-charging a paid generation.
func (o *Orchestrator) Generate(ctx context.Context, in Input) Result {
	desc, ok := o.registry.Resolve(in.Request.ModelID)
	if !ok {
		return invalid("", fmt.Sprintf("unknown model %q", in.Request.ModelID))
	}
	req := in.Request
	applyDefaults(&req, desc)
	if msg := validate(req, desc); msg != "" {
		return invalid(desc.Provider, msg)
	}

	adapter, ok := o.adapters[desc.Provider]
	if !ok {
		return Result{
			Status:    StatusFailure,
			Provider:  desc.Provider,
			ErrorKind: providers.ErrorKindMissingCredential,
			Message:   fmt.Sprintf("no %s provider configured for %s generation", desc.Provider, desc.MediaType),
		}
	}
	cred, res := o.resolveCredential(ctx, desc.Provider, in.CallerID)
	if res != nil {
		return *res
	}

	out, err := adapter.Submit(ctx, req, cred)
	if err != nil {
		if ctx.Err() != nil {
			return cancelled(desc.Provider, "")
		}
		return failureFromErr(desc.Provider, err, "")
	}
	if out.Ready() {
		o.logger.Info().
			Str("model", req.ModelID).
			Str("provider", string(desc.Provider)).
			Msg("generation completed synchronously")
		return success(desc.Provider, out.Artifact, out.TaskID)
	}
	if strings.TrimSpace(out.TaskID) == "" {
		return Result{
			Status:    StatusFailure,
			Provider:  desc.Provider,
			ErrorKind: providers.ErrorKindUnexpectedState,
			Message:   "submission returned neither an artifact nor a task handle",
		}
	}

	j := &job{
		ID:        uuid.NewString(),
		TaskID:    out.TaskID,
		Provider:  desc.Provider,
		CreatedAt: time.Now(),
	}
	o.logger.Info().
		Str("job_id", j.ID).
		Str("task_id", j.TaskID).
		Str("provider", string(desc.Provider)).
		Msg("generation deferred")
	if in.FireAndForget {
		return Result{Status: StatusPending, Provider: desc.Provider, TaskID: j.TaskID}
	}
	return o.pollUntilDone(ctx, adapter, cred, j, o.policies.forMedia(desc.MediaType))
}

// CheckStatus performs a single non-looping poll for a persisted task id. It
// is idempotent: polling a finished job returns the same payload every time.
func (o *Orchestrator) CheckStatus(ctx context.Context, callerID string, kind providers.Kind, taskID string) Result {
	adapter, ok := o.adapters[kind]
	if !ok {
		return invalid(kind, fmt.Sprintf("unknown provider %q", kind))
	}
	if strings.TrimSpace(taskID) == "" {
		return invalid(kind, "task id is required")
	}
	cred, res := o.resolveCredential(ctx, kind, callerID)
	if res != nil {
		return *res
	}
	out, err := adapter.Poll(ctx, taskID, cred)
	if err != nil {
		if ctx.Err() != nil {
			return cancelled(kind, taskID)
		}
		return failureFromErr(kind, err, taskID)
	}
	return o.classify(adapter, kind, taskID, out)
}

func (o *Orchestrator) pollUntilDone(ctx context.Context, adapter providers.Adapter, cred providers.Credential, j *job, policy PollPolicy) Result {
	deadline := time.Now().Add(policy.MaxElapsed)
	timer := time.NewTimer(policy.Interval)
	defer timer.Stop()

	for j.Attempts < policy.MaxAttempts {
		select {
		case <-ctx.Done():
			o.logger.Info().Str("job_id", j.ID).Str("task_id", j.TaskID).Msg("polling cancelled by caller")
			return cancelled(j.Provider, j.TaskID)
		case <-timer.C:
		}
		if !time.Now().Before(deadline) {
			break
		}
		j.Attempts++
		out, err := adapter.Poll(ctx, j.TaskID, cred)
		if err != nil {
			if ctx.Err() != nil {
				return cancelled(j.Provider, j.TaskID)
			}
			return failureFromErr(j.Provider, err, j.TaskID)
		}
		result := o.classify(adapter, j.Provider, j.TaskID, out)
		if result.Status != StatusPending {
			o.logger.Info().
				Str("job_id", j.ID).
				Str("task_id", j.TaskID).
				Int("attempts", j.Attempts).
				Str("status", string(result.Status)).
				Msg("polling finished")
			return result
		}
		timer.Reset(policy.Interval)
	}

	o.logger.Warn().
		Str("job_id", j.ID).
		Str("task_id", j.TaskID).
		Int("attempts", j.Attempts).
		Msg("polling budget exhausted")
	return Result{
		Status:    StatusFailure,
		Provider:  j.Provider,
		TaskID:    j.TaskID,
		ErrorKind: providers.ErrorKindTimedOut,
		Message:   fmt.Sprintf("generation still processing after %d poll attempts", j.Attempts),
	}
}

// classify maps one poll outcome onto the canonical result states using the
// adapter's declared status vocabulary. Unrecognized statuses are terminal
// failures, logged distinctly so new provider behaviors get noticed instead
// of being treated as success or as pending forever.
func (o *Orchestrator) classify(adapter providers.Adapter, kind providers.Kind, taskID string, out providers.Outcome) Result {
	switch adapter.Statuses().Classify(out.RawStatus) {
	case providers.StateReady:
		if out.Artifact == nil {
			return Result{
				Status:    StatusFailure,
				Provider:  kind,
				TaskID:    taskID,
				ErrorKind: providers.ErrorKindUnexpectedState,
				Message:   fmt.Sprintf("status %q reported ready without an artifact", out.RawStatus),
			}
		}
		return success(kind, out.Artifact, taskID)
	case providers.StateNotReady:
		return Result{Status: StatusPending, Provider: kind, TaskID: taskID}
	case providers.StateFailed:
		msg := strings.TrimSpace(out.FailureMessage)
		if msg == "" {
			msg = fmt.Sprintf("provider reported status %q", out.RawStatus)
		}
		return Result{
			Status:    StatusFailure,
			Provider:  kind,
			TaskID:    taskID,
			ErrorKind: providers.ErrorKindProvider,
			Message:   msg,
		}
	default:
		o.logger.Error().
			Str("provider", string(kind)).
			Str("task_id", taskID).
			Str("raw_status", out.RawStatus).
			Msg("unrecognized provider status")
		return Result{
			Status:    StatusFailure,
			Provider:  kind,
			TaskID:    taskID,
			ErrorKind: providers.ErrorKindUnexpectedState,
			Message:   fmt.Sprintf("unrecognized provider status %q", out.RawStatus),
		}
	}
}

func (o *Orchestrator) resolveCredential(ctx context.Context, kind providers.Kind, callerID string) (providers.Credential, *Result) {
	if o.creds == nil {
		res := missingCredential(kind)
		return providers.Credential{}, &res
	}
	cred, ok, err := o.creds.Resolve(ctx, kind, callerID)
	if err != nil {
		res := Result{
			Status:    StatusFailure,
			Provider:  kind,
			ErrorKind: providers.ErrorKindProvider,
			Message:   "credential lookup failed",
		}
		o.logger.Error().Err(err).Str("provider", string(kind)).Msg("credential lookup failed")
		return providers.Credential{}, &res
	}
	if !ok || cred.IsZero() {
		res := missingCredential(kind)
		return providers.Credential{}, &res
	}
	return cred, nil
}

func applyDefaults(req *providers.Request, desc catalog.ModelDescriptor) {
	if req.MediaType == "" {
		req.MediaType = desc.MediaType
	}
	if req.DurationSeconds <= 0 {
		req.DurationSeconds = desc.DefaultDurationSeconds
	}
	if strings.TrimSpace(req.Resolution) == "" {
		req.Resolution = desc.DefaultResolution
	}
	if strings.TrimSpace(req.VoiceID) == "" {
		req.VoiceID = desc.DefaultVoiceID
	}
}

// validate enforces descriptor-declared limits before any credential lookup
// or network call. A non-empty return is the invalid_request message.
func validate(req providers.Request, desc catalog.ModelDescriptor) string {
	if req.MediaType != desc.MediaType {
		return fmt.Sprintf("%s generates %s, not %s", desc.ModelID, desc.MediaType, req.MediaType)
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" && req.Creative.IsZero() {
		return "prompt or creative controls are required"
	}
	// The limit applies to the text the provider will actually see, including
	// a prompt derived from creative controls.
	if desc.MaxCharacters > 0 && len([]rune(providers.EffectivePrompt(req))) > desc.MaxCharacters {
		return fmt.Sprintf("prompt exceeds the %d character limit for %s", desc.MaxCharacters, desc.ModelID)
	}
	if len(req.ReferenceAssets) > 0 && !desc.SupportsReferenceAssets && !desc.SupportsStartFrame {
		return fmt.Sprintf("%s does not accept reference assets", desc.ModelID)
	}
	if req.EnableAudioTrack && !desc.SupportsAudioTrack {
		return fmt.Sprintf("%s does not support an audio track", desc.ModelID)
	}
	if desc.MaxDurationSeconds > 0 && req.DurationSeconds > desc.MaxDurationSeconds {
		return fmt.Sprintf("duration exceeds the %ds limit for %s", desc.MaxDurationSeconds, desc.ModelID)
	}
	return ""
}

func success(kind providers.Kind, artifact *providers.Artifact, taskID string) Result {
	return Result{Status: StatusSuccess, Provider: kind, Artifact: artifact, TaskID: taskID}
}

func invalid(kind providers.Kind, msg string) Result {
	return Result{
		Status:    StatusFailure,
		Provider:  kind,
		ErrorKind: providers.ErrorKindInvalidRequest,
		Message:   msg,
	}
}

func missingCredential(kind providers.Kind) Result {
	return Result{
		Status:    StatusFailure,
		Provider:  kind,
		ErrorKind: providers.ErrorKindMissingCredential,
		Message:   fmt.Sprintf("no %s credential configured; add your %s key to continue", kind, kind),
	}
}

func cancelled(kind providers.Kind, taskID string) Result {
	return Result{
		Status:    StatusFailure,
		Provider:  kind,
		TaskID:    taskID,
		ErrorKind: providers.ErrorKindCancelled,
		Message:   "request cancelled before a terminal outcome",
	}
}

func failureFromErr(kind providers.Kind, err error, taskID string) Result {
	return Result{
		Status:    StatusFailure,
		Provider:  kind,
		TaskID:    taskID,
		ErrorKind: providers.KindOf(err),
		Message:   err.Error(),
	}
}
