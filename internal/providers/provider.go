package providers

import (
	"context"
	"strings"
)

// Kind identifies one external generation backend.
type Kind string

const (
	KindDashScope  Kind = "dashscope"
	KindLeonardo   Kind = "leonardo"
	KindKling      Kind = "kling"
	KindElevenLabs Kind = "elevenlabs"
)

// MediaType enumerates the artifact families the service can produce.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// NormalizeKind sanitizes free-form provider input into a Kind.
func NormalizeKind(raw string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(raw)))
}

// ReferenceAsset is an inline conditioning input forwarded to a provider.
type ReferenceAsset struct {
	Data []byte
	MIME string
}

// Creative conveys structured creative controls used to derive a prompt when
// the caller did not supply one verbatim.
type Creative struct {
	ProductName string
	ProductType string
	Scene       string
	Style       string
	Background  string
	Notes       string
}

// IsZero reports whether no creative control was provided at all.
func (c Creative) IsZero() bool {
	return strings.TrimSpace(c.ProductName) == "" &&
		strings.TrimSpace(c.ProductType) == "" &&
		strings.TrimSpace(c.Scene) == "" &&
		strings.TrimSpace(c.Style) == "" &&
		strings.TrimSpace(c.Background) == "" &&
		strings.TrimSpace(c.Notes) == ""
}

// Request is the normalized generation request passed to any adapter.
// Provider-specific payload shapes are built inside each adapter; nothing in
// this struct is tied to one backend's wire format.
type Request struct {
	ModelID          string
	MediaType        MediaType
	Prompt           string
	AspectRatio      string
	Quality          string
	ReferenceAssets  []ReferenceAsset
	DurationSeconds  int
	Resolution       string
	VoiceID          string
	LanguageCode     string
	EnableAudioTrack bool
	Creative         Creative
	RequestID        string
}

// Credential is a decrypted provider secret scoped to one caller. It is
// resolved fresh per orchestration call and must never be logged or
// serialized into responses.
type Credential struct {
	Secret string
}

// IsZero reports whether no secret is present.
func (c Credential) IsZero() bool { return strings.TrimSpace(c.Secret) == "" }

// String masks the secret so accidental formatting cannot leak it.
func (c Credential) String() string { return "***" }

// Artifact is a generated asset, either inline bytes or a provider-hosted URL.
type Artifact struct {
	Data     []byte
	URL      string
	MIME     string
	Metadata map[string]string
}

// Outcome is the uniform result of a Submit or Poll call. Exactly one of the
// following holds: Artifact is set (the provider answered synchronously or the
// task finished), TaskID is set without an Artifact (deferred work), or
// FailureMessage explains a provider-reported terminal failure.
type Outcome struct {
	TaskID         string
	RawStatus      string
	Artifact       *Artifact
	FailureMessage string
}

// Ready reports whether the outcome already carries an artifact.
func (o Outcome) Ready() bool { return o.Artifact != nil }

// Adapter is the contract implemented by every provider backend.
//
// Submit issues the generation call. Synchronous providers return an Outcome
// with the Artifact populated; asynchronous providers return a task handle.
// Poll queries a previously submitted task; it must be idempotent and safe to
// call repeatedly, with no side effect beyond the remote status query.
type Adapter interface {
	Kind() Kind
	Statuses() StatusVocabulary
	Submit(ctx context.Context, req Request, cred Credential) (Outcome, error)
	Poll(ctx context.Context, taskID string, cred Credential) (Outcome, error)
}
