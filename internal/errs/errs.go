// Package errs defines the typed error values the pipeline can fail with.
// Every adapter and domain package wraps the underlying cause with
// fmt.Errorf("...: %w", err) at its own boundary; these types are what the
// CLI driver inspects with errors.As to pick an exit code.
package errs

import "fmt"

// EngineKind classifies a media-engine failure.
type EngineKind string

const (
	LoadFailed EngineKind = "LoadFailed"
	ExecFailed EngineKind = "ExecFailed"
	Timeout    EngineKind = "Timeout"
	FileSystem EngineKind = "FileSystem"
)

// SourceUnreadableError is returned when the media-engine adapter cannot
// open the source, probe-read its first byte, or stat it, whatever its size.
type SourceUnreadableError struct {
	Path string
	Err  error
}

func (e *SourceUnreadableError) Error() string {
	return fmt.Sprintf("source unreadable: %s: %v", e.Path, e.Err)
}

func (e *SourceUnreadableError) Unwrap() error { return e.Err }

// EngineError is raised by any media-engine adapter call.
type EngineError struct {
	Kind    EngineKind
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error [%s]: %s", e.Kind, e.Message)
}

// NoSpeechDetectedError is raised by the segmenter when no speech
// intervals survive the padding/min-speech filter.
type NoSpeechDetectedError struct {
	NoiseDB    int
	MinSilence float64
}

func (e *NoSpeechDetectedError) Error() string {
	return fmt.Sprintf(
		"no speech detected (noise_threshold_db=%d, min_silence_s=%.2f); try lowering the silence threshold",
		e.NoiseDB, e.MinSilence,
	)
}

// MissingCredentialError is raised before calling the scoring oracle when
// no credential was supplied.
type MissingCredentialError struct{}

func (e *MissingCredentialError) Error() string {
	return "missing scoring oracle credential"
}

// OracleProtocolError wraps a non-2xx HTTP response from the oracle.
type OracleProtocolError struct {
	StatusCode int
	Body       string
}

func (e *OracleProtocolError) Error() string {
	return fmt.Sprintf("oracle protocol error: status %d: %s", e.StatusCode, e.Body)
}

// OracleParseError wraps a JSON-decode failure on the oracle's reply.
type OracleParseError struct {
	Raw string
	Err error
}

func (e *OracleParseError) Error() string {
	return fmt.Sprintf("oracle parse error: %v: %s", e.Err, e.Raw)
}

func (e *OracleParseError) Unwrap() error { return e.Err }

// OracleShapeError is raised when the oracle's reply is valid JSON but
// missing fields the pipeline requires.
type OracleShapeError struct {
	Missing string
}

func (e *OracleShapeError) Error() string {
	return fmt.Sprintf("oracle reply missing required field: %s", e.Missing)
}

// ExportError wraps a failure producing one specific export artifact; it
// never aborts the other exports.
type ExportError struct {
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s failed: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
