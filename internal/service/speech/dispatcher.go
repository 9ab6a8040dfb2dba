package speech

import (
	"context"
	"log"
	"strings"
	"time"
)

// Options configures the dispatcher's backends.
type Options struct {
	// CloudBaseURL overrides the public translate endpoint; empty selects
	// the per-region hosts.
	CloudBaseURL string
	// LocalCommand names the on-device synthesizer binary.
	LocalCommand string
	// Timeout bounds each cloud synthesis call, in seconds.
	Timeout int
}

// Dispatcher routes text to one of the interchangeable synthesis backends.
// Every failure mode degrades to empty bytes; callers decide whether empty
// means "unavailable" for their protocol.
type Dispatcher struct {
	cloud *CloudClient
	local *LocalEngine
}

// NewDispatcher creates a dispatcher with both backends wired.
func NewDispatcher(opts Options) *Dispatcher {
	return &Dispatcher{
		cloud: NewCloudClient(opts.CloudBaseURL, time.Duration(opts.Timeout)*time.Second),
		local: NewLocalEngine(opts.LocalCommand),
	}
}

// Synthesize returns raw audio for the text, or nil when the engine is
// unavailable or the attempt failed. Blank text returns nil immediately
// without touching any backend.
func (d *Dispatcher) Synthesize(ctx context.Context, engineID, text, voiceID string) []byte {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if profile, ok := ResolveCloudProfile(engineID); ok {
		audio, err := d.cloud.Synthesize(ctx, profile, text)
		if err != nil {
			log.Printf("[speech] cloud synthesis failed engine=%s: %v", engineID, err)
			return nil
		}
		return audio
	}

	if engineID == LocalEngineID {
		if !d.local.Available() {
			log.Printf("[speech] local synthesizer unavailable")
			return nil
		}
		audio, err := d.local.Synthesize(ctx, text, voiceID)
		if err != nil {
			log.Printf("[speech] local synthesis failed: %v", err)
			return nil
		}
		return audio
	}

	log.Printf("[speech] unsupported engine %q", engineID)
	return nil
}

// Voices exposes the on-device voice list for capability discovery.
func (d *Dispatcher) Voices() []Voice {
	return d.local.Voices()
}
