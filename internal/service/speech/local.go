package speech

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// Voice describes one on-device voice for capability discovery.
type Voice struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender string `json:"gender,omitempty"`
}

// femaleHints drive the name-based voice heuristic; matched
// case-insensitively as substrings against voice id and display name.
var femaleHints = []string{"female", "woman", "zira", "hazel"}

// maxConcurrentSynth bounds concurrent synthesizer processes. The engine is
// CPU-bound, so this keeps one busy session from starving the rest.
const maxConcurrentSynth = 2

// LocalEngine shells out to an espeak-ng compatible synthesizer. The binary
// may be absent on a given host; availability is probed at call time, not
// only at startup.
type LocalEngine struct {
	command string
	sem     chan struct{}
}

// NewLocalEngine creates the on-device backend around the given command.
func NewLocalEngine(command string) *LocalEngine {
	if command == "" {
		command = "espeak-ng"
	}
	return &LocalEngine{
		command: command,
		sem:     make(chan struct{}, maxConcurrentSynth),
	}
}

// Available probes for the synthesizer binary.
func (e *LocalEngine) Available() bool {
	_, err := exec.LookPath(e.command)
	return err == nil
}

// Synthesize renders text to WAV bytes using the resolved voice.
func (e *LocalEngine) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	path, err := exec.LookPath(e.command)
	if err != nil {
		return nil, fmt.Errorf("synthesizer %q not found: %w", e.command, err)
	}

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-e.sem }()

	voice := e.resolveVoice(voiceID)

	args := []string{"--stdout"}
	if voice != "" {
		args = append(args, "-v", voice)
	}
	args = append(args, text)

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("synthesizer run failed: %w", err)
	}
	return stdout.Bytes(), nil
}

// resolveVoice applies the selection policy: explicit id when it exists,
// otherwise the first female-sounding voice, otherwise the engine default.
// An unknown explicit id is logged and skipped, never fatal.
func (e *LocalEngine) resolveVoice(voiceID string) string {
	voices := e.Voices()

	if voiceID != "" {
		for _, voice := range voices {
			if voice.ID == voiceID {
				return voiceID
			}
		}
		log.Printf("[speech] unknown voice %q, continuing without override", voiceID)
	}

	return chooseFemaleVoice(voices)
}

// Voices lists the engine's voice descriptors. It returns an empty list,
// never an error, when the engine is unavailable.
func (e *LocalEngine) Voices() []Voice {
	path, err := exec.LookPath(e.command)
	if err != nil {
		return nil
	}

	output, err := exec.Command(path, "--voices").Output()
	if err != nil {
		log.Printf("[speech] voice listing failed: %v", err)
		return nil
	}
	return parseVoices(output)
}

// parseVoices reads espeak-ng --voices output. Column layout:
// Pty Language Age/Gender VoiceName File Other.
func parseVoices(output []byte) []Voice {
	var voices []Voice
	for i, line := range strings.Split(string(output), "\n") {
		if i == 0 { // header
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		gender := ""
		if parts := strings.Split(fields[2], "/"); len(parts) == 2 {
			gender = parts[1]
		}

		voices = append(voices, Voice{
			ID:     fields[1],
			Name:   fields[3],
			Gender: gender,
		})
	}
	return voices
}

// chooseFemaleVoice scans descriptors for the first female-sounding voice;
// an empty result defers to the engine default.
func chooseFemaleVoice(voices []Voice) string {
	for _, voice := range voices {
		if voice.Gender == "F" {
			return voice.ID
		}
		haystack := strings.ToLower(voice.ID + " " + voice.Name)
		for _, hint := range femaleHints {
			if strings.Contains(haystack, hint) {
				return voice.ID
			}
		}
	}
	return ""
}
