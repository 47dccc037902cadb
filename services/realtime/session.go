// Package realtime runs one duplex media session per live call: caller
// audio is relayed to the transcription stream, finalized transcripts are
// answered through the replier, and synthesized replies are injected back
// into the call out-of-band.
package realtime

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"

	"go.uber.org/zap"

	"cafedesk/services/speech"
)

const repeatApology = "Sorry, I'm having trouble processing that. Could you please repeat?"

// Injector plays synthesized audio into a live call.
type Injector interface {
	PlayAudio(ctx context.Context, callSID, audioURL string) error
}

// Speaker converts reply text into a playable public URL.
type Speaker interface {
	URLFor(ctx context.Context, text string) (string, error)
}

// Session owns one call's realtime state. HandleStart, HandleMedia and
// Close are invoked sequentially from the media socket's read loop; the
// transcript consumer runs on its own goroutine so a slow
// reply-synthesize-inject cycle never stalls audio relay.
type Session struct {
	Transcriber speech.Transcriber
	Speaker     Speaker
	Injector    Injector
	Replier     *Replier
	Registry    *Registry
	Greeting    string
	Logger      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	callSID   string
	streamSID string
	stream    speech.Stream

	// greeted gates the inbound relay: no caller audio reaches the
	// transcriber before the greeting is injected, so the bot never
	// transcribes (or races) its own greeting.
	greeted bool

	// messageCount is only touched by the consumer goroutine.
	messageCount int

	closeOnce sync.Once
	done      chan struct{}
}

// Start binds the session to its call, registers it, opens the
// transcription stream and speaks the greeting. The greeting is attempted
// exactly once; relay opens afterwards either way so the call is not left
// deaf when synthesis fails.
func (s *Session) Start(parent context.Context, callSID, streamSID string) {
	s.ctx, s.cancel = context.WithCancel(parent)
	s.done = make(chan struct{})
	s.callSID = callSID
	s.streamSID = streamSID

	if s.Registry != nil {
		s.Registry.add(callSID, s)
	}

	stream, err := s.Transcriber.OpenStream(s.ctx)
	if err != nil {
		s.logger().Warn("failed to open transcription stream", zap.String("callSid", callSID), zap.Error(err))
	} else {
		s.stream = stream
		go s.consumeTranscripts(stream)
	}

	s.speak(s.Greeting)
	s.greeted = true
}

// HandleMedia relays one base64 μ-law frame to the transcriber. Frames that
// arrive before the greeting has been injected are dropped.
func (s *Session) HandleMedia(payloadB64 string) {
	if !s.greeted || s.stream == nil || payloadB64 == "" {
		return
	}
	audio, err := base64.StdEncoding.DecodeString(payloadB64)
	if err != nil {
		return
	}
	if err := s.stream.Send(audio); err != nil {
		s.logger().Warn("failed to relay audio frame", zap.String("callSid", s.callSID), zap.Error(err))
	}
}

// Close tears the session down: in-flight collaborator calls are cancelled,
// the transcription stream is closed and the registry entry removed. Safe to
// call more than once (stream stop and socket close both land here).
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		if s.stream != nil {
			_ = s.stream.Close()
		}
		if s.Registry != nil {
			s.Registry.remove(s.callSID)
		}
		if s.done != nil {
			close(s.done)
		}
	})
}

// Done is closed when the session has been torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) consumeTranscripts(stream speech.Stream) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case tr, ok := <-stream.Results():
			if !ok {
				return
			}
			if !tr.Final || strings.TrimSpace(tr.Text) == "" {
				continue
			}
			s.messageCount++
			s.logger().Info("final transcript",
				zap.String("callSid", s.callSID),
				zap.String("transcript", tr.Text),
			)
			reply := s.Replier.Reply(s.ctx, tr.Text, s.messageCount)
			s.speak(reply)
		}
	}
}

// speak synthesizes text and injects it into the call. Every failure is
// local: the session keeps running and the caller is asked to repeat.
func (s *Session) speak(text string) {
	url, err := s.Speaker.URLFor(s.ctx, text)
	if err != nil {
		s.logger().Warn("reply synthesis failed", zap.String("callSid", s.callSID), zap.Error(err))
		if text == repeatApology {
			return
		}
		url, err = s.Speaker.URLFor(s.ctx, repeatApology)
		if err != nil {
			return
		}
	}
	if err := s.Injector.PlayAudio(s.ctx, s.callSID, url); err != nil {
		s.logger().Warn("failed to inject reply audio", zap.String("callSid", s.callSID), zap.Error(err))
	}
}

func (s *Session) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
