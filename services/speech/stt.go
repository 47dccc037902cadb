// Package speech wraps the transcription and synthesis collaborators behind
// narrow interfaces so sessions can be driven by stubs in tests.
package speech

import (
	"context"
	"sync"

	speechapi "cloud.google.com/go/speech/apiv1"
	"google.golang.org/api/option"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"
)

// Transcript is one transcription event. Only Final transcripts drive the
// dialogue; interim events are discarded by the consumer.
type Transcript struct {
	Text  string
	Final bool
}

// Stream is one live transcription session over a duplex channel.
type Stream interface {
	// Send forwards one frame of caller audio.
	Send(audio []byte) error
	// Results delivers transcription events until the stream ends, then
	// closes.
	Results() <-chan Transcript
	Close() error
}

// Transcriber opens transcription streams, one per call.
type Transcriber interface {
	OpenStream(ctx context.Context) (Stream, error)
}

// GoogleTranscriber implements Transcriber with Cloud Speech streaming
// recognition, configured for the 8 kHz μ-law mono audio telephony media
// streams carry.
type GoogleTranscriber struct {
	credentialsFile string
	languageCode    string
}

func NewGoogleTranscriber(credentialsFile, languageCode string) *GoogleTranscriber {
	if languageCode == "" {
		languageCode = "en-US"
	}
	return &GoogleTranscriber{credentialsFile: credentialsFile, languageCode: languageCode}
}

func (t *GoogleTranscriber) OpenStream(ctx context.Context) (Stream, error) {
	client, err := speechapi.NewClient(ctx, option.WithCredentialsFile(t.credentialsFile))
	if err != nil {
		return nil, err
	}

	stream, err := client.StreamingRecognize(ctx)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	// The first request configures the stream; audio follows.
	err = stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:          speechpb.RecognitionConfig_MULAW,
					SampleRateHertz:   8000,
					LanguageCode:      t.languageCode,
					AudioChannelCount: 1,
				},
				InterimResults: true,
			},
		},
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	gs := &googleStream{
		client:  client,
		stream:  stream,
		results: make(chan Transcript, 16),
	}
	go gs.recvLoop()
	return gs, nil
}

type googleStream struct {
	client  *speechapi.Client
	stream  speechpb.Speech_StreamingRecognizeClient
	results chan Transcript

	mu     sync.Mutex
	closed bool
}

func (s *googleStream) Send(audio []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: audio,
		},
	})
}

func (s *googleStream) Results() <-chan Transcript {
	return s.results
}

func (s *googleStream) recvLoop() {
	defer close(s.results)
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			return
		}
		for _, result := range resp.Results {
			if len(result.Alternatives) == 0 {
				continue
			}
			s.results <- Transcript{
				Text:  result.Alternatives[0].Transcript,
				Final: result.IsFinal,
			}
		}
	}
}

func (s *googleStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	_ = s.stream.CloseSend()
	return s.client.Close()
}
