package speech

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type stubSynth struct {
	audio []byte
	err   error
	calls int
}

func (s *stubSynth) Synthesize(_ context.Context, _ string) ([]byte, error) {
	s.calls++
	return s.audio, s.err
}

func TestLocalAudioStorePut(t *testing.T) {
	dir := t.TempDir()
	store := &LocalAudioStore{Dir: filepath.Join(dir, "static"), PublicHost: "https://voice.test/"}

	url, err := store.Put(context.Background(), "reply_1.mp3", []byte("mp3bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "https://voice.test/audio/reply_1.mp3" {
		t.Fatalf("url = %q, want trailing slash trimmed and /audio path", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "static", "reply_1.mp3"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "mp3bytes" {
		t.Fatalf("file contents = %q, want audio bytes", data)
	}
}

func TestReplyAudioSynthesizesAndHosts(t *testing.T) {
	synth := &stubSynth{audio: []byte("mp3bytes")}
	r := &ReplyAudio{
		Synth: synth,
		Store: &LocalAudioStore{Dir: t.TempDir(), PublicHost: "https://voice.test"},
	}

	url, err := r.URLFor(context.Background(), "Hello!")
	if err != nil {
		t.Fatalf("URLFor: %v", err)
	}
	if !strings.HasPrefix(url, "https://voice.test/audio/reply_") || !strings.HasSuffix(url, ".mp3") {
		t.Fatalf("url = %q, want hosted reply URL", url)
	}
	if synth.calls != 1 {
		t.Fatalf("synth calls = %d, want 1", synth.calls)
	}
}

func TestReplyAudioSynthesisErrorPropagates(t *testing.T) {
	r := &ReplyAudio{
		Synth: &stubSynth{err: errors.New("tts unavailable")},
		Store: &LocalAudioStore{Dir: t.TempDir(), PublicHost: "https://voice.test"},
	}
	if _, err := r.URLFor(context.Background(), "Hello!"); err == nil {
		t.Fatalf("err = nil, want synthesis error")
	}
}

func TestHashTextIsStable(t *testing.T) {
	if hashText("hello") != hashText("hello") {
		t.Fatalf("hashText not deterministic")
	}
	if hashText("hello") == hashText("hullo") {
		t.Fatalf("distinct texts collided")
	}
}
