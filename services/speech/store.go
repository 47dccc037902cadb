package speech

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AudioStore hosts a synthesized reply somewhere the telephony provider can
// fetch it, and returns the public URL.
type AudioStore interface {
	Put(ctx context.Context, name string, audio []byte) (string, error)
}

// LocalAudioStore writes replies under the static dir served by the /audio
// route. The public host must be reachable by the telephony provider.
type LocalAudioStore struct {
	Dir        string
	PublicHost string
}

func (s *LocalAudioStore) Put(_ context.Context, name string, audio []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio dir: %w", err)
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	return strings.TrimRight(s.PublicHost, "/") + "/audio/" + name, nil
}

// CloudinaryAudioStore uploads replies to Cloudinary instead of serving them
// locally, for deployments where the app itself sits behind a private host.
type CloudinaryAudioStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryAudioStore(cloudinaryURL string) (*CloudinaryAudioStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryAudioStore{cld: cld}, nil
}

func (s *CloudinaryAudioStore) Put(ctx context.Context, name string, audio []byte) (string, error) {
	// Cloudinary files audio under the video resource type.
	resp, err := s.cld.Upload.Upload(ctx, bytes.NewReader(audio), uploader.UploadParams{
		PublicID:     strings.TrimSuffix(name, filepath.Ext(name)),
		Folder:       "cafedesk-replies",
		ResourceType: "video",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	return resp.SecureURL, nil
}

// ReplyAudio synthesizes reply text and hosts the result. URLs are cached in
// Redis by text hash so fixed prompts (the greeting, apologies) skip the
// synthesis round trip on later calls.
type ReplyAudio struct {
	Synth  Synthesizer
	Store  AudioStore
	Cache  *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
}

func (r *ReplyAudio) URLFor(ctx context.Context, text string) (string, error) {
	key := "tts:" + hashText(text)
	if r.Cache != nil {
		if url, err := r.Cache.Get(ctx, key).Result(); err == nil && url != "" {
			return url, nil
		}
	}

	audio, err := r.Synth.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("reply_%s.mp3", uuid.New().String())
	url, err := r.Store.Put(ctx, name, audio)
	if err != nil {
		return "", err
	}

	if r.Cache != nil {
		if err := r.Cache.Set(ctx, key, url, r.TTL).Err(); err != nil && r.Logger != nil {
			r.Logger.Warn("failed to cache reply audio URL", zap.Error(err))
		}
	}
	return url, nil
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
