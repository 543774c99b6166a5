package playback

import (
	"context"
	"fmt"

	"github.com/futig/mitr-backend/internal/entity"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedSynthesizer keeps recently synthesised clips keyed by voice and text.
type CachedSynthesizer struct {
	next  Synthesizer
	voice string
	cache *lru.Cache[string, *entity.Audio]
}

func NewCachedSynthesizer(next Synthesizer, voice string, size int) (*CachedSynthesizer, error) {
	cache, err := lru.New[string, *entity.Audio](size)
	if err != nil {
		return nil, fmt.Errorf("create clip cache: %w", err)
	}

	return &CachedSynthesizer{
		next:  next,
		voice: voice,
		cache: cache,
	}, nil
}

func (c *CachedSynthesizer) Synthesize(ctx context.Context, text string) (*entity.Audio, error) {
	key := c.voice + "\x00" + text
	if audio, ok := c.cache.Get(key); ok {
		return audio, nil
	}

	audio, err := c.next.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(audio.Data) > 0 {
		c.cache.Add(key, audio)
	}
	return audio, nil
}
