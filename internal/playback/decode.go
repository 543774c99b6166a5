package playback

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/mitr-backend/internal/entity"
)

var (
	ErrEmptyAudio = errors.New("synthesised audio is empty")
	ErrNotAudio   = errors.New("synthesised payload is not audio")
)

const octetStream = "application/octet-stream"

// decode validates a synthesised payload and picks the content type it is served with.
func decode(key string, audio *entity.Audio) (*Clip, error) {
	if audio == nil || len(audio.Data) == 0 {
		return nil, ErrEmptyAudio
	}

	declared := strings.TrimSpace(strings.SplitN(audio.ContentType, ";", 2)[0])
	sniffed := http.DetectContentType(audio.Data)

	var contentType string
	switch {
	case isAudio(sniffed):
		contentType = sniffed
	case sniffed == octetStream && isAudio(declared):
		// Raw MPEG frames and similar formats are not sniffable.
		contentType = declared
	default:
		return nil, fmt.Errorf("%w: sniffed %q, declared %q", ErrNotAudio, sniffed, audio.ContentType)
	}

	return &Clip{Key: key, Data: audio.Data, ContentType: contentType}, nil
}

func isAudio(contentType string) bool {
	return strings.HasPrefix(contentType, "audio/") || contentType == "application/ogg"
}
