package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/url"
)

// Body encodes a request payload once so it can be replayed on every retry attempt.
type Body interface {
	Encode() (contentType string, payload []byte, err error)
}

type JSONBody struct {
	Value any
}

func (b JSONBody) Encode() (string, []byte, error) {
	data, err := json.Marshal(b.Value)
	if err != nil {
		return "", nil, fmt.Errorf("marshal request body: %w", err)
	}
	return "application/json", data, nil
}

// FormBody is an application/x-www-form-urlencoded payload.
type FormBody url.Values

func (b FormBody) Encode() (string, []byte, error) {
	return "application/x-www-form-urlencoded", []byte(url.Values(b).Encode()), nil
}

type PrepareMultipart func(*multipart.Writer) error

// MultipartBody is a multipart/form-data payload written by Prepare.
type MultipartBody struct {
	Prepare PrepareMultipart
}

func (b MultipartBody) Encode() (string, []byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if b.Prepare != nil {
		if err := b.Prepare(writer); err != nil {
			return "", nil, fmt.Errorf("prepare multipart body: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return "", nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return writer.FormDataContentType(), body.Bytes(), nil
}

// Fields returns a PrepareMultipart that writes plain form fields in the given order.
func Fields(pairs ...string) PrepareMultipart {
	return func(w *multipart.Writer) error {
		if len(pairs)%2 != 0 {
			return fmt.Errorf("odd number of multipart field arguments: %d", len(pairs))
		}
		for i := 0; i < len(pairs); i += 2 {
			if err := w.WriteField(pairs[i], pairs[i+1]); err != nil {
				return fmt.Errorf("write field %s: %w", pairs[i], err)
			}
		}
		return nil
	}
}
