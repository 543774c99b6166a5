package entity

import "encoding/json"

// Audio is a synthesised speech clip.
type Audio struct {
	Data        []byte
	ContentType string
}

// ProfileReply is the screening backend's answer to a submitted profile.
type ProfileReply struct {
	UserProfile json.RawMessage `json:"user_profile"`
}

// AnswerReply is the screening backend's answer to a submitted answer.
type AnswerReply struct {
	Reply      string
	Completed  bool
	Evaluation *Evaluation
}
