// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Role tags a conversation turn with its speaker.
type Role string

const (
	RolePersona Role = "persona"
	RoleExpert  Role = "expert"
)

// Turn is one role-tagged message in a dialogue transcript.
type Turn struct {
	// Role identifies the speaker: persona or expert.
	Role Role `json:"role" yaml:"role"`

	// Content is the message text.
	Content string `json:"content" yaml:"content"`
}

// Transcript is the ordered dialogue of one perspective with the expert.
type Transcript struct {
	// Perspective is the persona description that drove the dialogue.
	Perspective string `json:"perspective" yaml:"perspective"`

	// Turns lists the exchange in order, seed prompt excluded.
	Turns []Turn `json:"turns" yaml:"turns"`
}
