package llm

// Turn is a history entry as clients send it. Two envelopes are accepted:
// a flat {role, content} pair or a {role, parts: [{text}]} envelope.
// Turns are normalized into Messages before use.
type Turn struct {
	Role    string  `json:"role"`
	Content *string `json:"content,omitempty"`
	Parts   []Part  `json:"parts,omitempty"`
}

// Part is one text segment of a parts envelope
type Part struct {
	Text string `json:"text"`
}
