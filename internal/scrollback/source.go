package scrollback

import "strings"

// UnknownAuthor labels messages whose author has no usable name.
const UnknownAuthor = "Unknown Author"

// Source is a chat message as delivered by the transport layer.
type Source interface {
	// AuthorName is the label shown on the first line of the message.
	AuthorName() string
	// TopRole is the author's highest role, or "".
	TopRole() string
	// Text is the raw markdown body.
	Text() string
}

// AuthorLabel picks the display name, then the username, then UnknownAuthor.
func AuthorLabel(displayName, username string) string {
	if s := strings.TrimSpace(displayName); s != "" {
		return s
	}
	if s := strings.TrimSpace(username); s != "" {
		return s
	}
	return UnknownAuthor
}

// Message is an in-memory Source for callers that already hold the author
// label and body, such as tests and ad hoc rendering.
type Message struct {
	Author string
	Role   string
	Body   string
}

func (m Message) AuthorName() string { return AuthorLabel(m.Author, "") }
func (m Message) TopRole() string    { return strings.ToLower(m.Role) }
func (m Message) Text() string       { return m.Body }
