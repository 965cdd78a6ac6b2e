package api

// Channel defines the standardized lifecycle interface for communication platforms.
type Channel interface {
	ID() string
	Start(ctx ChannelContext) error
	Stop() error
	SendText(session SessionContext, text string) error
	SendFile(session SessionContext, file OutgoingFile) error
	SendVoice(session SessionContext, audio []byte) error
}

// SignalingChannel is an optional extension of the Channel interface for
// platforms that support control signals (e.g., typing indicators).
type SignalingChannel interface {
	Channel
	// SendSignal transmits a control signal (e.g., "typing") to the target
	// session to change UI state.
	SendSignal(session SessionContext, signal string) error
}

// Announcer is an optional extension of the Channel interface for platforms
// that can deliver proactive notices (startup/shutdown greetings) without an
// originating session. Channels without a configured target report success
// and do nothing.
type Announcer interface {
	Announce(text string) error
}

// ChannelContext provides the interface for a Channel implementation to
// communicate back with the Gateway core.
type ChannelContext interface {
	MessageSender
	OnMessage(channelID string, msg *UnifiedMessage)
}

// MessageSender defines the raw transport capabilities for pushing data
// back to a channel. It carries no history or presentation semantics; those
// belong to the handler's response path.
type MessageSender interface {
	SendText(session SessionContext, text string) error
	SendFile(session SessionContext, file OutgoingFile) error
	SendVoice(session SessionContext, audio []byte) error
	SendSignal(session SessionContext, signal string) error
}

// UnifiedMessage defines the standardized internal data structure for all
// incoming messages within the Spring system.
type UnifiedMessage struct {
	Session SessionContext  // Contextual information about the source (User, Chat)
	Content string          // Standardized text content of the message
	Photo   *FileAttachment // Photo attachment, if any
	Voice   *FileAttachment // Voice note attachment, if any (transcribed before dispatch)
	Raw     any             // Optional storage for the original platform-specific payload
	CycleID string          // Unique identifier for grouping logs of this message cycle
}

// SessionContext encapsulates identity and routing information for a specific
// conversation unit on a specific communication channel.
type SessionContext struct {
	ChannelID string // Identifier of the channel that originated the session (e.g., "telegram")
	UserID    string // Platform-specific unique identifier for the user
	ChatID    string // Platform-specific identifier for the chat (may match UserID for DMs)
	Username  string // Display name of the user as provided by the platform
}

// FileAttachment represents a single file or binary object uploaded by a user.
type FileAttachment struct {
	Filename string // Original name of the uploaded file
	MimeType string // MIME type descriptor (e.g., "image/jpeg", "audio/ogg")
	Data     []byte // Raw binary content of the file
}

// OutgoingFile represents a file produced by an action and sent to the user.
type OutgoingFile struct {
	Name    string // Suggested filename (e.g., "NDA John Doe.pdf")
	Data    []byte // Raw file content
	Caption string // Optional caption shown next to the file
}

// Response is what the core emits back to the user through the response
// channel. If File is set, the file is sent with Text as its caption;
// otherwise Text is sent as a plain (or voice-converted) message.
// Unless SuppressHistory is set, the Text form of the response is appended
// to the conversation history as an assistant turn.
type Response struct {
	Text            string
	File            *OutgoingFile
	SuppressHistory bool
}

// MessageHandler defines the function signature for processing incoming messages.
type MessageHandler func(*UnifiedMessage)

// OnMessage allows MessageHandler to satisfy the MessageProcessor interface.
func (h MessageHandler) OnMessage(msg *UnifiedMessage) {
	h(msg)
}

// MessageProcessor defines the interface for components that process incoming messages.
type MessageProcessor interface {
	OnMessage(msg *UnifiedMessage)
}

// SenderAware defines an interface for components that require a MessageSender
// to be injected after the gateway is assembled.
type SenderAware interface {
	SetSender(sender MessageSender)
}
