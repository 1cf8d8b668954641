package gmail_tools

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Remote action names understood by the Apps Script endpoint.
const (
	ActionSearch             = "search"
	ActionGetMessage         = "getMessage"
	ActionMarkRead           = "markRead"
	ActionMarkUnread         = "markUnread"
	ActionMoveToLabel        = "moveToLabel"
	ActionDownloadAttachment = "downloadAttachment"
)

// Param is one required, non-empty string argument of an operation.
type Param struct {
	Name        string
	Description string
}

// Operation binds a tool name to its arguments, remote action and response
// builder. Adding a tool means adding a catalog entry.
type Operation struct {
	// Name is the MCP tool name, including any configured prefix.
	Name string

	// BaseName is the name without prefix (e.g. "get_message").
	BaseName    string
	Description string
	Action      string
	Params      []Param

	ReadOnly    bool
	Destructive bool
	Idempotent  bool

	Respond Responder
}

var (
	paramMessageID = Param{
		Name:        "messageId",
		Description: "Gmail message ID, as returned by search_messages",
	}
	paramQuery = Param{
		Name:        "query",
		Description: `Gmail search query, e.g. "subject:Meeting newer_than:1d"`,
	}
	paramLabelName = Param{
		Name:        "labelName",
		Description: "Name of the Gmail label to move the message to",
	}
	paramAttachmentID = Param{
		Name:        "attachmentId",
		Description: "Attachment ID within the message",
	}
)

// Catalog returns the six operations in their fixed order. prefix is
// prepended to every tool name; "gmail_" yields the historical names.
func Catalog(prefix string) []Operation {
	ops := []Operation{
		{
			BaseName: "search_messages",
			Description: "Search Gmail for messages matching a query.\n" +
				"The query uses Gmail search syntax, for example \"subject:Meeting newer_than:1d\".\n" +
				"Returns JSON listing the matching messages (subject, messageId and more).",
			Action:     ActionSearch,
			Params:     []Param{paramQuery},
			ReadOnly:   true,
			Idempotent: true,
			Respond:    respondJSON,
		},
		{
			BaseName:    "get_message",
			Description: "Get the body and details of the message with the given messageId.",
			Action:      ActionGetMessage,
			Params:      []Param{paramMessageID},
			ReadOnly:    true,
			Idempotent:  true,
			Respond:     respondJSON,
		},
		{
			BaseName:    "mark_read",
			Description: "Mark the message with the given messageId as read.",
			Action:      ActionMarkRead,
			Params:      []Param{paramMessageID},
			Idempotent:  true,
			Respond:     respondJSON,
		},
		{
			BaseName:    "mark_unread",
			Description: "Mark the message with the given messageId as unread.",
			Action:      ActionMarkUnread,
			Params:      []Param{paramMessageID},
			Idempotent:  true,
			Respond:     respondJSON,
		},
		{
			BaseName:    "move_to_label",
			Description: "Move the message with the given messageId to the named label.",
			Action:      ActionMoveToLabel,
			Params:      []Param{paramMessageID, paramLabelName},
			Idempotent:  true,
			Respond:     respondJSON,
		},
		{
			BaseName: "download_attachment",
			Description: "Download an attachment of a message and save it to the local download directory.\n" +
				"The file is named after the last path element of the attachment name, so directory parts are dropped.\n" +
				"An existing file with the same name is overwritten. Returns the path of the saved file.",
			Action:      ActionDownloadAttachment,
			Params:      []Param{paramMessageID, paramAttachmentID},
			Destructive: true,
			Idempotent:  true,
			Respond:     respondAttachment,
		},
	}

	for i := range ops {
		ops[i].Name = prefix + ops[i].BaseName
	}
	return ops
}

// Tool converts the operation to its MCP tool definition. Every parameter
// is a required string with minLength 1.
func (op Operation) Tool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(op.Description),
		mcp.WithReadOnlyHintAnnotation(op.ReadOnly),
		mcp.WithDestructiveHintAnnotation(op.Destructive),
		mcp.WithIdempotentHintAnnotation(op.Idempotent),
		mcp.WithOpenWorldHintAnnotation(true),
	}
	for _, p := range op.Params {
		opts = append(opts, mcp.WithString(p.Name,
			mcp.Required(),
			mcp.MinLength(1),
			mcp.Description(p.Description),
		))
	}
	return mcp.NewTool(op.Name, opts...)
}
