// Package gmail_tools exposes the Apps Script Gmail endpoint as MCP tools.
//
// The catalog holds six operations, each a thin wrapper around one remote
// action:
//
//   - search_messages (query) -> search
//   - get_message (messageId) -> getMessage
//   - mark_read (messageId) -> markRead
//   - mark_unread (messageId) -> markUnread
//   - move_to_label (messageId, labelName) -> moveToLabel
//   - download_attachment (messageId, attachmentId) -> downloadAttachment
//
// A call passes through validation, one remote GET and a response builder.
// The first failing stage ends the call with an error-flagged text result
// ("Error: <message>"); the remote is never called when validation fails.
//
// Results of the first five operations are the remote JSON re-indented with
// two spaces and the original key order. download_attachment decodes
// attachment.base64 and writes it to the download directory under the base
// name of attachment.name, then reports the absolute path.
//
// Dispatcher.Call answers a name outside the catalog with
// "Error: unknown tool: <name>". Over MCP such a call never reaches the
// dispatcher: mcp-go rejects it with a JSON-RPC invalid params error
// ("tool '<name>' not found") before any tool handler runs.
//
// mcp-go sorts tools/list by name; register CatalogOrder with
// server.WithToolFilter to advertise the catalog order instead.
package gmail_tools
