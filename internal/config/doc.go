// Package config loads the gateway configuration: the Apps Script endpoint URL,
// the shared API key and a few local settings.
//
// Values are layered, lowest precedence first:
//
//  1. $XDG_CONFIG_HOME/gasmail/config.toml (optional, ${VAR} placeholders expand from the environment)
//  2. Environment: GAS_ENDPOINT, VALID_API_KEY, GASMAIL_DOWNLOAD_DIR, GASMAIL_TOOL_PREFIX
//  3. Command-line flags, applied by the caller
//
// Endpoint and API key are required. A Config that fails Validate must stop the
// process before any MCP connection is accepted.
package config
