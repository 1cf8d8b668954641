// Package paths resolves the on-disk locations gasmail reads from and writes to:
// the TOML config file and the user download directory used for attachments.
package paths
