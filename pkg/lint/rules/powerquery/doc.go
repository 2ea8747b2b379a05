// Package powerquery provides checks over Power Query (M) expressions.
//
//   - PQ01: Local File Path - File.Contents / Folder.Files pointing at a drive letter
package powerquery
