// Package analysis turns a loaded model into the analysis payloads shared by
// the console, the HTTP API and the tool server.
//
// Every analysis is addressed by a Kind and dispatched through one table, so
// each surface only decides how to present the returned value.
package analysis
