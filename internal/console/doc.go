// Package console implements the interactive menu.
//
// Every menu entry is a Command bound to an action in a dispatch table.
// Actions return a value and the console renders it through the shared
// output renderer, so the same analyses back the menu and the HTTP API.
package console
