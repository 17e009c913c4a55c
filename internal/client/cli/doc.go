// Package cli provides the interactive PostKeeper command-line client.
//
// It wires configuration, the HTTP API client and a REPL. A background
// watcher pings the server's health endpoint and shows whether it is online.
//
// Commands:
//   - register, login, logout
//   - new: create a post with an image
//   - mine, list: list own or all posts
//   - show <uuid>: print one post with its author
//   - save <uuid> <path>: download a post's image
//   - me, rename: view or change the profile name
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
