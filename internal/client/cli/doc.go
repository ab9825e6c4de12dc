// Package cli provides the interactive chat command-line client.
//
// It wires configuration, the local credential cache, the gateway REST API
// and one live chat session behind a small REPL:
//
//   - signup / login / logout
//   - users: who is registered and who is online
//   - chat <peer>: pick the conversation in view
//   - say <text>, or plain text once a peer is selected
//   - history: the selected conversation so far
//
// A credential cached by a previous run is verified on start and, when
// still valid, the session reconnects without prompting.
package cli
