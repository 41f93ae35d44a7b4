// Package zireael implements the core of a deterministic terminal UI
// rendering engine.
//
// This package contains:
//   - A styled cell framebuffer with a clip-stack painter
//   - A drawlist validator and executor for a self-framed binary command
//     stream
//   - A differential VT/ANSI renderer that computes the minimal byte
//     sequence between two framebuffers
//   - An input parser and bounded event queue
//   - Engine, a thin submit/present/poll wrapper over the pieces above
//
// Platform raw-mode entry/exit, terminal I/O, and the ABI wrapper are
// named-by-contract collaborators outside this package; see package host
// and cmd/zireaeldemo
// for a minimal reference wiring of those collaborators over a real
// terminal.
package zireael
