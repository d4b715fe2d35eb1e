// Package order decides in which order script units may be concatenated.
//
// The Walker follows every statement that runs when a unit loads and
// tracks an eager depth: 0 means "runs now", a positive depth counts the
// pending calls of the function being looked at. Function bodies are
// entered only with depth > 0, so references that sit in closures nobody
// calls at load time never become dependencies. Sort then emits units in
// depth-first postorder over the discovered edges.
package order
