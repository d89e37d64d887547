// Package watch reloads the dataset when its file changes. Bursts of
// filesystem events, such as an editor's write-rename-chmod sequence, are
// debounced into a single reload.
package watch
