// Package watch rechecks Prose source files when they change on disk.
//
// A Watcher listens for filesystem events on the configured paths,
// debounces rapid saves per file, and invokes a check callback with
// the path of each file that needs rechecking. An optional cron
// schedule triggers periodic full rescans so files that change
// through mechanisms fsnotify cannot see (network mounts, some
// editors' atomic renames) are still picked up.
package watch
