package journal

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WaitForJournal blocks until a journal file of terminalID dated on or after
// since is created or written in dir, and returns it. It returns ctx.Err()
// when ctx is cancelled first.
//
// Writes to the current day's file count, so a journal that is still
// growing wakes the caller as new transactions are appended.
func WaitForJournal(ctx context.Context, dir, terminalID string, since File) (File, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return File{}, err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return File{}, err
	}

	// A newer day may have landed between the caller's last scan and Add.
	if f, ok := newerOnDisk(dir, terminalID, since); ok {
		return f, nil
	}

	for {
		select {
		case <-ctx.Done():
			return File{}, ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return File{}, ctx.Err()
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			f, ok := ParseFileName(event.Name)
			if !ok || f.TerminalID != terminalID || f.Date.Before(since.Date) {
				continue
			}
			return f, nil

		case _, ok := <-watcher.Errors:
			if !ok {
				return File{}, ctx.Err()
			}
			// Watcher errors are non-fatal; keep waiting.
		}
	}
}

// newerOnDisk reports a journal of terminalID dated strictly after since.
func newerOnDisk(dir, terminalID string, since File) (File, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return File{}, false
	}
	for _, e := range entries {
		f, ok := ParseFileName(filepath.Join(dir, e.Name()))
		if ok && f.TerminalID == terminalID && f.Date.After(since.Date) {
			return f, true
		}
	}
	return File{}, false
}
