package workflow

import "github.com/atotto/clipboard"

// SystemClipboard writes through the OS clipboard. On headless hosts with
// no clipboard provider Copy reports false and the caller moves on.
type SystemClipboard struct{}

func (SystemClipboard) Copy(text string) bool {
	return clipboard.WriteAll(text) == nil
}
