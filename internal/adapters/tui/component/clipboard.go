package component

import "github.com/atotto/clipboard"

// clipboardWrite is swapped out in tests.
var clipboardWrite = clipboard.WriteAll

// CopyToClipboard copies text to the system clipboard.
func CopyToClipboard(text string) error {
	return clipboardWrite(text)
}
