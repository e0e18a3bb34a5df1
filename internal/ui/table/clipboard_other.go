//go:build !((linux || darwin || windows) && !arm && !386 && !ios && !android)

package table

import "github.com/atotto/clipboard"

func readClipboard() (string, error) {
	return clipboard.ReadAll()
}
