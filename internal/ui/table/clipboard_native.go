//go:build (linux || darwin || windows) && !arm && !386 && !ios && !android

package table

import "github.com/aymanbagabas/go-nativeclipboard"

func readClipboard() (string, error) {
	b, err := nativeclipboard.Text.Read()
	return string(b), err
}
