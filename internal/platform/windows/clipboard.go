//go:build windows

package windows

import (
	"fmt"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procOpenClipboard    = user32.NewProc("OpenClipboard")
	procCloseClipboard   = user32.NewProc("CloseClipboard")
	procEmptyClipboard   = user32.NewProc("EmptyClipboard")
	procGetClipboardData = user32.NewProc("GetClipboardData")
	procSetClipboardData = user32.NewProc("SetClipboardData")
	procGlobalAlloc      = kernel32.NewProc("GlobalAlloc")
	procGlobalLock       = kernel32.NewProc("GlobalLock")
	procGlobalUnlock     = kernel32.NewProc("GlobalUnlock")
)

const (
	cfUnicodeText = 13
	gmemMoveable  = 0x0002
)

// Clipboard implements engine.Clipboard over the Win32 clipboard API's
// CF_UNICODETEXT format. Image support (CF_DIB) is left for a future
// iteration; SetClipboardImage returns an error until then.
type Clipboard struct{}

// NewClipboard returns a Win32 clipboard wrapper.
func NewClipboard() *Clipboard { return &Clipboard{} }

func (c *Clipboard) GetClipboard() (string, bool) {
	if ok, _, _ := procOpenClipboard.Call(0); ok == 0 {
		return "", false
	}
	defer procCloseClipboard.Call()

	h, _, _ := procGetClipboardData.Call(cfUnicodeText)
	if h == 0 {
		return "", false
	}
	ptr, _, _ := procGlobalLock.Call(h)
	if ptr == 0 {
		return "", false
	}
	defer procGlobalUnlock.Call(h)

	text := utf16PtrToString((*uint16)(unsafe.Pointer(ptr)))
	return text, true
}

func (c *Clipboard) SetClipboard(text string) error {
	if ok, _, _ := procOpenClipboard.Call(0); ok == 0 {
		return fmt.Errorf("windows: OpenClipboard failed")
	}
	defer procCloseClipboard.Call()
	procEmptyClipboard.Call()

	u16 := utf16.Encode([]rune(text + "\x00"))
	size := uintptr(len(u16) * 2)

	h, _, _ := procGlobalAlloc.Call(gmemMoveable, size)
	if h == 0 {
		return fmt.Errorf("windows: GlobalAlloc failed")
	}
	ptr, _, _ := procGlobalLock.Call(h)
	if ptr == 0 {
		return fmt.Errorf("windows: GlobalLock failed")
	}
	dst := unsafe.Slice((*uint16)(unsafe.Pointer(ptr)), len(u16))
	copy(dst, u16)
	procGlobalUnlock.Call(h)

	if res, _, _ := procSetClipboardData.Call(cfUnicodeText, h); res == 0 {
		return fmt.Errorf("windows: SetClipboardData failed")
	}
	return nil
}

func (c *Clipboard) SetClipboardImage(path string) error {
	return fmt.Errorf("windows: image clipboard not implemented")
}

func utf16PtrToString(p *uint16) string {
	if p == nil {
		return ""
	}
	end := unsafe.Pointer(p)
	n := 0
	for *(*uint16)(unsafe.Add(end, uintptr(n)*2)) != 0 {
		n++
	}
	slice := unsafe.Slice(p, n)
	return string(utf16.Decode(slice))
}
