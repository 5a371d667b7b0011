package common

import "strings"

// Key is a virtual key code for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
type Key uint32

const (
	KeyA     Key = 65  // A key (ASCII)
	KeyC     Key = 67  // C key (ASCII)
	KeyM     Key = 77  // M key (ASCII)
	KeyR     Key = 82  // R key (ASCII)
	KeyT     Key = 84  // T key (ASCII)
	KeyV     Key = 86  // V key (ASCII)
	KeySpace Key = 32  // Spacebar (ASCII)
	KeyTab   Key = 258 // Tab key (GLFW)
	KeyEnter Key = 257 // Enter key (GLFW)
	KeyEsc   Key = 256 // Escape key (GLFW)
	KeyF1    Key = 290 // F1 key (GLFW)
)

var namedKeys = map[string]Key{
	"SPACE":  KeySpace,
	"TAB":    KeyTab,
	"ENTER":  KeyEnter,
	"ESCAPE": KeyEsc,
	"ESC":    KeyEsc,
	"F1":     KeyF1,
	"F2":     KeyF1 + 1,
	"F3":     KeyF1 + 2,
	"F4":     KeyF1 + 3,
	"F5":     KeyF1 + 4,
	"F6":     KeyF1 + 5,
	"F7":     KeyF1 + 6,
	"F8":     KeyF1 + 7,
	"F9":     KeyF1 + 8,
	"F10":    KeyF1 + 9,
	"F11":    KeyF1 + 10,
	"F12":    KeyF1 + 11,
}

// KeyFromName resolves a key name such as "V", "7" or "F2" to its key code.
// Single letters and digits map to their ASCII value. Names are case-insensitive.
//
// Parameters:
//   - name: the key name
//
// Returns:
//   - Key: the resolved key code
//   - bool: false if the name is not recognized
func KeyFromName(name string) (Key, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if len(n) == 1 {
		c := n[0]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return Key(c), true
		}
		return 0, false
	}
	k, ok := namedKeys[n]
	return k, ok
}
