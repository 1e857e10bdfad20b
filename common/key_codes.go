package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW = 87 // W key (ASCII)
	KeyA = 65 // A key (ASCII)
	KeyS = 83 // S key (ASCII)
	KeyD = 68 // D key (ASCII)
	KeyQ = 81 // Q key (ASCII)
	KeyE = 69 // E key (ASCII)
	KeyG = 71 // G key (ASCII)
	KeyL = 76 // L key (ASCII)
	KeyP = 80 // P key (ASCII)
	KeyR = 82 // R key (ASCII)
	KeyZ = 90 // Z key (ASCII)
	KeyX = 88 // X key (ASCII)
	KeyC = 67 // C key (ASCII)
	KeyF = 70 // F key (ASCII)

	KeyMinus  = 45  // - key (ASCII)
	KeyEqual  = 61  // = key (ASCII)
	KeyPageUp = 266 // Page Up (GLFW)
	KeyHome   = 268 // Home (GLFW)
	KeyDown   = 264 // Down arrow (GLFW)
	KeyUp     = 265 // Up arrow (GLFW)

	Key1 = 49 // 1 key (ASCII)
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
	Key4 = 52 // 4 key (ASCII)
)
