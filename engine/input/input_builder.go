package input

// DefaultFovStep is the fov change applied by the fov keys and one scroll notch.
const DefaultFovStep float32 = 0.05

// HandlerBuilderOption is a functional option for configuring a Handler.
type HandlerBuilderOption func(h *handler)

// WithFovStep sets the fov change applied by the fov keys and one scroll notch.
//
// Parameters:
//   - step: the fov increment, ignored unless positive
//
// Returns:
//   - HandlerBuilderOption: option function to apply
func WithFovStep(step float32) HandlerBuilderOption {
	return func(h *handler) {
		if step > 0 {
			h.fovStep = step
		}
	}
}

// WithKeyBinding binds keyCode to action, replacing any default binding for that key.
// A nil action removes the binding.
//
// Parameters:
//   - keyCode: a GLFW key code
//   - action: the action to run; the handler requests a frame after it
//
// Returns:
//   - HandlerBuilderOption: option function to apply
func WithKeyBinding(keyCode uint32, action func(target Target)) HandlerBuilderOption {
	return func(h *handler) {
		if action == nil {
			delete(h.keymap, keyCode)
			return
		}
		h.keymap[keyCode] = func(h *handler) { action(h.target) }
	}
}
