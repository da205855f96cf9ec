//go:build windows

package simulate

import (
	"context"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/evcode"
)

// Grounded on LanternOps-breeze's agent/internal/remote-desktop input
// handler: the mouseInput/keybdInput/input struct layout and
// user32.dll!SendInput call shape, adapted here to drive from evdev codes
// (this module's canonical vocabulary, §3) instead of a VK-by-name map.
var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseEventFMove      = 0x0001
	mouseEventFLeftDown  = 0x0002
	mouseEventFLeftUp    = 0x0004
	mouseEventFRightDown = 0x0008
	mouseEventFRightUp   = 0x0010
	mouseEventFMidDown   = 0x0020
	mouseEventFMidUp     = 0x0040
	mouseEventFWheel     = 0x0800
	mouseEventFAbsolute  = 0x8000

	keyEventFKeyUp    = 0x0002
	keyEventFScanCode = 0x0008
)

type mouseInput struct {
	dx, dy      int32
	mouseData   uint32
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type keybdInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type rawInput struct {
	inputType uint32
	_         [4]byte
	data      [32]byte // large enough for mouseInput (32 bytes) or keybdInput (24)
}

// SendInputProvider drives Windows low-level input injection via
// user32!SendInput (§4.7 "Windows: SendInput batches").
type SendInputProvider struct {
	pressed *PressedSet
	width   int32
	height  int32
}

// NewSendInputProvider returns a Windows simulation provider.
func NewSendInputProvider() *SendInputProvider {
	return &SendInputProvider{pressed: NewPressedSet()}
}

func (s *SendInputProvider) Initialize(ctx context.Context, width, height int32) error {
	s.width, s.height = width, height
	return nil
}

func sendInputs(inputs []rawInput) error {
	if len(inputs) == 0 {
		return nil
	}
	ret, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if ret == 0 {
		return fmt.Errorf("simulate: SendInput failed: %w", err)
	}
	return nil
}

func mouseRawInput(mi mouseInput) rawInput {
	var ri rawInput
	ri.inputType = inputMouse
	*(*mouseInput)(unsafe.Pointer(&ri.data[0])) = mi
	return ri
}

func keybdRawInput(ki keybdInput) rawInput {
	var ri rawInput
	ri.inputType = inputKeyboard
	*(*keybdInput)(unsafe.Pointer(&ri.data[0])) = ki
	return ri
}

func (s *SendInputProvider) MoveAbsolute(ctx context.Context, x, y int32) error {
	if s.width <= 0 || s.height <= 0 {
		return crossmacro.ErrSimulationFailed
	}
	normX := int32((int64(x) * 65536) / int64(s.width))
	normY := int32((int64(y) * 65536) / int64(s.height))
	return sendInputs([]rawInput{mouseRawInput(mouseInput{
		dx: normX, dy: normY,
		dwFlags: mouseEventFMove | mouseEventFAbsolute,
	})})
}

func (s *SendInputProvider) MoveRelative(ctx context.Context, dx, dy int32) error {
	return sendInputs([]rawInput{mouseRawInput(mouseInput{dx: dx, dy: dy, dwFlags: mouseEventFMove})})
}

var sendInputButtonFlags = map[crossmacro.Button][2]uint32{
	crossmacro.ButtonLeft:   {mouseEventFLeftDown, mouseEventFLeftUp},
	crossmacro.ButtonRight:  {mouseEventFRightDown, mouseEventFRightUp},
	crossmacro.ButtonMiddle: {mouseEventFMidDown, mouseEventFMidUp},
}

func (s *SendInputProvider) EmitButton(ctx context.Context, btn crossmacro.Button, pressed bool) error {
	flags, ok := sendInputButtonFlags[btn]
	if !ok {
		return nil
	}
	flag := flags[1]
	if pressed {
		flag = flags[0]
	}
	if err := sendInputs([]rawInput{mouseRawInput(mouseInput{dwFlags: flag})}); err != nil {
		return err
	}
	s.pressed.TrackButton(btn, pressed)
	return nil
}

func (s *SendInputProvider) EmitScroll(ctx context.Context, value int32) error {
	return sendInputs([]rawInput{mouseRawInput(mouseInput{
		dwFlags:   mouseEventFWheel,
		mouseData: uint32(value * 120),
	})})
}

// EmitKey takes an evdev code and translates to a Windows virtual-key via
// evcode's table before injecting. Scan-code population mirrors the
// teacher's vkToScanCode call, required by several Windows apps to accept
// synthetic key events.
func (s *SendInputProvider) EmitKey(ctx context.Context, code int32, pressed bool) error {
	vk := evdevToVK(uint16(code))
	if vk == 0 {
		return fmt.Errorf("simulate: %w: no VK mapping for evdev code %d", crossmacro.ErrSimulationFailed, code)
	}
	scan, _, _ := user32.NewProc("MapVirtualKeyW").Call(uintptr(vk), 0) // MAPVK_VK_TO_VSC
	flags := uint32(keyEventFScanCode)
	if !pressed {
		flags |= keyEventFKeyUp
	}
	if err := sendInputs([]rawInput{keybdRawInput(keybdInput{wVk: vk, wScan: uint16(scan), dwFlags: flags})}); err != nil {
		return err
	}
	s.pressed.TrackKey(code, pressed)
	return nil
}

func (s *SendInputProvider) ReleaseAll(ctx context.Context) error {
	keys, buttons := s.pressed.Drain()
	for _, code := range keys {
		if err := s.EmitKey(ctx, code, false); err != nil {
			return err
		}
	}
	for _, btn := range buttons {
		if err := s.EmitButton(ctx, btn, false); err != nil {
			return err
		}
	}
	for _, btn := range FailsafeButtons {
		_ = s.EmitButton(ctx, btn, false)
	}
	return nil
}

func (s *SendInputProvider) Dispose(ctx context.Context) error {
	return s.ReleaseAll(ctx)
}

// evdevToVK maps the evdev codes evcode.KeyName recognizes onto Windows
// virtual-key codes. Only the subset this module actually synthesizes
// (letters, digits, the expansion core's special keys) needs an entry.
func evdevToVK(code uint16) uint16 {
	switch {
	case code >= 16 && code <= 25: // Q..P row
		return []uint16{'Q', 'W', 'E', 'R', 'T', 'Y', 'U', 'I', 'O', 'P'}[code-16]
	case code >= 30 && code <= 38: // A..L row
		return []uint16{'A', 'S', 'D', 'F', 'G', 'H', 'J', 'K', 'L'}[code-30]
	case code >= 44 && code <= 50: // Z..M row
		return []uint16{'Z', 'X', 'C', 'V', 'B', 'N', 'M'}[code-44]
	}
	switch code {
	case evcode.KEY_ENTER:
		return 0x0D
	case evcode.KEY_TAB:
		return 0x09
	case evcode.KEY_SPACE:
		return 0x20
	case evcode.KEY_BACKSPACE:
		return 0x08
	case evcode.KEY_ESC:
		return 0x1B
	case evcode.KEY_LEFTSHIFT, evcode.KEY_RIGHTSHIFT:
		return 0x10
	case evcode.KEY_LEFTCTRL, evcode.KEY_RIGHTCTRL:
		return 0x11
	case evcode.KEY_LEFTALT, evcode.KEY_RIGHTALT:
		return 0x12
	case evcode.KEY_INSERT:
		return 0x2D
	case 11: // KEY_0
		return '0'
	case 2, 3, 4, 5, 6, 7, 8, 9, 10: // KEY_1..KEY_9
		return uint16('1' + (code - 2))
	}
	return 0
}
