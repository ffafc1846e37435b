// Package glwindow presents frames in an OpenGL window, scaled up with nearest
// filtering, and reads the keyboard through glfw.
//
// Every call must come from the goroutine that called Open, locked to the main
// OS thread.
package glwindow

import (
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"

	"github.com/lixenwraith/diffused-rays/core"
	"github.com/lixenwraith/diffused-rays/game"
	"github.com/lixenwraith/diffused-rays/render"
)

// Window implements game.Display
type Window struct {
	win   *glfw.Window
	title string
	keys  edges

	program uint32
	vao     uint32
	vbo     uint32
	tex     uint32
	texW    int
	texH    int
	pix     []byte

	lastTitle string
	closed    bool
}

// Open creates a width x height window with a GL 4.1 core context
func Open(title string, width, height int) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw init")
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "create window")
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(0) // The game loop paces itself

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, errors.Wrap(err, "gl init")
	}

	w := &Window{win: win, title: title, keys: newEdges()}
	if err := w.initQuad(); err != nil {
		w.Close()
		return nil, err
	}
	core.OnCrash(func() { win.Destroy() })
	return w, nil
}

func (w *Window) initQuad() error {
	program, err := linkProgram(quadVertSrc, quadFragSrc)
	if err != nil {
		return err
	}
	w.program = program

	gl.GenVertexArrays(1, &w.vao)
	gl.GenBuffers(1, &w.vbo)
	gl.BindVertexArray(w.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)

	quadVerts := [12]float32{
		0, 0, 1, 0, 1, 1,
		0, 0, 1, 1, 0, 1,
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVerts)*4, gl.Ptr(&quadVerts[0]), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))

	gl.GenTextures(1, &w.tex)
	gl.BindTexture(gl.TEXTURE_2D, w.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.UseProgram(w.program)
	gl.Uniform1i(gl.GetUniformLocation(w.program, gl.Str("uFrame\x00")), 0)

	gl.Disable(gl.DEPTH_TEST)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.ClearColor(0, 0, 0, 1)
	return nil
}

// Poll pumps window events and reads the keyboard
func (w *Window) Poll() game.Controls {
	if w.closed {
		return game.Controls{Quit: true}
	}
	glfw.PollEvents()
	down := func(keys ...glfw.Key) bool {
		for _, k := range keys {
			if w.win.GetKey(k) == glfw.Press {
				return true
			}
		}
		return false
	}

	return game.Controls{
		Forward:       down(glfw.KeyW, glfw.KeyUp),
		Backward:      down(glfw.KeyS, glfw.KeyDown),
		TurnLeft:      down(glfw.KeyA, glfw.KeyLeft),
		TurnRight:     down(glfw.KeyD, glfw.KeyRight),
		ToggleStylize: w.keys.justPressed(glfw.KeySpace, down(glfw.KeySpace)),
		ToggleTexture: w.keys.justPressed(glfw.KeyT, down(glfw.KeyT)),
		Quit:          w.win.ShouldClose() || down(glfw.KeyEscape),
	}
}

// Present uploads frame to the texture and draws it over the whole window
// The HUD goes into the window title.
func (w *Window) Present(frame *render.Frame, hud game.HUD) error {
	if w.closed {
		return errors.New("window closed")
	}

	w.pix = packRGB(w.pix, frame)
	gl.BindTexture(gl.TEXTURE_2D, w.tex)
	if frame.Width != w.texW || frame.Height != w.texH {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB8, int32(frame.Width), int32(frame.Height), 0,
			gl.RGB, gl.UNSIGNED_BYTE, gl.Ptr(w.pix))
		w.texW, w.texH = frame.Width, frame.Height
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(frame.Width), int32(frame.Height),
			gl.RGB, gl.UNSIGNED_BYTE, gl.Ptr(w.pix))
	}

	fbW, fbH := w.win.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fbW), int32(fbH))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(w.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindVertexArray(w.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)

	if t := windowTitle(w.title, hud); t != w.lastTitle {
		w.win.SetTitle(t)
		w.lastTitle = t
	}
	w.win.SwapBuffers()
	return nil
}

// Close releases GL objects and the window; safe to call more than once
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.tex != 0 {
		gl.DeleteTextures(1, &w.tex)
	}
	if w.vbo != 0 {
		gl.DeleteBuffers(1, &w.vbo)
	}
	if w.vao != 0 {
		gl.DeleteVertexArrays(1, &w.vao)
	}
	if w.program != 0 {
		gl.DeleteProgram(w.program)
	}
	w.win.Destroy()
	glfw.Terminate()
	return nil
}

// packRGB flattens frame into tightly packed RGB bytes, reusing buf when large enough
func packRGB(buf []byte, frame *render.Frame) []byte {
	n := len(frame.Pix) * 3
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	for i, p := range frame.Pix {
		buf[3*i] = p.R
		buf[3*i+1] = p.G
		buf[3*i+2] = p.B
	}
	return buf
}

// windowTitle joins the HUD lines that change, leaving out the static help line
func windowTitle(base string, hud game.HUD) string {
	lines := hud.Lines()
	return base + " | " + strings.Join(lines[:len(lines)-1], " | ")
}

// edges reports a key once per press
type edges struct {
	prev map[glfw.Key]bool
}

func newEdges() edges {
	return edges{prev: make(map[glfw.Key]bool)}
}

func (e edges) justPressed(key glfw.Key, down bool) bool {
	jp := down && !e.prev[key]
	e.prev[key] = down
	return jp
}
