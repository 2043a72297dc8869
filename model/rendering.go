package model

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

const (
	gridPosBlock = "██"
	gridPosEmpty = "  "

	clearCmd = "clear"
)

// TerminalRenderer prints a single z layer of the lattice, a quick way to
// watch a headless run
type TerminalRenderer struct {
	Out io.Writer
}

func (r *TerminalRenderer) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

// DisplaySlice renders layer z of the lattice, y growing downwards
func (r *TerminalRenderer) DisplaySlice(l *Lattice, z int) {
	w := r.out()
	for y := range l.GetHeight() {
		for x := range l.GetWidth() {
			if c, ok := l.Cell(Position{x, y, z}); ok && c.IsAlive() {
				fmt.Fprint(w, gridPosBlock)
			} else {
				fmt.Fprint(w, gridPosEmpty)
			}
		}
		fmt.Fprintln(w)
	}
}

// Clear clears the terminal screen the renderer writes to
func (r *TerminalRenderer) Clear() {
	w := r.out()
	cmd := exec.Command(clearCmd)
	cmd.Stdout = w
	if err := cmd.Run(); err != nil {
		fmt.Fprintln(w, "Error clearing terminal:", err)
	}
}
