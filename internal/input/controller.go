// Package input implements the NES controller's serial shift-register
// protocol as seen on the CPU bus at $4016/$4017.
package input

// Buttons is the host-facing snapshot of a controller's eight buttons.
type Buttons struct {
	A, B, Select, Start   bool
	Up, Down, Left, Right bool
}

// pack lays the buttons out in controller-read order: A, B, Select,
// Start, Up, Down, Left, Right.
func (b Buttons) pack() [8]bool {
	return [8]bool{b.A, b.B, b.Select, b.Start, b.Up, b.Down, b.Left, b.Right}
}

// Controller models one NES controller: the host pushes button state via
// SetButtons, and the bus drives Write/Read for the strobe register and
// serial shift-register reads the CPU performs at $4016/$4017.
type Controller struct {
	buttons [8]bool
	strobe  bool
	index   uint8
}

// SetButtons records the host's current button state for this controller.
func (c *Controller) SetButtons(b Buttons) {
	c.buttons = b.pack()
}

// Write handles a CPU write to $4016 (the strobe register, shared by both
// controllers). Writing strobe high resets the shift position, and while
// strobe is held high every read returns button A's live state; once
// strobe goes low the next eight reads serialize all eight buttons in
// order, starting from A.
func (c *Controller) Write(value uint8) {
	c.strobe = value&1 != 0
	if c.strobe {
		c.index = 0
	}
}

// Read returns the next serial bit: A, B, Select, Start, Up, Down, Left,
// Right, then an endless stream of 1s once the index runs past bit 7.
func (c *Controller) Read() uint8 {
	bit := uint8(1)
	if c.index < 8 {
		bit = 0
		if c.buttons[c.index] {
			bit = 1
		}
	}
	c.index++
	if c.strobe {
		c.index = 0
	}
	return bit
}

// Reset restores power-up state: no buttons held, strobe low.
func (c *Controller) Reset() {
	c.buttons = [8]bool{}
	c.strobe = false
	c.index = 0
}
