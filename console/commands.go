package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadAddress = errors.New("bad address")

type command struct {
	name string
	args []string
}

func parseCommand(input string) command {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return command{}
	}
	return command{name: strings.ToLower(parts[0]), args: parts[1:]}
}

// ParseAddress accepts $hex, 0xhex, bare hex and #decimal forms of a
// 16 bit address.
func ParseAddress(s string) (uint16, error) {
	s = strings.TrimSpace(s)

	base := 16
	digits := s
	switch {
	case strings.HasPrefix(s, "#"):
		base, digits = 10, s[1:]
	case strings.HasPrefix(s, "$"):
		digits = s[1:]
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		digits = s[2:]
	}

	v, err := strconv.ParseUint(digits, base, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadAddress, s)
	}
	return uint16(v), nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("bad count %q", s)
	}
	return n, nil
}

const help = `b [addr]   add a breakpoint, or list them
c          clear breakpoints
r          run until halt, breakpoint, error or interrupt
s [n]      step n instructions (default 1)
e          reset the cpu
m lo [hi]  display memory from lo to hi
i          show the instruction at PC
p addr     set the program counter
t          show the top of the stack
x          show registers
d file     write a PNG snapshot of memory to file
q          quit
`
