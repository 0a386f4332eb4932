// Package command parses single-line operator commands and applies them to
// a controller. One letter selects the command; arguments follow separated
// by spaces.
package command

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/san-kum/twolink/internal/arm"
)

var (
	ErrUnknownCommand = errors.New("command: unknown command")
	ErrBadArgs        = errors.New("command: bad arguments")
	ErrNotSettled     = errors.New("command: arm still moving")
)

// DefaultSettleTicks bounds W.
const DefaultSettleTicks = 10_000_000

type Command struct {
	Flag  byte
	Usage string
	Run   func(d *Dispatcher, args []string) (string, error)
}

var (
	GotoCommand = &Command{
		Flag:  'G',
		Usage: "G x y      move the end effector to (x, y)",
		Run: func(d *Dispatcher, args []string) (string, error) {
			return d.target(args, false)
		},
	}
	AnglesCommand = &Command{
		Flag:  'A',
		Usage: "A q1 q2    move to joint angles in degrees",
		Run: func(d *Dispatcher, args []string) (string, error) {
			return d.target(args, true)
		},
	}
	StopCommand = &Command{
		Flag:  'S',
		Usage: "S          stop both axes",
		Run: func(d *Dispatcher, args []string) (string, error) {
			d.ctrl.Stop()
			return d.status()
		},
	}
	StatusCommand = &Command{
		Flag:  '?',
		Usage: "?          print status as JSON",
		Run: func(d *Dispatcher, args []string) (string, error) {
			return d.status()
		},
	}
	TickCommand = &Command{
		Flag:  'T',
		Usage: "T n        run n control ticks",
		Run: func(d *Dispatcher, args []string) (string, error) {
			if len(args) != 1 {
				return "", fmt.Errorf("%w: T takes one count", ErrBadArgs)
			}
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return "", fmt.Errorf("%w: tick count %q", ErrBadArgs, args[0])
			}
			for i := 0; i < n; i++ {
				d.ctrl.Update()
			}
			return d.status()
		},
	}
	WaitCommand = &Command{
		Flag:  'W',
		Usage: "W          run until the arm settles",
		Run: func(d *Dispatcher, args []string) (string, error) {
			for i := 0; d.ctrl.IsMoving(); i++ {
				if i >= d.settleTicks {
					return "", fmt.Errorf("%w after %d ticks", ErrNotSettled, d.settleTicks)
				}
				d.ctrl.Update()
			}
			return d.status()
		},
	}
)

var commands = []*Command{
	GotoCommand,
	AnglesCommand,
	StopCommand,
	StatusCommand,
	TickCommand,
	WaitCommand,
}

type Dispatcher struct {
	ctrl        *arm.Controller
	cmdMap      map[byte]*Command
	settleTicks int
}

func NewDispatcher(ctrl *arm.Controller) *Dispatcher {
	d := &Dispatcher{
		ctrl:        ctrl,
		cmdMap:      make(map[byte]*Command, len(commands)),
		settleTicks: DefaultSettleTicks,
	}
	for _, cmd := range commands {
		d.cmdMap[cmd.Flag] = cmd
	}
	return d
}

func (d *Dispatcher) SetSettleTicks(n int) { d.settleTicks = n }

// Handle runs one line. Flags are case-insensitive. Blank lines return an
// empty reply.
func (d *Dispatcher) Handle(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	head := fields[0]
	if len(head) != 1 {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, head)
	}
	flag := head[0]
	if 'a' <= flag && flag <= 'z' {
		flag -= 'a' - 'A'
	}
	cmd, ok := d.cmdMap[flag]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, head)
	}
	return cmd.Run(d, fields[1:])
}

// Usage lists every command, one per line.
func Usage() string {
	var b strings.Builder
	for _, cmd := range commands {
		b.WriteString(cmd.Usage)
		b.WriteByte('\n')
	}
	return b.String()
}

// Serve reads commands from r until EOF or ctx is done and writes each reply
// to w. Failed commands are logged and do not end the loop.
func (d *Dispatcher) Serve(ctx context.Context, r io.Reader, w io.Writer, logger *log.Logger) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		reply, err := d.Handle(scanner.Text())
		if err != nil {
			logger.Printf("error: %v", err)
			continue
		}
		if reply != "" {
			if _, err := fmt.Fprintln(w, reply); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

func (d *Dispatcher) target(args []string, angles bool) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("%w: want two numbers, got %d", ErrBadArgs, len(args))
	}
	a, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadArgs, args[0])
	}
	b, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadArgs, args[1])
	}
	if err := d.ctrl.SetTarget(a, b, angles); err != nil {
		return "", err
	}
	return d.status()
}

func (d *Dispatcher) status() (string, error) {
	data, err := json.Marshal(d.ctrl.Status())
	if err != nil {
		return "", err
	}
	return string(data), nil
}
