//go:build tinygo

// Command twolink-fw is the controller firmware. It reads line commands
// from the serial console and steps both joints between bytes.
package main

import (
	"context"
	"log"
	"machine"

	"github.com/san-kum/twolink/internal/arm"
	"github.com/san-kum/twolink/internal/axis"
	"github.com/san-kum/twolink/internal/command"
	"github.com/san-kum/twolink/internal/config"
)

func main() {
	cfg := config.DefaultConfig()
	logger := log.New(machine.Serial, "twolink: ", 0)

	enable := machine.Pin(cfg.Pins.Enable)
	one := axis.NewStepper(pinConfig(cfg.Pins.AxisOne, enable))
	two := axis.NewStepper(pinConfig(cfg.Pins.AxisTwo, enable))

	ctrl, err := arm.New(cfg.Arm(), one, two)
	if err != nil {
		panic(err)
	}
	if err := ctrl.Initialize(); err != nil {
		panic(err)
	}

	d := command.NewDispatcher(ctrl)
	r := &command.PollReader{Src: machine.Serial, Idle: ctrl.Update}
	logger.Printf("ready, links %g/%g", cfg.Geometry.L1, cfg.Geometry.L2)

	for {
		if err := d.Serve(context.Background(), r, machine.Serial, logger); err != nil {
			logger.Printf("serial: %v", err)
		}
	}
}

func pinConfig(p config.AxisPins, enable machine.Pin) axis.PinConfig {
	return axis.PinConfig{
		Step:   machine.Pin(p.Step),
		Dir:    machine.Pin(p.Dir),
		Enable: enable,
	}
}
