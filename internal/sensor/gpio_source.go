package sensor

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

// GPIOSource reads the two break-beam sensors from real DIO pins via
// periph.io. No debouncing is applied beyond the poller's sample period,
// matching the bare-metal behavior of the original DIO adapter.
type GPIOSource struct {
	pinA gpio.PinIO
	pinB gpio.PinIO
}

// NewGPIOSource initializes the periph.io host drivers and binds the two
// named pins (e.g. "GPIO17", "GPIO27") as pull-down digital inputs.
func NewGPIOSource(pinNameA, pinNameB string) (*GPIOSource, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("sensor: periph host init: %w", err)
	}

	pa := gpioreg.ByName(pinNameA)
	if pa == nil {
		return nil, fmt.Errorf("sensor: unknown pin %q", pinNameA)
	}
	pb := gpioreg.ByName(pinNameB)
	if pb == nil {
		return nil, fmt.Errorf("sensor: unknown pin %q", pinNameB)
	}
	if err := pa.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("sensor: configure pin %q: %w", pinNameA, err)
	}
	if err := pb.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("sensor: configure pin %q: %w", pinNameB, err)
	}
	return &GPIOSource{pinA: pa, pinB: pb}, nil
}

func (g *GPIOSource) ReadA() (bool, error) {
	return g.pinA.Read() == gpio.High, nil
}

func (g *GPIOSource) ReadB() (bool, error) {
	return g.pinB.Read() == gpio.High, nil
}

func (g *GPIOSource) Close() error {
	return nil
}
