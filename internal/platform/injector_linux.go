//go:build linux

package platform

import (
	"fmt"

	"github.com/stigoleg/mouse-jiggler/internal/platform/linux"
)

// moverInjector adapts a linux.Mover to Injector.
type moverInjector struct {
	mover linux.Mover
}

// NewInjector picks the best Linux injection method for this session.
func NewInjector() (Injector, error) {
	caps := linux.DetectCapabilities()
	mover, err := linux.NewMover(caps)
	if err != nil {
		if msg := linux.FormatDependencyMessages(linux.CheckMissingDependencies(caps, linux.DetectDistribution())); msg != "" {
			return nil, fmt.Errorf("%w: %w\n\n%s", ErrInjectionUnavailable, err, msg)
		}
		return nil, fmt.Errorf("%w: %w", ErrInjectionUnavailable, err)
	}
	return &moverInjector{mover: mover}, nil
}

func (m *moverInjector) MoveRelative(dx, dy int) error {
	return m.mover.Move(dx, dy)
}

func (m *moverInjector) KeyPulse(k Key) error {
	code := linux.KeyF15
	if k == KeyShift {
		code = linux.KeyLeftShift
	}
	return m.mover.Key(code)
}

func (m *moverInjector) Name() string { return m.mover.Name() }

func (m *moverInjector) Close() error { return m.mover.Close() }
