//go:build darwin

package platform

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/go-vgo/robotgo"
)

const permissionWarnEvery = 60 * time.Second

// robotgoInjector posts CoreGraphics events through robotgo.
type robotgoInjector struct {
	lastPermWarnNS int64
}

// NewInjector returns the robotgo based injector.
func NewInjector() (Injector, error) {
	return &robotgoInjector{}, nil
}

func (r *robotgoInjector) MoveRelative(dx, dy int) error {
	robotgo.MoveRelative(dx, dy)
	return nil
}

func (r *robotgoInjector) KeyPulse(k Key) error {
	name := "f15"
	if k == KeyShift {
		name = "shift"
	}
	if err := robotgo.KeyTap(name); err != nil {
		r.warnAccessibility(err)
		return fmt.Errorf("key tap %s: %w", k, err)
	}
	return nil
}

func (r *robotgoInjector) Name() string { return "robotgo" }

func (r *robotgoInjector) Close() error { return nil }

func (r *robotgoInjector) warnAccessibility(err error) {
	nowNS := time.Now().UnixNano()
	last := atomic.LoadInt64(&r.lastPermWarnNS)
	if last != 0 && time.Duration(nowNS-last) < permissionWarnEvery {
		return
	}
	atomic.StoreInt64(&r.lastPermWarnNS, nowNS)

	log.Printf("darwin: synthetic input failed (%v). Enable Accessibility for the terminal or app running the jiggler in System Settings, Privacy and Security, Accessibility.", err)
}
