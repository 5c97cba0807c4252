package lottie

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Capabilities is an injected device profile the player consults for
// an achievable frame rate. Injecting it (rather than probing a
// process-wide singleton) lets tests substitute deterministic
// profiles.
type Capabilities interface {
	// RecommendedFrameRate returns the frame rate playback should
	// run at, given the rate the document asks for.
	RecommendedFrameRate(requested float64) float64
}

// StaticCapabilities is a fixed-ceiling profile.
type StaticCapabilities struct {
	// MaxFrameRate caps the recommended rate. Zero means no cap.
	MaxFrameRate float64
}

// RecommendedFrameRate implements Capabilities.
func (c StaticCapabilities) RecommendedFrameRate(requested float64) float64 {
	if c.MaxFrameRate > 0 && requested > c.MaxFrameRate {
		return c.MaxFrameRate
	}
	return requested
}

// HostCapabilities probes the running host once at construction and
// caps frame rates on constrained machines.
type HostCapabilities struct {
	cores    int
	memBytes uint64
}

// DetectHost probes logical CPU count and total memory. Probe
// failures degrade to an unconstrained profile.
func DetectHost() *HostCapabilities {
	h := &HostCapabilities{}
	if n, err := cpu.Counts(true); err == nil {
		h.cores = n
	} else {
		Logger().Warn("device: cpu probe failed", "err", err)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		h.memBytes = vm.Total
	} else {
		Logger().Warn("device: memory probe failed", "err", err)
	}
	return h
}

// RecommendedFrameRate implements Capabilities. Hosts with few cores
// or little memory get capped at conservative tiers; everything else
// runs at the requested rate.
func (h *HostCapabilities) RecommendedFrameRate(requested float64) float64 {
	const gib = 1 << 30
	ceiling := requested
	switch {
	case h.cores == 0 && h.memBytes == 0:
		// Probe failed; leave the requested rate alone.
	case h.cores <= 1 || h.memBytes < 1*gib:
		ceiling = 15
	case h.cores <= 2 || h.memBytes < 2*gib:
		ceiling = 30
	}
	if requested < ceiling {
		return requested
	}
	return ceiling
}
