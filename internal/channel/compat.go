package channel

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Default tuning for the version compatibility gate.
const (
	// DefaultCompatTTL is how long a verdict is memoized before the next
	// operation triggers a fresh probe. Refresh is lazy; nothing probes in
	// the background while the process is idle.
	DefaultCompatTTL = 5 * time.Minute
	// DefaultMinorTolerance is the allowed minor-version drift between the
	// two channels. Deliberately wide: they are versioned independently and
	// minor drift is common and usually harmless. Only major drift is a hard
	// signal.
	DefaultMinorTolerance = 20
)

// CompatResult is the gate's verdict on whether the protocol channel can be
// trusted to agree with the CLI about data shapes.
type CompatResult struct {
	Compatible bool   `json:"compatible"`
	CLIVersion string `json:"cliVersion,omitempty"`
	MCPVersion string `json:"mcpVersion,omitempty"`
	Warning    string `json:"warning,omitempty"`
}

// versionProber is the slice of TaskChannel the gate needs.
type versionProber interface {
	Version(ctx context.Context) (string, error)
}

// VersionGate caches and compares the backing system's two channel versions.
// Incompatibility never blocks an operation; it only changes which channel is
// preferred.
type VersionGate struct {
	cli            versionProber
	protocol       versionProber
	ttl            time.Duration
	minorTolerance int

	mu      sync.Mutex
	cached  *CompatResult
	expires time.Time
}

// NewVersionGate creates a gate probing the two channels. Zero ttl or a
// negative tolerance fall back to the defaults.
func NewVersionGate(cli, protocol versionProber, ttl time.Duration, minorTolerance int) *VersionGate {
	if ttl <= 0 {
		ttl = DefaultCompatTTL
	}
	if minorTolerance < 0 {
		minorTolerance = DefaultMinorTolerance
	}
	return &VersionGate{cli: cli, protocol: protocol, ttl: ttl, minorTolerance: minorTolerance}
}

// Check returns the memoized verdict, probing both channels when the TTL has
// lapsed.
func (g *VersionGate) Check(ctx context.Context) CompatResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cached != nil && time.Now().Before(g.expires) {
		return *g.cached
	}

	cliVersion, _ := g.cli.Version(ctx)
	mcpVersion, _ := g.protocol.Version(ctx)
	result := Compare(cliVersion, mcpVersion, g.minorTolerance)

	g.cached = &result
	g.expires = time.Now().Add(g.ttl)
	return result
}

// Invalidate drops the cached verdict so the next Check probes again.
func (g *VersionGate) Invalidate() {
	g.mu.Lock()
	g.cached = nil
	g.mu.Unlock()
}

// Compare applies the compatibility policy to two version strings.
// Unknown versions fail open: blocking the user because a probe failed would
// be worse than occasionally trusting a skewed channel.
func Compare(cliVersion, mcpVersion string, minorTolerance int) CompatResult {
	result := CompatResult{Compatible: true, CLIVersion: cliVersion, MCPVersion: mcpVersion}

	if cliVersion == "" || mcpVersion == "" {
		result.Warning = "one or both channel versions are unknown; compatibility cannot be verified"
		return result
	}

	cliMajor, cliMinor, okCLI := parseVersion(cliVersion)
	mcpMajor, mcpMinor, okMCP := parseVersion(mcpVersion)
	if !okCLI || !okMCP {
		result.Warning = fmt.Sprintf("unparseable channel versions (cli %q, mcp %q)", cliVersion, mcpVersion)
		return result
	}

	if cliMajor != mcpMajor {
		result.Compatible = false
		result.Warning = fmt.Sprintf("major version mismatch between CLI (%s) and protocol server (%s); data shapes may differ", cliVersion, mcpVersion)
		return result
	}

	drift := cliMinor - mcpMinor
	if drift < 0 {
		drift = -drift
	}
	if drift > minorTolerance {
		result.Compatible = false
		result.Warning = fmt.Sprintf("minor version drift of %d between CLI (%s) and protocol server (%s) exceeds tolerance %d", drift, cliVersion, mcpVersion, minorTolerance)
	}
	return result
}

// parseVersion extracts major and minor segments from strings like "1.2.3"
// or "v0.27.1-beta".
func parseVersion(v string) (major, minor int, ok bool) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minorStr := parts[1]
	if i := strings.IndexAny(minorStr, "-+"); i >= 0 {
		minorStr = minorStr[:i]
	}
	minor, err = strconv.Atoi(minorStr)
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}
