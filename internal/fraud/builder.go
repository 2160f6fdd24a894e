package fraud

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Screen is one attached display.
type Screen struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	ScalingFactor float64 `json:"scaling_factor"`
	ColourDepth   int     `json:"colour_depth"`
}

// MultiFactor records one completed second factor.
type MultiFactor struct {
	Type            string    `json:"type"` // TOTP, AUTH_CODE or OTHER
	Timestamp       time.Time `json:"timestamp"`
	UniqueReference string    `json:"unique_reference"`
}

// DeviceInfo holds the client-origin values. They are collected once per device and cached.
type DeviceInfo struct {
	DeviceID     string        `json:"device_id"`
	Timezone     string        `json:"timezone"` // UTC±hh:mm
	Screens      []Screen      `json:"screens"`
	WindowWidth  int           `json:"window_width"`
	WindowHeight int           `json:"window_height"`
	Plugins      []string      `json:"plugins"`
	UserAgent    string        `json:"user_agent"`
	DoNotTrack   bool          `json:"do_not_track"`
	MultiFactor  []MultiFactor `json:"multi_factor,omitempty"`
}

// DeviceInfoProvider supplies cached client-origin values for a device owned by userID.
type DeviceInfoProvider interface {
	DeviceInfo(ctx context.Context, deviceID, userID string) (DeviceInfo, error)
}

// StaticProvider returns the same DeviceInfo for every device. Used by non-interactive callers and tests.
type StaticProvider struct {
	Info DeviceInfo
}

func (p StaticProvider) DeviceInfo(_ context.Context, deviceID, _ string) (DeviceInfo, error) {
	info := p.Info
	if deviceID != "" {
		info.DeviceID = deviceID
	}
	return info, nil
}

// StubDeviceInfo describes a headless caller with no browser.
func StubDeviceInfo(deviceID string) DeviceInfo {
	return DeviceInfo{
		DeviceID:     deviceID,
		Timezone:     "UTC+00:00",
		Screens:      []Screen{{Width: 1920, Height: 1080, ScalingFactor: 1, ColourDepth: 24}},
		WindowWidth:  1920,
		WindowHeight: 1080,
		UserAgent:    "mtd-filer/headless",
	}
}

// FormatTimezone renders a UTC offset as UTC±hh:mm.
func FormatTimezone(offsetSeconds int) string {
	sign := '+'
	if offsetSeconds < 0 {
		sign = '-'
		offsetSeconds = -offsetSeconds
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, offsetSeconds/3600, (offsetSeconds%3600)/60)
}

// ConnectionInfo holds the server-origin values observed on the inbound request.
type ConnectionInfo struct {
	PublicIP   string
	PublicPort int
	ObservedAt time.Time
}

// ConnectionFromRequest reads the caller's address from proxy headers, falling back to the socket.
func ConnectionFromRequest(r *http.Request, now time.Time) ConnectionInfo {
	info := ConnectionInfo{ObservedAt: now.UTC()}

	host, port, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	info.PublicIP = host
	if p, err := strconv.Atoi(port); err == nil {
		info.PublicPort = p
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		info.PublicIP = strings.TrimSpace(strings.Split(xff, ",")[0])
	} else if real := r.Header.Get("X-Real-IP"); real != "" {
		info.PublicIP = strings.TrimSpace(real)
	}
	if p, err := strconv.Atoi(r.Header.Get("X-Client-Port")); err == nil {
		info.PublicPort = p
	}
	return info
}

// Vendor identifies this software to the authority.
type Vendor struct {
	ProductName string
	Version     string
	PublicIP    string
	LicenseIDs  map[string]string // software name -> hashed licence key
}

// Builder assembles a full header set per request.
type Builder struct {
	vendor  Vendor
	devices DeviceInfoProvider
}

func NewBuilder(vendor Vendor, devices DeviceInfoProvider) *Builder {
	return &Builder{vendor: vendor, devices: devices}
}

// Build combines cached device values with fresh connection values. It does not validate;
// callers run Validate before sending.
func (b *Builder) Build(ctx context.Context, deviceID, userID string, conn ConnectionInfo) (HeaderSet, error) {
	dev, err := b.devices.DeviceInfo(ctx, deviceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load device info: %w", err)
	}

	h := HeaderSet{ConnectionMethod: MethodWebAppViaServer}
	set := func(name, value string) {
		if value != "" {
			h[name] = value
		}
	}

	set(ClientDeviceID, dev.DeviceID)
	if userID != "" {
		set(ClientUserIDs, encodePairs([2]string{b.vendor.ProductName, userID}))
	}
	set(ClientTimezone, dev.Timezone)
	set(ClientScreens, formatScreens(dev.Screens))
	if dev.WindowWidth > 0 && dev.WindowHeight > 0 {
		set(ClientWindowSize, encodePairs(
			[2]string{"width", strconv.Itoa(dev.WindowWidth)},
			[2]string{"height", strconv.Itoa(dev.WindowHeight)},
		))
	}
	set(ClientBrowserPlugins, EncodeList(dev.Plugins))
	set(ClientBrowserJSUA, Encode(dev.UserAgent))
	set(ClientBrowserDNT, strconv.FormatBool(dev.DoNotTrack))
	set(ClientMultiFactor, formatMultiFactor(dev.MultiFactor))

	set(ClientPublicIP, conn.PublicIP)
	if conn.PublicIP != "" && !conn.ObservedAt.IsZero() {
		set(ClientPublicIPTime, conn.ObservedAt.UTC().Format(timestampLayout))
	}
	if conn.PublicPort > 0 {
		set(ClientPublicPort, strconv.Itoa(conn.PublicPort))
	}

	set(VendorPublicIP, b.vendor.PublicIP)
	if b.vendor.PublicIP != "" && conn.PublicIP != "" {
		set(VendorForwarded, encodePairs([2]string{"by", b.vendor.PublicIP}, [2]string{"for", conn.PublicIP}))
	}
	if b.vendor.ProductName != "" {
		set(VendorProductName, Encode(b.vendor.ProductName))
		if b.vendor.Version != "" {
			set(VendorVersion, encodePairs([2]string{b.vendor.ProductName, b.vendor.Version}))
		}
	}
	if len(b.vendor.LicenseIDs) > 0 {
		pairs := make([][2]string, 0, len(b.vendor.LicenseIDs))
		for _, name := range sortedKeys(b.vendor.LicenseIDs) {
			pairs = append(pairs, [2]string{name, b.vendor.LicenseIDs[name]})
		}
		set(VendorLicenseIDs, encodePairs(pairs...))
	}
	return h, nil
}

func formatScreens(screens []Screen) string {
	parts := make([]string, 0, len(screens))
	for _, s := range screens {
		parts = append(parts, encodePairs(
			[2]string{"width", strconv.Itoa(s.Width)},
			[2]string{"height", strconv.Itoa(s.Height)},
			[2]string{"scaling-factor", strconv.FormatFloat(s.ScalingFactor, 'f', -1, 64)},
			[2]string{"colour-depth", strconv.Itoa(s.ColourDepth)},
		))
	}
	return strings.Join(parts, ",")
}

func formatMultiFactor(factors []MultiFactor) string {
	parts := make([]string, 0, len(factors))
	for _, f := range factors {
		parts = append(parts, encodePairs(
			[2]string{"type", f.Type},
			[2]string{"timestamp", f.Timestamp.UTC().Format(timestampLayout)},
			[2]string{"unique-reference", f.UniqueReference},
		))
	}
	return strings.Join(parts, ",")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
