package fraud

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder() *Builder {
	dev := DeviceInfo{
		Timezone:     "UTC+01:00",
		Screens:      []Screen{{Width: 2560, Height: 1440, ScalingFactor: 1.5, ColourDepth: 24}, {Width: 1920, Height: 1080, ScalingFactor: 1, ColourDepth: 24}},
		WindowWidth:  1256,
		WindowHeight: 803,
		Plugins:      []string{"PDF Viewer", "Chrome PDF Viewer"},
		UserAgent:    "Mozilla/5.0 (X11; Linux x86_64)",
		DoNotTrack:   true,
	}
	return NewBuilder(Vendor{
		ProductName: "mtd filer",
		Version:     "1.4.0",
		PublicIP:    "203.0.113.6",
		LicenseIDs:  map[string]string{"mtd filer": "8D7963490527D33716835EE7C195516D5E562E03B224E9B359836466EE40CDE1"},
	}, StaticProvider{Info: dev})
}

func testConn() ConnectionInfo {
	return ConnectionInfo{
		PublicIP:   "198.51.100.0",
		PublicPort: 12345,
		ObservedAt: time.Date(2025, time.November, 3, 10, 15, 30, 123_000_000, time.UTC),
	}
}

func TestBuildProducesCompleteSet(t *testing.T) {
	h, err := testBuilder().Build(context.Background(), "beec798b-b366-47fa-b1f8-92cede14a1ce", "alice", testConn())
	require.NoError(t, err)

	assert.Empty(t, Validate(h))
	assert.Equal(t, MethodWebAppViaServer, h[ConnectionMethod])
	assert.Equal(t, "beec798b-b366-47fa-b1f8-92cede14a1ce", h[ClientDeviceID])
	assert.Equal(t, "mtd%20filer=alice", h[ClientUserIDs])
	assert.Equal(t, "UTC+01:00", h[ClientTimezone])
	assert.Equal(t, "width=2560&height=1440&scaling-factor=1.5&colour-depth=24,width=1920&height=1080&scaling-factor=1&colour-depth=24", h[ClientScreens])
	assert.Equal(t, "width=1256&height=803", h[ClientWindowSize])
	assert.Equal(t, "PDF%20Viewer,Chrome%20PDF%20Viewer", h[ClientBrowserPlugins])
	assert.Equal(t, "Mozilla%2F5.0%20%28X11%3B%20Linux%20x86_64%29", h[ClientBrowserJSUA])
	assert.Equal(t, "true", h[ClientBrowserDNT])
	assert.Equal(t, "198.51.100.0", h[ClientPublicIP])
	assert.Equal(t, "2025-11-03T10:15:30.123Z", h[ClientPublicIPTime])
	assert.Equal(t, "12345", h[ClientPublicPort])
	assert.Equal(t, "203.0.113.6", h[VendorPublicIP])
	assert.Equal(t, "by=203.0.113.6&for=198.51.100.0", h[VendorForwarded])
	assert.Equal(t, "mtd%20filer=1.4.0", h[VendorVersion])
	assert.Equal(t, "mtd%20filer", h[VendorProductName])
	assert.Contains(t, h[VendorLicenseIDs], "mtd%20filer=8D79")
	_, hasMFA := h[ClientMultiFactor]
	assert.False(t, hasMFA)
}

func TestValidateReportsEachMissingHeader(t *testing.T) {
	full, err := testBuilder().Build(context.Background(), "dev-1", "alice", testConn())
	require.NoError(t, err)
	require.Empty(t, Validate(full))

	for _, name := range Required {
		t.Run(name, func(t *testing.T) {
			h := full.Clone()
			delete(h, name)
			assert.Equal(t, []string{name}, Validate(h))

			h[name] = "   "
			assert.Equal(t, []string{name}, Validate(h), "blank counts as missing")
		})
	}
	assert.Len(t, Validate(HeaderSet{}), len(Required))
}

func TestBuildOmitsValuesItCannotKnow(t *testing.T) {
	b := NewBuilder(Vendor{ProductName: "mtd"}, StaticProvider{Info: DeviceInfo{Timezone: "UTC+00:00"}})
	h, err := b.Build(context.Background(), "", "", ConnectionInfo{})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		ClientDeviceID, ClientUserIDs, ClientBrowserJSUA, ClientPublicIP,
		ClientPublicIPTime, VendorPublicIP, VendorVersion,
	}, Validate(h))
	_, ok := h[VendorForwarded]
	assert.False(t, ok)
}

type failingProvider struct{}

func (failingProvider) DeviceInfo(context.Context, string, string) (DeviceInfo, error) {
	return DeviceInfo{}, errors.New("unknown device")
}

type recordingProvider struct{ deviceID, userID string }

func (p *recordingProvider) DeviceInfo(_ context.Context, deviceID, userID string) (DeviceInfo, error) {
	p.deviceID, p.userID = deviceID, userID
	return StubDeviceInfo(deviceID), nil
}

func TestBuildLooksUpDeviceForCaller(t *testing.T) {
	devices := &recordingProvider{}
	_, err := NewBuilder(Vendor{}, devices).Build(context.Background(), "dev-1", "user-7", testConn())
	require.NoError(t, err)
	assert.Equal(t, "dev-1", devices.deviceID)
	assert.Equal(t, "user-7", devices.userID)
}

func TestBuildPropagatesProviderError(t *testing.T) {
	_, err := NewBuilder(Vendor{}, failingProvider{}).Build(context.Background(), "x", "u", testConn())
	assert.ErrorContains(t, err, "unknown device")
}

func TestMultiFactorFormat(t *testing.T) {
	dev := StubDeviceInfo("dev-2")
	dev.MultiFactor = []MultiFactor{{Type: "TOTP", Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), UniqueReference: "abc"}}
	h, err := NewBuilder(Vendor{}, StaticProvider{Info: dev}).Build(context.Background(), "", "", ConnectionInfo{})
	require.NoError(t, err)
	assert.Equal(t, "type=TOTP&timestamp=2025-01-02T03%3A04%3A05.000Z&unique-reference=abc", h[ClientMultiFactor])
	assert.Equal(t, "dev-2", h[ClientDeviceID])
}

func TestEncode(t *testing.T) {
	assert.Equal(t, "a%20b", Encode("a b"))
	assert.Equal(t, "a%2Cb", Encode("a,b"))
	assert.Equal(t, "", EncodeList(nil))
	assert.Equal(t, "x%26y,z", EncodeList([]string{"x&y", "z"}))
}

func TestFormatTimezone(t *testing.T) {
	assert.Equal(t, "UTC+00:00", FormatTimezone(0))
	assert.Equal(t, "UTC+05:30", FormatTimezone(5*3600+30*60))
	assert.Equal(t, "UTC-03:00", FormatTimezone(-3*3600))
}

func TestConnectionFromRequest(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("BST", 3600))

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.5:50123"
	c := ConnectionFromRequest(r, now)
	assert.Equal(t, "10.0.0.5", c.PublicIP)
	assert.Equal(t, 50123, c.PublicPort)
	assert.Equal(t, time.UTC, c.ObservedAt.Location())

	r.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", ConnectionFromRequest(r, now).PublicIP)

	r.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.1")
	r.Header.Set("X-Client-Port", "443")
	c = ConnectionFromRequest(r, now)
	assert.Equal(t, "198.51.100.9", c.PublicIP)
	assert.Equal(t, 443, c.PublicPort)
}
