// Package fraud builds and validates the authority's mandatory fraud prevention headers
// for the WEB_APP_VIA_SERVER connection method.
package fraud

import (
	"net/url"
	"strings"
)

// Header names
const (
	ConnectionMethod      = "Gov-Client-Connection-Method"
	ClientPublicIP        = "Gov-Client-Public-IP"
	ClientPublicIPTime    = "Gov-Client-Public-IP-Timestamp"
	ClientPublicPort      = "Gov-Client-Public-Port"
	ClientDeviceID        = "Gov-Client-Device-ID"
	ClientUserIDs         = "Gov-Client-User-IDs"
	ClientTimezone        = "Gov-Client-Timezone"
	ClientScreens         = "Gov-Client-Screens"
	ClientWindowSize      = "Gov-Client-Window-Size"
	ClientBrowserPlugins  = "Gov-Client-Browser-Plugins"
	ClientBrowserJSUA     = "Gov-Client-Browser-JS-User-Agent"
	ClientBrowserDNT      = "Gov-Client-Browser-Do-Not-Track"
	ClientMultiFactor     = "Gov-Client-Multi-Factor"
	VendorVersion         = "Gov-Vendor-Version"
	VendorProductName     = "Gov-Vendor-Product-Name"
	VendorPublicIP        = "Gov-Vendor-Public-IP"
	VendorForwarded       = "Gov-Vendor-Forwarded"
	VendorLicenseIDs      = "Gov-Vendor-License-IDs"
	MethodWebAppViaServer = "WEB_APP_VIA_SERVER"
)

// Required lists the headers whose absence blocks a request, in reporting order.
var Required = []string{
	ConnectionMethod,
	ClientDeviceID,
	ClientUserIDs,
	ClientTimezone,
	ClientBrowserJSUA,
	ClientPublicIP,
	ClientPublicIPTime,
	VendorPublicIP,
	VendorVersion,
}

// HeaderSet maps header names to already-encoded values.
type HeaderSet map[string]string

// Clone returns an independent copy.
func (h HeaderSet) Clone() HeaderSet {
	out := make(HeaderSet, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Validate returns the required headers that are absent or blank, in Required order.
// An empty result means the set may be sent.
func Validate(h HeaderSet) []string {
	var missing []string
	for _, name := range Required {
		if strings.TrimSpace(h[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Encode percent-encodes a single value the way the authority expects: spaces become %20.
func Encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// EncodeList encodes each value and joins them with commas.
func EncodeList(values []string) string {
	encoded := make([]string, 0, len(values))
	for _, v := range values {
		encoded = append(encoded, Encode(v))
	}
	return strings.Join(encoded, ",")
}

// encodePairs builds key=value&key=value with each part encoded, preserving the given order.
func encodePairs(pairs ...[2]string) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, Encode(p[0])+"="+Encode(p[1]))
	}
	return strings.Join(parts, "&")
}
