package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Classify(t *testing.T) {
	classifier := NewClassifier("")

	tests := []struct {
		name    string
		ip      string
		want    ZoneType
		trusted bool
	}{
		{"tailscale_range_start", "100.64.0.1", ZoneTailscale, true},
		{"tailscale_range_end", "100.127.255.254", ZoneTailscale, true},
		{"below_tailscale_range", "100.63.255.255", ZonePublic, false},
		{"above_tailscale_range", "100.128.0.1", ZonePublic, false},
		{"wireguard_default", "10.8.0.5", ZoneWireguard, true},
		{"local_192_168", "192.168.1.50", ZoneLocal, true},
		{"local_10", "10.0.0.5", ZoneLocal, true},
		{"local_172_16", "172.16.0.1", ZoneLocal, true},
		{"local_172_31", "172.31.255.254", ZoneLocal, true},
		{"not_local_172_32", "172.32.0.1", ZonePublic, false},
		{"localhost_v4", "127.0.0.1", ZoneLocalhost, true},
		{"localhost_v6", "::1", ZoneLocalhost, true},
		{"public", "203.0.113.5", ZonePublic, false},
		{"unknown_marker", "unknown", ZonePublic, false},
		{"garbage", "not-an-ip", ZonePublic, false},
		{"empty", "", ZonePublic, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zone := classifier.Classify(tt.ip)
			assert.Equal(t, tt.want, zone.Type)
			assert.Equal(t, tt.trusted, zone.Trusted)
		})
	}
}

// IPv6 addresses other than ::1 are deliberately not classified.
func TestClassifier_IPv6FallsThroughToPublic(t *testing.T) {
	classifier := NewClassifier("")

	assert.Equal(t, ZonePublic, classifier.Classify("fd00::1").Type)
	assert.Equal(t, ZonePublic, classifier.Classify("2001:db8::1").Type)
	assert.Equal(t, ZonePublic, classifier.Classify("fe80::1").Type)
}

func TestClassifier_CustomWireguardCIDR(t *testing.T) {
	classifier := NewClassifier("10.100.0.0/16")

	assert.Equal(t, ZoneWireguard, classifier.Classify("10.100.3.7").Type)
	// Default wireguard range now falls into the broader local match
	assert.Equal(t, ZoneLocal, classifier.Classify("10.8.0.5").Type)
}

func TestClassifier_FirstMatchWins(t *testing.T) {
	// Wireguard default range is inside 10.0.0.0/8; the more specific
	// rule must win
	classifier := NewClassifier(DefaultWireguardCIDR)
	assert.Equal(t, ZoneWireguard, classifier.Classify("10.8.0.200").Type)
	assert.Equal(t, ZoneLocal, classifier.Classify("10.9.0.1").Type)
}

func TestIPInRange(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		cidr string
		want bool
	}{
		{"inside", "192.168.1.5", "192.168.0.0/16", true},
		{"outside", "192.169.0.1", "192.168.0.0/16", false},
		{"boundary_first", "192.168.0.0", "192.168.0.0/16", true},
		{"boundary_last", "192.168.255.255", "192.168.0.0/16", true},
		{"slash_32_exact", "10.1.2.3", "10.1.2.3/32", true},
		{"slash_32_other", "10.1.2.4", "10.1.2.3/32", false},
		{"slash_0_matches_everything", "8.8.8.8", "0.0.0.0/0", true},
		{"slash_0_matches_private_too", "192.168.1.1", "0.0.0.0/0", true},
		{"unaligned_subnet_address", "10.8.0.5", "10.8.0.77/24", true},
		{"invalid_prefix_negative", "10.0.0.1", "10.0.0.0/-1", false},
		{"invalid_prefix_too_large", "10.0.0.1", "10.0.0.0/33", false},
		{"missing_prefix", "10.0.0.1", "10.0.0.0", false},
		{"invalid_ip", "banana", "10.0.0.0/8", false},
		{"invalid_subnet", "10.0.0.1", "banana/8", false},
		{"ipv6_ip", "::1", "10.0.0.0/8", false},
		{"ipv6_subnet", "10.0.0.1", "::1/8", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IPInRange(tt.ip, tt.cidr))
		})
	}
}

func TestZoneByType(t *testing.T) {
	assert.Equal(t, "Tailscale VPN", ZoneByType(ZoneTailscale).Name)
	assert.True(t, ZoneByType(ZoneLocal).Trusted)

	// Unknown type degrades to public
	unknown := ZoneByType(ZoneType("cellular"))
	assert.Equal(t, ZonePublic, unknown.Type)
	assert.False(t, unknown.Trusted)
}
