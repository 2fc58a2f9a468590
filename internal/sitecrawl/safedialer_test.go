package sitecrawl

import (
	"errors"
	"net/netip"
	"testing"
)

func TestAddressClass(t *testing.T) {
	tests := []struct {
		ip   string
		want string
	}{
		{ip: "127.0.0.1", want: "loopback"},
		{ip: "::1", want: "loopback"},
		{ip: "10.0.0.1", want: "private"},
		{ip: "172.16.0.1", want: "private"},
		{ip: "192.168.1.1", want: "private"},
		{ip: "fd00::1", want: "private"},
		{ip: "169.254.169.254", want: "link-local"},
		{ip: "fe80::1", want: "link-local"},
		{ip: "224.0.0.251", want: "link-local"},
		{ip: "239.1.1.1", want: "multicast"},
		{ip: "0.0.0.0", want: "unspecified"},
		{ip: "::", want: "unspecified"},
		{ip: "100.64.0.1", want: "carrier-grade NAT"},
		{ip: "192.0.2.1", want: "documentation"},
		{ip: "198.19.255.254", want: "benchmarking"},
		{ip: "203.0.113.9", want: "documentation"},
		{ip: "::ffff:127.0.0.1", want: "loopback"},
		{ip: "64:ff9b::a00:1", want: "NAT64"},
		{ip: "::ffff:8.8.8.8", want: ""},
		{ip: "8.8.8.8", want: ""},
		{ip: "93.184.216.34", want: ""},
		{ip: "100.63.255.255", want: ""},
		{ip: "2606:4700:4700::1111", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := addressClass(netip.MustParseAddr(tt.ip)); got != tt.want {
				t.Errorf("addressClass(%s) = %q, want %q", tt.ip, got, tt.want)
			}
		})
	}
}

func TestGuardDial(t *testing.T) {
	tests := []struct {
		address string
		wantErr bool
	}{
		{address: "93.184.216.34:443", wantErr: false},
		{address: "127.0.0.1:8080", wantErr: true},
		{address: "[::ffff:10.0.0.1]:80", wantErr: true},
		{address: "no-port", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			err := guardDial("tcp4", tt.address, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("guardDial(%q) error = %v, wantErr %v", tt.address, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errBlockedAddress) {
				t.Errorf("error %v does not wrap errBlockedAddress", err)
			}
		})
	}
}
