// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// MaxWebhookURLLength caps stored webhook URLs.
const MaxWebhookURLLength = 2048

const resolveTimeout = 5 * time.Second

// reservedNets holds the parsed blocks a webhook target must not resolve
// into: RFC 1918 private space plus loopback, link-local, CGNAT,
// documentation, multicast and their IPv6 counterparts.
var reservedNets = parseCIDRs(
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.0.2.0/24",
	"192.168.0.0/16",
	"198.51.100.0/24",
	"203.0.113.0/24",
	"224.0.0.0/4",
	"240.0.0.0/4",
	"::/128",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
)

func parseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("util: bad CIDR literal " + cidr)
		}
		nets = append(nets, block)
	}
	return nets
}

// IsPrivateIP reports whether ip falls in a private or reserved range.
// A nil IP counts as private.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	for _, block := range reservedNets {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

// ValidateWebhookURL rejects webhook targets that could reach internal
// services: non-http schemes, localhost names, and hosts whose DNS
// resolution lands in a private or reserved range.
func ValidateWebhookURL(rawURL string) error {
	if len(rawURL) > MaxWebhookURLLength {
		return fmt.Errorf("URL exceeds maximum length of %d characters", MaxWebhookURLLength)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme")
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == "":
		return fmt.Errorf("URL must have a hostname")
	case host == "localhost", strings.HasSuffix(host, ".localhost"):
		return fmt.Errorf("localhost URLs are not allowed")
	}

	// A literal IP skips DNS.
	if ip := net.ParseIP(host); ip != nil {
		if IsPrivateIP(ip) {
			return fmt.Errorf("private or reserved IP addresses are not allowed")
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("failed to resolve hostname %q: %w", host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("hostname %q did not resolve to any IP addresses", host)
	}
	for _, addr := range addrs {
		if IsPrivateIP(addr.IP) {
			return fmt.Errorf("hostname %q resolves to private IP address %s", host, addr.IP)
		}
	}
	return nil
}
