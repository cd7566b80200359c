package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/muurk/pgen/internal/config"
	"github.com/muurk/pgen/internal/connector"
	"github.com/muurk/pgen/internal/deviceconfig"
	"github.com/muurk/pgen/internal/session"
)

func TestConnectorOptions(t *testing.T) {
	prefs := &config.Preferences{
		KnownHosts:      []string{"192.168.1.50"},
		Port:            8585,
		ConnectTimeout:  0.5,
		ResponseTimeout: 2,
		DiscoverTimeout: 4,
		AutoDiscover:    config.Bool(false),
	}

	opts := connectorOptions(prefs, 0, 0)
	if diff := cmp.Diff([]string{"192.168.1.50"}, opts.KnownHosts); diff != "" {
		t.Errorf("KnownHosts mismatch (-want +got):\n%s", diff)
	}
	if opts.Port != 8585 {
		t.Errorf("Port = %d, want 8585", opts.Port)
	}
	if opts.ProbeTimeout != 500*time.Millisecond {
		t.Errorf("ProbeTimeout = %v, want 500ms", opts.ProbeTimeout)
	}
	if opts.ResponseTimeout != 2*time.Second {
		t.Errorf("ResponseTimeout = %v, want 2s", opts.ResponseTimeout)
	}
	if opts.DiscoverTimeout != 4*time.Second {
		t.Errorf("DiscoverTimeout = %v, want 4s", opts.DiscoverTimeout)
	}
	if opts.Discover {
		t.Error("Discover = true, want false")
	}

	// Flags win over preferences
	opts = connectorOptions(prefs, 9000, 7*time.Second)
	if opts.Port != 9000 || opts.ResponseTimeout != 7*time.Second {
		t.Errorf("flags not applied: port=%d timeout=%v", opts.Port, opts.ResponseTimeout)
	}

	// The caller's slice is not shared
	opts.KnownHosts[0] = "changed"
	if prefs.KnownHosts[0] != "192.168.1.50" {
		t.Error("connectorOptions shares KnownHosts with preferences")
	}
}

func TestConnectorOptionsDefaults(t *testing.T) {
	opts := connectorOptions(nil, 0, 0)
	want := connector.DefaultOptions()
	if diff := cmp.Diff(want.KnownHosts, opts.KnownHosts); diff != "" {
		t.Errorf("KnownHosts mismatch (-want +got):\n%s", diff)
	}
	if opts.Port != want.Port || !opts.Discover {
		t.Errorf("opts = %+v, want defaults", opts)
	}
}

func TestConnectorOptionsAutoDiscoverUnset(t *testing.T) {
	prefs := &config.Preferences{KnownHosts: []string{"192.168.1.50"}}

	if opts := connectorOptions(prefs, 0, 0); !opts.Discover {
		t.Error("Discover = false, want true when auto_discover is unset")
	}
}

func TestParseKeyValues(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []deviceconfig.Setting
		wantErr bool
	}{
		{
			name: "ordered pairs",
			args: []string{"max_bpc=10", "eotf=2"},
			want: []deviceconfig.Setting{{Key: "max_bpc", Value: "10"}, {Key: "eotf", Value: "2"}},
		},
		{
			name: "value may contain equals",
			args: []string{"text=a=b"},
			want: []deviceconfig.Setting{{Key: "text", Value: "a=b"}},
		},
		{
			name: "empty value",
			args: []string{"hostname="},
			want: []deviceconfig.Setting{{Key: "hostname", Value: ""}},
		},
		{name: "missing equals", args: []string{"max_bpc"}, wantErr: true},
		{name: "missing key", args: []string{"=10"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseKeyValues(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseKeyValues() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseKeyValues() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyStepCount(t *testing.T) {
	tests := []struct {
		opts deviceconfig.ApplyOptions
		want int
	}{
		{deviceconfig.ApplyOptions{}, 3},
		{deviceconfig.ApplyOptions{Verify: true}, 4},
		{deviceconfig.ApplyOptions{Verify: true, Restart: true}, 5},
	}
	for _, tt := range tests {
		if got := applyStepCount(3, tt.opts); got != tt.want {
			t.Errorf("applyStepCount(3, %+v) = %d, want %d", tt.opts, got, tt.want)
		}
	}
}

func TestMonitorInterval(t *testing.T) {
	t.Cleanup(func() { pollInterval = 0 })

	pollInterval = 0
	if got := monitorInterval(nil); got != connector.DefaultPollInterval {
		t.Errorf("monitorInterval(nil) = %v, want %v", got, connector.DefaultPollInterval)
	}
	if got := monitorInterval(&config.Preferences{PollInterval: 2.5}); got != 2500*time.Millisecond {
		t.Errorf("monitorInterval(prefs) = %v, want 2.5s", got)
	}

	pollInterval = time.Second
	if got := monitorInterval(&config.Preferences{PollInterval: 30}); got != time.Second {
		t.Errorf("monitorInterval with flag = %v, want 1s", got)
	}
}

func TestConnectionTips(t *testing.T) {
	err := &session.SessionError{
		Type:    session.ErrTypeTimeout,
		Message: "connect timed out",
		Host:    "10.10.10.1",
	}
	tips := connectionTips(err)
	if len(tips) < 3 {
		t.Fatalf("connectionTips() = %v, want hint lines plus defaults", tips)
	}
	for _, tip := range tips {
		if tip == "Troubleshooting:" || strings.HasPrefix(tip, "•") {
			t.Errorf("tip %q not cleaned", tip)
		}
	}
	if last := tips[len(tips)-1]; !strings.Contains(last, "--device") {
		t.Errorf("last tip = %q, want --device hint", last)
	}

	plain := connectionTips(errors.New("boom"))
	if len(plain) != 2 {
		t.Errorf("connectionTips(plain) = %v, want the two default tips", plain)
	}
}

func TestCheckFormat(t *testing.T) {
	t.Cleanup(func() { outputFormat = formatDetailed })

	for _, f := range []string{formatDetailed, formatCompact, formatJSON} {
		outputFormat = f
		if err := checkFormat(); err != nil {
			t.Errorf("checkFormat(%q) = %v", f, err)
		}
	}
	outputFormat = "yaml"
	if err := checkFormat(); err == nil {
		t.Error("checkFormat(yaml) = nil, want error")
	}
}
