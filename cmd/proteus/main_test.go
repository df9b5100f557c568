// Copyright 2026 © The Proteus Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"reflect"
	"testing"
	"time"
)

func TestParseGlobalFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    globalFlags
		rest    []string
		wantErr bool
	}{
		{
			name: "no args",
			args: nil,
			want: globalFlags{Timeout: 30 * time.Second},
		},
		{
			name: "command stops flag parsing",
			args: []string{"build", "--target", "claude"},
			want: globalFlags{Timeout: 30 * time.Second},
			rest: []string{"build", "--target", "claude"},
		},
		{
			name: "json and timeout",
			args: []string{"--json", "--timeout", "5s", "check"},
			want: globalFlags{Timeout: 5 * time.Second, JSON: true},
			rest: []string{"check"},
		},
		{
			name: "timeout equals form",
			args: []string{"--timeout=1m", "build"},
			want: globalFlags{Timeout: time.Minute},
			rest: []string{"build"},
		},
		{
			name: "config and set collected in order",
			args: []string{"--config", "a.yaml", "--set", "log.level=debug", "serve"},
			want: globalFlags{
				Timeout:    30 * time.Second,
				ConfigArgs: []string{"--config", "a.yaml", "--set", "log.level=debug"},
			},
			rest: []string{"serve"},
		},
		{
			name: "double dash terminator",
			args: []string{"--json", "--", "probe"},
			want: globalFlags{Timeout: 30 * time.Second, JSON: true},
			rest: []string{"probe"},
		},
		{
			name:    "invalid timeout",
			args:    []string{"--timeout", "soon"},
			wantErr: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"--verbose"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rest, err := parseGlobalFlags(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseGlobalFlags failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("flags = %+v, want %+v", got, tt.want)
			}
			if !reflect.DeepEqual(rest, tt.rest) && !(len(rest) == 0 && len(tt.rest) == 0) {
				t.Errorf("rest = %v, want %v", rest, tt.rest)
			}
		})
	}
}

func TestParseGlobalFlagsHelp(t *testing.T) {
	got, _, err := parseGlobalFlags([]string{"-h"})
	if err != nil {
		t.Fatalf("parseGlobalFlags failed: %v", err)
	}
	if !got.Help {
		t.Error("expected help flag")
	}
}

func TestNormalizeCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "-"},
		{"  ", "-"},
		{"plain", "plain"},
		{"  padded  ", "padded"},
		{"multi\nline  text", "multi line text"},
	}
	for _, tt := range tests {
		if got := normalizeCell(tt.in); got != tt.want {
			t.Errorf("normalizeCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
