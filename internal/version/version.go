// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import (
	"fmt"
	"runtime/debug"
)

// Info is injected via ldflags at release build time.
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
}

// WithBuildInfo fills fields the linker left empty from the VCS stamp the
// go tool embeds in the binary.
func (i Info) WithBuildInfo() Info {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return i
	}
	return i.withSettings(bi.Main.Version, bi.Settings)
}

func (i Info) withSettings(mainVersion string, settings []debug.BuildSetting) Info {
	if i.Version == "" && mainVersion != "" && mainVersion != "(devel)" {
		i.Version = mainVersion
	}
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if i.GitCommit == "" {
				i.GitCommit = s.Value[:min(7, len(s.Value))]
			}
		case "vcs.time":
			if i.BuildTime == "" {
				i.BuildTime = s.Value
			}
		}
	}
	return i
}

// String formats the info for `estg -version`.
func (i Info) String() string {
	or := func(s, fallback string) string {
		if s == "" {
			return fallback
		}
		return s
	}
	return fmt.Sprintf("estg %s (commit %s, built %s)",
		or(i.Version, "dev"), or(i.GitCommit, "unknown"), or(i.BuildTime, "unknown"))
}
