// Package samplewire carries the build information of the samplewire tools.
package samplewire

import (
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/damnever/samplewire/packet"
)

var (
	BuildDate = "unknown"
	GitRev    = "unknown"
)

const ImportPath = "github.com/damnever/samplewire"

func Version() string {
	mod := goModule()
	return mod.Version
}

// VersionInfo describes the module version, build metadata and the wire
// format revision it speaks.
func VersionInfo() string {
	mod := goModule()
	info := &strings.Builder{}
	info.WriteString("samplewire ")
	info.WriteString(mod.Version)
	info.WriteString(" (wire v")
	info.WriteString(strconv.FormatUint(packet.Version, 10))
	info.WriteString(")")

	var meta []string
	if mod.Sum != "" {
		meta = append(meta, "sum@"+mod.Sum)
	}
	if BuildDate != "unknown" {
		meta = append(meta, "date@"+BuildDate)
	}
	if GitRev != "unknown" {
		meta = append(meta, "git@"+GitRev)
	}
	if len(meta) > 0 {
		info.WriteString(" [")
		info.WriteString(strings.Join(meta, " "))
		info.WriteString("]")
	}
	return info.String()
}

func goModule() debug.Module {
	defltmod := debug.Module{Version: "unknown"}
	bi, ok := debug.ReadBuildInfo()
	if ok {
		defltmod.Path = bi.Main.Path
		for _, dep := range bi.Deps {
			if dep.Path == ImportPath {
				return *dep
			}
		}
		return bi.Main
	}
	return defltmod
}
