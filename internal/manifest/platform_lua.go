package manifest

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/pepicrft/ubi/internal/platform"
)

// injectPlatformTable exposes the detected platform to manifests as a
// read-only "platform" global, so entries can be conditional on OS and
// architecture without the manifest running any detection itself.
func injectPlatformTable(L *lua.LState, info *platform.Info) {
	t := L.NewTable()

	L.SetField(t, "os", lua.LString(info.OS))
	L.SetField(t, "arch", lua.LString(info.Arch))
	L.SetField(t, "arch_raw", lua.LString(info.ArchRaw))

	L.SetField(t, "is_linux", lua.LBool(info.OS == "linux"))
	L.SetField(t, "is_macos", lua.LBool(info.OS == "darwin"))
	L.SetField(t, "is_windows", lua.LBool(info.OS == "windows"))
	L.SetField(t, "is_amd64", lua.LBool(info.Arch == "amd64"))
	L.SetField(t, "is_arm64", lua.LBool(info.Arch == "arm64"))

	if info.Distro != "" {
		distro := L.NewTable()
		L.SetField(distro, "id", lua.LString(info.Distro))
		L.SetField(distro, "version", lua.LString(info.Version))
		L.SetField(t, "distro", distro)
	} else {
		L.SetField(t, "distro", lua.LNil)
	}

	// platform.when(condition, value) returns value when condition
	// holds and nil otherwise, for conditional tool entries.
	L.SetField(t, "when", L.NewFunction(func(L *lua.LState) int {
		cond := L.CheckBool(1)
		value := L.Get(2)
		if cond {
			L.Push(value)
		} else {
			L.Push(lua.LNil)
		}
		return 1
	}))

	L.SetGlobal("platform", makeReadOnly(L, t))
}

// makeReadOnly wraps a table in a write-protected proxy. Reads fall
// through to the original table; any write raises an error, and the
// metatable itself cannot be replaced.
func makeReadOnly(L *lua.LState, table *lua.LTable) *lua.LTable {
	mt := L.NewTable()
	L.SetField(mt, "__index", table)
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("platform table is read-only and cannot be modified")
		return 0
	}))
	L.SetField(mt, "__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)
	return proxy
}
