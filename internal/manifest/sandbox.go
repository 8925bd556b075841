package manifest

import (
	lua "github.com/yuin/gopher-lua"
)

// newSandboxedVM creates a Lua state restricted to declarative use.
// Process control (os), filesystem access (io), code loading (require,
// dofile, loadfile, load, loadstring), and the debug library are all
// removed; string, table, math, and the basic utility functions stay.
func newSandboxedVM() *lua.LState {
	L := lua.NewState()

	L.SetGlobal("os", lua.LNil)
	L.SetGlobal("io", lua.LNil)
	L.SetGlobal("require", lua.LNil)
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("loadfile", lua.LNil)
	L.SetGlobal("load", lua.LNil)
	L.SetGlobal("loadstring", lua.LNil)
	L.SetGlobal("debug", lua.LNil)

	return L
}
