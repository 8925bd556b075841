// Package manifest parses ubi.lua install manifests.
//
// A manifest declares the release assets to install as a Lua table
// named "ubi". Lua runs in a sandbox with no filesystem, process, or
// module-loading access, so manifests stay declarative; a read-only
// "platform" global exposes the detected OS and architecture for
// conditional entries:
//
//	ubi = {
//	    tools = {
//	        {
//	            project = "houseabsolute/precious",
//	            tag = "v0.7.2",
//	            asset_template = "precious-{{os}}-{{arch}}.tar.gz",
//	        },
//	        platform.when(platform.is_linux, {
//	            project = "owner/linux-only-tool",
//	            asset = "tool-linux-amd64.tar.gz",
//	        }),
//	    },
//	    options = { dest = "bin" },
//	}
package manifest
