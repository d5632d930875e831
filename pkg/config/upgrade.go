package config

import (
	"go.mau.fi/util/configupgrade"
)

var Upgrader = &configupgrade.StructUpgrader{
	SimpleUpgrader: upgradeConfig,
	Blocks: [][]string{
		{"assets"},
		{"cache"},
		{"importmap"},
		{"compiler"},
		{"logging"},
	},
	Base: ExampleConfig,
}

func upgradeConfig(helper configupgrade.Helper) {
	helper.Copy(configupgrade.Str, "server", "hostname")
	helper.Copy(configupgrade.Int, "server", "port")
	helper.Copy(configupgrade.Str, "server", "root")
	helper.Copy(configupgrade.Str, "server", "documents")
	helper.Copy(configupgrade.Str, "server", "shutdown_timeout")
	helper.Copy(configupgrade.Str, "server", "read_header_timeout")

	helper.Copy(configupgrade.Map, "assets", "table")
	helper.Copy(configupgrade.Str, "assets", "marker")
	helper.Copy(configupgrade.Bool, "assets", "check_documents")

	helper.Copy(configupgrade.Str, "cache", "database", "type")
	helper.Copy(configupgrade.Str, "cache", "database", "uri")
	helper.Copy(configupgrade.Int, "cache", "database", "max_open_conns")
	helper.Copy(configupgrade.Int, "cache", "database", "max_idle_conns")
	helper.Copy(configupgrade.Str|configupgrade.Null, "cache", "database", "conn_max_idle_time")
	helper.Copy(configupgrade.Str|configupgrade.Null, "cache", "database", "conn_max_lifetime")
	helper.Copy(configupgrade.Str, "cache", "max_age")
	helper.Copy(configupgrade.Str, "cache", "prune_schedule")

	helper.Copy(configupgrade.Str, "importmap", "file")
	helper.Copy(configupgrade.Map, "importmap", "imports")
	helper.Copy(configupgrade.Map, "importmap", "scopes")
	helper.Copy(configupgrade.Bool, "importmap", "pretty")

	helper.Copy(configupgrade.Str, "compiler", "jsx")
	helper.Copy(configupgrade.Str, "compiler", "jsx_factory")
	helper.Copy(configupgrade.Str, "compiler", "jsx_fragment")
	helper.Copy(configupgrade.Str, "compiler", "target")
	helper.Copy(configupgrade.Str, "compiler", "sourcemap")
	helper.Copy(configupgrade.Bool, "compiler", "minify")

	helper.Copy(configupgrade.Map, "logging")
}
