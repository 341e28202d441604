package format

import "strings"

// DefaultImports are emitted at the top of every builder.
var DefaultImports = []string{
	"javafx.scene.*",
	"javafx.scene.canvas.*",
	"javafx.scene.chart.*",
	"javafx.scene.control.*",
	"javafx.scene.control.cell.*",
	"javafx.scene.control.skin.*",
	"javafx.scene.effect.*",
	"javafx.scene.image.*",
	"javafx.scene.input.*",
	"javafx.scene.layout.*",
	"javafx.scene.paint.*",
	"javafx.scene.shape.*",
	"javafx.scene.text.*",
	"javafx.scene.transform.*",
	"javafx.css.*",
	"javafx.event.*",
	"javafx.geometry.*",
	"javafx.collections.*",
	"javafx.util.*",
	"javafx.stage.*",
	"java.util.*",
}

// ModuleImports maps a required module to the package it makes available.
var ModuleImports = map[string]string{
	"javafx.media": "javafx.scene.media.*",
	"javafx.web":   "javafx.scene.web.*",
}

func writeImports(sb *strings.Builder, extra []string) {
	seen := make(map[string]bool, len(DefaultImports)+len(extra))
	for _, imp := range DefaultImports {
		seen[imp] = true
		writeImport(sb, imp)
	}
	first := true
	for _, imp := range extra {
		imp = strings.TrimSpace(imp)
		if imp == "" || seen[imp] {
			continue
		}
		seen[imp] = true
		if first {
			sb.WriteString("\n")
			first = false
		}
		writeImport(sb, imp)
	}
}

func writeImport(sb *strings.Builder, imp string) {
	sb.WriteString("import ")
	sb.WriteString(imp)
	sb.WriteString(";\n")
}
