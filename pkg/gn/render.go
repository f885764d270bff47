package gn

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/matzehuels/crategen/pkg/errors"
	"github.com/matzehuels/crategen/pkg/manifest"
)

// Header starts every generated build file.
var Header = "# Copyright 2023 The Chromium Authors\n" +
	"# Use of this source code is governed by a BSD-style license that can be\n" +
	"# found in the LICENSE file.\n" +
	"\n" +
	"# " + manifest.AutogeneratedHeader + "\n"

var buildFileTemplate = template.Must(template.New("BUILD.gn").Funcs(template.FuncMap{
	"str":  gnString,
	"list": gnList,
}).Parse(`{{.Header}}
import("//build/rust/cargo_crate.gni")
{{range .Rules}}
cargo_crate({{str .Name}}) {
  crate_name = {{str .CrateName}}
{{- if .Epoch}}
  epoch = {{str .Epoch}}
{{- end}}
  crate_type = {{str .CrateType}}
  crate_root = {{str .CrateRoot}}
{{- if .Edition}}
  edition = {{str .Edition}}
{{- end}}
  cargo_pkg_name = {{str .PackageName}}
  cargo_pkg_version = {{str .Version}}
{{- with .Features}}
  features = {{list .}}
{{- end}}
{{- with .Deps}}
  deps = {{list .}}
{{- end}}
{{- if .AliasedDeps}}
{{- $aliases := .AliasedDeps}}
  aliased_deps = {
{{- range $name := .SortedAliases}}
    {{$name}} = {{str (index $aliases $name)}}
{{- end}}
  }
{{- end}}
{{- if .BuildRoot}}
  build_root = {{str .BuildRoot}}
  build_sources = [ {{str .BuildRoot}} ]
{{- end}}
{{- with .BuildDeps}}
  build_deps = {{list .}}
{{- end}}
{{- with .BuildScriptOutputs}}
  build_script_outputs = {{list .}}
{{- end}}
{{- with .Rustflags}}
  rustflags = {{list .}}
{{- end}}
{{- with .Rustenv}}
  rustenv = {{list .}}
{{- end}}
{{- with .Cfg}}
  cfg = {{list .}}
{{- end}}
{{- if .Testonly}}
  testonly = true
{{- end}}
{{- with .RestrictedTo}}
  visibility = [ {{str .}} ]
{{- end}}
{{- with .ExtraVariables}}
{{.}}
{{- end}}
}
{{end}}`))

// Render returns the unformatted GN text of the file.
func (bf *BuildFile) Render() ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		Header string
		Rules  []Rule
	}{Header: Header, Rules: bf.Rules}
	if err := buildFileTemplate.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render build file")
	}
	return buf.Bytes(), nil
}

var gnEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`)

// gnString quotes s as a GN string literal.
func gnString(s string) string {
	return `"` + gnEscaper.Replace(s) + `"`
}

func gnList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = gnString(s)
	}
	return "[ " + strings.Join(quoted, ", ") + " ]"
}
