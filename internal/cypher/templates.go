package cypher

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

//go:embed *.cql
var files embed.FS

var parsed sync.Map // name -> *template.Template

// MustTemplate 渲染指定模板，解析结果按文件名缓存。失败直接 panic，便于尽早暴露模板错误。
func MustTemplate(name string, data any) string {
	var tmpl *template.Template
	if cached, ok := parsed.Load(name); ok {
		tmpl = cached.(*template.Template)
	} else {
		t, err := template.New(name).ParseFS(files, name)
		if err != nil {
			panic(fmt.Errorf("parse template %s failed: %w", name, err))
		}
		parsed.Store(name, t)
		tmpl = t
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		panic(fmt.Errorf("execute template %s failed: %w", name, err))
	}
	return sb.String()
}

// MustAsset 返回模板原文。
func MustAsset(name string) string {
	b, err := files.ReadFile(name)
	if err != nil {
		panic(fmt.Errorf("load %s failed: %w", name, err))
	}
	return string(b)
}

// Statements 把多语句文件按分号拆开，忽略空语句。
func Statements(name string) []string {
	var out []string
	for _, raw := range strings.Split(MustAsset(name), ";") {
		if q := strings.TrimSpace(raw); q != "" {
			out = append(out, q)
		}
	}
	return out
}
