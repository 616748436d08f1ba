package tpl

import (
	"bytes"
	"fmt"
	"text/template"
)

// HostContext 域名模板可用变量(白名单)
func HostContext(subdomain, baseDomain string) map[string]interface{} {
	return map[string]interface{}{
		"subdomain":   subdomain,
		"base_domain": baseDomain,
	}
}

// ParseTemplate 渲染模板, 缺失变量视为错误
func ParseTemplate(tplStr string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New("").Option("missingkey=error").Parse(tplStr)
	if err != nil {
		return "", fmt.Errorf("parse template failed: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template failed: %w", err)
	}
	return buf.String(), nil
}
