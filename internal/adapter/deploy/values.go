package deploy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// loadValuesFile 读取基础 values.yaml, 路径为空时返回空 map
func loadValuesFile(path string) (map[string]interface{}, error) {
	vals := map[string]interface{}{}
	if path == "" {
		return vals, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取 values 文件失败: %w", err)
	}
	if err := yaml.Unmarshal(data, &vals); err != nil {
		return nil, fmt.Errorf("解析 values 文件失败: %w", err)
	}
	return vals, nil
}

// mergeValues 深度合并, override 优先
func mergeValues(base, override map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if nested, ok := v.(map[string]interface{}); ok {
			if baseNested, ok := out[k].(map[string]interface{}); ok {
				out[k] = mergeValues(baseNested, nested)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// provisionValues 项目 chart 的 values
func provisionValues(p *ProvisionParam, webhookHost, domainHost string) map[string]interface{} {
	envs := make(map[string]interface{}, len(p.Envs))
	for k, v := range p.Envs {
		envs[k] = v
	}

	vals := map[string]interface{}{
		"projectId": p.ProjectID,
		"subdomain": p.Subdomain,
		"envs":      envs,
		"github": map[string]interface{}{
			"name":       p.GithubName,
			"repository": p.GithubRepository,
			"token":      p.GitToken,
		},
		"ingress": map[string]interface{}{
			"host":        domainHost,
			"webhookHost": webhookHost,
		},
	}
	if p.Port > 0 {
		vals["service"] = map[string]interface{}{"targetPort": p.Port}
	}
	if p.AutoScaling {
		hpa := map[string]interface{}{"enabled": true}
		if p.MinReplicas != nil {
			hpa["minReplicas"] = *p.MinReplicas
		}
		if p.MaxReplicas != nil {
			hpa["maxReplicas"] = *p.MaxReplicas
		}
		if p.CPUThreshold != nil {
			hpa["targetCPUUtilizationPercentage"] = *p.CPUThreshold
		}
		vals["autoscaling"] = hpa
	}
	return vals
}

// deployValues 发布时覆盖镜像与端口
func deployValues(p *DeployParam) map[string]interface{} {
	image := map[string]interface{}{"tag": p.ImageTag}
	if p.ImageName != "" {
		image["name"] = p.ImageName
	}
	vals := map[string]interface{}{"image": image}
	if p.Port > 0 {
		vals["service"] = map[string]interface{}{"targetPort": p.Port}
	}
	return vals
}
