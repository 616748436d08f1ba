package deploy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pitapat/internal/pkg/config"
)

func TestMergeValuesDeep(t *testing.T) {
	base := map[string]interface{}{
		"image":   map[string]interface{}{"repository": "registry/app", "tag": "latest"},
		"replica": 1,
	}
	out := mergeValues(base, deployValues(&DeployParam{ImageTag: "abc1234", Port: 3000}))

	assert.Equal(t, map[string]interface{}{"repository": "registry/app", "tag": "abc1234"}, out["image"])
	assert.Equal(t, map[string]interface{}{"targetPort": 3000}, out["service"])
	assert.Equal(t, 1, out["replica"])
	// base 不被修改
	assert.Equal(t, "latest", base["image"].(map[string]interface{})["tag"])
}

func TestProvisionValues(t *testing.T) {
	minR, maxR, cpu := 1, 3, 70
	vals := provisionValues(&ProvisionParam{
		ProjectID:        9,
		Subdomain:        "hello",
		GithubName:       "octo",
		GithubRepository: "hello",
		GitToken:         "gho_x",
		Envs:             map[string]string{"DB_URL": "mysql://"},
		Port:             8080,
		AutoScaling:      true,
		MinReplicas:      &minR,
		MaxReplicas:      &maxR,
		CPUThreshold:     &cpu,
	}, "hello-ci.webhook.example.com", "hello.example.com")

	assert.EqualValues(t, 9, vals["projectId"])
	assert.Equal(t, map[string]interface{}{"DB_URL": "mysql://"}, vals["envs"])
	assert.Equal(t, "octo", vals["github"].(map[string]interface{})["name"])
	assert.Equal(t, "hello.example.com", vals["ingress"].(map[string]interface{})["host"])
	assert.Equal(t, 70, vals["autoscaling"].(map[string]interface{})["targetCPUUtilizationPercentage"])
}

func TestLoadValuesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte("image:\n  repository: registry/app\n"), 0o600))

	vals, err := loadValuesFile(path)
	require.NoError(t, err)
	assert.Equal(t, "registry/app", vals["image"].(map[string]interface{})["repository"])

	_, err = loadValuesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestHelmDeployerHosts(t *testing.T) {
	d, err := NewHelmDeployer(&config.HelmConfig{
		Namespace:       "apps",
		BaseDomain:      "pitapat.ne.kr",
		DomainTemplate:  "{{.subdomain}}.{{.base_domain}}",
		WebhookTemplate: "{{.subdomain}}-ci.webhook.{{.base_domain}}",
	}, zap.NewNop())
	require.NoError(t, err)

	webhook, domain, err := d.Hosts("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello-ci.webhook.pitapat.ne.kr", webhook)
	assert.Equal(t, "hello.pitapat.ne.kr", domain)
}
