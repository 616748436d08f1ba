package deploy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/client-go/kubernetes"

	"pitapat/pkg/constants"
)

type workloadRef struct {
	Kind      string
	Namespace string
	Name      string
}

// extractWorkloads 从 release manifest 中提取工作负载, 忽略空文档
func extractWorkloads(manifest string, defaultNamespace string) ([]workloadRef, error) {
	manifest = strings.TrimSpace(manifest)
	if manifest == "" {
		return nil, nil
	}

	decoder := yaml.NewYAMLOrJSONDecoder(bytes.NewReader([]byte(manifest)), 4096)
	seen := map[workloadRef]struct{}{}
	var out []workloadRef

	for {
		var doc map[string]any
		err := decoder.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode manifest: %w", err)
		}

		kind, _ := doc["kind"].(string)
		switch kind {
		case "Deployment", "StatefulSet", "DaemonSet", "Job":
		default:
			continue
		}
		meta, _ := doc["metadata"].(map[string]any)
		name, _ := meta["name"].(string)
		if strings.TrimSpace(name) == "" {
			continue
		}
		ns, _ := meta["namespace"].(string)
		if strings.TrimSpace(ns) == "" {
			ns = defaultNamespace
		}

		ref := workloadRef{Kind: kind, Namespace: ns, Name: name}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Namespace != out[j].Namespace {
			return out[i].Namespace < out[j].Namespace
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// ClassifyRollout 按 manifest 中工作负载的实际状态给出发布健康状态:
// 任一失败 → Degraded; 全部就绪 → Healthy; 否则 Progressing; manifest 无法解析 → InvalidSpec
func ClassifyRollout(ctx context.Context, client kubernetes.Interface, manifest, namespace string) (constants.RolloutHealth, string, error) {
	refs, err := extractWorkloads(manifest, namespace)
	if err != nil {
		return constants.RolloutInvalidSpec, err.Error(), nil
	}
	if len(refs) == 0 {
		return constants.RolloutHealthy, "", nil
	}

	var pending, failed []string
	for _, ref := range refs {
		health, reason := checkWorkload(ctx, client, ref)
		switch health {
		case constants.RolloutDegraded:
			failed = append(failed, fmt.Sprintf("%s/%s: %s", ref.Kind, ref.Name, reason))
		case constants.RolloutProgressing:
			pending = append(pending, fmt.Sprintf("%s/%s: %s", ref.Kind, ref.Name, reason))
		}
	}

	if len(failed) > 0 {
		return constants.RolloutDegraded, strings.Join(failed, "; "), nil
	}
	if len(pending) > 0 {
		return constants.RolloutProgressing, strings.Join(pending, "; "), nil
	}
	return constants.RolloutHealthy, "", nil
}

func checkWorkload(ctx context.Context, client kubernetes.Interface, ref workloadRef) (constants.RolloutHealth, string) {
	var (
		health constants.RolloutHealth
		reason string
		err    error
	)
	opts := metav1.GetOptions{}

	switch ref.Kind {
	case "Deployment":
		var obj *appsv1.Deployment
		if obj, err = client.AppsV1().Deployments(ref.Namespace).Get(ctx, ref.Name, opts); err == nil {
			health, reason = deploymentHealth(obj)
		}
	case "StatefulSet":
		var obj *appsv1.StatefulSet
		if obj, err = client.AppsV1().StatefulSets(ref.Namespace).Get(ctx, ref.Name, opts); err == nil {
			health, reason = statefulSetHealth(obj)
		}
	case "DaemonSet":
		var obj *appsv1.DaemonSet
		if obj, err = client.AppsV1().DaemonSets(ref.Namespace).Get(ctx, ref.Name, opts); err == nil {
			health, reason = daemonSetHealth(obj)
		}
	case "Job":
		var obj *batchv1.Job
		if obj, err = client.BatchV1().Jobs(ref.Namespace).Get(ctx, ref.Name, opts); err == nil {
			health, reason = jobHealth(obj)
		}
	default:
		return constants.RolloutHealthy, ""
	}

	// 资源尚未创建或暂时查询失败都按进行中处理, 等下一次轮询
	if apierrors.IsNotFound(err) {
		return constants.RolloutProgressing, "not found"
	}
	if err != nil {
		return constants.RolloutProgressing, err.Error()
	}
	return health, reason
}

func deploymentHealth(d *appsv1.Deployment) (constants.RolloutHealth, string) {
	var replicas int32 = 1
	if d.Spec.Replicas != nil {
		replicas = *d.Spec.Replicas
	}

	if d.Status.ObservedGeneration >= d.Generation &&
		d.Status.UpdatedReplicas >= replicas &&
		d.Status.AvailableReplicas >= replicas {
		return constants.RolloutHealthy, ""
	}

	for _, c := range d.Status.Conditions {
		if c.Type == appsv1.DeploymentProgressing && c.Status == corev1.ConditionFalse && c.Reason == "ProgressDeadlineExceeded" {
			return constants.RolloutDegraded, "progress deadline exceeded"
		}
		if c.Type == appsv1.DeploymentReplicaFailure && c.Status == corev1.ConditionTrue {
			return constants.RolloutDegraded, c.Message
		}
	}
	return constants.RolloutProgressing, fmt.Sprintf("available %d/%d (updated %d/%d)",
		d.Status.AvailableReplicas, replicas, d.Status.UpdatedReplicas, replicas)
}

func statefulSetHealth(s *appsv1.StatefulSet) (constants.RolloutHealth, string) {
	var replicas int32 = 1
	if s.Spec.Replicas != nil {
		replicas = *s.Spec.Replicas
	}
	if s.Status.ObservedGeneration >= s.Generation && s.Status.ReadyReplicas >= replicas {
		return constants.RolloutHealthy, ""
	}
	return constants.RolloutProgressing, fmt.Sprintf("ready %d/%d", s.Status.ReadyReplicas, replicas)
}

func daemonSetHealth(d *appsv1.DaemonSet) (constants.RolloutHealth, string) {
	desired := d.Status.DesiredNumberScheduled
	if d.Status.ObservedGeneration >= d.Generation &&
		d.Status.NumberReady >= desired &&
		d.Status.UpdatedNumberScheduled >= desired {
		return constants.RolloutHealthy, ""
	}
	return constants.RolloutProgressing, fmt.Sprintf("ready %d/%d", d.Status.NumberReady, desired)
}

func jobHealth(j *batchv1.Job) (constants.RolloutHealth, string) {
	for _, c := range j.Status.Conditions {
		if c.Type == batchv1.JobFailed && c.Status == corev1.ConditionTrue {
			if r := strings.TrimSpace(c.Reason); r != "" {
				return constants.RolloutDegraded, r
			}
			return constants.RolloutDegraded, "job failed"
		}
	}

	var completions int32 = 1
	if j.Spec.Completions != nil {
		completions = *j.Spec.Completions
	}
	if j.Status.Succeeded >= completions {
		return constants.RolloutHealthy, ""
	}

	var backoffLimit int32 = 6
	if j.Spec.BackoffLimit != nil {
		backoffLimit = *j.Spec.BackoffLimit
	}
	if j.Status.Failed > backoffLimit {
		return constants.RolloutDegraded, fmt.Sprintf("failed %d > backoffLimit %d", j.Status.Failed, backoffLimit)
	}
	return constants.RolloutProgressing, fmt.Sprintf("succeeded %d/%d", j.Status.Succeeded, completions)
}
