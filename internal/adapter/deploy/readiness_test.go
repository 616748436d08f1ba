package deploy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"pitapat/pkg/constants"
)

const manifest = `
---
# Source: app/templates/service.yaml
apiVersion: v1
kind: Service
metadata:
  name: hello
---
apiVersion: apps/v1
kind: Deployment
metadata:
  name: hello
---
apiVersion: batch/v1
kind: Job
metadata:
  name: hello-migrate
  namespace: jobs
`

func int32Ptr(v int32) *int32 { return &v }

func TestExtractWorkloads(t *testing.T) {
	refs, err := extractWorkloads(manifest, "apps")
	require.NoError(t, err)
	assert.Equal(t, []workloadRef{
		{Kind: "Deployment", Namespace: "apps", Name: "hello"},
		{Kind: "Job", Namespace: "jobs", Name: "hello-migrate"},
	}, refs)
}

func TestClassifyRolloutHealthy(t *testing.T) {
	client := fake.NewClientset(
		&appsv1.Deployment{
			ObjectMeta: metav1.ObjectMeta{Name: "hello", Namespace: "apps"},
			Spec:       appsv1.DeploymentSpec{Replicas: int32Ptr(2)},
			Status:     appsv1.DeploymentStatus{UpdatedReplicas: 2, AvailableReplicas: 2},
		},
		&batchv1.Job{
			ObjectMeta: metav1.ObjectMeta{Name: "hello-migrate", Namespace: "jobs"},
			Status:     batchv1.JobStatus{Succeeded: 1},
		},
	)

	health, _, err := ClassifyRollout(context.Background(), client, manifest, "apps")
	require.NoError(t, err)
	assert.Equal(t, constants.RolloutHealthy, health)
}

func TestClassifyRolloutProgressingWhenMissing(t *testing.T) {
	client := fake.NewClientset(&appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "hello", Namespace: "apps"},
		Spec:       appsv1.DeploymentSpec{Replicas: int32Ptr(1)},
		Status:     appsv1.DeploymentStatus{UpdatedReplicas: 1, AvailableReplicas: 1},
	})

	health, msg, err := ClassifyRollout(context.Background(), client, manifest, "apps")
	require.NoError(t, err)
	assert.Equal(t, constants.RolloutProgressing, health)
	assert.Contains(t, msg, "not found")
}

func TestClassifyRolloutDegraded(t *testing.T) {
	client := fake.NewClientset(&appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "hello", Namespace: "apps"},
		Spec:       appsv1.DeploymentSpec{Replicas: int32Ptr(1)},
		Status: appsv1.DeploymentStatus{Conditions: []appsv1.DeploymentCondition{{
			Type:   appsv1.DeploymentProgressing,
			Status: corev1.ConditionFalse,
			Reason: "ProgressDeadlineExceeded",
		}}},
	})

	health, _, err := ClassifyRollout(context.Background(), client, manifest, "apps")
	require.NoError(t, err)
	assert.Equal(t, constants.RolloutDegraded, health)
}

func TestClassifyRolloutInvalidManifest(t *testing.T) {
	health, _, err := ClassifyRollout(context.Background(), fake.NewClientset(), "kind: [", "apps")
	require.NoError(t, err)
	assert.Equal(t, constants.RolloutInvalidSpec, health)
}

func TestClassifyRolloutEmptyManifest(t *testing.T) {
	health, _, err := ClassifyRollout(context.Background(), fake.NewClientset(), "", "apps")
	require.NoError(t, err)
	assert.Equal(t, constants.RolloutHealthy, health)
}

func TestJobHealthBackoffExceeded(t *testing.T) {
	health, reason := jobHealth(&batchv1.Job{
		Spec:   batchv1.JobSpec{BackoffLimit: int32Ptr(1)},
		Status: batchv1.JobStatus{Failed: 2},
	})
	assert.Equal(t, constants.RolloutDegraded, health)
	assert.Contains(t, reason, "backoffLimit")
}
