package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitapat/internal/model"
	"pitapat/internal/pkg/database/dbtest"
	"pitapat/pkg/constants"
	pkgErrors "pitapat/pkg/errors"
)

func seedProject(t *testing.T, s *Store) (*model.User, *model.Project) {
	t.Helper()
	user := &model.User{Login: "octo"}
	require.NoError(t, s.Users.Create(user))
	project := &model.Project{UserID: user.ID, Name: "hello", Subdomain: "hello", Port: 8080}
	require.NoError(t, s.Projects.Create(project))
	return user, project
}

func TestBuildCreateIfAbsentDedup(t *testing.T) {
	s := NewStore(dbtest.New(t))
	_, project := seedProject(t, s)

	first, created, err := s.Builds.CreateIfAbsent(&model.Build{ProjectID: project.ID, ImageTag: "abc1234", CommitMsg: "one"})
	require.NoError(t, err)
	assert.True(t, created)
	second, created, err := s.Builds.CreateIfAbsent(&model.Build{ProjectID: project.ID, ImageTag: "abc1234", CommitMsg: "two"})
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "one", second.CommitMsg)

	builds, err := s.Builds.ListByProject(project.ID)
	require.NoError(t, err)
	assert.Len(t, builds, 1)

	exists, err := s.Builds.ExistsTag(project.ID, "abc1234")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFindNotFoundKinds(t *testing.T) {
	s := NewStore(dbtest.New(t))

	_, err := s.Projects.FindByID(42)
	assert.ErrorIs(t, err, pkgErrors.ErrProjectNotFound)

	_, err = s.Builds.FindByID(42)
	assert.ErrorIs(t, err, pkgErrors.ErrBuildNotFound)

	_, err = s.Tokens.FindByAccessToken("nope")
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidToken)

	_, err = s.Deploys.FindLatestByBuild(42)
	assert.ErrorIs(t, err, pkgErrors.ErrRecordNotFound)
}

func TestUpdateStatusIsOptimistic(t *testing.T) {
	s := NewStore(dbtest.New(t))
	_, project := seedProject(t, s)

	rows, err := s.Projects.UpdateStatus(project.ID, constants.ProjectStatusCreated,
		map[string]interface{}{"status": constants.ProjectStatusBuilding})
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	rows, err = s.Projects.UpdateStatus(project.ID, constants.ProjectStatusCreated,
		map[string]interface{}{"status": constants.ProjectStatusBuildFailed})
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows)

	got, err := s.Projects.FindByID(project.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.ProjectStatusBuilding, got.Status)
}

func TestAssignURLsOnlyOnce(t *testing.T) {
	s := NewStore(dbtest.New(t))
	_, project := seedProject(t, s)

	rows, err := s.Projects.AssignURLs(project.ID, "hello-ci.webhook.example.com", "hello.example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	rows, err = s.Projects.AssignURLs(project.ID, "other", "other")
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows)

	got, err := s.Projects.FindByID(project.ID)
	require.NoError(t, err)
	require.NotNil(t, got.WebhookURL)
	assert.Equal(t, "hello-ci.webhook.example.com", *got.WebhookURL)
}

func TestTokenReplaceInvalidatesPrevious(t *testing.T) {
	s := NewStore(dbtest.New(t))
	user, _ := seedProject(t, s)

	_, err := s.Tokens.Replace(user.ID, "gho_old")
	require.NoError(t, err)
	_, err = s.Tokens.Replace(user.ID, "gho_new")
	require.NoError(t, err)

	_, err = s.Tokens.FindByAccessToken("gho_old")
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidToken)

	token, err := s.Tokens.FindByAccessToken("gho_new")
	require.NoError(t, err)
	assert.Equal(t, user.ID, token.UserID)
}

func TestDetachAndDeleteProject(t *testing.T) {
	s := NewStore(dbtest.New(t))
	_, project := seedProject(t, s)

	build, _, err := s.Builds.CreateIfAbsent(&model.Build{ProjectID: project.ID, ImageTag: "abc1234"})
	require.NoError(t, err)
	deploy := &model.Deploy{BuildID: &build.ID}
	require.NoError(t, s.Deploys.Create(deploy))

	// 未解除关联时删除构建违反外键
	assert.Error(t, s.Builds.DeleteByProject(project.ID))

	err = s.Transaction(context.Background(), func(tx *Store) error {
		if err := tx.Projects.ClearPointers(project.ID); err != nil {
			return err
		}
		if err := tx.Deploys.DetachByProject(project.ID); err != nil {
			return err
		}
		if err := tx.Secrets.DeleteByProject(project.ID); err != nil {
			return err
		}
		if err := tx.Builds.DeleteByProject(project.ID); err != nil {
			return err
		}
		return tx.Projects.Delete(project.ID)
	})
	require.NoError(t, err)

	var kept model.Deploy
	require.NoError(t, s.DB().First(&kept, deploy.ID).Error)
	assert.Nil(t, kept.BuildID)
}

func TestTransactionRollsBack(t *testing.T) {
	db := dbtest.New(t)
	s := NewStore(db)
	_, project := seedProject(t, s)

	injected := errors.New("disk full")
	dbtest.FailCreate(t, db, model.BuildTableName, injected)

	err := s.Transaction(context.Background(), func(tx *Store) error {
		if _, err := tx.Projects.UpdateStatus(project.ID, constants.ProjectStatusCreated,
			map[string]interface{}{"status": constants.ProjectStatusBuildSucceeded}); err != nil {
			return err
		}
		_, _, err := tx.Builds.CreateIfAbsent(&model.Build{ProjectID: project.ID, ImageTag: "abc1234"})
		return err
	})
	require.Error(t, err)
	assert.Equal(t, pkgErrors.KindPersistenceFailure, pkgErrors.KindOf(err))

	got, err := s.Projects.FindByID(project.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.ProjectStatusCreated, got.Status)
}

func TestSecretsAndLogs(t *testing.T) {
	s := NewStore(dbtest.New(t))
	_, project := seedProject(t, s)

	require.NoError(t, s.Secrets.CreateBatch([]*model.Secret{
		{ProjectID: project.ID, Key: "B", Value: "x"},
		{ProjectID: project.ID, Key: "A", Value: "y"},
	}))
	secrets, err := s.Secrets.ListByProject(project.ID)
	require.NoError(t, err)
	require.Len(t, secrets, 2)
	assert.Equal(t, "A", secrets[0].Key)

	require.NoError(t, s.Logs.Create(&model.ProjectLog{
		ProjectID: project.ID, Event: "build_requested",
		FromStatus: constants.ProjectStatusCreated, ToStatus: constants.ProjectStatusBuilding,
	}))
	logs, err := s.Logs.ListByProject(project.ID, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
